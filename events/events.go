package events

// Topics runtime components publish on.
const (
	TopicGas      = "gas"
	TopicPayment  = "payment"
	TopicAuth     = "auth"
	TopicRuntime  = "runtime"
	TopicListings = "listings"
	TopicPallet   = "pallet"
)

type accountUpdate struct {
	Account string `json:"account"`
}

type GasBurnedEvent struct {
	accountUpdate
	Burned    uint64 `json:"burned"`
	Remaining uint64 `json:"remaining"`
}

type GasRefueledEvent struct {
	accountUpdate
	Refueled uint64 `json:"refueled"`
	Level    uint64 `json:"level"`
}

type PaymentReservedEvent struct {
	accountUpdate
	Charged uint64 `json:"charged"`
}

type PaymentSettledEvent struct {
	accountUpdate
	Charged  uint64 `json:"charged"`
	Refunded uint64 `json:"refunded"`
	Burned   uint64 `json:"burned"`
}

type DeviceRegisteredEvent struct {
	accountUpdate
	Device string `json:"device"`
}

type DeviceRevokedEvent struct {
	accountUpdate
	Device string `json:"device"`
}

type extrinsicUpdate struct {
	accountUpdate
	Call string `json:"call"`
}

type ExtrinsicAppliedEvent extrinsicUpdate

type ExtrinsicFailedEvent struct {
	extrinsicUpdate
	Error string `json:"error"`
}

// NewGasBurned and the other constructors below fill in the embedded account field.
func NewGasBurned(account string, burned, remaining uint64) GasBurnedEvent {
	return GasBurnedEvent{accountUpdate: accountUpdate{Account: account}, Burned: burned, Remaining: remaining}
}

func NewGasRefueled(account string, refueled, level uint64) GasRefueledEvent {
	return GasRefueledEvent{accountUpdate: accountUpdate{Account: account}, Refueled: refueled, Level: level}
}

func NewPaymentReserved(account string, charged uint64) PaymentReservedEvent {
	return PaymentReservedEvent{accountUpdate: accountUpdate{Account: account}, Charged: charged}
}

func NewPaymentSettled(account string, charged, refunded, burned uint64) PaymentSettledEvent {
	return PaymentSettledEvent{
		accountUpdate: accountUpdate{Account: account},
		Charged:       charged,
		Refunded:      refunded,
		Burned:        burned,
	}
}

func NewDeviceRegistered(account, device string) DeviceRegisteredEvent {
	return DeviceRegisteredEvent{accountUpdate: accountUpdate{Account: account}, Device: device}
}

func NewDeviceRevoked(account, device string) DeviceRevokedEvent {
	return DeviceRevokedEvent{accountUpdate: accountUpdate{Account: account}, Device: device}
}

func NewExtrinsicApplied(account, call string) ExtrinsicAppliedEvent {
	return ExtrinsicAppliedEvent{accountUpdate: accountUpdate{Account: account}, Call: call}
}

func NewExtrinsicFailed(account, call string, err error) ExtrinsicFailedEvent {
	return ExtrinsicFailedEvent{
		extrinsicUpdate: extrinsicUpdate{accountUpdate: accountUpdate{Account: account}, Call: call},
		Error:           err.Error(),
	}
}
