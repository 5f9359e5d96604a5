// Copyright (c) 2019 Perlin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

package payment

import (
	"github.com/perlin-network/pallets"
	"github.com/perlin-network/pallets/avl"
	"github.com/perlin-network/pallets/events"
	"github.com/perlin-network/pallets/gas"
	"github.com/perlin-network/pallets/log"
	"github.com/pkg/errors"
)

// Tank is the gas storage a Handler charges.
type Tank interface {
	gas.Tanker[pallets.AccountID, pallets.Gas]

	Tree() *avl.Tree
}

var _ PrepaidGasHandler[pallets.AccountID, pallets.Weight] = (*Handler)(nil)

// Handler charges weights against gas tanks, converting with gas.WeightToGas. At most one
// reservation per account may be in flight.
type Handler struct {
	tank    Tank
	hub     *events.Hub
	metrics *pallets.Metrics
}

type Option func(*Handler)

func WithHub(hub *events.Hub) Option {
	return func(h *Handler) {
		h.hub = hub
	}
}

func WithMetrics(metrics *pallets.Metrics) Option {
	return func(h *Handler) {
		h.metrics = metrics
	}
}

func NewHandler(tank Tank, opts ...Option) *Handler {
	h := &Handler{tank: tank, hub: events.Global()}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Reservation returns the reservation in flight for who, if any.
func (h *Handler) Reservation(who pallets.AccountID) (Reservation, bool) {
	buf, exists := pallets.ReadReservation(h.tank.Tree(), who)
	if !exists {
		return Reservation{}, false
	}

	r, err := UnmarshalReservation(buf)
	if err != nil {
		logger := log.Payment("reservation")
		logger.Error().Err(err).Hex("account_id", who[:]).Msg("Dropping unreadable reservation.")

		pallets.DeleteReservation(h.tank.Tree(), who)

		return Reservation{}, false
	}

	return r, true
}

// Status reports where who is in the payment lifecycle. Settled reservations are not kept,
// so an account is either uncharged or has a reservation in flight.
func (h *Handler) Status(who pallets.AccountID) Status {
	r, exists := h.Reservation(who)
	if !exists {
		return StatusUncharged
	}

	return r.Status
}

func (h *Handler) InitiatePayment(who pallets.AccountID, weight pallets.Weight) error {
	if err := h.initiate(who, weight); err != nil {
		if h.metrics != nil {
			h.metrics.PaymentsRejected.Mark(1)
		}

		return err
	}

	return nil
}

func (h *Handler) initiate(who pallets.AccountID, weight pallets.Weight) error {
	if r, exists := h.Reservation(who); exists && r.Status == StatusReserved {
		return errors.Wrapf(ErrAlreadyReserved, "account %x has %d gas reserved", who, r.Charged)
	}

	if _, registered := h.tank.CheckAvailableGas(who, nil); !registered {
		return errors.Wrapf(ErrNoAllowance, "account %x", who)
	}

	fee := gas.WeightToGas(weight)

	if _, ok := h.tank.CheckAvailableGas(who, &fee); !ok {
		available, _ := h.tank.CheckAvailableGas(who, nil)
		return errors.Wrapf(ErrInsufficientGas, "account %x holds %d gas but %s costs %d", who, available, weight, fee)
	}

	remaining := h.tank.BurnGas(who, fee)

	r := Reservation{Initial: weight, Charged: fee, Status: StatusReserved}
	pallets.WriteReservation(h.tank.Tree(), who, r.Marshal())

	if h.metrics != nil {
		h.metrics.PaymentsReserved.Mark(1)
	}

	logger := log.Payment("initiate")
	logger.Debug().
		Hex("account_id", who[:]).
		Uint64("ref_time", weight.RefTime).
		Uint64("proof_size", weight.ProofSize).
		Uint64("charged", uint64(fee)).
		Uint64("remaining", uint64(remaining)).
		Msg("Reserved prepaid gas.")

	h.hub.Publish(events.TopicPayment, events.NewPaymentReserved(who.String(), uint64(fee)))

	return nil
}

func (h *Handler) CompletePayment(who pallets.AccountID, initial, actual pallets.Weight, paysFees bool) {
	logger := log.Payment("complete")

	r, exists := h.Reservation(who)
	if !exists || r.Status != StatusReserved {
		logger.Warn().
			Hex("account_id", who[:]).
			Msg("No reserved payment to complete; ignoring.")

		return
	}

	if initial != r.Initial {
		logger.Warn().
			Hex("account_id", who[:]).
			Str("reserved", r.Initial.String()).
			Str("given", initial.String()).
			Msg("Completing payment with a different initial weight than was reserved.")
	}

	var target pallets.Gas
	if paysFees {
		target = gas.WeightToGas(actual)
	}

	var refunded, burned pallets.Gas

	switch {
	case target < r.Charged:
		refunded = r.Charged - target
		h.tank.RefuelGas(who, refunded)

		if h.metrics != nil {
			h.metrics.GasRefunded.Mark(int64(refunded))
		}
	case target > r.Charged:
		extra := target - r.Charged

		available, _ := h.tank.CheckAvailableGas(who, nil)
		if available < extra {
			logger.Warn().
				Hex("account_id", who[:]).
				Uint64("owed", uint64(extra)).
				Uint64("available", uint64(available)).
				Msg("Call consumed more gas than the account holds; absorbing the shortfall.")
		}

		burned = available - available.SaturatingSub(extra)
		h.tank.BurnGas(who, extra)
	}

	pallets.DeleteReservation(h.tank.Tree(), who)

	if h.metrics != nil {
		h.metrics.PaymentsSettled.Mark(1)
	}

	charged := r.Charged - refunded + burned

	logger.Debug().
		Hex("account_id", who[:]).
		Bool("pays_fees", paysFees).
		Uint64("reserved", uint64(r.Charged)).
		Uint64("refunded", uint64(refunded)).
		Uint64("burned", uint64(burned)).
		Uint64("charged", uint64(charged)).
		Msg("Settled prepaid gas.")

	h.hub.Publish(events.TopicPayment, events.NewPaymentSettled(who.String(), uint64(charged), uint64(refunded), uint64(burned)))
}
