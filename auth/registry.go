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

package auth

import (
	"github.com/perlin-network/pallets"
	"github.com/perlin-network/pallets/avl"
	"github.com/perlin-network/pallets/conf"
	"github.com/perlin-network/pallets/events"
	"github.com/perlin-network/pallets/log"
	"github.com/pkg/errors"
)

// Registry keeps the devices registered to each account in a state tree and authenticates
// the credentials they sign.
type Registry struct {
	challenger    Challenger
	authenticator Authenticator[AttestationOf, DeviceOf, CredentialOf]
	hub           *events.Hub
}

type RegistryOption func(*Registry)

func WithHub(hub *events.Hub) RegistryOption {
	return func(r *Registry) {
		r.hub = hub
	}
}

func NewRegistry(challenger Challenger, opts ...RegistryOption) *Registry {
	r := &Registry{
		challenger:    challenger,
		authenticator: NewEd25519Authenticator(challenger),
		hub:           events.Global(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *Registry) Challenger() Challenger {
	return r.challenger
}

// Register enrolls the device attested by att to who, provided the attestation answers a
// challenge still fresh at block now.
func (r *Registry) Register(tree *avl.Tree, who pallets.AccountID, att AttestationOf, now uint64) (DeviceID, error) {
	if !Fresh(att.Block, now) {
		return DeviceID{}, errors.Wrapf(ErrStaleChallenge, "attested at block %d, now %d", att.Block, now)
	}

	device, err := r.authenticator.Unpack(att)
	if err != nil {
		return DeviceID{}, err
	}

	id := device.ID()

	if _, exists := pallets.ReadDevice(tree, who, id[:]); exists {
		return id, errors.Wrapf(ErrDeviceExists, "device %s", id)
	}

	if count := len(r.Devices(tree, who)); count >= conf.GetMaxDevicesPerAccount() {
		return id, errors.Wrapf(ErrTooManyDevices, "account %x has %d devices", who, count)
	}

	pallets.WriteDevice(tree, who, id[:], EncodeDeviceRecord(device, now))

	logger := log.Auth("register")
	logger.Info().
		Hex("account_id", who[:]).
		Hex("device_id", id[:]).
		Uint64("block", now).
		Msg("Registered device.")

	r.hub.Publish(events.TopicAuth, events.NewDeviceRegistered(who.String(), id.String()))

	return id, nil
}

// Authenticate returns the account a credential proves at block now, provided the credential
// was signed for the encoded call.
func (r *Registry) Authenticate(tree *avl.Tree, cred CredentialOf, call []byte, now uint64) (pallets.AccountID, error) {
	if !Fresh(cred.Block, now) {
		return pallets.AccountID{}, errors.Wrapf(ErrStaleChallenge, "signed at block %d, now %d", cred.Block, now)
	}

	if !r.challenger.Check(cred.Challenge(), cred.Block, now) {
		return pallets.AccountID{}, errors.Wrapf(ErrBadCredential, "challenge %s was not issued at block %d", cred.Challenge(), cred.Block)
	}

	user, id := cred.UserID(), cred.DeviceID()

	device, err := r.device(tree, user, id)
	if err != nil {
		return pallets.AccountID{}, err
	}

	who, ok := device.VerifyUser(cred)
	if !ok || who != user {
		return pallets.AccountID{}, errors.Wrapf(ErrBadCredential, "device %s", id)
	}

	if !cred.Authorizes(call) {
		return pallets.AccountID{}, errors.Wrapf(ErrCallMismatch, "device %s", id)
	}

	return who, nil
}

// Devices lists the devices registered to who in ascending order of their IDs.
func (r *Registry) Devices(tree *avl.Tree, who pallets.AccountID) []DeviceID {
	var ids []DeviceID

	pallets.IterateDevices(tree, who, func(device, _ []byte) bool {
		var id DeviceID
		copy(id[:], device)

		ids = append(ids, id)
		return true
	})

	return ids
}

// Revoke removes a device from who.
func (r *Registry) Revoke(tree *avl.Tree, who pallets.AccountID, id DeviceID) error {
	if !pallets.DeleteDevice(tree, who, id[:]) {
		return errors.Wrapf(ErrUnknownDevice, "device %s", id)
	}

	logger := log.Auth("revoke")
	logger.Info().
		Hex("account_id", who[:]).
		Hex("device_id", id[:]).
		Msg("Revoked device.")

	r.hub.Publish(events.TopicAuth, events.NewDeviceRevoked(who.String(), id.String()))

	return nil
}

func (r *Registry) device(tree *avl.Tree, who pallets.AccountID, id DeviceID) (DeviceOf, error) {
	buf, exists := pallets.ReadDevice(tree, who, id[:])
	if !exists {
		return DeviceOf{}, errors.Wrapf(ErrUnknownDevice, "device %s of account %x", id, who)
	}

	device, _, err := DecodeDeviceRecord(buf)
	if err != nil {
		return DeviceOf{}, errors.Wrapf(err, "device %s of account %x", id, who)
	}

	if device.ID() != id {
		return DeviceOf{}, errors.Wrapf(ErrUnknownDevice, "device %s is stored under the wrong id", id)
	}

	return device, nil
}
