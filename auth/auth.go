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

// Package auth authenticates the signer of an extrinsic through devices registered to an
// account. A device is enrolled by presenting an attestation over a fresh challenge, and
// afterwards proves the account's identity with credentials it signs.
package auth

import (
	"encoding/hex"

	"github.com/perlin-network/pallets"
	"github.com/pkg/errors"
)

const (
	SizeDeviceID  = 32
	SizeChallenge = 32
)

var (
	ErrInvalidAttestation = errors.New("invalid device attestation")
	ErrStaleChallenge     = errors.New("challenge is not valid at this block")
	ErrUnknownDevice      = errors.New("device is not registered to the account")
	ErrBadCredential      = errors.New("credential does not verify")
	ErrDeviceExists       = errors.New("device is already registered")
	ErrTooManyDevices     = errors.New("account has too many devices registered")
	ErrCallMismatch       = errors.New("credential was not signed for this call")
)

type DeviceID [SizeDeviceID]byte

func (id DeviceID) String() string {
	return hex.EncodeToString(id[:])
}

type Challenge [SizeChallenge]byte

func (c Challenge) String() string {
	return hex.EncodeToString(c[:])
}

// Credential is a claim, made by a device, that it acts for a user.
type Credential interface {
	DeviceID() DeviceID
	UserID() pallets.AccountID
	Challenge() Challenge

	// Authorizes reports whether the credential was issued for the encoded call.
	Authorizes(call []byte) bool
}

// Device is a registered authenticator able to check credentials of type C.
type Device[C Credential] interface {
	ID() DeviceID

	// VerifyUser returns the user a credential proves, and false if the credential was not
	// produced by this device.
	VerifyUser(cred C) (pallets.AccountID, bool)
}

// Authenticator turns attestations of type Att into devices of type D.
type Authenticator[Att any, D Device[C], C Credential] interface {
	VerifyAttestation(att Att) bool
	Unpack(att Att) (D, error)
}

// Challenger issues challenges tied to a block height.
type Challenger interface {
	Generate(block uint64) Challenge
	Check(challenge Challenge, issued, now uint64) bool
}

// The device, credential and attestation types the runtime is configured with.
type (
	DeviceOf      = Ed25519Device
	CredentialOf  = Ed25519Credential
	AttestationOf = Attestation
)
