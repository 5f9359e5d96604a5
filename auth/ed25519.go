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
	"encoding/binary"
	"io"

	"github.com/perlin-network/pallets"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/ed25519"
)

const SizeDeviceRecord = ed25519.PublicKeySize + 8

var (
	_ Device[Ed25519Credential]                                    = Ed25519Device{}
	_ Authenticator[Attestation, Ed25519Device, Ed25519Credential] = (*Ed25519Authenticator)(nil)
	_ Credential                                                   = Ed25519Credential{}
)

// Attestation enrolls an Ed25519 key as a device by signing a challenge.
type Attestation struct {
	PublicKey [ed25519.PublicKeySize]byte
	Challenge Challenge
	Block     uint64
	Signature [ed25519.SignatureSize]byte
}

func (a Attestation) message() []byte {
	buf := make([]byte, 0, SizeChallenge+ed25519.PublicKeySize)
	buf = append(buf, a.Challenge[:]...)
	buf = append(buf, a.PublicKey[:]...)

	digest := blake2b.Sum256(buf)
	return digest[:]
}

type Ed25519Device struct {
	PublicKey [ed25519.PublicKeySize]byte
}

func (d Ed25519Device) ID() DeviceID {
	return blake2b.Sum256(d.PublicKey[:])
}

func (d Ed25519Device) VerifyUser(cred Ed25519Credential) (pallets.AccountID, bool) {
	if cred.Signer != d.ID() {
		return pallets.AccountID{}, false
	}

	if !ed25519.Verify(d.PublicKey[:], cred.message(), cred.Signature[:]) {
		return pallets.AccountID{}, false
	}

	return cred.User, true
}

// Ed25519Credential is a device's signature binding a user to a challenge.
type Ed25519Credential struct {
	Signer    DeviceID
	User      pallets.AccountID
	Nonce     Challenge
	Block     uint64
	CallHash  [blake2b.Size256]byte
	Signature [ed25519.SignatureSize]byte
}

func (c Ed25519Credential) DeviceID() DeviceID {
	return c.Signer
}

func (c Ed25519Credential) UserID() pallets.AccountID {
	return c.User
}

func (c Ed25519Credential) Challenge() Challenge {
	return c.Nonce
}

func (c Ed25519Credential) Authorizes(call []byte) bool {
	return blake2b.Sum256(call) == c.CallHash
}

func (c Ed25519Credential) message() []byte {
	buf := make([]byte, 0, SizeDeviceID+pallets.SizeAccountID+SizeChallenge+8+blake2b.Size256)
	buf = append(buf, c.Signer[:]...)
	buf = append(buf, c.User[:]...)
	buf = append(buf, c.Nonce[:]...)

	var block [8]byte
	binary.LittleEndian.PutUint64(block[:], c.Block)
	buf = append(buf, block[:]...)
	buf = append(buf, c.CallHash[:]...)

	digest := blake2b.Sum256(buf)
	return digest[:]
}

// Ed25519Authenticator accepts attestations over challenges issued by its challenger.
type Ed25519Authenticator struct {
	challenger Challenger
}

func NewEd25519Authenticator(challenger Challenger) *Ed25519Authenticator {
	return &Ed25519Authenticator{challenger: challenger}
}

// VerifyAttestation checks that the attestation answers the challenge of its block and is
// signed by the key it enrolls. Freshness is left to the caller.
func (a *Ed25519Authenticator) VerifyAttestation(att Attestation) bool {
	if a.challenger.Generate(att.Block) != att.Challenge {
		return false
	}

	return ed25519.Verify(att.PublicKey[:], att.message(), att.Signature[:])
}

func (a *Ed25519Authenticator) Unpack(att Attestation) (Ed25519Device, error) {
	if !a.VerifyAttestation(att) {
		return Ed25519Device{}, errors.Wrapf(ErrInvalidAttestation, "key %x at block %d", att.PublicKey, att.Block)
	}

	return Ed25519Device{PublicKey: att.PublicKey}, nil
}

// EncodeDeviceRecord renders the state record of a device registered at block.
func EncodeDeviceRecord(device Ed25519Device, block uint64) []byte {
	buf := make([]byte, SizeDeviceRecord)

	copy(buf, device.PublicKey[:])
	binary.LittleEndian.PutUint64(buf[ed25519.PublicKeySize:], block)

	return buf
}

func DecodeDeviceRecord(buf []byte) (Ed25519Device, uint64, error) {
	var device Ed25519Device

	if len(buf) != SizeDeviceRecord {
		return device, 0, errors.Errorf("device record: expected %d bytes, got %d", SizeDeviceRecord, len(buf))
	}

	copy(device.PublicKey[:], buf)

	return device, binary.LittleEndian.Uint64(buf[ed25519.PublicKeySize:]), nil
}

// Keypair is the private half of a device, used to produce attestations and credentials.
type Keypair struct {
	private ed25519.PrivateKey
}

func GenerateKeypair(rand io.Reader) (*Keypair, error) {
	_, private, err := ed25519.GenerateKey(rand)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate device key")
	}

	return &Keypair{private: private}, nil
}

func KeypairFromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, errors.Errorf("device seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}

	return &Keypair{private: ed25519.NewKeyFromSeed(seed)}, nil
}

func (k *Keypair) Device() Ed25519Device {
	var device Ed25519Device
	copy(device.PublicKey[:], k.private.Public().(ed25519.PublicKey))

	return device
}

// Attest answers the challenge of block, enrolling the keypair as a device.
func (k *Keypair) Attest(challenger Challenger, block uint64) Attestation {
	att := Attestation{
		PublicKey: k.Device().PublicKey,
		Challenge: challenger.Generate(block),
		Block:     block,
	}

	copy(att.Signature[:], ed25519.Sign(k.private, att.message()))

	return att
}

// Credential proves, at block, that the keypair acts for user in making the encoded call.
func (k *Keypair) Credential(challenger Challenger, user pallets.AccountID, block uint64, call []byte) Ed25519Credential {
	cred := Ed25519Credential{
		Signer:   k.Device().ID(),
		User:     user,
		Nonce:    challenger.Generate(block),
		Block:    block,
		CallHash: blake2b.Sum256(call),
	}

	copy(cred.Signature[:], ed25519.Sign(k.private, cred.message()))

	return cred
}
