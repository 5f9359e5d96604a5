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

package runtime

import (
	"encoding"
	"encoding/binary"
	"encoding/hex"

	"github.com/minio/highwayhash"
	"github.com/perlin-network/pallets"
	"github.com/perlin-network/pallets/auth"
	"github.com/pkg/errors"
	"github.com/valyala/bytebufferpool"
	"golang.org/x/crypto/blake2b"
)

var extrinsicHashKey = blake2b.Sum256([]byte("pallets/extrinsic"))

type ExtrinsicID [highwayhash.Size]byte

func (id ExtrinsicID) String() string {
	return hex.EncodeToString(id[:])
}

// Extrinsic is a call signed by one of the caller's devices.
type Extrinsic struct {
	Credential auth.CredentialOf
	Call       Call

	// Pooled extrinsics of higher priority are applied first.
	Priority uint64
}

// ID identifies an extrinsic by its credential and call. Calls implementing
// encoding.BinaryMarshaler also contribute their arguments.
func (e Extrinsic) ID() ExtrinsicID {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	cred := e.Credential

	_, _ = buf.Write(cred.Signer[:])
	_, _ = buf.Write(cred.User[:])
	_, _ = buf.Write(cred.Nonce[:])

	var block [8]byte
	binary.LittleEndian.PutUint64(block[:], cred.Block)

	_, _ = buf.Write(block[:])
	_, _ = buf.Write(cred.Signature[:])

	if e.Call != nil {
		if encoded, err := EncodeCall(e.Call); err == nil {
			_, _ = buf.Write(encoded)
		} else {
			_, _ = buf.WriteString(e.Call.Name())
		}
	}

	return highwayhash.Sum(buf.B, extrinsicHashKey[:])
}

// EncodeCall renders the bytes a credential signs for call: its name, a zero byte, then its
// arguments if it implements encoding.BinaryMarshaler.
func EncodeCall(call Call) ([]byte, error) {
	encoded := append([]byte(call.Name()), 0)

	if m, ok := call.(encoding.BinaryMarshaler); ok {
		payload, err := m.MarshalBinary()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to encode call %q", call.Name())
		}

		encoded = append(encoded, payload...)
	}

	return encoded, nil
}

// Sign builds an extrinsic carrying call, with a credential produced by k at block that
// binds who to exactly that call.
func Sign(k *auth.Keypair, challenger auth.Challenger, who pallets.AccountID, block uint64, call Call) (Extrinsic, error) {
	encoded, err := EncodeCall(call)
	if err != nil {
		return Extrinsic{}, err
	}

	return Extrinsic{Credential: k.Credential(challenger, who, block, encoded), Call: call}, nil
}
