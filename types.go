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

package pallets

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"math/bits"

	"github.com/pkg/errors"
)

const (
	SizeAccountID = 32
	SizeWeight    = 16
)

type AccountID [SizeAccountID]byte

func (id AccountID) String() string {
	return hex.EncodeToString(id[:])
}

func (id AccountID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *AccountID) UnmarshalText(text []byte) error {
	parsed, err := ParseAccountID(string(text))
	if err != nil {
		return err
	}

	*id = parsed
	return nil
}

// ParseAccountID decodes a hex-encoded account ID.
func ParseAccountID(s string) (AccountID, error) {
	var id AccountID

	if hex.DecodedLen(len(s)) != SizeAccountID {
		return id, errors.Wrapf(ErrInvalidAccountID, "%q is %d bytes long, expected %d", s, hex.DecodedLen(len(s)), SizeAccountID)
	}

	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return id, errors.Wrapf(ErrInvalidAccountID, "%q: %v", s, err)
	}

	return id, nil
}

// Balance is an amount of the native currency held by an account.
type Balance uint64

func (b Balance) SaturatingAdd(other Balance) Balance {
	sum, carry := bits.Add64(uint64(b), uint64(other), 0)
	if carry != 0 {
		return math.MaxUint64
	}

	return Balance(sum)
}

func (b Balance) SaturatingSub(other Balance) Balance {
	if other > b {
		return 0
	}

	return b - other
}

// Gas is an amount of prepaid execution allowance held in an account's gas tank.
type Gas uint64

func (g Gas) SaturatingAdd(other Gas) Gas {
	sum, carry := bits.Add64(uint64(g), uint64(other), 0)
	if carry != 0 {
		return math.MaxUint64
	}

	return Gas(sum)
}

func (g Gas) SaturatingSub(other Gas) Gas {
	if other > g {
		return 0
	}

	return g - other
}

// Weight is the two-dimensional computational cost of a call: execution time and the
// size of the storage proof it produces.
type Weight struct {
	RefTime   uint64
	ProofSize uint64
}

func NewWeight(refTime, proofSize uint64) Weight {
	return Weight{RefTime: refTime, ProofSize: proofSize}
}

func (w Weight) IsZero() bool {
	return w.RefTime == 0 && w.ProofSize == 0
}

// Add adds two weights component-wise, saturating at the maximum.
func (w Weight) Add(other Weight) Weight {
	return Weight{
		RefTime:   uint64(Gas(w.RefTime).SaturatingAdd(Gas(other.RefTime))),
		ProofSize: uint64(Gas(w.ProofSize).SaturatingAdd(Gas(other.ProofSize))),
	}
}

// SaturatingSub subtracts two weights component-wise, clamping at zero.
func (w Weight) SaturatingSub(other Weight) Weight {
	return Weight{
		RefTime:   uint64(Gas(w.RefTime).SaturatingSub(Gas(other.RefTime))),
		ProofSize: uint64(Gas(w.ProofSize).SaturatingSub(Gas(other.ProofSize))),
	}
}

// AllGTE reports whether every component of w is at least the matching component of other.
func (w Weight) AllGTE(other Weight) bool {
	return w.RefTime >= other.RefTime && w.ProofSize >= other.ProofSize
}

func (w Weight) String() string {
	return fmt.Sprintf("Weight(ref_time: %d, proof_size: %d)", w.RefTime, w.ProofSize)
}

func (w Weight) Marshal() []byte {
	var buf [SizeWeight]byte

	binary.LittleEndian.PutUint64(buf[:8], w.RefTime)
	binary.LittleEndian.PutUint64(buf[8:], w.ProofSize)

	return buf[:]
}

func UnmarshalWeight(buf []byte) (Weight, error) {
	if len(buf) < SizeWeight {
		return Weight{}, errors.Errorf("weight: expected %d bytes, got %d", SizeWeight, len(buf))
	}

	return Weight{
		RefTime:   binary.LittleEndian.Uint64(buf[:8]),
		ProofSize: binary.LittleEndian.Uint64(buf[8:16]),
	}, nil
}
