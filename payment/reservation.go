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
	"encoding/binary"
	"fmt"

	"github.com/perlin-network/pallets"
	"github.com/pkg/errors"
)

type Status byte

const (
	StatusUncharged Status = iota
	StatusReserved
	StatusSettled
)

func (s Status) String() string {
	switch s {
	case StatusUncharged:
		return "uncharged"
	case StatusReserved:
		return "reserved"
	case StatusSettled:
		return "settled"
	default:
		return fmt.Sprintf("status(%d)", byte(s))
	}
}

const SizeReservation = pallets.SizeWeight + 8 + 1

// Reservation is an in-flight charge against an account's gas tank.
type Reservation struct {
	Initial pallets.Weight
	Charged pallets.Gas
	Status  Status
}

func (r Reservation) Marshal() []byte {
	buf := make([]byte, 0, SizeReservation)

	buf = append(buf, r.Initial.Marshal()...)

	var charged [8]byte
	binary.LittleEndian.PutUint64(charged[:], uint64(r.Charged))

	buf = append(buf, charged[:]...)
	buf = append(buf, byte(r.Status))

	return buf
}

func UnmarshalReservation(buf []byte) (Reservation, error) {
	var r Reservation

	if len(buf) != SizeReservation {
		return r, errors.Wrapf(ErrBadReservation, "expected %d bytes, got %d", SizeReservation, len(buf))
	}

	initial, err := pallets.UnmarshalWeight(buf[:pallets.SizeWeight])
	if err != nil {
		return r, errors.Wrap(ErrBadReservation, err.Error())
	}

	r.Initial = initial
	r.Charged = pallets.Gas(binary.LittleEndian.Uint64(buf[pallets.SizeWeight : pallets.SizeWeight+8]))
	r.Status = Status(buf[pallets.SizeWeight+8])

	if r.Status > StatusSettled {
		return r, errors.Wrapf(ErrBadReservation, "unknown status %d", r.Status)
	}

	return r, nil
}
