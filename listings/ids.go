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

package listings

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	SizeInventoryID = 2 + 4
	SizeItemID      = 4
)

var (
	_ = identifier[InventoryID, *InventoryID]
	_ = identifier[ItemID, *ItemID]
)

func identifier[I Identifier, P IdentifierPtr[I]]() {}

// InventoryID is an inventory numbered within the merchant that owns it.
type InventoryID struct {
	Merchant uint16
	ID       uint32
}

func (id InventoryID) MaxEncodedLen() int {
	return SizeInventoryID
}

// MarshalBinary encodes big-endian so that encodings sort like the IDs do.
func (id InventoryID) MarshalBinary() ([]byte, error) {
	buf := make([]byte, SizeInventoryID)

	binary.BigEndian.PutUint16(buf[:2], id.Merchant)
	binary.BigEndian.PutUint32(buf[2:], id.ID)

	return buf, nil
}

func (id *InventoryID) UnmarshalBinary(buf []byte) error {
	if len(buf) != SizeInventoryID {
		return errors.Errorf("inventory id: expected %d bytes, got %d", SizeInventoryID, len(buf))
	}

	id.Merchant = binary.BigEndian.Uint16(buf[:2])
	id.ID = binary.BigEndian.Uint32(buf[2:])

	return nil
}

func (id InventoryID) String() string {
	return fmt.Sprintf("%d/%d", id.Merchant, id.ID)
}

func (id InventoryID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *InventoryID) UnmarshalText(text []byte) error {
	parts := strings.SplitN(string(text), "/", 2)
	if len(parts) != 2 {
		return errors.Errorf("inventory id: expected merchant/id, got %q", text)
	}

	merchant, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return errors.Wrapf(err, "inventory id: bad merchant in %q", text)
	}

	n, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return errors.Wrapf(err, "inventory id: bad id in %q", text)
	}

	id.Merchant, id.ID = uint16(merchant), uint32(n)

	return nil
}

type ItemID uint32

func (id ItemID) MaxEncodedLen() int {
	return SizeItemID
}

func (id ItemID) MarshalBinary() ([]byte, error) {
	buf := make([]byte, SizeItemID)
	binary.BigEndian.PutUint32(buf, uint32(id))

	return buf, nil
}

func (id *ItemID) UnmarshalBinary(buf []byte) error {
	if len(buf) != SizeItemID {
		return errors.Errorf("item id: expected %d bytes, got %d", SizeItemID, len(buf))
	}

	*id = ItemID(binary.BigEndian.Uint32(buf))

	return nil
}

func (id ItemID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

func (id ItemID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ItemID) UnmarshalText(text []byte) error {
	n, err := strconv.ParseUint(string(text), 10, 32)
	if err != nil {
		return errors.Wrapf(err, "item id: %q", text)
	}

	*id = ItemID(n)

	return nil
}

// encodeID encodes an identifier for use in a state key.
func encodeID[I Identifier](id I) []byte {
	buf, err := id.MarshalBinary()
	if err != nil {
		panic(errors.Wrapf(err, "listings: failed to encode %s", id))
	}

	if len(buf) > id.MaxEncodedLen() {
		panic(errors.Errorf("listings: %s encodes to %d bytes, more than its bound of %d", id, len(buf), id.MaxEncodedLen()))
	}

	return buf
}

// decodeID decodes an identifier from a state key.
func decodeID[I Identifier, P IdentifierPtr[I]](buf []byte) (I, error) {
	var id I

	if err := P(&id).UnmarshalBinary(buf); err != nil {
		return id, err
	}

	return id, nil
}
