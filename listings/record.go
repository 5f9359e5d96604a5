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
	"bytes"
	"encoding/binary"
	"sort"

	"github.com/golang/snappy"
	"github.com/perlin-network/pallets"
	"github.com/pkg/errors"
)

// Attributes are free-form key/value metadata attached to an inventory or an item.
type Attributes map[string][]byte

// Marshal encodes attributes sorted by key, snappy-compressed.
func (a Attributes) Marshal() []byte {
	if len(a) == 0 {
		return nil
	}

	keys := make([]string, 0, len(a))
	for key := range a {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	var (
		buf bytes.Buffer
		n   [binary.MaxVarintLen64]byte
	)

	for _, key := range keys {
		buf.Write(n[:binary.PutUvarint(n[:], uint64(len(key)))])
		buf.WriteString(key)

		value := a[key]
		buf.Write(n[:binary.PutUvarint(n[:], uint64(len(value)))])
		buf.Write(value)
	}

	return snappy.Encode(nil, buf.Bytes())
}

func UnmarshalAttributes(compressed []byte) (Attributes, error) {
	a := make(Attributes)

	if len(compressed) == 0 {
		return a, nil
	}

	buf, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, errors.Wrap(ErrBadRecord, err.Error())
	}

	r := bytes.NewReader(buf)

	next := func() ([]byte, error) {
		size, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, err
		}

		if size > uint64(r.Len()) {
			return nil, errors.Errorf("attribute of %d bytes overruns record", size)
		}

		chunk := make([]byte, size)
		_, _ = r.Read(chunk)

		return chunk, nil
	}

	for r.Len() > 0 {
		key, err := next()
		if err != nil {
			return nil, errors.Wrap(ErrBadRecord, err.Error())
		}

		value, err := next()
		if err != nil {
			return nil, errors.Wrap(ErrBadRecord, err.Error())
		}

		a[string(key)] = value
	}

	return a, nil
}

type inventoryRecord struct {
	Owner      pallets.AccountID
	Archived   bool
	Attributes Attributes
}

func (r inventoryRecord) marshal() []byte {
	buf := make([]byte, 0, pallets.SizeAccountID+1)

	buf = append(buf, r.Owner[:]...)
	buf = append(buf, boolByte(r.Archived))

	return append(buf, r.Attributes.Marshal()...)
}

func unmarshalInventoryRecord(buf []byte) (inventoryRecord, error) {
	var r inventoryRecord

	if len(buf) < pallets.SizeAccountID+1 {
		return r, errors.Wrapf(ErrBadRecord, "inventory record of %d bytes", len(buf))
	}

	copy(r.Owner[:], buf)
	r.Archived = buf[pallets.SizeAccountID] == 1

	attributes, err := UnmarshalAttributes(buf[pallets.SizeAccountID+1:])
	if err != nil {
		return r, err
	}

	r.Attributes = attributes

	return r, nil
}

// Item is an entry of an inventory.
type Item struct {
	Owner        pallets.AccountID
	Name         string
	Price        pallets.Balance
	Transferable bool
	Attributes   Attributes
}

const sizeItemHeader = pallets.SizeAccountID + 8 + 1 + 2

func (it Item) marshal() []byte {
	buf := make([]byte, sizeItemHeader, sizeItemHeader+len(it.Name))

	copy(buf, it.Owner[:])
	binary.LittleEndian.PutUint64(buf[pallets.SizeAccountID:], uint64(it.Price))
	buf[pallets.SizeAccountID+8] = boolByte(it.Transferable)
	binary.LittleEndian.PutUint16(buf[pallets.SizeAccountID+9:], uint16(len(it.Name)))

	buf = append(buf, it.Name...)

	return append(buf, it.Attributes.Marshal()...)
}

func unmarshalItem(buf []byte) (Item, error) {
	var it Item

	if len(buf) < sizeItemHeader {
		return it, errors.Wrapf(ErrBadRecord, "item record of %d bytes", len(buf))
	}

	copy(it.Owner[:], buf)
	it.Price = pallets.Balance(binary.LittleEndian.Uint64(buf[pallets.SizeAccountID:]))
	it.Transferable = buf[pallets.SizeAccountID+8] == 1

	nameLen := int(binary.LittleEndian.Uint16(buf[pallets.SizeAccountID+9:]))
	buf = buf[sizeItemHeader:]

	if nameLen > len(buf) {
		return it, errors.Wrapf(ErrBadRecord, "item name of %d bytes overruns record", nameLen)
	}

	it.Name = string(buf[:nameLen])

	attributes, err := UnmarshalAttributes(buf[nameLen:])
	if err != nil {
		return it, err
	}

	it.Attributes = attributes

	return it, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}

	return 0
}
