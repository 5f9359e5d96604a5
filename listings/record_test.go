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
	"strings"
	"testing"

	"github.com/perlin-network/pallets"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifiers(t *testing.T) {
	inv := InventoryID{Merchant: 3, ID: 70000}

	buf := encodeID(inv)
	assert.Len(t, buf, inv.MaxEncodedLen())

	var decoded InventoryID
	require.NoError(t, decoded.UnmarshalBinary(buf))
	assert.Equal(t, inv, decoded)

	text, err := inv.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "3/70000", string(text))

	decoded = InventoryID{}
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, inv, decoded)

	assert.Error(t, decoded.UnmarshalText([]byte("3")))
	assert.Error(t, decoded.UnmarshalText([]byte("70000/1")))
	assert.Error(t, decoded.UnmarshalBinary([]byte{1}))

	item := ItemID(42)

	var decodedItem ItemID
	require.NoError(t, decodedItem.UnmarshalBinary(encodeID(item)))
	assert.Equal(t, item, decodedItem)

	require.NoError(t, decodedItem.UnmarshalText([]byte("7")))
	assert.Equal(t, ItemID(7), decodedItem)
	assert.Error(t, decodedItem.UnmarshalText([]byte("-1")))
}

func TestDecodeIDRoundTrips(t *testing.T) {
	inv := InventoryID{Merchant: 9, ID: 12}

	decodedInv, err := decodeID[InventoryID](encodeID(inv))
	require.NoError(t, err)
	assert.Equal(t, inv, decodedInv)

	decodedItem, err := decodeID[ItemID](encodeID(ItemID(300)))
	require.NoError(t, err)
	assert.Equal(t, ItemID(300), decodedItem)

	_, err = decodeID[ItemID]([]byte{1, 2})
	assert.Error(t, err)
}

func TestIdentifierEncodingSortsLikeIDs(t *testing.T) {
	assert.Less(t, string(encodeID(ItemID(255))), string(encodeID(ItemID(256))))
	assert.Less(t, string(encodeID(InventoryID{Merchant: 1, ID: 9})), string(encodeID(InventoryID{Merchant: 2, ID: 0})))
}

func TestAttributesCodec(t *testing.T) {
	a := Attributes{
		"colour": []byte("red"),
		"size":   []byte(strings.Repeat("x", 500)),
		"empty":  {},
	}

	decoded, err := UnmarshalAttributes(a.Marshal())
	require.NoError(t, err)
	assert.Equal(t, len(a), len(decoded))
	assert.Equal(t, []byte("red"), decoded["colour"])
	assert.Equal(t, a["size"], decoded["size"])
	assert.Empty(t, decoded["empty"])

	// Encoding does not depend on map iteration order.
	assert.Equal(t, a.Marshal(), a.Marshal())

	assert.Nil(t, Attributes{}.Marshal())

	decoded, err = UnmarshalAttributes(nil)
	require.NoError(t, err)
	assert.Empty(t, decoded)

	_, err = UnmarshalAttributes([]byte("definitely not snappy"))
	assert.Equal(t, ErrBadRecord, errors.Cause(err))
}

func TestItemRecordCodec(t *testing.T) {
	it := Item{
		Owner:        pallets.AccountID{9},
		Name:         "lamp",
		Price:        1500,
		Transferable: true,
		Attributes:   Attributes{"watts": []byte("60")},
	}

	decoded, err := unmarshalItem(it.marshal())
	require.NoError(t, err)
	assert.Equal(t, it, decoded)

	_, err = unmarshalItem([]byte{1, 2, 3})
	assert.Equal(t, ErrBadRecord, errors.Cause(err))

	buf := it.marshal()
	_, err = unmarshalItem(buf[:sizeItemHeader+2])
	assert.Equal(t, ErrBadRecord, errors.Cause(err))
}

func TestInventoryRecordCodec(t *testing.T) {
	r := inventoryRecord{Owner: pallets.AccountID{1}, Archived: true, Attributes: Attributes{"k": []byte("v")}}

	decoded, err := unmarshalInventoryRecord(r.marshal())
	require.NoError(t, err)
	assert.Equal(t, r, decoded)

	_, err = unmarshalInventoryRecord([]byte{1})
	assert.Equal(t, ErrBadRecord, errors.Cause(err))
}
