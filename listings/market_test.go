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

package listings_test

import (
	"strings"
	"testing"

	"github.com/perlin-network/pallets"
	"github.com/perlin-network/pallets/conf"
	"github.com/perlin-network/pallets/events"
	"github.com/perlin-network/pallets/listings"
	"github.com/perlin-network/pallets/mock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastjson"
)

var (
	merchant = pallets.AccountID{0x10}
	buyer    = pallets.AccountID{0x20}

	shop  = listings.InventoryID{Merchant: 1, ID: 1}
	other = listings.InventoryID{Merchant: 1, ID: 2}
)

func newTestMarket(t *testing.T) *listings.Market {
	t.Helper()

	state := mock.NewState(t, mock.NewInventories().
		WithInventory(shop, merchant).
		AsStorage(),
	)

	return listings.NewMarket(state, listings.WithHub(events.NewHub()))
}

func TestInventoryLifecycle(t *testing.T) {
	m := newTestMarket(t)

	assert.True(t, m.InventoryExists(shop))
	assert.True(t, m.InventoryActive(shop))

	owner, ok := m.InventoryOwner(shop)
	assert.True(t, ok)
	assert.Equal(t, merchant, owner)

	assert.False(t, m.InventoryExists(other))
	assert.False(t, m.InventoryActive(other))

	assert.Equal(t, listings.ErrInventoryExists, errors.Cause(m.CreateInventory(shop, buyer)))

	require.NoError(t, m.CreateInventory(other, buyer))
	owner, _ = m.InventoryOwner(other)
	assert.Equal(t, buyer, owner)

	require.NoError(t, m.SetInventoryAttribute(other, []byte("theme"), []byte("dark")))
	value, ok := m.InventoryAttribute(other, []byte("theme"))
	assert.True(t, ok)
	assert.Equal(t, []byte("dark"), value)

	require.NoError(t, m.ArchiveInventory(other))
	assert.True(t, m.InventoryExists(other))
	assert.False(t, m.InventoryActive(other))

	assert.Equal(t, listings.ErrInventoryArchived, errors.Cause(m.ArchiveInventory(other)))
	assert.Equal(t, listings.ErrInventoryArchived, errors.Cause(m.SetInventoryAttribute(other, []byte("a"), nil)))
	assert.Equal(t, listings.ErrInventoryArchived, errors.Cause(m.PublishItem(other, 1, "x", 1)))
}

func TestItemLifecycle(t *testing.T) {
	m := newTestMarket(t)

	require.NoError(t, m.PublishItem(shop, 2, "chair", 300))
	require.NoError(t, m.PublishItem(shop, 1, "table", 900))

	assert.Equal(t, listings.ErrItemExists, errors.Cause(m.PublishItem(shop, 1, "again", 1)))
	assert.Equal(t, listings.ErrUnknownInventory, errors.Cause(m.PublishItem(other, 1, "x", 1)))

	assert.Equal(t, []listings.ItemID{1, 2}, m.Items(shop))
	assert.Empty(t, m.Items(other))

	it, ok := m.Item(shop, 1)
	require.True(t, ok)
	assert.Equal(t, "table", it.Name)
	assert.Equal(t, merchant, it.Owner)

	require.NoError(t, m.SetPrice(shop, 1, 850))
	price, _ := m.ItemPrice(shop, 1)
	assert.Equal(t, pallets.Balance(850), price)

	require.NoError(t, m.SetItemAttribute(shop, 1, []byte("wood"), []byte("oak")))
	value, ok := m.ItemAttribute(shop, 1, []byte("wood"))
	assert.True(t, ok)
	assert.Equal(t, []byte("oak"), value)

	require.NoError(t, m.ClearItemAttribute(shop, 1, []byte("wood")))
	require.NoError(t, m.ClearItemAttribute(shop, 1, []byte("wood")))
	_, ok = m.ItemAttribute(shop, 1, []byte("wood"))
	assert.False(t, ok)

	assert.Equal(t, listings.ErrUnknownItem, errors.Cause(m.SetPrice(shop, 3, 1)))
}

func TestTransferItem(t *testing.T) {
	m := newTestMarket(t)

	require.NoError(t, m.PublishItem(shop, 1, "table", 900))
	assert.True(t, m.ItemTransferable(shop, 1))

	require.NoError(t, m.DisableTransfer(shop, 1))
	assert.False(t, m.ItemTransferable(shop, 1))
	assert.Equal(t, listings.ErrNotTransferable, errors.Cause(m.TransferItem(shop, 1, buyer)))

	require.NoError(t, m.EnableTransfer(shop, 1))
	require.NoError(t, m.TransferItem(shop, 1, buyer))

	owner, _ := m.ItemOwner(shop, 1)
	assert.Equal(t, buyer, owner)

	// Archiving an inventory freezes its items.
	require.NoError(t, m.ArchiveInventory(shop))
	assert.False(t, m.ItemTransferable(shop, 1))
	assert.Equal(t, listings.ErrInventoryArchived, errors.Cause(m.TransferItem(shop, 1, merchant)))
}

func TestListingBounds(t *testing.T) {
	defer conf.Reset()
	conf.Update(conf.WithMaxItemNameLen(4), conf.WithMaxAttributeKeyLen(2), conf.WithMaxAttributeLen(3))

	m := newTestMarket(t)

	assert.Equal(t, listings.ErrNameTooLong, errors.Cause(m.PublishItem(shop, 1, "table", 1)))
	require.NoError(t, m.PublishItem(shop, 1, "desk", 1))

	assert.Equal(t, listings.ErrAttributeKeyTooLong, errors.Cause(m.SetItemAttribute(shop, 1, []byte("key"), nil)))
	assert.Equal(t, listings.ErrAttributeTooLong, errors.Cause(m.SetItemAttribute(shop, 1, []byte("k"), []byte("long"))))
	assert.Equal(t, listings.ErrAttributeTooLong, errors.Cause(m.SetInventoryAttribute(shop, []byte("k"), []byte(strings.Repeat("v", 4)))))
}

func TestSubscriptions(t *testing.T) {
	m := newTestMarket(t)

	var inventories []listings.InventoryEvent[listings.InventoryID]
	var items []listings.ItemEvent[listings.InventoryID, listings.ItemID]

	m.SubscribeInventory(func(ev listings.InventoryEvent[listings.InventoryID]) bool {
		inventories = append(inventories, ev)
		return true
	})

	m.SubscribeItem(func(ev listings.ItemEvent[listings.InventoryID, listings.ItemID]) bool {
		items = append(items, ev)
		return len(items) < 2
	})

	require.NoError(t, m.CreateInventory(other, buyer))
	require.NoError(t, m.PublishItem(shop, 1, "lamp", 10))
	require.NoError(t, m.SetPrice(shop, 1, 20))
	require.NoError(t, m.TransferItem(shop, 1, buyer))

	require.Len(t, inventories, 1)
	assert.Equal(t, listings.EventCreated, inventories[0].Kind)
	assert.Equal(t, other, inventories[0].Inventory)

	// The item subscriber unsubscribed itself after two events.
	require.Len(t, items, 2)
	assert.Equal(t, listings.EventPublished, items[0].Kind)
	assert.Equal(t, listings.EventPriceSet, items[1].Kind)
	assert.Equal(t, pallets.Balance(20), items[1].Price)
}

func TestMarshalInventory(t *testing.T) {
	m := newTestMarket(t)

	require.NoError(t, m.PublishItem(shop, 1, "lamp", 10))
	require.NoError(t, m.SetItemAttribute(shop, 1, []byte("colour"), []byte{0xAB}))

	var arena fastjson.Arena

	buf, err := m.MarshalInventory(&arena, shop)
	require.NoError(t, err)

	v, err := fastjson.ParseBytes(buf)
	require.NoError(t, err)

	assert.Equal(t, "1/1", string(v.GetStringBytes("id")))
	assert.Equal(t, merchant.String(), string(v.GetStringBytes("owner")))
	assert.True(t, v.GetBool("active"))

	items := v.GetArray("items")
	require.Len(t, items, 1)
	assert.Equal(t, "lamp", string(items[0].GetStringBytes("name")))
	assert.Equal(t, uint64(10), items[0].GetUint64("price"))
	assert.Equal(t, "ab", string(items[0].GetStringBytes("attributes", "colour")))

	_, err = m.MarshalInventory(&arena, other)
	assert.Equal(t, listings.ErrUnknownInventory, errors.Cause(err))
}
