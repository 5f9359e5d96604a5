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
	"bytes"
	"testing"

	"github.com/perlin-network/pallets"
	"github.com/perlin-network/pallets/auth"
	"github.com/perlin-network/pallets/conf"
	"github.com/perlin-network/pallets/events"
	"github.com/perlin-network/pallets/listings"
	"github.com/perlin-network/pallets/mock"
	"github.com/perlin-network/pallets/runtime"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const block = 3

type callHarness struct {
	exec       *runtime.Executive
	market     *listings.Market
	hub        *events.Hub
	challenger *auth.BlockChallenger
	keys       map[pallets.AccountID]*auth.Keypair
}

func newCallHarness(t *testing.T) *callHarness {
	t.Helper()

	conf.Reset()

	h := &callHarness{
		hub:        events.NewHub(),
		challenger: &auth.BlockChallenger{Seed: []byte("listings")},
		keys:       make(map[pallets.AccountID]*auth.Keypair),
	}

	devices := mock.NewDevices()

	for i, who := range []pallets.AccountID{merchant, buyer} {
		k, err := auth.KeypairFromSeed(bytes.Repeat([]byte{byte(i + 1)}, 32))
		require.NoError(t, err)

		h.keys[who] = k
		devices.WithDevice(who, k.Device(), 0)
	}

	state := mock.NewState(t,
		mock.NewGasTanks().WithTank(merchant, 1_000_000).WithTank(buyer, 1_000_000).AsStorage(),
		devices.AsStorage(),
		mock.NewInventories().WithInventory(shop, merchant).AsStorage(),
	)

	calls := runtime.NewCalls()
	require.NoError(t, listings.Register(calls))

	h.exec = runtime.NewExecutive(state, auth.NewRegistry(h.challenger), runtime.WithHub(h.hub), runtime.WithCalls(calls))
	h.exec.SetBlock(block)

	h.market = listings.NewMarket(state, listings.WithHub(h.hub))

	return h
}

func (h *callHarness) apply(t *testing.T, who pallets.AccountID, call runtime.Call) runtime.ApplyResult {
	t.Helper()

	ext, err := runtime.Sign(h.keys[who], h.challenger, who, block, call)
	require.NoError(t, err)

	result, err := h.exec.Apply(ext)
	require.NoError(t, err)

	return result
}

func TestCreateInventoryCall(t *testing.T) {
	h := newCallHarness(t)

	var created []listings.InventoryEvent[listings.InventoryID]
	h.market.SubscribeInventory(func(ev listings.InventoryEvent[listings.InventoryID]) bool {
		created = append(created, ev)
		return true
	})

	result := h.apply(t, merchant, listings.CreateInventoryCall{Inventory: other})
	require.True(t, result.Ok())

	owner, ok := h.market.InventoryOwner(other)
	require.True(t, ok)
	assert.Equal(t, merchant, owner)

	require.Len(t, created, 1)
	assert.Equal(t, listings.EventCreated, created[0].Kind)
	assert.Equal(t, other, created[0].Inventory)

	evs := h.exec.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, events.TopicListings, evs[0].Topic)

	result = h.apply(t, buyer, listings.CreateInventoryCall{Inventory: other})
	assert.Equal(t, listings.ErrInventoryExists, errors.Cause(result.Err))
}

func TestOnlyOwnersPublishAndArchive(t *testing.T) {
	h := newCallHarness(t)

	var published int
	h.market.SubscribeItem(func(ev listings.ItemEvent[listings.InventoryID, listings.ItemID]) bool {
		published++
		return true
	})

	result := h.apply(t, buyer, listings.PublishItemCall{Inventory: shop, Item: 7, Title: "hat", Price: 50})
	assert.Equal(t, listings.ErrNotOwner, errors.Cause(result.Err))

	_, exists := h.market.Item(shop, 7)
	assert.False(t, exists)
	assert.Zero(t, published)

	result = h.apply(t, merchant, listings.PublishItemCall{Inventory: shop, Item: 7, Title: "hat", Price: 50})
	require.True(t, result.Ok())
	assert.Equal(t, 1, published)

	result = h.apply(t, buyer, listings.SetPriceCall{Inventory: shop, Item: 7, Price: 1})
	assert.Equal(t, listings.ErrNotOwner, errors.Cause(result.Err))

	result = h.apply(t, merchant, listings.SetPriceCall{Inventory: shop, Item: 7, Price: 60})
	require.True(t, result.Ok())

	price, _ := h.market.ItemPrice(shop, 7)
	assert.Equal(t, pallets.Balance(60), price)

	result = h.apply(t, buyer, listings.ArchiveInventoryCall{Inventory: shop})
	assert.Equal(t, listings.ErrNotOwner, errors.Cause(result.Err))

	result = h.apply(t, merchant, listings.ArchiveInventoryCall{Inventory: other})
	assert.Equal(t, listings.ErrUnknownInventory, errors.Cause(result.Err))

	result = h.apply(t, merchant, listings.ArchiveInventoryCall{Inventory: shop})
	require.True(t, result.Ok())
	assert.False(t, h.market.InventoryActive(shop))
}

func TestTransferItemCall(t *testing.T) {
	h := newCallHarness(t)

	require.True(t, h.apply(t, merchant, listings.PublishItemCall{Inventory: shop, Item: 1, Title: "lamp", Price: 5}).Ok())

	result := h.apply(t, buyer, listings.TransferItemCall{Inventory: shop, Item: 1, To: buyer})
	assert.Equal(t, listings.ErrNotOwner, errors.Cause(result.Err))

	result = h.apply(t, merchant, listings.TransferItemCall{Inventory: shop, Item: 1, To: buyer})
	require.True(t, result.Ok())

	owner, _ := h.market.ItemOwner(shop, 1)
	assert.Equal(t, buyer, owner)

	result = h.apply(t, merchant, listings.TransferItemCall{Inventory: shop, Item: 1, To: merchant})
	assert.Equal(t, listings.ErrNotOwner, errors.Cause(result.Err))

	result = h.apply(t, buyer, listings.TransferItemCall{Inventory: shop, Item: 2, To: merchant})
	assert.Equal(t, listings.ErrUnknownItem, errors.Cause(result.Err))
}

func TestTransferCannotRideAnotherCallsCredential(t *testing.T) {
	h := newCallHarness(t)

	require.True(t, h.apply(t, merchant, listings.PublishItemCall{Inventory: shop, Item: 1, Title: "lamp", Price: 5}).Ok())

	signed, err := runtime.Sign(h.keys[merchant], h.challenger, merchant, block, listings.SetPriceCall{Inventory: shop, Item: 1, Price: 6})
	require.NoError(t, err)

	forged := signed
	forged.Call = listings.TransferItemCall{Inventory: shop, Item: 1, To: buyer}

	_, err = h.exec.Apply(forged)
	assert.Equal(t, auth.ErrCallMismatch, errors.Cause(err))

	owner, _ := h.market.ItemOwner(shop, 1)
	assert.Equal(t, merchant, owner)
}

func TestRegisterDecodesCalls(t *testing.T) {
	calls := runtime.NewCalls()
	require.NoError(t, listings.Register(calls))

	assert.Len(t, calls.Pallet(listings.Pallet), 5)

	call, err := calls.Decode(listings.CallPublishItem, []string{"1/1", "7", "hat", "50"})
	require.NoError(t, err)
	assert.Equal(t, listings.PublishItemCall{Inventory: shop, Item: 7, Title: "hat", Price: 50}, call)

	call, err = calls.Decode(listings.CallTransferItem, []string{"1/1", "7", buyer.String()})
	require.NoError(t, err)
	assert.Equal(t, listings.TransferItemCall{Inventory: shop, Item: 7, To: buyer}, call)

	_, err = calls.Decode(listings.CallCreateInventory, []string{"1"})
	assert.Error(t, err)

	_, err = calls.Decode(listings.CallSetPrice, []string{"1/1", "7"})
	assert.Error(t, err)

	_, err = calls.Decode(listings.CallSetPrice, []string{"1/1", "7", "-3"})
	assert.Error(t, err)
}
