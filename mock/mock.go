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

// Package mock builds genesis storage for tests.
//
// Builders append exactly what they are given: adding the same account twice yields two
// entries, in the order they were added. Nothing is merged or validated until the storage
// is assimilated, at which point later entries overwrite earlier ones.
package mock

import (
	"testing"

	"github.com/perlin-network/pallets"
	"github.com/perlin-network/pallets/auth"
	"github.com/perlin-network/pallets/avl"
	"github.com/perlin-network/pallets/listings"
	"github.com/perlin-network/pallets/log"
	"github.com/perlin-network/pallets/store"
	"github.com/stretchr/testify/require"
)

// Balances accumulates account balances. The zero value is ready to use.
type Balances struct {
	entries []pallets.BalanceEntry
}

func NewBalances() *Balances {
	return &Balances{}
}

// WithAccount appends an account holding amount.
func (b *Balances) WithAccount(id pallets.AccountID, amount pallets.Balance) *Balances {
	b.entries = append(b.entries, pallets.BalanceEntry{Account: id, Amount: amount})
	return b
}

func (b *Balances) Entries() []pallets.BalanceEntry {
	return append([]pallets.BalanceEntry(nil), b.entries...)
}

// AsStorage renders the accumulated balances as genesis storage.
func (b *Balances) AsStorage() *pallets.Storage {
	return &pallets.Storage{Balances: b.Entries()}
}

// GasTanks accumulates prepaid gas tanks.
type GasTanks struct {
	entries []pallets.GasEntry
}

func NewGasTanks() *GasTanks {
	return &GasTanks{}
}

// WithTank appends a gas tank holding gas. A tank holding zero gas is still registered.
func (g *GasTanks) WithTank(id pallets.AccountID, gas pallets.Gas) *GasTanks {
	g.entries = append(g.entries, pallets.GasEntry{Account: id, Gas: gas})
	return g
}

func (g *GasTanks) Entries() []pallets.GasEntry {
	return append([]pallets.GasEntry(nil), g.entries...)
}

func (g *GasTanks) AsStorage() *pallets.Storage {
	return &pallets.Storage{GasTanks: g.Entries()}
}

// Devices accumulates devices registered to accounts.
type Devices struct {
	entries []pallets.KeyValue
}

func NewDevices() *Devices {
	return &Devices{}
}

// WithDevice registers device to owner as of block.
func (d *Devices) WithDevice(owner pallets.AccountID, device auth.DeviceOf, block uint64) *Devices {
	id := device.ID()

	d.entries = append(d.entries, pallets.KeyValue{
		Key:   pallets.DeviceKey(owner, id[:]),
		Value: auth.EncodeDeviceRecord(device, block),
	})

	return d
}

func (d *Devices) Entries() []pallets.KeyValue {
	return append([]pallets.KeyValue(nil), d.entries...)
}

func (d *Devices) AsStorage() *pallets.Storage {
	return &pallets.Storage{Raw: d.Entries()}
}

// Inventories accumulates listings inventories and their items.
type Inventories struct {
	entries []pallets.KeyValue
}

func NewInventories() *Inventories {
	return &Inventories{}
}

// WithInventory appends an active inventory owned by owner.
func (i *Inventories) WithInventory(id listings.InventoryID, owner pallets.AccountID) *Inventories {
	i.entries = append(i.entries, listings.GenesisInventory(id, owner, nil))
	return i
}

// WithItem appends an item to an inventory. The inventory is not required to exist.
func (i *Inventories) WithItem(inventory listings.InventoryID, id listings.ItemID, item listings.Item) *Inventories {
	i.entries = append(i.entries, listings.GenesisItem(inventory, id, item))
	return i
}

func (i *Inventories) Entries() []pallets.KeyValue {
	return append([]pallets.KeyValue(nil), i.entries...)
}

func (i *Inventories) AsStorage() *pallets.Storage {
	return &pallets.Storage{Raw: i.Entries()}
}

// NewState returns an in-memory state tree with every storage assimilated into it, in order.
// Each storage is consumed. Logs written during the test are routed to t.
func NewState(t testing.TB, storages ...*pallets.Storage) *avl.Tree {
	t.Helper()

	log.CaptureForTest(t)

	kv, cleanup := store.NewTestKV(t, "inmem")
	t.Cleanup(cleanup)

	tree := avl.New(kv)

	require.NoError(t, pallets.Merge(storages...).Assimilate(tree))

	return tree
}
