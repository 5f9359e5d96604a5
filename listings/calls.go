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
	"strconv"

	"github.com/perlin-network/pallets"
	"github.com/perlin-network/pallets/runtime"
	"github.com/pkg/errors"
)

const Pallet = "listings"

const (
	CallCreateInventory  = Pallet + ".create_inventory"
	CallArchiveInventory = Pallet + ".archive_inventory"
	CallPublishItem      = Pallet + ".publish_item"
	CallSetPrice         = Pallet + ".set_price"
	CallTransferItem     = Pallet + ".transfer_item"
)

var ErrNotOwner = errors.New("caller does not own the listing")

var (
	InventoryCallWeight = pallets.NewWeight(20_000, 128)
	ItemCallWeight      = pallets.NewWeight(30_000, 256)
)

var (
	_ runtime.Call = CreateInventoryCall{}
	_ runtime.Call = ArchiveInventoryCall{}
	_ runtime.Call = PublishItemCall{}
	_ runtime.Call = SetPriceCall{}
	_ runtime.Call = TransferItemCall{}
)

// market returns a market over the dispatch context whose events are deposited into it.
func market(ctx *runtime.Context) *Market {
	return NewMarket(ctx.Tree, WithSink(ctx.Deposit))
}

func ownsInventory(m *Market, id InventoryID, who pallets.AccountID) error {
	owner, exists := m.InventoryOwner(id)
	if !exists {
		return errors.Wrapf(ErrUnknownInventory, "inventory %s", id)
	}

	if owner != who {
		return errors.Wrapf(ErrNotOwner, "inventory %s", id)
	}

	return nil
}

// CreateInventoryCall creates an inventory owned by the caller.
type CreateInventoryCall struct {
	Inventory InventoryID
}

func (CreateInventoryCall) Name() string {
	return CallCreateInventory
}

func (CreateInventoryCall) Weight() pallets.Weight {
	return InventoryCallWeight
}

func (c CreateInventoryCall) MarshalBinary() ([]byte, error) {
	return c.Inventory.MarshalBinary()
}

func (c CreateInventoryCall) Dispatch(ctx *runtime.Context) (runtime.PostDispatchInfo, error) {
	return runtime.PostDispatchInfo{}, market(ctx).CreateInventory(c.Inventory, ctx.Caller)
}

// ArchiveInventoryCall archives an inventory of the caller.
type ArchiveInventoryCall struct {
	Inventory InventoryID
}

func (ArchiveInventoryCall) Name() string {
	return CallArchiveInventory
}

func (ArchiveInventoryCall) Weight() pallets.Weight {
	return InventoryCallWeight
}

func (c ArchiveInventoryCall) MarshalBinary() ([]byte, error) {
	return c.Inventory.MarshalBinary()
}

func (c ArchiveInventoryCall) Dispatch(ctx *runtime.Context) (runtime.PostDispatchInfo, error) {
	m := market(ctx)

	if err := ownsInventory(m, c.Inventory, ctx.Caller); err != nil {
		return runtime.PostDispatchInfo{}, err
	}

	return runtime.PostDispatchInfo{}, m.ArchiveInventory(c.Inventory)
}

// PublishItemCall lists a new item in an inventory of the caller.
type PublishItemCall struct {
	Inventory InventoryID
	Item      ItemID
	Title     string
	Price     pallets.Balance
}

func (PublishItemCall) Name() string {
	return CallPublishItem
}

func (PublishItemCall) Weight() pallets.Weight {
	return ItemCallWeight
}

func (c PublishItemCall) MarshalBinary() ([]byte, error) {
	buf := itemCallKey(c.Inventory, c.Item)
	buf = binary.BigEndian.AppendUint64(buf, uint64(c.Price))

	return append(buf, c.Title...), nil
}

func (c PublishItemCall) Dispatch(ctx *runtime.Context) (runtime.PostDispatchInfo, error) {
	m := market(ctx)

	if err := ownsInventory(m, c.Inventory, ctx.Caller); err != nil {
		return runtime.PostDispatchInfo{}, err
	}

	return runtime.PostDispatchInfo{}, m.PublishItem(c.Inventory, c.Item, c.Title, c.Price)
}

// SetPriceCall reprices an item of an inventory of the caller.
type SetPriceCall struct {
	Inventory InventoryID
	Item      ItemID
	Price     pallets.Balance
}

func (SetPriceCall) Name() string {
	return CallSetPrice
}

func (SetPriceCall) Weight() pallets.Weight {
	return ItemCallWeight
}

func (c SetPriceCall) MarshalBinary() ([]byte, error) {
	return binary.BigEndian.AppendUint64(itemCallKey(c.Inventory, c.Item), uint64(c.Price)), nil
}

func (c SetPriceCall) Dispatch(ctx *runtime.Context) (runtime.PostDispatchInfo, error) {
	m := market(ctx)

	if err := ownsInventory(m, c.Inventory, ctx.Caller); err != nil {
		return runtime.PostDispatchInfo{}, err
	}

	return runtime.PostDispatchInfo{}, m.SetPrice(c.Inventory, c.Item, c.Price)
}

// TransferItemCall hands an item the caller owns to another account.
type TransferItemCall struct {
	Inventory InventoryID
	Item      ItemID
	To        pallets.AccountID
}

func (TransferItemCall) Name() string {
	return CallTransferItem
}

func (TransferItemCall) Weight() pallets.Weight {
	return ItemCallWeight
}

func (c TransferItemCall) MarshalBinary() ([]byte, error) {
	return append(itemCallKey(c.Inventory, c.Item), c.To[:]...), nil
}

func (c TransferItemCall) Dispatch(ctx *runtime.Context) (runtime.PostDispatchInfo, error) {
	m := market(ctx)

	owner, exists := m.ItemOwner(c.Inventory, c.Item)
	if !exists {
		return runtime.PostDispatchInfo{}, errors.Wrapf(ErrUnknownItem, "item %s of inventory %s", c.Item, c.Inventory)
	}

	if owner != ctx.Caller {
		return runtime.PostDispatchInfo{}, errors.Wrapf(ErrNotOwner, "item %s of inventory %s", c.Item, c.Inventory)
	}

	return runtime.PostDispatchInfo{}, m.TransferItem(c.Inventory, c.Item, c.To)
}

func itemCallKey(inventory InventoryID, item ItemID) []byte {
	return append(encodeID(inventory), encodeID(item)...)
}

// Register makes the pallet's calls available by name. Inventories are written as
// "<merchant>/<id>", accounts as hex.
func Register(calls *runtime.Calls) error {
	decoders := []struct {
		name   string
		arity  int
		decode func(args []string) (runtime.Call, error)
	}{
		{CallCreateInventory, 1, func(args []string) (runtime.Call, error) {
			inventory, err := parseInventory(args[0])
			return CreateInventoryCall{Inventory: inventory}, err
		}},
		{CallArchiveInventory, 1, func(args []string) (runtime.Call, error) {
			inventory, err := parseInventory(args[0])
			return ArchiveInventoryCall{Inventory: inventory}, err
		}},
		{CallPublishItem, 4, func(args []string) (runtime.Call, error) {
			inventory, item, err := parseItem(args[0], args[1])
			if err != nil {
				return nil, err
			}

			price, err := strconv.ParseUint(args[3], 10, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "bad price %q", args[3])
			}

			return PublishItemCall{Inventory: inventory, Item: item, Title: args[2], Price: pallets.Balance(price)}, nil
		}},
		{CallSetPrice, 3, func(args []string) (runtime.Call, error) {
			inventory, item, err := parseItem(args[0], args[1])
			if err != nil {
				return nil, err
			}

			price, err := strconv.ParseUint(args[2], 10, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "bad price %q", args[2])
			}

			return SetPriceCall{Inventory: inventory, Item: item, Price: pallets.Balance(price)}, nil
		}},
		{CallTransferItem, 3, func(args []string) (runtime.Call, error) {
			inventory, item, err := parseItem(args[0], args[1])
			if err != nil {
				return nil, err
			}

			to, err := pallets.ParseAccountID(args[2])
			if err != nil {
				return nil, err
			}

			return TransferItemCall{Inventory: inventory, Item: item, To: to}, nil
		}},
	}

	for _, d := range decoders {
		d := d

		if err := calls.Register(d.name, func(args []string) (runtime.Call, error) {
			if len(args) != d.arity {
				return nil, errors.Errorf("expected %d arguments, got %d", d.arity, len(args))
			}

			return d.decode(args)
		}); err != nil {
			return err
		}
	}

	return nil
}

func parseInventory(text string) (InventoryID, error) {
	var id InventoryID

	if err := id.UnmarshalText([]byte(text)); err != nil {
		return id, errors.Wrapf(err, "bad inventory %q", text)
	}

	return id, nil
}

func parseItem(inventoryText, itemText string) (InventoryID, ItemID, error) {
	inventory, err := parseInventory(inventoryText)
	if err != nil {
		return inventory, 0, err
	}

	var item ItemID

	if err := item.UnmarshalText([]byte(itemText)); err != nil {
		return inventory, item, errors.Wrapf(err, "bad item %q", itemText)
	}

	return inventory, item, nil
}
