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
	"github.com/perlin-network/pallets"
	"github.com/perlin-network/pallets/avl"
	"github.com/perlin-network/pallets/conf"
	"github.com/perlin-network/pallets/events"
	"github.com/perlin-network/pallets/log"
	"github.com/pkg/errors"
)

var (
	_ MutateInventory[InventoryID]       = (*Market)(nil)
	_ MutateItem[InventoryID, ItemID]    = (*Market)(nil)
	_ SubscribeInventory[InventoryID]    = (*Market)(nil)
	_ SubscribeItem[InventoryID, ItemID] = (*Market)(nil)
)

// Market keeps inventories and their items in a state tree.
type Market struct {
	tree *avl.Tree
	hub  *events.Hub
	sink func(topic string, data interface{})
}

type Option func(*Market)

func WithHub(hub *events.Hub) Option {
	return func(m *Market) {
		m.hub = hub
	}
}

// WithSink routes the market's events to sink instead of publishing them on the hub.
func WithSink(sink func(topic string, data interface{})) Option {
	return func(m *Market) {
		m.sink = sink
	}
}

func NewMarket(tree *avl.Tree, opts ...Option) *Market {
	m := &Market{tree: tree, hub: events.Global()}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// GenesisInventory renders an inventory as a genesis entry.
func GenesisInventory(id InventoryID, owner pallets.AccountID, attributes Attributes) pallets.KeyValue {
	return pallets.KeyValue{
		Key:   pallets.InventoryKey(encodeID(id)),
		Value: inventoryRecord{Owner: owner, Attributes: attributes}.marshal(),
	}
}

// GenesisItem renders an item of an inventory as a genesis entry.
func GenesisItem(inventory InventoryID, id ItemID, item Item) pallets.KeyValue {
	return pallets.KeyValue{
		Key:   pallets.ItemKey(encodeID(inventory), encodeID(id)),
		Value: item.marshal(),
	}
}

func (m *Market) inventory(id InventoryID) (inventoryRecord, error) {
	buf, exists := pallets.ReadInventory(m.tree, encodeID(id))
	if !exists {
		return inventoryRecord{}, errors.Wrapf(ErrUnknownInventory, "inventory %s", id)
	}

	r, err := unmarshalInventoryRecord(buf)
	if err != nil {
		return r, errors.Wrapf(err, "inventory %s", id)
	}

	return r, nil
}

func (m *Market) activeInventory(id InventoryID) (inventoryRecord, error) {
	r, err := m.inventory(id)
	if err != nil {
		return r, err
	}

	if r.Archived {
		return r, errors.Wrapf(ErrInventoryArchived, "inventory %s", id)
	}

	return r, nil
}

func (m *Market) item(inventory InventoryID, id ItemID) (Item, error) {
	buf, exists := pallets.ReadItem(m.tree, encodeID(inventory), encodeID(id))
	if !exists {
		return Item{}, errors.Wrapf(ErrUnknownItem, "item %s of inventory %s", id, inventory)
	}

	it, err := unmarshalItem(buf)
	if err != nil {
		return it, errors.Wrapf(err, "item %s of inventory %s", id, inventory)
	}

	return it, nil
}

// mutableItem loads an item whose inventory is still active.
func (m *Market) mutableItem(inventory InventoryID, id ItemID) (Item, error) {
	if _, err := m.activeInventory(inventory); err != nil {
		return Item{}, err
	}

	return m.item(inventory, id)
}

func (m *Market) writeInventory(id InventoryID, r inventoryRecord) {
	pallets.WriteInventory(m.tree, encodeID(id), r.marshal())
}

func (m *Market) writeItem(inventory InventoryID, id ItemID, it Item) {
	pallets.WriteItem(m.tree, encodeID(inventory), encodeID(id), it.marshal())
}

func (m *Market) InventoryExists(id InventoryID) bool {
	_, exists := pallets.ReadInventory(m.tree, encodeID(id))
	return exists
}

func (m *Market) InventoryOwner(id InventoryID) (pallets.AccountID, bool) {
	r, err := m.inventory(id)
	if err != nil {
		return pallets.AccountID{}, false
	}

	return r.Owner, true
}

func (m *Market) InventoryActive(id InventoryID) bool {
	_, err := m.activeInventory(id)
	return err == nil
}

func (m *Market) InventoryAttribute(id InventoryID, key []byte) ([]byte, bool) {
	r, err := m.inventory(id)
	if err != nil {
		return nil, false
	}

	value, exists := r.Attributes[string(key)]
	return value, exists
}

func (m *Market) CreateInventory(id InventoryID, owner pallets.AccountID) error {
	if m.InventoryExists(id) {
		return errors.Wrapf(ErrInventoryExists, "inventory %s", id)
	}

	m.writeInventory(id, inventoryRecord{Owner: owner})

	logger := log.Listings("create_inventory")
	logger.Debug().
		Str("inventory", id.String()).
		Hex("owner", owner[:]).
		Msg("Created inventory.")

	m.publishInventory(EventCreated, id, owner)

	return nil
}

func (m *Market) ArchiveInventory(id InventoryID) error {
	r, err := m.activeInventory(id)
	if err != nil {
		return err
	}

	r.Archived = true
	m.writeInventory(id, r)

	m.publishInventory(EventArchived, id, r.Owner)

	return nil
}

func (m *Market) SetInventoryAttribute(id InventoryID, key, value []byte) error {
	if err := checkAttribute(key, value); err != nil {
		return err
	}

	r, err := m.activeInventory(id)
	if err != nil {
		return err
	}

	if r.Attributes == nil {
		r.Attributes = make(Attributes)
	}

	r.Attributes[string(key)] = value
	m.writeInventory(id, r)

	m.publishInventory(EventAttributeSet, id, r.Owner)

	return nil
}

func (m *Market) Item(inventory InventoryID, id ItemID) (Item, bool) {
	it, err := m.item(inventory, id)
	if err != nil {
		return Item{}, false
	}

	return it, true
}

func (m *Market) Items(inventory InventoryID) []ItemID {
	var ids []ItemID

	pallets.IterateItems(m.tree, encodeID(inventory), func(item, _ []byte) bool {
		id, err := decodeID[ItemID](item)
		if err != nil {
			logger := log.Listings("items")
			logger.Warn().Err(err).Str("inventory", inventory.String()).Msg("Skipping item with a malformed key.")

			return true
		}

		ids = append(ids, id)
		return true
	})

	return ids
}

func (m *Market) ItemOwner(inventory InventoryID, id ItemID) (pallets.AccountID, bool) {
	it, exists := m.Item(inventory, id)
	return it.Owner, exists
}

func (m *Market) ItemTransferable(inventory InventoryID, id ItemID) bool {
	it, exists := m.Item(inventory, id)
	return exists && it.Transferable && m.InventoryActive(inventory)
}

func (m *Market) ItemAttribute(inventory InventoryID, id ItemID, key []byte) ([]byte, bool) {
	it, exists := m.Item(inventory, id)
	if !exists {
		return nil, false
	}

	value, exists := it.Attributes[string(key)]
	return value, exists
}

func (m *Market) ItemPrice(inventory InventoryID, id ItemID) (pallets.Balance, bool) {
	it, exists := m.Item(inventory, id)
	return it.Price, exists
}

func (m *Market) PublishItem(inventory InventoryID, id ItemID, name string, price pallets.Balance) error {
	if len(name) > conf.GetMaxItemNameLen() {
		return errors.Wrapf(ErrNameTooLong, "%d bytes, at most %d", len(name), conf.GetMaxItemNameLen())
	}

	r, err := m.activeInventory(inventory)
	if err != nil {
		return err
	}

	if _, exists := m.Item(inventory, id); exists {
		return errors.Wrapf(ErrItemExists, "item %s of inventory %s", id, inventory)
	}

	it := Item{Owner: r.Owner, Name: name, Price: price, Transferable: true}
	m.writeItem(inventory, id, it)

	logger := log.Listings("publish_item")
	logger.Debug().
		Str("inventory", inventory.String()).
		Str("item", id.String()).
		Str("name", name).
		Uint64("price", uint64(price)).
		Msg("Published item.")

	m.publishItem(EventPublished, inventory, id, it)

	return nil
}

func (m *Market) SetPrice(inventory InventoryID, id ItemID, price pallets.Balance) error {
	return m.updateItem(EventPriceSet, inventory, id, func(it *Item) error {
		it.Price = price
		return nil
	})
}

func (m *Market) EnableTransfer(inventory InventoryID, id ItemID) error {
	return m.updateItem(EventTransferabilitySet, inventory, id, func(it *Item) error {
		it.Transferable = true
		return nil
	})
}

func (m *Market) DisableTransfer(inventory InventoryID, id ItemID) error {
	return m.updateItem(EventTransferabilitySet, inventory, id, func(it *Item) error {
		it.Transferable = false
		return nil
	})
}

func (m *Market) TransferItem(inventory InventoryID, id ItemID, to pallets.AccountID) error {
	return m.updateItem(EventTransferred, inventory, id, func(it *Item) error {
		if !it.Transferable {
			return errors.Wrapf(ErrNotTransferable, "item %s of inventory %s", id, inventory)
		}

		it.Owner = to
		return nil
	})
}

func (m *Market) SetItemAttribute(inventory InventoryID, id ItemID, key, value []byte) error {
	if err := checkAttribute(key, value); err != nil {
		return err
	}

	return m.updateItem(EventAttributeSet, inventory, id, func(it *Item) error {
		if it.Attributes == nil {
			it.Attributes = make(Attributes)
		}

		it.Attributes[string(key)] = value
		return nil
	})
}

// ClearItemAttribute removes an attribute. Clearing an attribute that is not set is not an error.
func (m *Market) ClearItemAttribute(inventory InventoryID, id ItemID, key []byte) error {
	return m.updateItem(EventAttributeCleared, inventory, id, func(it *Item) error {
		delete(it.Attributes, string(key))
		return nil
	})
}

func (m *Market) updateItem(kind EventKind, inventory InventoryID, id ItemID, update func(*Item) error) error {
	it, err := m.mutableItem(inventory, id)
	if err != nil {
		return err
	}

	if err := update(&it); err != nil {
		return err
	}

	m.writeItem(inventory, id, it)
	m.publishItem(kind, inventory, id, it)

	return nil
}

func (m *Market) SubscribeInventory(cb func(InventoryEvent[InventoryID]) bool) {
	events.On(m.hub, events.TopicListings, cb)
}

func (m *Market) SubscribeItem(cb func(ItemEvent[InventoryID, ItemID]) bool) {
	events.On(m.hub, events.TopicListings, cb)
}

func (m *Market) publishInventory(kind EventKind, id InventoryID, owner pallets.AccountID) {
	m.publish(InventoryEvent[InventoryID]{Kind: kind, Inventory: id, Owner: owner})
}

func (m *Market) publishItem(kind EventKind, inventory InventoryID, id ItemID, it Item) {
	m.publish(ItemEvent[InventoryID, ItemID]{
		Kind:      kind,
		Inventory: inventory,
		Item:      id,
		Owner:     it.Owner,
		Price:     it.Price,
	})
}

func (m *Market) publish(data interface{}) {
	if m.sink != nil {
		m.sink(events.TopicListings, data)
		return
	}

	m.hub.Publish(events.TopicListings, data)
}

func checkAttribute(key, value []byte) error {
	if len(key) > conf.GetMaxAttributeKeyLen() {
		return errors.Wrapf(ErrAttributeKeyTooLong, "%d bytes, at most %d", len(key), conf.GetMaxAttributeKeyLen())
	}

	if len(value) > conf.GetMaxAttributeLen() {
		return errors.Wrapf(ErrAttributeTooLong, "%d bytes, at most %d", len(value), conf.GetMaxAttributeLen())
	}

	return nil
}
