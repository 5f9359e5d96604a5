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

// Package listings manages merchant inventories and the items published in them.
package listings

import (
	"encoding"

	"github.com/perlin-network/pallets"
	"github.com/pkg/errors"
)

var (
	ErrUnknownInventory    = errors.New("unknown inventory")
	ErrInventoryExists     = errors.New("inventory already exists")
	ErrInventoryArchived   = errors.New("inventory is archived")
	ErrUnknownItem         = errors.New("unknown item")
	ErrItemExists          = errors.New("item already exists")
	ErrNotTransferable     = errors.New("item is not transferable")
	ErrNameTooLong         = errors.New("item name is too long")
	ErrAttributeKeyTooLong = errors.New("attribute key is too long")
	ErrAttributeTooLong    = errors.New("attribute value is too long")
	ErrBadRecord           = errors.New("malformed listings record")
)

// Identifier names an inventory or an item. Identifiers are compared by value, encode to at
// most MaxEncodedLen bytes, and render as text.
type Identifier interface {
	comparable
	encoding.BinaryMarshaler
	encoding.TextMarshaler

	MaxEncodedLen() int
	String() string
}

// IdentifierPtr is implemented by pointers to identifiers, which decode in place from the
// encodings their values produce.
type IdentifierPtr[I Identifier] interface {
	*I
	encoding.BinaryUnmarshaler
	encoding.TextUnmarshaler
}

type InspectInventory[I Identifier] interface {
	InventoryExists(id I) bool
	InventoryOwner(id I) (pallets.AccountID, bool)

	// InventoryActive reports whether an inventory exists and has not been archived.
	InventoryActive(id I) bool

	InventoryAttribute(id I, key []byte) ([]byte, bool)
}

type MutateInventory[I Identifier] interface {
	InspectInventory[I]

	CreateInventory(id I, owner pallets.AccountID) error

	// ArchiveInventory freezes an inventory and everything in it.
	ArchiveInventory(id I) error

	SetInventoryAttribute(id I, key, value []byte) error
}

type InspectItem[I, T Identifier] interface {
	Item(inventory I, id T) (Item, bool)

	// Items lists the items of an inventory in ascending order of their encoded IDs.
	Items(inventory I) []T

	ItemOwner(inventory I, id T) (pallets.AccountID, bool)
	ItemTransferable(inventory I, id T) bool
	ItemAttribute(inventory I, id T, key []byte) ([]byte, bool)
	ItemPrice(inventory I, id T) (pallets.Balance, bool)
}

type MutateItem[I, T Identifier] interface {
	InspectItem[I, T]

	// PublishItem lists a new item, owned by the inventory's owner, in an active inventory.
	PublishItem(inventory I, id T, name string, price pallets.Balance) error

	SetPrice(inventory I, id T, price pallets.Balance) error
	EnableTransfer(inventory I, id T) error
	DisableTransfer(inventory I, id T) error
	TransferItem(inventory I, id T, to pallets.AccountID) error
	SetItemAttribute(inventory I, id T, key, value []byte) error
	ClearItemAttribute(inventory I, id T, key []byte) error
}

// SubscribeInventory delivers inventory events until the callback returns false.
type SubscribeInventory[I Identifier] interface {
	SubscribeInventory(cb func(InventoryEvent[I]) bool)
}

// SubscribeItem delivers item events until the callback returns false.
type SubscribeItem[I, T Identifier] interface {
	SubscribeItem(cb func(ItemEvent[I, T]) bool)
}

type EventKind byte

const (
	EventCreated EventKind = iota
	EventArchived
	EventAttributeSet
	EventAttributeCleared
	EventPublished
	EventPriceSet
	EventTransferabilitySet
	EventTransferred
)

func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventArchived:
		return "archived"
	case EventAttributeSet:
		return "attribute_set"
	case EventAttributeCleared:
		return "attribute_cleared"
	case EventPublished:
		return "published"
	case EventPriceSet:
		return "price_set"
	case EventTransferabilitySet:
		return "transferability_set"
	case EventTransferred:
		return "transferred"
	default:
		return "unknown"
	}
}

type InventoryEvent[I Identifier] struct {
	Kind      EventKind
	Inventory I
	Owner     pallets.AccountID
}

type ItemEvent[I, T Identifier] struct {
	Kind      EventKind
	Inventory I
	Item      T
	Owner     pallets.AccountID
	Price     pallets.Balance
}
