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

package pallets

import (
	"encoding/binary"

	"github.com/perlin-network/pallets/avl"
)

var (
	// Global prefixes.
	keyAccounts      = [...]byte{0x1}
	keyAccountsLen   = [...]byte{0x2}
	keyReservations  = [...]byte{0x3}
	keyDevices       = [...]byte{0x4}
	keyInventories   = [...]byte{0x5}
	keyItems         = [...]byte{0x6}
	keyPalletStorage = [...]byte{0x7}

	// Account-local prefixes.
	keyAccountExists  = [...]byte{0x1}
	keyAccountBalance = [...]byte{0x2}
	keyAccountGas     = [...]byte{0x3}
	keyAccountNonce   = [...]byte{0x4}
)

func ReadAccountBalance(tree *avl.Tree, id AccountID) (Balance, bool) {
	buf, exists := readUnderAccounts(tree, id, keyAccountBalance[:])
	if !exists || len(buf) != 8 {
		return 0, false
	}

	return Balance(binary.LittleEndian.Uint64(buf)), true
}

func WriteAccountBalance(tree *avl.Tree, id AccountID, balance Balance) {
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], uint64(balance))
	writeUnderAccounts(tree, id, keyAccountBalance[:], buf[:])
}

// ReadAccountGas returns the gas left in an account's tank, and whether the account has
// a tank registered at all.
func ReadAccountGas(tree *avl.Tree, id AccountID) (Gas, bool) {
	buf, exists := readUnderAccounts(tree, id, keyAccountGas[:])
	if !exists || len(buf) != 8 {
		return 0, false
	}

	return Gas(binary.LittleEndian.Uint64(buf)), true
}

// WriteAccountGas sets the level of an account's gas tank, registering the tank if the
// account did not have one.
func WriteAccountGas(tree *avl.Tree, id AccountID, gas Gas) {
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], uint64(gas))
	writeUnderAccounts(tree, id, keyAccountGas[:], buf[:])
}

// HasGasTank reports whether the account was ever given a gas tank, even an empty one.
func HasGasTank(tree *avl.Tree, id AccountID) bool {
	_, exists := readUnderAccounts(tree, id, keyAccountGas[:])
	return exists
}

func DeleteAccountGas(tree *avl.Tree, id AccountID) bool {
	return tree.Delete(accountKey(id, keyAccountGas[:]))
}

func ReadAccountNonce(tree *avl.Tree, id AccountID) (uint64, bool) {
	buf, exists := readUnderAccounts(tree, id, keyAccountNonce[:])
	if !exists || len(buf) != 8 {
		return 0, false
	}

	return binary.LittleEndian.Uint64(buf), true
}

func WriteAccountNonce(tree *avl.Tree, id AccountID, nonce uint64) {
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], nonce)
	writeUnderAccounts(tree, id, keyAccountNonce[:], buf[:])
}

// AccountExists reports whether anything was ever written for the account.
func AccountExists(tree *avl.Tree, id AccountID) bool {
	_, exists := tree.Lookup(accountKey(id, keyAccountExists[:]))
	return exists
}

func ReadAccountsLen(tree *avl.Tree) uint64 {
	buf, exists := tree.Lookup(keyAccountsLen[:])
	if !exists || len(buf) != 8 {
		return 0
	}

	return binary.BigEndian.Uint64(buf)
}

func WriteAccountsLen(tree *avl.Tree, size uint64) {
	var buf [8]byte

	binary.BigEndian.PutUint64(buf[:], size)
	tree.Insert(keyAccountsLen[:], buf[:])
}

func readUnderAccounts(tree *avl.Tree, id AccountID, key []byte) ([]byte, bool) {
	return tree.Lookup(accountKey(id, key))
}

func writeUnderAccounts(tree *avl.Tree, id AccountID, key, value []byte) {
	if !AccountExists(tree, id) {
		tree.Insert(accountKey(id, keyAccountExists[:]), []byte{1})
		WriteAccountsLen(tree, ReadAccountsLen(tree)+1)
	}

	tree.Insert(accountKey(id, key), value)
}

func accountKey(id AccountID, key []byte) []byte {
	k := make([]byte, 0, len(keyAccounts)+len(key)+len(id))
	k = append(k, keyAccounts[:]...)
	k = append(k, key...)
	k = append(k, id[:]...)

	return k
}

func ReadReservation(tree *avl.Tree, id AccountID) ([]byte, bool) {
	return tree.Lookup(prefixed(keyReservations[:], id[:]))
}

func WriteReservation(tree *avl.Tree, id AccountID, reservation []byte) {
	tree.Insert(prefixed(keyReservations[:], id[:]), reservation)
}

func DeleteReservation(tree *avl.Tree, id AccountID) bool {
	return tree.Delete(prefixed(keyReservations[:], id[:]))
}

// DeviceKey is the state key a device registered by an account is stored under.
func DeviceKey(owner AccountID, device []byte) []byte {
	return prefixed(keyDevices[:], owner[:], device)
}

func ReadDevice(tree *avl.Tree, owner AccountID, device []byte) ([]byte, bool) {
	return tree.Lookup(DeviceKey(owner, device))
}

func WriteDevice(tree *avl.Tree, owner AccountID, device []byte, record []byte) {
	tree.Insert(DeviceKey(owner, device), record)
}

func DeleteDevice(tree *avl.Tree, owner AccountID, device []byte) bool {
	return tree.Delete(DeviceKey(owner, device))
}

// IterateDevices visits the devices registered by owner, passing the device ID and its record.
func IterateDevices(tree *avl.Tree, owner AccountID, callback func(device, record []byte) bool) {
	prefix := prefixed(keyDevices[:], owner[:])

	tree.IteratePrefix(prefix, func(k, v []byte) bool {
		return callback(k[len(prefix):], v)
	})
}

// InventoryKey is the state key an encoded inventory identifier is stored under.
func InventoryKey(inventory []byte) []byte {
	return prefixed(keyInventories[:], inventory)
}

func ReadInventory(tree *avl.Tree, inventory []byte) ([]byte, bool) {
	return tree.Lookup(InventoryKey(inventory))
}

func WriteInventory(tree *avl.Tree, inventory []byte, record []byte) {
	tree.Insert(InventoryKey(inventory), record)
}

// ItemKey is the state key an item of an inventory is stored under. Both identifiers must
// be fixed-size encodings so that items of one inventory share a common prefix.
func ItemKey(inventory, item []byte) []byte {
	return prefixed(keyItems[:], inventory, item)
}

func ReadItem(tree *avl.Tree, inventory, item []byte) ([]byte, bool) {
	return tree.Lookup(ItemKey(inventory, item))
}

func WriteItem(tree *avl.Tree, inventory, item []byte, record []byte) {
	tree.Insert(ItemKey(inventory, item), record)
}

// IterateItems visits the items of an inventory in ascending order of their encoded IDs.
func IterateItems(tree *avl.Tree, inventory []byte, callback func(item, record []byte) bool) {
	prefix := prefixed(keyItems[:], inventory)

	tree.IteratePrefix(prefix, func(k, v []byte) bool {
		return callback(k[len(prefix):], v)
	})
}

// PalletKey namespaces a storage key of a pallet.
func PalletKey(pallet string, key []byte) []byte {
	if len(pallet) > 255 {
		panic("pallets: pallet name is too long")
	}

	return prefixed(keyPalletStorage[:], []byte{byte(len(pallet))}, []byte(pallet), key)
}

func ReadPalletValue(tree *avl.Tree, pallet string, key []byte) ([]byte, bool) {
	return tree.Lookup(PalletKey(pallet, key))
}

func WritePalletValue(tree *avl.Tree, pallet string, key, value []byte) {
	tree.Insert(PalletKey(pallet, key), value)
}

func DeletePalletValue(tree *avl.Tree, pallet string, key []byte) bool {
	return tree.Delete(PalletKey(pallet, key))
}

func prefixed(parts ...[]byte) []byte {
	var size int
	for _, part := range parts {
		size += len(part)
	}

	k := make([]byte, 0, size)
	for _, part := range parts {
		k = append(k, part...)
	}

	return k
}
