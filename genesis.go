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
	"encoding/hex"

	"github.com/perlin-network/pallets/avl"
	"github.com/perlin-network/pallets/log"
	"github.com/pkg/errors"
	"github.com/valyala/fastjson"
)

// TestingGenesis funds three well-known accounts and gives one of them a gas tank.
const TestingGenesis = `
{
  "400056ee68a7cc2695222df05ea76875bc27ec6e61e8e62317c336157019c405": {
    "balance": 10000000000000000000,
    "gas": 5000000
  },
  "696937c2c8df35dba0169de72990b80761e51dd9e2411fa1fce147f68ade830a": {
    "balance": 10000000000000000000
  },
  "f03bb6f98c4dfd31f3d448c7ec79fa3eaa92250112ada43471812f4b1ace6467": {
    "balance": 10000000000000000000
  }
}
`

type BalanceEntry struct {
	Account AccountID
	Amount  Balance
}

type GasEntry struct {
	Account AccountID
	Gas     Gas
}

// KeyValue is a pre-encoded state entry contributed by a pallet that owns its own layout.
type KeyValue struct {
	Key   []byte
	Value []byte
}

// Storage describes the state a runtime starts from. Entries are kept exactly as they
// were added: nothing is deduplicated or validated until the storage is assimilated.
type Storage struct {
	Balances []BalanceEntry
	GasTanks []GasEntry
	Raw      []KeyValue

	consumed bool
}

// Merge concatenates several storages, in order, into a fresh one that takes over their
// single use: the inputs are consumed, and if any of them already was, so is the result.
func Merge(storages ...*Storage) *Storage {
	merged := new(Storage)

	for _, s := range storages {
		if s == nil {
			continue
		}

		if s.consumed {
			merged.consumed = true
		}

		s.consumed = true

		merged.Balances = append(merged.Balances, s.Balances...)
		merged.GasTanks = append(merged.GasTanks, s.GasTanks...)
		merged.Raw = append(merged.Raw, s.Raw...)
	}

	return merged
}

// Consumed reports whether the storage was already assimilated into a tree.
func (s *Storage) Consumed() bool {
	return s.consumed
}

// Assimilate writes every entry into tree in the order it was added. A storage can only be
// assimilated once. Accounts appearing more than once are written once per entry, so the
// last entry for an account is the one left in state.
func (s *Storage) Assimilate(tree *avl.Tree) error {
	if s.consumed {
		return ErrStorageConsumed
	}

	s.consumed = true

	logger := log.Genesis("assimilate")

	seen := make(map[AccountID]struct{}, len(s.Balances))

	for _, entry := range s.Balances {
		if _, exists := seen[entry.Account]; exists {
			logger.Warn().
				Hex("account_id", entry.Account[:]).
				Uint64("balance", uint64(entry.Amount)).
				Msg("Account appears more than once in genesis balances; overwriting.")
		}

		seen[entry.Account] = struct{}{}

		WriteAccountBalance(tree, entry.Account, entry.Amount)
	}

	seen = make(map[AccountID]struct{}, len(s.GasTanks))

	for _, entry := range s.GasTanks {
		if _, exists := seen[entry.Account]; exists {
			logger.Warn().
				Hex("account_id", entry.Account[:]).
				Uint64("gas", uint64(entry.Gas)).
				Msg("Account appears more than once in genesis gas tanks; overwriting.")
		}

		seen[entry.Account] = struct{}{}

		WriteAccountGas(tree, entry.Account, entry.Gas)
	}

	for _, entry := range s.Raw {
		tree.Insert(entry.Key, entry.Value)
	}

	checksum := tree.Checksum()

	logger.Info().
		Int("num_balances", len(s.Balances)).
		Int("num_gas_tanks", len(s.GasTanks)).
		Int("num_raw", len(s.Raw)).
		Hex("checksum", checksum[:]).
		Msg("Assimilated genesis storage.")

	return nil
}

// Checksum renders the Merkle root of tree as hex.
func Checksum(tree *avl.Tree) string {
	checksum := tree.Checksum()
	return hex.EncodeToString(checksum[:])
}

// ParseGenesis reads a JSON genesis document mapping hex account IDs to their "balance"
// and "gas". Unlike storage assembled in code, a genesis document may not mention an
// account twice.
func ParseGenesis(buf []byte) (*Storage, error) {
	var p fastjson.Parser

	parsed, err := p.ParseBytes(buf)
	if err != nil {
		return nil, errors.Wrap(err, "genesis: failed to parse json")
	}

	accounts, err := parsed.Object()
	if err != nil {
		return nil, errors.Wrap(err, "genesis: expected an object of accounts")
	}

	storage := new(Storage)
	set := make(map[AccountID]struct{})

	accounts.Visit(func(key []byte, val *fastjson.Value) {
		if err != nil {
			return
		}

		var (
			fields *fastjson.Object
			id     AccountID
		)

		if id, err = ParseAccountID(string(key)); err != nil {
			err = errors.Wrap(err, "genesis")
			return
		}

		if _, exists := set[id]; exists {
			err = errors.Wrapf(ErrDuplicateAccount, "genesis: %x", id)
			return
		}

		set[id] = struct{}{}

		fields, err = val.Object()
		if err != nil {
			err = errors.Wrapf(err, "genesis: account %x", id)
			return
		}

		fields.Visit(func(key []byte, v *fastjson.Value) {
			if err != nil {
				return
			}

			var amount uint64

			switch string(key) {
			case "balance":
				if amount, err = v.Uint64(); err != nil {
					err = errors.Wrapf(err, "genesis: failed to cast type for key %q", key)
					return
				}

				storage.Balances = append(storage.Balances, BalanceEntry{Account: id, Amount: Balance(amount)})
			case "gas":
				if amount, err = v.Uint64(); err != nil {
					err = errors.Wrapf(err, "genesis: failed to cast type for key %q", key)
					return
				}

				storage.GasTanks = append(storage.GasTanks, GasEntry{Account: id, Gas: Gas(amount)})
			}
		})
	})

	if err != nil {
		return nil, err
	}

	return storage, nil
}
