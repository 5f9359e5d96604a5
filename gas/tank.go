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

package gas

import (
	"github.com/perlin-network/pallets"
	"github.com/perlin-network/pallets/avl"
	"github.com/perlin-network/pallets/events"
	"github.com/perlin-network/pallets/log"
	"github.com/pkg/errors"
)

var (
	ErrTankExists  = errors.New("gas tank is already registered")
	ErrTankMissing = errors.New("no gas tank is registered")
)

var _ Tanker[pallets.AccountID, pallets.Gas] = (*Tank)(nil)

// Tank keeps account gas tanks in a state tree. An account without a registered tank holds
// no gas at all, which is different from holding an empty tank.
type Tank struct {
	tree    *avl.Tree
	hub     *events.Hub
	metrics *pallets.Metrics
}

type TankOption func(*Tank)

// WithHub publishes gas events on hub instead of the global hub.
func WithHub(hub *events.Hub) TankOption {
	return func(t *Tank) {
		t.hub = hub
	}
}

func WithMetrics(metrics *pallets.Metrics) TankOption {
	return func(t *Tank) {
		t.metrics = metrics
	}
}

func NewTank(tree *avl.Tree, opts ...TankOption) *Tank {
	t := &Tank{tree: tree, hub: events.Global()}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Tree returns the state tree the tank reads and writes.
func (t *Tank) Tree() *avl.Tree {
	return t.tree
}

// Hub returns the hub gas events are published on.
func (t *Tank) Hub() *events.Hub {
	return t.hub
}

// Register opens a gas tank for an account holding initial gas.
func (t *Tank) Register(who pallets.AccountID, initial pallets.Gas) error {
	if pallets.HasGasTank(t.tree, who) {
		return errors.Wrapf(ErrTankExists, "account %x", who)
	}

	pallets.WriteAccountGas(t.tree, who, initial)

	logger := log.Gas("register")
	logger.Debug().
		Hex("account_id", who[:]).
		Uint64("gas", uint64(initial)).
		Msg("Registered gas tank.")

	return nil
}

// Deregister closes an account's gas tank, discarding whatever gas it held.
func (t *Tank) Deregister(who pallets.AccountID) (pallets.Gas, error) {
	gas, exists := pallets.ReadAccountGas(t.tree, who)
	if !exists {
		return 0, errors.Wrapf(ErrTankMissing, "account %x", who)
	}

	pallets.DeleteAccountGas(t.tree, who)

	return gas, nil
}

// Registered reports whether who has a gas tank.
func (t *Tank) Registered(who pallets.AccountID) bool {
	return pallets.HasGasTank(t.tree, who)
}

// Level returns the gas held by who, and whether who has a tank.
func (t *Tank) Level(who pallets.AccountID) (pallets.Gas, bool) {
	return pallets.ReadAccountGas(t.tree, who)
}

func (t *Tank) CheckAvailableGas(who pallets.AccountID, requested *pallets.Gas) (pallets.Gas, bool) {
	available, exists := pallets.ReadAccountGas(t.tree, who)
	if !exists {
		return 0, false
	}

	if requested == nil {
		return available, true
	}

	if available < *requested {
		return 0, false
	}

	return available - *requested, true
}

func (t *Tank) BurnGas(who pallets.AccountID, gas pallets.Gas) pallets.Gas {
	logger := log.Gas("burn")

	available, exists := pallets.ReadAccountGas(t.tree, who)
	if !exists {
		logger.Debug().
			Hex("account_id", who[:]).
			Uint64("gas", uint64(gas)).
			Msg("Account has no gas tank to burn from.")

		return 0
	}

	remaining := available.SaturatingSub(gas)
	burned := available - remaining

	if burned < gas {
		logger.Warn().
			Hex("account_id", who[:]).
			Uint64("requested", uint64(gas)).
			Uint64("burned", uint64(burned)).
			Msg("Gas tank ran dry; burned what was left.")
	}

	pallets.WriteAccountGas(t.tree, who, remaining)

	if t.metrics != nil {
		t.metrics.GasBurned.Mark(int64(burned))
	}

	t.hub.Publish(events.TopicGas, events.NewGasBurned(who.String(), uint64(burned), uint64(remaining)))

	return remaining
}

// RefuelGas tops up an account's tank, registering the tank if the account had none.
func (t *Tank) RefuelGas(who pallets.AccountID, gas pallets.Gas) pallets.Gas {
	available, _ := pallets.ReadAccountGas(t.tree, who)

	level := available.SaturatingAdd(gas)
	pallets.WriteAccountGas(t.tree, who, level)

	if t.metrics != nil {
		t.metrics.GasRefueled.Mark(int64(level - available))
	}

	t.hub.Publish(events.TopicGas, events.NewGasRefueled(who.String(), uint64(level-available), uint64(level)))

	return level
}
