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

package example

import (
	"bytes"
	"testing"

	"github.com/perlin-network/pallets"
	"github.com/perlin-network/pallets/auth"
	"github.com/perlin-network/pallets/conf"
	"github.com/perlin-network/pallets/events"
	"github.com/perlin-network/pallets/mock"
	"github.com/perlin-network/pallets/payment"
	"github.com/perlin-network/pallets/runtime"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const block = 5

var (
	alice = pallets.AccountID{0x01}
	bob   = pallets.AccountID{0x02}
)

type testRuntime struct {
	*runtime.Executive

	t          *testing.T
	hub        *events.Hub
	challenger *auth.BlockChallenger
	alice      *auth.Keypair
	bob        *auth.Keypair
}

func keypair(t *testing.T, b byte) *auth.Keypair {
	t.Helper()

	k, err := auth.KeypairFromSeed(bytes.Repeat([]byte{b}, 32))
	require.NoError(t, err)

	return k
}

func newTestRuntime(t *testing.T) *testRuntime {
	t.Helper()

	conf.Reset()

	r := &testRuntime{
		t:          t,
		hub:        events.NewHub(),
		challenger: &auth.BlockChallenger{Seed: []byte("example")},
		alice:      keypair(t, 1),
		bob:        keypair(t, 2),
	}

	state := mock.NewState(t,
		mock.NewBalances().
			WithAccount(alice, 1_000_000).
			WithAccount(bob, 1_000_000).
			AsStorage(),
		mock.NewGasTanks().
			WithTank(alice, 1000).
			WithTank(bob, 100).
			AsStorage(),
		mock.NewDevices().
			WithDevice(alice, r.alice.Device(), 0).
			WithDevice(bob, r.bob.Device(), 0).
			AsStorage(),
	)

	calls := runtime.NewCalls()
	require.NoError(t, Register(calls))

	registry := auth.NewRegistry(r.challenger, auth.WithHub(r.hub))

	r.Executive = runtime.NewExecutive(state, registry, runtime.WithHub(r.hub), runtime.WithCalls(calls))
	r.SetBlock(block)

	return r
}

func (r *testRuntime) extrinsic(k *auth.Keypair, who pallets.AccountID, call runtime.Call) runtime.Extrinsic {
	ext, err := runtime.Sign(k, r.challenger, who, block, call)
	require.NoError(r.t, err)

	return ext
}

func (r *testRuntime) gas(t *testing.T, who pallets.AccountID) pallets.Gas {
	t.Helper()

	g, ok := r.Tank().Level(who)
	require.True(t, ok)

	return g
}

func TestSuccess(t *testing.T) {
	r := newTestRuntime(t)

	var stored []SomethingStored
	events.On(r.hub, Pallet, func(ev SomethingStored) bool {
		stored = append(stored, ev)
		return true
	})

	result, err := r.Apply(r.extrinsic(r.alice, alice, Success{Value: 42}))
	require.NoError(t, err)
	require.NoError(t, result.Err)

	assert.Equal(t, alice, result.Caller)
	assert.Equal(t, CallSuccess, result.Call)
	assert.True(t, result.PaysFee)

	value, ok := Something(r.Tree())
	assert.True(t, ok)
	assert.Equal(t, uint32(42), value)
	assert.Equal(t, uint64(1), Counter(r.Tree()))

	// Declared 136 gas up front, consumed 131.
	assert.Equal(t, pallets.Gas(1000-131), r.gas(t, alice))
	assert.Equal(t, payment.StatusUncharged, r.Payments().Status(alice))

	nonce, _ := pallets.ReadAccountNonce(r.Tree(), alice)
	assert.Equal(t, uint64(1), nonce)

	require.Len(t, stored, 1)
	assert.Equal(t, SomethingStored{Value: 42, Who: alice}, stored[0])

	deposited := r.Events()
	require.Len(t, deposited, 1)
	assert.Equal(t, Pallet, deposited[0].Topic)
	assert.Empty(t, r.Events())
}

func TestError(t *testing.T) {
	r := newTestRuntime(t)

	var failed []events.ExtrinsicFailedEvent
	events.On(r.hub, events.TopicRuntime, func(ev events.ExtrinsicFailedEvent) bool {
		failed = append(failed, ev)
		return true
	})

	result, err := r.Apply(r.extrinsic(r.alice, alice, Error{}))
	require.NoError(t, err)
	assert.Equal(t, ErrExample, errors.Cause(result.Err))
	assert.False(t, result.Ok())

	// The call's changes are reverted, but it is still paid for.
	assert.Equal(t, uint64(0), Counter(r.Tree()))
	assert.Equal(t, pallets.Gas(1000-135), r.gas(t, alice))

	nonce, _ := pallets.ReadAccountNonce(r.Tree(), alice)
	assert.Equal(t, uint64(1), nonce)

	assert.Empty(t, r.Events())

	require.Len(t, failed, 1)
	assert.Equal(t, CallError, failed[0].Call)
}

func TestSuccessThenError(t *testing.T) {
	r := newTestRuntime(t)

	_, err := r.Apply(r.extrinsic(r.alice, alice, Success{Value: 7}))
	require.NoError(t, err)

	result, err := r.Apply(r.extrinsic(r.alice, alice, Error{}))
	require.NoError(t, err)
	require.Error(t, result.Err)

	value, _ := Something(r.Tree())
	assert.Equal(t, uint32(7), value)
	assert.Equal(t, uint64(1), Counter(r.Tree()))
	assert.Equal(t, pallets.Gas(1000-131-135), r.gas(t, alice))
}

func TestRejectedCallsChargeNothing(t *testing.T) {
	r := newTestRuntime(t)

	// Bob's tank cannot cover the declared weight.
	_, err := r.Apply(r.extrinsic(r.bob, bob, Success{Value: 1}))
	assert.Equal(t, payment.ErrInsufficientGas, errors.Cause(err))
	assert.Equal(t, pallets.Gas(100), r.gas(t, bob))

	// Bob's device cannot act for alice.
	_, err = r.Apply(r.extrinsic(r.bob, alice, Success{Value: 1}))
	assert.Equal(t, auth.ErrUnknownDevice, errors.Cause(err))

	// Nor can an unregistered device.
	_, err = r.Apply(r.extrinsic(keypair(t, 3), alice, Success{Value: 1}))
	assert.Equal(t, auth.ErrUnknownDevice, errors.Cause(err))

	_, err = r.Apply(runtime.Extrinsic{Credential: r.alice.Credential(r.challenger, alice, block, nil)})
	assert.Equal(t, runtime.ErrNoCall, errors.Cause(err))

	_, ok := Something(r.Tree())
	assert.False(t, ok)
	assert.Equal(t, pallets.Gas(1000), r.gas(t, alice))
}

type unregistered struct{}

func (unregistered) Name() string           { return "other.call" }
func (unregistered) Weight() pallets.Weight { return pallets.Weight{} }
func (unregistered) Dispatch(*runtime.Context) (runtime.PostDispatchInfo, error) {
	return runtime.PostDispatchInfo{}, nil
}

func TestUnknownCallIsRejected(t *testing.T) {
	r := newTestRuntime(t)

	_, err := r.Apply(r.extrinsic(r.alice, alice, unregistered{}))
	assert.Equal(t, runtime.ErrUnknownCall, errors.Cause(err))
}

func TestApplyPoolByPriority(t *testing.T) {
	r := newTestRuntime(t)
	pool := runtime.NewPool(nil)

	low := r.extrinsic(r.alice, alice, Error{})
	low.Priority = 1

	high := r.extrinsic(r.alice, alice, Success{Value: 9})
	high.Priority = 5

	rejected := r.extrinsic(r.bob, bob, Success{Value: 1})
	rejected.Priority = 3

	for _, ext := range []runtime.Extrinsic{low, high, rejected} {
		_, err := pool.Add(ext)
		require.NoError(t, err)
	}

	results := r.ApplyPool(pool)
	require.Len(t, results, 2)

	assert.Equal(t, CallSuccess, results[0].Call)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, CallError, results[1].Call)
	assert.Error(t, results[1].Err)

	assert.Equal(t, 0, pool.Len())
	assert.Equal(t, uint64(1), Counter(r.Tree()))
}

func TestRegisteredCallsDecode(t *testing.T) {
	calls := runtime.NewCalls()
	require.NoError(t, Register(calls))

	assert.Equal(t, runtime.ErrCallExists, errors.Cause(Register(calls)))
	assert.Equal(t, []string{CallError, CallSuccess}, calls.Pallet(Pallet))

	call, err := calls.Decode(CallSuccess, []string{"12"})
	require.NoError(t, err)
	assert.Equal(t, Success{Value: 12}, call)

	_, err = calls.Decode(CallSuccess, nil)
	assert.Error(t, err)

	_, err = calls.Decode(CallSuccess, []string{"-1"})
	assert.Error(t, err)
}
