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

package runtime_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/perlin-network/pallets"
	"github.com/perlin-network/pallets/auth"
	"github.com/perlin-network/pallets/conf"
	"github.com/perlin-network/pallets/events"
	"github.com/perlin-network/pallets/mock"
	"github.com/perlin-network/pallets/runtime"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = pallets.AccountID{0x01}

// testCall consumes a configurable weight and optionally waives its fee.
type testCall struct {
	name     string
	declared pallets.Weight
	actual   *pallets.Weight
	pays     runtime.Pays
	err      error
}

func (c testCall) Name() string {
	if c.name == "" {
		return "test.call"
	}

	return c.name
}

func (c testCall) Weight() pallets.Weight {
	return c.declared
}

func (c testCall) MarshalBinary() ([]byte, error) {
	return c.declared.Marshal(), nil
}

func (c testCall) Dispatch(ctx *runtime.Context) (runtime.PostDispatchInfo, error) {
	pallets.WritePalletValue(ctx.Tree, "test", []byte("touched"), []byte{1})
	ctx.Deposit("test", c.Name())

	return runtime.PostDispatchInfo{ActualWeight: c.actual, PaysFee: c.pays}, c.err
}

func weight(refTime uint64) *pallets.Weight {
	w := pallets.NewWeight(refTime, 0)
	return &w
}

func sign(t *testing.T, k *auth.Keypair, c auth.Challenger, call runtime.Call) runtime.Extrinsic {
	t.Helper()

	ext, err := runtime.Sign(k, c, alice, 1, call)
	require.NoError(t, err)

	return ext
}

func newTestExecutive(t *testing.T, opts ...runtime.Option) (*runtime.Executive, *auth.Keypair, auth.Challenger) {
	t.Helper()

	conf.Reset()
	conf.Update(conf.WithBaseCallWeight(0, 0))

	t.Cleanup(conf.Reset)

	k, err := auth.KeypairFromSeed(bytes.Repeat([]byte{1}, 32))
	require.NoError(t, err)

	state := mock.NewState(t,
		mock.NewGasTanks().WithTank(alice, 1000).AsStorage(),
		mock.NewDevices().WithDevice(alice, k.Device(), 0).AsStorage(),
	)

	challenger := &auth.BlockChallenger{Seed: []byte("runtime")}
	hub := events.NewHub()

	e := runtime.NewExecutive(state, auth.NewRegistry(challenger, auth.WithHub(hub)), append([]runtime.Option{runtime.WithHub(hub)}, opts...)...)
	e.SetBlock(1)

	return e, k, challenger
}

func TestApplyChargesActualWeight(t *testing.T) {
	e, k, c := newTestExecutive(t)

	result, err := e.Apply(sign(t, k, c, testCall{declared: pallets.NewWeight(100_000, 0), actual: weight(40_000)}))
	require.NoError(t, err)
	require.True(t, result.Ok())

	assert.Equal(t, pallets.NewWeight(100_000, 0), result.Declared)
	assert.Equal(t, pallets.NewWeight(40_000, 0), result.Actual)

	level, _ := e.Tank().Level(alice)
	assert.Equal(t, pallets.Gas(960), level)
}

func TestApplyBurnsWeightBeyondDeclared(t *testing.T) {
	e, k, c := newTestExecutive(t)

	_, err := e.Apply(sign(t, k, c, testCall{declared: pallets.NewWeight(100_000, 0), actual: weight(150_000)}))
	require.NoError(t, err)

	level, _ := e.Tank().Level(alice)
	assert.Equal(t, pallets.Gas(850), level)
}

func TestApplyWaivedFee(t *testing.T) {
	e, k, c := newTestExecutive(t)

	result, err := e.Apply(sign(t, k, c, testCall{declared: pallets.NewWeight(100_000, 0), pays: runtime.PaysNo}))
	require.NoError(t, err)
	assert.False(t, result.PaysFee)

	level, _ := e.Tank().Level(alice)
	assert.Equal(t, pallets.Gas(1000), level)
}

func TestApplyAddsBaseWeight(t *testing.T) {
	e, k, c := newTestExecutive(t)
	conf.Update(conf.WithBaseCallWeight(5_000, 0))

	result, err := e.Apply(sign(t, k, c, testCall{declared: pallets.NewWeight(10_000, 0), actual: weight(1_000)}))
	require.NoError(t, err)

	assert.Equal(t, pallets.NewWeight(15_000, 0), result.Declared)
	assert.Equal(t, pallets.NewWeight(6_000, 0), result.Actual)

	level, _ := e.Tank().Level(alice)
	assert.Equal(t, pallets.Gas(994), level)
}

func TestApplyRevertsFailedCall(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := pallets.NewMetrics(ctx)
	defer metrics.Stop()

	e, k, c := newTestExecutive(t, runtime.WithMetrics(metrics))

	result, err := e.Apply(sign(t, k, c, testCall{declared: pallets.NewWeight(100_000, 0), err: assert.AnError}))
	require.NoError(t, err)
	assert.Equal(t, assert.AnError, result.Err)

	_, touched := pallets.ReadPalletValue(e.Tree(), "test", []byte("touched"))
	assert.False(t, touched)
	assert.Empty(t, e.Events())

	level, _ := e.Tank().Level(alice)
	assert.Equal(t, pallets.Gas(900), level)

	assert.Equal(t, int64(1), metrics.ExtrinsicsFailed.Count())
	assert.Equal(t, int64(1), metrics.PaymentsReserved.Count())
	assert.Equal(t, int64(1), metrics.PaymentsSettled.Count())
	assert.Equal(t, int64(100), metrics.GasBurned.Count())
}

func TestApplyRejectsStaleCredential(t *testing.T) {
	e, k, c := newTestExecutive(t)
	e.SetBlock(1 + conf.GetChallengeTTL() + 1)

	_, err := e.Apply(sign(t, k, c, testCall{declared: pallets.NewWeight(1_000, 0)}))
	assert.Equal(t, auth.ErrStaleChallenge, errors.Cause(err))
}

func TestEventsAreDrainedInOrder(t *testing.T) {
	e, k, c := newTestExecutive(t)

	for _, name := range []string{"test.a", "test.b", "test.c"} {
		_, err := e.Apply(sign(t, k, c, testCall{name: name, declared: pallets.NewWeight(1_000, 0)}))
		require.NoError(t, err)
	}

	evs := e.Events()
	require.Len(t, evs, 3)

	for i, name := range []string{"test.a", "test.b", "test.c"} {
		assert.Equal(t, "test", evs[i].Topic)
		assert.Equal(t, name, evs[i].Data)
	}
}

func TestApplyRejectsSubstitutedCall(t *testing.T) {
	e, k, c := newTestExecutive(t)

	signed := sign(t, k, c, testCall{name: "test.a", declared: pallets.NewWeight(1_000, 0)})

	for _, call := range []runtime.Call{
		testCall{name: "test.b", declared: pallets.NewWeight(1_000, 0)},
		testCall{name: "test.a", declared: pallets.NewWeight(2_000, 0)},
	} {
		forged := signed
		forged.Call = call

		_, err := e.Apply(forged)
		assert.Equal(t, auth.ErrCallMismatch, errors.Cause(err))
	}

	_, touched := pallets.ReadPalletValue(e.Tree(), "test", []byte("touched"))
	assert.False(t, touched)

	level, _ := e.Tank().Level(alice)
	assert.Equal(t, pallets.Gas(1000), level)

	result, err := e.Apply(signed)
	require.NoError(t, err)
	assert.True(t, result.Ok())
}
