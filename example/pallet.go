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

// Package example is a minimal pallet with one call that succeeds and one that fails.
package example

import (
	"encoding/binary"
	"strconv"

	"github.com/perlin-network/pallets"
	"github.com/perlin-network/pallets/avl"
	"github.com/perlin-network/pallets/runtime"
	"github.com/pkg/errors"
)

const Pallet = "example"

const (
	CallSuccess = Pallet + ".success"
	CallError   = Pallet + ".error"
)

var ErrExample = errors.New("example: call failed on purpose")

var (
	keySomething = []byte("something")
	keyCounter   = []byte("counter")
)

var (
	// SuccessWeight is declared by Success; it only ever consumes SuccessActualWeight.
	SuccessWeight       = pallets.NewWeight(10_000, 64)
	SuccessActualWeight = pallets.NewWeight(5_000, 64)

	ErrorWeight = pallets.NewWeight(10_000, 0)
)

// SomethingStored is deposited when Success stores a value.
type SomethingStored struct {
	Value uint32
	Who   pallets.AccountID
}

var (
	_ runtime.Call = Success{}
	_ runtime.Call = Error{}
)

// Success stores Value and counts how many times a value was stored.
type Success struct {
	Value uint32
}

func (Success) Name() string {
	return CallSuccess
}

func (Success) Weight() pallets.Weight {
	return SuccessWeight
}

func (s Success) MarshalBinary() ([]byte, error) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], s.Value)

	return buf[:], nil
}

func (s Success) Dispatch(ctx *runtime.Context) (runtime.PostDispatchInfo, error) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], s.Value)

	pallets.WritePalletValue(ctx.Tree, Pallet, keySomething, buf[:])

	var counter [8]byte
	binary.LittleEndian.PutUint64(counter[:], Counter(ctx.Tree)+1)

	pallets.WritePalletValue(ctx.Tree, Pallet, keyCounter, counter[:])

	ctx.Deposit(Pallet, SomethingStored{Value: s.Value, Who: ctx.Caller})

	actual := SuccessActualWeight

	return runtime.PostDispatchInfo{ActualWeight: &actual}, nil
}

// Error always fails. The counter it bumps before failing is reverted.
type Error struct{}

func (Error) Name() string {
	return CallError
}

func (Error) Weight() pallets.Weight {
	return ErrorWeight
}

func (Error) Dispatch(ctx *runtime.Context) (runtime.PostDispatchInfo, error) {
	var counter [8]byte
	binary.LittleEndian.PutUint64(counter[:], Counter(ctx.Tree)+1)

	pallets.WritePalletValue(ctx.Tree, Pallet, keyCounter, counter[:])

	return runtime.PostDispatchInfo{}, ErrExample
}

// Something returns the last value stored by Success.
func Something(tree *avl.Tree) (uint32, bool) {
	buf, exists := pallets.ReadPalletValue(tree, Pallet, keySomething)
	if !exists || len(buf) != 4 {
		return 0, false
	}

	return binary.LittleEndian.Uint32(buf), true
}

// Counter returns how many values Success has stored.
func Counter(tree *avl.Tree) uint64 {
	buf, exists := pallets.ReadPalletValue(tree, Pallet, keyCounter)
	if !exists || len(buf) != 8 {
		return 0
	}

	return binary.LittleEndian.Uint64(buf)
}

// Register makes the pallet's calls available by name.
func Register(calls *runtime.Calls) error {
	if err := calls.Register(CallSuccess, func(args []string) (runtime.Call, error) {
		if len(args) != 1 {
			return nil, errors.Errorf("expected a value to store, got %d arguments", len(args))
		}

		value, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "bad value %q", args[0])
		}

		return Success{Value: uint32(value)}, nil
	}); err != nil {
		return err
	}

	return calls.Register(CallError, func(args []string) (runtime.Call, error) {
		return Error{}, nil
	})
}
