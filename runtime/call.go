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

// Package runtime dispatches authenticated, prepaid calls against the state tree.
package runtime

import (
	"sort"
	"strings"

	"github.com/armon/go-radix"
	"github.com/perlin-network/pallets"
	"github.com/perlin-network/pallets/avl"
	"github.com/pkg/errors"
)

var (
	ErrUnknownCall = errors.New("unknown call")
	ErrCallExists  = errors.New("call is already registered")
	ErrNoCall      = errors.New("extrinsic carries no call")
)

// Pays says whether a dispatched call is charged for. The zero value charges.
type Pays byte

const (
	PaysYes Pays = iota
	PaysNo
)

// PostDispatchInfo is what a call reports about itself after running. A nil ActualWeight
// means the call consumed exactly the weight it declared.
type PostDispatchInfo struct {
	ActualWeight *pallets.Weight
	PaysFee      Pays
}

// Call is a dispatchable function of a pallet. Names take the form "<pallet>.<call>".
type Call interface {
	Name() string

	// Weight is the most the call may consume, charged before it runs.
	Weight() pallets.Weight

	// Dispatch runs the call. If it returns an error every change it made to ctx.Tree is
	// reverted, but the fee is still settled using the returned info.
	Dispatch(ctx *Context) (PostDispatchInfo, error)
}

// Event is something a call deposited while running.
type Event struct {
	Topic string
	Data  interface{}
}

// Context is the environment a call is dispatched in.
type Context struct {
	Tree   *avl.Tree
	Caller pallets.AccountID
	Block  uint64

	deposited []Event
}

// Deposit records an event. Events of calls that fail are discarded.
func (c *Context) Deposit(topic string, data interface{}) {
	c.deposited = append(c.deposited, Event{Topic: topic, Data: data})
}

// Decoder builds a call from textual arguments.
type Decoder func(args []string) (Call, error)

// Calls indexes the calls pallets make available by name.
type Calls struct {
	tree *radix.Tree
}

func NewCalls() *Calls {
	return &Calls{tree: radix.New()}
}

func (c *Calls) Register(name string, decode Decoder) error {
	if !strings.Contains(name, ".") {
		return errors.Errorf("call name %q must take the form <pallet>.<call>", name)
	}

	if _, exists := c.tree.Get(name); exists {
		return errors.Wrapf(ErrCallExists, "%q", name)
	}

	c.tree.Insert(name, decode)

	return nil
}

func (c *Calls) Known(name string) bool {
	_, exists := c.tree.Get(name)
	return exists
}

// Decode builds the call registered under name.
func (c *Calls) Decode(name string, args []string) (Call, error) {
	v, exists := c.tree.Get(name)
	if !exists {
		return nil, errors.Wrapf(ErrUnknownCall, "%q", name)
	}

	call, err := v.(Decoder)(args)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %q", name)
	}

	return call, nil
}

// Pallet lists the calls of a pallet in lexical order.
func (c *Calls) Pallet(pallet string) []string {
	var names []string

	c.tree.WalkPrefix(pallet+".", func(name string, _ interface{}) bool {
		names = append(names, name)
		return false
	})

	return names
}

// Names lists every registered call in lexical order.
func (c *Calls) Names() []string {
	names := make([]string, 0, c.tree.Len())

	c.tree.Walk(func(name string, _ interface{}) bool {
		names = append(names, name)
		return false
	})

	sort.Strings(names)

	return names
}
