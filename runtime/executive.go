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

package runtime

import (
	"time"

	"github.com/perlin-network/pallets"
	"github.com/perlin-network/pallets/auth"
	"github.com/perlin-network/pallets/avl"
	"github.com/perlin-network/pallets/conf"
	"github.com/perlin-network/pallets/events"
	"github.com/perlin-network/pallets/gas"
	"github.com/perlin-network/pallets/log"
	"github.com/perlin-network/pallets/payment"
	"github.com/phf/go-queue/queue"
	"github.com/pkg/errors"
)

// ApplyResult describes an extrinsic that was dispatched and paid for. Err is the error the
// call itself returned, if any.
type ApplyResult struct {
	ID     ExtrinsicID
	Caller pallets.AccountID
	Call   string

	Declared pallets.Weight
	Actual   pallets.Weight
	PaysFee  bool

	Err error
}

func (r ApplyResult) Ok() bool {
	return r.Err == nil
}

// Executive applies extrinsics one at a time: it authenticates the caller, reserves gas for
// the call's declared weight, dispatches the call and settles the payment.
type Executive struct {
	tree     *avl.Tree
	registry *auth.Registry
	calls    *Calls

	tank     *gas.Tank
	payments *payment.Handler

	hub     *events.Hub
	metrics *pallets.Metrics

	block     uint64
	deposited *queue.Queue
}

type Option func(*Executive)

func WithHub(hub *events.Hub) Option {
	return func(e *Executive) {
		e.hub = hub
	}
}

func WithMetrics(metrics *pallets.Metrics) Option {
	return func(e *Executive) {
		e.metrics = metrics
	}
}

// WithCalls restricts the executive to the calls registered in calls. Without it any call
// is dispatched.
func WithCalls(calls *Calls) Option {
	return func(e *Executive) {
		e.calls = calls
	}
}

func NewExecutive(tree *avl.Tree, registry *auth.Registry, opts ...Option) *Executive {
	e := &Executive{
		tree:      tree,
		registry:  registry,
		hub:       events.Global(),
		deposited: queue.New(),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.tank = gas.NewTank(tree, gas.WithHub(e.hub), gas.WithMetrics(e.metrics))
	e.payments = payment.NewHandler(e.tank, payment.WithHub(e.hub), payment.WithMetrics(e.metrics))

	return e
}

func (e *Executive) Tree() *avl.Tree {
	return e.tree
}

func (e *Executive) Tank() *gas.Tank {
	return e.tank
}

func (e *Executive) Payments() *payment.Handler {
	return e.payments
}

func (e *Executive) Block() uint64 {
	return e.block
}

// SetBlock sets the block height credentials are checked against.
func (e *Executive) SetBlock(block uint64) {
	e.block = block
}

// Apply dispatches an extrinsic. An error means the extrinsic was rejected before its call
// ran, in which case nothing was charged and state is untouched.
func (e *Executive) Apply(ext Extrinsic) (ApplyResult, error) {
	if ext.Call == nil {
		return ApplyResult{}, ErrNoCall
	}

	result := ApplyResult{ID: ext.ID(), Call: ext.Call.Name()}

	if e.calls != nil && !e.calls.Known(result.Call) {
		return result, errors.Wrapf(ErrUnknownCall, "%q", result.Call)
	}

	encoded, err := EncodeCall(ext.Call)
	if err != nil {
		return result, err
	}

	who, err := e.registry.Authenticate(e.tree, ext.Credential, encoded, e.block)
	if err != nil {
		return result, errors.Wrap(err, "failed to authenticate caller")
	}

	result.Caller = who

	baseRefTime, baseProofSize := conf.GetBaseCallWeight()
	base := pallets.NewWeight(baseRefTime, baseProofSize)

	result.Declared = ext.Call.Weight().Add(base)

	if err := e.payments.InitiatePayment(who, result.Declared); err != nil {
		return result, errors.Wrap(err, "cannot pay for call")
	}

	ctx := &Context{Tree: e.tree, Caller: who, Block: e.block}
	snapshot := e.tree.Snapshot()

	start := time.Now()
	info, err := ext.Call.Dispatch(ctx)

	if e.metrics != nil {
		e.metrics.DispatchLatency.UpdateSince(start)
	}

	if err != nil {
		e.tree.Revert(snapshot)
		result.Err = err
	}

	result.Actual = result.Declared
	if info.ActualWeight != nil {
		result.Actual = info.ActualWeight.Add(base)
	}

	result.PaysFee = info.PaysFee == PaysYes

	e.payments.CompletePayment(who, result.Declared, result.Actual, result.PaysFee)

	nonce, _ := pallets.ReadAccountNonce(e.tree, who)
	pallets.WriteAccountNonce(e.tree, who, nonce+1)

	logger := log.Runtime("apply")

	if result.Err != nil {
		logger.Debug().
			Err(result.Err).
			Hex("account_id", who[:]).
			Str("call", result.Call).
			Msg("Call failed; reverted its changes.")

		if e.metrics != nil {
			e.metrics.ExtrinsicsFailed.Mark(1)
		}

		e.hub.Publish(events.TopicRuntime, events.NewExtrinsicFailed(who.String(), result.Call, result.Err))

		return result, nil
	}

	for _, ev := range ctx.deposited {
		e.deposited.PushBack(ev)
		e.hub.Publish(ev.Topic, ev.Data)
	}

	logger.Debug().
		Hex("account_id", who[:]).
		Str("call", result.Call).
		Str("weight", result.Actual.String()).
		Msg("Applied call.")

	if e.metrics != nil {
		e.metrics.ExtrinsicsApplied.Mark(1)
	}

	e.hub.Publish(events.TopicRuntime, events.NewExtrinsicApplied(who.String(), result.Call))

	return result, nil
}

// ApplyPool drains pool, applying extrinsics in priority order. Rejected extrinsics are
// logged and dropped.
func (e *Executive) ApplyPool(pool *Pool) []ApplyResult {
	var results []ApplyResult

	logger := log.Runtime("apply_pool")

	for {
		ext, ok := pool.Pop()
		if !ok {
			break
		}

		result, err := e.Apply(ext)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("extrinsic", result.ID.String()).
				Str("call", result.Call).
				Msg("Dropping rejected extrinsic.")

			continue
		}

		results = append(results, result)
	}

	return results
}

// Events drains the events deposited by successful calls, oldest first.
func (e *Executive) Events() []Event {
	evs := make([]Event, 0, e.deposited.Len())

	for e.deposited.Len() > 0 {
		evs = append(evs, e.deposited.PopFront().(Event))
	}

	return evs
}
