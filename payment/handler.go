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

// Package payment charges prepaid gas for weighed calls in two phases: an estimate is
// reserved before a call runs and reconciled with what the call actually consumed after.
package payment

import "github.com/pkg/errors"

var (
	ErrNoAllowance     = errors.New("account has no prepaid gas allowance")
	ErrInsufficientGas = errors.New("insufficient prepaid gas")
	ErrAlreadyReserved = errors.New("a payment is already reserved for this account")
	ErrBadReservation  = errors.New("malformed reservation record")
)

// PrepaidGasHandler charges accounts identified by A for calls of weight W.
type PrepaidGasHandler[A comparable, W any] interface {
	// InitiatePayment reserves the cost of weight from the account's prepaid gas. It is the
	// only step that can fail, in which case nothing was charged.
	InitiatePayment(who A, weight W) error

	// CompletePayment settles the reservation made by InitiatePayment given the weight the
	// call actually consumed, refunding or charging the difference. It never fails: any
	// shortfall is absorbed.
	CompletePayment(who A, initial, actual W, paysFees bool)
}
