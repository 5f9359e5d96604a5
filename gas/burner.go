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

// Package gas meters prepaid execution allowance held in per-account gas tanks.
package gas

// Amount is any unsigned quantity of gas.
type Amount interface {
	~uint64
}

// Burner reads and drains the gas tanks of accounts identified by A.
type Burner[A comparable, G Amount] interface {
	// CheckAvailableGas returns the gas an account holds when requested is nil. Otherwise it
	// returns what would remain after spending requested, and false if the account cannot
	// afford it. It never modifies state.
	CheckAvailableGas(who A, requested *G) (G, bool)

	// BurnGas deducts as much of gas as the account holds and returns what is left in its
	// tank. It saturates at zero and never fails.
	BurnGas(who A, gas G) G
}

// Fueler tops up gas tanks.
type Fueler[A comparable, G Amount] interface {
	// RefuelGas adds gas to the account's tank, saturating at the maximum, and returns the
	// new level.
	RefuelGas(who A, gas G) G
}

// Tanker is a Burner that can also be refuelled.
type Tanker[A comparable, G Amount] interface {
	Burner[A, G]
	Fueler[A, G]
}
