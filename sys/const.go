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

package sys

var (
	// Gas charged per unit of reference time, before the divisor is applied.
	GasPerRefTime uint64 = 1

	// Gas charged per byte of proof size, before the divisor is applied.
	GasPerProofSize uint64 = 4

	// Divisor applied to the weighted sum of ref time and proof size.
	WeightToGasDivisor uint64 = 1000

	// Base weight charged for every dispatched call on top of its own weight.
	BaseCallRefTime   uint64 = 125000
	BaseCallProofSize uint64 = 0

	// Number of blocks an authentication challenge remains valid for.
	ChallengeTTL uint64 = 10

	// Upper bounds for listing names and attributes, in bytes.
	MaxItemNameLen     = 64
	MaxAttributeKeyLen = 32
	MaxAttributeLen    = 1024

	// Max number of devices a single account may register.
	MaxDevicesPerAccount = 8

	// Max number of extrinsics waiting in the pool.
	PoolCapacity = 4096

	// Extrinsics a single account may submit to the pool per second, and in a burst.
	PoolRate  = 50.0
	PoolBurst = 100
)
