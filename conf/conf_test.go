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

package conf

import (
	"testing"
	"time"

	"github.com/perlin-network/pallets/sys"
	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	defer Reset()

	assert.EqualValues(t, sys.GasPerRefTime, GetGasPerRefTime())
	assert.EqualValues(t, sys.GasPerProofSize, GetGasPerProofSize())
	assert.EqualValues(t, sys.WeightToGasDivisor, GetWeightToGasDivisor())

	refTime, proofSize := GetBaseCallWeight()
	assert.EqualValues(t, sys.BaseCallRefTime, refTime)
	assert.EqualValues(t, sys.BaseCallProofSize, proofSize)

	assert.EqualValues(t, sys.ChallengeTTL, GetChallengeTTL())
	assert.EqualValues(t, sys.MaxDevicesPerAccount, GetMaxDevicesPerAccount())
	assert.EqualValues(t, sys.MaxItemNameLen, GetMaxItemNameLen())
	assert.EqualValues(t, sys.MaxAttributeKeyLen, GetMaxAttributeKeyLen())
	assert.EqualValues(t, sys.MaxAttributeLen, GetMaxAttributeLen())
	assert.EqualValues(t, sys.PoolCapacity, GetPoolCapacity())

	rate, burst := GetPoolRate()
	assert.EqualValues(t, sys.PoolRate, rate)
	assert.EqualValues(t, sys.PoolBurst, burst)

	assert.EqualValues(t, 10*time.Second, GetMetricsInterval())
}

func TestUpdate(t *testing.T) {
	defer Reset()

	Update(
		WithGasPerRefTime(3),
		WithGasPerProofSize(7),
		WithWeightToGasDivisor(10),
		WithBaseCallWeight(100, 2),
		WithChallengeTTL(4),
		WithMaxDevicesPerAccount(2),
		WithMaxItemNameLen(16),
		WithMaxAttributeKeyLen(8),
		WithMaxAttributeLen(64),
		WithPoolCapacity(3),
		WithPoolRate(0.5, 1),
		WithMetricsInterval(time.Second),
	)

	assert.EqualValues(t, 3, GetGasPerRefTime())
	assert.EqualValues(t, 7, GetGasPerProofSize())
	assert.EqualValues(t, 10, GetWeightToGasDivisor())

	refTime, proofSize := GetBaseCallWeight()
	assert.EqualValues(t, 100, refTime)
	assert.EqualValues(t, 2, proofSize)

	assert.EqualValues(t, 4, GetChallengeTTL())
	assert.EqualValues(t, 2, GetMaxDevicesPerAccount())
	assert.EqualValues(t, 16, GetMaxItemNameLen())
	assert.EqualValues(t, 8, GetMaxAttributeKeyLen())
	assert.EqualValues(t, 64, GetMaxAttributeLen())
	assert.EqualValues(t, 3, GetPoolCapacity())

	rate, burst := GetPoolRate()
	assert.EqualValues(t, 0.5, rate)
	assert.EqualValues(t, 1, burst)

	assert.EqualValues(t, time.Second, GetMetricsInterval())
}

func TestZeroDivisorIsClamped(t *testing.T) {
	defer Reset()

	Update(WithWeightToGasDivisor(0))
	assert.EqualValues(t, 1, GetWeightToGasDivisor())
}

func TestReset(t *testing.T) {
	Update(WithChallengeTTL(99))
	Reset()

	assert.EqualValues(t, sys.ChallengeTTL, GetChallengeTTL())
	assert.Contains(t, Stringify(), "challengeTTL")
}
