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
	"fmt"
	"sync"
	"time"

	"github.com/perlin-network/pallets/sys"
)

type config struct {
	// Weight to gas conversion factors.
	gasPerRefTime      uint64
	gasPerProofSize    uint64
	weightToGasDivisor uint64

	// Weight charged for every call on top of what the call declares.
	baseCallRefTime   uint64
	baseCallProofSize uint64

	// Number of blocks an authentication challenge stays valid for.
	challengeTTL uint64

	maxDevicesPerAccount int

	// Listing bounds, in bytes.
	maxItemNameLen     int
	maxAttributeKeyLen int
	maxAttributeLen    int

	// Extrinsic pool bounds.
	poolCapacity int
	poolRate     float64
	poolBurst    int

	// How often collected metrics are logged.
	metricsInterval time.Duration
}

var (
	l sync.RWMutex

	defaultConf = defaultConfig()
	c           = defaultConf
)

func defaultConfig() config {
	defConf := config{
		gasPerRefTime:      sys.GasPerRefTime,
		gasPerProofSize:    sys.GasPerProofSize,
		weightToGasDivisor: sys.WeightToGasDivisor,

		baseCallRefTime:   sys.BaseCallRefTime,
		baseCallProofSize: sys.BaseCallProofSize,

		challengeTTL: sys.ChallengeTTL,

		maxDevicesPerAccount: sys.MaxDevicesPerAccount,

		maxItemNameLen:     sys.MaxItemNameLen,
		maxAttributeKeyLen: sys.MaxAttributeKeyLen,
		maxAttributeLen:    sys.MaxAttributeLen,

		poolCapacity: sys.PoolCapacity,
		poolRate:     sys.PoolRate,
		poolBurst:    sys.PoolBurst,

		metricsInterval: 10 * time.Second,
	}

	if sys.VersionMeta == "testnet" {
		defConf.challengeTTL = 30
	}

	return defConf
}

type Option func(*config)

func WithGasPerRefTime(n uint64) Option {
	return func(c *config) {
		c.gasPerRefTime = n
	}
}

func WithGasPerProofSize(n uint64) Option {
	return func(c *config) {
		c.gasPerProofSize = n
	}
}

// WithWeightToGasDivisor sets the divisor of the weight to gas conversion. Zero is treated as one.
func WithWeightToGasDivisor(n uint64) Option {
	return func(c *config) {
		if n == 0 {
			n = 1
		}
		c.weightToGasDivisor = n
	}
}

func WithBaseCallWeight(refTime, proofSize uint64) Option {
	return func(c *config) {
		c.baseCallRefTime = refTime
		c.baseCallProofSize = proofSize
	}
}

func WithChallengeTTL(n uint64) Option {
	return func(c *config) {
		c.challengeTTL = n
	}
}

func WithMaxDevicesPerAccount(n int) Option {
	return func(c *config) {
		c.maxDevicesPerAccount = n
	}
}

func WithMaxItemNameLen(n int) Option {
	return func(c *config) {
		c.maxItemNameLen = n
	}
}

func WithMaxAttributeKeyLen(n int) Option {
	return func(c *config) {
		c.maxAttributeKeyLen = n
	}
}

func WithMaxAttributeLen(n int) Option {
	return func(c *config) {
		c.maxAttributeLen = n
	}
}

func WithPoolCapacity(n int) Option {
	return func(c *config) {
		c.poolCapacity = n
	}
}

// WithPoolRate limits how many extrinsics per second, and how many in a burst, a single
// account may submit to the pool.
func WithPoolRate(perSecond float64, burst int) Option {
	return func(c *config) {
		c.poolRate = perSecond
		c.poolBurst = burst
	}
}

func WithMetricsInterval(d time.Duration) Option {
	return func(c *config) {
		c.metricsInterval = d
	}
}

func GetGasPerRefTime() uint64 {
	l.RLock()
	t := c.gasPerRefTime
	l.RUnlock()

	return t
}

func GetGasPerProofSize() uint64 {
	l.RLock()
	t := c.gasPerProofSize
	l.RUnlock()

	return t
}

func GetWeightToGasDivisor() uint64 {
	l.RLock()
	t := c.weightToGasDivisor
	l.RUnlock()

	return t
}

func GetBaseCallWeight() (refTime uint64, proofSize uint64) {
	l.RLock()
	refTime, proofSize = c.baseCallRefTime, c.baseCallProofSize
	l.RUnlock()

	return refTime, proofSize
}

func GetChallengeTTL() uint64 {
	l.RLock()
	t := c.challengeTTL
	l.RUnlock()

	return t
}

func GetMaxDevicesPerAccount() int {
	l.RLock()
	t := c.maxDevicesPerAccount
	l.RUnlock()

	return t
}

func GetMaxItemNameLen() int {
	l.RLock()
	t := c.maxItemNameLen
	l.RUnlock()

	return t
}

func GetMaxAttributeKeyLen() int {
	l.RLock()
	t := c.maxAttributeKeyLen
	l.RUnlock()

	return t
}

func GetMaxAttributeLen() int {
	l.RLock()
	t := c.maxAttributeLen
	l.RUnlock()

	return t
}

func GetPoolCapacity() int {
	l.RLock()
	t := c.poolCapacity
	l.RUnlock()

	return t
}

func GetPoolRate() (perSecond float64, burst int) {
	l.RLock()
	perSecond, burst = c.poolRate, c.poolBurst
	l.RUnlock()

	return perSecond, burst
}

func GetMetricsInterval() time.Duration {
	l.RLock()
	t := c.metricsInterval
	l.RUnlock()

	return t
}

func Update(options ...Option) {
	l.Lock()

	for _, option := range options {
		option(&c)
	}

	l.Unlock()
}

func Stringify() string {
	l.RLock()
	s := fmt.Sprintf("%+v", c)
	l.RUnlock()

	return s
}

func Reset() {
	l.Lock()
	c = defaultConf
	l.Unlock()
}
