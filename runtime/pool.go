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
	"sync"

	"github.com/google/btree"
	"github.com/perlin-network/pallets"
	"github.com/perlin-network/pallets/conf"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

var (
	ErrDuplicateExtrinsic = errors.New("extrinsic is already pooled")
	ErrPoolFull           = errors.New("extrinsic pool is full")
	ErrRateLimited        = errors.New("account is submitting extrinsics too quickly")
)

var _ btree.Item = (*poolItem)(nil)

type poolItem struct {
	priority uint64
	seq      uint64
	id       ExtrinsicID
}

// Less orders by descending priority, then by arrival.
func (p poolItem) Less(than btree.Item) bool {
	other := than.(poolItem)

	if p.priority != other.priority {
		return p.priority > other.priority
	}

	return p.seq < other.seq
}

// Pool holds extrinsics waiting to be applied.
type Pool struct {
	sync.Mutex

	index      *btree.BTree
	extrinsics map[ExtrinsicID]poolEntry
	limiters   map[pallets.AccountID]*rate.Limiter

	seq     uint64
	metrics *pallets.Metrics
}

type poolEntry struct {
	item poolItem
	ext  Extrinsic
}

func NewPool(metrics *pallets.Metrics) *Pool {
	return &Pool{
		index:      btree.New(32),
		extrinsics: make(map[ExtrinsicID]poolEntry),
		limiters:   make(map[pallets.AccountID]*rate.Limiter),
		metrics:    metrics,
	}
}

// Add pools an extrinsic. Submissions are rate limited per the account the credential
// claims to act for.
func (p *Pool) Add(ext Extrinsic) (ExtrinsicID, error) {
	if ext.Call == nil {
		return ExtrinsicID{}, ErrNoCall
	}

	id := ext.ID()

	p.Lock()
	defer p.Unlock()

	if _, exists := p.extrinsics[id]; exists {
		return id, errors.Wrapf(ErrDuplicateExtrinsic, "extrinsic %s", id)
	}

	if capacity := conf.GetPoolCapacity(); len(p.extrinsics) >= capacity {
		return id, errors.Wrapf(ErrPoolFull, "%d extrinsics pooled", capacity)
	}

	user := ext.Credential.UserID()

	limiter, exists := p.limiters[user]
	if !exists {
		perSecond, burst := conf.GetPoolRate()
		limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		p.limiters[user] = limiter
	}

	if !limiter.Allow() {
		return id, errors.Wrapf(ErrRateLimited, "account %x", user)
	}

	p.seq++

	item := poolItem{priority: ext.Priority, seq: p.seq, id: id}

	p.extrinsics[id] = poolEntry{item: item, ext: ext}
	p.index.ReplaceOrInsert(item)

	p.updateSize()

	return id, nil
}

// Pop removes the extrinsic of highest priority.
func (p *Pool) Pop() (Extrinsic, bool) {
	p.Lock()
	defer p.Unlock()

	min := p.index.DeleteMin()
	if min == nil {
		return Extrinsic{}, false
	}

	id := min.(poolItem).id

	entry := p.extrinsics[id]
	delete(p.extrinsics, id)

	p.updateSize()

	return entry.ext, true
}

func (p *Pool) Remove(id ExtrinsicID) bool {
	p.Lock()
	defer p.Unlock()

	entry, exists := p.extrinsics[id]
	if !exists {
		return false
	}

	p.index.Delete(entry.item)
	delete(p.extrinsics, id)

	p.updateSize()

	return true
}

func (p *Pool) Len() int {
	p.Lock()
	defer p.Unlock()

	return len(p.extrinsics)
}

// Ascend visits pooled extrinsics in the order they would be applied.
func (p *Pool) Ascend(iter func(ext Extrinsic) bool) {
	p.Lock()
	defer p.Unlock()

	p.index.Ascend(func(i btree.Item) bool {
		return iter(p.extrinsics[i.(poolItem).id].ext)
	})
}

func (p *Pool) updateSize() {
	if p.metrics != nil {
		p.metrics.PoolSize.Update(int64(len(p.extrinsics)))
	}
}
