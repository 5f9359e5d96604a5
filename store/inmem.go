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

package store

import (
	"bytes"
	"sync"

	"github.com/huandu/skiplist"
	"github.com/pkg/errors"
)

var (
	_ KV         = (*Inmem)(nil)
	_ WriteBatch = (*inmemBatch)(nil)
)

type inmemOp struct {
	key, value []byte
	delete     bool
}

type inmemBatch struct {
	ops []inmemOp
}

func (b *inmemBatch) Put(key, value []byte) {
	b.ops = append(b.ops, inmemOp{key: copyBytes(key), value: copyBytes(value)})
}

func (b *inmemBatch) Delete(key []byte) {
	b.ops = append(b.ops, inmemOp{key: copyBytes(key), delete: true})
}

func (b *inmemBatch) Count() int {
	return len(b.ops)
}

func (b *inmemBatch) Destroy() {
	b.ops = nil
}

// Inmem keeps keys ordered in a skiplist. Test state and throwaway CLI state live here.
type Inmem struct {
	sync.RWMutex
	list *skiplist.SkipList
}

func NewInmem() *Inmem {
	var greater skiplist.GreaterThanFunc = func(lhs, rhs interface{}) bool {
		return bytes.Compare(lhs.([]byte), rhs.([]byte)) > 0
	}

	return &Inmem{list: skiplist.New(greater)}
}

func (s *Inmem) Close() error {
	s.Lock()
	s.list.Init()
	s.Unlock()

	return nil
}

func (s *Inmem) Get(key []byte) ([]byte, error) {
	s.RLock()
	defer s.RUnlock()

	value, found := s.list.GetValue(key)
	if !found {
		return nil, errors.Wrapf(ErrNotFound, "inmem: key %x", key)
	}

	return value.([]byte), nil
}

func (s *Inmem) Put(key, value []byte) error {
	s.Lock()
	s.list.Set(copyBytes(key), copyBytes(value))
	s.Unlock()

	return nil
}

func (s *Inmem) Delete(key []byte) error {
	s.Lock()
	s.list.Remove(key)
	s.Unlock()

	return nil
}

func (s *Inmem) NewWriteBatch() WriteBatch {
	return new(inmemBatch)
}

func (s *Inmem) CommitWriteBatch(batch WriteBatch) error {
	b, ok := batch.(*inmemBatch)
	if !ok {
		return errors.Errorf("inmem: cannot commit a %T", batch)
	}

	s.Lock()
	defer s.Unlock()

	for _, op := range b.ops {
		if op.delete {
			s.list.Remove(op.key)
		} else {
			s.list.Set(op.key, op.value)
		}
	}

	return nil
}

func copyBytes(buf []byte) []byte {
	return append(make([]byte, 0, len(buf)), buf...)
}
