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

// Package store holds the key-value backends a state tree commits its nodes into.
package store

import (
	"io"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("not found")

// KV is the persistence backend of a state tree.
type KV interface {
	io.Closer

	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error

	NewWriteBatch() WriteBatch

	// CommitWriteBatch applies every operation of a batch created by this store atomically.
	CommitWriteBatch(batch WriteBatch) error
}

// WriteBatch queues puts and deletes until it is committed.
type WriteBatch interface {
	Put(key, value []byte)
	Delete(key []byte)

	Count() int
	Destroy()
}
