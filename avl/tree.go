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

package avl

import (
	"bytes"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/perlin-network/pallets/store"
	"github.com/pkg/errors"
)

const DefaultCacheSize = 2048

var (
	RootKey       = []byte(".root")
	NodeKeyPrefix = []byte("@")
)

// Tree is a persistent, Merkleized AVL tree whose leaves hold key/value pairs. Every
// modification produces new nodes; unmodified subtrees are shared between a tree and
// its snapshots. Nodes are written to the backing store on Commit.
//
// Values returned by Lookup and the iterators must not be modified.
type Tree struct {
	kv store.KV

	root *node

	cache   *lru.Cache
	pending *sync.Map
}

func New(kv store.KV) *Tree {
	cache, _ := lru.New(DefaultCacheSize)

	t := &Tree{kv: kv, cache: cache, pending: new(sync.Map)}

	// Load root node if it already exists.
	if buf, err := t.kv.Get(RootKey); err == nil && len(buf) == MerkleHashSize {
		var rootID [MerkleHashSize]byte
		copy(rootID[:], buf)

		t.root = t.mustLoadNode(rootID)
	}

	return t
}

func (t *Tree) Insert(key, value []byte) {
	if t.root == nil {
		t.root = t.leaf(key, value)
		return
	}

	t.root = t.root.insert(t, key, value)
}

func (t *Tree) Lookup(key []byte) ([]byte, bool) {
	if t.root == nil {
		return nil, false
	}

	return t.root.lookup(t, key)
}

func (t *Tree) Delete(key []byte) bool {
	if t.root == nil {
		return false
	}

	root, deleted := t.root.delete(t, key)
	t.root = root

	return deleted
}

// Len returns the number of keys held by the tree.
func (t *Tree) Len() uint64 {
	if t.root == nil {
		return 0
	}

	return t.root.size
}

// Snapshot returns a copy of the tree that can be modified independently of t.
func (t *Tree) Snapshot() *Tree {
	return &Tree{kv: t.kv, cache: t.cache, pending: t.pending, root: t.root}
}

// Revert points t back at the contents of snapshot.
func (t *Tree) Revert(snapshot *Tree) {
	t.root = snapshot.root
}

// Iterate visits every key/value pair in ascending key order.
func (t *Tree) Iterate(callback func(key, value []byte)) {
	t.doIterate(t.root, func(k, v []byte) bool {
		callback(k, v)
		return true
	})
}

func (t *Tree) doIterate(n *node, callback func(key, value []byte) bool) bool {
	if n == nil {
		return true
	}

	if n.kind == NodeLeafValue {
		return callback(n.key, n.value)
	}

	left, right := t.children(n)

	return t.doIterate(left, callback) && t.doIterate(right, callback)
}

// IteratePrefix visits, in ascending key order, every pair whose key starts with prefix.
// Iteration stops early once callback returns false.
func (t *Tree) IteratePrefix(prefix []byte, callback func(key, value []byte) bool) {
	t.doIteratePrefix(t.root, prefix, callback)
}

func (t *Tree) doIteratePrefix(n *node, prefix []byte, callback func(key, value []byte) bool) bool {
	if n == nil {
		return true
	}

	if n.kind == NodeLeafValue {
		if bytes.HasPrefix(n.key, prefix) {
			return callback(n.key, n.value)
		}

		return true
	}

	// Every key in this subtree sorts before the prefix.
	if bytes.Compare(n.key, prefix) < 0 {
		return true
	}

	left, right := t.children(n)

	if bytes.Compare(left.key, prefix) >= 0 {
		if !t.doIteratePrefix(left, prefix, callback) {
			return false
		}

		// Keys sharing a prefix are contiguous, so nothing to the right can match.
		if !bytes.HasPrefix(left.key, prefix) {
			return true
		}
	}

	return t.doIteratePrefix(right, prefix, callback)
}

// Checksum returns the Merkle root of the tree. An empty tree has a zero checksum.
func (t *Tree) Checksum() [MerkleHashSize]byte {
	if t.root == nil {
		return [MerkleHashSize]byte{}
	}

	return t.root.id
}

func (t *Tree) queueWrite(n *node) {
	t.pending.Store(n.id, n)
}

// Commit writes every node reachable from the root that has not been persisted yet,
// and then records the root.
func (t *Tree) Commit() error {
	batch := t.kv.NewWriteBatch()
	defer batch.Destroy()

	var written [][MerkleHashSize]byte

	var walk func(n *node)
	walk = func(n *node) {
		if _, ok := t.pending.Load(n.id); !ok {
			return
		}

		var buf bytes.Buffer
		n.serialize(&buf)

		batch.Put(append(append([]byte{}, NodeKeyPrefix...), n.id[:]...), buf.Bytes())
		written = append(written, n.id)

		if n.kind == NodeNonLeaf {
			left, right := t.children(n)
			walk(left)
			walk(right)
		}
	}

	if t.root != nil {
		walk(t.root)
		batch.Put(RootKey, t.root.id[:])
	} else {
		batch.Delete(RootKey)
	}

	if err := t.kv.CommitWriteBatch(batch); err != nil {
		return errors.Wrap(err, "avl: failed to commit write batch to db")
	}

	for _, id := range written {
		if n, ok := t.pending.Load(id); ok {
			t.cache.Add(id, n)
			t.pending.Delete(id)
		}
	}

	return nil
}

func (t *Tree) loadNode(id [MerkleHashSize]byte) (*node, error) {
	if n, ok := t.pending.Load(id); ok {
		return n.(*node), nil
	}

	if n, ok := t.cache.Get(id); ok {
		return n.(*node), nil
	}

	buf, err := t.kv.Get(append(append([]byte{}, NodeKeyPrefix...), id[:]...))
	if err != nil || len(buf) == 0 {
		return nil, errors.Errorf("avl: could not find node %x", id)
	}

	n, err := deserialize(bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}

	if n.id != id {
		return nil, errors.Errorf("avl: node %x is corrupted, hashes to %x", id, n.id)
	}

	t.cache.Add(id, n)

	return n, nil
}

func (t *Tree) mustLoadNode(id [MerkleHashSize]byte) *node {
	n, err := t.loadNode(id)
	if err != nil {
		panic(err)
	}

	return n
}
