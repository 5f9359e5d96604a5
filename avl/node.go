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
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

const MerkleHashSize = blake2b.Size256

type nodeType byte

const (
	NodeNonLeaf nodeType = iota
	NodeLeafValue
)

// node is immutable once hashed. Non-leaf nodes carry the largest key of their subtree,
// which is always the key of their right child.
type node struct {
	id, left, right [MerkleHashSize]byte

	key, value []byte

	kind nodeType

	depth byte
	size  uint64
}

func (n *node) rehash() {
	var buf bytes.Buffer
	n.serialize(&buf)

	n.id = blake2b.Sum256(buf.Bytes())
}

func (n *node) String() string {
	switch n.kind {
	case NodeNonLeaf:
		return "(non-leaf)" + hex.EncodeToString(n.key)
	case NodeLeafValue:
		return fmt.Sprintf("%s -> %s", hex.EncodeToString(n.key), hex.EncodeToString(n.value))
	default:
		return "(unknown)"
	}
}

func (n *node) serialize(buf *bytes.Buffer) {
	buf.WriteByte(byte(n.kind))

	if n.kind != NodeLeafValue {
		buf.Write(n.left[:])
		buf.Write(n.right[:])
	}

	var buf64 [8]byte

	if len(n.key) > math.MaxUint32 {
		panic("avl: key is too long")
	}

	binary.LittleEndian.PutUint32(buf64[:4], uint32(len(n.key)))
	buf.Write(buf64[:4])
	buf.Write(n.key)

	if n.kind == NodeLeafValue {
		if len(n.value) > math.MaxUint32 {
			panic("avl: value is too long")
		}

		binary.LittleEndian.PutUint32(buf64[:4], uint32(len(n.value)))
		buf.Write(buf64[:4])
		buf.Write(n.value)
	}

	buf.WriteByte(n.depth)

	binary.LittleEndian.PutUint64(buf64[:], n.size)
	buf.Write(buf64[:])
}

func deserialize(r *bytes.Reader) (*node, error) {
	n := new(node)

	kind, err := r.ReadByte()
	if err != nil {
		return nil, errors.Wrap(err, "avl: failed to read node kind")
	}

	n.kind = nodeType(kind)

	if n.kind != NodeLeafValue && n.kind != NodeNonLeaf {
		return nil, errors.Errorf("avl: unknown node kind %d", n.kind)
	}

	if n.kind == NodeNonLeaf {
		if _, err := io.ReadFull(r, n.left[:]); err != nil {
			return nil, errors.Wrap(err, "avl: failed to read left child id")
		}

		if _, err := io.ReadFull(r, n.right[:]); err != nil {
			return nil, errors.Wrap(err, "avl: failed to read right child id")
		}
	}

	var buf64 [8]byte

	if _, err := io.ReadFull(r, buf64[:4]); err != nil {
		return nil, errors.Wrap(err, "avl: failed to read key length")
	}

	n.key = make([]byte, binary.LittleEndian.Uint32(buf64[:4]))
	if _, err := io.ReadFull(r, n.key); err != nil {
		return nil, errors.Wrap(err, "avl: failed to read key")
	}

	if n.kind == NodeLeafValue {
		if _, err := io.ReadFull(r, buf64[:4]); err != nil {
			return nil, errors.Wrap(err, "avl: failed to read value length")
		}

		n.value = make([]byte, binary.LittleEndian.Uint32(buf64[:4]))
		if _, err := io.ReadFull(r, n.value); err != nil {
			return nil, errors.Wrap(err, "avl: failed to read value")
		}
	}

	if n.depth, err = r.ReadByte(); err != nil {
		return nil, errors.Wrap(err, "avl: failed to read depth")
	}

	if _, err := io.ReadFull(r, buf64[:]); err != nil {
		return nil, errors.Wrap(err, "avl: failed to read size")
	}

	n.size = binary.LittleEndian.Uint64(buf64[:])

	n.rehash()

	return n, nil
}

func (t *Tree) leaf(key, value []byte) *node {
	n := &node{
		key:   append([]byte{}, key...),
		value: append([]byte{}, value...),
		kind:  NodeLeafValue,
		size:  1,
	}

	n.rehash()
	t.queueWrite(n)

	return n
}

func (t *Tree) branch(left, right *node) *node {
	n := &node{
		left:  left.id,
		right: right.id,
		key:   right.key,
		kind:  NodeNonLeaf,
		size:  left.size + right.size,
	}

	if left.depth > right.depth {
		n.depth = left.depth + 1
	} else {
		n.depth = right.depth + 1
	}

	n.rehash()
	t.queueWrite(n)

	return n
}

func (t *Tree) children(n *node) (*node, *node) {
	return t.mustLoadNode(n.left), t.mustLoadNode(n.right)
}

// balance joins two subtrees whose depths differ by at most two, rotating once or twice
// so that the result is height-balanced.
func (t *Tree) balance(left, right *node) *node {
	switch diff := int(left.depth) - int(right.depth); {
	case diff > 1:
		ll, lr := t.children(left)

		if lr.depth > ll.depth {
			lrl, lrr := t.children(lr)
			return t.branch(t.branch(ll, lrl), t.branch(lrr, right))
		}

		return t.branch(ll, t.branch(lr, right))
	case diff < -1:
		rl, rr := t.children(right)

		if rl.depth > rr.depth {
			rll, rlr := t.children(rl)
			return t.branch(t.branch(left, rll), t.branch(rlr, rr))
		}

		return t.branch(t.branch(left, rl), rr)
	}

	return t.branch(left, right)
}

func (n *node) insert(t *Tree, key, value []byte) *node {
	switch n.kind {
	case NodeLeafValue:
		switch cmp := bytes.Compare(key, n.key); {
		case cmp == 0:
			if bytes.Equal(value, n.value) {
				return n
			}

			return t.leaf(key, value)
		case cmp < 0:
			return t.branch(t.leaf(key, value), n)
		default:
			return t.branch(n, t.leaf(key, value))
		}
	case NodeNonLeaf:
		left, right := t.children(n)

		if bytes.Compare(key, left.key) <= 0 {
			return t.balance(left.insert(t, key, value), right)
		}

		return t.balance(left, right.insert(t, key, value))
	}

	panic(errors.Errorf("avl: on insert, found an unsupported node kind %d", n.kind))
}

func (n *node) lookup(t *Tree, key []byte) ([]byte, bool) {
	switch n.kind {
	case NodeLeafValue:
		if bytes.Equal(n.key, key) {
			return n.value, true
		}

		return nil, false
	case NodeNonLeaf:
		left := t.mustLoadNode(n.left)

		if bytes.Compare(key, left.key) <= 0 {
			return left.lookup(t, key)
		}

		return t.mustLoadNode(n.right).lookup(t, key)
	}

	panic(errors.Errorf("avl: on lookup, found an unsupported node kind %d", n.kind))
}

func (n *node) delete(t *Tree, key []byte) (*node, bool) {
	switch n.kind {
	case NodeLeafValue:
		if bytes.Equal(n.key, key) {
			return nil, true
		}

		return n, false
	case NodeNonLeaf:
		left, right := t.children(n)

		if bytes.Compare(key, left.key) <= 0 {
			updated, deleted := left.delete(t, key)

			switch {
			case !deleted:
				return n, false
			case updated == nil:
				return right, true
			default:
				return t.balance(updated, right), true
			}
		}

		updated, deleted := right.delete(t, key)

		switch {
		case !deleted:
			return n, false
		case updated == nil:
			return left, true
		default:
			return t.balance(left, updated), true
		}
	}

	panic(errors.Errorf("avl: on delete, found an unsupported node kind %d", n.kind))
}
