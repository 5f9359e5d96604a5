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

package auth

import (
	"encoding/binary"

	"github.com/perlin-network/pallets/conf"
	"golang.org/x/crypto/blake2b"
)

var _ Challenger = (*BlockChallenger)(nil)

// BlockChallenger derives the challenge of a block by hashing it with a seed, and accepts it
// for conf.GetChallengeTTL() blocks afterwards.
type BlockChallenger struct {
	Seed []byte
}

func (b *BlockChallenger) Generate(block uint64) Challenge {
	buf := make([]byte, len(b.Seed)+8)

	copy(buf, b.Seed)
	binary.LittleEndian.PutUint64(buf[len(b.Seed):], block)

	return blake2b.Sum256(buf)
}

// Check reports whether challenge was issued at block issued, and is still fresh at now.
func (b *BlockChallenger) Check(challenge Challenge, issued, now uint64) bool {
	if !Fresh(issued, now) {
		return false
	}

	return b.Generate(issued) == challenge
}

// Fresh reports whether a challenge issued at block issued may still be answered at now.
func Fresh(issued, now uint64) bool {
	return issued <= now && now-issued <= conf.GetChallengeTTL()
}
