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

package log

import (
	"encoding/hex"

	"github.com/rs/zerolog"
	"github.com/valyala/fastjson"
)

func init() { // nolint:gochecknoinits
	zerolog.MessageFieldName = "message"
	zerolog.LevelFieldName = "level"
	zerolog.ErrorFieldName = "error"
}

// ArenaHex hex-encodes a byte slice or a fixed-size identifier into an arena string.
func ArenaHex(arena *fastjson.Arena, i interface{}) *fastjson.Value {
	var bytes []byte

	switch i := i.(type) {
	case []byte:
		bytes = i
	case [16]byte:
		bytes = i[:]
	case [32]byte:
		bytes = i[:]
	case [64]byte:
		bytes = i[:]
	default:
		panic("log: unknown type for hex encoding")
	}

	return arena.NewString(hex.EncodeToString(bytes))
}
