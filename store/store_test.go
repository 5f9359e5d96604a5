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
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVExistence(t *testing.T) {
	for _, kind := range []string{"inmem", "level"} {
		kind := kind

		t.Run(kind, func(t *testing.T) {
			db, cleanup := NewTestKV(t, kind)
			defer cleanup()

			_, err := db.Get([]byte("not_exist"))
			assert.Error(t, err)
			assert.Equal(t, ErrNotFound, errors.Cause(err))

			require.NoError(t, db.Put([]byte("exist"), []byte{}))

			val, err := db.Get([]byte("exist"))
			assert.NoError(t, err)
			assert.Len(t, val, 0)

			require.NoError(t, db.Delete([]byte("exist")))

			_, err = db.Get([]byte("exist"))
			assert.Error(t, err)
		})
	}
}

func TestKVWriteBatch(t *testing.T) {
	for _, kind := range []string{"inmem", "level"} {
		kind := kind

		t.Run(kind, func(t *testing.T) {
			db, cleanup := NewTestKV(t, kind)
			defer cleanup()

			require.NoError(t, db.Put([]byte("stale"), []byte("x")))

			batch := db.NewWriteBatch()
			batch.Put([]byte("a"), []byte("1"))
			batch.Put([]byte("b"), []byte("2"))
			batch.Delete([]byte("stale"))
			assert.Equal(t, 3, batch.Count())

			require.NoError(t, db.CommitWriteBatch(batch))

			for key, expected := range map[string]string{"a": "1", "b": "2"} {
				val, err := db.Get([]byte(key))
				require.NoError(t, err)
				assert.Equal(t, []byte(expected), val)
			}

			_, err := db.Get([]byte("stale"))
			assert.Error(t, err)

			batch.Destroy()
			assert.Equal(t, 0, batch.Count())
		})
	}
}

func TestInmemRejectsForeignBatch(t *testing.T) {
	db := NewInmem()
	defer db.Close()

	foreign := levelBatch{}
	assert.Error(t, db.CommitWriteBatch(foreign))
}

func TestInmemCopiesValues(t *testing.T) {
	db := NewInmem()
	defer db.Close()

	value := []byte("value")
	require.NoError(t, db.Put([]byte("k"), value))

	value[0] = 'X'

	batch := db.NewWriteBatch()
	batched := []byte("batched")
	batch.Put([]byte("b"), batched)
	batched[0] = 'X'

	require.NoError(t, db.CommitWriteBatch(batch))

	stored, err := db.Get([]byte("b"))
	require.NoError(t, err)
	assert.Equal(t, []byte("batched"), stored)

	stored, err = db.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), stored)
}
