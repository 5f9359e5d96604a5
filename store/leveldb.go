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
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

var (
	_ KV         = (*LevelDB)(nil)
	_ WriteBatch = (*levelBatch)(nil)
)

type levelBatch struct {
	*leveldb.Batch
}

func (b levelBatch) Count() int {
	return b.Len()
}

func (b levelBatch) Destroy() {
	b.Reset()
}

// LevelDB persists state on disk. Values are snappy compressed.
type LevelDB struct {
	db *leveldb.DB
}

func NewLevelDB(dir string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(dir, &opt.Options{
		Compression:  opt.SnappyCompression,
		Filter:       filter.NewBloomFilter(10),
		NoWriteMerge: true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open leveldb at %q", dir)
	}

	return &LevelDB{db: db}, nil
}

func (l *LevelDB) Close() error {
	return l.db.Close()
}

func (l *LevelDB) Get(key []byte) ([]byte, error) {
	value, err := l.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, errors.Wrapf(ErrNotFound, "leveldb: key %x", key)
	}

	return value, err
}

func (l *LevelDB) Put(key, value []byte) error {
	return l.db.Put(key, value, nil)
}

func (l *LevelDB) Delete(key []byte) error {
	return l.db.Delete(key, nil)
}

func (l *LevelDB) NewWriteBatch() WriteBatch {
	return levelBatch{new(leveldb.Batch)}
}

func (l *LevelDB) CommitWriteBatch(batch WriteBatch) error {
	b, ok := batch.(levelBatch)
	if !ok {
		return errors.Errorf("leveldb: cannot commit a %T", batch)
	}

	return l.db.Write(b.Batch, nil)
}
