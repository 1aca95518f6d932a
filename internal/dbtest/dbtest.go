// Package dbtest holds assertions shared by the tests of the key-value
// layers.
package dbtest

import (
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tmdb "github.com/tendermint/tm-db"
)

// Getter is the point-read side of a key-value store.
type Getter interface {
	Get(key []byte) ([]byte, error)
}

// RangeStore is a writable store with forward iteration.
type RangeStore interface {
	Getter
	Set(key, value []byte) error
	Iterator(start, end []byte) (tmdb.Iterator, error)
}

//----------------------------------------
// Helper functions.

func Valid(t *testing.T, itr tmdb.Iterator, expected bool) {
	valid := itr.Valid()
	require.Equal(t, expected, valid)
}

func Next(t *testing.T, itr tmdb.Iterator, expected bool) {
	itr.Next()
	valid := itr.Valid()
	require.Equal(t, expected, valid)
}

func NextPanics(t *testing.T, itr tmdb.Iterator) {
	assert.Panics(t, func() { itr.Next() }, "checkNextPanics expected an error but didn't")
}

func Domain(t *testing.T, itr tmdb.Iterator, start, end []byte) {
	ds, de := itr.Domain()
	assert.Equal(t, start, ds, "checkDomain domain start incorrect")
	assert.Equal(t, end, de, "checkDomain domain end incorrect")
}

func Item(t *testing.T, itr tmdb.Iterator, key []byte, value []byte) {
	assert.Exactly(t, key, itr.Key())
	assert.Exactly(t, value, itr.Value())
}

func Invalid(t *testing.T, itr tmdb.Iterator) {
	Valid(t, itr, false)
	KeyPanics(t, itr)
	ValuePanics(t, itr)
	NextPanics(t, itr)
}

func KeyPanics(t *testing.T, itr tmdb.Iterator) {
	assert.Panics(t, func() { itr.Key() }, "checkKeyPanics expected panic but didn't")
}

func ValuePanics(t *testing.T, itr tmdb.Iterator) {
	assert.Panics(t, func() { itr.Value() })
}

func Value(t *testing.T, db Getter, key []byte, valueWanted []byte) {
	valueGot, err := db.Get(key)
	assert.NoError(t, err)
	assert.Equal(t, valueWanted, valueGot)
}

// Keys drains itr and returns the keys it visited.
func Keys(t *testing.T, itr tmdb.Iterator) [][]byte {
	defer itr.Close()
	var keys [][]byte
	for ; itr.Valid(); itr.Next() {
		keys = append(keys, itr.Key())
	}
	require.NoError(t, itr.Error())
	return keys
}

func Int642Bytes(i int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(i))
	return buf
}

func Bytes2Int64(buf []byte) int64 {
	return int64(binary.BigEndian.Uint64(buf))
}

func BenchmarkRangeScans(b *testing.B, db RangeStore, dbSize int64) {
	b.StopTimer()

	rangeSize := int64(1000)
	if dbSize < rangeSize {
		b.Errorf("db size %v cannot be less than range size %v", dbSize, rangeSize)
	}

	for i := int64(0); i < dbSize; i++ {
		bytes := Int642Bytes(i)
		err := db.Set(bytes, bytes)
		if err != nil {
			// require.NoError() is very expensive (according to profiler), so check manually
			b.Fatal(b, err)
		}
	}
	b.StartTimer()

	for i := 0; i < b.N; i++ {
		start := rand.Int63n(dbSize - rangeSize) // nolint: gosec
		end := start + rangeSize
		iter, err := db.Iterator(Int642Bytes(start), Int642Bytes(end))
		require.NoError(b, err)
		count := 0
		for ; iter.Valid(); iter.Next() {
			count++
		}
		iter.Close()
		require.EqualValues(b, rangeSize, count)
	}
}
