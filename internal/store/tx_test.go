package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dbm "github.com/tendermint/tm-db"
	"pgregory.net/rapid"

	"github.com/tendermint/orderbook/internal/dbtest"
)

func seedDB(t *testing.T, kvs ...string) dbm.DB {
	t.Helper()
	db := dbm.NewMemDB()
	for i := 0; i+1 < len(kvs); i += 2 {
		require.NoError(t, db.Set([]byte(kvs[i]), []byte(kvs[i+1])))
	}
	return db
}

func TestTxReadsThrough(t *testing.T) {
	db := seedDB(t, "a", "1", "b", "2")
	tx := NewTx(db)

	dbtest.Value(t, tx, []byte("a"), []byte("1"))
	require.NoError(t, tx.Set([]byte("a"), []byte("10")))
	require.NoError(t, tx.Delete([]byte("b")))
	require.NoError(t, tx.Set([]byte("c"), []byte("3")))

	dbtest.Value(t, tx, []byte("a"), []byte("10"))
	dbtest.Value(t, tx, []byte("b"), nil)
	dbtest.Value(t, tx, []byte("c"), []byte("3"))

	ok, err := tx.Has([]byte("b"))
	require.NoError(t, err)
	assert.False(t, ok)

	// nothing reached the parent
	dbtest.Value(t, db, []byte("a"), []byte("1"))
	dbtest.Value(t, db, []byte("b"), []byte("2"))
	dbtest.Value(t, db, []byte("c"), nil)
}

func TestTxRejectsEmptyKeys(t *testing.T) {
	tx := NewTx(dbm.NewMemDB())
	assert.Error(t, tx.Set(nil, []byte("x")))
	assert.Error(t, tx.Set([]byte("k"), nil))
	assert.Error(t, tx.Delete([]byte{}))
	_, err := tx.Get(nil)
	assert.Error(t, err)
}

func TestTxIteratorMerges(t *testing.T) {
	db := seedDB(t, "a", "1", "b", "2", "d", "4", "f", "6")
	tx := NewTx(db)
	require.NoError(t, tx.Set([]byte("c"), []byte("3")))
	require.NoError(t, tx.Set([]byte("d"), []byte("40")))
	require.NoError(t, tx.Delete([]byte("b")))
	require.NoError(t, tx.Set([]byte("g"), []byte("7")))

	itr, err := tx.Iterator([]byte("a"), []byte("g"))
	require.NoError(t, err)
	dbtest.Domain(t, itr, []byte("a"), []byte("g"))
	dbtest.Item(t, itr, []byte("a"), []byte("1"))
	dbtest.Next(t, itr, true)
	dbtest.Item(t, itr, []byte("c"), []byte("3"))
	dbtest.Next(t, itr, true)
	dbtest.Item(t, itr, []byte("d"), []byte("40"))
	dbtest.Next(t, itr, true)
	dbtest.Item(t, itr, []byte("f"), []byte("6"))
	dbtest.Next(t, itr, false)
	dbtest.Invalid(t, itr)
	require.NoError(t, itr.Close())

	rev, err := tx.ReverseIterator(nil, nil)
	require.NoError(t, err)
	keys := dbtest.Keys(t, rev)
	assert.Equal(t, [][]byte{[]byte("g"), []byte("f"), []byte("d"), []byte("c"), []byte("a")}, keys)
}

func TestTxIteratorSnapshotsStagedWrites(t *testing.T) {
	tx := NewTx(dbm.NewMemDB())
	require.NoError(t, tx.Set([]byte("a"), []byte("1")))

	itr, err := tx.Iterator(nil, nil)
	require.NoError(t, err)
	require.NoError(t, tx.Set([]byte("b"), []byte("2")))

	assert.Equal(t, [][]byte{[]byte("a")}, dbtest.Keys(t, itr))
}

func TestTxFlushIntoDB(t *testing.T) {
	db := seedDB(t, "a", "1", "b", "2")
	tx := NewTx(db)
	require.NoError(t, tx.Set([]byte("a"), []byte("10")))
	require.NoError(t, tx.Delete([]byte("b")))
	require.NoError(t, tx.Flush())
	assert.Zero(t, tx.Len())

	dbtest.Value(t, db, []byte("a"), []byte("10"))
	dbtest.Value(t, db, []byte("b"), nil)
}

func TestTxNestedFlushAndDiscard(t *testing.T) {
	db := seedDB(t, "a", "1")
	block := NewTx(db)

	ok := NewTx(block)
	require.NoError(t, ok.Set([]byte("b"), []byte("2")))
	require.NoError(t, ok.Flush())

	failed := NewTx(block)
	require.NoError(t, failed.Set([]byte("c"), []byte("3")))
	require.NoError(t, failed.Delete([]byte("a")))
	failed.Discard()
	assert.Error(t, failed.Set([]byte("d"), []byte("4")))
	assert.Error(t, failed.Flush())

	dbtest.Value(t, block, []byte("a"), []byte("1"))
	dbtest.Value(t, block, []byte("b"), []byte("2"))
	dbtest.Value(t, block, []byte("c"), nil)
	dbtest.Value(t, db, []byte("b"), nil)

	require.NoError(t, block.Flush())
	dbtest.Value(t, db, []byte("b"), []byte("2"))
}

func TestTxHash(t *testing.T) {
	tx1 := NewTx(dbm.NewMemDB())
	tx2 := NewTx(dbm.NewMemDB())
	require.NoError(t, tx1.Set([]byte("a"), []byte("1")))
	require.NoError(t, tx1.Set([]byte("b"), []byte("2")))
	require.NoError(t, tx2.Set([]byte("b"), []byte("2")))
	require.NoError(t, tx2.Set([]byte("a"), []byte("1")))
	assert.Equal(t, tx1.Hash(), tx2.Hash())

	require.NoError(t, tx2.Delete([]byte("a")))
	assert.NotEqual(t, tx1.Hash(), tx2.Hash())
}

// The merged view of a Tx over a DB must match applying the same writes to
// a plain map.
func TestTxMatchesModel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		db := dbm.NewMemDB()
		model := map[string]string{}
		keyGen := rapid.StringMatching(`[a-e]{1,2}`)

		for i, n := 0, rapid.IntRange(0, 10).Draw(t, "seed").(int); i < n; i++ {
			k := keyGen.Draw(t, "seedKey").(string)
			require.NoError(t, db.Set([]byte(k), []byte("db")))
			model[k] = "db"
		}

		tx := NewTx(db)
		for i, n := 0, rapid.IntRange(0, 20).Draw(t, "ops").(int); i < n; i++ {
			k := keyGen.Draw(t, "key").(string)
			if rapid.Bool().Draw(t, "delete").(bool) {
				require.NoError(t, tx.Delete([]byte(k)))
				delete(model, k)
			} else {
				v := rapid.StringMatching(`[0-9]{1,3}`).Draw(t, "value").(string)
				require.NoError(t, tx.Set([]byte(k), []byte(v)))
				model[k] = v
			}
		}

		itr, err := tx.Iterator(nil, nil)
		require.NoError(t, err)
		var prev string
		seen := 0
		for ; itr.Valid(); itr.Next() {
			k := string(itr.Key())
			require.True(t, prev < k, "keys out of order: %q then %q", prev, k)
			require.Equal(t, model[k], string(itr.Value()))
			prev = k
			seen++
		}
		require.NoError(t, itr.Close())
		require.Equal(t, len(model), seen)
	})
}

func BenchmarkTxRangeScans(b *testing.B) {
	dbtest.BenchmarkRangeScans(b, NewTx(dbm.NewMemDB()), int64(1e4))
}
