package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/btree"
	dbm "github.com/tendermint/tm-db"
)

var (
	errKeyEmpty   = errors.New("key cannot be empty")
	errValueNil   = errors.New("value cannot be nil")
	errTxFinished = errors.New("transaction already flushed or discarded")
)

// Reader is the read side of a key-value store. Both dbm.DB and *Tx
// implement it.
type Reader interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Iterator(start, end []byte) (dbm.Iterator, error)
	ReverseIterator(start, end []byte) (dbm.Iterator, error)
}

// KV is a readable and writable key-value store.
type KV interface {
	Reader
	Set(key, value []byte) error
	Delete(key []byte) error
}

var (
	_ KV = (*Tx)(nil)
	_ KV = dbm.DB(nil)
)

type op struct {
	key     []byte
	value   []byte
	deleted bool
}

func opLess(a, b *op) bool { return bytes.Compare(a.key, b.key) < 0 }

// Tx stages writes in memory on top of a parent store. Reads see the staged
// writes first and fall through to the parent. Nothing reaches the parent
// until Flush; Discard drops every staged write.
//
// Tx is not safe for concurrent use.
type Tx struct {
	parent   Reader
	writes   *btree.BTreeG[*op]
	finished bool
}

// NewTx returns an empty transaction over parent.
func NewTx(parent Reader) *Tx {
	return &Tx{
		parent: parent,
		writes: btree.NewG(32, opLess),
	}
}

// Get implements Reader.
func (tx *Tx) Get(key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, errKeyEmpty
	}
	if o, ok := tx.writes.Get(&op{key: key}); ok {
		if o.deleted {
			return nil, nil
		}
		return o.value, nil
	}
	return tx.parent.Get(key)
}

// Has implements Reader.
func (tx *Tx) Has(key []byte) (bool, error) {
	if len(key) == 0 {
		return false, errKeyEmpty
	}
	if o, ok := tx.writes.Get(&op{key: key}); ok {
		return !o.deleted, nil
	}
	return tx.parent.Has(key)
}

// Set stages a write of value under key.
func (tx *Tx) Set(key, value []byte) error {
	if err := tx.checkWrite(key); err != nil {
		return err
	}
	if value == nil {
		return errValueNil
	}
	tx.writes.ReplaceOrInsert(&op{key: copyBytes(key), value: copyBytes(value)})
	return nil
}

// Delete stages a deletion of key.
func (tx *Tx) Delete(key []byte) error {
	if err := tx.checkWrite(key); err != nil {
		return err
	}
	tx.writes.ReplaceOrInsert(&op{key: copyBytes(key), deleted: true})
	return nil
}

func (tx *Tx) checkWrite(key []byte) error {
	if tx.finished {
		return errTxFinished
	}
	if len(key) == 0 {
		return errKeyEmpty
	}
	return nil
}

// Iterator implements Reader. Staged writes are snapshotted when the iterator
// is created, so writing while iterating does not affect the iterator.
func (tx *Tx) Iterator(start, end []byte) (dbm.Iterator, error) {
	return tx.newIterator(start, end, false)
}

// ReverseIterator implements Reader.
func (tx *Tx) ReverseIterator(start, end []byte) (dbm.Iterator, error) {
	return tx.newIterator(start, end, true)
}

func (tx *Tx) newIterator(start, end []byte, reverse bool) (dbm.Iterator, error) {
	if (start != nil && len(start) == 0) || (end != nil && len(end) == 0) {
		return nil, errKeyEmpty
	}
	var (
		parent dbm.Iterator
		err    error
	)
	if reverse {
		parent, err = tx.parent.ReverseIterator(start, end)
	} else {
		parent, err = tx.parent.Iterator(start, end)
	}
	if err != nil {
		return nil, err
	}
	return newMergedIterator(parent, tx.staged(start, end, reverse), start, end, reverse), nil
}

// staged returns the staged ops within [start, end) in iteration order.
func (tx *Tx) staged(start, end []byte, reverse bool) []*op {
	var ops []*op
	collect := func(o *op) bool {
		ops = append(ops, o)
		return true
	}
	switch {
	case start == nil && end == nil:
		tx.writes.Ascend(collect)
	case start == nil:
		tx.writes.AscendLessThan(&op{key: end}, collect)
	case end == nil:
		tx.writes.AscendGreaterOrEqual(&op{key: start}, collect)
	default:
		tx.writes.AscendRange(&op{key: start}, &op{key: end}, collect)
	}
	if reverse {
		for i, j := 0, len(ops)-1; i < j; i, j = i+1, j-1 {
			ops[i], ops[j] = ops[j], ops[i]
		}
	}
	return ops
}

// Len returns the number of staged writes.
func (tx *Tx) Len() int { return tx.writes.Len() }

// Hash returns a digest of the staged writes in key order. Two transactions
// staging the same writes have the same hash.
func (tx *Tx) Hash() []byte {
	h := sha256.New()
	var lenBuf [binary.MaxVarintLen64]byte
	writeBytes := func(bz []byte) {
		n := binary.PutUvarint(lenBuf[:], uint64(len(bz)))
		h.Write(lenBuf[:n])
		h.Write(bz)
	}
	tx.writes.Ascend(func(o *op) bool {
		writeBytes(o.key)
		if o.deleted {
			h.Write([]byte{0})
		} else {
			h.Write([]byte{1})
			writeBytes(o.value)
		}
		return true
	})
	return h.Sum(nil)
}

// Flush applies the staged writes to the parent and resets the transaction.
// A *Tx parent receives the writes as its own staged writes; any other
// parent must be a dbm.DB and receives them in one synced batch.
func (tx *Tx) Flush() error {
	if tx.finished {
		return errTxFinished
	}
	switch parent := tx.parent.(type) {
	case *Tx:
		if parent.finished {
			return errTxFinished
		}
		tx.writes.Ascend(func(o *op) bool {
			parent.writes.ReplaceOrInsert(o)
			return true
		})
	case dbm.DB:
		if err := tx.writeBatch(parent); err != nil {
			return err
		}
	default:
		return fmt.Errorf("cannot flush into %T", tx.parent)
	}
	tx.writes.Clear(false)
	return nil
}

func (tx *Tx) writeBatch(db dbm.DB) error {
	batch := db.NewBatch()
	defer batch.Close()

	var err error
	tx.writes.Ascend(func(o *op) bool {
		if o.deleted {
			err = batch.Delete(o.key)
		} else {
			err = batch.Set(o.key, o.value)
		}
		if err != nil {
			err = fmt.Errorf("staging key %X: %w", o.key, err)
			return false
		}
		return true
	})
	if err != nil {
		return err
	}
	return batch.WriteSync()
}

// Discard drops the staged writes. The transaction cannot be used for
// writing afterwards.
func (tx *Tx) Discard() {
	tx.writes.Clear(false)
	tx.finished = true
}

func copyBytes(bz []byte) []byte {
	cp := make([]byte, len(bz))
	copy(cp, bz)
	return cp
}

//-----------------------------------------------------------------------------

// mergedIterator merges a parent iterator with a snapshot of staged ops. On
// equal keys the staged op wins; staged deletions hide parent entries.
type mergedIterator struct {
	parent     dbm.Iterator
	ops        []*op
	next       int
	start, end []byte
	reverse    bool

	valid      bool
	key, value []byte
}

var _ dbm.Iterator = (*mergedIterator)(nil)

func newMergedIterator(parent dbm.Iterator, ops []*op, start, end []byte, reverse bool) *mergedIterator {
	it := &mergedIterator{
		parent:  parent,
		ops:     ops,
		start:   start,
		end:     end,
		reverse: reverse,
	}
	it.advance()
	return it
}

func (it *mergedIterator) advance() {
	for {
		parentValid := it.parent.Valid()
		opValid := it.next < len(it.ops)

		switch {
		case !parentValid && !opValid:
			it.valid = false
			return

		case parentValid && opValid:
			cmp := bytes.Compare(it.parent.Key(), it.ops[it.next].key)
			if it.reverse {
				cmp = -cmp
			}
			if cmp < 0 {
				it.takeParent()
				return
			}
			if cmp == 0 {
				it.parent.Next()
			}
			if it.takeOp() {
				return
			}

		case parentValid:
			it.takeParent()
			return

		default:
			if it.takeOp() {
				return
			}
		}
	}
}

func (it *mergedIterator) takeParent() {
	it.key = copyBytes(it.parent.Key())
	it.value = copyBytes(it.parent.Value())
	it.valid = true
	it.parent.Next()
}

// takeOp consumes the next staged op and reports whether it is visible.
func (it *mergedIterator) takeOp() bool {
	o := it.ops[it.next]
	it.next++
	if o.deleted {
		return false
	}
	it.key, it.value, it.valid = o.key, o.value, true
	return true
}

func (it *mergedIterator) Domain() (start, end []byte) { return it.start, it.end }

func (it *mergedIterator) Valid() bool { return it.valid }

func (it *mergedIterator) Next() {
	if !it.valid {
		panic("iterator is invalid")
	}
	it.advance()
}

func (it *mergedIterator) Key() []byte {
	if !it.valid {
		panic("iterator is invalid")
	}
	return it.key
}

func (it *mergedIterator) Value() []byte {
	if !it.valid {
		panic("iterator is invalid")
	}
	return it.value
}

func (it *mergedIterator) Error() error { return it.parent.Error() }

func (it *mergedIterator) Close() error { return it.parent.Close() }
