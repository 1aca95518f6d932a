package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tendermint/orderbook/libs/math"
	"github.com/tendermint/orderbook/libs/num"
	"github.com/tendermint/orderbook/types"
)

// bookMarker is the value of a book index entry; only the key carries data.
var bookMarker = []byte{1}

/*
Store is the order book state on top of a key-value store.

There are five kinds of information stored:
  - Tokens:    the registry mapping token references to compact ids
  - Counters:  the order id and token id sequences
  - Orders:    every order ever submitted, keyed by id
  - Balances:  internal balances keyed by (account, token id)
  - Book:      the bid and ask indices keyed by (token id, price, order id)

The per-account order index is keyed by (account, order id) and backs the
paginated order listing.

Store performs no locking. Mutations are expected to go through a *Tx that
the caller flushes or discards as a whole.
*/
type Store struct {
	kv KV
}

// New returns a Store over kv.
func New(kv KV) *Store {
	return &Store{kv: kv}
}

//---------------------------------- COUNTERS -----------------------------------------

func (s *Store) loadCounter(key []byte) (uint64, error) {
	bz, err := s.kv.Get(key)
	if err != nil {
		return 0, err
	}
	if len(bz) == 0 {
		return 0, nil
	}
	if len(bz) != 8 {
		return 0, fmt.Errorf("corrupted counter at %X: %d bytes", key, len(bz))
	}
	return binary.BigEndian.Uint64(bz), nil
}

func (s *Store) saveCounter(key []byte, n uint64) error {
	var bz [8]byte
	binary.BigEndian.PutUint64(bz[:], n)
	return s.kv.Set(key, bz[:])
}

// NextOrderID increments the order id sequence and returns the new value.
// The first id is 1.
func (s *Store) NextOrderID() (uint64, error) {
	n, err := s.loadCounter(orderIDSeqKey())
	if err != nil {
		return 0, err
	}
	next, err := math.SafeAddUint64(n, 1)
	if err != nil {
		return 0, err
	}
	return next, s.saveCounter(orderIDSeqKey(), next)
}

// LastOrderID returns the last allocated order id, or 0.
func (s *Store) LastOrderID() (uint64, error) {
	return s.loadCounter(orderIDSeqKey())
}

// tokenIDSeq returns the current token id sequence. An empty store starts at
// types.BaseTokenID so that the first quote token gets the next id.
func (s *Store) tokenIDSeq() (uint32, error) {
	n, err := s.loadCounter(tokenIDSeqKey())
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return types.BaseTokenID, nil
	}
	return uint32(n), nil
}

//---------------------------------- TOKENS -----------------------------------------

// RegisterToken assigns the next token id to token and returns it.
// Registering a token twice returns its existing id.
func (s *Store) RegisterToken(token types.Token) (uint32, error) {
	if err := token.ValidateBasic(); err != nil {
		return 0, err
	}
	if id, err := s.TokenID(token); err == nil {
		return id, nil
	} else if !errors.Is(err, types.ErrTokenNotAllowed) {
		return 0, err
	}

	seq, err := s.tokenIDSeq()
	if err != nil {
		return 0, err
	}
	id, err := math.SafeAddUint32(seq, 1)
	if err != nil {
		return 0, err
	}
	if err := s.saveCounter(tokenIDSeqKey(), uint64(id)); err != nil {
		return 0, err
	}
	return id, s.saveToken(id, token)
}

func (s *Store) saveToken(id uint32, token types.Token) error {
	var idBz [4]byte
	binary.BigEndian.PutUint32(idBz[:], id)
	if err := s.kv.Set(tokenIDKey(token), idBz[:]); err != nil {
		return err
	}
	return s.setJSON(tokenKey(id), token)
}

// TokenID resolves a registered token to its id. Unregistered tokens yield
// types.ErrTokenNotAllowed.
func (s *Store) TokenID(token types.Token) (uint32, error) {
	bz, err := s.kv.Get(tokenIDKey(token))
	if err != nil {
		return 0, err
	}
	if len(bz) == 0 {
		return 0, fmt.Errorf("%w: %s", types.ErrTokenNotAllowed, token)
	}
	if len(bz) != 4 {
		return 0, fmt.Errorf("corrupted token id for %s", token)
	}
	return binary.BigEndian.Uint32(bz), nil
}

// TokenByID returns the token registered under id, or types.ErrTokenNotFound.
func (s *Store) TokenByID(id uint32) (types.Token, error) {
	var token types.Token
	ok, err := s.getJSON(tokenKey(id), &token)
	if err != nil {
		return types.Token{}, err
	}
	if !ok {
		return types.Token{}, fmt.Errorf("%w: id %d", types.ErrTokenNotFound, id)
	}
	return token, nil
}

// SetBaseToken records token as the base token under types.BaseTokenID.
// The base token can only be set once.
func (s *Store) SetBaseToken(token types.Token) error {
	if err := token.ValidateBasic(); err != nil {
		return err
	}
	ok, err := s.kv.Has(baseTokenKey())
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("%w: base token already set", types.ErrBaseTokenProvisioning)
	}
	if _, err := s.TokenID(token); err == nil {
		return fmt.Errorf("%w: %s is already registered", types.ErrBaseTokenProvisioning, token)
	}
	if err := s.setJSON(baseTokenKey(), token); err != nil {
		return err
	}
	return s.saveToken(types.BaseTokenID, token)
}

// BaseToken returns the base token, or types.ErrBaseTokenNotProvisioned.
func (s *Store) BaseToken() (types.Token, error) {
	var token types.Token
	ok, err := s.getJSON(baseTokenKey(), &token)
	if err != nil {
		return types.Token{}, err
	}
	if !ok {
		return types.Token{}, types.ErrBaseTokenNotProvisioned
	}
	return token, nil
}

//---------------------------------- ORDERS -----------------------------------------

// LoadOrder returns the order with the given id, or types.ErrOrderNotFound.
func (s *Store) LoadOrder(id uint64) (*types.Order, error) {
	order := new(types.Order)
	ok, err := s.getJSON(orderKey(id), order)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %d", types.ErrOrderNotFound, id)
	}
	return order, nil
}

// SaveOrder persists the order under its id.
func (s *Store) SaveOrder(order *types.Order) error {
	if order.ID == 0 {
		return fmt.Errorf("%w: order has no id", types.ErrInvalidOrder)
	}
	return s.setJSON(orderKey(order.ID), order)
}

// AddAccountOrder records orderID in the order history of account.
func (s *Store) AddAccountOrder(account string, orderID uint64) error {
	return s.kv.Set(accountOrderKey(account, orderID), bookMarker)
}

// AccountOrderIDs returns up to limit order ids of account, most recent
// first, starting strictly below cursor. A zero cursor starts at the most
// recent order.
func (s *Store) AccountOrderIDs(account string, cursor uint64, limit int) ([]uint64, error) {
	start := accountOrderKey(account, 0)
	end := accountOrderKey(account, cursor)
	if cursor == 0 {
		end = mustAppend(prefixAccountOrder, account, uint64(1<<64-1))
	}
	iter, err := s.kv.ReverseIterator(start, end)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	ids := make([]uint64, 0, limit)
	for ; iter.Valid() && len(ids) < limit; iter.Next() {
		_, id, err := decodeAccountOrderKey(iter.Key())
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, iter.Error()
}

//---------------------------------- BALANCES -----------------------------------------

// Balance returns the balance of account in tokenID. Missing entries are zero.
func (s *Store) Balance(account string, tokenID uint32) (num.Uint, error) {
	bz, err := s.kv.Get(balanceKey(account, tokenID))
	if err != nil {
		return num.Uint{}, err
	}
	if len(bz) == 0 {
		return num.Zero(), nil
	}
	return num.UintFromBytes32(bz)
}

// CreditBalance adds amount to the balance of account in tokenID and returns
// the new balance. Crediting zero is a no-op.
func (s *Store) CreditBalance(account string, tokenID uint32, amount num.Uint) (num.Uint, error) {
	balance, err := s.Balance(account, tokenID)
	if err != nil {
		return num.Uint{}, err
	}
	if amount.IsZero() {
		return balance, nil
	}
	balance, err = balance.Add(amount)
	if err != nil {
		return num.Uint{}, fmt.Errorf("crediting %s to %s in token %d: %w", amount, account, tokenID, err)
	}
	bz := balance.Bytes32()
	return balance, s.kv.Set(balanceKey(account, tokenID), bz[:])
}

// TokenBalance is a balance entry of an account.
type TokenBalance struct {
	TokenID uint32
	Amount  num.Uint
}

// Balances returns every balance entry of account in token id order.
func (s *Store) Balances(account string) ([]TokenBalance, error) {
	iter, err := s.kv.Iterator(
		balanceKey(account, 0),
		mustAppend(prefixBalance, account, uint64(1<<32)),
	)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var balances []TokenBalance
	for ; iter.Valid(); iter.Next() {
		_, tokenID, err := decodeBalanceKey(iter.Key())
		if err != nil {
			return nil, err
		}
		amount, err := num.UintFromBytes32(iter.Value())
		if err != nil {
			return nil, err
		}
		balances = append(balances, TokenBalance{TokenID: tokenID, Amount: amount})
	}
	return balances, iter.Error()
}

//---------------------------------- BOOK -----------------------------------------

// BookEntry is a resting order's position in the book index.
type BookEntry struct {
	Side    types.Side
	TokenID uint32
	Price   num.Uint
	OrderID uint64
}

// InsertBookEntry adds the entry to its side of the book.
func (s *Store) InsertBookEntry(e BookEntry) error {
	if !e.Side.IsValid() {
		return fmt.Errorf("%w: book entry side %d", types.ErrInvalidOrder, e.Side)
	}
	return s.kv.Set(bookKey(e.Side, e.TokenID, e.Price, e.OrderID), bookMarker)
}

// RemoveBookEntry removes the entry from its side of the book. The entry
// must exist.
func (s *Store) RemoveBookEntry(e BookEntry) error {
	key := bookKey(e.Side, e.TokenID, e.Price, e.OrderID)
	ok, err := s.kv.Has(key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: order %d is not on the %s book at %s", types.ErrOrderNotFound, e.OrderID, e.Side, e.Price)
	}
	return s.kv.Delete(key)
}

// HasBookEntry reports whether the entry is in the book.
func (s *Store) HasBookEntry(e BookEntry) (bool, error) {
	return s.kv.Has(bookKey(e.Side, e.TokenID, e.Price, e.OrderID))
}

// ScanBook calls fn for each entry resting on side for tokenID in priority
// order: best price first, then ascending order id. When level is non-nil
// only entries at exactly that price are visited. Scanning stops when fn
// returns false or an error.
//
// fn must not write to the book; collect changes and apply them after the
// scan.
func (s *Store) ScanBook(
	side types.Side,
	tokenID uint32,
	level *num.Uint,
	fn func(BookEntry) (bool, error),
) error {
	var start, end []byte
	if level != nil {
		start, end = bookLevelRange(side, tokenID, *level)
	} else {
		start, end = bookTokenRange(side, tokenID)
	}
	iter, err := s.kv.Iterator(start, end)
	if err != nil {
		return err
	}
	defer iter.Close()

	for ; iter.Valid(); iter.Next() {
		entrySide, entryToken, price, orderID, err := decodeBookKey(iter.Key())
		if err != nil {
			return err
		}
		more, err := fn(BookEntry{Side: entrySide, TokenID: entryToken, Price: price, OrderID: orderID})
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}
	return iter.Error()
}

//-----------------------------------------------------------------------------

func (s *Store) setJSON(key []byte, v interface{}) error {
	bz, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("unable to marshal: %w", err)
	}
	return s.kv.Set(key, bz)
}

func (s *Store) getJSON(key []byte, v interface{}) (bool, error) {
	bz, err := s.kv.Get(key)
	if err != nil {
		return false, err
	}
	if len(bz) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(bz, v); err != nil {
		return false, fmt.Errorf("unable to unmarshal %X: %w", key, err)
	}
	return true, nil
}
