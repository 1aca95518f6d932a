package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dbm "github.com/tendermint/tm-db"

	"github.com/tendermint/orderbook/libs/num"
	"github.com/tendermint/orderbook/types"
)

func newTestStore() *Store {
	return New(NewTx(dbm.NewMemDB()))
}

func TestNextOrderID(t *testing.T) {
	s := newTestStore()
	last, err := s.LastOrderID()
	require.NoError(t, err)
	assert.Zero(t, last)

	for want := uint64(1); want <= 3; want++ {
		id, err := s.NextOrderID()
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}
	last, err = s.LastOrderID()
	require.NoError(t, err)
	assert.EqualValues(t, 3, last)
}

func TestTokenRegistry(t *testing.T) {
	s := newTestStore()
	atom := types.NativeToken("uatom")
	usdc := types.ContractToken("wasm1usdc")

	_, err := s.TokenID(atom)
	assert.ErrorIs(t, err, types.ErrTokenNotAllowed)

	id, err := s.RegisterToken(atom)
	require.NoError(t, err)
	assert.Equal(t, types.BaseTokenID+1, id)

	id, err = s.RegisterToken(usdc)
	require.NoError(t, err)
	assert.Equal(t, types.BaseTokenID+2, id)

	again, err := s.RegisterToken(atom)
	require.NoError(t, err)
	assert.Equal(t, types.BaseTokenID+1, again, "re-registering returns the existing id")

	token, err := s.TokenByID(types.BaseTokenID + 2)
	require.NoError(t, err)
	assert.Equal(t, usdc, token)

	_, err = s.TokenByID(99)
	assert.ErrorIs(t, err, types.ErrTokenNotFound)

	_, err = s.RegisterToken(types.Token{})
	assert.Error(t, err)
}

func TestBaseToken(t *testing.T) {
	s := newTestStore()
	_, err := s.BaseToken()
	assert.ErrorIs(t, err, types.ErrBaseTokenNotProvisioned)

	base := types.ContractToken("wasm1base")
	require.NoError(t, s.SetBaseToken(base))

	got, err := s.BaseToken()
	require.NoError(t, err)
	assert.Equal(t, base, got)

	id, err := s.TokenID(base)
	require.NoError(t, err)
	assert.Equal(t, types.BaseTokenID, id)

	assert.ErrorIs(t, s.SetBaseToken(types.ContractToken("wasm1other")), types.ErrBaseTokenProvisioning)

	// quote tokens are numbered after the base token regardless of order
	quoteID, err := s.RegisterToken(types.NativeToken("uatom"))
	require.NoError(t, err)
	assert.Equal(t, types.BaseTokenID+1, quoteID)
}

func TestOrders(t *testing.T) {
	s := newTestStore()
	_, err := s.LoadOrder(1)
	assert.ErrorIs(t, err, types.ErrOrderNotFound)

	order := &types.Order{
		ID:           1,
		Owner:        "alice",
		Side:         types.SideBuy,
		Kind:         types.KindLimit,
		TimeInForce:  types.GTC,
		Status:       types.StatusCreated,
		QtyRequested: num.NewUint(10),
		LimitPrice:   num.NewUint(100),
	}
	require.NoError(t, s.SaveOrder(order))

	loaded, err := s.LoadOrder(1)
	require.NoError(t, err)
	assert.Equal(t, order, loaded)

	assert.Error(t, s.SaveOrder(&types.Order{}))
}

func TestAccountOrderIDs(t *testing.T) {
	s := newTestStore()
	for _, id := range []uint64{1, 3, 4, 7, 9} {
		require.NoError(t, s.AddAccountOrder("alice", id))
	}
	require.NoError(t, s.AddAccountOrder("bob", 2))
	require.NoError(t, s.AddAccountOrder("alicia", 8))

	ids, err := s.AccountOrderIDs("alice", 0, 3)
	require.NoError(t, err)
	assert.Equal(t, []uint64{9, 7, 4}, ids)

	ids, err = s.AccountOrderIDs("alice", 4, 3)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 1}, ids)

	ids, err = s.AccountOrderIDs("carol", 0, 3)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestBalances(t *testing.T) {
	s := newTestStore()

	bal, err := s.Balance("alice", 2)
	require.NoError(t, err)
	assert.True(t, bal.IsZero())

	_, err = s.CreditBalance("alice", 2, num.NewUint(400))
	require.NoError(t, err)
	bal, err = s.CreditBalance("alice", 2, num.NewUint(100))
	require.NoError(t, err)
	assert.Equal(t, num.NewUint(500), bal)

	_, err = s.CreditBalance("alice", 1, num.NewUint(4))
	require.NoError(t, err)
	_, err = s.CreditBalance("alice", 3, num.Zero())
	require.NoError(t, err)
	_, err = s.CreditBalance("bob", 2, num.NewUint(1))
	require.NoError(t, err)

	balances, err := s.Balances("alice")
	require.NoError(t, err)
	assert.Equal(t, []TokenBalance{
		{TokenID: 1, Amount: num.NewUint(4)},
		{TokenID: 2, Amount: num.NewUint(500)},
	}, balances, "zero credits create no entry")

	_, err = s.CreditBalance("alice", 2, num.MaxUint())
	assert.ErrorIs(t, err, types.ErrOverflow)
}

func collectBook(t *testing.T, s *Store, side types.Side, tokenID uint32, level *num.Uint) []BookEntry {
	t.Helper()
	var entries []BookEntry
	require.NoError(t, s.ScanBook(side, tokenID, level, func(e BookEntry) (bool, error) {
		entries = append(entries, e)
		return true, nil
	}))
	return entries
}

func orderIDs(entries []BookEntry) []uint64 {
	ids := make([]uint64, len(entries))
	for i, e := range entries {
		ids[i] = e.OrderID
	}
	return ids
}

func TestBookPriority(t *testing.T) {
	s := newTestStore()
	insert := func(side types.Side, tokenID uint32, price uint64, id uint64) {
		require.NoError(t, s.InsertBookEntry(BookEntry{Side: side, TokenID: tokenID, Price: num.NewUint(price), OrderID: id}))
	}
	insert(types.SideSell, 2, 101, 1)
	insert(types.SideSell, 2, 100, 2)
	insert(types.SideSell, 2, 100, 3)
	insert(types.SideSell, 2, 99, 4)
	insert(types.SideSell, 3, 1, 5)
	insert(types.SideBuy, 2, 90, 6)
	insert(types.SideBuy, 2, 95, 7)
	insert(types.SideBuy, 2, 90, 8)
	insert(types.SideBuy, 2, 256, 9)

	asks := collectBook(t, s, types.SideSell, 2, nil)
	assert.Equal(t, []uint64{4, 2, 3, 1}, orderIDs(asks), "asks: lowest price first, then oldest")
	assert.Equal(t, num.NewUint(99), asks[0].Price)
	assert.Equal(t, types.SideSell, asks[0].Side)

	bids := collectBook(t, s, types.SideBuy, 2, nil)
	assert.Equal(t, []uint64{9, 7, 6, 8}, orderIDs(bids), "bids: highest price first, then oldest")
	assert.Equal(t, num.NewUint(256), bids[0].Price)

	level := num.NewUint(100)
	assert.Equal(t, []uint64{2, 3}, orderIDs(collectBook(t, s, types.SideSell, 2, &level)))
	level = num.NewUint(90)
	assert.Equal(t, []uint64{6, 8}, orderIDs(collectBook(t, s, types.SideBuy, 2, &level)))
	level = num.NewUint(42)
	assert.Empty(t, collectBook(t, s, types.SideBuy, 2, &level))
}

func TestBookRemoveAndStop(t *testing.T) {
	s := newTestStore()
	e1 := BookEntry{Side: types.SideSell, TokenID: 2, Price: num.NewUint(5), OrderID: 1}
	e2 := BookEntry{Side: types.SideSell, TokenID: 2, Price: num.NewUint(5), OrderID: 2}
	require.NoError(t, s.InsertBookEntry(e1))
	require.NoError(t, s.InsertBookEntry(e2))

	var visited int
	require.NoError(t, s.ScanBook(types.SideSell, 2, nil, func(BookEntry) (bool, error) {
		visited++
		return false, nil
	}))
	assert.Equal(t, 1, visited)

	require.NoError(t, s.RemoveBookEntry(e1))
	ok, err := s.HasBookEntry(e1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, s.RemoveBookEntry(e1), types.ErrOrderNotFound)

	assert.Equal(t, []uint64{2}, orderIDs(collectBook(t, s, types.SideSell, 2, nil)))
	assert.Error(t, s.InsertBookEntry(BookEntry{TokenID: 2, Price: num.NewUint(1), OrderID: 3}))
}

func TestKeyRoundTrip(t *testing.T) {
	side, tokenID, price, orderID, err := decodeBookKey(bookKey(types.SideBuy, 7, num.NewUint(12345), 99))
	require.NoError(t, err)
	assert.Equal(t, types.SideBuy, side)
	assert.EqualValues(t, 7, tokenID)
	assert.Equal(t, num.NewUint(12345), price)
	assert.EqualValues(t, 99, orderID)

	_, _, _, _, err = decodeBookKey(orderKey(1))
	assert.Error(t, err)

	account, id, err := decodeAccountOrderKey(accountOrderKey("alice", 5))
	require.NoError(t, err)
	assert.Equal(t, "alice", account)
	assert.EqualValues(t, 5, id)
}
