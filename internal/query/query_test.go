package query_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dbm "github.com/tendermint/tm-db"

	"github.com/tendermint/orderbook/internal/matching"
	"github.com/tendermint/orderbook/internal/query"
	"github.com/tendermint/orderbook/internal/store"
	"github.com/tendermint/orderbook/libs/log"
	"github.com/tendermint/orderbook/libs/num"
	"github.com/tendermint/orderbook/types"
)

var (
	atom = types.NativeToken("uatom")
	usdc = types.ContractToken("wasm1usdc")
)

func setup(t *testing.T) (dbm.DB, *matching.Engine) {
	t.Helper()
	db := dbm.NewMemDB()
	st := store.New(db)
	require.NoError(t, st.SetBaseToken(types.ContractToken("wasm1base")))
	for _, tok := range []types.Token{atom, usdc} {
		_, err := st.RegisterToken(tok)
		require.NoError(t, err)
	}
	return db, matching.NewEngine(log.TestingLogger(), matching.NopMetrics())
}

func TestOrdersPagination(t *testing.T) {
	db, engine := setup(t)
	now := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

	var aliceIDs []uint64
	for i := 0; i < 60; i++ {
		owner := "alice"
		if i%4 == 0 {
			owner = "bob"
		}
		order, err := engine.Submit(db, owner, now, types.LimitBuy{
			Quote: atom, Qty: num.NewUint(1), Price: num.NewUint(uint64(i + 1)), TimeInForce: types.GTC,
		})
		require.NoError(t, err)
		if owner == "alice" {
			aliceIDs = append(aliceIDs, order.ID)
		}
	}
	require.Len(t, aliceIDs, 45)
	st := store.New(db)

	page, err := query.Orders(st, "alice", nil, 0)
	require.NoError(t, err)
	require.Len(t, page.Orders, 45, "default limit covers everything")
	assert.Equal(t, aliceIDs[44], page.Orders[0].ID, "most recent first")

	page, err = query.Orders(st, "alice", nil, 10)
	require.NoError(t, err)
	require.Len(t, page.Orders, 10)
	require.NotNil(t, page.Cursor)
	assert.Equal(t, aliceIDs[35], *page.Cursor)

	next, err := query.Orders(st, "alice", page.Cursor, 10)
	require.NoError(t, err)
	require.Len(t, next.Orders, 10)
	assert.Equal(t, aliceIDs[34], next.Orders[0].ID, "cursor is exclusive")

	page, err = query.Orders(st, "alice", nil, 500)
	require.NoError(t, err)
	assert.Len(t, page.Orders, query.MaxPageLimit)

	page, err = query.Orders(st, "alice", nil, -3)
	require.NoError(t, err)
	assert.Len(t, page.Orders, 1)

	first := aliceIDs[0]
	page, err = query.Orders(st, "alice", &first, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Orders)
	assert.Nil(t, page.Cursor)

	page, err = query.Orders(st, "nobody", nil, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Orders)

	_, err = query.Orders(st, "", nil, 10)
	assert.ErrorIs(t, err, types.ErrInvalidRequest)
}

func TestAccountView(t *testing.T) {
	db, engine := setup(t)
	now := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	submit := func(owner string, req types.OrderRequest) {
		_, err := engine.Submit(db, owner, now, req)
		require.NoError(t, err)
	}

	submit("bob", types.LimitSell{Quote: usdc, Qty: num.NewUint(3), Price: num.NewUint(7), TimeInForce: types.GTC})
	submit("alice", types.LimitBuy{Quote: usdc, Qty: num.NewUint(3), Price: num.NewUint(7), TimeInForce: types.GTC})
	submit("carol", types.LimitBuy{Quote: atom, Qty: num.NewUint(2), Price: num.NewUint(5), TimeInForce: types.GTC})
	submit("bob", types.MarketSell{Quote: atom, Qty: num.NewUint(2), TimeInForce: types.IOC})

	st := store.New(db)
	view, err := query.Account(st, "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", view.Address)
	assert.True(t, view.BaseBalance.IsZero())
	assert.Equal(t, []types.TokenAmount{
		{Token: atom, Amount: num.NewUint(10)},
		{Token: usdc, Amount: num.NewUint(21)},
	}, view.QuoteBalances)

	view, err = query.Account(st, "alice")
	require.NoError(t, err)
	assert.Equal(t, num.NewUint(3), view.BaseBalance)
	assert.Empty(t, view.QuoteBalances)

	view, err = query.Account(st, "nobody")
	require.NoError(t, err)
	assert.True(t, view.BaseBalance.IsZero())
	assert.Empty(t, view.QuoteBalances)
}
