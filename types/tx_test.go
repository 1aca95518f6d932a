package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendermint/orderbook/libs/num"
)

func TestTxEncodeDecode(t *testing.T) {
	tx := NewSubmitTx("alice", LimitSell{
		Quote:       NativeToken("uatom"),
		Qty:         num.NewUint(10),
		Price:       num.NewUint(3),
		TimeInForce: GTC,
	})
	bz, err := tx.Encode()
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"sender":"alice","msg":{"submit_order":{"limit_sell":{"quote":{"native":"uatom"},"qty":"10","price":"3","tif":"gtc"}}}}`,
		string(bz))

	decoded, err := DecodeTx(bz)
	require.NoError(t, err)
	assert.Equal(t, tx, decoded)
	require.NoError(t, decoded.ValidateBasic())

	req, err := decoded.Msg.Submit.Request()
	require.NoError(t, err)
	assert.IsType(t, LimitSell{}, req)
}

func TestDecodeTxRejects(t *testing.T) {
	testCases := map[string]string{
		"junk":          `{{`,
		"unknown field": `{"sender":"a","msg":{},"extra":1}`,
		"bad tif":       `{"sender":"a","msg":{"submit_order":{"market_sell":{"quote":{"native":"x"},"qty":"1","tif":"day"}}}}`,
		"bad amount":    `{"sender":"a","msg":{"submit_order":{"market_sell":{"quote":{"native":"x"},"qty":"-1","tif":"ioc"}}}}`,
	}
	for name, raw := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeTx([]byte(raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRequest))
		})
	}
}

func TestTxValidateBasic(t *testing.T) {
	valid := MarketSell{Quote: NativeToken("uatom"), Qty: num.NewUint(1), TimeInForce: IOC}

	testCases := []struct {
		name string
		tx   Tx
		ok   bool
	}{
		{"valid", NewSubmitTx("alice", valid), true},
		{"empty sender", NewSubmitTx("", valid), false},
		{"no message", Tx{Sender: "alice"}, false},
		{"empty submit", Tx{Sender: "alice", Msg: Msg{Submit: &SubmitMsg{}}}, false},
		{"two requests", Tx{Sender: "alice", Msg: Msg{Submit: &SubmitMsg{
			MarketSell: &valid,
			LimitSell:  &LimitSell{Quote: valid.Quote, Qty: num.NewUint(1), Price: num.NewUint(1), TimeInForce: GTC},
		}}}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.tx.ValidateBasic()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidRequest)
			}
		})
	}
}

func TestHashTxDeterministic(t *testing.T) {
	assert.Equal(t, HashTx([]byte("abc")), HashTx([]byte("abc")))
	assert.NotEqual(t, HashTx([]byte("abc")), HashTx([]byte("abd")))
	assert.Len(t, HashTx(nil).String(), 64)
}
