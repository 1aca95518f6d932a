package types

import (
	"fmt"

	"github.com/tendermint/orderbook/libs/num"
)

// OrderRequest is one of MarketBuy, MarketSell, LimitBuy or LimitSell.
type OrderRequest interface {
	QuoteToken() Token
	ValidateBasic() error

	isOrderRequest()
}

var (
	_ OrderRequest = MarketBuy{}
	_ OrderRequest = MarketSell{}
	_ OrderRequest = LimitBuy{}
	_ OrderRequest = LimitSell{}
)

// MarketBuy buys as much base token as Balance affords at the best asks.
type MarketBuy struct {
	Quote       Token       `json:"quote"`
	Balance     num.Uint    `json:"balance"`
	TimeInForce TimeInForce `json:"tif"`
}

// MarketSell sells Qty base token into the best bids.
type MarketSell struct {
	Quote       Token       `json:"quote"`
	Qty         num.Uint    `json:"qty"`
	TimeInForce TimeInForce `json:"tif"`
}

// LimitBuy buys Qty base token at exactly Price.
type LimitBuy struct {
	Quote       Token       `json:"quote"`
	Qty         num.Uint    `json:"qty"`
	Price       num.Uint    `json:"price"`
	TimeInForce TimeInForce `json:"tif"`
}

// LimitSell sells Qty base token at exactly Price.
type LimitSell struct {
	Quote       Token       `json:"quote"`
	Qty         num.Uint    `json:"qty"`
	Price       num.Uint    `json:"price"`
	TimeInForce TimeInForce `json:"tif"`
}

func (MarketBuy) isOrderRequest()  {}
func (MarketSell) isOrderRequest() {}
func (LimitBuy) isOrderRequest()   {}
func (LimitSell) isOrderRequest()  {}

func (r MarketBuy) QuoteToken() Token  { return r.Quote }
func (r MarketSell) QuoteToken() Token { return r.Quote }
func (r LimitBuy) QuoteToken() Token   { return r.Quote }
func (r LimitSell) QuoteToken() Token  { return r.Quote }

func (r MarketBuy) ValidateBasic() error {
	return validateRequest(r.Quote, r.TimeInForce, namedAmount{"balance", r.Balance})
}

func (r MarketSell) ValidateBasic() error {
	return validateRequest(r.Quote, r.TimeInForce, namedAmount{"qty", r.Qty})
}

func (r LimitBuy) ValidateBasic() error {
	return validateRequest(r.Quote, r.TimeInForce, namedAmount{"qty", r.Qty}, namedAmount{"price", r.Price})
}

func (r LimitSell) ValidateBasic() error {
	return validateRequest(r.Quote, r.TimeInForce, namedAmount{"qty", r.Qty}, namedAmount{"price", r.Price})
}

type namedAmount struct {
	name   string
	amount num.Uint
}

func validateRequest(quote Token, tif TimeInForce, amounts ...namedAmount) error {
	if err := quote.ValidateBasic(); err != nil {
		return fmt.Errorf("%w: quote: %v", ErrInvalidRequest, err)
	}
	if !tif.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, tif)
	}
	for _, a := range amounts {
		if a.amount.IsZero() {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidRequest, a.name)
		}
	}
	return nil
}

// SubmitMsg is the wire form of an OrderRequest: exactly one field is set.
type SubmitMsg struct {
	MarketBuy  *MarketBuy  `json:"market_buy,omitempty"`
	MarketSell *MarketSell `json:"market_sell,omitempty"`
	LimitBuy   *LimitBuy   `json:"limit_buy,omitempty"`
	LimitSell  *LimitSell  `json:"limit_sell,omitempty"`
}

// NewSubmitMsg wraps req for the wire.
func NewSubmitMsg(req OrderRequest) *SubmitMsg {
	msg := &SubmitMsg{}
	switch r := req.(type) {
	case MarketBuy:
		msg.MarketBuy = &r
	case MarketSell:
		msg.MarketSell = &r
	case LimitBuy:
		msg.LimitBuy = &r
	case LimitSell:
		msg.LimitSell = &r
	}
	return msg
}

// Request unwraps the message into its OrderRequest variant.
func (m *SubmitMsg) Request() (OrderRequest, error) {
	var (
		req OrderRequest
		n   int
	)
	if m.MarketBuy != nil {
		req, n = *m.MarketBuy, n+1
	}
	if m.MarketSell != nil {
		req, n = *m.MarketSell, n+1
	}
	if m.LimitBuy != nil {
		req, n = *m.LimitBuy, n+1
	}
	if m.LimitSell != nil {
		req, n = *m.LimitSell, n+1
	}
	switch n {
	case 0:
		return nil, fmt.Errorf("%w: empty submit message", ErrInvalidRequest)
	case 1:
		return req, nil
	default:
		return nil, fmt.Errorf("%w: submit message sets %d order requests", ErrInvalidRequest, n)
	}
}

// ValidateBasic unwraps and validates the request.
func (m *SubmitMsg) ValidateBasic() error {
	req, err := m.Request()
	if err != nil {
		return err
	}
	return req.ValidateBasic()
}
