package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tendermint/orderbook/internal/app"
	"github.com/tendermint/orderbook/libs/num"
	"github.com/tendermint/orderbook/types"
)

const (
	flagSender  = "sender"
	flagQty     = "qty"
	flagPrice   = "price"
	flagBalance = "balance"
	flagTIF     = "tif"
)

// submitArgs are the raw flag values of the submit command.
type submitArgs struct {
	quote   string
	qty     string
	price   string
	balance string
	tif     string
}

// MakeSubmitCommand returns the command that submits one order request to
// a running node and prints the result.
func MakeSubmitCommand() *cobra.Command {
	var sa submitArgs
	cmd := &cobra.Command{
		Use:   "submit <market-buy|market-sell|limit-buy|limit-sell>",
		Short: "Submit an order request in its own block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildRequest(args[0], sa)
			if err != nil {
				return err
			}
			sender, _ := cmd.Flags().GetString(flagSender)

			c, err := nodeClient(cmd)
			if err != nil {
				return err
			}
			res, err := c.Submit(cmd.Context(), types.NewSubmitTx(sender, req))
			if err != nil {
				return err
			}
			if err := printJSON(cmd, res); err != nil {
				return err
			}
			return rejection(res.CheckTx.Code, res.CheckTx.Log, res.DeliverTx.Code, res.DeliverTx.Log)
		},
	}

	addNodeFlag(cmd)
	cmd.Flags().String(flagSender, "", "address of the order owner")
	cmd.Flags().StringVar(&sa.quote, flagQuote, "", "quote token, as native:<denom> or contract:<address>")
	cmd.Flags().StringVar(&sa.qty, flagQty, "", "base token quantity (sell and limit orders)")
	cmd.Flags().StringVar(&sa.price, flagPrice, "", "price in quote token per base token (limit orders)")
	cmd.Flags().StringVar(&sa.balance, flagBalance, "", "quote token budget (market buys)")
	cmd.Flags().StringVar(&sa.tif, flagTIF, "", "time in force: fok | ioc | gtc (default gtc for limit, ioc for market)")
	_ = cmd.MarkFlagRequired(flagSender)
	_ = cmd.MarkFlagRequired(flagQuote)
	return cmd
}

func buildRequest(kind string, sa submitArgs) (types.OrderRequest, error) {
	quote, err := types.ParseToken(sa.quote)
	if err != nil {
		return nil, err
	}

	market := strings.HasPrefix(kind, "market-")
	tifName := sa.tif
	if tifName == "" {
		tifName = "gtc"
		if market {
			tifName = "ioc"
		}
	}
	tif, err := types.ParseTimeInForce(tifName)
	if err != nil {
		return nil, err
	}

	var req types.OrderRequest
	switch kind {
	case "market-buy":
		balance, err := parseAmount(flagBalance, sa.balance)
		if err != nil {
			return nil, err
		}
		req = types.MarketBuy{Quote: quote, Balance: balance, TimeInForce: tif}
	case "market-sell":
		qty, err := parseAmount(flagQty, sa.qty)
		if err != nil {
			return nil, err
		}
		req = types.MarketSell{Quote: quote, Qty: qty, TimeInForce: tif}
	case "limit-buy", "limit-sell":
		qty, err := parseAmount(flagQty, sa.qty)
		if err != nil {
			return nil, err
		}
		price, err := parseAmount(flagPrice, sa.price)
		if err != nil {
			return nil, err
		}
		if kind == "limit-buy" {
			req = types.LimitBuy{Quote: quote, Qty: qty, Price: price, TimeInForce: tif}
		} else {
			req = types.LimitSell{Quote: quote, Qty: qty, Price: price, TimeInForce: tif}
		}
	default:
		return nil, fmt.Errorf("unknown order kind %q", kind)
	}

	if err := req.ValidateBasic(); err != nil {
		return nil, err
	}
	return req, nil
}

func parseAmount(flag, s string) (num.Uint, error) {
	if s == "" {
		return num.Uint{}, fmt.Errorf("--%s is required", flag)
	}
	x, err := num.UintFromString(s)
	if err != nil {
		return num.Uint{}, fmt.Errorf("invalid --%s: %w", flag, err)
	}
	return x, nil
}

// rejection returns an error describing the first failing check, if any.
func rejection(checkCode uint32, checkLog string, deliverCode uint32, deliverLog string) error {
	if checkCode != app.CodeTypeOK {
		return fmt.Errorf("tx rejected by check: %s (code %d): %s", app.HumanCode(checkCode), checkCode, checkLog)
	}
	if deliverCode != app.CodeTypeOK {
		return fmt.Errorf("tx rejected by deliver: %s (code %d): %s", app.HumanCode(deliverCode), deliverCode, deliverLog)
	}
	return nil
}
