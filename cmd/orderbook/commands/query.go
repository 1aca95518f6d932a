package commands

import (
	"github.com/spf13/cobra"
)

// MakeOrdersCommand returns the command that lists the orders of an
// account, newest first.
func MakeOrdersCommand() *cobra.Command {
	var (
		cursor uint64
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "orders <account>",
		Short: "List the orders of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := nodeClient(cmd)
			if err != nil {
				return err
			}
			var after *uint64
			if cmd.Flags().Changed("cursor") {
				after = &cursor
			}
			res, err := c.Orders(cmd.Context(), args[0], after, limit)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	addNodeFlag(cmd)
	cmd.Flags().Uint64Var(&cursor, "cursor", 0, "list orders with ids below this one")
	cmd.Flags().IntVar(&limit, "limit", 0, "page size (default 50, at most 50)")
	return cmd
}

// MakeOrderCommand returns the command that shows one order by id.
func MakeOrderCommand() *cobra.Command {
	var id uint64
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Show an order by id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := nodeClient(cmd)
			if err != nil {
				return err
			}
			res, err := c.Order(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	addNodeFlag(cmd)
	cmd.Flags().Uint64Var(&id, "id", 0, "order id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

// MakeAccountCommand returns the command that shows the balances of an
// address.
func MakeAccountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account <address>",
		Short: "Show the balances of an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := nodeClient(cmd)
			if err != nil {
				return err
			}
			res, err := c.Account(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	addNodeFlag(cmd)
	return cmd
}

// MakeStatusCommand returns the command that shows the node status.
func MakeStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the node status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := nodeClient(cmd)
			if err != nil {
				return err
			}
			res, err := c.Status(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	addNodeFlag(cmd)
	return cmd
}
