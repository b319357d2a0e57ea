package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func NewCartCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and edit the cart",
	}

	cmd.AddCommand(newCartShowCommand(opts))
	cmd.AddCommand(newCartAddCommand(opts))
	cmd.AddCommand(newCartSetCommand(opts))
	cmd.AddCommand(newCartRemoveCommand(opts))
	cmd.AddCommand(newCartClearCommand(opts))

	return cmd
}

func newCartShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show cart lines and totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, resumeRequired, func(e env) error {
				view, err := e.app.Cart.Load(e.ctx)
				if err != nil {
					return err
				}
				return e.out.cart(view)
			})
		},
	}
}

func newCartAddCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <productId> [quantity]",
		Short: "Add a product to the cart",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity := 1
			if len(args) == 2 {
				var err error
				if quantity, err = parseQuantity(args[1]); err != nil {
					return err
				}
			}

			return opts.withApp(cmd, resumeRequired, func(e env) error {
				if err := e.app.Cart.Add(e.ctx, args[0], quantity); err != nil {
					return err
				}
				return e.out.message(fmt.Sprintf("added %d x %s", quantity, args[0]))
			})
		},
	}
}

func newCartSetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <productId> <quantity>",
		Short: "Set the quantity of a cart line; 0 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, err := parseQuantity(args[1])
			if err != nil {
				return err
			}

			return opts.withApp(cmd, resumeRequired, func(e env) error {
				if err := e.app.Cart.SetQuantity(e.ctx, args[0], quantity); err != nil {
					return err
				}
				if quantity < 1 {
					return e.out.message(fmt.Sprintf("removed %s", args[0]))
				}
				return e.out.message(fmt.Sprintf("%s quantity set to %d", args[0], quantity))
			})
		},
	}
}

func newCartRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <productId>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, resumeRequired, func(e env) error {
				if err := e.app.Cart.Remove(e.ctx, args[0]); err != nil {
					return err
				}
				return e.out.message(fmt.Sprintf("removed %s", args[0]))
			})
		},
	}
}

func newCartClearCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every line from the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, resumeRequired, func(e env) error {
				if err := e.app.Cart.Clear(e.ctx); err != nil {
					return err
				}
				return e.out.message("cart cleared")
			})
		},
	}
}

func NewBadgeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "badge",
		Short: "Print the number of items in the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, resumeRequired, func(e env) error {
				count := e.app.Badge.Count(e.ctx)
				if e.out.format == "json" {
					return e.out.json(map[string]int{"count": count})
				}
				writeLine(e.out.w, "%d", count)
				return nil
			})
		},
	}
}

func parseQuantity(arg string) (int, error) {
	quantity, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("quantity %q is not a number", arg)
	}
	return quantity, nil
}
