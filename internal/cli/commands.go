package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"RocketShoes/internal/cart"
	"RocketShoes/internal/slot"
)

func newProductsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			s, err := openSession(ctx, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			s.cart.LoadCatalog(ctx)
			return writeProducts(cmd.OutOrStdout(), opts.Format, s.cart.Products())
		},
	}
}

func newShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(context.Context, *session) error { return nil })
		},
	}
}

func newAddCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add one unit of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				s.cart.AddProduct(ctx, id)
				return nil
			})
		},
	}
}

func newRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				s.cart.RemoveProduct(ctx, id)
				return nil
			})
		},
	}
}

func newUpdateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "update <product-id> <amount>",
		Short: "Request a new amount for a product in the cart",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			amount, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				s.cart.UpdateProductAmount(ctx, cart.UpdateProductAmount{ProductID: id, Amount: amount})
				return nil
			})
		},
	}
}

func newClearCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the persisted cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			s, err := openSession(ctx, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.slot.Clear(ctx, slot.CartKey); err != nil {
				return fmt.Errorf("clear cart: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cart cleared")
			return nil
		},
	}
}

func parseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid product id %q: %w", raw, err)
	}
	return id, nil
}
