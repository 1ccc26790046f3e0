// Package cli implements the cart command: the same cart operations the
// storefront exposes, driven from a terminal against a persistence slot.
package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"RocketShoes/internal/cart"
	"RocketShoes/internal/config"
	"RocketShoes/internal/notify"
	"RocketShoes/internal/slot"
	"RocketShoes/pkg/kit"
)

// RootOptions holds the persistent flags shared by every subcommand.
type RootOptions struct {
	ConfigPath string
	CatalogURL string
	SlotDriver string
	SlotDSN    string
	Format     string
	Verbose    bool
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "cart",
		Short:         "RocketShoes shopping cart",
		Long:          "Inspect and change the RocketShoes cart stored in the persistence slot.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")
	f.StringVar(&opts.CatalogURL, "catalog-url", "", "catalog service base URL")
	f.StringVar(&opts.SlotDriver, "slot-driver", "", "persistence slot driver (memory|file|sqlite|redis|postgres)")
	f.StringVar(&opts.SlotDSN, "slot-dsn", "", "persistence slot location")
	f.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "log to stderr")

	cmd.AddCommand(newProductsCommand(opts))
	cmd.AddCommand(newShowCommand(opts))
	cmd.AddCommand(newAddCommand(opts))
	cmd.AddCommand(newRemoveCommand(opts))
	cmd.AddCommand(newUpdateCommand(opts))
	cmd.AddCommand(newClearCommand(opts))

	return cmd
}

// session is one cart opened against the configured slot and catalog.
type session struct {
	cart   *cart.Store
	toasts *notify.Toaster
	slot   slot.Slot
	log    *zap.Logger
}

func (s *session) Close() error {
	_ = s.log.Sync()
	return s.slot.Close()
}

func openSession(ctx context.Context, opts *RootOptions) (*session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.CatalogURL != "" {
		cfg.CatalogURL = opts.CatalogURL
	}
	if opts.SlotDriver != "" {
		cfg.Slot.Driver = opts.SlotDriver
	}
	if opts.SlotDSN != "" {
		cfg.Slot.DSN = opts.SlotDSN
	}

	log := zap.NewNop()
	if opts.Verbose {
		log = kit.NewLogger("cart-cli", "debug")
	}

	st, err := slot.Open(ctx, cfg.Slot.Driver, cfg.Slot.DSN)
	if err != nil {
		return nil, fmt.Errorf("open slot: %w", err)
	}

	toasts := notify.NewToaster(notify.Options{
		TTL:      cfg.Notify.TTL,
		Capacity: cfg.Notify.Capacity,
		Log:      log,
	})

	return &session{
		cart: cart.New(ctx, cart.Deps{
			Catalog:  cart.NewCatalogClient(cfg.CatalogURL),
			Slot:     st,
			Notifier: toasts,
			Log:      log,
			Timeout:  cfg.Timeout,
		}),
		toasts: toasts,
		slot:   st,
		log:    log,
	}, nil
}

// withSession opens a session, runs fn, and prints the resulting cart.
func withSession(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := fn(ctx, s); err != nil {
		return err
	}
	return writeCart(cmd.OutOrStdout(), opts.Format, s.cart.Cart(), s.toasts.Active())
}
