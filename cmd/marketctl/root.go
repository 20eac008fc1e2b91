package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/Aditya2073/agrisample/internal/client"
	"github.com/Aditya2073/agrisample/internal/identity"
	"github.com/Aditya2073/agrisample/internal/profile"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var errNotSignedIn = errors.New("not signed in, run `marketctl login` first")

type app struct {
	out     io.Writer
	cfg     *cliConfig
	storage *identity.SQLiteStorage
	client  *client.Client
	cache   *identity.Cache
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}
	var (
		configPath string
		verbose    bool
	)

	root := &cobra.Command{
		Use:           "marketctl",
		Short:         "Browse produce, place orders and manage your farm listings",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			return a.open(cmd.Context(), configPath)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", filepath.Join(defaultConfigDir(), "config.yaml"), "path to config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newCatalogCmd(a),
		newBuyCmd(a),
		newOrdersCmd(a),
		newProduceCmd(a),
		newDashboardCmd(a),
		newChatCmd(a),
	)
	return root
}

// open wires storage, the API client and the identity cache, then revalidates
// the persisted identity.
func (a *app) open(ctx context.Context, configPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	storage, err := identity.OpenSQLite(cfg.StoragePath)
	if err != nil {
		return err
	}
	a.storage = storage
	a.client = client.New(cfg.ServerURL, storage, client.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	a.cache = identity.New(ctx, a.client, storage)
	a.cache.Initialize(ctx)
	return nil
}

func (a *app) close() error {
	if a.storage == nil {
		return nil
	}
	return a.storage.Close()
}

func (a *app) requireUser() (*profile.Profile, error) {
	if !a.cache.IsAuthenticated() {
		return nil, errNotSignedIn
	}
	return a.cache.User(), nil
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
