// parcctl is the terminal counterpart of the parc-manager web views:
// sign in, browse the equipment fleet, manage users and log maintenance,
// all through the same guard and repository layer the app is built on.
package main

import (
	"fmt"
	"os"

	"github.com/davehub/parc-manager/internal/authguard"
	"github.com/davehub/parc-manager/internal/client"
	"github.com/davehub/parc-manager/internal/config"
	"github.com/davehub/parc-manager/internal/repository"
	"github.com/davehub/parc-manager/internal/routeguard"
	"github.com/davehub/parc-manager/internal/session"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfgFile string

// app bundles everything a command needs: configuration, the auth guard and
// the selected repository.
type app struct {
	cfg   *config.Config
	store *session.Store
	api   *client.Client
	guard *authguard.Guard
	repo  repository.Inventory
}

var current *app

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parcctl",
		Short: "parcctl manages the IT equipment fleet from the terminal.",
		Long: `parcctl is the command-line client of parc-manager.
It signs in against the API, remembers the session between runs, and
exposes the equipment, user and maintenance views as subcommands.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cfgFile)
			if err != nil {
				return err
			}
			current = a
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file")

	cmd.AddCommand(loginCmd())
	cmd.AddCommand(registerCmd())
	cmd.AddCommand(logoutCmd())
	cmd.AddCommand(whoamiCmd())
	cmd.AddCommand(dashboardCmd())
	cmd.AddCommand(equipmentsCmd())
	cmd.AddCommand(usersCmd())
	cmd.AddCommand(maintenanceCmd())

	return cmd
}

func newApp(cfgPath string) (*app, error) {
	// local overrides from .env, if present
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	store := session.NewStore(cfg.Client.SessionFile)
	api := client.New(cfg.Client.BaseURL)
	guard := authguard.New(store, api)

	// restore a persisted session; stale or undecodable tokens are dropped
	if err := guard.Initialize(); err != nil {
		return nil, err
	}

	repo, err := repository.Select(cfg.Storage, api, cfg.App.PageSize, guard.User)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, store: store, api: api, guard: guard, repo: repo}, nil
}

// requireAccess runs the route guard the way every protected page does: the
// command renders only on Allow, otherwise the redirect target is reported.
func requireAccess(a *app, req routeguard.Requirement) error {
	switch routeguard.Decide(a.guard, req) {
	case routeguard.Allow:
		return nil
	case routeguard.RedirectLogin:
		return fmt.Errorf("not signed in, run: parcctl login")
	default:
		return fmt.Errorf("admin privileges required (back to your dashboard: parcctl dashboard)")
	}
}
