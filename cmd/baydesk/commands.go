package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jask/baydesk/internal/api"
	"github.com/jask/baydesk/internal/catalog"
	"github.com/jask/baydesk/internal/config"
	"github.com/jask/baydesk/internal/database"
	"github.com/jask/baydesk/internal/database/repository"
	blog "github.com/jask/baydesk/internal/log"
	"github.com/jask/baydesk/internal/secrets"
	"github.com/jask/baydesk/internal/service"
	"github.com/jask/baydesk/internal/tui"
)

// env is what every subcommand needs after startup.
type env struct {
	cfg    config.Config
	log    *slog.Logger
	closer io.Closer
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:           "baydesk",
		Short:         "Back-office terminal for SKUs and parts models",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return e.setup(config.Load)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.runTUI(cmd.Context())
		},
	}
	root.AddCommand(newTokenCmd(e), newMigrateCmd(e), newResetCmd(e))
	return root
}

func (e *env) setup(load func() (config.Config, error)) error {
	cfg, err := load()
	if err != nil {
		return err
	}
	logger, closer, err := blog.New(blog.FromEnv(blog.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	}))
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	e.cfg, e.log, e.closer = cfg, logger, closer
	return nil
}

func (e *env) close() {
	if e.closer != nil {
		_ = e.closer.Close()
		e.closer = nil
	}
}

func (e *env) runTUI(ctx context.Context) error {
	cat, cleanup, err := e.openCatalog(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	e.log.Info("starting", slog.String("version", version), slog.String("source", e.cfg.Catalog.Source))
	p := tea.NewProgram(tui.New(ctx, e.cfg, cat, e.log),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// openCatalog returns the REST client or, for catalog.source = local, the
// sqlite-backed service.
func (e *env) openCatalog(ctx context.Context) (catalog.Catalog, func(), error) {
	if e.cfg.Catalog.Source == config.SourceLocal {
		db, err := openLocalDB(ctx, e.cfg.Database.Path)
		if err != nil {
			return nil, nil, err
		}
		svc := &service.CatalogService{Models: repository.NewModelRepo(db), SKUs: repository.NewSKURepo(db)}
		return svc, func() { _ = db.Close() }, nil
	}

	store := secrets.Store{}
	client, err := api.New(api.Config{
		BaseURL:   e.cfg.API.BaseURL,
		Timeout:   e.cfg.API.Timeout,
		UserAgent: "baydesk/" + version,
	}, store.Provider(e.cfg.API.TokenEnv, e.cfg.API.Token, e.cfg.API.KeyringAccount), e.log)
	if err != nil {
		return nil, nil, err
	}
	return client, func() {}, nil
}

func openLocalDB(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	if err := database.RunMigrations(path); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := database.SeedDefaults(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed defaults: %w", err)
	}
	return db, nil
}

func newTokenCmd(e *env) *cobra.Command {
	var account string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the API token in the OS keyring",
		// Only api.keyring_account is needed, so a broken api section must not block this.
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return e.setup(config.LoadRaw)
		},
	}
	accountOf := func() string {
		if account != "" {
			return account
		}
		return e.cfg.API.KeyringAccount
	}
	setCmd := &cobra.Command{
		Use:   "set <token>",
		Short: "Store the API token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := (secrets.Store{}).StoreToken(accountOf(), strings.TrimSpace(args[0])); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "token stored for %q\n", accountOf())
			return nil
		},
	}
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := (secrets.Store{}).DeleteToken(accountOf()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "token cleared for %q\n", accountOf())
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&account, "account", "", "keyring account (default api.keyring_account)")
	cmd.AddCommand(setCmd, clearCmd)
	return cmd
}

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply local catalog migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := e.cfg.Database.Path
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("mkdir db dir: %w", err)
			}
			if err := database.RunMigrations(path); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			v, dirty, err := database.MigrationVersion(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s at version %d (dirty=%t)\n", path, v, dirty)
			return nil
		},
	}
}

func newResetCmd(e *env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset-local",
		Short: "Delete all local models and SKUs and re-seed the starter models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to wipe %s without --yes", e.cfg.Database.Path)
			}
			db, err := openLocalDB(cmd.Context(), e.cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := (&service.MaintenanceService{DB: db}).Reset(cmd.Context()); err != nil {
				return err
			}
			e.log.Info("local catalog reset", slog.String("path", e.cfg.Database.Path))
			fmt.Fprintln(cmd.OutOrStdout(), "local catalog reset")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the wipe")
	return cmd
}
