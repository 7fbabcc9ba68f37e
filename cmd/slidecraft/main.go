// Command slidecraft generates, improves and manages slide decks from the
// terminal against a local sqlite (or mysql) store.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Rrens/slidecraft/internal/bootstrap"
	"github.com/Rrens/slidecraft/internal/config"
	"github.com/Rrens/slidecraft/internal/domain"
	"github.com/Rrens/slidecraft/internal/logging"
	"github.com/Rrens/slidecraft/internal/repository/sqlstore"
	"github.com/Rrens/slidecraft/internal/service"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// localOwner owns every deck and ledger entry written by the CLI
var localOwner = domain.UserOwner("local")

var (
	verbose  bool
	dsn      string
	driver   string
	timeout  time.Duration
	provider string
	model    string
)

// app bundles the services a command needs
type app struct {
	db         *sqlx.DB
	generation *service.GenerationService
	quota      *service.QuotaService
	decks      *service.DeckService
}

func (a *app) Close() error {
	return a.db.Close()
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "slidecraft",
	Short: "Generate and improve slide decks with an LLM",
	Long: `slidecraft creates presentation outlines from a topic, reworks existing
drafts, and keeps saved decks and the generation quota in a local database.`,
	SilenceUsage: true,
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.Logging.Level = "warn"
	if verbose {
		cfg.Logging.Level = "debug"
	}
	cfg.Logging.Format = "console"
	cfg.Logging.File = ""
	if _, err := logging.Setup(cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	if dsn != "" {
		cfg.Storage.SQL.DSN = dsn
	}
	if driver != "" {
		cfg.Storage.SQL.Driver = driver
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sqlstore.Open(ctx, cfg.Storage.SQL)
	if err != nil {
		return nil, err
	}

	policy, err := bootstrap.Policy(cfg.Quota)
	if err != nil {
		db.Close()
		return nil, err
	}

	decks := sqlstore.NewDeckStore(db)
	ledger := sqlstore.NewQuotaStore(db)
	stores := service.Stores{UserDecks: decks, UserQuota: ledger, SessionDecks: decks, SessionQuota: ledger}
	locks := service.NewOwnerLocks()
	llmRouter := bootstrap.NewLLMRouter(cfg.LLM)

	return &app{
		db:         db,
		generation: service.NewGenerationService(llmRouter, stores, policy, nil, locks),
		quota:      service.NewQuotaService(stores, policy, locks),
		decks:      service.NewDeckService(stores, nil),
	}, nil
}

// withApp opens the store for the duration of one command
func withApp(run func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		return run(ctx, a, args)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "Database DSN (or set SLIDECRAFT_DSN env)")
	rootCmd.PersistentFlags().StringVar(&driver, "driver", "", "Database driver: sqlite or mysql")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 3*time.Minute, "Operation timeout")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(improveCmd)
	rootCmd.AddCommand(creditsCmd)
	rootCmd.AddCommand(purchaseCmd)
	rootCmd.AddCommand(decksCmd)
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
