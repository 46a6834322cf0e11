// Command llmcost estimates monthly LLM API costs from the normalized
// pricing catalog and manages the user's custom models.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/af-corp/llm-cost-calculator/internal/catalog"
	"github.com/af-corp/llm-cost-calculator/internal/config"
	"github.com/af-corp/llm-cost-calculator/internal/kvstore"
	"github.com/af-corp/llm-cost-calculator/internal/models"
	"github.com/af-corp/llm-cost-calculator/internal/reference"
	"github.com/af-corp/llm-cost-calculator/internal/telemetry"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var version = "dev"

// app is the per-invocation session: one Store loaded once, then mutated
// by at most one command.
type app struct {
	configDir   string
	catalogURL  string
	catalogPath string
	jsonOut     bool
	verbose     bool

	cfg    *config.Config
	index  reference.Index
	kv     kvstore.Store
	store  *models.Store
	logger *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	a := &app{}
	if err := a.execute(ctx, newRootCmd(a)); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "llmcost",
		Short: "Estimate monthly LLM API costs",
		Long: `llmcost prices monthly LLM usage against the normalized Bedrock catalog.

Examples:
  llmcost models list --region us-east-1
  llmcost calculate default-2 --input-tokens 500 --output-tokens 300 --requests 1000
  llmcost compare --region us-east-1 --input-tokens 500 --output-tokens 300 --requests 1000
  llmcost models add --provider Anthropic --name "Claude 3.5 Sonnet" --region us-east-1 --input 0.003 --output 0.015
  llmcost references Anthropic --region us-east-1`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context(), cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVar(&a.configDir, "config", "configs", "path to configuration directory")
	root.PersistentFlags().StringVar(&a.catalogURL, "catalog-url", "", "load the normalized catalog from this URL")
	root.PersistentFlags().StringVar(&a.catalogPath, "catalog-path", "", "load the normalized catalog from this file")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "output as JSON")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log diagnostics to stderr")

	root.AddGroup(
		&cobra.Group{ID: "calc", Title: "Calculators:"},
		&cobra.Group{ID: "catalog", Title: "Models and catalog:"},
	)
	for _, c := range []*cobra.Command{calculateCmd(a), compareCmd(a), embedCmd(a), tokensCmd(a)} {
		c.GroupID = "calc"
		root.AddCommand(c)
	}
	for _, c := range []*cobra.Command{modelsCmd(a), referencesCmd(a), regionsCmd(a)} {
		c.GroupID = "catalog"
		root.AddCommand(c)
	}
	return root
}

// open loads configuration, connects the custom model backend and loads
// both tiers of the store.
func (a *app) open(ctx context.Context, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	level := "warn"
	if a.verbose {
		level = "debug"
	}
	a.logger = telemetry.NewLogger(stderr, level, "text")

	loader := config.NewLoader(a.configDir, a.logger)
	if err := loader.Load(); err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	a.cfg = loader.Config()
	a.index = reference.IndexFromConfig(loader.References())

	kv, err := kvstore.Open(ctx, a.cfg.Storage, a.logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	a.kv = kv

	a.store = models.NewStore(models.NewKVRepository(kv), a.logger)
	a.store.Load(ctx, a.source())
	return nil
}

// execute runs root and releases storage afterwards, also when the command
// failed.
func (a *app) execute(ctx context.Context, root *cobra.Command) error {
	defer a.close()
	return root.ExecuteContext(ctx)
}

func (a *app) close() {
	if a.kv == nil {
		return
	}
	if err := a.kv.Close(); err != nil {
		a.logger.Warn("failed to close storage", "error", err)
	}
	a.kv = nil
}

// source picks the catalog location: flags first, then config. A URL wins
// over a path.
func (a *app) source() catalog.Source {
	url, path := a.catalogURL, a.catalogPath
	if url == "" && path == "" {
		url, path = a.cfg.Pricing.CatalogURL, a.cfg.Pricing.CatalogPath
	}
	if url != "" {
		return catalog.HTTPSource{URL: url, Client: &http.Client{Timeout: a.cfg.Pricing.FetchTimeout}}
	}
	return catalog.FileSource{Path: path}
}
