package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/crmai/internal"
	"github.com/starford/crmai/internal/display"
	pkgconfig "github.com/starford/crmai/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version))
}

// openQuiet opens the store for one-shot commands, logging only warnings.
func openQuiet(cmd *cli.Command) (*internal.Backend, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	return internal.OpenStore(cfg, logger)
}

func printContext(_ context.Context, cmd *cli.Command) error {
	b, err := openQuiet(cmd)
	if err != nil {
		return err
	}
	defer b.Close()
	_, err = fmt.Fprintln(os.Stdout, b.Store.Context())
	return err
}

func printStats(_ context.Context, cmd *cli.Command) error {
	b, err := openQuiet(cmd)
	if err != nil {
		return err
	}
	defer b.Close()
	display.Stats(os.Stdout, b.Store.Metrics(), b.Store.ListTasks(true))
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "crmai",
		Usage:   "Freelance CRM with an AI copilot: contacts, quotes and invoices, tasks, projects, recurring revenue",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API (default)",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the CRM to LLM clients over MCP stdio",
				Action: serveMCP,
			},
			{
				Name:   "context",
				Usage:  "Print the CRM digest the assistant reads",
				Action: printContext,
			},
			{
				Name:   "stats",
				Usage:  "Print the dashboard figures",
				Action: printStats,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
