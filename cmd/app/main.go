package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/raido/internal"
	"github.com/starford/raido/internal/builder"
	pkgconfig "github.com/starford/raido/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	loaded, err := pkgconfig.LoadIfExists(configPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !loaded && cmd.IsSet("config") {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}
	return cfg, nil
}

func runBuild(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := internal.NewLogger(cfg.App.LogLevel)
	if _, err := builder.Build(cfg.BuildOptions(), logger); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	return nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "raido.yaml",
		Value:       "raido.yaml",
		Sources:     cli.EnvVars("RAIDO_CONFIG_FILE"),
	}
}

func main() {
	cmd := &cli.Command{
		Name:  "raido",
		Usage: "Static site builder for Markdown blogs: posts, pages, categories, and feeds",
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Build the site into the output directory",
				Flags:  []cli.Flag{configFlag()},
				Action: runBuild,
			},
			{
				Name:   "serve",
				Usage:  "Build, serve locally, and rebuild on changes",
				Flags:  []cli.Flag{configFlag()},
				Action: runServe,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
