// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/evidex"
	"github.com/poiesic/evidex/config"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "evidex",
		Usage: "Ingest and search forensic device extraction archives",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (default ~/.evidex/config.toml)",
			},
			&cli.StringFlag{
				Name:  "data-dir",
				Usage: "Override the data directory from the config file",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest an extracted archive directory or a standalone descriptor file",
				ArgsUsage: "<dir-or-file>",
				Action:    ingestCommand,
			},
			{
				Name:      "search",
				Usage:     "Search the ingested records and print the JSON response",
				ArgsUsage: "<query>",
				Action:    searchCommand,
			},
			{
				Name:   "reindex",
				Usage:  "Rebuild the semantic index from the stored records",
				Action: reindexCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolving config path: %w", err)
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if dir := c.String("data-dir"); dir != "" {
		cfg.DataDir = dir
	}
	return cfg, nil
}

func openService(c *cli.Context) (*evidex.Service, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	return evidex.Open(c.Context, cfg)
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one archive directory or descriptor file")
	}

	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	report, err := svc.Ingest(c.Context, c.Args().First())
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	return printJSON(report)
}

func searchCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("expected a search query")
	}
	query := strings.Join(c.Args().Slice(), " ")

	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	resp, err := svc.Search(c.Context, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return printJSON(resp)
}

func reindexCommand(c *cli.Context) error {
	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	if !svc.SemanticEnabled() {
		return fmt.Errorf("semantic index is disabled: embedding service unreachable")
	}
	if err := svc.Reindex(c.Context); err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}
	fmt.Fprintln(os.Stderr, "reindex complete")
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
