// Copyright 2025 Lightfold Labs
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
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/lightfold/captura"
	"github.com/lightfold/captura/ai"
	"github.com/lightfold/captura/core"
)

func main() {
	var cleanup func() error

	app := &cli.App{
		Name:  "captura",
		Usage: "Content intelligence and hybrid search for captured screenshots",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "data-dir",
				Aliases: []string{"d"},
				Usage:   "Directory holding the metadata database and embedding index",
				Value:   defaultDataDir(),
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "OpenAI-compatible service host URL for vision and embeddings",
				Value: "http://localhost:11434/v1",
			},
			&cli.StringFlag{
				Name:  "vision-model",
				Usage: "Model identifier for image analysis",
				Value: "qwen2.5vl:7b",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Model identifier for text embeddings",
				Value: "embeddinggemma",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Append a JSON copy of the log to this file",
			},
		},
		Before: func(c *cli.Context) error {
			level, err := parseLevel(c.String("log-level"))
			if err != nil {
				return err
			}
			logger, closeLog := setupLogger(c.String("log-file"), level)
			slog.SetDefault(logger)
			cleanup = closeLog
			return nil
		},
		After: func(c *cli.Context) error {
			if cleanup != nil {
				return cleanup()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "Import screenshot files and run the analysis pipeline",
				ArgsUsage: "FILE [FILE...]",
				Action:    importCommand,
			},
			{
				Name:      "search",
				Usage:     "Search artifacts by text, lexically and semantically",
				ArgsUsage: "QUERY",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   20,
					},
				},
				Action: searchCommand,
			},
			{
				Name:  "folder",
				Usage: "Manage and evaluate smart folders",
				Subcommands: []*cli.Command{
					{
						Name:      "add",
						Usage:     "Create a smart folder from a rule",
						ArgsUsage: "NAME",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "rule",
								Usage:    "Rule kind: all, recent, favorites, by_tag, date_range, content_type",
								Required: true,
							},
							&cli.IntFlag{
								Name:  "days",
								Usage: "Lookback window for recent rules",
								Value: 7,
							},
							&cli.StringFlag{
								Name:  "tag",
								Usage: "Tag id for by_tag rules",
							},
							&cli.TimestampFlag{
								Name:   "start",
								Usage:  "Range start for date_range rules",
								Layout: time.RFC3339,
							},
							&cli.TimestampFlag{
								Name:   "end",
								Usage:  "Range end for date_range rules",
								Layout: time.RFC3339,
							},
							&cli.StringFlag{
								Name:  "substring",
								Usage: "Keyword substring for content_type rules",
							},
						},
						Action: folderAddCommand,
					},
					{
						Name:   "list",
						Usage:  "List smart folders",
						Action: folderListCommand,
					},
					{
						Name:      "eval",
						Usage:     "Evaluate a smart folder and print its members",
						ArgsUsage: "FOLDER_ID",
						Action:    folderEvalCommand,
					},
					{
						Name:      "rm",
						Usage:     "Delete a smart folder",
						ArgsUsage: "FOLDER_ID",
						Action:    folderRemoveCommand,
					},
				},
			},
			{
				Name:      "favorite",
				Usage:     "Mark or unmark an artifact as favorite",
				ArgsUsage: "ARTIFACT_ID",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "unset",
						Usage: "Remove the favorite flag instead of setting it",
					},
				},
				Action: favoriteCommand,
			},
			{
				Name:      "rename",
				Usage:     "Record a new file path for an artifact",
				ArgsUsage: "ARTIFACT_ID NEW_PATH",
				Action:    renameCommand,
			},
			{
				Name:      "reprocess",
				Usage:     "Re-run the analysis pipeline for an artifact",
				ArgsUsage: "ARTIFACT_ID",
				Action:    reprocessCommand,
			},
			{
				Name:   "purge",
				Usage:  "Drop embedding index entries whose files no longer exist",
				Action: purgeCommand,
			},
			{
				Name:      "delete",
				Usage:     "Delete an artifact, its analysis, and its embeddings",
				ArgsUsage: "ARTIFACT_ID",
				Action:    deleteCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".captura"
	}
	return filepath.Join(home, ".captura")
}

// openLibrary opens the library at the configured data directory using
// the AI settings from the global flags.
func openLibrary(c *cli.Context) (*captura.Library, error) {
	cfg := ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithVisionModel(c.String("vision-model")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	lib, err := captura.Open(c.String("data-dir"), captura.WithAIConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open library: %w", err)
	}
	return lib, nil
}

func importCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file is required")
	}

	lib, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	summary, err := lib.Import(context.Background(), c.Args().Slice()...)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	for _, artifact := range summary.Added {
		fmt.Printf("added    %s  %s\n", artifact.Id, artifact.Path)
	}
	for _, path := range summary.Skipped {
		fmt.Printf("skipped  %s (duplicate content)\n", path)
	}
	for _, result := range summary.Results {
		if result.Err != nil {
			fmt.Fprintf(os.Stderr, "analysis failed for %s: %v\n", result.Id, result.Err)
		}
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one query argument is required")
	}

	lib, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	ctx := context.Background()
	results, err := lib.Search(ctx, c.Args().First(), c.Int("limit"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	for _, result := range results {
		source := "lexical"
		if result.Source == core.SourceSemantic {
			source = "semantic"
		}
		path := "(missing)"
		if artifact, err := lib.Artifacts().GetArtifact(ctx, result.ArtifactId); err == nil {
			path = artifact.Path
		}
		fmt.Printf("%.3f  %-8s  %s  %s\n", result.Score, source, result.ArtifactId, path)
	}
	return nil
}

func folderAddCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one folder name is required")
	}

	var rule core.FilterRule
	switch core.RuleKind(c.String("rule")) {
	case core.RuleAll:
		rule = core.AllRule()
	case core.RuleRecent:
		rule = core.RecentRule(c.Int("days"))
	case core.RuleFavorites:
		rule = core.FavoritesRule()
	case core.RuleByTag:
		rule = core.ByTagRule(core.ID(c.String("tag")))
	case core.RuleDateRange:
		start, end := c.Timestamp("start"), c.Timestamp("end")
		if start == nil || end == nil {
			return fmt.Errorf("date_range rules require --start and --end")
		}
		rule = core.DateRangeRule(*start, *end)
	case core.RuleContentType:
		rule = core.ContentTypeRule(c.String("substring"))
	default:
		return fmt.Errorf("unknown rule kind %q", c.String("rule"))
	}

	lib, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	folder, err := lib.AddSmartFolder(context.Background(), c.Args().First(), rule)
	if err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}
	fmt.Printf("created %s  %s\n", folder.Id, folder.Name)
	return nil
}

func folderListCommand(c *cli.Context) error {
	lib, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	folders, err := lib.SmartFolders(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list folders: %w", err)
	}
	for _, folder := range folders {
		fmt.Printf("%s  %-12s  %s\n", folder.Id, folder.Rule.Kind, folder.Name)
	}
	return nil
}

func folderEvalCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one folder id is required")
	}

	lib, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	artifacts, err := lib.EvaluateFolder(context.Background(), core.ID(c.Args().First()))
	if err != nil {
		return fmt.Errorf("failed to evaluate folder: %w", err)
	}
	for _, artifact := range artifacts {
		fmt.Printf("%s  %s  %s\n", artifact.Id, artifact.CreatedAt.Format(time.RFC3339), artifact.Path)
	}
	return nil
}

func folderRemoveCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one folder id is required")
	}

	lib, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	if err := lib.DeleteSmartFolder(context.Background(), core.ID(c.Args().First())); err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}
	return nil
}

func favoriteCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one artifact id is required")
	}

	lib, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	id := core.ID(c.Args().First())
	if err := lib.SetFavorite(context.Background(), id, !c.Bool("unset")); err != nil {
		return fmt.Errorf("failed to update favorite flag: %w", err)
	}
	return nil
}

func renameCommand(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("artifact id and new path are required")
	}

	lib, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	id := core.ID(c.Args().Get(0))
	if err := lib.Rename(context.Background(), id, c.Args().Get(1)); err != nil {
		return fmt.Errorf("rename failed: %w", err)
	}
	return nil
}

func reprocessCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one artifact id is required")
	}

	lib, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	result, err := lib.Reprocess(context.Background(), core.ID(c.Args().First()))
	if err != nil {
		return fmt.Errorf("reprocess failed: %w", err)
	}
	if result.Err != nil {
		return fmt.Errorf("analysis failed: %w", result.Err)
	}
	if !result.Indexed {
		fmt.Fprintln(os.Stderr, "warning: metadata updated but embedding was not refreshed")
	}
	return nil
}

func purgeCommand(c *cli.Context) error {
	lib, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	removed, err := lib.Purge(context.Background())
	if err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}
	fmt.Printf("removed %d stale entries\n", removed)
	return nil
}

func deleteCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one artifact id is required")
	}

	lib, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	if err := lib.Delete(context.Background(), core.ID(c.Args().First())); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	return nil
}
