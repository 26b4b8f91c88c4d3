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
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/poiesic/hearsay/config"
	"github.com/poiesic/hearsay/logger"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const (
	metaConfig = "config"
	metaLogger = "logger"
)

func main() {
	_ = godotenv.Load() // loads .env when present

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "hearsay",
		Usage: "Transcribe voice messages dropped into a folder and record their intent",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML config file (default: ./" + config.DefaultFile + " if present)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (trace, debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log output format (text, json)",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "watch",
				Usage:  "Poll the watch folder and record every new audio file",
				Action: watchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "folder",
						Aliases: []string{"f"},
						Usage:   "Folder to watch for audio files",
					},
					&cli.DurationFlag{
						Name:  "interval",
						Usage: "Delay between folder scans",
					},
					&cli.StringFlag{
						Name:  "archive",
						Usage: "Move recorded audio files into this folder",
					},
				},
			},
			{
				Name:      "process",
				Usage:     "Transcribe, extract and record a single audio file",
				ArgsUsage: "<file>",
				Action:    processCommand,
			},
			{
				Name:   "list",
				Usage:  "List stored records, newest first",
				Action: listCommand,
				Flags:  filterFlags(20),
			},
			{
				Name:      "resolve",
				Usage:     "Advance a record's resolution status",
				ArgsUsage: "<id>",
				Action:    resolveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "status",
						Usage: "New status (in_progress, resolved)",
						Value: "resolved",
					},
					&cli.StringFlag{
						Name:  "notes",
						Usage: "Resolution notes; the existing notes are kept when omitted",
					},
				},
			},
			{
				Name:   "export",
				Usage:  "Write stored records to an xlsx workbook",
				Action: exportCommand,
				Flags: append(filterFlags(0), &cli.StringFlag{
					Name:    "out",
					Aliases: []string{"o"},
					Usage:   "Output workbook path",
					Value:   "hearsay.xlsx",
				}),
			},
			{
				Name:   "migrate",
				Usage:  "Apply pending schema migrations to the record store",
				Action: migrateCommand,
			},
		},
	}
}

func filterFlags(defaultLimit int) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "status",
			Usage: "Only records with this status",
		},
		&cli.StringFlag{
			Name:  "intent",
			Usage: "Only records with this intent",
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Maximum number of records (0 for all)",
			Value: defaultLimit,
		},
	}
}

// setup loads configuration and builds the logger shared by every command.
func setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.Log.Format = c.String("log-format")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: c.App.ErrWriter,
	})
	if err != nil {
		return err
	}

	if c.App.Metadata == nil {
		c.App.Metadata = map[string]any{}
	}
	c.App.Metadata[metaConfig] = cfg
	c.App.Metadata[metaLogger] = log
	return nil
}

func runtimeFrom(c *cli.Context) (*config.Config, *logrus.Logger) {
	cfg, _ := c.App.Metadata[metaConfig].(*config.Config)
	log, _ := c.App.Metadata[metaLogger].(*logrus.Logger)
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return cfg, log
}

func exitUsage(c *cli.Context, msg string) error {
	return cli.Exit(fmt.Sprintf("%s\nusage: %s %s %s", msg, c.App.Name, c.Command.Name, c.Command.ArgsUsage), 2)
}
