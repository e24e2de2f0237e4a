package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"my-ankode/internal/domain/entity"
	"my-ankode/internal/usecase/ingest"
	srcUC "my-ankode/internal/usecase/source"
)

// errIngestFailed makes the process exit 1 after the result line is printed.
var errIngestFailed = errors.New("ingestion failed")

// Ingester is the subset of the ingestion service the CLI drives.
type Ingester interface {
	IngestPublic(ctx context.Context, feedURL, source string) ingest.Result
	IngestForUser(ctx context.Context, feedURL, source string, userID int64) ingest.Result
	IngestActiveSources(ctx context.Context, opts ingest.BatchOptions) (*ingest.RunStats, error)
}

// Sources is the subset of the source service the CLI drives.
type Sources interface {
	ListActive(ctx context.Context) ([]*entity.Source, error)
	ListForOwner(ctx context.Context, ownerID *int64) ([]*entity.Source, error)
	Create(ctx context.Context, in srcUC.CreateInput) (*entity.Source, error)
}

// Backend bundles what a command needs. Close releases the connections.
type Backend struct {
	Ingester Ingester
	Sources  Sources
	Batch    ingest.BatchOptions
	Migrate  func(down bool) error
	Seed     func() error
	Close    func() error
}

// Opener connects a Backend on demand so that --help never touches the database.
type Opener func(ctx context.Context) (*Backend, error)

// RootApp builds the command tree.
func RootApp(open Opener) *cli.App {
	return &cli.App{
		Name:  "ingest",
		Usage: "Run feed ingestion and manage veille sources from the command line",
		Commands: []*cli.Command{
			ingestCmd(open),
			sourcesCmd(open),
			migrateCmd(open),
		},
		Action: func(ctx *cli.Context) error {
			return cli.ShowAppHelp(ctx)
		},
	}
}

func urlFlag() cli.Flag {
	return &cli.StringFlag{Name: "url", Aliases: []string{"u"}, Usage: "Feed URL", Required: true}
}

func sourceFlag() cli.Flag {
	return &cli.StringFlag{Name: "source", Aliases: []string{"s"}, Usage: "Source label attached to every article", Required: true}
}

func ingestCmd(open Opener) *cli.Command {
	return &cli.Command{
		Name:  "ingest",
		Usage: "Ingest one feed once",
		Subcommands: []*cli.Command{
			{
				Name:  "public",
				Usage: "Ingest a feed with no owner",
				Flags: []cli.Flag{urlFlag(), sourceFlag()},
				Action: withBackend(open, func(c *cli.Context, b *Backend) error {
					res := b.Ingester.IngestPublic(c.Context, c.String("url"), c.String("source"))
					return printResult(c.App.Writer, res)
				}),
			},
			{
				Name:  "user",
				Usage: "Ingest a feed on behalf of one user",
				Flags: []cli.Flag{urlFlag(), sourceFlag(), &cli.Int64Flag{
					Name:     "user-id",
					Usage:    "Owner of the ingested articles",
					Required: true,
				}},
				Action: withBackend(open, func(c *cli.Context, b *Backend) error {
					res := b.Ingester.IngestForUser(c.Context, c.String("url"), c.String("source"), c.Int64("user-id"))
					return printResult(c.App.Writer, res)
				}),
			},
		},
	}
}

func sourcesCmd(open Opener) *cli.Command {
	return &cli.Command{
		Name:  "sources",
		Usage: "Manage veille sources",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List active sources, or the sources of one user",
				Flags: []cli.Flag{&cli.Int64Flag{Name: "user-id", Usage: "Only list this user's sources"}},
				Action: withBackend(open, func(c *cli.Context, b *Backend) error {
					var (
						sources []*entity.Source
						err     error
					)
					if c.IsSet("user-id") {
						id := c.Int64("user-id")
						sources, err = b.Sources.ListForOwner(c.Context, &id)
					} else {
						sources, err = b.Sources.ListActive(c.Context)
					}
					if err != nil {
						return err
					}
					for _, s := range sources {
						fmt.Fprintln(c.App.Writer, formatSource(s))
					}
					return nil
				}),
			},
			{
				Name:  "add",
				Usage: "Register a feed source",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Display name", Required: true},
					urlFlag(),
					&cli.Int64Flag{Name: "user-id", Usage: "Owner; omit for a public source"},
				},
				Action: withBackend(open, func(c *cli.Context, b *Backend) error {
					in := srcUC.CreateInput{Name: c.String("name"), FeedURL: c.String("url")}
					if c.IsSet("user-id") {
						id := c.Int64("user-id")
						in.OwnerID = &id
					}
					src, err := b.Sources.Create(c.Context, in)
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, formatSource(src))
					return nil
				}),
			},
			{
				Name:  "run",
				Usage: "Ingest every active source once",
				Action: withBackend(open, func(c *cli.Context, b *Backend) error {
					stats, err := b.Ingester.IngestActiveSources(c.Context, b.Batch)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "sources=%d succeeded=%d failed=%d inserted=%d duration=%s\n",
						stats.Sources, stats.Succeeded, stats.Failed, stats.Inserted, stats.Duration)
					if stats.Failed > 0 && stats.Succeeded == 0 {
						return errIngestFailed
					}
					return nil
				}),
			},
		},
	}
}

func migrateCmd(open Opener) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply the database schema",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "down", Usage: "Drop the schema instead"},
			&cli.BoolFlag{Name: "seed", Usage: "Also insert the starter public sources"},
		},
		Action: withBackend(open, func(c *cli.Context, b *Backend) error {
			if c.Bool("down") && c.Bool("seed") {
				return errors.New("--seed cannot be combined with --down")
			}
			if err := b.Migrate(c.Bool("down")); err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, "migrations applied")
			if c.Bool("seed") {
				if err := b.Seed(); err != nil {
					return err
				}
				fmt.Fprintln(c.App.Writer, "public sources seeded")
			}
			return nil
		}),
	}
}

func withBackend(open Opener, fn func(*cli.Context, *Backend) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		b, err := open(c.Context)
		if err != nil {
			return err
		}
		defer func() {
			if b.Close != nil {
				_ = b.Close()
			}
		}()
		return fn(c, b)
	}
}

// printResult writes "success=<bool> count=<n> [error=<msg>]".
func printResult(w io.Writer, res ingest.Result) error {
	line := fmt.Sprintf("success=%t count=%d", res.Success, res.Count)
	if res.Error != "" {
		line += fmt.Sprintf(" error=%q", res.Error)
	}
	fmt.Fprintln(w, line)
	if !res.Success {
		return errIngestFailed
	}
	return nil
}

func formatSource(s *entity.Source) string {
	owner := "public"
	if s.OwnerID != nil {
		owner = fmt.Sprintf("user:%d", *s.OwnerID)
	}
	return fmt.Sprintf("%d\t%s\t%s\t%s", s.ID, s.Name, s.FeedURL, owner)
}
