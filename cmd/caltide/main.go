package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/caltide/caltide/calendar"
	calical "github.com/caltide/caltide/calendar/ical"
	"github.com/caltide/caltide/calendar/recurrence"
	"github.com/caltide/caltide/calendar/storage"
	"github.com/caltide/caltide/calendar/storage/memory"
	"github.com/caltide/caltide/calendar/storage/postgres"
	"github.com/caltide/caltide/internal/config"
	goical "github.com/emersion/go-ical"
)

func main() {
	app := &cli.App{
		Name:  "caltide",
		Usage: "Manage calendar events and recurring series.",
		Commands: []*cli.Command{
			addCommand(),
			listCommand(),
			deleteCommand(),
			exportCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Create an event or a recurring series.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Required: true, Usage: "Event title."},
			&cli.StringFlag{Name: "description", Usage: "Event description."},
			&cli.StringFlag{Name: "start", Required: true, Usage: "Start time, e.g. '2024-03-04 09:00'."},
			&cli.StringFlag{Name: "end", Usage: "End time."},
			&cli.StringFlag{Name: "repeat", Usage: "Recurrence pattern: daily, weekly, monthly or yearly."},
			&cli.StringFlag{Name: "weeks", Value: storage.IndefiniteWeeks, Usage: "Series length in weeks, or 'indefinite'."},
		},
		Action: func(c *cli.Context) error {
			ctx, svc, cleanup, err := setup()
			if err != nil {
				return err
			}
			defer cleanup()

			start, err := parseTime(c.String("start"))
			if err != nil {
				return err
			}
			event := &storage.MasterEvent{
				Title:       c.String("title"),
				Description: c.String("description"),
				StartDate:   start,
			}
			if c.IsSet("end") {
				end, err := parseTime(c.String("end"))
				if err != nil {
					return err
				}
				event.EndDate = &end
			}
			if c.IsSet("repeat") {
				event.IsRecurring = true
				event.RecurringPattern = storage.RecurrencePattern(c.String("repeat"))
				event.RecurringWeeks = c.String("weeks")
			}

			created, err := svc.CreateSeries(ctx, event)
			if err != nil {
				return err
			}
			fmt.Println(created.ID)
			return nil
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List occurrences, optionally within a window.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Usage: "Window start (inclusive)."},
			&cli.StringFlag{Name: "to", Usage: "Window end (exclusive)."},
		},
		Action: func(c *cli.Context) error {
			ctx, svc, cleanup, err := setup()
			if err != nil {
				return err
			}
			defer cleanup()

			occurrences, err := listOccurrences(ctx, c, svc)
			if err != nil {
				return err
			}
			for _, occ := range occurrences {
				line := fmt.Sprintf("%s\t%s\t%s", occ.StartDate.Format("2006-01-02 15:04"), occ.ID, occ.Title)
				if occ.ParentEventID != "" {
					line += "\t(series " + occ.ParentEventID + ")"
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:  "delete",
		Usage: "Delete a whole series by id, or a single occurrence by instance id.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id", Required: true, Usage: "Event id or occurrence instance id."},
		},
		Action: func(c *cli.Context) error {
			ctx, svc, cleanup, err := setup()
			if err != nil {
				return err
			}
			defer cleanup()

			id := c.String("id")
			if masterID, at, err := recurrence.ParseInstanceID(id); err == nil {
				return svc.DeleteInstance(ctx, masterID, at)
			}
			return svc.DeleteSeries(ctx, id)
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write occurrences as iCalendar data.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Usage: "Window start (inclusive)."},
			&cli.StringFlag{Name: "to", Usage: "Window end (exclusive)."},
			&cli.StringFlag{Name: "out", Value: "caltide.ics", Usage: "Output file."},
		},
		Action: func(c *cli.Context) error {
			ctx, svc, cleanup, err := setup()
			if err != nil {
				return err
			}
			defer cleanup()

			occurrences, err := listOccurrences(ctx, c, svc)
			if err != nil {
				return err
			}

			f, err := os.Create(c.String("out"))
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()

			cal := calical.Occurrences(occurrences)
			if err := goical.NewEncoder(f).Encode(cal); err != nil {
				return fmt.Errorf("failed to encode calendar: %w", err)
			}
			return nil
		},
	}
}

func listOccurrences(ctx context.Context, c *cli.Context, svc *calendar.Service) ([]recurrence.Occurrence, error) {
	if c.IsSet("from") && c.IsSet("to") {
		from, err := parseTime(c.String("from"))
		if err != nil {
			return nil, err
		}
		to, err := parseTime(c.String("to"))
		if err != nil {
			return nil, err
		}
		return svc.ListRange(ctx, from, to)
	}
	return svc.ListOccurrences(ctx)
}

// setup loads configuration and wires the service over Postgres when
// DATABASE_URI is set, or the in-memory store otherwise.
func setup() (context.Context, *calendar.Service, func(), error) {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	logger := setupLogger(cfg.LogLevel)

	var store storage.Storage
	cleanup := func() {}
	if cfg.DatabaseURI != "" {
		db, err := postgres.Connect(ctx, cfg.DatabaseURI)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		store = postgres.NewStore(db, postgres.WithLogger(logger))
		cleanup = db.Close
	} else {
		logger.Warn("DATABASE_URI not set, using in-memory storage")
		store = memory.New(memory.WithLogger(logger))
	}

	opts := recurrence.DefaultOptions
	opts.DefaultWindowMonths = cfg.WindowMonths
	svc, err := calendar.New(store,
		calendar.WithLogger(logger),
		calendar.WithEngineOptions(opts))
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	return ctx, svc, cleanup, nil
}

func setupLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02T15:04", time.RFC3339, "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}
