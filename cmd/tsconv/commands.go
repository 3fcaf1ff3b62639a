package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/ngrash/tsconv/calendar"
	"github.com/ngrash/tsconv/detect"
	"github.com/ngrash/tsconv/internal/app"
	"github.com/ngrash/tsconv/internal/config"
	"github.com/ngrash/tsconv/internal/logging"
	"github.com/ngrash/tsconv/internal/prefs"
	"github.com/ngrash/tsconv/render"
	"github.com/ngrash/tsconv/tzif"
	"github.com/ngrash/tsconv/tzoffset"
	"github.com/ngrash/tsconv/tzsearch"
)

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "tsconv",
		Usage: "Recognise, convert and reformat timestamps",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file; defaults apply if it does not exist",
				Value:   "tsconv.yaml",
				Sources: cli.EnvVars("TSCONV_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			convertCommand(),
			zonesCommand(),
			offsetCommand(),
			formatsCommand(),
			zoneCommand(),
			prefsCommand(),
			serveCommand(),
		},
	}
}

func modeFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "mode",
		Aliases: []string{"m"},
		Usage:   "Read slash dates as `us` (month first) or `eu` (day first)",
	}
}

func tzFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "tz",
		Aliases: []string{"z"},
		Usage:   "IANA time zone to render in",
	}
}

// env is what every command needs: configuration, a logger and the
// preferences, resolved once per invocation.
type env struct {
	cfg   *config.Config
	log   zerolog.Logger
	cal   *calendar.System
	prefs *prefs.Store
	out   io.Writer
}

func setup(cmd *cli.Command) (*env, error) {
	cfg := config.NewDefault()
	if err := config.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, err
	}
	log, err := logging.New(cmd.Root().ErrWriter, cfg.Log.Level, true)
	if err != nil {
		return nil, err
	}
	mode, err := detect.ParseMode(cfg.Defaults.DateFormat)
	if err != nil {
		return nil, err
	}
	cal := &calendar.System{ZoneInfoDir: cfg.ZoneInfo.Dir}
	store, err := prefs.Open(cfg.Preferences.Path,
		prefs.Preferences{DateFormat: mode, Timezone: cfg.Defaults.Timezone}, cal)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, cal: cal, prefs: store, out: cmd.Root().Writer}, nil
}

// settings applies the --mode and --tz flags over the stored preferences.
func (e *env) settings(cmd *cli.Command) (detect.Mode, string, error) {
	p := e.prefs.Current()
	if cmd.IsSet("mode") {
		m, err := detect.ParseMode(cmd.String("mode"))
		if err != nil {
			return 0, "", err
		}
		p.DateFormat = m
	}
	if cmd.IsSet("tz") {
		p.Timezone = cmd.String("tz")
	}
	return p.DateFormat, p.Timezone, nil
}

func convertCommand() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "Detect the format of a timestamp and print it in every representation",
		ArgsUsage: "TEXT...",
		Flags: []cli.Flag{
			modeFlag(),
			tzFlag(),
			&cli.BoolFlag{Name: "json", Usage: "Print JSON"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			text := strings.Join(cmd.Args().Slice(), " ")
			mode, zone, err := e.settings(cmd)
			if err != nil {
				return err
			}
			now := time.Now()
			res, err := detect.Detect(text, detect.Context{Mode: mode, Now: func() time.Time { return now }})
			if err != nil {
				return fmt.Errorf("%q: %w", text, err)
			}
			out, err := render.Render(e.cal, res.Instant, zone, now.UnixMilli())
			if err != nil {
				return err
			}

			if cmd.Bool("json") {
				return writeJSON(e.out, map[string]any{
					"label":          res.Label,
					"mode_sensitive": res.ModeSensitive,
					"instant":        res.Instant,
					"timezone":       zone,
					"output":         out,
				})
			}
			tw := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "Format\t%s\n", res.Label)
			if res.ModeSensitive {
				fmt.Fprintf(tw, "\t(read as %s; use --mode to switch)\n", mode)
			}
			fmt.Fprintf(tw, "Zone\t%s\n", zone)
			fmt.Fprintf(tw, "Unix seconds\t%d\n", out.UnixSeconds)
			fmt.Fprintf(tw, "Unix millis\t%d\n", out.UnixMillis)
			fmt.Fprintf(tw, "ISO 8601 UTC\t%s\n", out.ISOUTC)
			fmt.Fprintf(tw, "ISO 8601 local\t%s\n", out.ISOWithOffset)
			fmt.Fprintf(tw, "RFC 2822\t%s\n", out.RFC2822)
			fmt.Fprintf(tw, "SQL\t%s\n", out.SQL)
			fmt.Fprintf(tw, "Relative\t%s\n", out.Relative)
			fmt.Fprintf(tw, "Human\t%s\n", out.Human)
			return tw.Flush()
		},
	}
}

func zonesCommand() *cli.Command {
	return &cli.Command{
		Name:      "zones",
		Usage:     "Search time zones by name or abbreviation",
		ArgsUsage: "[QUERY]",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 10, Usage: "Maximum results, 0 for all"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			catalog, err := calendar.Catalog(e.cal)
			if err != nil {
				e.log.Warn().Err(err).Msg("zone catalog unavailable, using fallback")
			}
			table := tzsearch.DefaultTable()
			ranked := tzsearch.Search(strings.Join(cmd.Args().Slice(), " "), catalog, table)
			if limit := int(cmd.Int("limit")); limit > 0 && len(ranked) > limit {
				ranked = ranked[:limit]
			}
			tw := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
			for _, r := range ranked {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", r.Zone, r.Score, strings.Join(table.Abbrevs(r.Zone), " "))
			}
			return tw.Flush()
		},
	}
}

func offsetCommand() *cli.Command {
	return &cli.Command{
		Name:      "offset",
		Usage:     "Print the UTC offset of a zone at an instant (milliseconds, default now)",
		ArgsUsage: "[INSTANT]",
		Flags:     []cli.Flag{tzFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			_, zone, err := e.settings(cmd)
			if err != nil {
				return err
			}
			ms := time.Now().UnixMilli()
			if cmd.NArg() > 0 {
				if ms, err = strconv.ParseInt(cmd.Args().First(), 10, 64); err != nil {
					return fmt.Errorf("instant must be milliseconds since the epoch: %w", err)
				}
			}
			minutes, err := tzoffset.Minutes(e.cal, ms, zone)
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "%s\t%s\t%d\n", zone, tzoffset.Fixed(minutes), minutes)
			return nil
		},
	}
}

func formatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "formats",
		Usage: "List the recognised formats in the order they are tried",
		Flags: []cli.Flag{modeFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			mode, _, err := e.settings(cmd)
			if err != nil {
				return err
			}
			dctx := detect.Context{Mode: mode}
			for i, r := range detect.Rules() {
				marker := ""
				if r.ModeSensitive() {
					marker = " *"
				}
				fmt.Fprintf(e.out, "%2d. %s%s\n", i+1, r.Label(dctx), marker)
			}
			return nil
		},
	}
}

func zoneCommand() *cli.Command {
	return &cli.Command{
		Name:      "zone",
		Usage:     "Show the compiled zone file behind a zone and its current offset",
		ArgsUsage: "ZONE",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			zone := cmd.Args().First()
			if zone == "" {
				return cli.Exit("usage: tsconv zone ZONE", 2)
			}
			minutes, err := tzoffset.Minutes(e.cal, time.Now().UnixMilli(), zone)
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "Zone     %s\n", zone)
			fmt.Fprintf(e.out, "Offset   %s\n", tzoffset.Fixed(minutes))
			fmt.Fprintf(e.out, "Abbrevs  %s\n", strings.Join(tzsearch.DefaultTable().Abbrevs(zone), " "))

			path, ok := e.cal.ZoneFile(zone)
			if !ok {
				fmt.Fprintln(e.out, "File     (embedded database)")
				return nil
			}
			h, err := tzif.ReadFile(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "File     %s\n", path)
			fmt.Fprintf(e.out, "Version  %s\n", h.Version)
			fmt.Fprintf(e.out, "Counts   isut=%d isstd=%d leap=%d time=%d type=%d char=%d\n",
				h.Isutcnt, h.Isstdcnt, h.Leapcnt, h.Timecnt, h.Typecnt, h.Charcnt)
			return nil
		},
	}
}

func prefsCommand() *cli.Command {
	return &cli.Command{
		Name:  "prefs",
		Usage: "Show the stored preferences, or change them with --mode and --tz",
		Flags: []cli.Flag{modeFlag(), tzFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			old := e.prefs.Current()
			mode, zone, err := e.settings(cmd)
			if err != nil {
				return err
			}
			p := prefs.Preferences{DateFormat: mode, Timezone: zone}
			if p != old {
				if err := e.prefs.Save(p); err != nil {
					return err
				}
				e.log.Info().Str("path", e.prefs.Path()).
					Stringer("date_format", p.DateFormat).
					Str("timezone", p.Timezone).
					Msg("preferences saved")
			}
			return writeJSON(e.out, e.prefs.Current())
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the conversion API over HTTP",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.NewDefault()
			if err := config.LoadOptional(cmd.String("config"), cfg); err != nil {
				return fmt.Errorf("failed to parse config: %w", err)
			}
			if err := app.Run(ctx, app.WithConfig(cfg)); err != nil {
				return fmt.Errorf("app run error: %w", err)
			}
			return nil
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
