package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/tartampluch/go-sched/internal/config"
	"github.com/tartampluch/go-sched/internal/engine"
	"github.com/tartampluch/go-sched/internal/locale"
	"github.com/tartampluch/go-sched/internal/metrics"
	"github.com/tartampluch/go-sched/internal/server"
)

// app carries state shared by the subcommands.
type app struct {
	cfgPath string
	debug   bool

	settings *config.Settings
	fs       afero.Fs
	logs     io.Closer
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{fs: afero.NewOsFs()}

	root := &cobra.Command{
		Use:               config.CmdRoot,
		Short:             config.CmdDescRoot,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.init,
	}
	root.PersistentFlags().StringVarP(&a.cfgPath, config.FlagConfig, "c", "", config.FlagDescConfig)
	root.PersistentFlags().BoolVar(&a.debug, config.FlagDebug, false, config.FlagDescDebug)

	root.AddCommand(a.serveCmd(), a.blockCmd(), a.statCmd(), versionCmd())
	return root, a
}

// init loads settings and configures logging. The server logs to stdout;
// the one-shot commands keep stdout for their JSON and log to stderr.
func (a *app) init(cmd *cobra.Command, _ []string) error {
	settings, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	a.settings = settings

	w := cmd.ErrOrStderr()
	if cmd.Name() == config.CmdServe {
		w = cmd.OutOrStdout()
	}
	a.logs = setupLogging(w, settings.Log, a.debug)
	return nil
}

func (a *app) close() {
	if a.logs != nil {
		_ = a.logs.Close()
	}
}

// synthesizer loads the embedded tables and wires the runtime tables from the
// data directory. A corrupt embedded table is fatal.
func (a *app) synthesizer(rec engine.Recorder) (*engine.Synthesizer, error) {
	cal, err := engine.DefaultCalendar()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrLoadCalendar, err)
	}
	tpl, err := engine.DefaultPeriodTemplates()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrLoadPeriods, err)
	}
	slog.Debug(config.MsgTablesLoaded,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyRows, cal.Len(),
	)

	data := a.settings.Data
	live := engine.NewLiveTables(a.fs, data.SpecialPath(), data.OverridePath(), data.FlagPath())
	loc := locale.New(a.settings.Locale.Language)
	return engine.NewSynthesizer(cal, tpl, live, loc, nil, rec), nil
}

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdServe,
		Short: config.CmdDescServe,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logStartupInfo()

			var (
				rec  engine.Recorder = engine.NopRecorder{}
				prom *metrics.PromRecorder
			)
			if a.settings.Metrics.Enabled {
				p, err := metrics.NewPromRecorder(prometheus.DefaultRegisterer)
				if err != nil {
					return fmt.Errorf("%s: %w", config.ErrMetricsRegister, err)
				}
				rec, prom = p, p
			}

			synth, err := a.synthesizer(rec)
			if err != nil {
				return err
			}

			srv := server.New(a.settings.Server.Addr(), synth)
			srv.FeedDays = a.settings.Feed.Days
			if prom != nil {
				srv.Metrics = promhttp.Handler()
				srv.Observer = prom
			}

			if err := srv.Start(cmd.Context()); err != nil {
				return err
			}
			slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
			return nil
		},
	}
}

func (a *app) blockCmd() *cobra.Command {
	var date, title string
	cmd := &cobra.Command{
		Use:   config.CmdBlock,
		Short: config.CmdDescBlock,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			synth, err := a.synthesizer(nil)
			if err != nil {
				return err
			}
			now := time.Now()
			target, err := engine.ParseDateArg(date, now)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed(config.FlagTitle) &&
				target.Format(config.DateKeyLayout) == now.Format(config.DateKeyLayout) {
				title = config.TitleToday
			}
			return writeJSON(cmd.OutOrStdout(), synth.Generate(target, now, title))
		},
	}
	cmd.Flags().StringVar(&date, config.FlagDate, config.DateArgNow, config.FlagDescDate)
	cmd.Flags().StringVar(&title, config.FlagTitle, "", config.FlagDescTitle)
	return cmd
}

func (a *app) statCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   config.CmdStat,
		Short: config.CmdDescStat,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			synth, err := a.synthesizer(nil)
			if err != nil {
				return err
			}
			ref, err := engine.ParseDateArg(date, time.Now())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), synth.Stat(ref))
		},
	}
	cmd.Flags().StringVar(&date, config.FlagDate, config.DateArgNow, config.FlagDescDate)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdVersion,
		Short: config.CmdDescVersion,
		Args:  cobra.NoArgs,
		// Printing the version needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), config.MsgVersionOutput,
				config.AppName,
				config.Version,
				config.Commit,
				config.Date,
				runtime.GOOS,
				runtime.GOARCH,
			)
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
