package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"taskconsole/internal/backend"
	"taskconsole/internal/config"
	"taskconsole/internal/console"
	"taskconsole/internal/i18n"
	"taskconsole/internal/linemode"
	"taskconsole/internal/logging"
	"taskconsole/internal/report"
	"taskconsole/internal/storage"
	"taskconsole/internal/tui"
)

type cli struct {
	env        *cliEnv
	configPath string
	plain      bool
}

func (c *cli) now() time.Time {
	if c.env.now != nil {
		return c.env.now()
	}
	return time.Now()
}

// NewRootCommand 构建 taskconsole 命令树 / Builds the taskconsole command tree
func NewRootCommand(env *cliEnv) *cobra.Command {
	c := &cli{env: env}

	rootCmd := &cobra.Command{
		Use:   "taskconsole",
		Short: "Drive a remote automation agent from the terminal",
		Long: `taskconsole submits instructions to an automation backend, follows the
task's progress (insights, screenshot preview and terminal output) and
answers the prompts it raises.

  taskconsole                       # full-screen console on a TTY
  taskconsole --plain               # line mode
  taskconsole report --failed       # failed test cases only
  taskconsole history               # recent tasks`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConsole(cmd.Context())
		},
	}
	rootCmd.SetIn(env.in)
	rootCmd.SetOut(env.out)
	rootCmd.SetErr(env.err)

	rootCmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "Path to config JSON/JSONC")
	rootCmd.PersistentFlags().BoolVar(&c.plain, "plain", false, "Use line mode even on a TTY")

	rootCmd.AddCommand(c.newInitCommand())
	rootCmd.AddCommand(c.newReportCommand())
	rootCmd.AddCommand(c.newHistoryCommand())
	return rootCmd
}

// session 单条命令用到的已加载依赖 / Loaded dependencies for one command
type session struct {
	cfg     config.Config
	loc     *i18n.I18n
	log     *logging.Logger
	logFile *os.File
	client  *backend.Client
	store   *storage.SQLiteStore
}

// open loads config and builds the logger and backend client. The history
// store is opened only when withStore is set and storage.history is on.
func (c *cli) open(component string, withStore bool) (*session, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, errors.New(i18n.New("").T("error.config", err.Error()))
	}
	i18n.Init(cfg.UI.Locale)
	s := &session{cfg: cfg, loc: i18n.Global()}

	logFile, err := logging.OpenFile(cfg.Log.File)
	if err != nil {
		fmt.Fprintf(c.env.err, "log file disabled: %v\n", err)
		s.log = logging.New(component, nil, cfg.Log.Level)
	} else {
		s.logFile = logFile
		s.log = logging.New(component, logFile, cfg.Log.Level)
	}
	s.client = backend.NewClient(cfg.Backend, s.log.Named("backend"))

	if withStore && cfg.Storage.History {
		store, err := storage.NewSQLiteStore(cfg.HistoryPath())
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("open history: %w", err)
		}
		s.store = store
	}
	s.log.Debug("session opened", "base_url", cfg.Backend.BaseURL, "history", s.store != nil)
	return s, nil
}

func (s *session) Close() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.log.Warn("close history failed", "error", err.Error())
		}
	}
	if s.logFile != nil {
		_ = s.logFile.Close()
	}
}

func (s *session) backendError(err error) error {
	return errors.New(s.loc.T("error.backend", err.Error()))
}

// --- console ---

func (c *cli) runConsole(ctx context.Context) error {
	s, err := c.open("console", true)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := console.Options{
		Backend:  s.client,
		Interval: s.cfg.Backend.PollInterval(),
		Locale:   s.loc,
		Logger:   s.log.Named("console"),
	}
	if s.store != nil {
		opts.Journal = s.store
	}
	con := console.New(opts)

	tty := c.env.isTTY()
	if tty && !c.plain {
		return tui.Run(tui.Options{
			Console:       con,
			Locale:        s.loc,
			Logger:        s.log.Named("tui"),
			BaseURL:       s.client.BaseURL(),
			ScreenshotDir: s.cfg.UI.ScreenshotDir,
			PreviewWidth:  s.cfg.UI.PreviewWidth,
		})
	}

	var input linemode.LineInput
	if tty {
		input, err = linemode.NewLineInput(s.cfg.LineHistoryPath())
		if err != nil {
			return err
		}
	} else {
		input = linemode.NewBasicLineInput(c.env.in, c.env.out)
	}
	defer input.Close()

	loop := linemode.New(linemode.Options{
		Console:       con,
		Input:         input,
		Out:           c.env.out,
		Locale:        s.loc,
		Logger:        s.log.Named("linemode"),
		BaseURL:       s.client.BaseURL(),
		ScreenshotDir: s.cfg.UI.ScreenshotDir,
		Width:         c.env.width(),
		NoColor:       !tty,
	})
	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// --- init ---

func (c *cli) newInitCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a project config scaffold (.taskconsole/config.json)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.InitProjectConfigScaffold(dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.env.out, i18n.T("cli.config_ready", path))
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Project directory (default: current directory)")
	return cmd
}

// --- report ---

func (c *cli) newReportCommand() *cobra.Command {
	var failedOnly bool
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the backend's test report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open("report", false)
			if err != nil {
				return err
			}
			defer s.Close()

			rep, ok, err := c.fetchReport(cmd.Context(), s)
			if err != nil || !ok {
				return err
			}
			md := report.Markdown(rep, failedOnly, s.loc)
			out, err := report.Render(md, c.env.width(), !c.env.isTTY())
			if err != nil {
				return err
			}
			fmt.Fprint(c.env.out, out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Show failed test cases only")

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete the backend's test report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open("report", false)
			if err != nil {
				return err
			}
			defer s.Close()

			ack, err := s.client.ClearTestReport(cmd.Context())
			if err != nil {
				return s.backendError(err)
			}
			if !ack.OK() {
				return s.backendError(errors.New(ack.Message))
			}
			fmt.Fprintln(c.env.out, s.loc.T("report.cleared"))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "screenshots DIR",
		Short: "Save each test case's screenshot into DIR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open("report", false)
			if err != nil {
				return err
			}
			defer s.Close()

			rep, ok, err := c.fetchReport(cmd.Context(), s)
			if err != nil || !ok {
				return err
			}
			res, err := report.ExtractScreenshots(rep, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(c.env.out, s.loc.T("report.extracted", len(res.Saved), args[0], res.Skipped))
			return nil
		},
	})
	cmd.AddCommand(c.newReportExportCommand())
	return cmd
}

func (c *cli) newReportExportCommand() *cobra.Command {
	var csvPath, htmlPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the test report as CSV and/or a standalone HTML page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open("report", false)
			if err != nil {
				return err
			}
			defer s.Close()
			if csvPath == "" && htmlPath == "" {
				return errors.New(s.loc.T("report.export_none"))
			}

			rep, ok, err := c.fetchReport(cmd.Context(), s)
			if err != nil || !ok {
				return err
			}
			if csvPath != "" {
				res, err := report.ExportCSV(rep, csvPath)
				if err != nil {
					return err
				}
				fmt.Fprintln(c.env.out, s.loc.T("report.csv_written", res.Rows, res.Path, res.Screenshots, res.ScreenshotDir))
			}
			if htmlPath != "" {
				if err := report.WriteHTML(rep, htmlPath, c.now(), s.loc); err != nil {
					return err
				}
				fmt.Fprintln(c.env.out, s.loc.T("report.html_written", htmlPath))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write a CSV export to FILE (screenshots go next to it)")
	cmd.Flags().StringVar(&htmlPath, "html", "", "Write an HTML session report to FILE")
	return cmd
}

// fetchReport prints the "unavailable" notice and reports ok=false when the
// backend has no report yet.
func (c *cli) fetchReport(ctx context.Context, s *session) (backend.TestReport, bool, error) {
	rep, err := s.client.TestReport(ctx)
	if err == nil {
		return rep, true, nil
	}
	if backend.IsAPIError(err) {
		s.log.Info("test report unavailable", "error", err.Error())
		fmt.Fprintln(c.env.out, s.loc.T("report.unavailable"))
		return backend.TestReport{}, false, nil
	}
	return backend.TestReport{}, false, s.backendError(err)
}

// --- history ---

func (c *cli) newHistoryCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently submitted tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ok, err := c.openHistory()
			if err != nil || !ok {
				return err
			}
			defer s.Close()

			tasks, err := s.store.ListTasks(limit)
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				fmt.Fprintln(c.env.out, s.loc.T("history.none"))
				return nil
			}
			width := c.env.width()
			for _, t := range tasks {
				head := fmt.Sprintf("%s  %-9s  %s  ", t.CreatedAt, t.Status, t.TaskID)
				room := width - runewidth.StringWidth(head)
				if room < 10 {
					room = 10
				}
				instr := strings.Join(strings.Fields(t.Instructions), " ")
				fmt.Fprintln(c.env.out, head+runewidth.Truncate(instr, room, "..."))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", storage.DefaultListLimit, "Number of tasks to list")

	cmd.AddCommand(&cobra.Command{
		Use:   "show TASK_ID",
		Short: "Show a task's answered prompts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ok, err := c.openHistory()
			if err != nil || !ok {
				return err
			}
			defer s.Close()

			prompts, err := s.store.ListPrompts(args[0])
			if err != nil {
				return err
			}
			if len(prompts) == 0 {
				fmt.Fprintln(c.env.out, s.loc.T("history.no_prompts", args[0]))
				return nil
			}
			for _, p := range prompts {
				fmt.Fprintf(c.env.out, "%s  ? %s\n", p.CreatedAt, p.Prompt)
				fmt.Fprintf(c.env.out, "%s  > %s\n", strings.Repeat(" ", len(p.CreatedAt)), p.Response)
			}
			return nil
		},
	})
	return cmd
}

// openHistory reports ok=false (after printing a notice) when history is off.
func (c *cli) openHistory() (*session, bool, error) {
	s, err := c.open("history", true)
	if err != nil {
		return nil, false, err
	}
	if s.store == nil {
		fmt.Fprintln(c.env.out, s.loc.T("history.disabled"))
		s.Close()
		return nil, false, nil
	}
	return s, true, nil
}
