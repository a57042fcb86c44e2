// cmd/ssreport/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/docker/go-units"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/rusenback/ssreport/internal/config"
	"github.com/rusenback/ssreport/internal/logfile"
	"github.com/rusenback/ssreport/internal/logger"
	"github.com/rusenback/ssreport/internal/model"
	"github.com/rusenback/ssreport/internal/render"
	"github.com/rusenback/ssreport/internal/stats"
	"github.com/rusenback/ssreport/internal/storage"
	"github.com/rusenback/ssreport/internal/tui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		slog.Error("ssreport failed", "err", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := config.FlagSet("ssreport", stderr)
	cfg, err := config.Load(fs, args)
	if errors.Is(err, config.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	var store *storage.Storage
	if cfg.DB != "" {
		store, err = storage.NewStorage(cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer store.Close()
	}

	if cfg.ListRuns {
		return listRuns(ctx, store, stdout)
	}
	if cfg.DeleteRun != "" {
		if err := store.DeleteRun(ctx, cfg.DeleteRun); err != nil {
			return err
		}
		log.Info("run deleted", "run", cfg.DeleteRun, "db", cfg.DB)
		return nil
	}

	var (
		report model.Report
		runID  string
	)
	if cfg.LoadRun != "" {
		report, err = store.LoadReport(ctx, cfg.LoadRun)
		if err != nil {
			return err
		}
		runID = cfg.LoadRun
		if len(cfg.Columns) > 0 {
			return printColumns(ctx, store, runID, report.Metric, cfg.Columns, stdout)
		}
		if cfg.Output != "" {
			if err := writeOutput(cfg.Output, report); err != nil {
				return err
			}
		}
	} else {
		report, runID, err = analyze(ctx, cfg, log, store, stdout)
		if err != nil || cfg.Header {
			return err
		}
	}

	if err := render.Report(stdout, report); err != nil {
		return err
	}

	if cfg.TUI {
		p := tea.NewProgram(tui.NewModel(report, store, runID), tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("error running viewer: %w", err)
		}
	}
	return nil
}

// analyze reads the log named by cfg, writes the output file and
// optionally stores the report
func analyze(ctx context.Context, cfg config.Config, log *slog.Logger, store *storage.Storage, stdout io.Writer) (model.Report, string, error) {
	f, err := logfile.Open(cfg.Input)
	if err != nil {
		return model.Report{}, "", err
	}
	defer f.Close()

	cat := f.Catalog()
	if cfg.Header {
		return model.Report{}, "", render.Catalog(stdout, cat.Header(), cat.Schemas())
	}
	log.Debug("catalog loaded", "version", cat.Header().Version, "structs", cat.Len())

	// fail on an unsupported extension before reading the whole log
	if _, err := render.ForPath(cfg.Output); err != nil {
		return model.Report{}, "", err
	}

	analyzer, err := stats.NewAnalyzer(stats.Options{
		Kind:           cfg.Struct,
		Sample:         cfg.Sample,
		Processes:      cfg.Processes,
		FilterOutliers: cfg.FilterOutliers,
		Priorities:     cfg.Priorities,
	}, log)
	if err != nil {
		return model.Report{}, "", err
	}
	if err := analyzer.Check(cat); err != nil {
		return model.Report{}, "", fmt.Errorf("%s: %w", cfg.Input, err)
	}
	if err := analyzer.Run(ctx, f); err != nil {
		return model.Report{}, "", err
	}
	log.Info("log decoded", "records", f.Count())

	report, err := analyzer.Report(cfg.Input)
	if err != nil {
		return model.Report{}, "", err
	}

	if err := writeOutput(cfg.Output, report); err != nil {
		return model.Report{}, "", err
	}

	if cfg.Priorities {
		p := analyzer.Priorities()
		if err := render.Priorities(stdout, "pid", p.ProcessList()); err != nil {
			return model.Report{}, "", err
		}
		if err := render.Priorities(stdout, "tid", p.ThreadList()); err != nil {
			return model.Report{}, "", err
		}
	}

	var runID string
	if store != nil {
		runID, err = store.SaveReport(ctx, report)
		if err != nil {
			return model.Report{}, "", fmt.Errorf("failed to store report: %w", err)
		}
		log.Info("report stored", "run", runID, "db", cfg.DB)
	}
	return report, runID, nil
}

func writeOutput(path string, report model.Report) error {
	r, err := render.ForPath(path)
	if err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := r.Render(out, report.Metric, report.Table); err != nil {
		out.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return err
	}

	if st, err := os.Stat(path); err == nil {
		slog.Info("report written", "path", path, "size", units.HumanSize(float64(st.Size())))
	}
	return nil
}

func listRuns(ctx context.Context, store *storage.Storage, w io.Writer) error {
	runs, err := store.ListRuns(ctx)
	if err != nil {
		return err
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"run", "created", "source", "struct", "sample", "rows"})
	for _, r := range runs {
		tw.AppendRow(table.Row{r.ID, units.HumanDuration(time.Since(r.Created)) + " ago", r.Source, r.Kind, r.Metric, r.RowCount})
	}
	_, err = io.WriteString(w, tw.Render()+"\n")
	return err
}

// printColumns prints the stored samples of the named columns of a run
func printColumns(ctx context.Context, store *storage.Storage, runID, metric string, columns []string, w io.Writer) error {
	for _, column := range columns {
		points, err := store.Query(ctx, runID, column)
		if err != nil {
			return err
		}
		if len(points) == 0 {
			slog.Warn("no samples stored for column", "run", runID, "column", column)
			continue
		}

		ts := make([]int64, len(points))
		values := make([]float64, len(points))
		for i, p := range points {
			ts[i], values[i] = p.Timestamp, p.Value
		}
		if err := render.Series(w, metric, column, ts, values); err != nil {
			return err
		}
	}
	return nil
}
