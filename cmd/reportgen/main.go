// Command reportgen reconciles a directory of attendance check-in exports
// into one styled Excel report.
//
// Usage:
//
//	reportgen -in uploads -out reports/Attendance_Summary.xlsx [-allow-name-fallback] [-no-diagnostics] [-csv]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"attendcli/internal/attendance"
	"attendcli/internal/config"
	"attendcli/internal/exporter"
	"attendcli/internal/files"
	"attendcli/internal/infrastructure"
)

func main() {
	inDir := flag.String("in", "", "directory containing .xlsx check-in exports (default: configured input dir)")
	outPath := flag.String("out", "", "output workbook path (default: <output dir>/Attendance_Summary.xlsx)")
	allowNameFallback := flag.Bool("allow-name-fallback", false, "use normalized names as identity when email is missing or blank (less reliable)")
	noDiagnostics := flag.Bool("no-diagnostics", false, "omit the Diagnostics sheet")
	writeCSV := flag.Bool("csv", false, "also write one CSV file per result table next to the workbook")
	flag.Parse()

	if err := run(*inDir, *outPath, *allowNameFallback, *noDiagnostics, *writeCSV); err != nil {
		fmt.Fprintf(os.Stderr, "reportgen: %v\n", err)
		os.Exit(1)
	}
}

func run(inDir, outPath string, allowNameFallback, noDiagnostics, writeCSV bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return err
	}

	if inDir == "" {
		inDir = cfg.Paths.InputDir
	}
	if outPath == "" {
		outPath = filepath.Join(cfg.Paths.OutputDir, "Attendance_Summary.xlsx")
	}

	start := time.Now()
	ctx := infrastructure.EnsureTraceID(context.Background())

	discovery := files.NewDiscovery(".")
	inputs, err := discovery.FindExcelFiles(inDir)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no .xlsx files found in %s", inDir)
	}

	tables := make([]attendance.RawTable, 0, len(inputs))
	for _, input := range inputs {
		table, err := files.ReadTableFile(input.Path, input.Name)
		if err != nil {
			return err
		}
		tables = append(tables, table)
	}

	opts := attendance.Options{
		AllowNameFallback:  allowNameFallback,
		IncludeDiagnostics: !noDiagnostics,
	}
	// CLI flags override the configured pipeline defaults only when set;
	// absent flags fall back to config.
	if !isFlagSet("allow-name-fallback") {
		opts.AllowNameFallback = cfg.Pipeline.AllowNameFallback
	}
	if !isFlagSet("no-diagnostics") {
		opts.IncludeDiagnostics = cfg.Pipeline.IncludeDiagnostics
	}

	pipeline := attendance.NewPipeline(logger)
	result, err := pipeline.Run(ctx, tables, opts)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	writer := exporter.NewWorkbookWriter(logger)
	if err := writer.WriteFile(result, outPath); err != nil {
		return err
	}

	if writeCSV {
		csvWriter := exporter.NewCSVWriter(logger)
		if err := csvWriter.WriteTables(filepath.Dir(outPath), exporter.BuildTables(result)); err != nil {
			return err
		}
	}

	if opts.AllowNameFallback {
		logger.Warn("name fallback is enabled; students sharing a name or with inconsistent spellings may miscount")
	}

	logger.Info("report generated",
		slog.String("output", outPath),
		slog.Int("input_files", len(inputs)),
		slog.Int("students", len(result.Summary)),
		slog.Int("class_days", len(result.PerDay)),
		slog.Duration("elapsed", time.Since(start)))

	return nil
}

// isFlagSet reports whether the named flag was passed on the command line.
func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
