// Command watchdog runs the data-quality gate over a batch file from the
// command line: load, validate, partition, export, and print the summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"watchdog/internal/config"
	"watchdog/internal/dataprocessing"
	"watchdog/internal/engine"
	"watchdog/internal/exporter"
	"watchdog/internal/infrastructure"
	"watchdog/internal/quarantine"
	"watchdog/internal/report"
	"watchdog/internal/validation"
	"watchdog/pkg/contracts/domain"
)

func main() {
	in := flag.String("in", "", "input batch file (.csv, .xlsx, .xlsm)")
	sqlConn := flag.String("sql-conn", "", "Postgres connection string (alternative to -in)")
	sqlQuery := flag.String("sql-query", "", "query producing the batch when -sql-conn is set")
	rulesPath := flag.String("rules", "", "rules document (YAML); defaults to the built-in e-commerce profile")
	outDir := flag.String("out", ".", "output directory for clean/failed files")
	sheet := flag.String("sheet", "", "workbook sheet name (defaults to the first sheet)")
	workers := flag.Int("workers", 1, "scan parallelism for pure rules")
	writeXLSX := flag.Bool("xlsx", false, "also write a two-sheet result workbook")
	strict := flag.Bool("strict", false, "exit with status 1 when the gate fails")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger, err := infrastructure.InitializeLogger(config.LoggingConfig{
		Level:  level,
		Format: "text",
		Output: "console",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(2)
	}

	if err := run(logger, *in, *sqlConn, *sqlQuery, *rulesPath, *outDir, *sheet, *workers, *writeXLSX, *strict); err != nil {
		logger.Error("run failed", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
}

func run(logger *slog.Logger, in, sqlConn, sqlQuery, rulesPath, outDir, sheet string, workers int, writeXLSX, strict bool) error {
	ctx := context.Background()
	fv := validation.NewFileValidator(logger)

	batch, err := loadBatch(ctx, fv, in, sqlConn, sqlQuery, sheet)
	if err != nil {
		return err
	}

	doc := config.DefaultRulesDocument()
	if rulesPath != "" {
		doc, err = config.LoadRulesDocument(rulesPath)
		if err != nil {
			return err
		}
	}
	set, mapping, err := doc.Build()
	if err != nil {
		return err
	}

	if err := fv.ValidateOutputDirectory(outDir); err != nil {
		return err
	}

	eng := engine.New(logger, engine.WithWorkers(workers))
	verdicts, err := eng.Validate(ctx, batch, set, mapping)
	if err != nil {
		return err
	}

	clean, flagged, err := quarantine.Partition(batch, verdicts)
	if err != nil {
		return err
	}

	summary := report.Summarize("", verdicts)

	csvw := exporter.NewCSVWriter(logger)
	cleanPath := filepath.Join(outDir, "clean_transactions.csv")
	flaggedPath := filepath.Join(outDir, "failed_transactions.csv")
	if err := csvw.WriteBatch(cleanPath, clean); err != nil {
		return err
	}
	if err := csvw.WriteBatch(flaggedPath, flagged); err != nil {
		return err
	}
	if writeXLSX {
		workbook := filepath.Join(outDir, "validation_results.xlsx")
		if err := exporter.WriteResultWorkbook(workbook, clean, flagged, logger); err != nil {
			return err
		}
	}

	fmt.Print(report.RenderText(summary))
	fmt.Printf("clean rows written to %s\n", cleanPath)
	fmt.Printf("flagged rows written to %s\n", flaggedPath)

	if strict && !summary.Passed {
		os.Exit(1)
	}
	return nil
}

func loadBatch(ctx context.Context, fv *validation.FileValidator, in, sqlConn, sqlQuery, sheet string) (*domain.Batch, error) {
	switch {
	case sqlConn != "":
		if sqlQuery == "" {
			return nil, fmt.Errorf("-sql-query is required with -sql-conn")
		}
		return dataprocessing.LoadSQL(ctx, sqlConn, sqlQuery)
	case in != "":
		if err := fv.ValidateInputFile(in); err != nil {
			return nil, err
		}
		return dataprocessing.LoadFile(in, sheet)
	default:
		return nil, fmt.Errorf("either -in or -sql-conn is required")
	}
}
