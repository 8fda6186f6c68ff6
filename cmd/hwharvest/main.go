package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"hwharvest/internal/config"
	sheetsconnector "hwharvest/internal/connectors/sheets"
	"hwharvest/internal/pipeline"
	"hwharvest/internal/site"
	"hwharvest/internal/storage"
	"hwharvest/internal/util"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	cmd := os.Args[1]
	switch cmd {
	case "scrape":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		urls := fs.String("urls", "", "comma-separated page urls (default STORE_URLS)")
		outJSON := fs.String("out-json", "", "output json path")
		outXLSX := fs.String("out-xlsx", "", "output xlsx path")
		push := fs.Bool("push", false, "push the import sheet to google sheets")
		_ = fs.Parse(os.Args[2:])

		pages := cfg.StoreURLs
		if strings.TrimSpace(*urls) != "" {
			pages = splitURLs(*urls)
		}
		if len(pages) == 0 {
			must(fmt.Errorf("no page urls: set STORE_URLS or pass --urls"))
		}

		runner := pipeline.NewRunner(site.NewClient(cfg), db, logger)
		result, err := runner.Run(context.Background(), pages)
		must(err)

		jsonPath := util.FirstNonEmpty(*outJSON, filepath.Join(cfg.OutputDir, "products.json"))
		xlsxPath := util.FirstNonEmpty(*outXLSX, filepath.Join(cfg.OutputDir, "import.xlsx"))
		must(pipeline.ExportRecordsToJSON(result.Records, jsonPath))
		must(pipeline.ExportRecordsToXLSX(result.Records, xlsxPath))

		if *push {
			sink, err := sheetsconnector.NewConnector(cfg)
			must(err)
			must(sink.Push(context.Background(), pipeline.ImportHeader, pipeline.BuildImportRows(result.Records)))
		}
		fmt.Printf("scrape done runId=%s pages=%d emitted=%d duplicates=%d skipped=%d json=%s xlsx=%s\n",
			result.Summary.ID, result.Summary.Pages, result.Summary.Emitted, result.Summary.Duplicates, result.Summary.Skipped, jsonPath, xlsxPath)
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input file path")
		inType := fs.String("type", "", "text|html|xlsx|pdf")
		outJSON := fs.String("out-json", "", "output json path")
		outXLSX := fs.String("out-xlsx", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if *input == "" || *inType == "" {
			must(fmt.Errorf("--input and --type are required"))
		}
		if *outJSON == "" && *outXLSX == "" {
			must(fmt.Errorf("--out-json or --out-xlsx is required"))
		}

		listings, err := pipeline.ListingsFromInput(cfg, *inType, *input)
		must(err)
		records, summary := pipeline.AssembleAll(listings)
		if *outJSON != "" {
			must(pipeline.ExportRecordsToJSON(records, *outJSON))
		}
		if *outXLSX != "" {
			must(pipeline.ExportRecordsToXLSX(records, *outXLSX))
		}
		fmt.Printf("run done listings=%d emitted=%d duplicates=%d skipped=%d\n",
			summary.Listings, summary.Emitted, summary.Duplicates, summary.Skipped)
	case "export:json":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		run := fs.String("run", "last", "run id or 'last'")
		out := fs.String("out", "", "output json path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--out is required"))
		}
		runID, err := resolveRunID(db, *run)
		must(err)
		records, err := db.ListRunProducts(runID)
		must(err)
		if len(records) == 0 {
			must(fmt.Errorf("no products for runId=%s", runID))
		}
		must(pipeline.ExportRecordsToJSON(records, *out))
		fmt.Printf("exported %d records runId=%s to %s\n", len(records), runID, *out)
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		run := fs.String("run", "last", "run id or 'last'")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--out is required"))
		}
		runID, err := resolveRunID(db, *run)
		must(err)
		records, err := db.ListRunProducts(runID)
		must(err)
		if len(records) == 0 {
			must(fmt.Errorf("no products for runId=%s", runID))
		}
		must(pipeline.ExportRecordsToXLSX(records, *out))
		fmt.Printf("exported %d records runId=%s to %s\n", len(records), runID, *out)
	case "push:sheets":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		run := fs.String("run", "last", "run id or 'last'")
		_ = fs.Parse(os.Args[2:])
		runID, err := resolveRunID(db, *run)
		must(err)
		records, err := db.ListRunProducts(runID)
		must(err)
		if len(records) == 0 {
			must(fmt.Errorf("no products for runId=%s", runID))
		}
		sink, err := sheetsconnector.NewConnector(cfg)
		must(err)
		must(sink.Push(context.Background(), pipeline.ImportHeader, pipeline.BuildImportRows(records)))
		fmt.Printf("pushed %d rows runId=%s tab=%s\n", len(records), runID, cfg.SheetsTab)
	case "runs:list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 20, "max runs")
		_ = fs.Parse(os.Args[2:])
		runs, err := db.ListRuns(*limit)
		must(err)
		for _, r := range runs {
			fmt.Printf("%s started=%s finished=%s pages=%d listings=%d emitted=%d duplicates=%d skipped=%d\n",
				r.ID, r.StartedAt, r.FinishedAt, r.Pages, r.Listings, r.Emitted, r.Duplicates, r.Skipped)
		}
	default:
		usage()
		os.Exit(1)
	}
}

func resolveRunID(db *storage.DB, value string) (string, error) {
	id := strings.TrimSpace(value)
	if id != "" && id != "last" {
		return id, nil
	}
	last, err := db.GetMetadata("last_run_id")
	if err != nil {
		return "", err
	}
	if last == nil || strings.TrimSpace(*last) == "" {
		return "", fmt.Errorf("no stored runs")
	}
	return *last, nil
}

func splitURLs(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func usage() {
	fmt.Println("usage: hwharvest <command>")
	fmt.Println("commands:")
	fmt.Println("  scrape [--urls=a,b] [--out-json=...] [--out-xlsx=...] [--push]")
	fmt.Println("  run --input=... --type=text|html|xlsx|pdf [--out-json=...] [--out-xlsx=...]")
	fmt.Println("  export:json --run=<id|last> --out=./out/products.json")
	fmt.Println("  export:xlsx --run=<id|last> --out=./out/import.xlsx")
	fmt.Println("  push:sheets --run=<id|last>")
	fmt.Println("  runs:list [--limit=20]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
