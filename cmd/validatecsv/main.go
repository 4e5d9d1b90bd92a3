package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"adpulse/internal/ingest"
)

// validate runs the ingestion validator against files on disk without
// touching the server or the database. Useful for checking an export
// before uploading it.
func main() {
	asJSON := flag.Bool("json", false, "emit the validation result as JSON")
	quiet := flag.Bool("quiet", false, "suppress per-row warnings")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: validate [-json] [-quiet] <file.csv|file.xlsx> ...")
		os.Exit(2)
	}

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	if !*quiet && !*asJSON {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	svc := ingest.NewService(logger)

	ctx := context.Background()
	failed := false

	for _, path := range flag.Args() {
		result, err := validateFile(ctx, svc, path)
		if err != nil {
			failed = true
			fmt.Fprintf(os.Stderr, "%s: %v\n", filepath.Base(path), err)
			continue
		}

		if *asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				fmt.Fprintf(os.Stderr, "%s: encoding result: %v\n", filepath.Base(path), err)
				failed = true
			}
			continue
		}

		fmt.Printf("%s: %d rows accepted, %d dropped, %d warnings\n",
			filepath.Base(path), len(result.Records), result.Dropped, len(result.Warnings))
		if !*quiet {
			for _, w := range result.Warnings {
				fmt.Printf("  warning: %s\n", w)
			}
		}
	}

	if failed {
		os.Exit(1)
	}
}

// validateFile reads one file and runs it through the upload validator.
func validateFile(ctx context.Context, svc *ingest.Service, path string) (*ingest.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return svc.Validate(ctx, data, filepath.Base(path))
}
