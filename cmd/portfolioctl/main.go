// portfolioctl exports a portfolio record to a static site archive without
// the API or worker: the record is read from a JSON or YAML file and the zip
// is written into a local directory.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"portfolioX/internal/branding"
	"portfolioX/internal/export"
	"portfolioX/internal/portfolio"
	"portfolioX/internal/preview"
	"portfolioX/internal/scan"
	"portfolioX/internal/site"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return errors.New("missing command")
	}

	switch args[0] {
	case "export":
		return runExport(args[1:], stdin, stdout, stderr)
	case "sample":
		return runSample(args[1:], stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	default:
		printUsage(stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `usage: portfolioctl <command> [flags]

commands:
  export   build the site archive from a record file
  sample   print the sample record`)
}

func runExport(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var (
		input         string
		format        string
		outDir        string
		maxImageBytes int64
		concurrency   int
		noMinify      bool
		clamdAddr     string
		previewPath   string
		verbose       bool
	)

	flagSet := pflag.NewFlagSet("portfolioctl export", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&input, "input", "i", "-", "record file (.json, .yaml, .yml); - reads stdin")
	flagSet.StringVar(&format, "format", "", "record format when it cannot be inferred: json or yaml")
	flagSet.StringVarP(&outDir, "out", "o", ".", "directory the archive is written to")
	flagSet.Int64Var(&maxImageBytes, "max-image-bytes", 5<<20, "skip images whose decoded size exceeds this")
	flagSet.IntVar(&concurrency, "concurrency", 4, "images decoded in parallel")
	flagSet.BoolVar(&noMinify, "no-minify", false, "package the attribution script unminified")
	flagSet.StringVar(&clamdAddr, "clamd", os.Getenv("CLAMD_ADDRESS"), "clamd address used to scan images (empty disables scanning)")
	flagSet.StringVar(&previewPath, "preview", "", "also write a JPEG preview of the site to this path (needs Chromium)")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	record, err := loadRecord(input, format, stdin)
	if err != nil {
		return err
	}

	opts := export.Options{
		Logger:        logger,
		MaxImageBytes: maxImageBytes,
		Concurrency:   concurrency,
	}
	if !noMinify {
		opts.Minifier = branding.EsbuildMinifier{}
	}
	if scanner := scan.NewClamdScanner(clamdAddr); scanner != nil {
		opts.Scanner = scanner
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := export.New(opts).Export(ctx, record, export.FileSaver{Dir: outDir})
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "wrote %s (%d bytes)\n", filepath.Join(outDir, result.Filename), result.Size)
	for _, d := range result.Diagnostics {
		fmt.Fprintf(stdout, "  skipped %s (%s %q): %s\n", d.Path, d.Kind, d.Label, d.Reason)
	}

	if previewPath != "" {
		if err := writePreview(ctx, logger, record, previewPath); err != nil {
			logger.Warn("preview failed", slog.Any("error", err))
		} else {
			fmt.Fprintf(stdout, "wrote %s\n", previewPath)
		}
	}
	return nil
}

func runSample(args []string, stdout, stderr io.Writer) error {
	var format string
	flagSet := pflag.NewFlagSet("portfolioctl sample", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	return writeSample(stdout, strings.ToLower(strings.TrimSpace(format)))
}

func writePreview(ctx context.Context, logger *slog.Logger, record portfolio.Record, path string) error {
	plan := site.PlanImages(record)
	markup, err := site.RenderMarkupWithPlan(record, plan)
	if err != nil {
		return err
	}
	stylesheet, err := site.RenderStylesheet(record.Theme.ColorHex)
	if err != nil {
		return err
	}
	shot, err := preview.NewRenderer(logger).Capture(ctx, preview.Document(markup, stylesheet, plan.Assets()))
	if err != nil {
		return err
	}
	return os.WriteFile(path, shot, 0o644)
}
