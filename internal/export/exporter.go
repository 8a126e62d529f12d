// Package export sequences one site export: render the text assets, decode
// and scan every image, minify the attribution guard, assemble the archive
// and hand it to a Saver. Per-image problems and minifier failures degrade
// the result; only archive or save failures fail the export.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"portfolioX/internal/archive"
	"portfolioX/internal/branding"
	"portfolioX/internal/imagecodec"
	"portfolioX/internal/metrics"
	"portfolioX/internal/portfolio"
	"portfolioX/internal/site"
)

const defaultConcurrency = 4

// ImageScanner inspects decoded image bytes. A non-nil error drops the image.
type ImageScanner interface {
	Scan(ctx context.Context, data []byte) error
}

// Options configures an Exporter. Zero values are usable.
type Options struct {
	Minifier      branding.Minifier
	Scanner       ImageScanner
	Logger        *slog.Logger
	Now           func() time.Time
	MaxImageBytes int64
	Concurrency   int
}

// Exporter holds configuration only; every call builds its archive from
// scratch, so one Exporter can serve many sequential or parallel exports.
type Exporter struct {
	minifier      branding.Minifier
	scanner       ImageScanner
	logger        *slog.Logger
	now           func() time.Time
	maxImageBytes int64
	concurrency   int
}

// Result is a finished archive.
type Result struct {
	Archive       []byte
	Filename      string
	Size          int
	Entries       []string
	Diagnostics   []archive.Diagnostic
	GuardMinified bool
}

// MissingPaths lists the archive paths of skipped images.
func (r *Result) MissingPaths() []string {
	paths := make([]string, 0, len(r.Diagnostics))
	for _, d := range r.Diagnostics {
		paths = append(paths, d.Path)
	}
	return paths
}

// New builds an Exporter.
func New(opts Options) *Exporter {
	e := &Exporter{
		minifier:      opts.Minifier,
		scanner:       opts.Scanner,
		logger:        opts.Logger,
		now:           opts.Now,
		maxImageBytes: opts.MaxImageBytes,
		concurrency:   opts.Concurrency,
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.concurrency <= 0 {
		e.concurrency = defaultConcurrency
	}
	return e
}

// Export builds the archive for record and delivers it through saver.
func (e *Exporter) Export(ctx context.Context, record portfolio.Record, saver Saver) (*Result, error) {
	if saver == nil {
		return nil, errors.New("export: nil saver")
	}
	start := time.Now()

	result, err := e.Build(ctx, record)
	if err != nil {
		metrics.ObserveExport(metrics.OutcomeFailed, time.Since(start), 0)
		return nil, err
	}

	if err := saver.Save(ctx, result.Archive, result.Filename); err != nil {
		metrics.ObserveExport(metrics.OutcomeFailed, time.Since(start), 0)
		return nil, fmt.Errorf("save archive: %w", err)
	}

	metrics.ObserveExport(metrics.OutcomeSuccess, time.Since(start), len(result.Archive))
	e.logger.Info("portfolio archive exported",
		slog.String("filename", result.Filename),
		slog.Int("size", len(result.Archive)),
		slog.Int("skipped_images", len(result.Diagnostics)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

// Build produces the archive bytes without delivering them.
func (e *Exporter) Build(ctx context.Context, record portfolio.Record) (*Result, error) {
	now := e.now()
	plan := site.PlanImages(record)
	assets := plan.Assets()
	outcomes := make([]archive.ImageOutcome, len(assets))

	var markup, stylesheet string
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency + 1)

	g.Go(func() error {
		var err error
		if markup, err = site.RenderMarkupWithPlan(record, plan); err != nil {
			return err
		}
		stylesheet, err = site.RenderStylesheet(record.Theme.ColorHex)
		return err
	})
	for i, asset := range assets {
		i, asset := i, asset
		g.Go(func() error {
			outcomes[i] = e.prepareImage(gctx, asset)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("render site: %w", err)
	}

	guard, minified := branding.TryMinify(e.minifier, branding.Script())
	if !minified && e.minifier != nil {
		metrics.GuardMinifyFallback()
		e.logger.Warn("guard script minification failed, packaging original source")
	}

	packed, err := archive.Assemble(archive.Contents{
		Markup:     markup,
		Stylesheet: stylesheet,
		Behavior:   site.RenderBehavior(),
		Guard:      guard,
		License:    branding.LicenseText(now.Year()),
		Images:     outcomes,
		ModifiedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("assemble archive: %w", err)
	}

	for _, d := range packed.Diagnostics {
		metrics.AssetSkipped(string(d.Kind))
		e.logger.Warn("image skipped",
			slog.String("path", d.Path),
			slog.String("kind", string(d.Kind)),
			slog.String("label", d.Label),
			slog.String("reason", d.Reason),
		)
	}

	return &Result{
		Archive:       packed.Data,
		Filename:      ArchiveFilename,
		Size:          len(packed.Data),
		Entries:       packed.Entries,
		Diagnostics:   packed.Diagnostics,
		GuardMinified: minified,
	}, nil
}

func (e *Exporter) prepareImage(ctx context.Context, asset site.ImageAsset) archive.ImageOutcome {
	outcome := archive.ImageOutcome{Asset: asset}

	img, err := imagecodec.DecodeLimit(asset.Source, e.maxImageBytes)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	if !img.IsImage() {
		e.logger.Debug("decoded payload is not a recognised image",
			slog.String("path", asset.Path),
			slog.String("detected_type", img.DetectedType),
		)
	}

	if e.scanner != nil {
		if err := e.scanner.Scan(ctx, img.Data); err != nil {
			outcome.Err = fmt.Errorf("scan: %w", err)
			return outcome
		}
	}

	outcome.Data = img.Data
	return outcome
}
