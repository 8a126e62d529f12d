// Package archive packs the generated site into a single zip file with the
// fixed layout index.html, LICENSE.txt, assets/, protected/ and images/.
package archive

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	"portfolioX/internal/branding"
	"portfolioX/internal/site"
)

// Directory entries written before their files, like a browser zip library
// creating folders.
const (
	assetsDir    = "assets/"
	protectedDir = "protected/"
	imagesDir    = site.ImagesDir + "/"
)

var defaultModified = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// ImageOutcome is the result of preparing one image for packaging.
// Exactly one of Data (non-empty) or Err is meaningful.
type ImageOutcome struct {
	Asset site.ImageAsset
	Data  []byte
	Err   error
}

// Contents is everything that goes into one archive.
type Contents struct {
	Markup     string
	Stylesheet string
	Behavior   string
	Guard      string
	License    string
	Images     []ImageOutcome
	// ModifiedAt stamps every entry. Zero means 1980-01-01 UTC, which keeps
	// archives byte-identical across runs.
	ModifiedAt time.Time
}

// Diagnostic 描述一个被跳过的图片资源。
type Diagnostic struct {
	Path   string         `json:"path"`
	Kind   site.ImageKind `json:"kind"`
	Label  string         `json:"label"`
	Reason string         `json:"reason"`
}

// Result is a finished archive plus the images that were left out.
type Result struct {
	Data        []byte
	Entries     []string
	Diagnostics []Diagnostic
}

// Assemble writes contents into a fresh zip archive. Problems with single
// images become Diagnostics; only a failure of the archive itself is
// returned as an error.
func Assemble(contents Contents) (*Result, error) {
	var buf bytes.Buffer
	b := newBuilder(&buf, contents.ModifiedAt)

	textFiles := []struct {
		name string
		body string
	}{
		{site.MarkupPath, contents.Markup},
		{branding.LicensePath, contents.License},
		{assetsDir, ""},
		{site.StylesheetPath, contents.Stylesheet},
		{site.BehaviorPath, contents.Behavior},
		{protectedDir, ""},
		{branding.ScriptPath, contents.Guard},
		{imagesDir, ""},
	}
	for _, f := range textFiles {
		if err := b.writeText(f.name, f.body); err != nil {
			return nil, err
		}
	}

	var diagnostics []Diagnostic
	for _, outcome := range contents.Images {
		if reason := b.writeImage(outcome); reason != "" {
			diagnostics = append(diagnostics, Diagnostic{
				Path:   outcome.Asset.Path,
				Kind:   outcome.Asset.Kind,
				Label:  outcome.Asset.Label,
				Reason: reason,
			})
		}
	}

	if err := b.zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}

	return &Result{
		Data:        buf.Bytes(),
		Entries:     b.entries,
		Diagnostics: diagnostics,
	}, nil
}

type builder struct {
	zw       *zip.Writer
	modified time.Time
	seen     map[string]struct{}
	entries  []string
}

func newBuilder(w io.Writer, modified time.Time) *builder {
	if modified.IsZero() {
		modified = defaultModified
	}
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})
	return &builder{
		zw:       zw,
		modified: modified,
		seen:     make(map[string]struct{}),
	}
}

func (b *builder) writeText(name, body string) error {
	method := zip.Deflate
	if isDir(name) {
		method = zip.Store
	}
	w, err := b.create(name, method)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.WriteString(w, body); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// writeImage returns a non-empty reason when the image was skipped.
func (b *builder) writeImage(outcome ImageOutcome) string {
	name := outcome.Asset.Path
	switch {
	case outcome.Err != nil:
		return outcome.Err.Error()
	case len(outcome.Data) == 0:
		return "no image data"
	case name == "" || isDir(name):
		return "invalid archive path"
	}
	if _, dup := b.seen[name]; dup {
		return "duplicate archive path"
	}

	// JPEG/PNG are already compressed.
	w, err := b.create(name, zip.Store)
	if err != nil {
		return fmt.Sprintf("create entry: %v", err)
	}
	if _, err := w.Write(outcome.Data); err != nil {
		return fmt.Sprintf("write entry: %v", err)
	}
	return ""
}

func (b *builder) create(name string, method uint16) (io.Writer, error) {
	w, err := b.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   method,
		Modified: b.modified,
	})
	if err != nil {
		return nil, err
	}
	b.seen[name] = struct{}{}
	b.entries = append(b.entries, name)
	return w, nil
}

func isDir(name string) bool {
	return len(name) > 0 && name[len(name)-1] == '/'
}
