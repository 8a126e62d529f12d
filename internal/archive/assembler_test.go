package archive

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"

	"portfolioX/internal/site"
)

func baseContents() Contents {
	return Contents{
		Markup:     "<html></html>",
		Stylesheet: ":root { --primary-color: #10b981; }",
		Behavior:   "console.log(1)",
		Guard:      "document.getElementById('portfolio-footer')",
		License:    "LICENSE",
	}
}

func readArchive(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	files := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		body, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		files[f.Name] = body
	}
	return files
}

func TestAssembleWritesFixedLayout(t *testing.T) {
	contents := baseContents()
	contents.Images = []ImageOutcome{
		{Asset: site.ImageAsset{Path: "images/profile.jpg", Kind: site.KindProfile}, Data: []byte{0xff, 0xd8, 0xff}},
		{Asset: site.ImageAsset{Path: "images/project-1-1.jpg", Kind: site.KindProjectImage}, Data: []byte("img")},
	}

	result, err := Assemble(contents)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	want := []string{
		"index.html", "LICENSE.txt",
		"assets/", "assets/styles.css", "assets/script.js",
		"protected/", "protected/branding.js",
		"images/", "images/profile.jpg", "images/project-1-1.jpg",
	}
	if len(result.Entries) != len(want) {
		t.Fatalf("entries = %v, want %v", result.Entries, want)
	}
	for i := range want {
		if result.Entries[i] != want[i] {
			t.Fatalf("entries = %v, want %v", result.Entries, want)
		}
	}

	files := readArchive(t, result.Data)
	if string(files["index.html"]) != contents.Markup {
		t.Fatalf("index.html roundtrip mismatch")
	}
	if string(files["protected/branding.js"]) != contents.Guard {
		t.Fatalf("branding.js roundtrip mismatch")
	}
	if !bytes.Equal(files["images/profile.jpg"], []byte{0xff, 0xd8, 0xff}) {
		t.Fatalf("profile image roundtrip mismatch")
	}
	if len(result.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics %+v", result.Diagnostics)
	}
}

func TestAssembleSkipsFailedImages(t *testing.T) {
	contents := baseContents()
	contents.Images = []ImageOutcome{
		{Asset: site.ImageAsset{Path: "images/profile.jpg", Kind: site.KindProfile, Label: "profile image"}, Err: errors.New("payload is not valid base64")},
		{Asset: site.ImageAsset{Path: "images/company-acme.jpg", Kind: site.KindCompanyLogo, Label: "Acme"}},
		{Asset: site.ImageAsset{Path: "images/project-1-1.jpg", Kind: site.KindProjectImage}, Data: []byte("ok")},
	}

	result, err := Assemble(contents)
	if err != nil {
		t.Fatalf("assemble must not fail on bad images: %v", err)
	}

	files := readArchive(t, result.Data)
	if _, ok := files["index.html"]; !ok {
		t.Fatalf("index.html missing")
	}
	if _, ok := files["images/profile.jpg"]; ok {
		t.Fatalf("corrupt profile image must be omitted")
	}
	if _, ok := files["images/company-acme.jpg"]; ok {
		t.Fatalf("empty logo must be omitted")
	}
	if _, ok := files["images/project-1-1.jpg"]; !ok {
		t.Fatalf("healthy image must be kept")
	}

	if len(result.Diagnostics) != 2 {
		t.Fatalf("expected 2 diagnostics, got %+v", result.Diagnostics)
	}
	if result.Diagnostics[0].Path != "images/profile.jpg" || result.Diagnostics[0].Reason != "payload is not valid base64" {
		t.Fatalf("unexpected diagnostic %+v", result.Diagnostics[0])
	}
	if result.Diagnostics[1].Kind != site.KindCompanyLogo {
		t.Fatalf("unexpected diagnostic %+v", result.Diagnostics[1])
	}
}

func TestAssembleRejectsDuplicatePaths(t *testing.T) {
	contents := baseContents()
	contents.Images = []ImageOutcome{
		{Asset: site.ImageAsset{Path: "images/a.jpg"}, Data: []byte("first")},
		{Asset: site.ImageAsset{Path: "images/a.jpg"}, Data: []byte("second")},
		{Asset: site.ImageAsset{Path: "index.html"}, Data: []byte("clobber")},
	}

	result, err := Assemble(contents)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	files := readArchive(t, result.Data)
	if string(files["images/a.jpg"]) != "first" {
		t.Fatalf("first image must win, got %q", files["images/a.jpg"])
	}
	if string(files["index.html"]) != contents.Markup {
		t.Fatalf("image must not replace index.html")
	}
	if len(result.Diagnostics) != 2 {
		t.Fatalf("expected 2 duplicate diagnostics, got %+v", result.Diagnostics)
	}
}

func TestAssembleIsReproducible(t *testing.T) {
	contents := baseContents()
	contents.ModifiedAt = time.Date(2026, time.March, 4, 5, 6, 8, 0, time.UTC)
	contents.Images = []ImageOutcome{{Asset: site.ImageAsset{Path: "images/profile.jpg"}, Data: []byte("x")}}

	first, err := Assemble(contents)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	second, err := Assemble(contents)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if !bytes.Equal(first.Data, second.Data) {
		t.Fatalf("archives differ between runs")
	}
}
