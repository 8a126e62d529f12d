package storage

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
)

type fakeUploader struct {
	key         string
	body        []byte
	contentType string
	err         error
}

func (f *fakeUploader) Upload(_ context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	f.key = objectName
	f.body = body
	f.contentType = contentType
	return &minio.UploadInfo{Key: objectName, Size: size}, nil
}

func TestArchiveSaverUploadsUnderJobKey(t *testing.T) {
	uploader := &fakeUploader{}
	saver := NewArchiveSaver(uploader, "job-1")

	if err := saver.Save(context.Background(), []byte("PK"), "PortfolioX-User-Portfolio.zip"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if uploader.key != "exports/job-1/PortfolioX-User-Portfolio.zip" {
		t.Fatalf("key: got %q", uploader.key)
	}
	if saver.Key != uploader.key || saver.Size != 2 {
		t.Fatalf("saver state: %+v", saver)
	}
	if uploader.contentType != "application/zip" {
		t.Fatalf("content type: got %q", uploader.contentType)
	}
}

func TestArchiveSaverPropagatesUploadError(t *testing.T) {
	saver := NewArchiveSaver(&fakeUploader{err: errors.New("unreachable")}, "job-2")
	if err := saver.Save(context.Background(), []byte("PK"), "a.zip"); err == nil {
		t.Fatal("expected upload error")
	}
	if saver.Key != "" {
		t.Fatalf("key should stay empty on failure, got %q", saver.Key)
	}
}

func TestArchiveKeyStripsDirectories(t *testing.T) {
	if got := ArchiveKey(" job ", "../../etc/passwd"); got != "exports/job/passwd" {
		t.Fatalf("got %q", got)
	}
}

func TestIsNoSuchKey(t *testing.T) {
	if !IsNoSuchKey(minio.ErrorResponse{Code: "NoSuchKey"}) {
		t.Fatal("NoSuchKey response should match")
	}
	if IsNoSuchKey(nil) {
		t.Fatal("nil should not match")
	}
	if !IsNoSuchBucket(errors.New("The specified bucket does not exist")) {
		t.Fatal("bucket message should match")
	}
}

func TestExpiryDaysRoundsUp(t *testing.T) {
	cases := map[time.Duration]int{
		time.Minute:        1,
		24 * time.Hour:     1,
		25 * time.Hour:     2,
		7 * 24 * time.Hour: 7,
	}
	for ttl, want := range cases {
		if got := ExpiryDays(ttl); got != want {
			t.Errorf("ExpiryDays(%s) = %d, want %d", ttl, got, want)
		}
	}
}

func TestPreviewKey(t *testing.T) {
	if got := PreviewKey(" job-1 "); got != "previews/job-1/preview.jpg" {
		t.Fatalf("preview key: %q", got)
	}
}
