package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"portfolioX/internal/database"
	"portfolioX/internal/errcode"
	"portfolioX/internal/export"
	"portfolioX/internal/notify"
	"portfolioX/internal/portfolio"
	"portfolioX/internal/storage"
	"portfolioX/internal/tasks"
)

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	err     error
}

func (f *fakeStorage) Upload(_ context.Context, objectName string, reader io.Reader, size int64, _ string) (*minio.UploadInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[objectName] = body
	return &minio.UploadInfo{Key: objectName, Size: size}, nil
}

func (f *fakeStorage) DeleteObject(_ context.Context, objectKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, objectKey)
	f.deleted = append(f.deleted, objectKey)
	return nil
}

type fakePreviewer struct {
	html string
}

func (f *fakePreviewer) Capture(_ context.Context, html string) ([]byte, error) {
	f.html = html
	return []byte("jpeg"), nil
}

type harness struct {
	handler  *ExportTaskHandler
	jobs     *database.JobStore
	storage  *fakeStorage
	messages <-chan *redis.Message
}

func newHarness(t *testing.T, previewer Previewer) *harness {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	sub := rdb.Subscribe(context.Background(), notify.Channel("job-1"))
	t.Cleanup(func() { _ = sub.Close() })
	if _, err := sub.Receive(context.Background()); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jobs := database.NewJobStore(db)
	store := &fakeStorage{}
	exporter := export.New(export.Options{Logger: logger})

	return &harness{
		handler:  NewExportTaskHandler(jobs, exporter, store, rdb, previewer, logger),
		jobs:     jobs,
		storage:  store,
		messages: sub.Channel(),
	}
}

func (h *harness) createJob(t *testing.T, record portfolio.Record) {
	t.Helper()
	raw, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	if err := h.jobs.Create(context.Background(), &database.ExportJob{ID: "job-1", Record: datatypes.JSON(raw)}); err != nil {
		t.Fatalf("create job: %v", err)
	}
}

func (h *harness) nextMessage(t *testing.T) notify.Message {
	t.Helper()
	select {
	case raw := <-h.messages:
		var msg notify.Message
		if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
			t.Fatalf("decode message: %v", err)
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
	}
	return notify.Message{}
}

func exportTask(t *testing.T) *asynq.Task {
	t.Helper()
	task, err := tasks.NewPortfolioExportTask("job-1", "corr-1")
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	return task
}

func TestProcessTaskExportsAndReportsMissingImages(t *testing.T) {
	h := newHarness(t, nil)
	record := portfolio.DefaultRecord()
	record.Personal.ProfileImage = "data:image/png;base64,%%%"
	h.createJob(t, record)

	if err := h.handler.ProcessTask(context.Background(), exportTask(t)); err != nil {
		t.Fatalf("process task: %v", err)
	}

	if msg := h.nextMessage(t); msg.Status != "generating" {
		t.Fatalf("first message: %+v", msg)
	}
	done := h.nextMessage(t)
	if done.Status != "done" || done.ErrorCode != errcode.ResourceMissing {
		t.Fatalf("done message: %+v", done)
	}
	if len(done.MissingKeys) != 1 || done.MissingKeys[0] != "images/profile.jpg" {
		t.Fatalf("missing keys: %v", done.MissingKeys)
	}

	job, err := h.jobs.Get(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if job.Status != "done" || job.ObjectKey != "exports/job-1/"+export.ArchiveFilename {
		t.Fatalf("job: %+v", job)
	}
	if _, ok := h.storage.objects[job.ObjectKey]; !ok {
		t.Fatalf("archive not uploaded")
	}
	if !strings.Contains(string(job.Diagnostics), "images/profile.jpg") {
		t.Fatalf("diagnostics: %s", job.Diagnostics)
	}
}

func TestProcessTaskSkipsUnknownJob(t *testing.T) {
	h := newHarness(t, nil)
	if err := h.handler.ProcessTask(context.Background(), exportTask(t)); err != nil {
		t.Fatalf("expected nil for missing job, got %v", err)
	}
}

func fixedAttempt(retry int, final bool) func(context.Context) (int, bool) {
	return func(context.Context) (int, bool) { return retry, final }
}

func (h *harness) expectNoMessage(t *testing.T) {
	t.Helper()
	select {
	case raw := <-h.messages:
		t.Fatalf("unexpected notification: %s", raw.Payload)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestProcessTaskKeepsGeneratingBetweenRetries(t *testing.T) {
	h := newHarness(t, nil)
	h.storage.err = errors.New("minio down")
	h.createJob(t, portfolio.DefaultRecord())

	h.handler.attempt = fixedAttempt(0, false)
	err := h.handler.ProcessTask(context.Background(), exportTask(t))
	if err == nil || !strings.Contains(err.Error(), "minio down") {
		t.Fatalf("expected upload error, got %v", err)
	}
	if msg := h.nextMessage(t); msg.Status != "generating" {
		t.Fatalf("first message: %+v", msg)
	}
	h.expectNoMessage(t)

	job, _ := h.jobs.Get(context.Background(), "job-1")
	if job.Status != "generating" || job.FinishedAt != nil {
		t.Fatalf("job after retryable failure: %+v", job)
	}

	h.storage.err = nil
	h.handler.attempt = fixedAttempt(1, false)
	if err := h.handler.ProcessTask(context.Background(), exportTask(t)); err != nil {
		t.Fatalf("retry: %v", err)
	}
	job, _ = h.jobs.Get(context.Background(), "job-1")
	if job.Status != "done" || job.Attempt != 1 {
		t.Fatalf("job after retry: %+v", job)
	}
}

func TestProcessTaskFailsOnFinalAttempt(t *testing.T) {
	h := newHarness(t, nil)
	h.storage.err = errors.New("minio down")
	h.createJob(t, portfolio.DefaultRecord())

	h.handler.attempt = fixedAttempt(3, true)
	if err := h.handler.ProcessTask(context.Background(), exportTask(t)); err == nil {
		t.Fatal("expected error")
	}
	if msg := h.nextMessage(t); msg.Status != "generating" {
		t.Fatalf("first message: %+v", msg)
	}
	failed := h.nextMessage(t)
	if failed.Status != "failed" || failed.ErrorCode != errcode.SystemError || !strings.Contains(failed.ErrorMessage, "minio down") {
		t.Fatalf("failed message: %+v", failed)
	}

	job, _ := h.jobs.Get(context.Background(), "job-1")
	if job.Status != "failed" || !strings.Contains(job.Error, "minio down") {
		t.Fatalf("job: %+v", job)
	}
}

// doneFailingStore makes MarkDone fail after the archive was uploaded.
type doneFailingStore struct {
	*database.JobStore
	err error
}

func (s doneFailingStore) MarkDone(context.Context, *database.ExportJob, string, int64, datatypes.JSON) error {
	return s.err
}

func TestProcessTaskOrphanedArchiveCleanup(t *testing.T) {
	cases := []struct {
		name        string
		err         error
		wantDeleted bool
	}{
		{name: "update error", err: errors.New("db down"), wantDeleted: true},
		{name: "claimed by another attempt", err: fmt.Errorf("%w: job moved on", database.ErrInvalidTransition), wantDeleted: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, nil)
			h.createJob(t, portfolio.DefaultRecord())
			h.handler.jobs = doneFailingStore{JobStore: h.jobs, err: tc.err}
			h.handler.attempt = fixedAttempt(0, false)

			if err := h.handler.ProcessTask(context.Background(), exportTask(t)); err == nil {
				t.Fatal("expected error")
			}
			deleted := len(h.storage.deleted) == 1 && h.storage.deleted[0] == storage.ArchiveKey("job-1", export.ArchiveFilename)
			if deleted != tc.wantDeleted {
				t.Fatalf("deleted=%v (%v), want %v", deleted, h.storage.deleted, tc.wantDeleted)
			}
		})
	}
}

func TestProcessTaskGeneratesPreview(t *testing.T) {
	previewer := &fakePreviewer{}
	h := newHarness(t, previewer)
	h.createJob(t, portfolio.DefaultRecord())

	if err := h.handler.ProcessTask(context.Background(), exportTask(t)); err != nil {
		t.Fatalf("process task: %v", err)
	}

	job, _ := h.jobs.Get(context.Background(), "job-1")
	if job.PreviewKey != "previews/job-1/preview.jpg" {
		t.Fatalf("preview key: %q", job.PreviewKey)
	}
	if string(h.storage.objects[job.PreviewKey]) != "jpeg" {
		t.Fatalf("preview not uploaded")
	}
	if !strings.Contains(previewer.html, "<style>") {
		t.Fatalf("preview document should inline the stylesheet")
	}
}

func TestProcessTaskRejectsBadPayload(t *testing.T) {
	h := newHarness(t, nil)
	err := h.handler.ProcessTask(context.Background(), asynq.NewTask(tasks.TypePortfolioExport, []byte(`{}`)))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestProcessTaskFailsOnInvalidSnapshot(t *testing.T) {
	h := newHarness(t, nil)
	if err := h.jobs.Create(context.Background(), &database.ExportJob{ID: "job-1", Record: datatypes.JSON(`[1,2]`)}); err != nil {
		t.Fatalf("create job: %v", err)
	}

	err := h.handler.ProcessTask(context.Background(), exportTask(t))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}

	if msg := h.nextMessage(t); msg.Status != "generating" {
		t.Fatalf("first message: %+v", msg)
	}
	failed := h.nextMessage(t)
	if failed.Status != "failed" || failed.ErrorCode != errcode.InvalidRecord {
		t.Fatalf("failed message: %+v", failed)
	}

	job, _ := h.jobs.Get(context.Background(), "job-1")
	if job.Status != "failed" {
		t.Fatalf("status: %s", job.Status)
	}
}
