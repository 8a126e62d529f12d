package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"portfolioX/internal/config"
	"portfolioX/internal/database"
	"portfolioX/internal/errcode"
	"portfolioX/internal/notify"
)

func dialJob(t *testing.T, s *testServer, jobID string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(s.router)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws?job_id=" + jobID
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v (resp=%v)", err, resp)
	}
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	return conn
}

func TestWsForwardsJobNotifications(t *testing.T) {
	s := newTestServer(t, config.ExportConfig{}, nil)
	id := "5d2f7a10-2b3c-4d5e-8f90-a1b2c3d4e5f6"
	ctx := context.Background()
	job := &database.ExportJob{ID: id}
	if err := s.jobs.Create(ctx, job); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.jobs.MarkGenerating(ctx, job, 0); err != nil {
		t.Fatalf("generating: %v", err)
	}

	conn := dialJob(t, s, id)

	var snapshot notify.Message
	if err := conn.ReadJSON(&snapshot); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if snapshot.Status != "generating" || snapshot.JobID != id {
		t.Fatalf("snapshot: %+v", snapshot)
	}

	done := notify.Message{Status: "done", JobID: id, ErrorCode: errcode.ResourceMissing, MissingKeys: []string{"images/profile.jpg"}}
	if err := notify.Publish(ctx, s.redis, done); err != nil {
		t.Fatalf("publish: %v", err)
	}

	var got notify.Message
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read forwarded message: %v", err)
	}
	if got.Status != "done" || got.ErrorCode != errcode.ResourceMissing {
		t.Fatalf("forwarded: %+v", got)
	}

	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("expected normal close after done, got %v", err)
	}
}

func TestWsClosesImmediatelyForFinishedJob(t *testing.T) {
	s := newTestServer(t, config.ExportConfig{}, nil)
	id := "9a8b7c6d-5e4f-4a3b-9c2d-1e0f9a8b7c6d"
	seedDoneJob(t, s, id)

	conn := dialJob(t, s, id)
	var snapshot notify.Message
	if err := conn.ReadJSON(&snapshot); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if snapshot.ErrorCode != errcode.ResourceMissing || len(snapshot.MissingKeys) != 1 {
		t.Fatalf("snapshot: %+v", snapshot)
	}
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("expected normal close, got %v", err)
	}
}

func TestWsRejectsUnknownJob(t *testing.T) {
	s := newTestServer(t, config.ExportConfig{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/v1/ws?job_id=3c1d6b52-8a3f-4f0e-9a55-2f0b7f6a9d10", nil)
	if w := s.do(req); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}
