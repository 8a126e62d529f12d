package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"portfolioX/internal/database"
	"portfolioX/internal/errcode"
	"portfolioX/internal/export"
	"portfolioX/internal/notify"
)

// WsHandler 把某个导出任务的 Redis 通知转发到 WebSocket。
type WsHandler struct {
	redisClient    *redis.Client
	jobs           jobStore
	logger         *slog.Logger
	upgrader       websocket.Upgrader
	allowedOrigins []string
}

// NewWsHandler 构造 WebSocket 处理器。
func NewWsHandler(redisClient *redis.Client, jobs jobStore, logger *slog.Logger, allowedOrigins []string) *WsHandler {
	h := &WsHandler{
		redisClient:    redisClient,
		jobs:           jobs,
		logger:         logger,
		allowedOrigins: allowedOrigins,
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if len(h.allowedOrigins) == 0 {
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			}
			for _, allowed := range h.allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}
	return h
}

// HandleConnection 校验 job_id 后升级连接，先推送当前状态，再转发后续通知。
func (h *WsHandler) HandleConnection(c *gin.Context) {
	jobID := strings.TrimSpace(c.Query("job_id"))
	if _, err := uuid.Parse(jobID); err != nil {
		BadRequest(c, "invalid job id")
		return
	}
	job, err := h.jobs.Get(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, database.ErrJobNotFound) {
			NotFound(c, "export job not found")
			return
		}
		Internal(c, "failed to query export job")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("upgrade websocket failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	log := h.logger.With(
		slog.String("client_ip", c.ClientIP()),
		slog.String("job_id", jobID),
	)

	// 先订阅再发快照，避免两者之间的通知丢失。
	pubsub := h.redisClient.Subscribe(ctx, notify.Channel(jobID))
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		log.Error("subscribe redis channel failed", slog.Any("error", err))
		writeClose(conn, websocket.CloseInternalServerErr, "subscribe failed")
		return
	}

	if err := conn.WriteJSON(snapshotMessage(job)); err != nil {
		log.Info("write snapshot failed", slog.Any("error", err))
		return
	}
	if export.Status(job.Status).Finished() {
		writeClose(conn, websocket.CloseNormalClosure, "export finished")
		return
	}

	errCh := make(chan error, 2)
	go h.readLoop(ctx, conn, errCh, cancel)
	go h.forwardLoop(ctx, conn, pubsub, errCh, cancel, log)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			log.Info("websocket connection closed", slog.Any("error", err))
		} else {
			log.Info("websocket connection closed")
		}
	}
}

func snapshotMessage(job *database.ExportJob) notify.Message {
	msg := notify.Message{
		Status:        job.Status,
		JobID:         job.ID,
		CorrelationID: job.CorrelationID,
		ErrorCode:     errcode.OK,
	}
	switch export.Status(job.Status) {
	case export.StatusFailed:
		msg.ErrorCode = errcode.SystemError
		msg.ErrorMessage = job.Error
	case export.StatusDone:
		if len(job.Diagnostics) > 0 {
			var diags []struct {
				Path string `json:"path"`
			}
			if err := json.Unmarshal(job.Diagnostics, &diags); err == nil && len(diags) > 0 {
				msg.ErrorCode = errcode.ResourceMissing
				for _, d := range diags {
					msg.MissingKeys = append(msg.MissingKeys, d.Path)
				}
			}
		}
	}
	return msg
}

// readLoop 不处理客户端消息，只用来感知断开。
func (h *WsHandler) readLoop(ctx context.Context, conn *websocket.Conn, errCh chan<- error, cancel context.CancelFunc) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if _, _, err := conn.ReadMessage(); err != nil {
			errCh <- fmt.Errorf("read message: %w", err)
			cancel()
			return
		}
	}
}

func writeClose(conn *websocket.Conn, code int, text string) {
	deadline := time.Now().Add(5 * time.Second)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), deadline)
}

func (h *WsHandler) forwardLoop(
	ctx context.Context,
	conn *websocket.Conn,
	pubsub *redis.PubSub,
	errCh chan<- error,
	cancel context.CancelFunc,
	log *slog.Logger,
) {
	ch := pubsub.Channel()
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				errCh <- fmt.Errorf("pubsub channel closed")
				cancel()
				return
			}

			log.Info("forwarding message to client")
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				errCh <- fmt.Errorf("write message: %w", err)
				cancel()
				return
			}

			var decoded notify.Message
			if err := json.Unmarshal([]byte(msg.Payload), &decoded); err == nil && export.Status(decoded.Status).Finished() {
				writeClose(conn, websocket.CloseNormalClosure, "export finished")
				errCh <- nil
				cancel()
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(5 * time.Second)
			if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), deadline); err != nil {
				errCh <- fmt.Errorf("write ping: %w", err)
				cancel()
				return
			}
		}
	}
}
