// Package http serves GET /events as a server-sent event stream
package http

import (
	"bufio"
	stdhttp "net/http"
	"time"

	"sharerelay/internal/modkit/httpkit"
	"sharerelay/internal/platform/logger"
	events "sharerelay/internal/services/events/domain"
)

// Register mounts the stream endpoint
func Register(r httpkit.Router, s events.Streamer) {
	h := &handlers{svc: s}
	r.Get("/events", h.stream)
}

type handlers struct{ svc events.Streamer }

// flushWriter buffers writes and pushes them through the response controller
type flushWriter struct {
	buf *bufio.Writer
	rc  *stdhttp.ResponseController
	err error
}

func (f *flushWriter) WriteString(s string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.buf.WriteString(s)
}

func (f *flushWriter) Flush() {
	if f.err != nil {
		return
	}
	if f.err = f.buf.Flush(); f.err == nil {
		f.err = f.rc.Flush()
	}
}

// @Summary Live share notifications for the caller's account
// @Description Server-sent events: a retry hint and a ready event, then channel_added and video_added messages with ": keep-N" heartbeats
// @Tags Events
// @Produce text/event-stream
// @Security ApiKeyAuth
// @Param account_id query string false "Routing key, defaults to the configured account"
// @Success 200 {string} string "event stream"
// @Failure 401 {object} httpkit.Envelope "missing or invalid credential"
// @Router /events [get]
func (h *handlers) stream(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	route, err := httpkit.Account(r)
	if err != nil {
		httpkit.RespondError(w, r, err)
		return
	}

	hdr := w.Header()
	hdr.Set("Cache-Control", "no-cache")
	hdr.Set("Content-Type", "text/event-stream")
	hdr.Set("Connection", "keep-alive")
	hdr.Set("X-Accel-Buffering", "no")
	w.WriteHeader(stdhttp.StatusOK)

	rc := stdhttp.NewResponseController(w)
	// streams outlive the server write timeout
	_ = rc.SetWriteDeadline(time.Time{})

	log := logger.C(r.Context())
	log.Info().Msg("event stream opened")
	fw := &flushWriter{buf: bufio.NewWriter(w), rc: rc}
	if err := h.svc.Stream(r.Context(), route, fw); err != nil {
		log.Debug().Err(err).Msg("event stream write failed")
	}
	log.Info().Msg("event stream closed")
}
