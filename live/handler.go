package live

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/user/timemanager-go/apperror"
	"github.com/user/timemanager-go/auth"
	"github.com/user/timemanager-go/httpx"
)

// heartbeatInterval keeps proxies from closing idle streams.
const heartbeatInterval = 25 * time.Second

// HandleClockStream godoc
// @Summary Live clock events
// @Description Server-Sent Events: one "clock" event per toggle the requester may read.
// @Tags clocks
// @Produce text/event-stream
// @Security BearerAuth
// @Success 200 {string} string "event stream"
// @Failure 401 {object} apperror.ErrorResponse
// @Router /live/clocks [get]
func (h *Hub) HandleClockStream() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requester, ok := auth.MustRequester(w, r)
		if !ok {
			return
		}
		rc := http.NewResponseController(w)
		// Streams outlive the server's WriteTimeout.
		if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
			httpx.WriteError(w, r, apperror.NewInternalError("streaming unsupported", err))
			return
		}

		id, events := h.Subscribe(requester)
		defer h.Unsubscribe(id)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, ": connected\n\n")
		if err := rc.Flush(); err != nil {
			httpx.LoggerFrom(r.Context()).Warn("live stream cannot flush", zap.Error(err))
			return
		}

		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-heartbeat.C:
				fmt.Fprint(w, ": ping\n\n")
				rc.Flush()
			case e, open := <-events:
				if !open {
					return
				}
				fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", e.ID, e.Name, e.Data)
				rc.Flush()
			}
		}
	}
}
