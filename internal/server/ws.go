package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nodepress/designer/internal/editor"
	"github.com/nodepress/designer/internal/logging"
)

// handleEditorWS runs one editing session over a websocket. The client sends
// commands as JSON; the server applies each one and streams the resulting
// events back. When the socket closes, the session's document is persisted to
// the page and the session ends.
func (s *Server) handleEditorWS(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "pageID")

	page, err := s.app.Registry.GetPage(r.Context(), pageID)
	if err != nil {
		s.serviceError(w, err, "opening editor session")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	session := s.app.Editor.Open(page.ID, page.Blocks)
	s.app.Metrics.EditorSessionsOpen.Inc()
	defer func() {
		// Persist whatever state the session ended with, then tear down.
		// The request context is gone once the client disconnects, so the
		// final save uses a fresh one.
		blocks := session.Blocks()
		if err := s.app.Registry.SavePageBlocks(context.Background(), page.ID, blocks); err != nil {
			s.logger.Warn("persisting session document",
				logging.Field{Key: "page_id", Value: page.ID},
				logging.Field{Key: "error", Value: err.Error()})
		}
		_ = s.app.Editor.Close(session.ID)
		s.app.Metrics.EditorSessionsOpen.Dec()
	}()

	// Stream session events until the channel closes.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range session.Events() {
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}()

	// Seed the stream with the opening document so the client can draw
	// immediately. It arrives as the first event, exactly once.
	session.Sync(page.Blocks)

	for {
		var cmd editor.Command
		if err := conn.ReadJSON(&cmd); err != nil {
			// Client disconnected; the deferred teardown persists and
			// closes the session, which ends the writer goroutine.
			break
		}
		ev := session.Apply(cmd)
		status := "ok"
		if ev.Type == editor.EventError {
			status = "error"
		}
		s.app.Metrics.EditorCommandTotal.WithLabelValues(string(cmd.Type), status).Inc()
	}

	// Closing the session closes its event channel, which ends the writer.
	_ = s.app.Editor.Close(session.ID)
	<-done
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Editor.List())
}
