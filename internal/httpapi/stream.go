package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/auth"
)

// Events handles Server-Sent Events for the security event feed (lockouts,
// unlocks, document integrity faults). Admin only.
func (a *API) Events(w http.ResponseWriter, r *http.Request) {
	if a.cfg.Events == nil {
		http.Error(w, "streaming disabled", http.StatusServiceUnavailable)
		return
	}
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	if principal.Role != auth.RoleAdmin {
		writeError(w, r, http.StatusForbidden, "admin role required")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	ch := a.cfg.Events.Subscribe(ctx)

	// Send an initial comment to establish the stream
	_, _ = w.Write([]byte(": stream started\n\n"))
	flusher.Flush()

	for event := range ch {
		payload, err := json.Marshal(event)
		if err != nil {
			continue
		}
		_, _ = w.Write([]byte("data: "))
		_, _ = w.Write(payload)
		_, _ = w.Write([]byte("\n\n"))
		flusher.Flush()
	}
}
