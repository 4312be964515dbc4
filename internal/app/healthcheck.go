package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/vk/assetforge/internal/events"
)

// statusResponse is the body served on /status.
type statusResponse struct {
	Content string                   `json:"content"`
	Running bool                     `json:"running"`
	Assets  map[string]events.Status `json:"assets"`
}

// healthHandler answers liveness probes.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// statusHandler serves the per-asset statuses of the current build.
func (a *App) statusHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Status endpoint hit.", "remote_addr", r.RemoteAddr)
	resp := statusResponse{Content: a.content.Name, Assets: map[string]events.Status{}}
	if b := a.currentBuilder(); b != nil {
		resp.Running = b.Running()
		resp.Assets = b.Statuses()
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		a.logger.Warn("Failed to write status response.", "error", err)
	}
}

func (a *App) statusMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.HandleFunc("/status", a.statusHandler)
	return mux
}

// startStatusServer listens on port and serves the status endpoints until
// closeStatusServer. A port that cannot be bound is logged and ignored.
func (a *App) startStatusServer(port int) {
	a.logger.Debug("Configuring status server.")
	addr := fmt.Sprintf(":%d", port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		a.logger.Warn("Status server not started.", "address", addr, "error", err)
		return
	}

	srv := &http.Server{Handler: a.statusMux(), ReadHeaderTimeout: 5 * time.Second}
	a.mu.Lock()
	a.httpServer = srv
	a.mu.Unlock()

	go func() {
		a.logger.Info("🩺 Status server starting", "address", fmt.Sprintf("http://localhost%s/status", addr))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Status server failed unexpectedly", "error", err)
		}
	}()
}

func (a *App) closeStatusServer() error {
	a.mu.Lock()
	srv := a.httpServer
	a.httpServer = nil
	a.mu.Unlock()

	if srv == nil {
		a.logger.Debug("Status server was not running.")
		return nil
	}

	ctx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()

	a.logger.Debug("Shutting down status server...")
	if err := srv.Shutdown(ctx); err != nil {
		a.logger.Error("Status server shutdown failed", "error", err)
		return err
	}
	return nil
}
