package events

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/vk/assetforge/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Event names emitted by SocketIOSink.
const (
	EventAssetStatus    = "asset_status"
	EventAssetLog       = "asset_log"
	EventBuildCompleted = "build_completed"
)

// SocketIOConfig configures the remote event sink.
type SocketIOConfig struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	// ConnectTimeout bounds the initial handshake. Zero means 15s.
	ConnectTimeout time.Duration
}

// SocketIOSink streams build events to a socket.io server, for dashboards
// that watch a build from another machine.
type SocketIOSink struct {
	io     *socket.Socket
	logger *slog.Logger
}

// DialSocketIO connects to the configured server and returns a sink once the
// connection is established.
func DialSocketIO(ctx context.Context, cfg SocketIOConfig) (*SocketIOSink, error) {
	logger := ctxlog.FromContext(ctx).With("sink", "socketio", "url", cfg.URL)

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("events URL '%s' must include a scheme and host", cfg.URL)
	}
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "/"
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Event sink connected", "namespace", namespace, "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connectChan <- err
	})

	logger.Debug("Connecting event sink...")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &SocketIOSink{io: io, logger: logger}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}
}

func (s *SocketIOSink) OnStatus(e StatusEvent) {
	s.io.Emit(EventAssetStatus, statusPayload(e))
}

func (s *SocketIOSink) OnLog(e LogEvent) {
	s.io.Emit(EventAssetLog, logPayload(e))
}

func (s *SocketIOSink) OnBuildCompleted(e BuildCompleted) {
	s.io.Emit(EventBuildCompleted, completedPayload(e))
}

// Close disconnects from the server.
func (s *SocketIOSink) Close() error {
	s.logger.Debug("Disconnecting event sink", "sid", s.io.Id())
	s.io.Disconnect()
	return nil
}

func statusPayload(e StatusEvent) map[string]any {
	p := map[string]any{
		"asset":  e.Asset,
		"status": e.Status.String(),
		"time":   e.Time.UTC().Format(time.RFC3339Nano),
	}
	if e.Reason != "" {
		p["reason"] = e.Reason
	}
	return p
}

func logPayload(e LogEvent) map[string]any {
	return map[string]any{
		"asset":   e.Asset,
		"bundle":  e.Bundle,
		"level":   e.Level.String(),
		"message": e.Message,
		"time":    e.Time.UTC().Format(time.RFC3339Nano),
	}
}

func completedPayload(e BuildCompleted) map[string]any {
	counts := make(map[string]int, len(e.Counts))
	for status, n := range e.Counts {
		counts[status.String()] = n
	}
	return map[string]any{
		"content":     e.Content,
		"failed":      e.Failed,
		"stopped":     e.Stopped,
		"counts":      counts,
		"duration_ms": e.Duration.Milliseconds(),
	}
}
