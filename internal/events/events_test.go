package events

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_TextRoundTrip(t *testing.T) {
	for s := StatusWaiting; s <= StatusFailed; s++ {
		text, err := s.MarshalText()
		require.NoError(t, err)

		var got Status
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, s, got)
	}

	var s Status
	assert.Error(t, s.UnmarshalText([]byte("exploded")))
	assert.Equal(t, "status(42)", Status(42).String())
}

func TestStatus_Done(t *testing.T) {
	assert.False(t, StatusWaiting.Done())
	assert.False(t, StatusBuilding.Done())
	assert.True(t, StatusSkipped.Done())
	assert.True(t, StatusFailed.Done())
}

func TestStatus_JSONMapKeys(t *testing.T) {
	data, err := json.Marshal(map[string]Status{"a.png": StatusSuccessWithWarnings})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a.png":"success_with_warnings"}`, string(data))
}

func TestMulti_FansOutAndSkipsNil(t *testing.T) {
	// --- Arrange ---
	a, b := NewRecorder(), NewRecorder()
	m := Multi{a, nil, b}

	// --- Act ---
	m.OnStatus(StatusEvent{Asset: "x", Status: StatusBuilding})
	m.OnLog(LogEvent{Asset: "x", Message: "hello"})
	m.OnBuildCompleted(BuildCompleted{Content: "Game"})

	// --- Assert ---
	for _, r := range []*Recorder{a, b} {
		s, ok := r.Status("x")
		require.True(t, ok)
		assert.Equal(t, StatusBuilding, s)
		assert.Len(t, r.Logs("x"), 1)
		done, ok := r.Completed()
		require.True(t, ok)
		assert.Equal(t, "Game", done.Content)
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	r.OnStatus(StatusEvent{Asset: "b", Status: StatusWaiting})
	r.OnStatus(StatusEvent{Asset: "a", Status: StatusWaiting})
	r.OnStatus(StatusEvent{Asset: "b", Status: StatusBuilding})
	r.OnStatus(StatusEvent{Asset: "b", Status: StatusSuccess})
	r.OnLog(LogEvent{Asset: "a", Message: "1"})
	r.OnLog(LogEvent{Asset: "b", Message: "2"})

	assert.Equal(t, []string{"b", "a"}, r.Assets())
	assert.Equal(t, []Status{StatusWaiting, StatusBuilding, StatusSuccess}, r.Transitions("b"))
	if diff := cmp.Diff(map[string]Status{"a": StatusWaiting, "b": StatusSuccess}, r.Statuses()); diff != "" {
		t.Errorf("statuses mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, r.Logs(""), 2)
	assert.Equal(t, "2", r.Logs("b")[0].Message)

	_, ok := r.Completed()
	assert.False(t, ok)

	r.Reset()
	assert.Empty(t, r.Assets())
	assert.Empty(t, r.Logs(""))
}

func TestLogPrinter(t *testing.T) {
	// --- Arrange ---
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	p := NewLogPrinter(logger)

	// --- Act ---
	p.OnLog(LogEvent{Asset: "hero.png", Bundle: "mobile", Level: LevelWarning, Message: "texture too large"})
	p.OnLog(LogEvent{Asset: "hero.png", Level: LevelVerbose, Message: "hidden at info"})
	p.OnStatus(StatusEvent{Asset: "hero.png", Status: StatusFailed})
	p.OnBuildCompleted(BuildCompleted{Content: "Game", Failed: true, Counts: map[Status]int{StatusFailed: 1}})

	// --- Assert ---
	out := buf.String()
	assert.Contains(t, out, `level=WARN msg="texture too large" asset=hero.png bundle=mobile`)
	assert.NotContains(t, out, "hidden at info")
	assert.Contains(t, out, "status=failed")
	assert.Contains(t, out, "Build failed.")
	assert.Contains(t, out, "failed=1")
}

// slowListener records events after a delay, to prove the Channel does not
// drop or reorder anything.
type slowListener struct {
	Nop
	mu   sync.Mutex
	seen []string
}

func (l *slowListener) OnLog(e LogEvent) {
	time.Sleep(time.Millisecond)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen = append(l.seen, e.Message)
}

func TestChannel_DeliversInOrder(t *testing.T) {
	// --- Arrange ---
	target := &slowListener{}
	c := NewChannel(target, 2)

	// --- Act ---
	var want []string
	for i := 0; i < 20; i++ {
		msg := string(rune('a' + i))
		want = append(want, msg)
		c.OnLog(LogEvent{Message: msg})
	}
	c.Close()
	c.Close()

	// --- Assert ---
	assert.Equal(t, want, target.seen)
}

func TestSocketIOPayloads(t *testing.T) {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	status := statusPayload(StatusEvent{Asset: "a.png", Status: StatusBuilding, Reason: "declaration changed", Time: ts})
	assert.Equal(t, map[string]any{
		"asset":  "a.png",
		"status": "building",
		"reason": "declaration changed",
		"time":   "2025-03-01T12:00:00Z",
	}, status)

	line := logPayload(LogEvent{Asset: "a.png", Bundle: "Base", Level: LevelError, Message: "boom", Time: ts})
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "boom", line["message"])

	done := completedPayload(BuildCompleted{
		Content:  "Game",
		Counts:   map[Status]int{StatusSkipped: 3},
		Duration: 1500 * time.Millisecond,
	})
	assert.Equal(t, map[string]int{"skipped": 3}, done["counts"])
	assert.Equal(t, int64(1500), done["duration_ms"])
}

func TestDialSocketIO_RejectsBadURL(t *testing.T) {
	_, err := DialSocketIO(context.Background(), SocketIOConfig{URL: "/events"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scheme and host")
}
