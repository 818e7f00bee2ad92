package scheduler

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slotLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *slotLog) task(name string, failAt int) Task {
	return TaskFunc(func(_ context.Context, slot int) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.calls = append(l.calls, name+":"+string(rune('0'+slot)))
		if slot == failAt {
			return errors.New("boom")
		}
		return nil
	})
}

func TestScheduler_RunsTasksInOrder(t *testing.T) {
	var l slotLog
	s, err := New(Config{TickMillis: 1, FirstTimeslot: 1, Timeslots: 3}, nil,
		l.task("sim", -1), l.task("settle", -1))
	require.NoError(t, err)
	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, []string{"sim:1", "settle:1", "sim:2", "settle:2", "sim:3", "settle:3"}, l.calls)
	assert.Equal(t, 3, s.Completed())
	assert.Equal(t, 4, s.Timeslot())
}

func TestScheduler_FailingTaskSkipsSlot(t *testing.T) {
	var l slotLog
	s, err := New(Config{TickMillis: 1, Timeslots: 3}, nil, l.task("sim", 1), l.task("settle", -1))
	require.NoError(t, err)
	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, []string{"sim:0", "settle:0", "sim:1", "sim:2", "settle:2"}, l.calls)
}

func TestScheduler_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var l slotLog
	s, err := New(Config{TickMillis: 5}, nil, TaskFunc(func(ctx context.Context, slot int) error {
		if slot == 2 {
			cancel()
		}
		return l.task("t", -1).RunTimeslot(ctx, slot)
	}))
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		_ = s.Run(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Equal(t, 3, s.Completed())
}

func TestNew_Errors(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.Error(t, err)
	_, err = New(Config{TickMillis: -1}, nil, TaskFunc(func(context.Context, int) error { return nil }))
	assert.Error(t, err)
}

func TestConfig_Tick(t *testing.T) {
	c := Config{}
	c.SetDefaults()
	assert.Equal(t, time.Hour, c.Tick())
	c.TickMillis = 20
	assert.Equal(t, 20*time.Millisecond, c.Tick())
}

func TestDecodeConfig(t *testing.T) {
	cfg, err := DecodeConfig(bytes.NewBufferString("slot_duration_minutes: 15\ntick_ms: 10\ntimeslots: 24\n"), "yaml")
	require.NoError(t, err)
	assert.Equal(t, 15, cfg.SlotDurationMinutes)
	assert.Equal(t, 24, cfg.Timeslots)

	cfg, err = DecodeConfig(bytes.NewBufferString(`{"first_timeslot":5}`), "json")
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.SlotDurationMinutes)
	assert.Equal(t, 5, cfg.FirstTimeslot)
}

func TestDecodeErrors(t *testing.T) {
	_, err := DecodeConfig(bytes.NewBufferString("{}"), "toml")
	assert.Error(t, err)
	_, err = DecodeConfig(bytes.NewBufferString(":"), "yaml")
	assert.Error(t, err)
	_, err = DecodeConfig(bytes.NewBufferString(`{"timeslots":-1}`), "json")
	assert.Error(t, err)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clock.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"slot_duration_minutes":15}`), 0o644))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 15, cfg.SlotDurationMinutes)

	bad := filepath.Join(dir, "clock.txt")
	require.NoError(t, os.WriteFile(bad, []byte("bad"), 0o644))
	_, err = LoadConfig(bad)
	assert.Error(t, err)
}
