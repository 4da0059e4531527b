package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []map[string]interface{}
}

func (n *recordingNotifier) Broadcast(_ string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if m, ok := payload.(map[string]interface{}); ok {
		n.messages = append(n.messages, m)
	}
}

func (n *recordingNotifier) statuses() []Status {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Status, 0, len(n.messages))
	for _, m := range n.messages {
		out = append(out, m["status"].(Status))
	}
	return out
}

func waitForStatus(t *testing.T, m *Manager, id uuid.UUID, want Status) Task {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		task, err := m.Get(id)
		require.NoError(t, err)
		if task.Status == want {
			return task
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("task %s never reached status %s", id, want)
	return Task{}
}

func TestSubmitCompletes(t *testing.T) {
	notifier := &recordingNotifier{}
	m := New(Config{MaxTasks: 2}, zerolog.Nop())
	m.SetNotifier(notifier)

	id, err := m.Submit("test", func(ctx context.Context) (interface{}, error) {
		return "done", nil
	})
	require.NoError(t, err)

	task := waitForStatus(t, m, id, StatusCompleted)
	assert.Equal(t, "done", task.Result)
	assert.Contains(t, notifier.statuses(), StatusCompleted)
}

func TestSubmitFailure(t *testing.T) {
	m := New(Config{}, zerolog.Nop())

	id, err := m.Submit("test", func(ctx context.Context) (interface{}, error) {
		return nil, errors.New("boom")
	})
	require.NoError(t, err)

	task := waitForStatus(t, m, id, StatusFailed)
	assert.Contains(t, task.Message, "boom")
}

func TestCancel(t *testing.T) {
	m := New(Config{}, zerolog.Nop())

	started := make(chan struct{})
	id, err := m.Submit("test", func(ctx context.Context) (interface{}, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	require.NoError(t, err)
	<-started

	require.NoError(t, m.Cancel(id))
	waitForStatus(t, m, id, StatusCancelled)
}

func TestGetSnapshotDuringUpdates(t *testing.T) {
	m := New(Config{}, zerolog.Nop())

	release := make(chan struct{})
	id, err := m.Submit("test", func(ctx context.Context) (interface{}, error) {
		<-release
		return "done", nil
	})
	require.NoError(t, err)

	// Параллельные читатели снимка на фоне смены статусов задачи.
	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					if task, err := m.Get(id); err == nil {
						_ = task.Status
						_ = task.Message
						_ = task.UpdatedAt
					}
				}
			}
		}()
	}

	close(release)
	task := waitForStatus(t, m, id, StatusCompleted)
	close(stop)
	wg.Wait()

	assert.Equal(t, "done", task.Result)
}

func TestGetUnknownTask(t *testing.T) {
	m := New(Config{}, zerolog.Nop())
	_, err := m.Get(uuid.New())
	assert.Error(t, err)
}

func TestMaxTasksLimit(t *testing.T) {
	m := New(Config{MaxTasks: 1}, zerolog.Nop())

	release := make(chan struct{})
	_, err := m.Submit("long", func(ctx context.Context) (interface{}, error) {
		<-release
		return nil, nil
	})
	require.NoError(t, err)

	_, err = m.Submit("rejected", func(ctx context.Context) (interface{}, error) {
		return nil, nil
	})
	assert.Error(t, err)

	close(release)
	require.NoError(t, m.Shutdown(context.Background()))
}

func TestCleanup(t *testing.T) {
	m := New(Config{}, zerolog.Nop())

	id, err := m.Submit("test", func(ctx context.Context) (interface{}, error) {
		return nil, nil
	})
	require.NoError(t, err)
	waitForStatus(t, m, id, StatusCompleted)

	time.Sleep(time.Millisecond)
	m.Cleanup(0)
	_, err = m.Get(id)
	assert.Error(t, err)
}
