package websocket

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestBroadcastNeverBlocks(t *testing.T) {
	// Хаб намеренно не запущен: канал рассылки быстро заполнится,
	// дальнейшие сообщения должны отбрасываться, а не блокировать.
	m := NewManager(zerolog.Nop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			m.Broadcast("event_ready", map[string]int{"i": i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Broadcast заблокировался без работающего хаба")
	}
}

func TestBroadcastDeliversToRunningHub(t *testing.T) {
	m := NewManager(zerolog.Nop())
	m.Start()

	// С работающим хабом сообщения выбираются из канала и без клиентов.
	for i := 0; i < 100; i++ {
		m.Broadcast("event_ready", map[string]int{"i": i})
	}

	assert.Eventually(t, func() bool {
		return len(m.broadcast) == 0
	}, 2*time.Second, 10*time.Millisecond)
}
