package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Manager управляет WebSocket-соединениями. Сессия одна, поэтому все
// сообщения широковещательные: каждый подключенный клиент (вкладка,
// устройство) видит одно и то же.
type Manager struct {
	clients    map[uuid.UUID]*client
	register   chan *client
	unregister chan *client
	broadcast  chan Message
	mu         sync.RWMutex
	log        zerolog.Logger
}

type client struct {
	id      uuid.UUID
	conn    *websocket.Conn
	manager *Manager
	send    chan []byte
}

// Message представляет сообщение для отправки через WebSocket
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // В продакшене следует настроить проверку на разрешенные источники
	},
}

// NewManager создает новый экземпляр Manager
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		clients:    make(map[uuid.UUID]*client),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan Message, 16),
		log:        log.With().Str("component", "websocket").Logger(),
	}
}

// Start запускает Manager в отдельной горутине
func (m *Manager) Start() {
	go m.run()
}

func (m *Manager) run() {
	for {
		select {
		case c := <-m.register:
			m.mu.Lock()
			m.clients[c.id] = c
			m.mu.Unlock()
			m.log.Debug().Str("clientID", c.id.String()).Msg("Клиент подключен")

		case c := <-m.unregister:
			m.mu.Lock()
			if _, ok := m.clients[c.id]; ok {
				close(c.send)
				delete(m.clients, c.id)
				m.log.Debug().Str("clientID", c.id.String()).Msg("Клиент отключен")
			}
			m.mu.Unlock()

		case message := <-m.broadcast:
			data, err := json.Marshal(message)
			if err != nil {
				m.log.Error().Err(err).Msg("Ошибка маршалинга сообщения")
				continue
			}

			m.mu.Lock()
			for id, c := range m.clients {
				select {
				case c.send <- data:
				default:
					close(c.send)
					delete(m.clients, id)
				}
			}
			m.mu.Unlock()
		}
	}
}

// Handler обрабатывает новые WebSocket-соединения
func (m *Manager) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			m.log.Error().Err(err).Msg("Ошибка апгрейда соединения")
			return
		}

		c := &client{
			id:      uuid.New(),
			conn:    conn,
			manager: m,
			send:    make(chan []byte, 256),
		}

		m.register <- c

		go c.readPump()
		go c.writePump()
	})
}

// Broadcast отправляет сообщение всем подключенным клиентам. Никогда не
// блокирует вызывающего: сообщения — рекомендательные снимки, при
// переполненном канале сообщение отбрасывается, клиент дочитает состояние
// через GET /game.
func (m *Manager) Broadcast(messageType string, payload interface{}) {
	select {
	case m.broadcast <- Message{Type: messageType, Payload: payload}:
	default:
		m.log.Warn().Str("type", messageType).Msg("Канал рассылки переполнен, сообщение отброшено")
	}
}

// readPump читает входящие сообщения. Клиент ничего не присылает по делу,
// чтение нужно только для обработки pong и закрытия соединения.
func (c *client) readPump() {
	defer func() {
		c.manager.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.manager.log.Debug().Err(err).Msg("Ошибка чтения")
			}
			return
		}
	}
}

// writePump отправляет сообщения клиенту и поддерживает соединение пингами.
func (c *client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
