package status

import (
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type Kind int

const (
	INFO Kind = iota
	ERROR
	PROGRESS
)

func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case INFO:
		return []byte("info"), nil
	case ERROR:
		return []byte("error"), nil
	case PROGRESS:
		return []byte("progress"), nil
	}
	return nil, fmt.Errorf("unknown status kind %d", int(k))
}

type Message struct {
	Message  string    `json:"message"`
	Time     time.Time `json:"time"`
	Kind     Kind      `json:"kind"`
	Progress float32   `json:"progress"`
}

const (
	pingPeriod   = 30 * time.Second
	writeTimeout = 40 * time.Second
	clientQueue  = 32
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Broadcaster pushes every status message to all connected websocket clients.
// New clients receive last message right after connecting.
type Broadcaster struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	last    []byte
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{clients: make(map[*client]struct{})}
}

func (b *Broadcaster) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		b.unregister(c)
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Debug().Err(err).Msg("Status ws write failed")
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Msg("Status ws ping failed")
				return
			}
		}
	}
}

// readPump drains client frames so close and pong frames get processed
func (b *Broadcaster) readPump(c *client) {
	defer b.unregister(c)
	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			return
		}
	}
}

// Attach starts serving conn until it is closed
func (b *Broadcaster) Attach(conn *websocket.Conn) {
	c := &client{conn: conn, send: make(chan []byte, clientQueue)}
	b.mu.Lock()
	b.clients[c] = struct{}{}
	if b.last != nil {
		c.send <- b.last
	}
	b.mu.Unlock()
	go b.writePump(c)
	go b.readPump(c)
}

func (b *Broadcaster) unregister(c *client) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		close(c.send)
	}
}

func (b *Broadcaster) Clients() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

func (b *Broadcaster) Status(msg string, kind Kind, progress float32) {
	if math.IsNaN(float64(progress)) || math.IsInf(float64(progress), 0) {
		progress = 0
	}
	data, err := json.Marshal(&Message{Message: msg, Time: time.Now(), Kind: kind, Progress: progress})
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal status")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = data
	for c := range b.clients {
		select {
		case c.send <- data:
		default:
			// slow client, drop it
			delete(b.clients, c)
			close(c.send)
		}
	}
}

var Default = NewBroadcaster()

func Info(format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	log.Info().Msg(msg)
	Default.Status(msg, INFO, 0)
}

func Error(format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	log.Error().Msg(msg)
	Default.Status(msg, ERROR, 0)
}

func Progress(progress float32, format string, a ...interface{}) {
	Default.Status(fmt.Sprintf(format, a...), PROGRESS, progress)
}
