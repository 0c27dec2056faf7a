package api

import (
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"inputcap/internal/capture"
	"inputcap/internal/event"
	"inputcap/internal/protocol"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Events beyond this buffer are dropped rather than blocking the
	// capture thread behind a slow subscriber.
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for now as this is a local network tool
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Stream delivers captured events to at most one WebSocket subscriber.
// A new connection replaces the previous one (last-writer-wins), matching
// the single-consumer event channel semantics.
type Stream struct {
	ctrl    *capture.Controller
	current atomic.Pointer[subscriber]
}

type subscriber struct {
	conn      *websocket.Conn
	send      chan protocol.Message
	done      chan struct{}
	closeOnce sync.Once
	ip        string
}

func newStream(ctrl *capture.Controller) *Stream {
	return &Stream{ctrl: ctrl}
}

// Deliver implements sink.Consumer. It runs on the capture worker (or the
// hook thread), so it only enqueues: full buffers drop the event.
func (s *Stream) Deliver(e event.Event) {
	sub := s.current.Load()
	if sub == nil {
		return
	}
	select {
	case sub.send <- protocol.NewEvent(e):
	default:
		// Subscriber too slow; drop rather than block the capture path.
	}
}

// pushStatus notifies the subscriber of a capture state change.
func (s *Stream) pushStatus(capturing bool) {
	sub := s.current.Load()
	if sub == nil {
		return
	}
	select {
	case sub.send <- protocol.NewStatus(capturing):
	default:
	}
}

// pushError reports a non-fatal server-side failure to the subscriber.
func (s *Stream) pushError(msg string) {
	sub := s.current.Load()
	if sub == nil {
		return
	}
	select {
	case sub.send <- protocol.NewError(msg):
	default:
	}
}

// handleWebSocket upgrades the connection and attaches it as the stream
// subscriber.
func (s *Stream) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WS: upgrade failed: %v", err)
		return
	}

	sub := &subscriber{
		conn: conn,
		send: make(chan protocol.Message, sendBuffer),
		done: make(chan struct{}),
		ip:   r.RemoteAddr,
	}
	// Initial status so the subscriber knows the current state.
	sub.send <- protocol.NewStatus(s.ctrl.IsCapturing())

	if old := s.current.Swap(sub); old != nil {
		log.Printf("WS: subscriber %s replaced by %s", old.ip, sub.ip)
		old.close()
	} else {
		log.Printf("WS: subscriber attached from %s", sub.ip)
	}

	go sub.writePump(s)
	go sub.readPump(s)
}

// detach removes sub if it is still the active subscriber and closes it.
// Safe to call from both pumps.
func (s *Stream) detach(sub *subscriber) {
	if s.current.CompareAndSwap(sub, nil) {
		log.Printf("WS: subscriber detached from %s", sub.ip)
	}
	sub.close()
}

func (c *subscriber) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func (c *subscriber) writePump(s *Stream) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.detach(c)
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// readPump consumes control frames; subscribers send nothing else.
func (c *subscriber) readPump(s *Stream) {
	defer s.detach(c)

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
