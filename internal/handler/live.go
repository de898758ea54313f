package handler

import (
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pkordes/travel-desk/internal/domain"
	"github.com/pkordes/travel-desk/internal/events"
	"github.com/pkordes/travel-desk/internal/middleware"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Browser origins are enforced by the CORS layer and the bearer token.
	CheckOrigin: func(*http.Request) bool { return true },
}

// adminTopics may only be streamed to admins.
var adminTopics = []events.Topic{events.TopicCustomers, events.TopicExpenses}

// LiveFrame is one message on the /ws stream: the full current list of a
// topic.
type LiveFrame struct {
	Topic events.Topic `json:"topic"`
	Data  any          `json:"data"`
	At    time.Time    `json:"at"`
}

// serveLive handles GET /ws?topics=trips,vehicles. The connection receives
// the current snapshot of every subscribed topic immediately and a fresh one
// after every change. A client that cannot keep up is disconnected.
func (s *Server) serveLive(w http.ResponseWriter, r *http.Request) {
	topics, err := events.ParseTopics(r.URL.Query().Get("topics"))
	if err != nil {
		requestError(w, err.Error())
		return
	}
	actor, _ := middleware.ActorFrom(r.Context())
	if !actor.IsAdmin() {
		requested := r.URL.Query().Get("topics") != ""
		topics = slices.DeleteFunc(topics, func(t events.Topic) bool {
			return slices.Contains(adminTopics, t)
		})
		if requested && len(topics) == 0 {
			writeError(w, http.StatusForbidden, "forbidden", "topics are restricted to admins")
			return
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		s.log.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	c := &liveConn{
		conn:  conn,
		send:  make(chan []byte, sendBuffer),
		done:  make(chan struct{}),
		actor: actor,
	}
	for _, topic := range topics {
		unsubscribe := s.live.Subscribe(topic, c.deliver)
		defer unsubscribe()
	}

	go c.readPump()
	c.writePump()

	s.log.DebugContext(r.Context(), "websocket closed", "reason", c.reason)
}

// liveConn is one WebSocket subscriber.
type liveConn struct {
	conn  *websocket.Conn
	send  chan []byte
	done  chan struct{}
	once  sync.Once
	actor domain.Actor

	reason string
}

// deliver is the hub listener. It never blocks: when the send buffer is full
// the connection is closed instead.
func (c *liveConn) deliver(snap events.Snapshot) {
	msg, err := json.Marshal(LiveFrame{Topic: snap.Topic, Data: snapshotData(snap, c.actor), At: snap.At})
	if err != nil {
		c.close("encode: " + err.Error())
		return
	}
	select {
	case <-c.done:
	case c.send <- msg:
	default:
		c.close("slow consumer")
	}
}

func (c *liveConn) close(reason string) {
	c.once.Do(func() {
		c.reason = reason
		close(c.done)
	})
}

// readPump discards client messages and keeps the read deadline fresh on
// pongs. It ends the connection on any read error.
func (c *liveConn) readPump() {
	defer c.close("client closed")

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump owns all writes to the connection.
func (c *liveConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.close("write: " + err.Error())
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close("ping: " + err.Error())
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// snapshotData converts the domain slice carried by a snapshot into its JSON
// representation. Drivers only see their own trips.
func snapshotData(snap events.Snapshot, actor domain.Actor) any {
	switch data := snap.Data.(type) {
	case []domain.Trip:
		if !actor.IsAdmin() {
			data = slices.DeleteFunc(slices.Clone(data), func(t domain.Trip) bool {
				return !actor.CanAccessDriver(t.DriverID)
			})
		}
		return mapSlice(data, tripToResponse)
	case []domain.Vehicle:
		return mapSlice(data, vehicleToResponse)
	case []domain.Driver:
		return mapSlice(data, driverToResponse)
	case []domain.Customer:
		return mapSlice(data, customerToResponse)
	case []domain.Expense:
		return mapSlice(data, expenseToResponse)
	}
	return snap.Data
}
