// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// LiveFeed pump timings, carried over verbatim from socket_client.go's
// constants: a debug client only needs to notice a stalled tick loop
// within a minute, and 5 seconds is plenty of slack to flush one
// snapshot.
const (
	liveFeedWriteWait = 5 * time.Second
	liveFeedPongWait  = 60 * time.Second
	liveFeedPingPeriod = (liveFeedPongWait * 9) / 10
)

var liveFeedUpgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// LiveFeed broadcasts TickSnapshots to every connected debug client. It
// owns no state about the simulation itself — Broadcast is called once
// per tick (or once per hull rebuild) by whatever loop produces
// snapshots.
type LiveFeed struct {
	mu      sync.Mutex
	clients map[*feedClient]struct{}
}

// NewLiveFeed creates an empty feed ready to accept connections at
// ServeHTTP.
func NewLiveFeed() *LiveFeed {
	return &LiveFeed{clients: make(map[*feedClient]struct{})}
}

// ServeHTTP upgrades the request to a websocket and registers the
// resulting client, following ServeSocket's upgrade-then-register shape
// in http.go minus the per-IP connection cap, which a local debug feed
// has no need for.
func (f *LiveFeed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := liveFeedUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("livefeed upgrade error:", err)
		return
	}

	client := &feedClient{conn: conn, send: make(chan []byte, 16), feed: f}
	f.mu.Lock()
	f.clients[client] = struct{}{}
	f.mu.Unlock()

	go client.writePump()
	go client.readPump()
}

// Broadcast encodes snap and fans it out to every connected client,
// dropping clients whose send buffer is already full rather than
// blocking the tick loop on a slow reader.
func (f *LiveFeed) Broadcast(snap TickSnapshot) {
	data, err := MarshalSnapshot(snap)
	if err != nil {
		log.Println("livefeed marshal error:", err)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for c := range f.clients {
		select {
		case c.send <- data:
		default:
			go c.destroy()
		}
	}
}

func (f *LiveFeed) remove(c *feedClient) {
	f.mu.Lock()
	delete(f.clients, c)
	f.mu.Unlock()
}

// feedClient is a single debug connection: a read pump that only needs
// to notice disconnects (the feed is one-directional), and a write pump
// pushing broadcast snapshots plus periodic pings, both modeled on
// SocketClient's readPump/writePump in socket_client.go.
type feedClient struct {
	conn *websocket.Conn
	send chan []byte
	feed *LiveFeed
	once sync.Once
}

func (c *feedClient) destroy() {
	c.once.Do(func() {
		c.feed.remove(c)
		_ = c.conn.Close()
	})
}

func (c *feedClient) readPump() {
	defer c.destroy()
	c.conn.SetReadLimit(maxFeedMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(liveFeedPongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(liveFeedPongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Println("livefeed close error:", err)
			}
			return
		}
	}
}

const maxFeedMessageSize = 512

func (c *feedClient) writePump() {
	pingTicker := time.NewTicker(liveFeedPingPeriod)
	defer func() {
		pingTicker.Stop()
		c.destroy()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(liveFeedWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-pingTicker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(liveFeedWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
