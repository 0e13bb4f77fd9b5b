package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/crowdstake/crowdstake-server/common/logging"
	"github.com/crowdstake/crowdstake-server/common/metrics"
	"github.com/crowdstake/crowdstake-server/common/utils"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"go.uber.org/atomic"
)

const (
	EventDonationUpdate = "donation-update"

	clientBuffer = 16
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = pongWait * 9 / 10
)

// DonationUpdate is pushed to subscribers after every committed donation.
type DonationUpdate struct {
	CampaignID      int64           `json:"campaign_id"`
	NewAmountRaised decimal.Decimal `json:"new_amount_raised"`
}

// Event is the envelope of every websocket message.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans donation updates out to websocket subscribers. Publishing never blocks on
// slow clients; a client whose buffer is full is dropped.
type Hub struct {
	logger   logging.Logger
	upgrader websocket.Upgrader
	events   *utils.UnlimitedChannel[*DonationUpdate]

	mu      sync.Mutex
	clients map[*subscriber]struct{}
	count   *atomic.Int64
}

func NewHub(logger logging.Logger) *Hub {
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		events:  utils.NewUnlimitedChannel[*DonationUpdate](),
		clients: make(map[*subscriber]struct{}),
		count:   atomic.NewInt64(0),
	}
}

// NotifyDonation queues an update. It is a no-op once the hub stopped.
func (h *Hub) NotifyDonation(campaignID int64, newAmountRaised decimal.Decimal) {
	select {
	case h.events.In() <- &DonationUpdate{CampaignID: campaignID, NewAmountRaised: newAmountRaised}:
	case <-h.events.Done():
	}
}

// Clients returns the number of connected subscribers.
func (h *Hub) Clients() int64 {
	return h.count.Load()
}

// Run broadcasts queued updates until ctx is done, then disconnects everyone.
func (h *Hub) Run(ctx context.Context) error {
	defer h.shutdown()
	for {
		select {
		case <-ctx.Done():
			return nil
		case u := <-h.events.Out():
			msg, err := json.Marshal(&Event{Event: EventDonationUpdate, Data: u})
			if err != nil {
				h.logger.Error("marshal donation update: %v", err)
				continue
			}
			h.broadcast(msg)
		}
	}
}

func (h *Hub) broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("dropping slow websocket client %s", c.conn.RemoteAddr())
			h.removeLocked(c)
		}
	}
}

func (h *Hub) shutdown() {
	h.events.Close()
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
}

func (h *Hub) add(c *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	h.count.Inc()
	metrics.AddWebsocketClients(1)
}

func (h *Hub) remove(c *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *subscriber) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.count.Dec()
	metrics.AddWebsocketClients(-1)
}

// ServeHTTP upgrades the request and subscribes the connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade: %v", err)
		return
	}
	c := &subscriber{conn: conn, send: make(chan []byte, clientBuffer)}
	h.add(c)
	go h.writePump(c)
	go h.readPump(c)
}

// readPump only handles control frames; subscribers have nothing to say.
func (h *Hub) readPump(c *subscriber) {
	defer h.remove(c)
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read: %v", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(c *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}
