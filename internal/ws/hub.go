// Package ws pushes governance events (promotions, rollbacks, control
// changes) to connected dashboard clients over WebSocket.
package ws

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/adlytics/govern/internal/metrics"
)

// Hub channel buffer sizes.
const (
	broadcastBuffer = 256
	registerBuffer  = 64
)

// Connection caps. Governance events are low-volume, so the limits are
// conservative.
const (
	maxClients             = 1000
	maxClientsPerWorkspace = 50
)

// workspaceBroadcast is sent through the broadcast channel to the Run goroutine.
type workspaceBroadcast struct {
	workspaceID string
	msg         []byte
}

// Hub manages active WebSocket clients and fan-out of governance events.
// All client map mutations happen exclusively in the Run goroutine.
type Hub struct {
	clients        map[*Client]bool
	workspaceCount map[string]int
	register       chan *Client
	unregister     chan *Client
	broadcast      chan workspaceBroadcast
	shutdown       chan struct{} // signals Run to begin graceful drain
	done           chan struct{} // closed when Run has finished draining
	count          atomic.Int64
	log            *logrus.Logger
	seq            *EventSequence
}

// NewHub creates a new Hub instance.
func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients:        make(map[*Client]bool),
		workspaceCount: make(map[string]int),
		register:       make(chan *Client, registerBuffer),
		unregister:     make(chan *Client, registerBuffer),
		broadcast:      make(chan workspaceBroadcast, broadcastBuffer),
		shutdown:       make(chan struct{}),
		done:           make(chan struct{}),
		log:            log,
		seq:            NewEventSequence(),
	}
}

// drainTimeout is how long the hub waits for clients to flush after shutdown.
const drainTimeout = 3 * time.Second

// Run starts the hub event loop. It should be run as a goroutine.
// It exits when Shutdown is called or the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.drainClients()

			return
		case <-h.shutdown:
			h.drainClients()

			return

		case client := <-h.register:
			if len(h.clients) >= maxClients {
				h.log.Warn("global connection limit reached, dropping client")
				client.closeSend()
				continue
			}
			if h.workspaceCount[client.WorkspaceID] >= maxClientsPerWorkspace {
				h.log.WithField("workspace_id", client.WorkspaceID).Warn("per-workspace connection limit reached, dropping client")
				client.closeSend()
				continue
			}
			h.clients[client] = true
			h.workspaceCount[client.WorkspaceID]++
			h.count.Store(int64(len(h.clients)))
			metrics.WSConnections.Set(float64(len(h.clients)))
			h.log.WithField("total", len(h.clients)).Info("client registered")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.dropClient(client)
			}
			h.count.Store(int64(len(h.clients)))
			metrics.WSConnections.Set(float64(len(h.clients)))
			h.log.WithField("total", len(h.clients)).Info("client unregistered")

		case b := <-h.broadcast:
			for client := range h.clients {
				if client.WorkspaceID != b.workspaceID {
					continue
				}
				select {
				case client.send <- b.msg:
				default:
					// Slow consumer; governance events must not back up
					// the hub, so the client is disconnected instead.
					h.dropClient(client)
				}
			}
			h.count.Store(int64(len(h.clients)))
		}
	}
}

// dropClient removes a client from the hub maps. Run goroutine only.
func (h *Hub) dropClient(client *Client) {
	delete(h.clients, client)
	client.closeSend()
	h.workspaceCount[client.WorkspaceID]--
	if h.workspaceCount[client.WorkspaceID] <= 0 {
		delete(h.workspaceCount, client.WorkspaceID)
	}
}

// maxBroadcastPayload is the maximum allowed notification payload size (4 KB).
const maxBroadcastPayload = 4096

// broadcastToWorkspace sends a message only to clients of the given workspace.
// The actual send is performed by the Run goroutine via a channel.
func (h *Hub) broadcastToWorkspace(workspaceID string, msg []byte) {
	if len(msg) > maxBroadcastPayload {
		h.log.WithFields(logrus.Fields{
			"workspace_id": workspaceID,
			"payload_size": len(msg),
			"max_size":     maxBroadcastPayload,
		}).Warn("dropping oversized broadcast payload")
		return
	}
	select {
	case h.broadcast <- workspaceBroadcast{workspaceID: workspaceID, msg: msg}:
	default:
		h.log.Warn("broadcast channel full, dropping message")
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	default:
		h.log.Warn("register channel full, dropping client")
		c.closeSend()
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	default:
		// Run loop already exited; client cleanup happened in Run shutdown.
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// BroadcastEvent assigns a sequence ID and broadcasts a typed event to all
// clients of the given workspace. It satisfies the db.Broadcaster interface
// used by the LISTEN/NOTIFY bridge.
func (h *Hub) BroadcastEvent(eventType, workspaceID string, data json.RawMessage) {
	evt := Event{
		Type:        eventType,
		ID:          h.seq.Next(workspaceID),
		WorkspaceID: workspaceID,
		Data:        data,
		Time:        time.Now(),
	}

	msg, err := json.Marshal(evt)
	if err != nil {
		h.log.WithError(err).Error("failed to marshal event")
		return
	}

	h.broadcastToWorkspace(workspaceID, msg)
}

// Shutdown initiates a graceful drain: a shutdown frame is sent to every
// connected client and the hub waits for write pumps to flush. It blocks
// until drain is complete or the timeout expires.
func (h *Hub) Shutdown() {
	close(h.shutdown)
	<-h.done
}

// drainClients sends a close notification to every client and waits for
// send buffers to flush.
func (h *Hub) drainClients() {
	if len(h.clients) == 0 {
		return
	}

	h.log.WithField("clients", len(h.clients)).Info("draining WebSocket clients")

	shutdownMsg := []byte(`{"type":"shutdown","message":"server shutting down"}`)
	for client := range h.clients {
		select {
		case client.send <- shutdownMsg:
		default:
		}
	}

	deadline := time.After(drainTimeout)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		allDrained := true

		for client := range h.clients {
			if len(client.send) > 0 {
				allDrained = false

				break
			}
		}

		if allDrained {
			break
		}

		select {
		case <-deadline:
			h.log.Warn("WebSocket drain timeout, closing remaining clients")

			goto closeAll
		case <-ticker.C:
		}
	}

closeAll:
	for client := range h.clients {
		client.closeSend()
		delete(h.clients, client)
	}

	h.workspaceCount = make(map[string]int)
	h.count.Store(0)
	metrics.WSConnections.Set(0)
}
