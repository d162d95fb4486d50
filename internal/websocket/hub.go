// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

// Package websocket streams live-detection overlay state to connected
// clients. The detection poller pushes every overlay change into the hub;
// the hub fans it out to all registered clients, dropping slow ones
// rather than letting them stall the stream.
package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"github.com/danakm/tidesweep/internal/logging"
	"github.com/danakm/tidesweep/internal/metrics"
)

// Message types for the overlay stream.
const (
	MessageTypeOverlay         = "overlay_state"
	MessageTypeDetectionStatus = "detection_status"
	MessageTypePing            = "ping"
	MessageTypePong            = "pong"
)

// Message is one frame on the stream.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a hub. Run it under a supervisor via RunWithContext.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// RunWithContext runs the hub until ctx is cancelled, then closes every
// client and returns ctx.Err(). Lifecycle events are drained ahead of
// broadcasts so client state settles before messages fan out.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.register(client)
			continue
		case client := <-h.Unregister:
			h.unregister(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown()
			return ctx.Err()
		case client := <-h.Register:
			h.register(client)
		case client := <-h.Unregister:
			h.unregister(client)
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WebSocketConnections.Set(float64(total))
	logging.Info().Int("total_clients", total).Msg("Overlay stream client connected")
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WebSocketConnections.Set(float64(total))
	logging.Info().Int("total_clients", total).Msg("Overlay stream client disconnected")
}

// broadcastToClients fans one message out in client-ID order. A client
// whose send buffer is full is disconnected; the overlay refreshes every
// poll cycle, so there is no value in queueing behind a stalled reader.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	var toRemove []*Client
	for _, client := range clients {
		select {
		case client.send <- message:
		default:
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
	}
	if len(toRemove) > 0 {
		metrics.WebSocketConnections.Set(float64(len(h.clients)))
		logging.Warn().Int("dropped", len(toRemove)).Msg("Dropped slow overlay stream clients")
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	count := len(h.clients)
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.mu.Unlock()

	metrics.WebSocketConnections.Set(0)
	logging.Info().
		Str("component", "overlay-hub").
		Int("clients_closed", count).
		Msg("Overlay stream hub stopped")
}

// BroadcastOverlay queues an overlay-state update for all clients. The
// update is dropped when the broadcast queue is full; the next poll cycle
// supersedes it anyway.
func (h *Hub) BroadcastOverlay(state interface{}) {
	select {
	case h.broadcast <- Message{Type: MessageTypeOverlay, Data: state}:
	default:
		logging.Warn().Msg("Broadcast queue full, dropping overlay update")
	}
}

// BroadcastDetectionStatus tells clients the detection loop started or
// stopped.
func (h *Hub) BroadcastDetectionStatus(active bool) {
	data := map[string]bool{"active": active}
	select {
	case h.broadcast <- Message{Type: MessageTypeDetectionStatus, Data: data}:
	default:
		logging.Warn().Msg("Broadcast queue full, dropping detection status")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// MarshalMessage converts a message to JSON.
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
