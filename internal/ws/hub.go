package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"spot_difference/internal/game"
	"spot_difference/internal/logger"
)

const clickTimeout = 5 * time.Second

// Sessions - то, что хабу нужно от сервиса сессий
type Sessions interface {
	Click(ctx context.Context, username string, click game.Click) (game.Outcome, game.Snapshot, error)
	Snapshot(username string) (game.Snapshot, error)
}

// входящее сообщение клиента
type inbound struct {
	Type string `json:"type"`
	game.Click
}

type clickResult struct {
	Type    string           `json:"type"`
	Outcome game.OutcomeKind `json:"outcome"`
	Index   int              `json:"index"`
	Session game.Snapshot    `json:"session"`
}

type errorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// Hub рассылает события сессий всем соединениям игрока
type Hub struct {
	sessions Sessions
	clients  map[string]map[*Client]struct{} // username -> соединения
	mu       sync.RWMutex
}

func NewHub(sessions Sessions) *Hub {
	return &Hub{
		sessions: sessions,
		clients:  make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.Username]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.Username] = set
	}
	set[c] = struct{}{}
	logger.Debug("ws client registered", "username", c.Username, "connections", len(set))
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// removeLocked вызывать под h.mu
func (h *Hub) removeLocked(c *Client) {
	set, ok := h.clients[c.Username]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.Send)
	if len(set) == 0 {
		delete(h.clients, c.Username)
	}
}

// Connections - количество соединений игрока
func (h *Hub) Connections(username string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[username])
}

// Publish отправляет событие всем соединениям игрока.
// Клиент с переполненным буфером отключается.
func (h *Hub) Publish(username string, ev game.Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		logger.Error("ws marshal failed", "error", err)
		return
	}
	h.send(username, msg)
}

func (h *Hub) send(username string, msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients[username] {
		select {
		case c.Send <- msg:
		default:
			logger.Warn("ws client too slow, dropping", "username", username)
			h.removeLocked(c)
		}
	}
}

func (h *Hub) reply(c *Client, v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		logger.Error("ws marshal failed", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.Username][c]; !ok {
		return
	}
	select {
	case c.Send <- msg:
	default:
		h.removeLocked(c)
	}
}

func (h *Hub) sendState(c *Client) {
	if h.sessions == nil {
		return
	}
	snap, err := h.sessions.Snapshot(c.Username)
	if err != nil {
		return
	}
	h.reply(c, game.Event{Type: game.EventState, Snapshot: snap})
}

// HandleMessage обрабатывает сообщения клиента: клики и запрос состояния
func (h *Hub) HandleMessage(c *Client, raw []byte) {
	var msg inbound
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.reply(c, errorMessage{Type: "error", Error: "bad message"})
		return
	}

	switch msg.Type {
	case "click":
		if h.sessions == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), clickTimeout)
		defer cancel()

		out, snap, err := h.sessions.Click(ctx, c.Username, msg.Click)
		if err != nil {
			h.reply(c, errorMessage{Type: "error", Error: err.Error()})
			return
		}
		h.reply(c, clickResult{Type: "click_result", Outcome: out.Kind, Index: out.Index, Session: snap})
	case "state":
		h.sendState(c)
	default:
		h.reply(c, errorMessage{Type: "error", Error: "unknown message type"})
	}
}
