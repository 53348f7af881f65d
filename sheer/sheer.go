// Package sheer is the client transport of the editor: server-side code
// emits directives (script evaluation, alerts, confirmations, control
// updates, popup menus) and each editing session picks them up over an SSE
// stream. Confirmations are resolved on a later round trip through the
// message endpoint, not in-line.
package sheer

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Directive kinds.
const (
	KindEval    = "eval"
	KindAlert   = "alert"
	KindConfirm = "confirm"
	KindUpdate  = "update"
	KindPopup   = "popup"
)

// Directive is one instruction to the client.
type Directive struct {
	ID        string       `json:"id"`
	Kind      string       `json:"kind"`
	JS        string       `json:"js,omitempty"`
	Text      string       `json:"text,omitempty"`
	Target    string       `json:"target,omitempty"`
	HTML      string       `json:"html,omitempty"`
	Menu      []MenuOption `json:"menu,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// MenuOption is one entry of a popup menu directive.
type MenuOption struct {
	Title string `json:"title"`
	Icon  string `json:"icon,omitempty"`
	Click string `json:"click"`
}

// Emitter is what the controller emits client directives through.
type Emitter interface {
	Eval(js string)
	Alert(text string)
	Confirm(text string)
	Update(target, html string)
	ShowPopup(menu []MenuOption)
}

// Config tunes the per-session streams.
type Config struct {
	KeepaliveInterval time.Duration
	BufferSize        int
}

// DefaultConfig returns the default stream tuning.
func DefaultConfig() Config {
	return Config{
		KeepaliveInterval: 30 * time.Second,
		BufferSize:        100,
	}
}

// Hub owns the directive streams of all sessions.
type Hub struct {
	logger *zap.Logger
	config Config

	mu      sync.Mutex
	streams map[string]*Stream
}

// NewHub returns an empty hub.
func NewHub(logger *zap.Logger, config Config) *Hub {
	if config.BufferSize <= 0 {
		config = DefaultConfig()
	}
	return &Hub{
		logger:  logger,
		config:  config,
		streams: map[string]*Stream{},
	}
}

// Session returns the directive stream of a session, creating it on first
// use.
func (h *Hub) Session(sessionID string) *Stream {
	h.mu.Lock()
	defer h.mu.Unlock()
	stream, ok := h.streams[sessionID]
	if !ok {
		stream = &Stream{
			sessionID: sessionID,
			logger:    h.logger,
			queue:     make(chan Directive, h.config.BufferSize),
			keepalive: h.config.KeepaliveInterval,
		}
		h.streams[sessionID] = stream
	}
	return stream
}

// Drop removes a session's stream.
func (h *Hub) Drop(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.streams, sessionID)
}

// Stream queues directives for one session and serves them as SSE.
// Directives queue whether or not a client is attached; a full queue drops
// the directive with a warning, like any other lossy push channel.
type Stream struct {
	sessionID string
	logger    *zap.Logger
	queue     chan Directive
	keepalive time.Duration
}

func (s *Stream) send(kind string, directive Directive) {
	directive.ID = fmt.Sprintf("%s_%d", kind, time.Now().UnixNano())
	directive.Kind = kind
	directive.Timestamp = time.Now()
	select {
	case s.queue <- directive:
	default:
		s.logger.Warn("directive queue full, dropping directive",
			zap.String("sessionID", s.sessionID),
			zap.String("kind", kind))
	}
}

func (s *Stream) Eval(js string) {
	s.send(KindEval, Directive{JS: js})
}

func (s *Stream) Alert(text string) {
	s.send(KindAlert, Directive{Text: text})
}

func (s *Stream) Confirm(text string) {
	s.send(KindConfirm, Directive{Text: text})
}

func (s *Stream) Update(target, html string) {
	s.send(KindUpdate, Directive{Target: target, HTML: html})
}

func (s *Stream) ShowPopup(menu []MenuOption) {
	s.send(KindPopup, Directive{Menu: menu})
}

// Pending drains and returns all queued directives without serving them.
// Used by the MCP surface and by tests.
func (s *Stream) Pending() []Directive {
	var directives []Directive
	for {
		select {
		case directive := <-s.queue:
			directives = append(directives, directive)
		default:
			return directives
		}
	}
}

// Serve streams directives to an attached client until it disconnects.
func (s *Stream) Serve(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.logger.Info("directive stream attached", zap.String("sessionID", s.sessionID))

	ticker := time.NewTicker(s.keepalive)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("directive stream detached", zap.String("sessionID", s.sessionID))
			return
		case directive := <-s.queue:
			if err := writeEvent(w, directive); err != nil {
				s.logger.Error("failed to write directive",
					zap.String("sessionID", s.sessionID), zap.Error(err))
				return
			}
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		}
	}
}

// Discard is an Emitter that drops every directive. Used by surfaces that
// render without a connected client.
type Discard struct{}

func (Discard) Eval(string)            {}
func (Discard) Alert(string)           {}
func (Discard) Confirm(string)         {}
func (Discard) Update(string, string)  {}
func (Discard) ShowPopup([]MenuOption) {}

func writeEvent(w http.ResponseWriter, directive Directive) error {
	data, err := json.Marshal(directive)
	if err != nil {
		return fmt.Errorf("failed to marshal directive: %w", err)
	}
	_, err = fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", directive.ID, directive.Kind, data)
	return err
}
