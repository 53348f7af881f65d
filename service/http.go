// Package service exposes the editor controller over HTTP: the activation
// page, the message endpoint, the client directive stream and a session
// debug dump.
package service

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/foomo/ribbon/command"
	"github.com/foomo/ribbon/content"
	"github.com/foomo/ribbon/itemuri"
	"github.com/foomo/ribbon/notify"
	"github.com/foomo/ribbon/policy"
	"github.com/foomo/ribbon/ribbon"
	"github.com/foomo/ribbon/session"
	"github.com/foomo/ribbon/sheer"
)

// Cookie names of the editor page.
const (
	sessionCookie     = "webedit_session"
	activeStripCookie = "webedit_activestrip"
)

// Server wires the controller to HTTP.
type Server struct {
	logger   *zap.Logger
	repo     content.Repository
	commands command.Registry
	policies policy.Checker
	broker   *notify.Broker
	sessions *session.Manager
	hub      *sheer.Hub
	settings ribbon.Settings

	mu      sync.Mutex
	sources map[string]*notify.Source
}

// NewServer builds the HTTP surface.
func NewServer(
	logger *zap.Logger,
	repo content.Repository,
	commands command.Registry,
	policies policy.Checker,
	broker *notify.Broker,
	settings ribbon.Settings,
	streamConfig sheer.Config,
) *Server {
	return &Server{
		logger:   logger,
		repo:     repo,
		commands: commands,
		policies: policies,
		broker:   broker,
		sessions: session.NewManager(),
		hub:      sheer.NewHub(logger, streamConfig),
		settings: settings,
		sources:  map[string]*notify.Source{},
	}
}

// Handler returns the route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ribbon", s.handleActivate)
	mux.HandleFunc("GET /ribbon/error", s.handleErrorPage)
	mux.HandleFunc("POST /ribbon/message", s.handleMessage)
	mux.HandleFunc("POST /ribbon/result", s.handleConfirmResult)
	mux.HandleFunc("POST /ribbon/subitems", s.handleSubitems)
	mux.HandleFunc("GET /ribbon/events", s.handleEvents)
	mux.HandleFunc("GET /debug/session", s.handleDebugSession)
	return mux
}

// form binds a controller to the request's session.
func (s *Server) form(sessionID string) *ribbon.Form {
	return ribbon.NewForm(
		s.logger,
		s.repo,
		s.commands,
		s.policies,
		s.hub.Session(sessionID),
		s.source(sessionID),
		s.settings,
		s.sessions.Get(sessionID),
	)
}

// source returns the session's notification source, registering it with the
// broker on first use.
func (s *Server) source(sessionID string) *notify.Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	source, ok := s.sources[sessionID]
	if !ok {
		source = notify.NewSource(s.logger)
		s.sources[sessionID] = source
		s.broker.Register(sessionID, source)
	}
	return source
}

// sessionID reads the session cookie, minting one when absent.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
	})
	return id
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	sessionID := s.sessionID(w, r)
	activeStrip := ""
	if cookie, err := r.Cookie(activeStripCookie); err == nil {
		activeStrip = cookie.Value
	}

	page, err := s.form(sessionID).Activate(r.URL.Query(), activeStrip)
	if err != nil {
		s.logger.Warn("activation failed", zap.String("sessionID", sessionID), zap.Error(err))
		s.redirectToErrorPage(w, r, ribbon.MsgItemNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if page == nil {
		// Postback activation: state is preserved, directives go out over the
		// event stream.
		fmt.Fprint(w, "<!DOCTYPE html><html><body></body></html>")
		return
	}
	writePage(w, page, browserClass(r.UserAgent()))
}

func writePage(w http.ResponseWriter, page *ribbon.Page, bodyClass string) {
	fmt.Fprintf(w, "<!DOCTYPE html><html><body class=%q>", bodyClass)
	fmt.Fprint(w, `<form id="RibbonForm">`)
	fmt.Fprintf(w, `<div id="RibbonPane">%s</div>`, page.RibbonHTML)
	fmt.Fprintf(w, `<div id="Treecrumb">%s</div>`, page.TreecrumbHTML)
	fmt.Fprintf(w, `<div id="Notifications">%s</div>`, page.NotificationsHTML)
	fmt.Fprint(w, `</form></body></html>`)
}

func (s *Server) redirectToErrorPage(w http.ResponseWriter, r *http.Request, message string) {
	http.Redirect(w, r, "/ribbon/error?message="+url.QueryEscape(message), http.StatusSeeOther)
}

func (s *Server) handleErrorPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html><html><body><div class="scError">%s</div></body></html>`,
		html.EscapeString(r.URL.Query().Get("message")))
}

type messageRequest struct {
	Name      string            `json:"name"`
	Sender    string            `json:"sender,omitempty"`
	Arguments map[string]string `json:"arguments,omitempty"`
}

type messageResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := s.sessionID(w, r)
	var request messageRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if request.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	err := s.form(sessionID).HandleMessage(command.Message{
		Name:      request.Name,
		Sender:    request.Sender,
		Arguments: request.Arguments,
	})
	writeJSON(w, messageResponse{OK: err == nil, Error: errorString(err)})
}

func (s *Server) handleConfirmResult(w http.ResponseWriter, r *http.Request) {
	sessionID := s.sessionID(w, r)
	var request struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	s.form(sessionID).HandleConfirmResult(request.Result)
	writeJSON(w, messageResponse{OK: true})
}

func (s *Server) handleSubitems(w http.ResponseWriter, r *http.Request) {
	sessionID := s.sessionID(w, r)
	var request struct {
		URI string `json:"uri"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	s.form(sessionID).ShowSubitems(request.URI)
	writeJSON(w, messageResponse{OK: true})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sessionID := s.sessionID(w, r)
	s.hub.Session(sessionID).Serve(w, r)
}

func (s *Server) handleDebugSession(w http.ResponseWriter, r *http.Request) {
	sessionID := s.sessionID(w, r)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, spew.Sdump(s.sessions.Get(sessionID).Snapshot()))
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// browserClass maps a user agent onto the body class the editor styles key
// off.
func browserClass(userAgent string) string {
	switch {
	case strings.Contains(userAgent, "Firefox"):
		return "firefox"
	case strings.Contains(userAgent, "Edg"):
		return "edge"
	case strings.Contains(userAgent, "Chrome"):
		return "chrome"
	case strings.Contains(userAgent, "Safari"):
		return "safari"
	default:
		return "unknown"
	}
}

// --- headless rendering, used by the MCP surface ---

// RenderTrail renders the treecrumb of an item outside any session.
func (s *Server) RenderTrail(uriString string) (string, error) {
	form, item, err := s.scratchForm(uriString)
	if err != nil {
		return "", err
	}
	return form.RenderTreecrumb(item), nil
}

// RenderNotificationsPanel renders the notification panel of an item outside
// any session.
func (s *Server) RenderNotificationsPanel(uriString string) (string, error) {
	form, item, err := s.scratchForm(uriString)
	if err != nil {
		return "", err
	}
	return form.RenderNotifications(item), nil
}

// PostMessage routes a message into a session's controller.
func (s *Server) PostMessage(sessionID string, msg command.Message) error {
	return s.form(sessionID).HandleMessage(msg)
}

// PendingDirectives drains the directives queued for a session.
func (s *Server) PendingDirectives(sessionID string) []sheer.Directive {
	return s.hub.Session(sessionID).Pending()
}

func (s *Server) scratchForm(uriString string) (*ribbon.Form, *content.Item, error) {
	uri := itemuri.Parse(uriString)
	if uri == nil {
		return nil, nil, fmt.Errorf("invalid item uri %q", uriString)
	}
	item := s.repo.GetItem(uri)
	if item == nil {
		return nil, nil, fmt.Errorf("item not found: %s", uriString)
	}
	state := session.NewState()
	if err := state.SetCurrentItemURI(uri.String()); err != nil {
		return nil, nil, err
	}
	form := ribbon.NewForm(s.logger, s.repo, s.commands, s.policies, sheer.Discard{},
		notify.NewSource(s.logger), s.settings, state)
	form.SetMode(ribbon.ModeEdit)
	return form, item, nil
}
