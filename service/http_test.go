package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/foomo/ribbon/command"
	"github.com/foomo/ribbon/content"
	"github.com/foomo/ribbon/notify"
	"github.com/foomo/ribbon/policy"
	"github.com/foomo/ribbon/ribbon"
	"github.com/foomo/ribbon/sheer"
)

func testServer(t *testing.T) (*Server, *content.Memory, *content.Item) {
	t.Helper()
	memory := content.NewMemory("master", "en")
	home := memory.AddItem(content.ItemSpec{Name: "home", HasPresentation: true})
	require.NotNil(t, home)
	about := memory.AddItem(content.ItemSpec{Parent: home.ID, Name: "about", HasPresentation: true})
	require.NotNil(t, about)
	team := memory.AddItem(content.ItemSpec{Parent: about.ID, Name: "team", HasPresentation: true})
	require.NotNil(t, team)

	commands := command.NewInProc()
	commands.Register("webedit:open", func(command.Message, *content.Item) error { return nil }, nil)

	broker := notify.NewBroker()
	memory.SetListener(broker)

	settings := ribbon.DefaultSettings()
	settings.ContentStartPath = "/home"

	server := NewServer(zap.NewNop(), memory, commands, policy.AllowAll{}, broker, settings, sheer.DefaultConfig())
	return server, memory, team
}

func activateRequest(item *content.Item, sessionID string) *http.Request {
	query := item.URI().Query()
	query.Set("mode", "edit")
	r := httptest.NewRequest(http.MethodGet, "/ribbon?"+query.Encode(), nil)
	if sessionID != "" {
		r.AddCookie(&http.Cookie{Name: sessionCookie, Value: sessionID})
	}
	return r
}

func TestActivateEndpoint(t *testing.T) {
	server, _, team := testServer(t)
	handler := server.Handler()

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, activateRequest(team, ""))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.Contains(t, body, `id="RibbonForm"`)
	require.Contains(t, body, `id="Ribbon"`)
	require.Contains(t, body, `id="Treecrumb"`)
	require.Contains(t, body, "about", "the trail is rendered into the page")

	var minted bool
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == sessionCookie && cookie.Value != "" {
			minted = true
		}
	}
	require.True(t, minted, "a session cookie is minted on first contact")
}

func TestActivateWithoutReferenceRedirectsToErrorPage(t *testing.T) {
	server, _, _ := testServer(t)
	handler := server.Handler()

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ribbon", nil))

	require.Equal(t, http.StatusSeeOther, w.Code)
	require.True(t, strings.HasPrefix(w.Header().Get("Location"), "/ribbon/error?message="))
}

func TestErrorPageEscapesMessage(t *testing.T) {
	server, _, _ := testServer(t)
	handler := server.Handler()

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ribbon/error?message=%3Cscript%3E", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), "<script>")
	require.Contains(t, w.Body.String(), "&lt;script&gt;")
}

func TestMessageEndpoint(t *testing.T) {
	server, _, team := testServer(t)
	handler := server.Handler()
	const sessionID = "test-session"

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, activateRequest(team, sessionID))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/ribbon/message", strings.NewReader(`{"name":"item:refresh"}`))
	r.AddCookie(&http.Cookie{Name: sessionCookie, Value: sessionID})
	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var response messageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.True(t, response.OK)

	directives := server.PendingDirectives(sessionID)
	require.Len(t, directives, 3, "two control updates and a relayout eval")
	require.Equal(t, sheer.KindUpdate, directives[0].Kind)
	require.Equal(t, "RibbonPane", directives[0].Target)
}

func TestMessageEndpointInvalidJSON(t *testing.T) {
	server, _, _ := testServer(t)
	handler := server.Handler()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/ribbon/message", strings.NewReader("{"))
	handler.ServeHTTP(w, r)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/ribbon/message", strings.NewReader(`{"name":""}`))
	handler.ServeHTTP(w, r)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMessageBeforeActivationAlerts(t *testing.T) {
	server, _, _ := testServer(t)
	handler := server.Handler()
	const sessionID = "cold-session"

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/ribbon/message", strings.NewReader(`{"name":"item:refresh"}`))
	r.AddCookie(&http.Cookie{Name: sessionCookie, Value: sessionID})
	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	directives := server.PendingDirectives(sessionID)
	require.Len(t, directives, 1)
	require.Equal(t, sheer.KindAlert, directives[0].Kind)
	require.Equal(t, ribbon.MsgNotAvailable, directives[0].Text)
}

func TestSubitemsEndpoint(t *testing.T) {
	server, _, team := testServer(t)
	handler := server.Handler()
	const sessionID = "test-session"

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, activateRequest(team, sessionID))
	require.Equal(t, http.StatusOK, w.Code)
	server.PendingDirectives(sessionID) // drop activation directives

	about := server.repo.ItemByPath("/home/about", "master", "en")
	require.NotNil(t, about)
	w = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/ribbon/subitems",
		strings.NewReader(`{"uri":"`+about.URI().String()+`"}`))
	r.AddCookie(&http.Cookie{Name: sessionCookie, Value: sessionID})
	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	directives := server.PendingDirectives(sessionID)
	require.Len(t, directives, 1)
	require.Equal(t, sheer.KindPopup, directives[0].Kind)
	require.Equal(t, "team", directives[0].Menu[0].Title)
}

func TestDebugSessionEndpoint(t *testing.T) {
	server, _, team := testServer(t)
	handler := server.Handler()
	const sessionID = "test-session"

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, activateRequest(team, sessionID))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/debug/session", nil)
	r.AddCookie(&http.Cookie{Name: sessionCookie, Value: sessionID})
	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "CurrentItemUri")
}

func TestBrowserClass(t *testing.T) {
	require.Equal(t, "firefox", browserClass("Mozilla/5.0 (X11; Linux) Gecko/20100101 Firefox/128.0"))
	require.Equal(t, "chrome", browserClass("Mozilla/5.0 AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"))
	require.Equal(t, "edge", browserClass("Mozilla/5.0 Chrome/126.0 Safari/537.36 Edg/126.0"))
	require.Equal(t, "safari", browserClass("Mozilla/5.0 (Macintosh) AppleWebKit/605.1.15 Version/17.4 Safari/605.1.15"))
	require.Equal(t, "unknown", browserClass("curl/8.5.0"))
}

func TestRenderTrailHeadless(t *testing.T) {
	server, _, team := testServer(t)

	trail, err := server.RenderTrail(team.URI().String())
	require.NoError(t, err)
	require.Contains(t, trail, "about")
	require.Contains(t, trail, "team")

	_, err = server.RenderTrail("not-a-uri")
	require.Error(t, err)

	_, err = server.RenderTrail(content.NewMemory("master", "en").Root("master").URI().String())
	require.Error(t, err, "items of another tree do not resolve")
}

func TestPostMessageHeadless(t *testing.T) {
	server, _, _ := testServer(t)
	const sessionID = "mcp-session"

	err := server.PostMessage(sessionID, command.Message{Name: "item:refresh"})
	require.NoError(t, err)

	directives := server.PendingDirectives(sessionID)
	require.Len(t, directives, 1)
	require.Equal(t, sheer.KindAlert, directives[0].Kind, "no activation, no context")
}
