package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pleimann/marionette/internal/action"
	"github.com/pleimann/marionette/internal/config"
	"github.com/pleimann/marionette/internal/engine"
	"github.com/pleimann/marionette/internal/inject"
	"github.com/pleimann/marionette/internal/macro"
)

type fixture struct {
	rec    *inject.Recorder
	exec   *engine.Executor
	server *Server
	http   *httptest.Server
}

func newFixture(t *testing.T, token string) *fixture {
	t.Helper()

	rec := inject.NewRecorder(1920, 1080)
	exec, err := engine.NewExecutor(rec, engine.WithLogger(zerolog.Nop()), engine.WithSleeper(func(time.Duration) {}))
	require.NoError(t, err)

	reg, err := macro.NewRegistry(&config.Config{Macros: []config.Macro{
		{Name: "copy", Description: "Copy", Keys: []string{"ctrl+c"}},
		{Name: "hello", Text: "hello"},
	}})
	require.NoError(t, err)

	s := NewServer(exec, reg, token)
	s.log = zerolog.Nop()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	return &fixture{rec: rec, exec: exec, server: s, http: ts}
}

func (f *fixture) do(t *testing.T, method, path, body string, header map[string]string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, f.http.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func decodeResponse(t *testing.T, data []byte) ExecuteResponse {
	t.Helper()
	var out ExecuteResponse
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestExecute(t *testing.T) {
	f := newFixture(t, "")

	resp, body := f.do(t, http.MethodPost, "/execute",
		`{"type":"MouseClick","params":{"button":"Left","x":10,"y":20}}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	out := decodeResponse(t, body)
	assert.Equal(t, "success", out.Status)
	assert.Equal(t, "Clicked Left at (10, 20)", out.Result)
	assert.Empty(t, out.Error)
	assert.Equal(t, []string{"move 10,20", "button primary down", "button primary up"}, f.rec.Strings())
}

func TestExecuteYAML(t *testing.T) {
	f := newFixture(t, "")

	doc := "type: Sequence\nparams:\n  actions:\n    - type: TypeText\n      params: {text: hi}\n    - type: KeyPress\n      params: {key: Enter}\n"
	resp, body := f.do(t, http.MethodPost, "/execute", doc, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, decodeResponse(t, body).Result, "Step 2: Pressed key Enter")
}

func TestExecuteBadRequest(t *testing.T) {
	f := newFixture(t, "")

	for _, body := range []string{
		`{"type":"Teleport","params":{}}`,
		`{"type":"MouseMove","params":{"x":"far"}}`,
		`{"type":"KeyPress","params":{}}`,
		``,
	} {
		resp, data := f.do(t, http.MethodPost, "/execute", body, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		out := decodeResponse(t, data)
		assert.Equal(t, "error", out.Status)
		assert.NotEmpty(t, out.Error)
	}
	assert.Empty(t, f.rec.Events())
}

func TestExecuteInjectionFailure(t *testing.T) {
	f := newFixture(t, "")
	f.rec.Fail = func(e inject.Event) error {
		if e.Kind == inject.EventText {
			return assert.AnError
		}
		return nil
	}

	resp, body := f.do(t, http.MethodPost, "/execute",
		`{"type":"Sequence","params":{"actions":[{"type":"MouseMove","params":{"x":1,"y":1}},{"type":"TypeText","params":{"text":"x"}}]}}`, nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	out := decodeResponse(t, body)
	assert.Equal(t, "error", out.Status)
	assert.Contains(t, out.Result, "Step 1: Moved to (1, 1)")
	assert.Contains(t, out.Error, assert.AnError.Error())
}

func TestExecuteUnavailable(t *testing.T) {
	f := newFixture(t, "")
	require.NoError(t, f.exec.Close())

	resp, body := f.do(t, http.MethodPost, "/execute", `{"type":"Delay","params":{"milliseconds":1}}`, nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "error", decodeResponse(t, body).Status)
}

func TestMethodNotAllowed(t *testing.T) {
	f := newFixture(t, "")
	resp, _ := f.do(t, http.MethodGet, "/execute", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHealthAndScreen(t *testing.T) {
	f := newFixture(t, "")

	resp, body := f.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"ok"`)

	resp, body = f.do(t, http.MethodGet, "/api/screen", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"width":1920,"height":1080}`, string(body))
}

func TestMacros(t *testing.T) {
	f := newFixture(t, "")

	resp, body := f.do(t, http.MethodGet, "/api/macros", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[
		{"name":"copy","description":"Copy","action":{"type":"Hotkey","params":{"modifiers":["Ctrl"],"key":"C","location":null}}},
		{"name":"hello","action":{"type":"TypeText","params":{"text":"hello","char_delay_ms":null}}}
	]`, string(body))

	resp, body = f.do(t, http.MethodPost, "/api/macros/copy", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Pressed hotkey: modifiers [Ctrl] + C", decodeResponse(t, body).Result)
	assert.Equal(t, []string{"key ctrl down", "key c down", "key c up", "key ctrl up"}, f.rec.Strings())

	resp, _ = f.do(t, http.MethodPost, "/api/macros/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestApplyConfig(t *testing.T) {
	f := newFixture(t, "")

	f.server.ApplyConfig(&config.Config{
		Server: config.ServerConfig{APIToken: "fresh"},
		Macros: []config.Macro{{Name: "only", Text: "x"}},
	})

	resp, _ := f.do(t, http.MethodGet, "/api/macros", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := f.do(t, http.MethodGet, "/api/macros", "", map[string]string{"Authorization": "Bearer fresh"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"only"`)
	assert.NotContains(t, string(body), `"copy"`)
}

func TestAuth(t *testing.T) {
	f := newFixture(t, "s3cret")

	resp, _ := f.do(t, http.MethodPost, "/execute", `{"type":"MouseMove","params":{"x":1,"y":1}}`, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/execute", `{"type":"MouseMove","params":{"x":1,"y":1}}`,
		map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, f.rec.Events())

	resp, _ = f.do(t, http.MethodPost, "/execute", `{"type":"MouseMove","params":{"x":1,"y":1}}`,
		map[string]string{"Authorization": "Bearer s3cret"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = f.do(t, http.MethodGet, "/api/screen?token=s3cret", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	for _, token := range []string{"s3cre", "s3cret!", "S3CRET"} {
		resp, _ = f.do(t, http.MethodGet, "/api/screen?token="+token, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, token)
	}

	// health stays open
	resp, _ = f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTokenMatches(t *testing.T) {
	assert.True(t, tokenMatches("Bearer abc", "Bearer abc"))
	assert.False(t, tokenMatches("Bearer ab", "Bearer abc"))
	assert.False(t, tokenMatches("", "abc"))
}

func TestWebSocket(t *testing.T) {
	f := newFixture(t, "tok")

	url := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/ws?token=tok"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	messages := []action.Action{
		action.MouseMove{X: 3, Y: 4},
		action.Hotkey{Modifiers: []action.Key{action.KeyAlt}, Key: action.KeyTab},
	}
	for _, a := range messages {
		data, err := action.Marshal(a)
		require.NoError(t, err)
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
	}
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"Nope"}`)))

	var replies []ExecuteResponse
	for i := 0; i < 3; i++ {
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var out ExecuteResponse
		require.NoError(t, conn.ReadJSON(&out))
		replies = append(replies, out)
	}

	assert.Equal(t, "Moved to (3, 4)", replies[0].Result)
	assert.Equal(t, "Pressed hotkey: modifiers [Alt] + Tab", replies[1].Result)
	assert.Equal(t, "error", replies[2].Status)
	assert.Contains(t, replies[2].Error, "unknown action type")
}

func TestWebSocketRequiresToken(t *testing.T) {
	f := newFixture(t, "tok")

	url := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRecoverMiddleware(t *testing.T) {
	s := &Server{log: zerolog.Nop()}
	h := s.recoverMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
