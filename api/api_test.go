package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaoyuanzhu-com/webhook-chat/server"
)

type testEnv struct {
	srv    *server.Server
	router *gin.Engine
}

func newTestEnv(t *testing.T, webhookURL string) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv, err := server.New(&server.Config{
		Port:           12345,
		Host:           "127.0.0.1",
		Env:            "development",
		DatabasePath:   filepath.Join(t.TempDir(), "chat.sqlite"),
		WebhookURL:     webhookURL,
		WebhookTimeout: 2 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { srv.DB().Close() })

	SetupRoutes(srv.Router(), NewHandlers(srv))
	return &testEnv{srv: srv, router: srv.Router()}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var resp DataResponse[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp.Data
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

type sessionJSON struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type messageJSON struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Sender  string `json:"sender"`
	Kind    string `json:"kind"`
	HTML    string `json:"html"`
}

func (e *testEnv) bootstrap(t *testing.T) sessionJSON {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/sessions/bootstrap", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decodeData[sessionJSON](t, w)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, "")

	w := env.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Body.String(), `"webhookConfigured":false`)
}

func TestSessionsLifecycle(t *testing.T) {
	env := newTestEnv(t, "")

	first := env.bootstrap(t)
	assert.Equal(t, "New Chat", first.Title)
	assert.Equal(t, first.ID, env.bootstrap(t).ID, "bootstrap reuses the most recent session")

	w := env.do(t, http.MethodDelete, "/api/sessions/"+first.ID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, ErrCodeConflict, decodeError(t, w).Error.Code)

	w = env.do(t, http.MethodPost, "/api/sessions", map[string]string{"title": "Second"})
	require.Equal(t, http.StatusCreated, w.Code)
	second := decodeData[sessionJSON](t, w)
	assert.Equal(t, "Second", second.Title)
	assert.Equal(t, "/api/sessions/"+second.ID, w.Header().Get("Location"))

	w = env.do(t, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "New Chat", decodeData[sessionJSON](t, w).Title)

	time.Sleep(2 * time.Millisecond)
	w = env.do(t, http.MethodPatch, "/api/sessions/"+first.ID, map[string]string{"title": " Renamed "})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Renamed", decodeData[sessionJSON](t, w).Title)

	w = env.do(t, http.MethodPatch, "/api/sessions/"+first.ID, map[string]string{"title": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ErrCodeValidation, decodeError(t, w).Error.Code)

	w = env.do(t, http.MethodGet, "/api/sessions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list ListResponse[sessionJSON]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data, 3)
	assert.Equal(t, first.ID, list.Data[0].ID, "rename moves the session to the top")

	w = env.do(t, http.MethodDelete, "/api/sessions/"+second.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/api/sessions/"+second.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSendMessage_MissingWebhook(t *testing.T) {
	env := newTestEnv(t, "")
	s := env.bootstrap(t)

	w := env.do(t, http.MethodPost, "/api/sessions/"+s.ID+"/messages", map[string]string{"content": "hi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ErrCodeWebhookNotConfigured, decodeError(t, w).Error.Code)

	w = env.do(t, http.MethodGet, "/api/sessions/"+s.ID+"/messages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData[struct {
		Messages []messageJSON `json:"messages"`
		Loading  bool          `json:"loading"`
	}](t, w)
	assert.Empty(t, data.Messages)
	assert.False(t, data.Loading)
}

func TestSendMessage_RoundTrip(t *testing.T) {
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"output": "You said **" + payload["message"].(string) + "**"})
	}))
	defer hook.Close()

	env := newTestEnv(t, hook.URL)
	s := env.bootstrap(t)

	w := env.do(t, http.MethodPost, "/api/sessions/"+s.ID+"/messages", map[string]string{"content": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ErrCodeValidation, decodeError(t, w).Error.Code)

	w = env.do(t, http.MethodPost, "/api/sessions/"+s.ID+"/messages", map[string]string{"content": "hello"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	result := decodeData[struct {
		UserMessage messageJSON   `json:"userMessage"`
		Reply       messageJSON   `json:"reply"`
		Messages    []messageJSON `json:"messages"`
	}](t, w)
	assert.Equal(t, "hello", result.UserMessage.Content)
	assert.Empty(t, result.UserMessage.HTML)
	assert.Equal(t, "You said **hello**", result.Reply.Content)
	assert.Contains(t, result.Reply.HTML, "<strong>hello</strong>")
	assert.Equal(t, "n8n", result.Reply.Sender)
	require.Len(t, result.Messages, 2)

	w = env.do(t, http.MethodGet, "/api/sessions/"+s.ID+"/export?format=json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "chat_"+s.ID+".json")
	assert.Contains(t, w.Body.String(), "You said **hello**")

	w = env.do(t, http.MethodGet, "/api/sessions/"+s.ID+"/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendMessage_UnknownSession(t *testing.T) {
	env := newTestEnv(t, "http://127.0.0.1:1/webhook")

	w := env.do(t, http.MethodPost, "/api/sessions/nope/messages", map[string]string{"content": "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWebhookSettings(t *testing.T) {
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer hook.Close()

	env := newTestEnv(t, "")

	w := env.do(t, http.MethodPost, "/api/webhook/test", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ErrCodeWebhookNotConfigured, decodeError(t, w).Error.Code)

	w = env.do(t, http.MethodPut, "/api/webhook", map[string]any{"url": hook.URL, "ignoreSslErrors": true})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/webhook", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeData[webhookResponse](t, w)
	assert.Equal(t, hook.URL, got.URL)
	assert.True(t, got.IgnoreSSLErrors)
	assert.True(t, got.Configured)
	assert.Equal(t, int64(2000), got.TimeoutMs)

	w = env.do(t, http.MethodPost, "/api/webhook/test", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"success"`)
}

func TestSettings(t *testing.T) {
	env := newTestEnv(t, "")

	w := env.do(t, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "info", decodeData[map[string]string](t, w)["log_level"])

	w = env.do(t, http.MethodPut, "/api/settings", map[string]string{"log_level": "loud"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, "/api/settings", map[string]string{"log_level": "WARN"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "warn", decodeData[map[string]string](t, w)["log_level"])

	w = env.do(t, http.MethodPut, "/api/settings", map[string]string{"log_level": "info"})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestNotificationStream(t *testing.T) {
	env := newTestEnv(t, "")
	ts := httptest.NewServer(env.router)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/notifications/stream", nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))

	reader := bufio.NewReader(res.Body)
	next := func() string {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "data: ") {
				return strings.TrimPrefix(strings.TrimSpace(line), "data: ")
			}
		}
	}

	assert.Contains(t, next(), `"type":"connected"`)

	// Wait for the subscription to register before publishing
	require.Eventually(t, func() bool {
		return env.srv.Notifications().SubscriberCount() == 1
	}, time.Second, 10*time.Millisecond)

	w := env.do(t, http.MethodPost, "/api/sessions", map[string]string{"title": "Live"})
	require.Equal(t, http.StatusCreated, w.Code)

	assert.Contains(t, next(), `"type":"sessions-changed"`)
	assert.Contains(t, next(), `"type":"toast"`)
}
