package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/vitalpoint-assistant/internal/appointment"
	"github.com/hackgods/vitalpoint-assistant/internal/assistant"
	"github.com/hackgods/vitalpoint-assistant/internal/directory"
	"github.com/hackgods/vitalpoint-assistant/internal/llm"
	redisclient "github.com/hackgods/vitalpoint-assistant/internal/redis"
	"github.com/hackgods/vitalpoint-assistant/internal/session"
	"github.com/hackgods/vitalpoint-assistant/pkg/logging"
)

type chatFunc func(ctx context.Context, sessionID, utterance string) (assistant.Reply, error)

func (f chatFunc) ProcessTurn(ctx context.Context, sessionID, utterance string) (assistant.Reply, error) {
	return f(ctx, sessionID, utterance)
}

// recordingChat echoes the utterance and remembers which session each turn ran under.
type recordingChat struct {
	mu       sync.Mutex
	sessions []string
}

func (c *recordingChat) ProcessTurn(_ context.Context, sessionID, utterance string) (assistant.Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions = append(c.sessions, sessionID)
	return assistant.Reply{Text: "echo: " + utterance}, nil
}

func quietLogger() *logging.Logger {
	return logging.NewWithWriter("error", io.Discard)
}

func testDirectory(t *testing.T) *directory.Directory {
	t.Helper()
	dir, err := directory.New(directory.Defaults())
	require.NoError(t, err)
	return dir
}

func newTestRouter(t *testing.T, chat ChatService) http.Handler {
	t.Helper()
	return NewRouter(RouterConfig{
		Chat:        chat,
		Directory:   testDirectory(t),
		Sessions:    NewSessionCookies("test-secret", time.Hour, false),
		CORSOrigins: []string{"https://app.vitalpoint.test"},
		Logger:      quietLogger(),
		Env:         "test",
		Version:     "v0.0.0",
	})
}

func postChat(t *testing.T, h http.Handler, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	t.Fatalf("response carries no %s cookie", SessionCookieName)
	return nil
}

func TestChatHandler_IssuesSessionAndReusesIt(t *testing.T) {
	chat := &recordingChat{}
	h := newTestRouter(t, chat)

	first := postChat(t, h, `{"userInput":"hello"}`)
	require.Equal(t, http.StatusOK, first.Code)

	var resp ChatResponse
	require.NoError(t, json.NewDecoder(first.Body).Decode(&resp))
	assert.Equal(t, "echo: hello", resp.Response)

	cookie := sessionCookie(t, first)
	assert.True(t, cookie.HttpOnly)

	second := postChat(t, h, `{"userInput":"again"}`, cookie)
	require.Equal(t, http.StatusOK, second.Code)

	require.Len(t, chat.sessions, 2)
	assert.NotEmpty(t, chat.sessions[0])
	assert.Equal(t, chat.sessions[0], chat.sessions[1])
}

func TestChatHandler_ForgedCookieStartsNewSession(t *testing.T) {
	chat := &recordingChat{}
	h := newTestRouter(t, chat)

	other := NewSessionCookies("another-secret", time.Hour, false)
	forged, err := other.sign("8f14e45f-ceea-467f-a0e6-1e5a9c6f2b1d")
	require.NoError(t, err)

	rec := postChat(t, h, `{"userInput":"hi"}`, &http.Cookie{Name: SessionCookieName, Value: forged})
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, chat.sessions, 1)
	assert.NotEqual(t, "8f14e45f-ceea-467f-a0e6-1e5a9c6f2b1d", chat.sessions[0])
}

func TestChatHandler_ExpiredCookieStartsNewSession(t *testing.T) {
	chat := &recordingChat{}
	h := newTestRouter(t, chat)

	stale := NewSessionCookies("test-secret", time.Hour, false)
	stale.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := stale.sign("8f14e45f-ceea-467f-a0e6-1e5a9c6f2b1d")
	require.NoError(t, err)

	rec := postChat(t, h, `{"userInput":"hi"}`, &http.Cookie{Name: SessionCookieName, Value: token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, "8f14e45f-ceea-467f-a0e6-1e5a9c6f2b1d", chat.sessions[0])
}

func TestChatHandler_RejectsBadBodies(t *testing.T) {
	called := false
	h := newTestRouter(t, chatFunc(func(ctx context.Context, sessionID, utterance string) (assistant.Reply, error) {
		called = true
		return assistant.Reply{}, nil
	}))

	for _, body := range []string{`not json`, `{}`, `{"userInput":"   "}`} {
		rec := postChat(t, h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)

		var resp ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "invalid_request_body", resp.Error)
	}
	assert.False(t, called)
}

func TestChatHandler_MapsErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid input", assistant.ErrInvalidInput, http.StatusBadRequest, "invalid_request_body"},
		{"lock busy", redisclient.ErrLockNotAcquired, http.StatusConflict, "turn_in_progress"},
		{"store down", errors.New("load session: connection refused"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestRouter(t, chatFunc(func(ctx context.Context, sessionID, utterance string) (assistant.Reply, error) {
				return assistant.Reply{}, tc.err
			}))

			rec := postChat(t, h, `{"userInput":"hello"}`)
			assert.Equal(t, tc.status, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tc.code, resp.Error)
		})
	}
}

func TestChatHandler_ConversationWithRealService(t *testing.T) {
	dir := testDirectory(t)
	engine := assistant.NewEngine(dir, appointment.NewMemoryLedger(), llm.DefaultPersona(), quietLogger())
	svc := assistant.NewService(engine, session.NewMemoryStore(time.Hour), session.NewLocalLocker(), llm.CannedCompleter{},
		assistant.WithLogger(quietLogger()))

	h := NewRouter(RouterConfig{
		Chat:      svc,
		Directory: dir,
		Sessions:  NewSessionCookies("test-secret", time.Hour, false),
		Logger:    quietLogger(),
	})

	send := func(text string, cookies ...*http.Cookie) (string, *httptest.ResponseRecorder) {
		body, err := json.Marshal(ChatRequest{UserInput: text})
		require.NoError(t, err)
		rec := postChat(t, h, string(body), cookies...)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp ChatResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		return resp.Response, rec
	}

	greeting, rec := send("hi")
	assert.Contains(t, greeting, "full name")
	cookie := sessionCookie(t, rec)

	reply, _ := send("Alice Carter", cookie)
	assert.Contains(t, reply, "Alice Carter")

	reply, _ = send("alice@example.com", cookie)
	assert.Contains(t, reply, "alice@example.com")

	reply, _ = send("I want to book an appointment", cookie)
	assert.Contains(t, reply, "Jane Doe")

	reply, _ = send("cardiology please", cookie)
	assert.Contains(t, reply, "John Smith")

	reply, _ = send("saturday", cookie)
	assert.Contains(t, reply, "12:00 PM")

	reply, _ = send("12:00 PM", cookie)
	assert.Contains(t, reply, "John Smith")

	reply, _ = send("show my appointments", cookie)
	assert.Contains(t, reply, "Saturday")
}

func TestDoctorsHandler(t *testing.T) {
	h := newTestRouter(t, &recordingChat{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/doctors", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp DoctorsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Doctors, 3)
	assert.Equal(t, "Dr. Jane Doe", resp.Doctors[0].Name)
}

func TestHealth_Liveness(t *testing.T) {
	h := newTestRouter(t, &recordingChat{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var resp LivenessResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "v0.0.0", resp.Version)
}

func TestHealth_ReadinessWithoutBackends(t *testing.T) {
	h := newTestRouter(t, &recordingChat{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ReadinessResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, depDisabled, resp.Dependencies["postgres"])
	assert.Equal(t, depDisabled, resp.Dependencies["redis"])
}

func TestHealth_ReadinessRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	handler := NewHealthHandler(nil, client, "test", "")

	rec := httptest.NewRecorder()
	handler.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ReadinessResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ok", resp.Dependencies["redis"])

	mr.Close()

	rec = httptest.NewRecorder()
	handler.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	resp = ReadinessResponse{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "down", resp.Dependencies["redis"])
}

func TestCORS(t *testing.T) {
	h := newTestRouter(t, &recordingChat{})

	preflight := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	preflight.Header.Set("Origin", "https://app.vitalpoint.test")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, preflight)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.vitalpoint.test", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	other := httptest.NewRequest(http.MethodGet, "/doctors", nil)
	other.Header.Set("Origin", "https://evil.test")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
