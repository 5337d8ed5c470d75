package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serverFixture struct {
	store  *KnowledgeStore
	server *Server
}

func newServerFixture(t *testing.T, secret string, resolverOpts ...ResolverOption) *serverFixture {
	t.Helper()
	store := newTestStore()
	resolver := NewResolver(store, resolverOpts...)

	srv := NewServer(ServerDeps{
		Config:      DefaultConfig().Server,
		AdminSecret: secret,
		Ask:         NewAskUseCase(resolver),
		Teach:       NewTeachUseCase(store, nil),
		Knowledge:   NewListKnowledgeUseCase(store),
	})
	return &serverFixture{store: store, server: srv}
}

func (f *serverFixture) do(t *testing.T, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		r.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, r)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestServerAskLocal(t *testing.T) {
	f := newServerFixture(t, "", WithPolicy(PolicyLocalOnly))

	rec := f.do(t, http.MethodPost, "/ask", `{"question":"HELLO","user_id":"s1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	res := decode[AnswerResult](t, rec)
	assert.Equal(t, AnswerResult{Answer: "Hi there!", Source: SourceLocal, Success: true}, res)
}

func TestServerAskRemote(t *testing.T) {
	f := newServerFixture(t, "", WithProvider(&fakeProvider{reply: "remote answer"}))

	rec := f.do(t, http.MethodPost, "/ask", `{"question":"Explain MPLS"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, SourceRemote, decode[AnswerResult](t, rec).Source)
}

func TestServerAskBadRequests(t *testing.T) {
	f := newServerFixture(t, "")

	rec := f.do(t, http.MethodPost, "/ask", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/ask", `{"question":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ErrEmptyQuestion.Error(), decode[map[string]string](t, rec)["error"])
}

func TestServerTeachThenAsk(t *testing.T) {
	f := newServerFixture(t, "", WithPolicy(PolicyLocalOnly))

	rec := f.do(t, http.MethodPost, "/teach", `{"question":"MPLS","answer":"Multiprotocol Label Switching."}`)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode[TeachOutput](t, rec)
	assert.True(t, out.Success)
	assert.Equal(t, 4, out.TotalKnowledge)

	rec = f.do(t, http.MethodPost, "/ask", `{"question":"mpls"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, AnswerResult{Answer: "Multiprotocol Label Switching.", Source: SourceLocal, Success: true}, decode[AnswerResult](t, rec))
}

func TestServerTeachErrors(t *testing.T) {
	f := newServerFixture(t, "")

	rec := f.do(t, http.MethodPost, "/teach", `{"question":"","answer":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/teach", `[]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServerTeachStoreFull(t *testing.T) {
	store := NewKnowledgeStore([]KnowledgeEntry{{Key: "a", Answer: "1"}}, WithMaxEntries(1))
	srv := NewServer(ServerDeps{
		Ask:       NewAskUseCase(NewResolver(store)),
		Teach:     NewTeachUseCase(store, nil),
		Knowledge: NewListKnowledgeUseCase(store),
	})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/teach", strings.NewReader(`{"question":"b","answer":"2"}`)))
	assert.Equal(t, http.StatusInsufficientStorage, rec.Code)

	out := decode[TeachOutput](t, rec)
	assert.False(t, out.Success)
	assert.Equal(t, 1, out.TotalKnowledge)
}

func TestServerKnowledge(t *testing.T) {
	f := newServerFixture(t, "")

	rec := f.do(t, http.MethodGet, "/knowledge", "")
	require.Equal(t, http.StatusOK, rec.Code)

	out := decode[ListKnowledgeOutput](t, rec)
	assert.Equal(t, CompanyName, out.Company)
	assert.Equal(t, 3, out.TotalResponses)
	assert.Equal(t, "Hi there!", out.KnowledgeBase["hello"])
}

func TestServerAdminRoutesRequireToken(t *testing.T) {
	const secret = "admin-secret"
	f := newServerFixture(t, secret)

	rec := f.do(t, http.MethodGet, "/knowledge", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/teach", `{"question":"mpls","answer":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	_, ok := f.store.Lookup("mpls")
	assert.False(t, ok)

	token, err := IssueAdminToken([]byte(secret), "admin", time.Minute)
	require.NoError(t, err)

	rec = f.do(t, http.MethodGet, "/knowledge", "", "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)

	// /ask stays public
	rec = f.do(t, http.MethodPost, "/ask", `{"question":"hello"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServerHealthInfoPing(t *testing.T) {
	f := newServerFixture(t, "")

	rec := f.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[map[string]any](t, rec)
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, CompanyName, health["service"])
	assert.Equal(t, false, health["api_configured"])

	rec = f.do(t, http.MethodGet, "/api/info", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, Version, decode[map[string]any](t, rec)["version"])

	rec = f.do(t, http.MethodGet, "/ping", "")
	require.Equal(t, http.StatusOK, rec.Code)
	ping := decode[map[string]string](t, rec)
	assert.Equal(t, "alive", ping["status"])
	_, err := time.Parse(time.RFC3339, ping["timestamp"])
	assert.NoError(t, err)
}

func TestServerWidget(t *testing.T) {
	f := newServerFixture(t, "")

	rec := f.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.True(t, bytes.Contains(rec.Body.Bytes(), []byte("/ask")))
}

func TestServerCORS(t *testing.T) {
	f := newServerFixture(t, "")

	rec := f.do(t, http.MethodOptions, "/ask", "",
		"Origin", "https://students.example",
		"Access-Control-Request-Method", http.MethodPost,
	)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServerCustomRoutes(t *testing.T) {
	store := newTestStore()
	cfg := DefaultConfig().Server
	cfg.Routes.Ask = "/api/ask"

	srv := NewServer(ServerDeps{
		Config:    cfg,
		Ask:       NewAskUseCase(NewResolver(store, WithPolicy(PolicyLocalOnly))),
		Teach:     NewTeachUseCase(store, nil),
		Knowledge: NewListKnowledgeUseCase(store),
	})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"question":"hello"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServerListenAndServeShutsDown(t *testing.T) {
	f := newServerFixture(t, "", WithPolicy(PolicyLocalOnly))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.server.ListenAndServe(ctx, addr) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/ping")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServerRejectsOversizedBodies(t *testing.T) {
	f := newServerFixture(t, "")
	big := strings.Repeat("a", maxBodyBytes+1)

	rec := f.do(t, http.MethodPost, "/ask", `{"question":"`+big+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = f.do(t, http.MethodPost, "/teach", `{"question":"mpls","answer":"`+big+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	_, ok := f.store.Lookup("mpls")
	assert.False(t, ok)
}
