package v1_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/4thel00z/netpath/internal"
	v1 "github.com/4thel00z/netpath/pkg/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminSecret = "client-test-secret"

func newTestServer(t *testing.T, secret string) *httptest.Server {
	t.Helper()
	store := internal.NewKnowledgeStore(internal.DefaultKnowledge, internal.WithRules(internal.DefaultKeywordRules))
	resolver := internal.NewResolver(store, internal.WithPolicy(internal.PolicyLocalOnly))

	srv := internal.NewServer(internal.ServerDeps{
		Config:      internal.DefaultConfig().Server,
		AdminSecret: secret,
		Ask:         internal.NewAskUseCase(resolver),
		Teach:       internal.NewTeachUseCase(store, nil),
		Knowledge:   internal.NewListKnowledgeUseCase(store),
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestClientAsk(t *testing.T) {
	ts := newTestServer(t, "")
	client, err := v1.New(v1.WithBaseURL(ts.URL + "/"))
	require.NoError(t, err)
	defer client.Close()

	ans, err := client.Ask(context.Background(), "Namaste", "student-7")
	require.NoError(t, err)
	assert.Equal(t, "local-knowledge", ans.Source)
	assert.True(t, ans.Success)
	assert.Contains(t, ans.Answer, "NetPath")

	ans, err = client.Ask(context.Background(), "What about VLAN tagging?", "")
	require.NoError(t, err)
	assert.Contains(t, ans.Answer, "802.1Q")
}

func TestClientAskEmptyQuestion(t *testing.T) {
	ts := newTestServer(t, "")
	client, err := v1.New(v1.WithBaseURL(ts.URL))
	require.NoError(t, err)

	_, err = client.Ask(context.Background(), "", "")
	var se *v1.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 400, se.StatusCode)
	assert.Equal(t, "question is required", se.Message)
}

func TestClientTeachAndKnowledge(t *testing.T) {
	ts := newTestServer(t, adminSecret)

	anon, err := v1.New(v1.WithBaseURL(ts.URL))
	require.NoError(t, err)
	_, err = anon.Teach(context.Background(), "mpls", "labels")
	var se *v1.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 401, se.StatusCode)

	token, err := internal.IssueAdminToken([]byte(adminSecret), "admin", time.Minute)
	require.NoError(t, err)

	admin, err := v1.New(v1.WithBaseURL(ts.URL), v1.WithToken(token), v1.WithTimeout(5*time.Second))
	require.NoError(t, err)

	res, err := admin.Teach(context.Background(), "MPLS", "Multiprotocol Label Switching")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, len(internal.DefaultKnowledge)+1, res.TotalKnowledge)

	dump, err := admin.Knowledge(context.Background())
	require.NoError(t, err)
	assert.Equal(t, internal.CompanyName, dump.Company)
	assert.Equal(t, "Multiprotocol Label Switching", dump.KnowledgeBase["mpls"])
}

func TestClientHealth(t *testing.T) {
	ts := newTestServer(t, "")
	client, err := v1.New(v1.WithBaseURL(ts.URL), v1.WithHTTPClient(ts.Client()))
	require.NoError(t, err)

	h, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", h.Status)
	assert.Equal(t, internal.Version, h.Version)
	assert.False(t, h.APIConfigured)
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := v1.New(v1.WithBaseURL(""))
	assert.Error(t, err)
}

func TestClientCustomRoutes(t *testing.T) {
	store := internal.NewKnowledgeStore(internal.DefaultKnowledge, internal.WithRules(internal.DefaultKeywordRules))
	cfg := internal.DefaultConfig().Server
	cfg.Routes = internal.RoutesConfig{Ask: "/api/ask", Teach: "/api/teach", Knowledge: "/api/knowledge"}

	srv := internal.NewServer(internal.ServerDeps{
		Config:    cfg,
		Ask:       internal.NewAskUseCase(internal.NewResolver(store, internal.WithPolicy(internal.PolicyLocalOnly))),
		Teach:     internal.NewTeachUseCase(store, nil),
		Knowledge: internal.NewListKnowledgeUseCase(store),
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	defaults, err := v1.New(v1.WithBaseURL(ts.URL))
	require.NoError(t, err)
	_, err = defaults.Ask(context.Background(), "hello", "")
	var se *v1.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 404, se.StatusCode)

	client, err := v1.New(v1.WithBaseURL(ts.URL), v1.WithRoutes(v1.Routes{
		Ask:       "/api/ask",
		Teach:     "/api/teach",
		Knowledge: "/api/knowledge",
	}))
	require.NoError(t, err)

	_, err = client.Teach(context.Background(), "mpls", "labels")
	require.NoError(t, err)

	ans, err := client.Ask(context.Background(), "MPLS", "")
	require.NoError(t, err)
	assert.Equal(t, "labels", ans.Answer)

	dump, err := client.Knowledge(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "labels", dump.KnowledgeBase["mpls"])
}
