package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/liga/backend/internal/api/handlers"
	"github.com/wonny/liga/backend/internal/brain"
	"github.com/wonny/liga/backend/internal/contracts"
	"github.com/wonny/liga/backend/internal/data/repos"
	"github.com/wonny/liga/backend/internal/leagueconfig"
	"github.com/wonny/liga/backend/internal/realtime"
	"github.com/wonny/liga/backend/internal/realtime/cache"
	"github.com/wonny/liga/backend/internal/standings"
	"github.com/wonny/liga/backend/pkg/logger"
	"github.com/wonny/liga/backend/pkg/metrics"
	"github.com/wonny/liga/backend/pkg/redis"
)

const testRules = `
meta:
  league_id: api-test
stages:
  - id: clausura
    configuration:
      promotion_percentage: 20
      relegation_percentage: 20
`

type testEnv struct {
	server *httptest.Server
	store  *repos.MemoryStore
}

func roundRobin(stage, division string, players int) *contracts.Snapshot {
	s := &contracts.Snapshot{StageID: stage, DivisionID: division}
	for i := 1; i <= players; i++ {
		s.Enrollments = append(s.Enrollments, contracts.Enrollment{PlayerID: fmt.Sprintf("p%d", i), PlayerRef: fmt.Sprintf("Player %d", i)})
	}
	for i := 0; i < players; i++ {
		for j := i + 1; j < players; j++ {
			s.Matches = append(s.Matches, contracts.MatchRecord{
				Players:   [2]string{s.Enrollments[i].PlayerID, s.Enrollments[j].PlayerID},
				SetsWonA:  2,
				GamesWonA: 12,
				GamesWonB: 5,
				Status:    contracts.MatchPlayed,
			})
		}
	}
	return s
}

func newTestEnv(t *testing.T, limiter *IPRateLimiter) *testEnv {
	t.Helper()
	log := logger.NewNop()

	rules, err := leagueconfig.Parse([]byte(testRules))
	require.NoError(t, err)
	engine, err := standings.NewEngine(rules, log)
	require.NoError(t, err)

	store := repos.NewMemoryStore()
	require.NoError(t, store.SaveSnapshot(context.Background(), roundRobin("clausura", "primera", 10)))

	m := metrics.New()
	hub := realtime.NewHub(cache.NewStandingsCache(log), log, m)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	redisCache := redis.NewCache(redis.NewFromClient(nil), "test")
	orchestrator := brain.NewOrchestrator(store, store, engine, redisCache, hub, m, log)

	router := NewRouter(Handlers{
		Compute:   handlers.NewComputeHandler(engine, log),
		Standings: handlers.NewStandingsHandler(orchestrator, redis.NewRateLimiter(redis.NewFromClient(nil), "test"), log),
		Export:    handlers.NewExportHandler(orchestrator, log),
		Live:      handlers.NewLiveHandler(hub),
	}, m, limiter, log)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &testEnv{server: server, store: store}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, e.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.do(t, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestComputeRanking(t *testing.T) {
	env := newTestEnv(t, nil)

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(roundRobin("", "", 3)))

	resp := env.do(t, "POST", "/api/compute/ranking", buf.String())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Ranking []contracts.RankingEntry `json:"ranking"`
		Count   int                      `json:"count"`
	}
	decode(t, resp, &body)
	assert.Equal(t, 3, body.Count)
	assert.Equal(t, "p1", body.Ranking[0].PlayerID)
	require.NotNil(t, body.Ranking[0].Position)
	assert.Equal(t, 1, *body.Ranking[0].Position)
}

func TestComputeRanking_InvalidInput(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{
			name:  "missing counter",
			body:  `{"enrollments": [{"player_id": "a"}, {"player_id": "b"}], "matches": [{"players": ["a", "b"], "sets_won_b": 0, "games_won_a": 6, "games_won_b": 0, "status": "played"}]}`,
			field: "sets_won_a",
		},
		{
			name:  "self match",
			body:  `{"enrollments": [{"player_id": "a"}], "matches": [{"players": ["a", "a"], "sets_won_a": 1, "sets_won_b": 0, "games_won_a": 6, "games_won_b": 0, "status": "played"}]}`,
			field: "players",
		},
		{
			name:  "duplicate enrollment",
			body:  `{"enrollments": [{"player_id": "a"}, {"player_id": "a"}]}`,
			field: "player_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, "POST", "/api/compute/ranking", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

			var body map[string]interface{}
			decode(t, resp, &body)
			assert.Equal(t, tt.field, body["field"])
		})
	}
}

func TestComputeQuotas(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.do(t, "POST", "/api/compute/quotas", `{"n": 10, "configuration": {"promotion_percentage": 20, "fixed_relegation_slots": 3}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var quotas contracts.Quotas
	decode(t, resp, &quotas)
	assert.Equal(t, contracts.Quotas{Promotion: 2, Relegation: 3, Playoff: 2}, quotas)

	resp = env.do(t, "POST", "/api/compute/quotas", `{"n": 10, "configuration": {"promotion_percentage": 150}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = env.do(t, "POST", "/api/compute/quotas", `{"n": "ten"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestComputeZones(t *testing.T) {
	env := newTestEnv(t, nil)

	ranking, err := standings.ComputeRanking(roundRobin("", "", 6).Enrollments, roundRobin("", "", 6).Matches)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(handlers.ZonesRequest{
		Ranking: ranking,
		Quotas:  contracts.Quotas{Promotion: 1, Relegation: 1, Playoff: 1},
	}))

	resp := env.do(t, "POST", "/api/compute/zones", buf.String())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body handlers.ZonesResponse
	decode(t, resp, &body)
	require.Len(t, body.Zones.Ascenso, 1)
	assert.Equal(t, "p1", body.Zones.Ascenso[0].PlayerID)
	require.Len(t, body.Zones.Descenso, 1)
	assert.Equal(t, "p6", body.Zones.Descenso[0].PlayerID)
	assert.Len(t, body.Inactive, 2)

	resp = env.do(t, "POST", "/api/compute/zones", `{"ranking": [], "quotas": {"promotion": -1}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestComputeStandings(t *testing.T) {
	env := newTestEnv(t, nil)

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(roundRobin("clausura", "tercera", 10)))

	resp := env.do(t, "POST", "/api/compute/standings", buf.String())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var s contracts.Standings
	decode(t, resp, &s)
	// stage configuration from the rules file
	assert.Equal(t, contracts.Quotas{Promotion: 2, Relegation: 2, Playoff: 2}, s.Quotas)
	assert.NotEmpty(t, s.RunID)
}

func TestStandingsLifecycle(t *testing.T) {
	env := newTestEnv(t, nil)
	base := "/api/stages/clausura/divisions/primera"

	resp := env.do(t, "GET", base+"/standings", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, "POST", base+"/recompute", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var computed contracts.Standings
	decode(t, resp, &computed)
	assert.Len(t, computed.Ranking, 10)

	resp = env.do(t, "GET", base+"/standings", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var latest contracts.Standings
	decode(t, resp, &latest)
	assert.Equal(t, computed.RunID, latest.RunID)

	resp = env.do(t, "GET", base+"/zones", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var zones struct {
		Quotas contracts.Quotas         `json:"quotas"`
		Zones  contracts.ZoneAssignment `json:"zones"`
	}
	decode(t, resp, &zones)
	assert.Equal(t, 2, zones.Quotas.Promotion)
	assert.Len(t, zones.Zones.Ascenso, 2)

	resp = env.do(t, "GET", base+"/top?n=4", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var top struct {
		Top []contracts.RankingEntry `json:"top"`
	}
	decode(t, resp, &top)
	assert.Len(t, top.Top, 4)

	resp = env.do(t, "GET", base+"/top?n=zero", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, "POST", "/api/stages/clausura/divisions/missing/recompute", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRecomputeStage(t *testing.T) {
	env := newTestEnv(t, nil)
	require.NoError(t, env.store.SaveSnapshot(context.Background(), roundRobin("clausura", "segunda", 4)))

	resp := env.do(t, "POST", "/api/stages/clausura/recompute", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body handlers.StageRecomputeResponse
	decode(t, resp, &body)
	assert.Equal(t, "clausura", body.StageID)
	assert.Len(t, body.Standings, 2)
	assert.Empty(t, body.Failed)
}

func TestExports(t *testing.T) {
	env := newTestEnv(t, nil)
	base := "/api/stages/clausura/divisions/primera"

	resp := env.do(t, "GET", base+"/chart.png", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	require.Equal(t, http.StatusOK, env.do(t, "POST", base+"/recompute", "").StatusCode)

	resp = env.do(t, "GET", base+"/standings.xlsx", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "clausura-primera.xlsx")

	resp = env.do(t, "GET", base+"/chart.png", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, "GET", "/health", "")

	resp := env.do(t, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "http_requests_total")
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, NewIPRateLimiter(0.001, 1))

	first := env.do(t, "POST", "/api/compute/quotas", `{"n": 1}`)
	assert.Equal(t, http.StatusOK, first.StatusCode)

	second := env.do(t, "POST", "/api/compute/quotas", `{"n": 1}`)
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)

	// health is outside the limited subrouter
	assert.Equal(t, http.StatusOK, env.do(t, "GET", "/health", "").StatusCode)
}

func TestLiveFeed(t *testing.T) {
	env := newTestEnv(t, nil)

	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/api/stages/clausura/divisions/primera/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var hello realtime.Message
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, realtime.TypeHello, hello.Type)

	require.Equal(t, http.StatusOK, env.do(t, "POST", "/api/stages/clausura/divisions/primera/recompute", "").StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var update realtime.Message
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, realtime.TypeStandings, update.Type)
}
