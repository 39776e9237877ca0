package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/liga/backend/internal/contracts"
	"github.com/wonny/liga/backend/internal/realtime/cache"
	"github.com/wonny/liga/backend/pkg/logger"
)

type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(cache.NewStandingsCache(logger.NewNop()), logger.NewNop(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		ServeWs(hub, w, r, q.Get("stage"), q.Get("division"))
	}))
	t.Cleanup(server.Close)
	return hub, server
}

func dial(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func sample(stage, division, run string) *contracts.Standings {
	pos := 1
	return &contracts.Standings{
		RunID:      run,
		StageID:    stage,
		DivisionID: division,
		Ranking:    []contracts.RankingEntry{{PlayerID: "a", MeetsMinimum: true, Position: &pos}},
		Zones:      contracts.NewZoneAssignment(),
		ComputedAt: time.Now(),
	}
}

func TestHub_SendsLatestOnConnect(t *testing.T) {
	hub, server := startHub(t)
	hub.Publish(sample("s1", "primera", "run-1"))

	conn := dial(t, server, "stage=s1&division=primera")

	f := readFrame(t, conn)
	assert.Equal(t, TypeStandings, f.Type)

	var update StandingsUpdate
	require.NoError(t, json.Unmarshal(f.Payload, &update))
	assert.Equal(t, "run-1", update.RunID)
	assert.Equal(t, "primera", update.DivisionID)
}

func TestHub_BroadcastsToDivisionViewers(t *testing.T) {
	hub, server := startHub(t)

	primera := dial(t, server, "stage=s1&division=primera")
	all := dial(t, server, "")

	// registration is confirmed by the hello frame
	assert.Equal(t, TypeHello, readFrame(t, primera).Type)
	assert.Equal(t, TypeHello, readFrame(t, all).Type)
	assert.Equal(t, 2, hub.ClientCount())

	hub.Publish(sample("s1", "segunda", "run-2"))
	hub.Publish(sample("s1", "primera", "run-3"))

	// the division viewer only sees its own division
	var update StandingsUpdate
	require.NoError(t, json.Unmarshal(readFrame(t, primera).Payload, &update))
	assert.Equal(t, "run-3", update.RunID)

	// the unfiltered viewer sees both, in order
	require.NoError(t, json.Unmarshal(readFrame(t, all).Payload, &update))
	assert.Equal(t, "run-2", update.RunID)
	require.NoError(t, json.Unmarshal(readFrame(t, all).Payload, &update))
	assert.Equal(t, "run-3", update.RunID)
}

func TestHub_PublishNil(t *testing.T) {
	hub := NewHub(cache.NewStandingsCache(logger.NewNop()), logger.NewNop(), nil)
	hub.Publish(nil)
	assert.Equal(t, 0, hub.latest.Len())
}

func TestDivisionKey(t *testing.T) {
	assert.Equal(t, "s1:primera", DivisionKey("s1", "primera"))

	msg := NewStandingsMessage(sample("s1", "primera", "r"))
	assert.Equal(t, "s1:primera", msg.Key)
	assert.Equal(t, TypeStandings, msg.Type)
}
