package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/NeuralTrust/AuthShield/pkg/anomaly"
	"github.com/NeuralTrust/AuthShield/pkg/app/scoring"
	"github.com/NeuralTrust/AuthShield/pkg/domain/account"
	"github.com/NeuralTrust/AuthShield/pkg/domain/event"
	"github.com/NeuralTrust/AuthShield/pkg/domain/threshold"
	"github.com/NeuralTrust/AuthShield/pkg/graph"
	"github.com/NeuralTrust/AuthShield/pkg/infra/identity"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEventRepo struct {
	recent  []event.Record
	flagged []event.Record
}

func (s *stubEventRepo) SaveEvent(_ context.Context, _ *event.Record) error { return nil }

func (s *stubEventRepo) RecentEvents(_ context.Context, limit int) ([]event.Record, error) {
	if limit < len(s.recent) {
		return s.recent[:limit], nil
	}
	return s.recent, nil
}

func (s *stubEventRepo) UserEvents(_ context.Context, userID string) ([]event.Record, error) {
	var mine []event.Record
	for _, r := range s.recent {
		if r.UserID == userID {
			mine = append(mine, r)
		}
	}
	return mine, nil
}

func (s *stubEventRepo) FlaggedUsers(_ context.Context) ([]event.Record, error) {
	return s.flagged, nil
}

type stubFreezer struct {
	frozen   []string
	unfrozen []string
	fail     bool
}

func (s *stubFreezer) Freeze(_ context.Context, userID, _ string, _ float64, _ string) identity.ActionResult {
	if s.fail {
		return identity.ActionResult{Success: false, UserID: userID, Error: "provider unavailable"}
	}
	s.frozen = append(s.frozen, userID)
	return identity.ActionResult{Success: true, UserID: userID, Status: "blocked"}
}

func (s *stubFreezer) Unfreeze(_ context.Context, userID string) identity.ActionResult {
	s.unfrozen = append(s.unfrozen, userID)
	return identity.ActionResult{Success: true, UserID: userID, Status: "unblocked"}
}

func (s *stubFreezer) State(string) account.State { return account.StateActive }
func (s *stubFreezer) MarkActive(string)          {}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func testThresholdStore() threshold.Store {
	return threshold.NewStore(threshold.Thresholds{ClusterSize: 5, Similarity: 0.85, RiskScore: 0.7}, nil, quietLogger())
}

func testScoringService(g *graph.Graph) scoring.Service {
	logger := quietLogger()
	return scoring.NewService(anomaly.NewScorer("", logger), g, testThresholdStore(), &stubEventRepo{}, &stubFreezer{}, logger)
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) (int, map[string]interface{}) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp.StatusCode, decoded
}

func TestGetThresholdsHandler(t *testing.T) {
	app := fiber.New()
	app.Get("/api/thresholds", NewGetThresholdsHandler(quietLogger(), testThresholdStore()).Handle)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/thresholds", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var got threshold.Thresholds
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, 5, got.ClusterSize)
	assert.Equal(t, 0.7, got.RiskScore)
}

func TestUpdateThresholdsHandler_RejectsInvalid(t *testing.T) {
	store := testThresholdStore()
	app := fiber.New()
	app.Post("/api/thresholds", NewUpdateThresholdsHandler(quietLogger(), store).Handle)

	status, body := postJSON(t, app, "/api/thresholds", threshold.Thresholds{ClusterSize: -1, Similarity: 0.8, RiskScore: 0.5})
	assert.Equal(t, 400, status)
	assert.Contains(t, body["error"], "cluster_size")

	// Store keeps the last valid value.
	assert.Equal(t, 5, store.Get().ClusterSize)
}

func TestUpdateThresholdsHandler_AppliesValid(t *testing.T) {
	store := testThresholdStore()
	app := fiber.New()
	app.Post("/api/thresholds", NewUpdateThresholdsHandler(quietLogger(), store).Handle)

	status, _ := postJSON(t, app, "/api/thresholds", threshold.Thresholds{ClusterSize: 8, Similarity: 0.9, RiskScore: 0.6})
	assert.Equal(t, 200, status)
	assert.Equal(t, 8, store.Get().ClusterSize)
	assert.Equal(t, 0.6, store.Get().RiskScore)
}

func TestSimulateHandler_ScoresEvent(t *testing.T) {
	g := graph.New()
	app := fiber.New()
	app.Post("/api/simulate", NewSimulateHandler(quietLogger(), testScoringService(g)).Handle)

	status, body := postJSON(t, app, "/api/simulate", map[string]interface{}{
		"user_id":              "user-1",
		"ip_address":           "10.1.2.3",
		"user_agent":           "Mozilla/5.0 Chrome/120.0",
		"canvas_hash":          "cv-1",
		"typing_latency_array": []float64{100, 120, 90},
	})

	assert.Equal(t, 200, status)
	risk, ok := body["risk"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, risk, "risk_score")
	assert.True(t, g.HasUser("user-1"))
}

func TestSimulateHandler_MissingUserID(t *testing.T) {
	app := fiber.New()
	app.Post("/api/simulate", NewSimulateHandler(quietLogger(), testScoringService(graph.New())).Handle)

	status, _ := postJSON(t, app, "/api/simulate", map[string]interface{}{"ip_address": "10.0.0.1"})
	assert.Equal(t, 400, status)
}

func TestFingerprintHandler_PureNormalization(t *testing.T) {
	app := fiber.New()
	app.Post("/api/fingerprint", NewFingerprintHandler(quietLogger()).Handle)

	status, body := postJSON(t, app, "/api/fingerprint", map[string]interface{}{
		"user_id":    "user-1",
		"ip_address": "192.168.1.1",
		"user_agent": "curl/8.0",
	})

	assert.Equal(t, 200, status)
	assert.NotEmpty(t, body["behavior_hash"])
	vector, ok := body["feature_vector"].([]interface{})
	require.True(t, ok)
	assert.Len(t, vector, 16)
}

func TestGetClusterHandler_UnknownUser404(t *testing.T) {
	app := fiber.New()
	app.Get("/api/cluster/:user_id", NewGetClusterHandler(quietLogger(), graph.New()).Handle)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/cluster/ghost", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestGetClusterHandler_KnownUser(t *testing.T) {
	g := graph.New()
	g.AddObservation("u1", "bh", "dh", "10.0.0")
	g.AddObservation("u2", "bh", "dh2", "10.0.1")

	app := fiber.New()
	app.Get("/api/cluster/:user_id", NewGetClusterHandler(quietLogger(), g).Handle)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/cluster/u1", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	cluster, ok := body["cluster"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 1, cluster["cluster_size"])
}

func TestFreezeUserHandler_Success(t *testing.T) {
	freezer := &stubFreezer{}
	app := fiber.New()
	app.Post("/api/freeze/:user_id", NewFreezeUserHandler(quietLogger(), freezer, graph.New()).Handle)

	status, body := postJSON(t, app, "/api/freeze/user-9", map[string]interface{}{"reason": "fraud review"})
	assert.Equal(t, 200, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []string{"user-9"}, freezer.frozen)
}

func TestFreezeUserHandler_ProviderFailure(t *testing.T) {
	app := fiber.New()
	app.Post("/api/freeze/:user_id", NewFreezeUserHandler(quietLogger(), &stubFreezer{fail: true}, graph.New()).Handle)

	status, body := postJSON(t, app, "/api/freeze/user-9", nil)
	assert.Equal(t, 502, status)
	assert.Equal(t, false, body["success"])
}

func TestUnfreezeUserHandler(t *testing.T) {
	freezer := &stubFreezer{}
	app := fiber.New()
	app.Post("/api/unfreeze/:user_id", NewUnfreezeUserHandler(quietLogger(), freezer).Handle)

	status, _ := postJSON(t, app, "/api/unfreeze/user-9", nil)
	assert.Equal(t, 200, status)
	assert.Equal(t, []string{"user-9"}, freezer.unfrozen)
}

func TestListEventsHandler_Limit(t *testing.T) {
	repo := &stubEventRepo{recent: []event.Record{{UserID: "a"}, {UserID: "b"}, {UserID: "c"}}}
	app := fiber.New()
	app.Get("/api/events", NewListEventsHandler(quietLogger(), repo).Handle)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/events?limit=2", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.EqualValues(t, 2, body["count"])
}

func TestUserEventsHandler_FiltersByUser(t *testing.T) {
	repo := &stubEventRepo{recent: []event.Record{{UserID: "a"}, {UserID: "b"}, {UserID: "a"}}}
	app := fiber.New()
	app.Get("/api/user/:user_id/events", NewUserEventsHandler(quietLogger(), repo).Handle)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/user/a/events", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.EqualValues(t, 2, body["count"])
	assert.Equal(t, "a", body["user_id"])
}

func TestAuth0WebhookHandler_BatchedLogs(t *testing.T) {
	g := graph.New()
	app := fiber.New()
	app.Post("/webhook/auth0", NewAuth0WebhookHandler(quietLogger(), testScoringService(g)).Handle)

	status, body := postJSON(t, app, "/webhook/auth0", map[string]interface{}{
		"logs": []map[string]interface{}{
			{"data": map[string]interface{}{"type": "s", "user_id": "auth0|u1", "ip": "10.0.0.1", "user_agent": "Chrome"}},
			{"data": map[string]interface{}{"type": "f", "user_id": "auth0|u2", "ip": "10.0.0.2"}},
			{"data": map[string]interface{}{"type": "s", "ip": "10.0.0.3"}},
		},
	})

	assert.Equal(t, 200, status)
	assert.EqualValues(t, 3, body["received"])
	assert.EqualValues(t, 1, body["scored"], "only successful logins with a user id are scored")
	assert.True(t, g.HasUser("auth0|u1"))
	assert.False(t, g.HasUser("auth0|u2"))

	// Each scored entry is echoed back with its risk breakdown.
	results, ok := body["results"].([]interface{})
	require.True(t, ok)
	require.Len(t, results, 1)
	scoredEntry, ok := results[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "auth0|u1", scoredEntry["user_id"])
	risk, ok := scoredEntry["risk"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, risk, "risk_score")
}
