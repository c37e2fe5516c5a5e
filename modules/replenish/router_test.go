package replenish_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/replenish/modules/replenish"
	"github.com/dmitrymomot/replenish/pkg/ledger"
	"github.com/dmitrymomot/replenish/pkg/lifespan"
	"github.com/dmitrymomot/replenish/pkg/remind"
	"github.com/dmitrymomot/replenish/pkg/subscription"
)

// fixedNow pins "today" so fire-date assertions are deterministic.
var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := ledger.NewMemoryStore()
	estimator := lifespan.NewEstimator(store)
	schedules := remind.NewMemoryScheduleStore()
	coordinator := remind.NewCoordinator(estimator, store, schedules, remind.NoopDispatcher{},
		remind.WithClock(func() time.Time { return fixedNow }),
	)
	recommender := subscription.NewRecommender(subscription.DefaultLadder())

	svc := replenish.NewService(estimator, coordinator, recommender, schedules)
	srv := httptest.NewServer(replenish.Router(svc))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func seedUsage(t *testing.T, srv *httptest.Server, productID string, lifespans ...int) {
	t.Helper()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, days := range lifespans {
		resp := postJSON(t, srv.URL+"/usage", map[string]string{
			"product_id":      productID,
			"customer_id":     fmt.Sprintf("seed-%d", i),
			"purchase_date":   start.Format("2006-01-02"),
			"repurchase_date": start.AddDate(0, 0, days).Format("2006-01-02"),
		})
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
}

func TestRouter_ProductPrediction(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	seedUsage(t, srv, "dog-food", 28, 30, 32)

	resp, err := http.Get(srv.URL + "/products/dog-food/prediction")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	pred := decodeBody[lifespan.ProductPrediction](t, resp)
	assert.Equal(t, "dog-food", pred.ProductID)
	assert.Equal(t, 30, pred.PredictedLifespanDays)
	assert.Equal(t, 3, pred.SampleSize)
	assert.InDelta(t, 0.65, pred.ConfidenceScore, 0.001)
}

func TestRouter_ProductPredictionDefaults(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/products/unknown/prediction")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	pred := decodeBody[lifespan.ProductPrediction](t, resp)
	assert.Equal(t, lifespan.DefaultLifespanDays, pred.PredictedLifespanDays)
	assert.InDelta(t, lifespan.DefaultConfidence, pred.ConfidenceScore, 0.001)
	assert.Zero(t, pred.SampleSize)
}

func TestRouter_Recommendation(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	seedUsage(t, srv, "shampoo", 90, 90, 90, 90, 90, 90, 90, 90)

	resp, err := http.Get(srv.URL + "/products/shampoo/recommendation")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	rec := decodeBody[subscription.Recommendation](t, resp)
	assert.Equal(t, 81, rec.OptimalIntervalDays)
	assert.Equal(t, []int{60, 81, 90, 120}, rec.Alternatives)
}

func TestRouter_ScheduleReminder(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	// Customer history: two purchases 30 days apart, last on May 15.
	for _, date := range []string{"2024-04-15", "2024-05-15"} {
		resp := postJSON(t, srv.URL+"/purchases", map[string]string{
			"customer_id":   "c1",
			"product_id":    "dog-food",
			"purchase_date": date,
		})
		resp.Body.Close()
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
	}

	resp := postJSON(t, srv.URL+"/customers/c1/products/dog-food/reminder", map[string]any{
		"anchor_day": 1,
		"frequency":  "monthly",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"cycle_used":"monthly"`, "cycle must serialize by name")

	var sched remind.Schedule
	require.NoError(t, json.Unmarshal(raw, &sched))
	assert.Equal(t, "c1", sched.CustomerID)
	assert.Equal(t, "dog-food", sched.ProductID)
	// Depletion June 14; the June 1 income event plus two days gives June 3.
	assert.Equal(t, time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC), sched.DepletionDate)
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), sched.FireDate)
	assert.Equal(t, remind.StatusScheduled, sched.Status)

	// GET returns the same pending schedule.
	getResp, err := http.Get(srv.URL + "/customers/c1/products/dog-food/reminder")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, getResp.StatusCode)
	got := decodeBody[remind.Schedule](t, getResp)
	assert.Equal(t, sched.ID, got.ID)

	// Scheduling again is an idempotent no-op.
	again := postJSON(t, srv.URL+"/customers/c1/products/dog-food/reminder", map[string]any{
		"anchor_day": 1,
		"frequency":  "monthly",
	})
	require.Equal(t, http.StatusCreated, again.StatusCode)
	same := decodeBody[remind.Schedule](t, again)
	assert.Equal(t, sched.ID, same.ID)
}

func TestRouter_ScheduleReminderNoHistory(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/customers/ghost/products/nothing/reminder", map[string]any{})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestRouter_GetReminderNotFound(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/customers/c1/products/p1/reminder")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_ScheduleBatchPartialFailure(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/purchases", map[string]string{
		"customer_id":   "c1",
		"product_id":    "dog-food",
		"purchase_date": "2024-05-15",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	batch := postJSON(t, srv.URL+"/customers/c1/reminders", map[string]any{
		"product_ids": []string{"dog-food", "never-bought"},
	})
	require.Equal(t, http.StatusMultiStatus, batch.StatusCode)

	var result struct {
		Scheduled int               `json:"scheduled"`
		Failed    int               `json:"failed"`
		Errors    map[string]string `json:"errors"`
	}
	body := decodeBody[json.RawMessage](t, batch)
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, 1, result.Scheduled)
	assert.Equal(t, 1, result.Failed)
	assert.Contains(t, result.Errors, "never-bought")
}

func TestRouter_InvalidCycleRejected(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/customers/c1/products/p1/reminder", map[string]any{
		"anchor_day": 42,
		"frequency":  "monthly",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_Sweep(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	// Purchases 30 days apart ending April 1: depletion May 1, so the
	// fallback fire date (April 29) is already in the past.
	for _, date := range []string{"2024-03-02", "2024-04-01"} {
		resp := postJSON(t, srv.URL+"/purchases", map[string]string{
			"customer_id":   "c1",
			"product_id":    "dog-food",
			"purchase_date": date,
		})
		resp.Body.Close()
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
	}

	resp := postJSON(t, srv.URL+"/customers/c1/products/dog-food/reminder", map[string]any{})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sched := decodeBody[remind.Schedule](t, resp)
	assert.Equal(t, time.Date(2024, 4, 29, 0, 0, 0, 0, time.UTC), sched.FireDate)

	sweep := postJSON(t, srv.URL+"/reminders/sweep", map[string]any{})
	require.Equal(t, http.StatusOK, sweep.StatusCode)

	var result struct {
		Dispatched int `json:"dispatched"`
		Failed     int `json:"failed"`
	}
	body := decodeBody[json.RawMessage](t, sweep)
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, 1, result.Dispatched)
	assert.Zero(t, result.Failed)
}
