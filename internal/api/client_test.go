package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, 5*time.Second, nil), server
}

func TestGWPSendsRangeParams(t *testing.T) {
	t.Parallel()

	var gotQuery string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/overview/gwp", r.URL.Path)
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode([]SeriesPoint{{Period: "2024-01"}})
	}))

	points, err := client.GWP(context.Background(), Range{StartDate: "2024-01-01", EndDate: "2024-06-30"})
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Contains(t, gotQuery, "start_date=2024-01-01")
	assert.Contains(t, gotQuery, "end_date=2024-06-30")
}

func TestUnboundedRangeOmitsParams(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		_ = json.NewEncoder(w).Encode([]SeriesPoint{})
	}))

	_, err := client.FNOL(context.Background(), Range{})
	require.NoError(t, err)
}

func TestSeriesNullValuesDecodeAsNil(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"period":"2024-01","value":12.5},{"period":"2024-02","value":null}]`))
	}))

	points, err := client.Retention(context.Background(), Range{})
	require.NoError(t, err)
	require.Len(t, points, 2)
	require.NotNil(t, points[0].Value)
	assert.Equal(t, 12.5, *points[0].Value)
	assert.Nil(t, points[1].Value)
}

func TestClaimsByPerilDefaultsTopN(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10", r.URL.Query().Get("top_n"))
		_ = json.NewEncoder(w).Encode([]BreakdownItem{{Key: "hail", Value: 3}})
	}))

	items, err := client.ClaimsByPeril(context.Background(), Range{}, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "hail", items[0].Key)
}

func TestBreakdownOrderPreserved(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"key":"0-30d","value":4},{"key":"31-60d","value":9},{"key":"61-90d","value":2}]`))
	}))

	items, err := client.BacklogByAgeBucket(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "0-30d", items[0].Key)
	assert.Equal(t, "31-60d", items[1].Key)
	assert.Equal(t, "61-90d", items[2].Key)
}

func TestErrorExtractsDetailField(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Question too short."}`))
	}))

	_, err := client.Ask(context.Background(), "hm")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Question too short.")
}

func TestErrorFallsBackToStatus(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`upstream exploded`))
	}))

	_, err := client.Health(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestAskRejectsEmptyQuestionLocally(t *testing.T) {
	t.Parallel()

	var called bool
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	_, err := client.Ask(context.Background(), "   ")
	require.Error(t, err)
	assert.False(t, called, "empty question must not reach the network")
}

func TestAskReturnsRawAnswer(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "how is retention?", req["question"])
		_, _ = w.Write([]byte(`{"answer":{"summary":"Retention is steady."},"citations":[],"meta":{}}`))
	}))

	raw, err := client.Ask(context.Background(), "how is retention?")
	require.NoError(t, err)
	assert.JSONEq(t, `{"summary":"Retention is steady."}`, string(raw))
}

func TestOverviewFetchesAllFourSeries(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	paths := map[string]int{}
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths[r.URL.Path]++
		mu.Unlock()
		switch r.URL.Path {
		case "/api/overview/loss_ratio", "/api/overview/claims_frequency":
			_, _ = w.Write([]byte(`[{"period":"2024-01","numerator":1,"denominator":2,"ratio":0.5}]`))
		default:
			_, _ = w.Write([]byte(`[{"period":"2024-01","value":10}]`))
		}
	}))

	data, err := client.Overview(context.Background(), Range{})
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Len(t, data.GWP, 1)
	assert.Len(t, data.LossRatio, 1)
	assert.Len(t, data.ClaimsFrequency, 1)
	assert.Len(t, data.AvgSettlementDays, 1)

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, paths, 4)
}

func TestOverviewPropagatesFirstFailure(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/overview/loss_ratio" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))

	_, err := client.Overview(context.Background(), Range{})
	require.Error(t, err)
}
