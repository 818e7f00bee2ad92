package wholesale

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, tokenRequests *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, _ *http.Request) {
		tokenRequests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"token123","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/clearing", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Query().Get("timeslot") {
		case "3":
			_, _ = w.Write([]byte(`{"timeslot":3,"clearing_prices":[30,45.5],"spot_price":40}`))
		case "4":
			_, _ = w.Write([]byte(`{"timeslot":4,"clearing_prices":[]}`))
		case "5":
			_, _ = w.Write([]byte(`{"timeslot":6}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestOracle(t *testing.T, srv *httptest.Server) *Oracle {
	t.Helper()
	o, err := NewOracle(Config{
		BaseURL:      srv.URL,
		TokenURL:     srv.URL + "/token",
		ClientID:     "id",
		ClientSecret: "secret",
		Retain:       2,
	}, nil)
	require.NoError(t, err)
	return o
}

func TestOracleFetchesWithToken(t *testing.T) {
	var tokens atomic.Int32
	o := newTestOracle(t, newServer(t, &tokens))
	ctx := context.Background()

	require.NoError(t, o.RunTimeslot(ctx, 3))
	assert.Equal(t, []float64{30, 45.5}, o.ClearingPrices(3))
	spot, ok := o.SpotClearingPrice(3)
	assert.True(t, ok)
	assert.Equal(t, 40.0, spot)

	require.NoError(t, o.RunTimeslot(ctx, 4))
	assert.Empty(t, o.ClearingPrices(4))
	_, ok = o.SpotClearingPrice(4)
	assert.False(t, ok)
	assert.Equal(t, int32(1), tokens.Load(), "token is reused")
}

func TestOracleFetchErrors(t *testing.T) {
	var tokens atomic.Int32
	o := newTestOracle(t, newServer(t, &tokens))
	ctx := context.Background()

	_, err := o.Fetch(ctx, 9)
	assert.ErrorContains(t, err, "unexpected status code: 404")
	_, err = o.Fetch(ctx, 5)
	assert.ErrorContains(t, err, "asked 5")

	require.NoError(t, o.RunTimeslot(ctx, 9))
	assert.Nil(t, o.ClearingPrices(9))
}

func TestOracleRetention(t *testing.T) {
	o, err := NewOracle(Config{BaseURL: "http://localhost", Retain: 2}, nil)
	require.NoError(t, err)
	for ts := 1; ts <= 4; ts++ {
		o.Store(Quote{Timeslot: ts, ClearingPrices: []float64{float64(ts)}})
	}
	assert.Nil(t, o.ClearingPrices(1))
	assert.Nil(t, o.ClearingPrices(2))
	assert.Equal(t, []float64{3}, o.ClearingPrices(3))
	assert.Equal(t, []float64{4}, o.ClearingPrices(4))

	prices := o.ClearingPrices(4)
	prices[0] = 99
	assert.Equal(t, []float64{4}, o.ClearingPrices(4))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"plain", Config{BaseURL: "http://x"}, true},
		{"oauth", Config{BaseURL: "http://x", TokenURL: "http://x/token", ClientID: "a", ClientSecret: "b"}, true},
		{"missing base", Config{}, false},
		{"missing secret", Config{BaseURL: "http://x", TokenURL: "http://x/token", ClientID: "a"}, false},
		{"negative", Config{BaseURL: "http://x", Retain: -1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.cfg.Validate() == nil)
		})
	}
}
