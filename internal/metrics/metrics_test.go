package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func TestCountersAreRegistered(t *testing.T) {
	SignalsEmitted.WithLabelValues("EURUSD", "engulfing").Inc()
	ProviderRequests.WithLabelValues("EURUSD", "ok").Inc()

	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	want := map[string]bool{"signals_emitted_total": false, "provider_requests_total": false}
	for _, mf := range mfs {
		if _, ok := want[mf.GetName()]; ok {
			want[mf.GetName()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("%s metric not found", name)
		}
	}
}

func TestHandlerServesExposition(t *testing.T) {
	gin.SetMode(gin.TestMode)
	BarsIngested.WithLabelValues("XAUUSD").Add(3)

	r := gin.New()
	r.GET("/metrics", Handler())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `bars_ingested_total{asset="XAUUSD"} 3`) {
		t.Fatalf("expected bars_ingested_total sample in output")
	}
}
