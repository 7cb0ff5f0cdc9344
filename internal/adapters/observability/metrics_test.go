package observability_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"trip_planner/internal/adapters/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()
	if observability.InitRegistry() != reg {
		t.Fatalf("registry should be created once")
	}

	// record samples so the vectors are exported
	observability.ObserveHTTP("/test", "GET", 200, 12*time.Millisecond)
	observability.ObserveStore("put", "user_trips_v2", "ok")
	observability.ObserveTransition("7.5", "8")

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, name := range []string{"planner_http_requests_total", "planner_store_ops_total", "planner_wizard_transitions_total"} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected %s in output", name)
		}
	}
}

func TestParseLevel(t *testing.T) {
	if observability.ParseLevel("debug") != zerolog.DebugLevel {
		t.Fatalf("debug")
	}
	if observability.ParseLevel("") != zerolog.InfoLevel {
		t.Fatalf("default should be info")
	}
}
