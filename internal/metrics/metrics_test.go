package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/eugenenazirov/relay-service/internal/config"
)

func TestCollectorCountsResolutionAdjustments(t *testing.T) {
	collector := NewCollector(prometheus.NewRegistry())

	_, err := config.Resolve(config.MapEnv{
		"PORT":                             "eighty",
		"REDIS_PORT":                       "x",
		"CLAUDE_OVERLOAD_HANDLING_MINUTES": "5000",
	}, config.WithInstallDir(t.TempDir()), config.WithReporter(collector))
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if got := testutil.ToFloat64(collector.adjustments.WithLabelValues("PORT", outcomeFallback)); got != 1 {
		t.Fatalf("expected one PORT fallback, got %v", got)
	}
	if got := testutil.ToFloat64(collector.adjustments.WithLabelValues("CLAUDE_OVERLOAD_HANDLING_MINUTES", outcomeClamped)); got != 1 {
		t.Fatalf("expected one overload clamp, got %v", got)
	}
	if got := testutil.CollectAndCount(collector.adjustments); got != 3 {
		t.Fatalf("expected 3 adjustment series, got %d", got)
	}
}

func TestObserveConfig(t *testing.T) {
	collector := NewCollector(nil)
	cfg, err := config.Resolve(config.MapEnv{
		"NODE_ENV":                         "staging",
		"CLAUDE_CODE_USE_BEDROCK":          "1",
		"CLAUDE_OVERLOAD_HANDLING_MINUTES": "30",
		"COST_MULTIPLIER":                  "1.5",
	}, config.WithInstallDir(t.TempDir()))
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	collector.ObserveConfig(cfg)
	collector.ObserveConfig(cfg)

	if got := testutil.CollectAndCount(collector.info); got != 1 {
		t.Fatalf("expected a single info series after repeated observation, got %d", got)
	}
	if got := testutil.ToFloat64(collector.info.WithLabelValues("staging", "true", "false", "false", "true", "true")); got != 1 {
		t.Fatalf("expected info series for resolved switches, got %v", got)
	}
	if got := testutil.ToFloat64(collector.overload); got != 30 {
		t.Fatalf("expected overload window 30, got %v", got)
	}
	if got := testutil.ToFloat64(collector.costFactor); got != 1.5 {
		t.Fatalf("expected cost multiplier 1.5, got %v", got)
	}
}

func TestObserveRequestLabelsUnmatchedRoutes(t *testing.T) {
	collector := NewCollector(nil)

	collector.ObserveRequest("GET /api/health", http.StatusOK)
	collector.ObserveRequest("", http.StatusNotFound)

	if got := testutil.ToFloat64(collector.requests.WithLabelValues("GET /api/health", "200")); got != 1 {
		t.Fatalf("expected health request to be counted, got %v", got)
	}
	if got := testutil.ToFloat64(collector.requests.WithLabelValues(unmatchedRoute, "404")); got != 1 {
		t.Fatalf("expected unmatched request to be counted, got %v", got)
	}
}

func TestHandlerServesRegistry(t *testing.T) {
	collector := NewCollector(nil)
	collector.Fallback("PORT")

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `relay_config_adjustments_total{key="PORT",outcome="fallback"} 1`) {
		t.Fatalf("expected adjustment counter in exposition:\n%s", rec.Body.String())
	}
	if collector.Registry() == nil {
		t.Fatalf("expected registry accessor to return the registry")
	}
}
