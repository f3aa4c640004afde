package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareCountsByRoute(t *testing.T) {
	e := echo.New()
	e.Use(Middleware())
	e.GET("/api/products/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/api/products/:id", "204"))

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/"+id, nil))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d", rec.Code)
		}
	}

	after := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/api/products/:id", "204"))
	if after-before != 2 {
		t.Errorf("counter grew by %v, want 2", after-before)
	}
}

func TestHandlerExposesDomainCounters(t *testing.T) {
	OrdersPlaced.WithLabelValues("cash_on_delivery").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if !strings.Contains(rec.Body.String(), `orders_placed_total{method="cash_on_delivery"}`) {
		t.Error("orders_placed_total not exposed")
	}
}
