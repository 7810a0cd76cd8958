package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/2beens/fitnesstracker/internal/telemetry/metrics"
	"github.com/2beens/fitnesstracker/pkg"

	log "github.com/sirupsen/logrus"
)

// PanicRecovery turns a handler panic into a JSON 500, counted per route.
func PanicRecovery(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(respWriter http.ResponseWriter, req *http.Request) {
			defer func() {
				if r := recover(); r != nil {
					route := routeName(req)
					log.WithFields(log.Fields{
						"route":  route,
						"method": req.Method,
						"path":   req.URL.Path,
					}).Errorf("panic serving request: %v\n%s", r, debug.Stack())
					if metricsManager != nil {
						metricsManager.CounterHandleRequestPanic.WithLabelValues(route).Inc()
					}
					pkg.WriteJSON(respWriter, map[string]string{"error": "internal error"}, http.StatusInternalServerError)
				}
			}()

			// handler call
			next.ServeHTTP(respWriter, req)
		})
	}
}
