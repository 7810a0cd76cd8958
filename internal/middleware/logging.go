package middleware

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// LogRequest logs every request with its route template, and the outcome once
// served. App shell responses also carry the offline cache result.
func LogRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			begin := time.Now()
			entry := log.WithFields(log.Fields{
				"route":  routeName(r),
				"method": r.Method,
				"path":   r.URL.Path,
			})
			entry.WithField("ua", r.Header.Get("User-Agent")).Trace(" ====> request")

			resp := &responseWriter{w, http.StatusOK}
			next.ServeHTTP(resp, r)

			fields := log.Fields{
				"status":   resp.statusCode,
				"duration": time.Since(begin).Round(time.Microsecond).String(),
			}
			if cache := resp.Header().Get("X-Cache"); cache != "" {
				fields["cache"] = cache
			}
			entry.WithFields(fields).Debug(" <==== served")
		})
	}
}
