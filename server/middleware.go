package server

import (
	"net/http"

	"github.com/drift-labs/drift-common/metrics"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		switch rec.status {
		case http.StatusOK:
			metrics.StatusOKInc()
		case http.StatusBadRequest:
			metrics.StatusBadRequestInc()
		case http.StatusNotFound:
			metrics.StatusNotFoundInc()
		case http.StatusMethodNotAllowed:
			metrics.StatusMethodNotAllowedInc()
		case http.StatusInternalServerError:
			metrics.StatusInternalServerErrorInc()
		case http.StatusBadGateway:
			metrics.StatusBadGatewayInc()
		}
	})
}

// CorsMiddleware allows browsers on any origin and answers preflight requests directly.
func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Accept,Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
