package metrics

import "github.com/VictoriaMetrics/metrics"

var (
	geolocationRequestErr = metrics.NewCounter(`geolocation_request_error_total{kind="status"}`)
	geolocationNetworkErr = metrics.NewCounter(`geolocation_request_error_total{kind="network"}`)
)

// IncGeolocationRequestErr counts non-2xx answers from the geolocation endpoint.
func IncGeolocationRequestErr() {
	geolocationRequestErr.Inc()
}

func IncGeolocationNetworkErr() {
	geolocationNetworkErr.Inc()
}
