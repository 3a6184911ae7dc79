package metrics

import "github.com/VictoriaMetrics/metrics"

// statuses the API can answer with are fixed, so the counters are created up front
var (
	statusOK                  = metrics.NewCounter(`http_requests_total{status="200"}`)
	statusBadRequest          = metrics.NewCounter(`http_requests_total{status="400"}`)
	statusNotFound            = metrics.NewCounter(`http_requests_total{status="404"}`)
	statusMethodNotAllowed    = metrics.NewCounter(`http_requests_total{status="405"}`)
	statusInternalServerError = metrics.NewCounter(`http_requests_total{status="500"}`)
	statusBadGateway          = metrics.NewCounter(`http_requests_total{status="502"}`)
)

func StatusOKInc()                  { statusOK.Inc() }
func StatusBadRequestInc()          { statusBadRequest.Inc() }
func StatusNotFoundInc()            { statusNotFound.Inc() }
func StatusMethodNotAllowedInc()    { statusMethodNotAllowed.Inc() }
func StatusInternalServerErrorInc() { statusInternalServerError.Inc() }
func StatusBadGatewayInc()          { statusBadGateway.Inc() }
