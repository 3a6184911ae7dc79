package metrics

import (
	"fmt"

	"github.com/VictoriaMetrics/metrics"
)

var (
	geoblockOverridden  = metrics.NewCounter("geoblock_overridden_total")
	geoblockDisconnects = metrics.NewCounter("geoblock_wallet_disconnect_total")
	geoblockStaleResult = metrics.NewCounter("geoblock_stale_result_total")
)

func geoblockCheckKey(status string) string {
	return fmt.Sprintf(`geoblock_check_total{status="%s"}`, status)
}

func InitGeoblockCheckMetric(statuses ...string) {
	for _, s := range statuses {
		// just initialize metrics record
		metrics.GetOrCreateCounter(geoblockCheckKey(s))
	}
}

func ReportGeoblockCheck(status string) {
	metrics.GetOrCreateCounter(geoblockCheckKey(status)).Inc()
}

func IncGeoblockOverridden() {
	geoblockOverridden.Inc()
}

func IncGeoblockDisconnect() {
	geoblockDisconnects.Inc()
}

func IncGeoblockStaleResult() {
	geoblockStaleResult.Inc()
}
