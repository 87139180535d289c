package dealcore

import "github.com/VictoriaMetrics/metrics"

// Cache counters, registered in the default VictoriaMetrics set; expose them
// via metrics.WritePrometheus from the surrounding application.
var (
	cacheHits            = metrics.NewCounter(`dealcore_cache_hits_total`)
	cacheMisses          = metrics.NewCounter(`dealcore_cache_misses_total`)
	cacheNegativeHits    = metrics.NewCounter(`dealcore_cache_negative_hits_total`)
	cacheNegativeMarks   = metrics.NewCounter(`dealcore_cache_negative_marks_total`)
	cacheStaleServed     = metrics.NewCounter(`dealcore_cache_stale_served_total`)
	cacheRebuilds        = metrics.NewCounter(`dealcore_cache_rebuilds_total`)
	cacheRebuildsDropped = metrics.NewCounter(`dealcore_cache_rebuilds_dropped_total`)
)
