package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the process-wide counters for the versioning core.
// All collectors self-register on the default registry via promauto.
type Metrics struct {
	VersionsCreated  *prometheus.CounterVec
	VersionsRestored prometheus.Counter
	VersionsCompared prometheus.Counter
	VersionsPruned   prometheus.Counter
	MergesTotal      *prometheus.CounterVec
	MergeConflicts   prometheus.Counter
	DiffDuration     prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		VersionsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mslide_versions_created_total",
			Help: "Number of deck versions written, by kind.",
		}, []string{"kind"}),
		VersionsRestored: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mslide_versions_restored_total",
			Help: "Number of restore operations applied to decks.",
		}),
		VersionsCompared: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mslide_versions_compared_total",
			Help: "Number of version comparisons computed (cache misses).",
		}),
		VersionsPruned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mslide_versions_pruned_total",
			Help: "Number of versions deleted by history pruning.",
		}),
		MergesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mslide_merges_total",
			Help: "Number of merge operations, by strategy.",
		}, []string{"strategy"}),
		MergeConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mslide_merge_conflicts_total",
			Help: "Number of slide conflicts recorded during manual merges.",
		}),
		DiffDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "mslide_diff_duration_seconds",
			Help:    "Time spent diffing deck snapshots.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// VersionKind labels for VersionsCreated.
const (
	KindManual   = "manual"
	KindAutoSave = "auto_save"
	KindBackup   = "backup"
)
