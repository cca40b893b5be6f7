// Package metrics records publish run metrics and pushes them to a Prometheus Pushgateway.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/jfrog/packagecloud-publisher-go/entities"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

const DefaultJob = "packagecloud_publish"

// Recorder holds the metrics of a single publish run in its own registry.
type Recorder struct {
	registry *prometheus.Registry

	packagesTotal      *prometheus.CounterVec
	packageBytesTotal  prometheus.Counter
	rejectedFilesTotal prometheus.Counter
	publishDuration    prometheus.Gauge
	lastPublishSuccess prometheus.Gauge
}

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Recorder{
		registry: registry,
		packagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "packagecloud_packages_total",
				Help: "Total number of packages processed, by package type and status",
			},
			[]string{"type", "status"},
		),
		packageBytesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "packagecloud_package_bytes_total",
				Help: "Total bytes of successfully uploaded packages",
			},
		),
		rejectedFilesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "packagecloud_rejected_files_total",
				Help: "Total number of files not published as packages",
			},
		),
		publishDuration: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "packagecloud_publish_duration_seconds",
				Help: "Duration of the last publish run in seconds",
			},
		),
		lastPublishSuccess: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "packagecloud_last_publish_success",
				Help: "1 if the last publish run succeeded, 0 otherwise",
			},
		),
	}
}

// Observe records the outcome of a publish run.
func (r *Recorder) Observe(info *entities.PublishInfo, duration time.Duration) {
	for _, pkg := range info.Packages {
		r.packagesTotal.WithLabelValues(string(pkg.Type), string(pkg.Status)).Inc()
		if pkg.Status == entities.StatusSuccess {
			r.packageBytesTotal.Add(float64(pkg.Size))
		}
	}
	r.rejectedFilesTotal.Add(float64(len(info.RejectedFiles)))
	r.publishDuration.Set(duration.Seconds())
	if info.Status == entities.StatusFailure {
		r.lastPublishSuccess.Set(0)
	} else {
		r.lastPublishSuccess.Set(1)
	}
}

func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Push replaces the metrics of job on the Pushgateway at url.
func (r *Recorder) Push(ctx context.Context, url, job string) error {
	if job == "" {
		job = DefaultJob
	}
	if err := push.New(url, job).Gatherer(r.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("failed pushing metrics to %s: %w", url, err)
	}
	return nil
}
