// Package metrics exposes the node's Prometheus collectors, grounded
// on the teacher's pkg/consensus/prometheus.go and cli/server/metrics.go
// pattern: package-level collectors registered in an init, with small
// setter functions called from the places that observe the value.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	peerCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "goldrelay",
		Name:      "peer_count",
		Help:      "Number of sessions currently in the connections set.",
	})
	invQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "goldrelay",
		Name:      "inv_queue_depth",
		Help:      "Current depth of the inventory queue.",
	})
	ingestQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "goldrelay",
		Name:      "ingest_queue_depth",
		Help:      "Current depth of the ingestion queue.",
	})
	chainHeight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "goldrelay",
		Name:      "chain_height",
		Help:      "Height of the local chain store tip, -1 when empty.",
	})
)

func init() {
	prometheus.MustRegister(peerCount, invQueueDepth, ingestQueueDepth, chainHeight)
}

// SetPeerCount records the current session count.
func SetPeerCount(n int) { peerCount.Set(float64(n)) }

// SetInvQueueDepth records the inventory queue's current length.
func SetInvQueueDepth(n int) { invQueueDepth.Set(float64(n)) }

// SetIngestQueueDepth records the ingestion queue's current length.
func SetIngestQueueDepth(n int) { ingestQueueDepth.Set(float64(n)) }

// SetChainHeight records the chain store's tip height.
func SetChainHeight(h int64) { chainHeight.Set(float64(h)) }

// Server serves /metrics for scraping.
type Server struct {
	http *http.Server
}

// NewServer builds (but does not start) a metrics HTTP server on addr.
func NewServer(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &Server{http: &http.Server{Addr: addr, Handler: mux}}
}

// Start runs the metrics server until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.http.ListenAndServe() }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}
