package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var initOnce sync.Once

// Registry holds only the recycle metrics. The Go runtime and process collectors of the
// default registry describe a short-lived CLI process and collide with node_exporter's own series.
var Registry *prometheus.Registry

// Init initializes all metrics and registers them with Registry
// This function is safe to call multiple times (uses sync.Once)
func Init() {
	initOnce.Do(func() {
		Registry = prometheus.NewRegistry()
		initRecycleMetrics()
		registerRecycleMetrics()

		// Initialize outcome series so they appear in every export
		for _, action := range []string{"TRASH", "DRY_RUN", "SKIP", "BLOCKED", "ERROR"} {
			OperationsTotal.WithLabelValues(action)
		}
	})
}

// WriteTextfile writes Registry in text exposition format to path,
// for node_exporter's textfile collector. The file is replaced atomically,
// so it always holds the values of the most recent run.
func WriteTextfile(path string) error {
	Init()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
