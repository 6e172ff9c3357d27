package providers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/do/v2"

	"github.com/listenupapp/librarian/internal/service"
)

// ProvideMetricsRegistry provides the Prometheus registry served on /metrics.
func ProvideMetricsRegistry(i do.Injector) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, nil
}

// ProvideChatMetrics registers the chat counters.
func ProvideChatMetrics(i do.Injector) (*service.ChatMetrics, error) {
	reg := do.MustInvoke[*prometheus.Registry](i)
	return service.NewChatMetrics(reg), nil
}
