package metrics

import "github.com/prometheus/client_golang/prometheus"

// CertificateMetrics exposes counters/histograms for certificate flows.
type CertificateMetrics struct {
	rendersTotal  *prometheus.CounterVec
	emailsTotal   *prometheus.CounterVec
	bulkRowsTotal *prometheus.CounterVec
	renderLatency prometheus.Histogram
}

func NewCertificateMetrics(reg prometheus.Registerer) *CertificateMetrics {
	m := &CertificateMetrics{
		rendersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "certgen",
			Subsystem: "certificates",
			Name:      "renders_total",
			Help:      "Total certificate render attempts",
		}, []string{"outcome"}),
		emailsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "certgen",
			Subsystem: "certificates",
			Name:      "emails_total",
			Help:      "Total certificate delivery attempts",
		}, []string{"status"}),
		bulkRowsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "certgen",
			Subsystem: "certificates",
			Name:      "bulk_rows_total",
			Help:      "Total bulk rows processed",
		}, []string{"outcome"}),
		renderLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "certgen",
			Subsystem: "certificates",
			Name:      "render_latency_seconds",
			Help:      "Latency of render-and-upload, per certificate",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.rendersTotal, m.emailsTotal, m.bulkRowsTotal, m.renderLatency)
	return m
}

func (m *CertificateMetrics) ObserveRender(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.rendersTotal.WithLabelValues(outcome).Inc()
	m.renderLatency.Observe(seconds)
}

func (m *CertificateMetrics) ObserveEmail(status string) {
	if m == nil {
		return
	}
	m.emailsTotal.WithLabelValues(status).Inc()
}

func (m *CertificateMetrics) ObserveBulkRow(outcome string) {
	if m == nil {
		return
	}
	m.bulkRowsTotal.WithLabelValues(outcome).Inc()
}
