package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	PathSingle = "single"
	PathBulk   = "bulk"

	ResultFound    = "found"
	ResultNotFound = "not_found"
)

// Metrics holds the certificate engine counters.
type Metrics struct {
	CertificatesIssued *prometheus.CounterVec
	Downloads          prometheus.Counter
	RenderFailures     prometheus.Counter
	Verifications      *prometheus.CounterVec
	IssueConflicts     prometheus.Counter
}

// New registers all counters on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CertificatesIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "certificates_issued_total",
			Help: "Certificates created, by issuance path",
		}, []string{"path"}),
		Downloads: factory.NewCounter(prometheus.CounterOpts{
			Name: "certificate_downloads_total",
			Help: "Certificate PDFs rendered for download",
		}),
		RenderFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "certificate_render_failures_total",
			Help: "Certificate PDF or QR rendering failures",
		}),
		Verifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "certificate_verifications_total",
			Help: "Public verification lookups, by result",
		}, []string{"result"}),
		IssueConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "certificate_issue_conflicts_total",
			Help: "Create attempts that lost a uniqueness race and re-fetched the existing certificate",
		}),
	}
}

func (m *Metrics) IncIssued(path string) {
	if m == nil {
		return
	}
	m.CertificatesIssued.WithLabelValues(path).Inc()
}

func (m *Metrics) IncDownloads() {
	if m == nil {
		return
	}
	m.Downloads.Inc()
}

func (m *Metrics) IncRenderFailures() {
	if m == nil {
		return
	}
	m.RenderFailures.Inc()
}

func (m *Metrics) IncVerification(result string) {
	if m == nil {
		return
	}
	m.Verifications.WithLabelValues(result).Inc()
}

func (m *Metrics) IncConflicts() {
	if m == nil {
		return
	}
	m.IssueConflicts.Inc()
}
