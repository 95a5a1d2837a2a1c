package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the bot. A nil
// *Metrics is valid and records nothing, which keeps tests quiet.
type Metrics struct {
	OpenTickets       prometheus.Gauge
	TicketsOpened     prometheus.Counter
	TicketsClosed     *prometheus.CounterVec
	TicketsDeleted    prometheus.Counter
	MessagesForwarded prometheus.Counter
	RepliesDelivered  *prometheus.CounterVec
	PendingTopics     prometheus.Gauge
	HTTPRequests      *prometheus.CounterVec
	HTTPErrors        *prometheus.CounterVec
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		OpenTickets: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_tickets",
			Help:      "Number of tickets currently tracked in the store.",
		}),
		TicketsOpened: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_opened_total",
			Help:      "Tickets opened since process start.",
		}),
		TicketsClosed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_closed_total",
			Help:      "Tickets closed, by reason.",
		}, []string{"reason"}),
		TicketsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_deleted_total",
			Help:      "Ticket records removed after the deletion delay.",
		}),
		MessagesForwarded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_forwarded_total",
			Help:      "Requester messages forwarded to the admin channel.",
		}),
		RepliesDelivered: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replies_delivered_total",
			Help:      "Admin replies, by delivery result.",
		}, []string{"result"}),
		PendingTopics: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_topics",
			Help:      "Topic selections awaiting an elaborating message.",
		}),
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Ops API requests by path, method and status.",
		}, []string{"path", "method", "status"}),
		HTTPErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "Ops API errors by path, method and code.",
		}, []string{"path", "method", "code"}),
	}
}

func (m *Metrics) TicketOpened() {
	if m == nil {
		return
	}
	m.TicketsOpened.Inc()
	m.OpenTickets.Inc()
}

func (m *Metrics) TicketClosed(reason string) {
	if m == nil {
		return
	}
	m.TicketsClosed.WithLabelValues(reason).Inc()
}

func (m *Metrics) TicketDeleted() {
	if m == nil {
		return
	}
	m.TicketsDeleted.Inc()
	m.OpenTickets.Dec()
}

func (m *Metrics) MessageForwarded() {
	if m == nil {
		return
	}
	m.MessagesForwarded.Inc()
}

func (m *Metrics) ReplyDelivered(result string) {
	if m == nil {
		return
	}
	m.RepliesDelivered.WithLabelValues(result).Inc()
}

func (m *Metrics) SetPendingTopics(n int) {
	if m == nil {
		return
	}
	m.PendingTopics.Set(float64(n))
}

func (m *Metrics) RecordRequest(path, method, status string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(path, method, status).Inc()
}

func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.HTTPErrors.WithLabelValues(path, method, code).Inc()
}

// MetricsHandler exposes the default registry for scraping.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
