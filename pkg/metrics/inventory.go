package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mirs"

// Gate outcomes.
const (
	OutcomeAdmitted  = "admitted"
	OutcomeInvalid   = "invalid_code"
	OutcomeNotFound  = "not_found"
	OutcomeDuplicate = "duplicate"
	OutcomeError     = "error"
)

// InventoryMetrics records activation and stock-movement activity. A nil
// receiver is a no-op so services can run without a registry.
type InventoryMetrics struct {
	gateDecisions *prometheus.CounterVec
	movements     *prometheus.CounterVec
	movedQuantity *prometheus.CounterVec
}

// NewInventoryMetrics registers the inventory metrics on the provided registerer.
func NewInventoryMetrics(reg prometheus.Registerer) *InventoryMetrics {
	if reg == nil {
		return &InventoryMetrics{}
	}
	gateDecisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "validation_gate_decisions_total",
		Help:      "Validation gate decisions by outcome.",
	}, []string{"outcome"})
	movements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "inventory_events_total",
		Help:      "Inventory events appended by type.",
	}, []string{"type"})
	movedQuantity := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "inventory_moved_units_total",
		Help:      "Units moved by event type.",
	}, []string{"type"})
	reg.MustRegister(gateDecisions, movements, movedQuantity)
	return &InventoryMetrics{
		gateDecisions: gateDecisions,
		movements:     movements,
		movedQuantity: movedQuantity,
	}
}

// ObserveGate counts one validation gate decision.
func (m *InventoryMetrics) ObserveGate(outcome string) {
	if m == nil || m.gateDecisions == nil {
		return
	}
	m.gateDecisions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveEvent counts an appended inventory event and its quantity.
func (m *InventoryMetrics) ObserveEvent(eventType string, quantity int) {
	if m == nil || m.movements == nil {
		return
	}
	label := normalizeLabel(eventType)
	m.movements.WithLabelValues(label).Inc()
	if quantity < 0 {
		quantity = -quantity
	}
	m.movedQuantity.WithLabelValues(label).Add(float64(quantity))
}

// ProfileMetrics records station profile applications.
type ProfileMetrics struct {
	applies  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	created  *prometheus.CounterVec
}

// NewProfileMetrics registers the profile metrics on the provided registerer.
func NewProfileMetrics(reg prometheus.Registerer) *ProfileMetrics {
	if reg == nil {
		return &ProfileMetrics{}
	}
	applies := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "profile_applications_total",
		Help:      "Profile applications by profile and result.",
	}, []string{"profile", "result"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "profile_apply_duration_seconds",
		Help:      "Duration of profile applications in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"profile"})
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "profile_items_created_total",
		Help:      "Inventory rows created by profile applications.",
	}, []string{"profile"})
	reg.MustRegister(applies, duration, created)
	return &ProfileMetrics{
		applies:  applies,
		duration: duration,
		created:  created,
	}
}

// ObserveApply records one profile application.
func (m *ProfileMetrics) ObserveApply(profile string, ok bool, created int, took time.Duration) {
	if m == nil || m.applies == nil {
		return
	}
	label := normalizeLabel(profile)
	result := "success"
	if !ok {
		result = "failure"
	}
	m.applies.WithLabelValues(label, result).Inc()
	m.duration.WithLabelValues(label).Observe(took.Seconds())
	if ok && created > 0 {
		m.created.WithLabelValues(label).Add(float64(created))
	}
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
