package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts what the bot does. A nil *Metrics is valid and records nothing.
type Metrics struct {
	messages    *prometheus.CounterVec
	matches     *prometheus.CounterVec
	misses      *prometheus.CounterVec
	assignments *prometheus.CounterVec
	sheetErrors *prometheus.CounterVec
	commands    *prometheus.CounterVec
}

// NewMetrics registers the bot's counters on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "draftbot",
			Name:      "messages_total",
			Help:      "Chat messages seen in tracked channels.",
		}, []string{"context"}),
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "draftbot",
			Name:      "matches_total",
			Help:      "Messages resolved to a player, by match kind.",
		}, []string{"context", "kind"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "draftbot",
			Name:      "misses_total",
			Help:      "Messages that did not resolve to a player.",
		}, []string{"context"}),
		assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "draftbot",
			Name:      "assignments_total",
			Help:      "Assignment attempts by outcome.",
		}, []string{"context", "outcome"}),
		sheetErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "draftbot",
			Name:      "sheet_errors_total",
			Help:      "Failed spreadsheet calls by operation.",
		}, []string{"op"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "draftbot",
			Name:      "commands_total",
			Help:      "Operator commands by name and outcome.",
		}, []string{"command", "outcome"}),
	}
	reg.MustRegister(m.messages, m.matches, m.misses, m.assignments, m.sheetErrors, m.commands)
	return m
}

func (m *Metrics) ObserveMessage(context string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(context).Inc()
}

func (m *Metrics) ObserveMatch(context, kind string) {
	if m == nil {
		return
	}
	m.matches.WithLabelValues(context, kind).Inc()
}

func (m *Metrics) ObserveMiss(context string) {
	if m == nil {
		return
	}
	m.misses.WithLabelValues(context).Inc()
}

func (m *Metrics) ObserveAssignment(context, outcome string) {
	if m == nil {
		return
	}
	m.assignments.WithLabelValues(context, outcome).Inc()
}

func (m *Metrics) ObserveSheetError(op string) {
	if m == nil {
		return
	}
	m.sheetErrors.WithLabelValues(op).Inc()
}

func (m *Metrics) ObserveCommand(command, outcome string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(command, outcome).Inc()
}
