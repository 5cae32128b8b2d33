package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const (
	// namespace prefixes every metric name.
	namespace = "quorumsim"

	// policyLabel labels every metric with the evaluated policy.
	policyLabel = "policy"
)

// Metrics counts simulation activity per policy.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	trials    *prometheus.CounterVec // trials counts completed trials
	tries     *prometheus.CounterVec // tries counts evaluated search points
	successes *prometheus.CounterVec // successes counts trials with a captured group
	prefix    *prometheus.CounterVec // prefix counts trials whose prefix group was captured
	stalled   *prometheus.CounterVec // stalled counts tries the adversary could stall
}

// New creates the counters and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		trials:    newCounter("trials_total", "Completed trials."),
		tries:     newCounter("tries_total", "Evaluated search points."),
		successes: newCounter("successes_total", "Trials in which a search point yielded a malicious quorum."),
		prefix:    newCounter("prefix_successes_total", "Trials whose prefix close group had a malicious quorum."),
		stalled:   newCounter("stalled_tries_total", "Tries in which the adversary could stall the close group."),
	}

	for _, c := range []*prometheus.CounterVec{m.trials, m.tries, m.successes, m.prefix, m.stalled} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metric:\n%w", err)
		}
	}

	return m, nil
}

// newCounter creates a policy-labelled counter vector.
func newCounter(name, help string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, []string{policyLabel})
}

// ObserveTrial records one finished trial.
func (m *Metrics) ObserveTrial(policy string, tries int, success, prefix bool, stalled int) {
	if m == nil {
		return
	}

	m.trials.WithLabelValues(policy).Inc()
	m.tries.WithLabelValues(policy).Add(float64(tries))
	m.stalled.WithLabelValues(policy).Add(float64(stalled))

	if success {
		m.successes.WithLabelValues(policy).Inc()
	}

	if prefix {
		m.prefix.WithLabelValues(policy).Inc()
	}
}

// Snapshot flattens every counter in g into "name{label=value}" keys.
func Snapshot(g prometheus.Gatherer) (map[string]float64, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics:\n%w", err)
	}

	out := make(map[string]float64)

	for _, fam := range families {
		if fam.GetType() != dto.MetricType_COUNTER {
			continue
		}

		for _, m := range fam.GetMetric() {
			out[seriesKey(fam.GetName(), m.GetLabel())] = m.GetCounter().GetValue()
		}
	}

	return out, nil
}

// seriesKey formats a metric name with its labels.
func seriesKey(name string, labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return name
	}

	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = l.GetName() + "=" + l.GetValue()
	}

	sort.Strings(parts)

	return name + "{" + strings.Join(parts, ",") + "}"
}
