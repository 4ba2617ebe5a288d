// Package metrics holds the blog API's domain counters. HTTP request metrics
// come from echoprometheus; these count business outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "blog"

// Login results.
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	UsersRegistered     prometheus.Counter
	Logins              *prometheus.CounterVec
	PostsCreated        prometheus.Counter
	CommentsCreated     prometheus.Counter
	RateLimitRejections prometheus.Counter
}

// New registers the counters with reg. Pass prometheus.DefaultRegisterer in
// main and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		UsersRegistered: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "users_registered_total",
			Help:      "Total number of accounts created.",
		}),
		// result: "success" or "failure"
		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Total number of login attempts, by result.",
		}, []string{"result"}),
		PostsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "posts_created_total",
			Help:      "Total number of posts created.",
		}),
		CommentsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comments_created_total",
			Help:      "Total number of comments created.",
		}),
		RateLimitRejections: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_rejections_total",
			Help:      "Total number of requests rejected by the rate limiter.",
		}),
	}
}

func (m *Metrics) UserRegistered() {
	if m != nil {
		m.UsersRegistered.Inc()
	}
}

func (m *Metrics) Login(result string) {
	if m != nil {
		m.Logins.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) PostCreated() {
	if m != nil {
		m.PostsCreated.Inc()
	}
}

func (m *Metrics) CommentCreated() {
	if m != nil {
		m.CommentsCreated.Inc()
	}
}

func (m *Metrics) RateLimited() {
	if m != nil {
		m.RateLimitRejections.Inc()
	}
}
