package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// confessionsSubmitted counts stored confessions.
	confessionsSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "confessions_submitted_total",
			Help: "Total number of confessions accepted.",
		},
	)

	// confessionRejections counts refused submissions and replies by reason
	// (length, content_policy, posting_closed, banned).
	confessionRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "confession_rejections_total",
			Help: "Total number of rejected confessions and replies by reason.",
		},
		[]string{"reason"},
	)

	// confessionLikes counts ledger changes by op (like, unlike).
	confessionLikes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "confession_likes_total",
			Help: "Total number of likes and unlikes.",
		},
		[]string{"op"},
	)

	confessionFlags = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "confession_flags_total",
			Help: "Total number of flags raised.",
		},
	)

	// confessionsAutoFlagged counts confessions hidden by the flag threshold.
	confessionsAutoFlagged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "confessions_auto_flagged_total",
			Help: "Total number of confessions moved to flagged by the threshold.",
		},
	)
)

func init() {
	prometheus.MustRegister(confessionsSubmitted, confessionRejections, confessionLikes, confessionFlags, confessionsAutoFlagged)
}

const (
	reasonLength        = "length"
	reasonContentPolicy = "content_policy"
	reasonPostingClosed = "posting_closed"
	reasonBanned        = "banned"
)

func reject(reason string) {
	confessionRejections.WithLabelValues(reason).Inc()
}
