package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SignInAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "padel_sign_in_attempts_total",
		Help: "Sign-in attempts by outcome (ok or the error kind)",
	}, []string{"outcome"})
	SignUpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "padel_sign_ups_total",
		Help: "Sign-up attempts by outcome (ok or the error kind)",
	}, []string{"outcome"})
	MatchesRecordedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "padel_matches_recorded_total",
		Help: "Matches recorded, by result",
	}, []string{"result"})
	BucketUpsertErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "padel_performance_bucket_errors_total",
		Help: "Failed performance bucket upserts after a match was stored",
	})
	SkillUpdatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "padel_skill_updates_total",
		Help: "Skill ratings inserted or updated",
	})
	AssessmentsRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "padel_assessments_recorded_total",
		Help: "Skill assessments stored",
	})
	DashboardConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "padel_dashboard_connections",
		Help: "Open dashboard websocket connections",
	})
	SessionRefreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "padel_session_refreshes_total",
		Help: "Background session refreshes by outcome",
	}, []string{"outcome"})
)
