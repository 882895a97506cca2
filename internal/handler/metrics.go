package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	turnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grimoire_turns_total",
			Help: "Total number of RPG turn submissions by outcome.",
		},
		[]string{"outcome"},
	)

	levelCompletionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "grimoire_level_completions_total",
		Help: "Total number of recorded level completions.",
	})

	sessionResetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "grimoire_session_resets_total",
		Help: "Total number of session resets.",
	})

	emotionAnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grimoire_emotion_analyses_total",
			Help: "Total number of emotion classification requests by status.",
		},
		[]string{"status"},
	)
)
