// Package probe provides observer implementations for filter runs.
package probe

import (
	"context"
	"log/slog"

	"github.com/project-kessel/attrfilter/internal/filter"
)

// loggingObserver creates run-scoped logging probes.
type loggingObserver struct {
	logger *slog.Logger
}

// NewLoggingObserver creates an observer that logs all filter-run events
// using structured logging with slog.
func NewLoggingObserver(logger *slog.Logger) filter.Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &loggingObserver{logger: logger}
}

// FilterStarted implements filter.Observer.
func (o *loggingObserver) FilterStarted(engineID, runID string) filter.FilterProbe {
	probeLogger := o.logger.With(
		"event", "attribute_filter",
		"engine_id", engineID,
		"run_id", runID,
	)

	probeLogger.LogAttrs(context.Background(), slog.LevelDebug, "Starting attribute filtering")

	return &loggingFilterProbe{logger: probeLogger}
}

// loggingFilterProbe logs the events of a single filtering run.
type loggingFilterProbe struct {
	logger *slog.Logger
}

func (p *loggingFilterProbe) PolicyActive(policyID string) {
	p.logger.LogAttrs(context.Background(), slog.LevelDebug,
		"Policy is active",
		slog.String("policy_id", policyID),
	)
}

func (p *loggingFilterProbe) PolicyInactive(policyID string) {
	p.logger.LogAttrs(context.Background(), slog.LevelDebug,
		"Policy is inactive",
		slog.String("policy_id", policyID),
	)
}

func (p *loggingFilterProbe) PolicyFailed(policyID string, err error) {
	attrs := []slog.Attr{
		slog.String("policy_id", policyID),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	p.logger.LogAttrs(context.Background(), slog.LevelWarn,
		"Policy requirement rule could not be evaluated, treating policy as inactive",
		attrs...,
	)
}

func (p *loggingFilterProbe) MatcherFailed(policyID, attributeID string, err error) {
	attrs := []slog.Attr{
		slog.String("policy_id", policyID),
		slog.String("attribute_id", attributeID),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	p.logger.LogAttrs(context.Background(), slog.LevelWarn,
		"Matcher failed, rule contributes no values",
		attrs...,
	)
}

func (p *loggingFilterProbe) ValuesPermitted(policyID, attributeID string, count int) {
	p.logger.LogAttrs(context.Background(), slog.LevelDebug,
		"Attribute rule permitted values",
		slog.String("policy_id", policyID),
		slog.String("attribute_id", attributeID),
		slog.Int("count", count),
	)
}

func (p *loggingFilterProbe) End(released int) {
	p.logger.LogAttrs(context.Background(), slog.LevelDebug,
		"Attribute filtering completed",
		slog.Int("released_attributes", released),
	)
}
