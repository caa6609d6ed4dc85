package filter

// Observer creates run-scoped probes for filtering evaluations. The engine
// calls FilterStarted once per run and reports progress through the probe.
type Observer interface {
	FilterStarted(engineID, runID string) FilterProbe
}

// FilterProbe receives the events of a single filtering run.
type FilterProbe interface {
	// PolicyActive reports that a policy's requirement rule evaluated true.
	PolicyActive(policyID string)

	// PolicyInactive reports that a policy's requirement rule evaluated false.
	PolicyInactive(policyID string)

	// PolicyFailed reports that a requirement rule could not be evaluated.
	// The policy is treated as inactive. err may be nil when the rule
	// returned Fail without a cause.
	PolicyFailed(policyID string, err error)

	// MatcherFailed reports that a matcher errored. The rule contributes no
	// values.
	MatcherFailed(policyID, attributeID string, err error)

	// ValuesPermitted reports how many values an attribute rule permitted.
	ValuesPermitted(policyID, attributeID string, count int)

	// End reports the number of attributes in the released result.
	End(released int)
}

// NoOpObserver discards all events. It is the default when an engine is
// built without an observer.
type NoOpObserver struct{}

// FilterStarted implements Observer.
func (NoOpObserver) FilterStarted(engineID, runID string) FilterProbe {
	return NoOpFilterProbe{}
}

// NoOpFilterProbe discards all probe events.
type NoOpFilterProbe struct{}

func (NoOpFilterProbe) PolicyActive(policyID string) {}

func (NoOpFilterProbe) PolicyInactive(policyID string) {}

func (NoOpFilterProbe) PolicyFailed(policyID string, err error) {}

func (NoOpFilterProbe) MatcherFailed(policyID, attributeID string, err error) {}

func (NoOpFilterProbe) ValuesPermitted(policyID, attributeID string, count int) {}

func (NoOpFilterProbe) End(released int) {}
