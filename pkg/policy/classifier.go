package policy

// Classify maps total spend to a tier. Boundaries are inclusive: spend equal
// to a threshold lands in the higher tier. Critical takes precedence when
// both thresholds are exceeded.
func Classify(total float64, t Thresholds) Tier {
	switch {
	case total >= t.Critical:
		return TierCritical
	case total >= t.Alert:
		return TierAlert
	default:
		return TierNormal
	}
}

// Decide evaluates the safety gate. A disabled gate always yields GateSkip
// regardless of the dry-run flag; callers must still report the skip so the
// absence of action stays observable.
func Decide(gate SafetyGate) GateDecision {
	if !gate.AutoActionEnabled {
		return GateSkip
	}
	if gate.DryRun {
		return GateDryRun
	}
	return GateExecute
}
