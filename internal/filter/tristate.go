package filter

// Tristate is the result of evaluating a policy requirement rule. Fail is
// distinct from False: it means the rule could not be evaluated at all, for
// example because a dependency was missing, and composite rules must not
// collapse it into a definite answer.
type Tristate int8

const (
	// False means the rule definitely does not apply.
	False Tristate = iota

	// True means the rule applies.
	True

	// Fail means the rule could not be evaluated.
	Fail
)

func (t Tristate) String() string {
	switch t {
	case False:
		return "false"
	case True:
		return "true"
	case Fail:
		return "fail"
	default:
		return "unknown"
	}
}
