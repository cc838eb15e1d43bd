package contact

import "fmt"

// Policy decides how the auto-reply depends on the admin notification.
type Policy string

const (
	// PolicySequential sends the admin notification, then the auto-reply
	// only if the first succeeded. Both must succeed.
	PolicySequential Policy = "sequential"

	// PolicyIndependent fires the admin notification on its own; only the
	// auto-reply outcome reaches the visitor.
	PolicyIndependent Policy = "independent"
)

// ParsePolicy maps a configuration value to a Policy. Empty means sequential.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicySequential:
		return PolicySequential, nil
	case PolicyIndependent:
		return PolicyIndependent, nil
	default:
		return "", fmt.Errorf("unknown send policy %q", s)
	}
}

func (p Policy) String() string {
	return string(p)
}
