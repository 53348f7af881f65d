// Package policy is the port onto the security evaluator: named policies
// answered with a plain allow/deny.
package policy

// Checker answers policy checks by name.
type Checker interface {
	IsAllowed(name string) bool
}

// AllowAll grants every policy.
type AllowAll struct{}

func (AllowAll) IsAllowed(string) bool { return true }

// Static answers from a fixed table; unlisted policies are denied.
type Static map[string]bool

func (s Static) IsAllowed(name string) bool { return s[name] }
