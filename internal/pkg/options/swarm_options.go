package options

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// DefaultRequirements are the handoff counts a complete run is expected to reach.
var DefaultRequirements = []string{"Task Master=2", "Auditor=1", "Coder=1"}

// SwarmOptions describes the expected shape of a swarm run.
type SwarmOptions struct {
	// Require lists "Role=count" entries, in report order.
	Require []string `json:"require" mapstructure:"require"`
}

// Requirement is a parsed "Role=count" entry.
type Requirement struct {
	Role  string
	Count int
}

func NewSwarmOptions() *SwarmOptions {
	return &SwarmOptions{
		Require: append([]string(nil), DefaultRequirements...),
	}
}

// Requirements parses Require, keeping its order.
func (o *SwarmOptions) Requirements() ([]Requirement, error) {
	reqs := make([]Requirement, 0, len(o.Require))
	for _, entry := range o.Require {
		role, count, ok := strings.Cut(entry, "=")
		role = strings.TrimSpace(role)
		if !ok || role == "" {
			return nil, fmt.Errorf("invalid requirement %q, expected Role=count", entry)
		}
		n, err := strconv.Atoi(strings.TrimSpace(count))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid requirement %q: count must be a non-negative integer", entry)
		}
		reqs = append(reqs, Requirement{Role: role, Count: n})
	}
	return reqs, nil
}

func (o *SwarmOptions) Validate() []error {
	if _, err := o.Requirements(); err != nil {
		return []error{err}
	}
	return nil
}

func (o *SwarmOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringArrayVar(&o.Require, "swarm.require", o.Require, "Required outgoing handoffs per role as Role=count (repeatable).")
}
