package harness

import (
	"github.com/appunit/appunit/framework"
)

// Member is one entry of a Suite: either a leaf case or a nested group of
// cases. The shape is fixed when the member is built, so the runner never has
// to guess what it is holding.
type Member struct {
	leaf  Case
	group *Suite
}

// Leaf wraps a single test case as a suite member.
func Leaf(c Case) Member {
	return Member{leaf: c}
}

// Group wraps a nested suite as a suite member.
func Group(s *Suite) Member {
	return Member{group: s}
}

// Suite is an ordered collection of cases and nested suites.
type Suite struct {
	name    string
	members []Member
}

// NewSuite builds a suite from the given members.
func NewSuite(name string, members ...Member) *Suite {
	return &Suite{name: name, members: members}
}

// Add appends members to the suite.
func (s *Suite) Add(members ...Member) *Suite {
	s.members = append(s.members, members...)
	return s
}

// Name returns the suite's name.
func (s *Suite) Name() string { return s.name }

// Runner executes suites strictly sequentially: one case at a time, one test
// method at a time. It is not safe to run the same case instance from two
// runners concurrently; sequential execution is part of the contract.
type Runner struct {
	// Filter selects which tests run; nil runs everything.
	Filter framework.Filter
	// Logger observes test progress; nil discards it.
	Logger framework.TestLogger
	// Debug switches to the re-raising execution primitive: the first failure
	// aborts the run and comes back in Run's error value in addition to the
	// result sink.
	Debug bool
}

// Run executes every test in the suite tree and returns the accumulated
// results. The error value carries harness-level errors only — usage errors,
// fixture contract violations, and re-raised failures in debug mode; ordinary
// assertion failures are recorded in the results and do not stop the run.
func (r *Runner) Run(s *Suite) (framework.Results, error) {
	var runErr error
	results := framework.Run(r.Filter, r.Logger, func(t *framework.T) {
		runErr = r.runSuite(t, s)
	})
	return results, runErr
}

func (r *Runner) runSuite(t *framework.T, s *Suite) error {
	for _, m := range s.members {
		var err error
		switch {
		case m.leaf != nil:
			err = r.runCase(t, m.leaf)
		case m.group != nil:
			group := m.group
			t.Run(group.name, func(t *framework.T) {
				err = r.runSuite(t, group)
			})
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runCase(t *framework.T, c Case) error {
	if err := c.validate(); err != nil {
		return err
	}
	var firstErr error
	t.Run(c.CaseName(), func(t *framework.T) {
		for _, name := range c.testNames() {
			if firstErr != nil {
				return
			}
			t.Run(name, func(t *framework.T) {
				if err := c.runTest(t, name, r.Debug); err != nil {
					firstErr = err
				}
			})
		}
	})
	return firstErr
}
