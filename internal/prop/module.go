package prop

import (
	"fmt"
	"strings"
)

// Module is a unit of physics or control logic in the propagation chain.
// Process observes and mutates a candidate: it may deplete energy, constrain
// the next step via Candidate.LimitNextStep, or terminate the candidate.
type Module interface {
	Process(c *Candidate)
	Description() string
}

// ModuleList runs an ordered chain of modules over a candidate's trajectory.
//
// Each iteration first resets the candidate's step limit and lets every
// module process the candidate in order; modules propose step limits during
// processing, so every module has veto power over the step size without
// knowing about the others. If the candidate is still active afterwards, the
// runner advances it along its direction by the most restrictive limit,
// clamped to [MinStep, MaxStep].
type ModuleList struct {
	modules  []Module
	minStep  float64
	maxStep  float64
	maxSteps int
	log      Logger
}

const defaultMaxSteps = 1_000_000

// NewModuleList creates an empty runner with step bounds of 1 kpc and 10 Mpc.
func NewModuleList() *ModuleList {
	return &ModuleList{
		minStep:  Kpc,
		maxStep:  10 * Mpc,
		maxSteps: defaultMaxSteps,
		log:      NewNoOpLogger(),
	}
}

// Add appends a module to the chain. Modules run in insertion order.
func (ml *ModuleList) Add(m Module) {
	ml.modules = append(ml.modules, m)
}

func (ml *ModuleList) Modules() []Module {
	return ml.modules
}

// SetStepBounds sets the minimum and maximum step length.
func (ml *ModuleList) SetStepBounds(minStep, maxStep float64) error {
	if minStep <= 0 || maxStep < minStep {
		return fmt.Errorf("invalid step bounds: min=%g max=%g", minStep, maxStep)
	}
	ml.minStep = minStep
	ml.maxStep = maxStep
	return nil
}

// SetMaxSteps bounds the number of iterations per candidate, as a safety
// valve against chains with no terminating condition.
func (ml *ModuleList) SetMaxSteps(n int) {
	if n > 0 {
		ml.maxSteps = n
	}
}

// SetLogger injects a logger. A nil logger disables logging.
func (ml *ModuleList) SetLogger(log Logger) {
	if log == nil {
		log = NewNoOpLogger()
	}
	ml.log = log
}

// Run steps a single candidate until it is deactivated or the iteration
// budget is exhausted.
func (ml *ModuleList) Run(c *Candidate) {
	for i := 0; c.IsActive(); i++ {
		if i >= ml.maxSteps {
			ml.log.Warnf("candidate %s exceeded %d steps, deactivating", c.Serial(), ml.maxSteps)
			c.SetTag("Error", "MaxStepsExceeded")
			c.Deactivate()
			return
		}

		c.resetNextStep()
		for _, m := range ml.modules {
			m.Process(c)
			if !c.IsActive() {
				return
			}
		}

		step := c.NextStep()
		if step > ml.maxStep {
			step = ml.maxStep
		}
		if step < ml.minStep {
			step = ml.minStep
		}
		c.advance(step)
	}
}

// RunAll steps each candidate in turn. Candidates are independent; callers
// that want parallelism fan them out over goroutines and call Run directly.
func (ml *ModuleList) RunAll(candidates []*Candidate) {
	for _, c := range candidates {
		ml.Run(c)
	}
}

// Describe returns a human-readable listing of the module chain.
func (ml *ModuleList) Describe() string {
	var b strings.Builder
	b.WriteString("ModuleList\n")
	for i, m := range ml.modules {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, m.Description())
	}
	return b.String()
}
