package prop

import "math"

// Candidate is a single simulated particle and its trajectory bookkeeping.
// It owns the current particle state, the initial state it was emitted with,
// the cumulative trajectory length, the size of the last step and the limit
// negotiated for the next one, an active flag, and an open tag map used by
// modules to record terminal outcomes (e.g. the rejection reason).
//
// A Candidate is confined to a single goroutine; modules mutate it only
// through the methods below.
type Candidate struct {
	Current ParticleState
	Initial ParticleState

	serial           string
	trajectoryLength float64
	currentStep      float64
	nextStep         float64
	redshift         float64
	weight           float64
	active           bool
	tags             map[string]string
}

// NewCandidate creates an active candidate at trajectory length zero.
// The given state becomes both the current and the initial state.
func NewCandidate(state ParticleState) *Candidate {
	return &Candidate{
		Current:  state,
		Initial:  state,
		serial:   NewRandomID(),
		nextStep: NoLimit,
		weight:   1,
		active:   true,
		tags:     make(map[string]string),
	}
}

// Serial returns the candidate's random identifier, used to correlate
// events and snapshot records.
func (c *Candidate) Serial() string {
	return c.serial
}

func (c *Candidate) IsActive() bool {
	return c.active
}

// Deactivate marks the candidate terminal. The runner stops stepping it and
// no module receives it afterwards.
func (c *Candidate) Deactivate() {
	c.active = false
}

func (c *Candidate) TrajectoryLength() float64 {
	return c.trajectoryLength
}

// CurrentStep returns the length of the last advance.
func (c *Candidate) CurrentStep() float64 {
	return c.currentStep
}

// NextStep returns the most restrictive step limit proposed this iteration.
func (c *Candidate) NextStep() float64 {
	return c.nextStep
}

// LimitNextStep proposes an upper bound for the next step. The candidate
// keeps the minimum of all proposals seen in the current iteration.
// Non-positive or NaN proposals are a module programming error and are
// ignored so they cannot stall the trajectory.
func (c *Candidate) LimitNextStep(length float64) {
	if math.IsNaN(length) || length <= 0 {
		return
	}
	if length < c.nextStep {
		c.nextStep = length
	}
}

func (c *Candidate) Redshift() float64 {
	return c.redshift
}

func (c *Candidate) SetRedshift(z float64) {
	c.redshift = z
}

func (c *Candidate) Weight() float64 {
	return c.weight
}

func (c *Candidate) SetWeight(w float64) {
	c.weight = w
}

// SetTag records a key/value pair on the candidate. Later writes to the
// same key win.
func (c *Candidate) SetTag(key, value string) {
	c.tags[key] = value
}

func (c *Candidate) Tag(key string) (string, bool) {
	v, ok := c.tags[key]
	return v, ok
}

func (c *Candidate) HasTag(key string) bool {
	_, ok := c.tags[key]
	return ok
}

// Tags returns a copy of the tag map.
func (c *Candidate) Tags() map[string]string {
	out := make(map[string]string, len(c.tags))
	for k, v := range c.tags {
		out[k] = v
	}
	return out
}

// resetNextStep clears the negotiated limit at the start of an iteration.
func (c *Candidate) resetNextStep() {
	c.nextStep = NoLimit
}

// advance moves the candidate along its direction by step and updates the
// trajectory bookkeeping.
func (c *Candidate) advance(step float64) {
	c.Current.position = c.Current.position.Add(c.Current.direction.Scale(step))
	c.trajectoryLength += step
	c.currentStep = step
}
