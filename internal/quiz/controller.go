package quiz

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrCompleted     = errors.New("quiz already completed")
	ErrInvalidAnswer = errors.New("invalid answer")
	ErrInvalidState  = errors.New("invalid quiz state")
)

// Target receives the answers. filter.State satisfies it.
type Target interface {
	Set(dim, value string)
	Clear(dim string)
}

// State is the serialisable progress of a quiz run.
type State struct {
	CurrentIndex int               `json:"currentIndex"`
	Answers      map[string]string `json:"answers"`
	Completed    bool              `json:"completed"`
}

func (s State) clone() State {
	answers := make(map[string]string, len(s.Answers))
	for k, v := range s.Answers {
		answers[k] = v
	}
	s.Answers = answers
	return s
}

type Option func(*Controller)

// WithOnComplete registers fn to run each time the quiz moves into the
// completed state.
func WithOnComplete(fn func(State)) Option {
	return func(c *Controller) {
		c.onComplete = fn
	}
}

// Controller is not safe for concurrent use; each screen or request owns one.
type Controller struct {
	questions  []Question
	target     Target
	state      State
	onComplete func(State)
}

// New starts a quiz at the first question. A quiz without questions starts
// completed. target may be nil.
func New(questions []Question, target Target, opts ...Option) *Controller {
	c := &Controller{
		questions: append([]Question(nil), questions...),
		target:    target,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.state = c.initial()
	return c
}

func (c *Controller) initial() State {
	return State{
		Answers:   map[string]string{},
		Completed: len(c.questions) == 0,
	}
}

func (c *Controller) CurrentIndex() int { return c.state.CurrentIndex }

func (c *Controller) Completed() bool { return c.state.Completed }

func (c *Controller) Questions() []Question {
	return append([]Question(nil), c.questions...)
}

// Answers returns a copy of the recorded answers keyed by dimension.
func (c *Controller) Answers() map[string]string {
	return c.state.clone().Answers
}

// Current returns the question being asked. ok is false once completed.
func (c *Controller) Current() (q Question, ok bool) {
	if c.state.Completed {
		return Question{}, false
	}
	return c.questions[c.state.CurrentIndex], true
}

// Progress reports how many questions were answered out of the total.
func (c *Controller) Progress() (answered, total int) {
	return len(c.state.Answers), len(c.questions)
}

// Answer records value for the current question's dimension, replaces that
// dimension on the target and moves on. A blank value is treated as Skip.
func (c *Controller) Answer(value string) error {
	if c.state.Completed {
		return ErrCompleted
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return c.Skip()
	}

	dim := c.questions[c.state.CurrentIndex].TargetDimension
	if dim != "" {
		c.state.Answers[dim] = value
		if c.target != nil {
			c.target.Set(dim, value)
		}
	}
	c.advance()
	return nil
}

// Choose answers with the i-th listed option of the current question.
func (c *Controller) Choose(i int) error {
	if c.state.Completed {
		return ErrCompleted
	}
	answers := c.questions[c.state.CurrentIndex].Answers
	if i < 0 || i >= len(answers) {
		return fmt.Errorf("%w: option %d of %d", ErrInvalidAnswer, i, len(answers))
	}
	return c.Answer(answers[i].Key)
}

// Skip moves on without recording anything.
func (c *Controller) Skip() error {
	if c.state.Completed {
		return ErrCompleted
	}
	c.advance()
	return nil
}

// Close ends the quiz early. Recorded answers and their filters stay.
// Closing a completed quiz is a no-op.
func (c *Controller) Close() {
	if c.state.Completed {
		return
	}
	c.complete()
}

// Reset clears the answers, removes the dimensions the quiz wrote from the
// target and starts over.
func (c *Controller) Reset() {
	if c.target != nil {
		for dim := range c.state.Answers {
			c.target.Clear(dim)
		}
	}
	c.state = c.initial()
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	return c.state.clone()
}

// Restore replaces the state with s after checking it fits the question
// list. The target is left untouched.
func (c *Controller) Restore(s State) error {
	n := len(c.questions)
	if n == 0 && !s.Completed {
		return fmt.Errorf("%w: quiz has no questions", ErrInvalidState)
	}
	if s.CurrentIndex < 0 || (n > 0 && s.CurrentIndex >= n) || (n == 0 && s.CurrentIndex != 0) {
		return fmt.Errorf("%w: index %d out of range", ErrInvalidState, s.CurrentIndex)
	}

	dims := make(map[string]bool, n)
	for _, q := range c.questions {
		dims[q.TargetDimension] = true
	}
	for dim, v := range s.Answers {
		if !dims[dim] || strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: unexpected answer for %q", ErrInvalidState, dim)
		}
	}

	c.state = s.clone()
	return nil
}

func (c *Controller) advance() {
	if c.state.CurrentIndex+1 < len(c.questions) {
		c.state.CurrentIndex++
		return
	}
	c.complete()
}

// complete keeps CurrentIndex on the last question shown.
func (c *Controller) complete() {
	c.state.Completed = true
	if c.onComplete != nil {
		c.onComplete(c.state.clone())
	}
}
