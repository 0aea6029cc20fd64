// Package wizard implements the four-step intake questionnaire.
//
// A Session is owned by a single caller and is not safe for concurrent use.
package wizard

import (
	"context"
	"errors"
	"fmt"

	"github.com/mbolis/tailor-intake/model"
	"github.com/mbolis/tailor-intake/validation"
)

var (
	ErrNotLastStep  = errors.New("wizard: submit is only allowed on the last step")
	ErrSubmitting   = errors.New("wizard: submission already in progress")
	ErrSubmitted    = errors.New("wizard: already submitted")
	ErrSubmitFailed = errors.New("wizard: submission failed, please try again")
	ErrNotTagField  = errors.New("wizard: not a multi-select field")
)

// Submitter stores a completed answer set.
type Submitter interface {
	Submit(ctx context.Context, answers model.AnswerSet) error
}

// View names the form rendered for the current step.
type View string

const (
	ViewBasic    View = "basic"
	ViewUserType View = "userType"
	ViewCommon   View = "common"
)

// VariantView is the form of the variant's own questions.
func VariantView(v model.Variant) View {
	return View(v)
}

type Session struct {
	gate       *validation.Gate
	index      int
	answers    model.AnswerSet
	errs       validation.FieldErrors
	submitting bool
	submitted  bool
}

func New(gate *validation.Gate) *Session {
	return &Session{gate: gate}
}

// Resume rebuilds a session positioned at step with the given answers.
func Resume(gate *validation.Gate, step model.Step, answers model.AnswerSet) (*Session, error) {
	index := step.Index()
	if index < 0 {
		return nil, fmt.Errorf("wizard: unknown step %q", step)
	}
	return &Session{gate: gate, index: index, answers: answers}, nil
}

func (s *Session) Step() model.Step {
	return model.Steps[s.index]
}

func (s *Session) IsFirstStep() bool { return s.index == 0 }
func (s *Session) IsLastStep() bool  { return s.index == len(model.Steps)-1 }

// Progress returns the 1-based position and the step count.
func (s *Session) Progress() (current, total int) {
	return s.index + 1, len(model.Steps)
}

func (s *Session) Answers() model.AnswerSet { return s.answers }

func (s *Session) Errors() validation.FieldErrors { return s.errs }

func (s *Session) Submitting() bool { return s.submitting }
func (s *Session) Submitted() bool  { return s.submitted }

// Update edits the in-progress answers.
func (s *Session) Update(edit func(a *model.AnswerSet)) {
	edit(&s.answers)
}

// SelectVariant sets the user type. Answers already given for v are kept;
// switching variant starts from empty answers.
func (s *Session) SelectVariant(v model.Variant) {
	s.answers.UserType = v
	if s.answers.Type == nil || s.answers.Type.Variant() != v {
		s.answers.Type = model.NewAnswers(v)
	}
}

// View picks the form for the current step.
func (s *Session) View() View {
	return ViewFor(s.Step(), s.answers.UserType)
}

// ViewFor picks the form of step. The typeSpecific step falls back to the
// common questions when no variant with own questions is selected.
func ViewFor(step model.Step, v model.Variant) View {
	switch step {
	case model.StepBasic:
		return ViewBasic
	case model.StepUserType:
		return ViewUserType
	case model.StepTypeSpecific:
		switch v {
		case model.Freelancer, model.Startup, model.Marketer, model.Professional:
			return VariantView(v)
		}
	}
	return ViewCommon
}

// Advance moves to the next step if the current one validates. On failure
// the session stays put and the field errors are returned.
func (s *Session) Advance() error {
	if err := s.gate.Check(s.Step(), &s.answers); err != nil {
		if fe, ok := err.(validation.FieldErrors); ok {
			s.errs = fe
		}
		return err
	}
	s.errs = nil
	if !s.IsLastStep() {
		s.index++
	}
	return nil
}

// Retreat moves back one step without validating.
func (s *Session) Retreat() {
	s.errs = nil
	if s.index > 0 {
		s.index--
	}
}

// Toggle flips value in the multi-select field key of the selected variant.
func (s *Session) Toggle(key, value string) error {
	s.answers.Type = s.answers.VariantAnswers()
	ts, ok := s.answers.Type.(model.TagSetter)
	if !ok {
		return ErrNotTagField
	}
	set := ts.TagSet(key)
	if set == nil {
		return ErrNotTagField
	}
	*set = Toggle(*set, value)
	return nil
}

// Submit validates every step and hands the answers to sub. A successful
// submit clears the answers; a failed one leaves the session on the last step.
func (s *Session) Submit(ctx context.Context, sub Submitter) error {
	switch {
	case s.submitted:
		return ErrSubmitted
	case s.submitting:
		return ErrSubmitting
	case !s.IsLastStep():
		return ErrNotLastStep
	}

	if err := s.gate.CheckAll(&s.answers); err != nil {
		if fe, ok := err.(validation.FieldErrors); ok {
			s.errs = fe
		}
		return err
	}
	s.errs = nil

	s.submitting = true
	defer func() { s.submitting = false }()

	if err := sub.Submit(ctx, s.answers); err != nil {
		return fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}

	s.submitted = true
	s.answers = model.AnswerSet{}
	return nil
}

// Toggle removes value from set if present, otherwise appends it. The
// remaining elements keep their order.
func Toggle(set []string, value string) []string {
	for i, v := range set {
		if v == value {
			out := make([]string, 0, len(set)-1)
			out = append(out, set[:i]...)
			return append(out, set[i+1:]...)
		}
	}
	out := make([]string, 0, len(set)+1)
	out = append(out, set...)
	return append(out, value)
}
