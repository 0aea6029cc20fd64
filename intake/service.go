// Package intake runs the prospect-facing flows: persisting a completed
// answer set and producing its analysis. Email side effects are handed to a
// dispatcher once the primary work is done.
package intake

import (
	"context"

	"github.com/mbolis/tailor-intake/analysis"
	"github.com/mbolis/tailor-intake/log"
	"github.com/mbolis/tailor-intake/model"
	"github.com/mbolis/tailor-intake/validation"
)

type Store interface {
	Create(ctx context.Context, sub model.Submission) (model.Submission, error)
}

type Notifier interface {
	NotifyAdmin(ctx context.Context, sub model.Submission) error
	SendAnalysis(ctx context.Context, answers model.AnswerSet, result analysis.Result) error
}

type Dispatcher interface {
	Go(name string, task func(ctx context.Context) error)
}

type Service struct {
	gate     *validation.Gate
	store    Store
	analyzer *analysis.Analyzer
	notifier Notifier
	dispatch Dispatcher
}

func NewService(gate *validation.Gate, store Store, analyzer *analysis.Analyzer, notifier Notifier, dispatch Dispatcher) *Service {
	return &Service{
		gate:     gate,
		store:    store,
		analyzer: analyzer,
		notifier: notifier,
		dispatch: dispatch,
	}
}

// Submit persists answers; it lets the service act as the wizard's
// submitter.
func (s *Service) Submit(ctx context.Context, answers model.AnswerSet) error {
	_, err := s.Create(ctx, answers)
	return err
}

// Create validates every step of answers, stores the submission and
// schedules the operator alert. Validation failures are
// validation.FieldErrors; the alert outcome never reaches the caller.
func (s *Service) Create(ctx context.Context, answers model.AnswerSet) (model.Submission, error) {
	if err := s.gate.CheckAll(&answers); err != nil {
		return model.Submission{}, err
	}

	sub, err := s.store.Create(ctx, model.NewSubmission(answers))
	if err != nil {
		return model.Submission{}, err
	}

	s.dispatch.Go("notify.admin", func(ctx context.Context) error {
		return s.notifier.NotifyAdmin(ctx, sub)
	})
	return sub, nil
}

// Analyze returns the analysis of answers, falling back when generation
// fails, and schedules the result mail to the prospect. The mail is skipped
// when the name or email does not validate.
func (s *Service) Analyze(ctx context.Context, answers model.AnswerSet) analysis.Result {
	result := s.analyzer.Analyze(ctx, answers)

	if err := s.gate.Check(model.StepBasic, &answers); err != nil {
		log.Debugf("notify.analysis: skipped, %s", err)
		return result
	}
	s.dispatch.Go("notify.analysis", func(ctx context.Context) error {
		return s.notifier.SendAnalysis(ctx, answers, result)
	})
	return result
}
