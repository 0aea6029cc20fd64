// Package analysis turns a completed intake into a short personalized
// summary with automation recommendations. Analyze never fails: any problem
// with the generator or its output yields the fixed Fallback.
package analysis

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/mbolis/tailor-intake/log"
	"github.com/mbolis/tailor-intake/model"
	"github.com/pkg/errors"
)

// MaxRecommendations caps the recommendations kept from a generated result.
const MaxRecommendations = 3

var ErrMalformed = errors.New("malformed analysis")

type Recommendation struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
}

type Result struct {
	Summary         string           `json:"summary" validate:"required"`
	Recommendations []Recommendation `json:"recommendations" validate:"min=1,max=3,dive"`
}

// Generator produces raw model output for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

type Analyzer struct {
	gen     Generator
	timeout time.Duration
}

// NewAnalyzer returns an analyzer over gen. A nil gen always falls back; a
// zero timeout leaves the deadline to ctx.
func NewAnalyzer(gen Generator, timeout time.Duration) *Analyzer {
	return &Analyzer{gen: gen, timeout: timeout}
}

func (a *Analyzer) Analyze(ctx context.Context, answers model.AnswerSet) Result {
	if a.gen == nil {
		log.Debug("analysis.disabled: using fallback")
		return Fallback(answers.Name)
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	text, err := a.gen.Generate(ctx, Prompt(answers))
	if err != nil {
		log.WithError(err).Warn("analysis.generate: using fallback")
		return Fallback(answers.Name)
	}

	result, err := Parse(text)
	if err != nil {
		log.With(log.Fields{"error": err, "raw": text}).Warn("analysis.parse: using fallback")
		return Fallback(answers.Name)
	}
	return result
}

var (
	jsonBlock = regexp.MustCompile(`\{[\s\S]*\}`)
	validate  = validator.New()
)

// Parse extracts the first {...} block of text, which may be wrapped in
// prose or a code fence, and decodes it into a Result. Recommendations past
// MaxRecommendations are dropped.
func Parse(text string) (Result, error) {
	block := jsonBlock.FindString(text)
	if block == "" {
		return Result{}, errors.Wrap(ErrMalformed, "no JSON object")
	}

	var result Result
	if err := json.Unmarshal([]byte(block), &result); err != nil {
		return Result{}, errors.Wrap(ErrMalformed, err.Error())
	}

	result.Summary = strings.TrimSpace(result.Summary)
	if len(result.Recommendations) > MaxRecommendations {
		result.Recommendations = result.Recommendations[:MaxRecommendations]
	}
	for i := range result.Recommendations {
		rec := &result.Recommendations[i]
		rec.Title = strings.TrimSpace(rec.Title)
		rec.Description = strings.TrimSpace(rec.Description)
	}

	if err := validate.Struct(result); err != nil {
		return Result{}, errors.Wrap(ErrMalformed, err.Error())
	}
	return result, nil
}

// Fallback is the result used whenever generation is unavailable.
func Fallback(name string) Result {
	return Result{
		Summary: name + "님, 반복적인 업무로 바쁜 하루를 보내고 계시는군요. " +
			"AI 자동화로 더 중요한 일에 집중하실 수 있도록 도와드릴게요.",
		Recommendations: []Recommendation{
			{"반복 업무 자동화", "AI가 정형화된 업무를 자동으로 처리해드립니다."},
			{"문서 작성 보조", "초안 작성과 편집을 AI가 도와드립니다."},
			{"커뮤니케이션 효율화", "메시지 템플릿과 자동 응답을 설정해드립니다."},
		},
	}
}
