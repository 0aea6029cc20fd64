package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mbolis/tailor-intake/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func answers() model.AnswerSet {
	return model.AnswerSet{
		Name:     "홍길동",
		Email:    "hong@example.com",
		UserType: model.Freelancer,
		Type: &model.FreelancerAnswers{
			Job:                "디자이너",
			TimeConsumingTasks: "견적서 작성",
			MessageTypes:       []string{"quote", "payment"},
		},
		ToneStyle:      model.ToneFriendly,
		DesiredOutcome: "시간 절약",
		AIUsageLevel:   model.AIUsageFree,
	}
}

func static(text string, err error) Generator {
	return GeneratorFunc(func(context.Context, string) (string, error) {
		return text, err
	})
}

func assertFallback(t *testing.T, name string, r Result) {
	t.Helper()
	assert.Equal(t, Fallback(name), r)
	assert.Len(t, r.Recommendations, 3)
	assert.Contains(t, r.Summary, name)
}

func TestFallback(t *testing.T) {
	r := Fallback("김철수")

	assert.NotEmpty(t, r.Summary)
	assert.Contains(t, r.Summary, "김철수님")
	require.Len(t, r.Recommendations, 3)
	for _, rec := range r.Recommendations {
		assert.NotEmpty(t, rec.Title)
		assert.NotEmpty(t, rec.Description)
	}
}

func TestAnalyzeWithoutGenerator(t *testing.T) {
	r := NewAnalyzer(nil, time.Second).Analyze(context.Background(), answers())

	assertFallback(t, "홍길동", r)
}

func TestAnalyzeGeneratorFailure(t *testing.T) {
	a := NewAnalyzer(static("", errors.New("quota exceeded")), time.Second)

	assertFallback(t, "홍길동", a.Analyze(context.Background(), answers()))
}

func TestAnalyzeParsesFencedOutput(t *testing.T) {
	text := "물론입니다!\n```json\n" + `{
		"summary": "바쁘시군요.",
		"recommendations": [
			{"title": "견적 자동화", "description": "견적서 초안을 만듭니다."},
			{"title": "정산 안내", "description": "결제 안내 메일을 씁니다."}
		]
	}` + "\n```"
	a := NewAnalyzer(static(text, nil), time.Second)

	r := a.Analyze(context.Background(), answers())

	assert.Equal(t, "바쁘시군요.", r.Summary)
	assert.Equal(t, []Recommendation{
		{"견적 자동화", "견적서 초안을 만듭니다."},
		{"정산 안내", "결제 안내 메일을 씁니다."},
	}, r.Recommendations)
}

func TestAnalyzeTimeout(t *testing.T) {
	blocking := GeneratorFunc(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	a := NewAnalyzer(blocking, 20*time.Millisecond)

	start := time.Now()
	r := a.Analyze(context.Background(), answers())

	assertFallback(t, "홍길동", r)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestParseTruncatesExtraRecommendations(t *testing.T) {
	r, err := Parse(`{"summary":"s","recommendations":[
		{"title":"1","description":"a"},
		{"title":"2","description":"b"},
		{"title":"3","description":"c"},
		{"title":"4","description":"d"},
		{"title":"5","description":"e"}]}`)

	require.NoError(t, err)
	require.Len(t, r.Recommendations, 3)
	assert.Equal(t, "3", r.Recommendations[2].Title)
}

func TestParseRejects(t *testing.T) {
	for name, text := range map[string]string{
		"no json":                 "죄송합니다, 답변할 수 없습니다.",
		"broken json":             `{"summary": "s", "recommendations": [}`,
		"empty summary":           `{"summary": "  ", "recommendations": [{"title":"t","description":"d"}]}`,
		"no recommendations":      `{"summary": "s", "recommendations": []}`,
		"missing recommendations": `{"summary": "s"}`,
		"blank title":             `{"summary": "s", "recommendations": [{"title":"","description":"d"}]}`,
		"missing description":     `{"summary": "s", "recommendations": [{"title":"t"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(text)
			assert.ErrorIs(t, err, ErrMalformed)

			r := NewAnalyzer(static(text, nil), time.Second).Analyze(context.Background(), answers())
			assertFallback(t, "홍길동", r)
		})
	}
}

func TestPromptUsesLabels(t *testing.T) {
	var got string
	capture := GeneratorFunc(func(_ context.Context, prompt string) (string, error) {
		got = prompt
		return "", errors.New("stop")
	})

	NewAnalyzer(capture, time.Second).Analyze(context.Background(), answers())

	assert.Contains(t, got, "이름: 홍길동")
	assert.Contains(t, got, "유형: 1인 사업자/프리랜서")
	assert.Contains(t, got, "직업: 디자이너")
	assert.Contains(t, got, "자주 보내는 메시지: 견적서/제안서, 결제/정산 안내")
	assert.Contains(t, got, "최근 고객 응대 상황: 미입력")
	assert.Contains(t, got, "원하는 결과: 시간 절약")
	assert.NotContains(t, got, "제약 사항")
}

func TestPromptIgnoresOtherVariantAnswers(t *testing.T) {
	a := answers()
	a.UserType = model.Other

	got := Prompt(a)

	assert.Contains(t, got, "유형: 기타")
	assert.NotContains(t, got, "디자이너")
}
