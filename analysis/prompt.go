package analysis

import (
	"strings"

	"github.com/mbolis/tailor-intake/model"
)

const unanswered = "미입력"

// Prompt renders the consultant instructions and the prospect's answers.
// Variant answers are listed under their human labels.
func Prompt(a model.AnswerSet) string {
	var b strings.Builder

	b.WriteString("당신은 AI 자동화 전문 컨설턴트입니다. 다음 고객 정보를 분석하여 맞춤 제안을 작성하세요.\n\n")

	b.WriteString("[고객 정보]\n")
	line(&b, "이름", a.Name)
	line(&b, "유형", a.UserType.Label())
	if answers := a.VariantAnswers(); answers != nil {
		for _, f := range answers.Fields() {
			line(&b, f.Label, f.Value)
		}
	}
	b.WriteString("\n")
	line(&b, "원하는 결과", a.DesiredOutcome)
	if a.Restrictions != "" {
		line(&b, "제약 사항", a.Restrictions)
	}

	b.WriteString(`
[지시사항]
1. 고객의 상황을 2-3문장으로 공감하며 요약하세요. 친근하고 따뜻한 톤으로.
2. AI로 자동화할 수 있는 구체적인 영역 3가지를 제안하세요. 각각에 대해:
   - 자동화 가능한 업무명 (간결하게)
   - 어떻게 도움이 되는지 한 줄 설명

[출력 형식 - 반드시 이 JSON 형식으로만 응답하세요]
{
  "summary": "고객 상황 공감 요약 (2-3문장)",
  "recommendations": [
    { "title": "자동화 영역 1", "description": "한 줄 설명" },
    { "title": "자동화 영역 2", "description": "한 줄 설명" },
    { "title": "자동화 영역 3", "description": "한 줄 설명" }
  ]
}

JSON만 출력하고 다른 텍스트는 포함하지 마세요.`)

	return b.String()
}

func line(b *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		value = unanswered
	}
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\n")
}
