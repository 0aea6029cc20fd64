package model

import (
	"strings"

	"github.com/goccy/go-json"
)

// VariantAnswers holds the answers that only exist for one variant.
// Exactly one concrete type exists per Variant; an AnswerSet carries the one
// matching its UserType.
type VariantAnswers interface {
	Variant() Variant
	Fields() []Field
}

// TagSetter is implemented by variant answers that carry multi-select fields.
// TagSet returns the slice stored under the wire key, or nil when the key is
// not a multi-select field of that variant.
type TagSetter interface {
	TagSet(key string) *[]string
}

var (
	MessageTypeOptions = []Option{
		{"quote", "견적서/제안서"},
		{"guide", "작업 안내"},
		{"progress", "진행 상황 공유"},
		{"payment", "결제/정산 안내"},
		{"followup", "팔로업"},
		{"other", "기타"},
	}
	StartupChannelOptions = []Option{
		{"email", "이메일"},
		{"slack", "슬랙/팀즈"},
		{"meeting", "미팅/화상회의"},
		{"kakao", "카카오톡"},
		{"other", "기타"},
	}
	MarketerChannelOptions = []Option{
		{"instagram", "인스타그램"},
		{"facebook", "페이스북"},
		{"blog", "블로그/SEO"},
		{"youtube", "유튜브"},
		{"newsletter", "뉴스레터"},
		{"ads", "유료 광고"},
	}
	ContentVolumeOptions = []Option{
		{"1-2", "1~2개"},
		{"3-5", "3~5개"},
		{"6-10", "6~10개"},
		{"10+", "10개 이상"},
	}
	DocumentTypeOptions = []Option{
		{"contract", "계약서/합의서"},
		{"opinion", "의견서/검토서"},
		{"diagnosis", "소견서/진단서"},
		{"proposal", "제안서/견적서"},
		{"email", "이메일/안내문"},
		{"other", "기타"},
	}
)

type FreelancerAnswers struct {
	Job                   string   `json:"job" validate:"required"`
	TimeConsumingTasks    string   `json:"timeConsumingTasks" validate:"required"`
	MessageTypes          []string `json:"messageTypes" validate:"omitempty,dive,oneof=quote guide progress payment followup other"`
	RecentClientSituation string   `json:"recentClientSituation"`
	AIWishlist            string   `json:"aiWishlist"`
}

func (*FreelancerAnswers) Variant() Variant { return Freelancer }

func (a *FreelancerAnswers) Fields() []Field {
	return []Field{
		{"job", "직업", a.Job},
		{"timeConsumingTasks", "시간 소모 업무", a.TimeConsumingTasks},
		{"messageTypes", "자주 보내는 메시지", optionLabels(MessageTypeOptions, a.MessageTypes)},
		{"recentClientSituation", "최근 고객 응대 상황", a.RecentClientSituation},
		{"aiWishlist", "AI가 대신했으면 하는 업무", a.AIWishlist},
	}
}

func (a *FreelancerAnswers) TagSet(key string) *[]string {
	if key == "messageTypes" {
		return &a.MessageTypes
	}
	return nil
}

type StartupAnswers struct {
	CompanyIntro           string   `json:"companyIntro" validate:"required"`
	TeamSize               string   `json:"teamSize" validate:"required"`
	CommunicationChannels  []string `json:"communicationChannels" validate:"omitempty,dive,oneof=email slack meeting kakao other"`
	RepetitiveExplanations string   `json:"repetitiveExplanations"`
	LongestEmailSituation  string   `json:"longestEmailSituation"`
	AIWishlist             string   `json:"aiWishlist"`
}

func (*StartupAnswers) Variant() Variant { return Startup }

func (a *StartupAnswers) Fields() []Field {
	return []Field{
		{"companyIntro", "회사/서비스", a.CompanyIntro},
		{"teamSize", "팀 규모", a.TeamSize},
		{"communicationChannels", "커뮤니케이션 채널", optionLabels(StartupChannelOptions, a.CommunicationChannels)},
		{"repetitiveExplanations", "반복 설명 내용", a.RepetitiveExplanations},
		{"longestEmailSituation", "가장 오래 걸린 이메일", a.LongestEmailSituation},
		{"aiWishlist", "AI에게 먼저 맡기고 싶은 일", a.AIWishlist},
	}
}

func (a *StartupAnswers) TagSet(key string) *[]string {
	if key == "communicationChannels" {
		return &a.CommunicationChannels
	}
	return nil
}

type MarketerAnswers struct {
	BrandName                string   `json:"brandName" validate:"required"`
	Channels                 []string `json:"channels" validate:"omitempty,dive,oneof=instagram facebook blog youtube newsletter ads"`
	ContentVolume            string   `json:"contentVolume" validate:"omitempty,oneof=1-2 3-5 6-10 10+"`
	MostTimeConsumingContent string   `json:"mostTimeConsumingContent"`
	ContentCreationProcess   string   `json:"contentCreationProcess"`
	SuccessfulContentLink    string   `json:"successfulContentLink" validate:"omitempty,url"`
}

func (*MarketerAnswers) Variant() Variant { return Marketer }

func (a *MarketerAnswers) Fields() []Field {
	return []Field{
		{"brandName", "브랜드명", a.BrandName},
		{"channels", "담당 채널", optionLabels(MarketerChannelOptions, a.Channels)},
		{"contentVolume", "주간 콘텐츠량", optionLabel(ContentVolumeOptions, a.ContentVolume)},
		{"mostTimeConsumingContent", "시간 많이 드는 콘텐츠", a.MostTimeConsumingContent},
		{"contentCreationProcess", "콘텐츠 제작 과정", a.ContentCreationProcess},
		{"successfulContentLink", "잘 됐던 콘텐츠 링크", a.SuccessfulContentLink},
	}
}

func (a *MarketerAnswers) TagSet(key string) *[]string {
	if key == "channels" {
		return &a.Channels
	}
	return nil
}

type ProfessionalAnswers struct {
	Specialty               string   `json:"specialty" validate:"required"`
	ClientType              string   `json:"clientType"`
	DocumentTypes           []string `json:"documentTypes" validate:"omitempty,dive,oneof=contract opinion diagnosis proposal email other"`
	RepetitiveExplanations  string   `json:"repetitiveExplanations"`
	RecentDocumentSituation string   `json:"recentDocumentSituation"`
	IndustryTerms           string   `json:"industryTerms"`
}

func (*ProfessionalAnswers) Variant() Variant { return Professional }

func (a *ProfessionalAnswers) Fields() []Field {
	return []Field{
		{"specialty", "전문 분야", a.Specialty},
		{"clientType", "주요 고객층", a.ClientType},
		{"documentTypes", "자주 작성하는 문서", optionLabels(DocumentTypeOptions, a.DocumentTypes)},
		{"repetitiveExplanations", "반복 설명 내용", a.RepetitiveExplanations},
		{"recentDocumentSituation", "최근 문서 작성 상황", a.RecentDocumentSituation},
		{"industryTerms", "업계 용어", a.IndustryTerms},
	}
}

func (a *ProfessionalAnswers) TagSet(key string) *[]string {
	if key == "documentTypes" {
		return &a.DocumentTypes
	}
	return nil
}

// OtherAnswers has no extra questions; the wizard falls through to the
// common questions.
type OtherAnswers struct{}

func (*OtherAnswers) Variant() Variant { return Other }

func (*OtherAnswers) Fields() []Field { return nil }

// NewAnswers returns empty answers for v, or nil if v is not a known variant.
func NewAnswers(v Variant) VariantAnswers {
	switch v {
	case Freelancer:
		return &FreelancerAnswers{}
	case Startup:
		return &StartupAnswers{}
	case Marketer:
		return &MarketerAnswers{}
	case Professional:
		return &ProfessionalAnswers{}
	case Other:
		return &OtherAnswers{}
	}
	return nil
}

// Options lists the choice sets of v's select fields, keyed by field.
func Options(v Variant) map[string][]Option {
	switch v {
	case Freelancer:
		return map[string][]Option{"messageTypes": MessageTypeOptions}
	case Startup:
		return map[string][]Option{"communicationChannels": StartupChannelOptions}
	case Marketer:
		return map[string][]Option{
			"channels":      MarketerChannelOptions,
			"contentVolume": ContentVolumeOptions,
		}
	case Professional:
		return map[string][]Option{"documentTypes": DocumentTypeOptions}
	}
	return nil
}

// DecodeAnswers parses a stored type_answers blob for variant v. An empty
// blob yields empty answers.
func DecodeAnswers(v Variant, blob []byte) (VariantAnswers, error) {
	answers := NewAnswers(v)
	if answers == nil {
		return nil, nil
	}
	if len(blob) == 0 || string(blob) == "null" {
		return answers, nil
	}
	if err := json.Unmarshal(blob, answers); err != nil {
		return nil, err
	}
	return answers, nil
}

// WireKey is the flat request key of a variant field, e.g. "freelancer_job".
func WireKey(v Variant, key string) string {
	return string(v) + "_" + key
}

func optionLabel(options []Option, value string) string {
	for _, o := range options {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

func optionLabels(options []Option, values []string) string {
	labels := make([]string, len(values))
	for i, v := range values {
		labels[i] = optionLabel(options, v)
	}
	return strings.Join(labels, ", ")
}
