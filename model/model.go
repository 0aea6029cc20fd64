package model

// Variant is the prospect category picked on the userType step.
type Variant string

const (
	Freelancer   Variant = "freelancer"
	Startup      Variant = "startup"
	Marketer     Variant = "marketer"
	Professional Variant = "professional"
	Other        Variant = "other"
)

var Variants = []Variant{Freelancer, Startup, Marketer, Professional, Other}

var variantLabels = map[Variant]string{
	Freelancer:   "1인 사업자/프리랜서",
	Startup:      "스타트업 대표",
	Marketer:     "마케터",
	Professional: "전문직",
	Other:        "기타",
}

func (v Variant) Valid() bool {
	_, ok := variantLabels[v]
	return ok
}

func (v Variant) Label() string {
	if label, ok := variantLabels[v]; ok {
		return label
	}
	return string(v)
}

// Status is the admin lifecycle tag of a submission. Any status may move to
// any other status.
type Status string

const (
	StatusNew        Status = "new"
	StatusConsulting Status = "consulting"
	StatusContracted Status = "contracted"
	StatusCompleted  Status = "completed"
)

var Statuses = []Status{StatusNew, StatusConsulting, StatusContracted, StatusCompleted}

var statusLabels = map[Status]string{
	StatusNew:        "신규",
	StatusConsulting: "상담중",
	StatusContracted: "계약",
	StatusCompleted:  "완료",
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

type ToneStyle string

const (
	ToneFormal   ToneStyle = "formal"
	ToneFriendly ToneStyle = "friendly"
	ToneConcise  ToneStyle = "concise"
	ToneFlexible ToneStyle = "flexible"
)

var ToneStyleOptions = []Option{
	{string(ToneFormal), "격식체"},
	{string(ToneFriendly), "친근체"},
	{string(ToneConcise), "간결체"},
	{string(ToneFlexible), "상황에 따라"},
}

type AIUsageLevel string

const (
	AIUsagePaid   AIUsageLevel = "paid"
	AIUsageFree   AIUsageLevel = "free"
	AIUsageRarely AIUsageLevel = "rarely"
	AIUsageNever  AIUsageLevel = "never"
)

var AIUsageLevelOptions = []Option{
	{string(AIUsagePaid), "유료 구독 중"},
	{string(AIUsageFree), "무료로 가끔"},
	{string(AIUsageRarely), "거의 안 씀"},
	{string(AIUsageNever), "써본 적 없음"},
}

// Step is one screen of the intake wizard.
type Step string

const (
	StepBasic        Step = "basic"
	StepUserType     Step = "userType"
	StepTypeSpecific Step = "typeSpecific"
	StepCommon       Step = "common"
)

// Steps is the fixed wizard order.
var Steps = []Step{StepBasic, StepUserType, StepTypeSpecific, StepCommon}

var stepTitles = map[Step]string{
	StepBasic:        "기본 정보",
	StepUserType:     "유형 선택",
	StepTypeSpecific: "상세 정보",
	StepCommon:       "마무리",
}

func (s Step) Title() string {
	return stepTitles[s]
}

// Index returns the position of s in Steps, or -1.
func (s Step) Index() int {
	for i, step := range Steps {
		if step == s {
			return i
		}
	}
	return -1
}

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field is a labelled answer, used wherever variant answers are shown to a
// human (admin detail, emails, analysis prompt).
type Field struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

type Counts struct {
	All        int `json:"all"`
	New        int `json:"new"`
	Consulting int `json:"consulting"`
	Contracted int `json:"contracted"`
	Completed  int `json:"completed"`
}

// Add records n submissions with status s. Unknown statuses only count
// towards All.
func (c *Counts) Add(s Status, n int) {
	c.All += n
	switch s {
	case StatusNew:
		c.New += n
	case StatusConsulting:
		c.Consulting += n
	case StatusContracted:
		c.Contracted += n
	case StatusCompleted:
		c.Completed += n
	}
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
