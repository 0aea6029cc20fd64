package notify

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/mbolis/tailor-intake/analysis"
	"github.com/mbolis/tailor-intake/log"
	"github.com/mbolis/tailor-intake/model"
	"github.com/pkg/errors"
)

const (
	DefaultFrom = "AI Tailor <onboarding@resend.dev>"
	unanswered  = "미입력"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("notify").
	Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
	ParseFS(templateFS, "templates/*.html"))

var seoul = mustLoadLocation("Asia/Seoul")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

type Notifier struct {
	mailer Mailer
	from   string
	admin  string
	now    func() time.Time
}

// NewNotifier returns a notifier sending from `from` (DefaultFrom when
// empty). A nil mailer disables every notification; an empty admin address
// disables NotifyAdmin only.
func NewNotifier(mailer Mailer, from, admin string) *Notifier {
	if from == "" {
		from = DefaultFrom
	}
	return &Notifier{
		mailer: mailer,
		from:   from,
		admin:  admin,
		now:    time.Now,
	}
}

type adminMail struct {
	Submission model.Submission
	Phone      string
	Variant    string
	Fields     []model.Field
	Submitted  string
}

// NotifyAdmin alerts the operator about a new submission.
func (n *Notifier) NotifyAdmin(ctx context.Context, sub model.Submission) error {
	if n.mailer == nil || n.admin == "" {
		log.Debug("notify.admin: disabled")
		return nil
	}

	data := adminMail{
		Submission: sub,
		Phone:      unanswered,
		Variant:    sub.UserType.Label(),
		Submitted:  formatTime(n.now()),
	}
	if sub.Phone != nil {
		data.Phone = *sub.Phone
	}
	if sub.TypeAnswers != nil {
		data.Fields = answered(sub.TypeAnswers.Fields())
	}

	html, err := render("admin.html", data)
	if err != nil {
		return err
	}
	return n.mailer.Send(ctx, Message{
		From:    n.from,
		To:      []string{n.admin},
		Subject: "[AI Tailor] 새 상담 신청 - " + sub.Name + "님",
		HTML:    html,
	})
}

type analysisMail struct {
	Name       string
	Result     analysis.Result
	AdminEmail string
}

// SendAnalysis mails the analysis result to the prospect.
func (n *Notifier) SendAnalysis(ctx context.Context, answers model.AnswerSet, result analysis.Result) error {
	if n.mailer == nil || answers.Email == "" {
		log.Debug("notify.analysis: disabled")
		return nil
	}

	html, err := render("analysis.html", analysisMail{
		Name:       answers.Name,
		Result:     result,
		AdminEmail: n.admin,
	})
	if err != nil {
		return err
	}
	return n.mailer.Send(ctx, Message{
		From:    n.from,
		To:      []string{answers.Email},
		Subject: answers.Name + "님을 위한 AI 자동화 분석 결과",
		HTML:    html,
	})
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", errors.Wrap(err, "notify.render."+strings.TrimSuffix(name, ".html"))
	}
	return buf.String(), nil
}

// formatTime renders t in Korean notation, Seoul time, e.g.
// "2025년 3월 1일 18:04".
func formatTime(t time.Time) string {
	return t.In(seoul).Format("2006년 1월 2일 15:04")
}

func answered(fields []model.Field) []model.Field {
	out := fields[:0:0]
	for _, f := range fields {
		if strings.TrimSpace(f.Value) != "" {
			out = append(out, f)
		}
	}
	return out
}
