package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/mbolis/tailor-intake/app"
	"github.com/mbolis/tailor-intake/httpx"
	"github.com/mbolis/tailor-intake/log"
	"github.com/mbolis/tailor-intake/model"
	"github.com/mbolis/tailor-intake/validation"
	"github.com/mbolis/tailor-intake/wizard"
)

const (
	actionAdvance = "advance"
	actionRetreat = "retreat"
	actionSelect  = "select"
	actionToggle  = "toggle"
	actionSubmit  = "submit"
)

type wizardRequest struct {
	Step    model.Step      `json:"step"`
	Action  string          `json:"action"`
	Answers model.AnswerSet `json:"answers"`
	Field   string          `json:"field,omitempty"`
	Value   string          `json:"value,omitempty"`
}

type progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

type wizardState struct {
	Step      model.Step             `json:"step"`
	View      wizard.View            `json:"view"`
	Progress  progress               `json:"progress"`
	Required  []string               `json:"required"`
	Answers   model.AnswerSet        `json:"answers"`
	Errors    validation.FieldErrors `json:"errors,omitempty"`
	Submitted bool                   `json:"submitted"`
}

func newWizardState(app app.App, s *wizard.Session) wizardState {
	current, total := s.Progress()
	required := app.Gate.RequiredFields(s.Step(), s.Answers().UserType)
	if required == nil {
		required = []string{}
	}
	return wizardState{
		Step:      s.Step(),
		View:      s.View(),
		Progress:  progress{current, total},
		Required:  required,
		Answers:   s.Answers(),
		Errors:    s.Errors(),
		Submitted: s.Submitted(),
	}
}

// DriveWizard applies one wizard action to the session described by the
// request and returns the resulting state. A step that fails validation is
// not an error: the state comes back unchanged with its field errors.
func DriveWizard(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req wizardRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		s, err := wizard.Resume(app.Gate, req.Step, req.Answers)
		if err != nil {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "wizard.resume", "%s", err)
			return
		}

		switch req.Action {
		case actionAdvance:
			err = s.Advance()
		case actionRetreat:
			s.Retreat()
		case actionSelect:
			v := model.Variant(req.Value)
			if !v.Valid() {
				httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "wizard.select", "unknown user type %q", req.Value)
				return
			}
			s.SelectVariant(v)
		case actionToggle:
			err = s.Toggle(req.Field, req.Value)
		case actionSubmit:
			err = s.Submit(r.Context(), app.Intake)
		default:
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "wizard.action", "unknown action %q", req.Action)
			return
		}

		var fields validation.FieldErrors
		switch {
		case err == nil, errors.As(err, &fields):
		case errors.Is(err, wizard.ErrNotTagField):
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "wizard.toggle", "%s", err)
			return
		case errors.Is(err, wizard.ErrNotLastStep):
			httpx.LogStatusMsg(w, r, http.StatusConflict, log.DebugLevel, "wizard.submit", "%s", err)
			return
		case errors.Is(err, wizard.ErrSubmitFailed):
			log.Errorf("wizard.submit: %s", err)
			httpx.LogStatusMsg(w, r, http.StatusInternalServerError, log.DebugLevel, "wizard.submit", "%s", wizard.ErrSubmitFailed)
			return
		default:
			httpx.LogInternalError(w, r, "wizard."+req.Action, err)
			return
		}

		render.JSON(w, r, newWizardState(app, s))
	}
}

type stepSchema struct {
	Step     model.Step  `json:"step"`
	Title    string      `json:"title"`
	View     wizard.View `json:"view"`
	Required []string    `json:"required"`
}

type intakeSchema struct {
	Steps         []stepSchema                                `json:"steps"`
	UserTypes     []model.Option                              `json:"userTypes"`
	ToneStyles    []model.Option                              `json:"toneStyles"`
	AIUsage       []model.Option                              `json:"aiUsageLevels"`
	VariantSelect map[model.Variant]map[string][]model.Option `json:"variantOptions"`
}

// IntakeSchema describes the wizard for the user type in the query (none
// when absent): steps with their views and required fields, and every
// option set.
func IntakeSchema(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := model.Variant(r.URL.Query().Get("userType"))
		if v != "" && !v.Valid() {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "schema.user_type", "unknown user type %q", v)
			return
		}

		schema := intakeSchema{
			ToneStyles:    model.ToneStyleOptions,
			AIUsage:       model.AIUsageLevelOptions,
			VariantSelect: map[model.Variant]map[string][]model.Option{},
		}
		for _, step := range model.Steps {
			required := app.Gate.RequiredFields(step, v)
			if required == nil {
				required = []string{}
			}
			schema.Steps = append(schema.Steps, stepSchema{
				Step:     step,
				Title:    step.Title(),
				View:     wizard.ViewFor(step, v),
				Required: required,
			})
		}
		for _, variant := range model.Variants {
			schema.UserTypes = append(schema.UserTypes, model.Option{Value: string(variant), Label: variant.Label()})
			if options := model.Options(variant); options != nil {
				schema.VariantSelect[variant] = options
			}
		}

		render.JSON(w, r, schema)
	}
}
