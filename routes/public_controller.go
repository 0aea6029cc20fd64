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
)

func SubmitIntake(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		answers := model.AnswerSet{}
		err := render.DecodeJSON(r.Body, &answers)
		if err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		sub, err := app.Intake.Create(r.Context(), answers)
		var fields validation.FieldErrors
		if errors.As(err, &fields) {
			httpx.LogInvalidFields(w, r, "intake.validate", fields)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, r, "db.insert_submission", err)
			return
		}

		log.Infof("submission %s: new %s intake", sub.ID, sub.UserType)
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"success": true,
			"id":      sub.ID,
		})
	}
}

// AnalyzeSubmission always succeeds once the body parses: generation
// problems are answered with the fallback analysis.
func AnalyzeSubmission(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		answers := model.AnswerSet{}
		err := render.DecodeJSON(r.Body, &answers)
		if err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		result := app.Intake.Analyze(r.Context(), answers)

		render.JSON(w, r, map[string]any{
			"success":  true,
			"name":     answers.Name,
			"analysis": result,
		})
	}
}
