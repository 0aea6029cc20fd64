package routes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/mbolis/tailor-intake/app"
	"github.com/mbolis/tailor-intake/auth"
	"github.com/mbolis/tailor-intake/httpx"
	"github.com/mbolis/tailor-intake/lifecycle"
	"github.com/mbolis/tailor-intake/log"
	"github.com/mbolis/tailor-intake/model"
	"github.com/mbolis/tailor-intake/store"
)

// submissionDetail adds the labels the admin pages show next to the raw
// values.
type submissionDetail struct {
	model.Submission
	UserTypeLabel string        `json:"user_type_label"`
	StatusLabel   string        `json:"status_label"`
	Fields        []model.Field `json:"fields"`
}

func newSubmissionDetail(sub model.Submission) submissionDetail {
	detail := submissionDetail{
		Submission:    sub,
		UserTypeLabel: sub.UserType.Label(),
		StatusLabel:   sub.Status.Label(),
		Fields:        []model.Field{},
	}
	if sub.TypeAnswers != nil {
		if fields := sub.TypeAnswers.Fields(); fields != nil {
			detail.Fields = fields
		}
	}
	return detail
}

// lifecycleError answers a failed lifecycle call with the status its error
// class maps to.
func lifecycleError(w http.ResponseWriter, r *http.Request, code string, id string, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrUnauthenticated):
		httpx.LogStatus(w, r, http.StatusUnauthorized, log.DebugLevel, code+".unauthenticated")
	case errors.Is(err, lifecycle.ErrInvalidStatus):
		httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, code, "Invalid status")
	case errors.Is(err, store.ErrNotFound):
		httpx.LogNotFound(w, r, code, id)
	default:
		httpx.LogInternalError(w, r, "db."+code, err)
	}
}

func ListSubmissions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		filter, err := lifecycle.ParseFilter(query.Get("status"))
		if err != nil {
			lifecycleError(w, r, "list_submissions", "", err)
			return
		}

		page, err := strconv.Atoi(query.Get("page"))
		if err != nil {
			page = 1
		}

		result, err := app.Lifecycle.List(r.Context(), auth.FromContext(r.Context()), filter, page)
		if err != nil {
			lifecycleError(w, r, "list_submissions", "", err)
			return
		}

		render.JSON(w, r, result)
	}
}

func GetSubmission(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		sub, err := app.Lifecycle.Get(r.Context(), auth.FromContext(r.Context()), id)
		if err != nil {
			lifecycleError(w, r, "get_submission", id, err)
			return
		}

		render.JSON(w, r, newSubmissionDetail(sub))
	}
}

type statusUpdate struct {
	Status model.Status `json:"status"`
}

func UpdateSubmissionStatus(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var body statusUpdate
		if err := render.DecodeJSON(r.Body, &body); err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		sub, err := app.Lifecycle.SetStatus(r.Context(), auth.FromContext(r.Context()), id, body.Status)
		if err != nil {
			lifecycleError(w, r, "update_submission_status", id, err)
			return
		}

		log.Infof("submission %s: status set to %s", id, sub.Status)
		render.JSON(w, r, newSubmissionDetail(sub))
	}
}

func DeleteSubmission(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if err := app.Lifecycle.Remove(r.Context(), auth.FromContext(r.Context()), id); err != nil {
			lifecycleError(w, r, "delete_submission", id, err)
			return
		}

		log.Infof("submission %s: deleted", id)
		render.JSON(w, r, map[string]any{
			"success": true,
		})
	}
}
