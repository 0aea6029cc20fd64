package app

import (
	"context"
	"database/sql"

	"github.com/go-chi/oauth"
	"github.com/mbolis/tailor-intake/analysis"
	"github.com/mbolis/tailor-intake/analysis/gemini"
	"github.com/mbolis/tailor-intake/config"
	"github.com/mbolis/tailor-intake/httpx"
	"github.com/mbolis/tailor-intake/intake"
	"github.com/mbolis/tailor-intake/lifecycle"
	"github.com/mbolis/tailor-intake/log"
	"github.com/mbolis/tailor-intake/notify"
	"github.com/mbolis/tailor-intake/store"
	"github.com/mbolis/tailor-intake/validation"
	"github.com/pkg/errors"
)

type App struct {
	*oauth.BearerServer
	config.Config

	DB          *sql.DB
	Gate        *validation.Gate
	Submissions *store.Submissions
	Admins      *store.Admins
	Lifecycle   *lifecycle.Service
	Intake      *intake.Service
	Dispatcher  *notify.Dispatcher
}

// New wires the services over db. Analysis and email are optional: without
// their API keys the analysis falls back and emails are skipped.
func New(ctx context.Context, cfg config.Config, db *sql.DB) (App, error) {
	var gen analysis.Generator
	if cfg.GeminiAPIKey != "" {
		generator, err := gemini.NewGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return App{}, errors.Wrap(err, "app.analysis")
		}
		gen = generator
	} else {
		log.Warn("app.analysis: no Gemini API key, analysis will use the fallback text")
	}

	var mailer notify.Mailer
	if cfg.ResendAPIKey != "" {
		mailer = notify.NewResendMailer(cfg.ResendAPIKey)
	} else {
		log.Warn("app.notify: no Resend API key, emails are disabled")
	}

	return Wire(cfg, db, gen, mailer), nil
}

// Wire builds the App around explicit collaborators.
func Wire(cfg config.Config, db *sql.DB, gen analysis.Generator, mailer notify.Mailer) App {
	gate := validation.NewGate()
	submissions := store.NewSubmissions(db)
	admins := store.NewAdmins(db)
	dispatcher := notify.NewDispatcher(cfg.NotifyTimeout)

	return App{
		BearerServer: httpx.NewBearerServer(admins, cfg),
		Config:       cfg,
		DB:           db,
		Gate:         gate,
		Submissions:  submissions,
		Admins:       admins,
		Lifecycle:    lifecycle.New(submissions),
		Intake: intake.NewService(
			gate,
			submissions,
			analysis.NewAnalyzer(gen, cfg.AnalysisTimeout),
			notify.NewNotifier(mailer, cfg.EmailFrom, cfg.AdminEmail),
			dispatcher,
		),
		Dispatcher: dispatcher,
	}
}
