// Package config reads the server settings from command-line flags, an
// optional YAML file and the environment.
//
// A setting given as a flag always wins; otherwise the environment variable
// (where one exists) overrides the file, and the file overrides the default.
// File keys are the flag names, e.g.
//
//	port: 8080
//	db-url: /var/lib/tailor/intake.sqlite
//	analysis-timeout: 20s
package config

import (
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr        string
	DBUrl       string
	TokenSecret string
	TokenTTL    time.Duration
	Debug       bool

	PublicDir  string
	PrivateDir string

	GeminiAPIKey    string
	GeminiModel     string
	AnalysisTimeout time.Duration

	ResendAPIKey  string
	EmailFrom     string
	AdminEmail    string
	NotifyTimeout time.Duration
}

// envVars maps flags to the environment variables that can set them.
var envVars = map[string]string{
	"token-secret":   "TOKEN_SECRET",
	"gemini-api-key": "GEMINI_API_KEY",
	"resend-api-key": "RESEND_API_KEY",
	"admin-email":    "ADMIN_EMAIL",
	"email-from":     "EMAIL_FROM",
}

func Parse(args []string) (cfg Config, err error) {
	flags := pflag.NewFlagSet("tailor-intake", pflag.ContinueOnError)

	var host string
	flags.StringVar(&host, "host", "0.0.0.0", "listen host name")
	var port uint
	flags.UintVar(&port, "port", 80, "listen port number")
	flags.StringVar(&cfg.DBUrl, "db-url", "intake.sqlite", "path to SQLite3 DB file")
	flags.StringVar(&cfg.TokenSecret, "token-secret", "", "secret key for token encryption and decryption")
	flags.DurationVar(&cfg.TokenTTL, "token-ttl", 2*time.Minute, "access token TTL")
	flags.BoolVar(&cfg.Debug, "debug", false, "log at DEBUG level")
	flags.StringVar(&cfg.PublicDir, "public-dir", "public", "directory of the public site")
	flags.StringVar(&cfg.PrivateDir, "private-dir", "private", "directory of the admin pages")
	flags.StringVar(&cfg.GeminiAPIKey, "gemini-api-key", "", "Gemini API key; analysis falls back to a fixed text without it")
	flags.StringVar(&cfg.GeminiModel, "gemini-model", "gemini-2.0-flash", "Gemini model name")
	flags.DurationVar(&cfg.AnalysisTimeout, "analysis-timeout", 30*time.Second, "time limit of one analysis")
	flags.StringVar(&cfg.ResendAPIKey, "resend-api-key", "", "Resend API key; emails are disabled without it")
	flags.StringVar(&cfg.EmailFrom, "email-from", "AI Tailor <onboarding@resend.dev>", "sender of outgoing emails")
	flags.StringVar(&cfg.AdminEmail, "admin-email", "", "operator address notified of new submissions")
	flags.DurationVar(&cfg.NotifyTimeout, "notify-timeout", 15*time.Second, "time limit of one email delivery")
	var file string
	flags.StringVarP(&file, "config", "c", "", "YAML file with default settings")

	if err = flags.Parse(args); err != nil {
		return
	}

	explicit := map[string]bool{}
	flags.Visit(func(f *pflag.Flag) { explicit[f.Name] = true })

	if file != "" {
		if err = applyFile(flags, file, explicit); err != nil {
			return
		}
	}
	for name, env := range envVars {
		if value := os.Getenv(env); value != "" && !explicit[name] {
			if err = flags.Set(name, value); err != nil {
				return cfg, errors.Wrapf(err, "config.env.%s", env)
			}
		}
	}

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))

	if cfg.TokenSecret == "" {
		err = errors.New("missing parameter --token-secret")
	}

	return
}

func applyFile(flags *pflag.FlagSet, path string, explicit map[string]bool) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "config.file.read")
	}

	var values map[string]any
	if err = yaml.Unmarshal(buf, &values); err != nil {
		return errors.Wrap(err, "config.file.parse")
	}

	for name, value := range values {
		if name == "config" || flags.Lookup(name) == nil {
			return errors.Errorf("config.file: unknown setting %q", name)
		}
		if explicit[name] {
			continue
		}
		if err = flags.Set(name, fmt.Sprint(value)); err != nil {
			return errors.Wrapf(err, "config.file.%s", name)
		}
	}
	return nil
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}
