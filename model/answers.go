package model

import (
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// AnswerSet is everything a prospect answers in the intake wizard.
//
// On the wire it is one flat object: variant fields are sent under
// "<variant>_<field>" keys next to the common fields. Decoding regroups the
// keys of the selected variant into Type and drops every other variant's keys.
type AnswerSet struct {
	Name            string         `json:"name" validate:"required"`
	Email           string         `json:"email" validate:"required,email"`
	Phone           string         `json:"phone,omitempty"`
	UserType        Variant        `json:"userType" validate:"required,oneof=freelancer startup marketer professional other"`
	Type            VariantAnswers `json:"-" validate:"-"`
	ToneStyle       ToneStyle      `json:"toneStyle" validate:"required,oneof=formal friendly concise flexible"`
	Restrictions    string         `json:"restrictions,omitempty"`
	DesiredOutcome  string         `json:"desiredOutcome" validate:"required"`
	AIUsageLevel    AIUsageLevel   `json:"aiUsageLevel" validate:"required,oneof=paid free rarely never"`
	AdditionalNotes string         `json:"additionalNotes,omitempty"`
}

type commonAnswers AnswerSet

func (a *AnswerSet) UnmarshalJSON(data []byte) error {
	var common commonAnswers
	if err := json.Unmarshal(data, &common); err != nil {
		return err
	}
	*a = AnswerSet(common)
	a.Type = nil

	answers := NewAnswers(a.UserType)
	if answers == nil {
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	prefix := string(a.UserType) + "_"
	grouped := make(map[string]json.RawMessage)
	for key, value := range raw {
		if field, ok := strings.CutPrefix(key, prefix); ok {
			grouped[field] = value
		}
	}
	if len(grouped) > 0 {
		buf, err := json.Marshal(grouped)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(buf, answers); err != nil {
			return err
		}
	}
	a.Type = answers
	return nil
}

func (a AnswerSet) MarshalJSON() ([]byte, error) {
	buf, err := json.Marshal(commonAnswers(a))
	if err != nil {
		return nil, err
	}
	if a.Type == nil {
		return buf, nil
	}

	var flat map[string]json.RawMessage
	if err := json.Unmarshal(buf, &flat); err != nil {
		return nil, err
	}
	typeBuf, err := json.Marshal(a.Type)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(typeBuf, &fields); err != nil {
		return nil, err
	}
	for key, value := range fields {
		flat[WireKey(a.Type.Variant(), key)] = value
	}
	return json.Marshal(flat)
}

// VariantAnswers returns the answers of the selected variant, creating empty
// ones if Type is missing or belongs to a different variant.
func (a *AnswerSet) VariantAnswers() VariantAnswers {
	if a.Type != nil && a.Type.Variant() == a.UserType {
		return a.Type
	}
	return NewAnswers(a.UserType)
}

// Submission is a persisted intake. Only Status changes after creation.
type Submission struct {
	ID              string         `json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	Name            string         `json:"name"`
	Email           string         `json:"email"`
	Phone           *string        `json:"phone"`
	UserType        Variant        `json:"user_type"`
	TypeAnswers     VariantAnswers `json:"type_answers"`
	ToneStyle       ToneStyle      `json:"tone_style"`
	Restrictions    *string        `json:"restrictions"`
	DesiredOutcome  string         `json:"desired_outcome"`
	AIUsageLevel    AIUsageLevel   `json:"ai_usage_level"`
	AdditionalNotes *string        `json:"additional_notes"`
	Status          Status         `json:"status"`
}

// NewSubmission builds a new-status submission out of a completed answer
// set. Blank optional fields become NULL.
func NewSubmission(a AnswerSet) Submission {
	return Submission{
		Name:            a.Name,
		Email:           a.Email,
		Phone:           nullable(a.Phone),
		UserType:        a.UserType,
		TypeAnswers:     a.VariantAnswers(),
		ToneStyle:       a.ToneStyle,
		Restrictions:    nullable(a.Restrictions),
		DesiredOutcome:  a.DesiredOutcome,
		AIUsageLevel:    a.AIUsageLevel,
		AdditionalNotes: nullable(a.AdditionalNotes),
		Status:          StatusNew,
	}
}

func nullable(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
