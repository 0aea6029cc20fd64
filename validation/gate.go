// Package validation gates each wizard step on the fields that step owns.
//
// Rules live in the `validate` struct tags of model.AnswerSet and of the
// variant answer types; the required-field lists served to clients are read
// from the same tags.
package validation

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mbolis/tailor-intake/model"
)

// FieldErrors maps a wire field name to a human readable message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + fe[k]
	}
	return "invalid fields: " + strings.Join(parts, "; ")
}

// commonFields are the AnswerSet struct fields checked on each step that is
// not variant specific.
var commonFields = map[model.Step][]string{
	model.StepBasic:    {"Name", "Email"},
	model.StepUserType: {"UserType"},
	model.StepCommon:   {"ToneStyle", "DesiredOutcome", "AIUsageLevel"},
}

type Gate struct {
	validate *validator.Validate
}

func NewGate() *Gate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonName)
	return &Gate{validate: v}
}

// RequiredFields returns the wire names that must be filled in before the
// wizard may leave step. On typeSpecific the list depends on variant; unknown
// variants and "other" require nothing.
func (g *Gate) RequiredFields(step model.Step, variant model.Variant) []string {
	if step == model.StepTypeSpecific {
		answers := model.NewAnswers(variant)
		if answers == nil {
			return nil
		}
		var fields []string
		for _, name := range requiredTagged(reflect.TypeOf(answers).Elem()) {
			fields = append(fields, model.WireKey(variant, name))
		}
		return fields
	}

	t := reflect.TypeOf(model.AnswerSet{})
	var fields []string
	for _, name := range commonFields[step] {
		f, _ := t.FieldByName(name)
		fields = append(fields, jsonName(f))
	}
	return fields
}

// Check validates only the fields owned by step. It returns nil or
// FieldErrors.
func (g *Gate) Check(step model.Step, answers *model.AnswerSet) error {
	var err error
	switch step {
	case model.StepTypeSpecific:
		variant := answers.VariantAnswers()
		if variant == nil {
			return nil
		}
		err = g.validate.Struct(variant)
		return g.fieldErrors(err, string(answers.UserType)+"_")
	case model.StepBasic, model.StepUserType, model.StepCommon:
		err = g.validate.StructPartial(answers, commonFields[step]...)
		return g.fieldErrors(err, "")
	}
	return fmt.Errorf("unknown step %q", step)
}

// CheckAll validates every step, as done before a submission is stored.
func (g *Gate) CheckAll(answers *model.AnswerSet) error {
	all := FieldErrors{}
	for _, step := range model.Steps {
		err := g.Check(step, answers)
		if err == nil {
			continue
		}
		fe, ok := err.(FieldErrors)
		if !ok {
			return err
		}
		for k, v := range fe {
			all[k] = v
		}
	}
	if len(all) == 0 {
		return nil
	}
	return all
}

func (g *Gate) fieldErrors(err error, prefix string) error {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fe := FieldErrors{}
	for _, e := range verrs {
		// multi-select errors are reported against the whole field
		field, _, _ := strings.Cut(e.Field(), "[")
		name := prefix + field
		if _, seen := fe[name]; !seen {
			fe[name] = message(e)
		}
	}
	return fe
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(e.Param(), " ", ", ")
	}
	return "invalid value"
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

func requiredTagged(t reflect.Type) []string {
	var names []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		rule, _, _ := strings.Cut(f.Tag.Get("validate"), ",")
		if rule == "required" {
			names = append(names, jsonName(f))
		}
	}
	return names
}
