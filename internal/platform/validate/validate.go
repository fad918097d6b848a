// Package validate checks option structs with go-playground/validator and
// maps failures to project errors with english messages
package validate

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	perr "ecotrack/internal/platform/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Svc holds the validator and translator singleton
type Svc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	once sync.Once
	svc  *Svc

	pinRe  = regexp.MustCompile(`^\+?\d+\.\d+(\.\d+)?$`)
	repoRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]*/[A-Za-z0-9._-]+$`)
)

// Get returns the validator singleton, initializing on first use.
// Field names in messages come from the `conf` tag (the env key) when present
func Get() *Svc {
	once.Do(func() {
		enLoc := en.New()
		trans, _ := ut.New(enLoc, enLoc).GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			if tag := fld.Tag.Get("conf"); tag != "" && tag != "-" {
				return tag
			}
			return fld.Name
		})
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		register(v, trans, "pin", "{0} must be a version pin like 0.13 or +0.13", func(fl validator.FieldLevel) bool {
			return pinRe.MatchString(fl.Field().String())
		})
		register(v, trans, "ghrepo", "{0} must look like owner/name", func(fl validator.FieldLevel) bool {
			return repoRe.MatchString(fl.Field().String())
		})

		svc = &Svc{Validator: v, Translator: trans}
	})
	return svc
}

func register(v *validator.Validate, trans ut.Translator, tag, msg string, fn validator.Func) {
	_ = v.RegisterValidation(tag, fn)
	_ = v.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error { return ut.Add(tag, msg, true) },
		func(ut ut.Translator, fe validator.FieldError) string {
			s, _ := ut.T(tag, fe.Field())
			return s
		},
	)
}

// Struct validates s and returns a Validation error naming the first failing
// field, or nil
func Struct(s any) error {
	err := Get().Validator.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return perr.Wrap(err, perr.ErrorCodeValidation, "invalid options")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Translate(Get().Translator))
	}
	return perr.WithField(perr.New(perr.ErrorCodeValidation, strings.Join(msgs, "; ")), verrs[0].Field())
}

// Var validates a single value against a tag expression such as "pin"
func Var(v any, tag string) error {
	if err := Get().Validator.Var(v, tag); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeValidation, "invalid value %v", v)
	}
	return nil
}
