package service

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"

	appErrors "github.com/noah-isme/bible-studies-api/pkg/errors"
)

// fieldValidator runs struct validation and reports failures per JSON field in English.
type fieldValidator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func newFieldValidator(validate *validator.Validate) fieldValidator {
	if validate == nil {
		validate = validator.New()
	}
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	trans, _ := ut.New(en.New()).GetTranslator("en")
	_ = entranslations.RegisterDefaultTranslations(validate, trans)
	return fieldValidator{validate: validate, trans: trans}
}

// Struct returns nil or a VALIDATION_ERROR naming every failing field. Details maps field to message.
func (v fieldValidator) Struct(req interface{}) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	fields := make(map[string]string, len(fieldErrs))
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg := fe.Translate(v.trans)
		fields[fe.Field()] = msg
		messages = append(messages, msg)
	}
	sort.Strings(messages)

	wrapped := appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, strings.Join(messages, "; "))
	return appErrors.WithDetails(wrapped, fields)
}
