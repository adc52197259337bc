package course

import (
	"regexp"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/teachershub/backend/core"
)

var (
	courseNameTag  = "coursename"
	courseNameText = "enter valid course name"
	// printable name, starting with a word character, capped at 100 chars
	courseNameRegex = regexp.MustCompile(`^\w[\w .,:()'&/+-]{0,99}$`)

	courseDurTag  = "coursedur"
	courseDurText = "enter valid course duration"
)

// InitValidators registers course-specific validators and translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(courseNameTag, courseNameValidation)
	core.RegisterCustomTranslation(validate, translator, courseNameTag, courseNameText)

	_ = validate.RegisterValidation(courseDurTag, courseDurValidation)
	core.RegisterCustomTranslation(validate, translator, courseDurTag, courseDurText)
}

func courseNameValidation(fl validator.FieldLevel) bool {
	return courseNameRegex.MatchString(fl.Field().String())
}

// courseDurValidation requires a positive duration.
func courseDurValidation(fl validator.FieldLevel) bool {
	return fl.Field().Int() > 0
}
