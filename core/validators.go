package core

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// custom validation tags & texts
	notBlankTag  = "notblank"
	notBlankText = "this field must not be blank"

	hhmmTag  = "hhmm"
	hhmmText = "invalid time format, expected HH:MM"
	// HHMMRegex matches a 24h wall clock time, e.g. 07:10.
	HHMMRegex = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

	isoDateTag  = "isodate"
	isoDateText = "invalid date format, expected YYYY-MM-DD"

	studentNumTag   = "studentnum"
	studentNumText  = "only letters, digits, dashes and underscores are allowed"
	studentNumRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

	gradeTag   = "grade"
	gradeText  = "invalid grade, expected a number"
	gradeRegex = regexp.MustCompile(`^\d{1,2}$`)

	sectionTag   = "section"
	sectionText  = "only letters, digits, spaces, dashes and underscores are allowed"
	sectionRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 _-]{0,31}$`)

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	RegisterCustomTranslation(validate, translator, notBlankTag, notBlankText)

	_ = validate.RegisterValidation(hhmmTag, regexValidation(HHMMRegex))
	RegisterCustomTranslation(validate, translator, hhmmTag, hhmmText)

	_ = validate.RegisterValidation(isoDateTag, isoDateValidation)
	RegisterCustomTranslation(validate, translator, isoDateTag, isoDateText)

	_ = validate.RegisterValidation(studentNumTag, regexValidation(studentNumRegex))
	RegisterCustomTranslation(validate, translator, studentNumTag, studentNumText)

	_ = validate.RegisterValidation(gradeTag, regexValidation(gradeRegex))
	RegisterCustomTranslation(validate, translator, gradeTag, gradeText)

	_ = validate.RegisterValidation(sectionTag, regexValidation(sectionRegex))
	RegisterCustomTranslation(validate, translator, sectionTag, sectionText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

func notBlankValidation(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func isoDateValidation(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

func regexValidation(rx *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return rx.MatchString(fl.Field().String())
	}
}
