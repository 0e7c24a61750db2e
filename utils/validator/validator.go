package validatorx

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	gpvalidator "github.com/go-playground/validator/v10"
)

var (
	v    *gpvalidator.Validate
	once sync.Once
)

var (
	alphaSpacePattern = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	emailPattern      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	mobilePattern     = regexp.MustCompile(`^[6-9]\d{9}$`)
)

// patternTags maps custom tag names to the pattern a string field must match.
var patternTags = map[string]*regexp.Regexp{
	"alphaspace": alphaSpacePattern,
	"emailaddr":  emailPattern,
	"mobile_in":  mobilePattern,
}

// Init initializes the validator singleton (idempotent)
func Init() {
	once.Do(build)
}

func build() {
	nv := gpvalidator.New()
	nv.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	for tag, re := range patternTags {
		re := re
		if err := nv.RegisterValidation(tag, func(fl gpvalidator.FieldLevel) bool {
			return re.MatchString(fl.Field().String())
		}); err != nil {
			panic(fmt.Sprintf("register validation %q: %v", tag, err))
		}
	}
	v = nv
}

// ValidateStruct validates a struct using go-playground/validator
func ValidateStruct(s interface{}) error {
	Init()
	return v.Struct(s)
}

// FieldErrors flattens a validation error into field -> message, using the
// first failing rule of each field. messages is keyed by "field.tag"; a
// missing entry falls back to a generic message. Returns nil when err carries
// no field errors.
func FieldErrors(err error, messages map[string]string) map[string]string {
	var verrs gpvalidator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		if msg, ok := messages[field+"."+fe.Tag()]; ok {
			out[field] = msg
			continue
		}
		out[field] = fmt.Sprintf("%s is invalid", field)
	}
	return out
}
