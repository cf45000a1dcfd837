package review

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ReviewRequest is the body of POST /api/review.
type ReviewRequest struct {
	Resume         string `json:"resume" validate:"required,min=10"`
	JobDescription string `json:"jobDescription"`
}

// ReviewResult is the normalized review returned to the client.
type ReviewResult struct {
	Grammar      string        `json:"grammar"`
	Keywords     Keywords      `json:"keywords"`
	BulletPoints []BulletPoint `json:"bulletPoints"`
	JobFit       string        `json:"jobFit"`
	Tone         string        `json:"tone"`
}

// Keywords holds the ATS keyword match. Score is always within [0, 100].
type Keywords struct {
	Missing []string `json:"missing"`
	Score   int      `json:"score"`
}

// BulletPoint is a single rewrite suggestion.
type BulletPoint struct {
	Original string `json:"original" mapstructure:"original"`
	Improved string `json:"improved" mapstructure:"improved"`
}

// ErrInvalidRequest marks request validation failures.
var ErrInvalidRequest = errors.New("invalid review request")

// ValidationError lists the offending fields by their JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid review request: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRequest
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var fieldMessages = map[string]string{
	"resume": "Resume text required",
}

// Validate checks the request shape.
func (r ReviewRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		msg, ok := fieldMessages[name]
		if !ok {
			msg = fmt.Sprintf("failed %s", fe.Tag())
		}
		fields[name] = msg
	}
	return &ValidationError{Fields: fields}
}
