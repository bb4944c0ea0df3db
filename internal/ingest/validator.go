package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/examlens/internal/llm"
	"github.com/abhisek/examlens/internal/pattern"
	"github.com/abhisek/examlens/internal/structure"
)

// Answer is one decoded answer object handed to validators.
type Answer struct {
	// Position is the 0-based position in the stream.
	Position int
	Raw      json.RawMessage
	Fields   map[string]any

	// Options are the choices of the question this answer belongs to, when
	// known.
	Options []structure.Option
}

// Validator checks one decoded answer.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier, e.g. "schema" or "choice".
	Name() string

	// Validate returns nil if a passes.
	Validate(a Answer) *ValidationError
}

// ValidationError describes why an answer failed validation.
type ValidationError struct {
	Validator string // Name of the validator that failed
	Message   string // Human-readable description of the failure
	Retryable bool   // Whether asking again is likely to fix this
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// SchemaValidator checks answers against AnswerSchema.
type SchemaValidator struct{}

func (v *SchemaValidator) Name() string { return "schema" }

func (v *SchemaValidator) Validate(a Answer) *ValidationError {
	var err error
	if a.Fields != nil {
		err = llm.ValidateValue(AnswerSchema, a.Fields)
	} else {
		err = llm.ValidateJSON(AnswerSchema, a.Raw)
	}
	if err != nil {
		// Schema errors span several lines; events carry one.
		msg := strings.Join(strings.Fields(err.Error()), " ")
		return &ValidationError{Validator: v.Name(), Message: msg, Retryable: true}
	}
	return nil
}

// ChoiceValidator checks that a single-letter answer names one of the
// question's options.
type ChoiceValidator struct{}

func (v *ChoiceValidator) Name() string { return "choice" }

func (v *ChoiceValidator) Validate(a Answer) *ValidationError {
	if len(a.Options) == 0 {
		return nil
	}
	raw, _ := a.Fields["answer"].(string)
	key := pattern.NormalizeOptionKey(strings.Trim(raw, "()（）.． "))
	if len([]rune(key)) != 1 {
		return nil
	}
	for _, o := range a.Options {
		if o.Key == key {
			return nil
		}
	}
	return &ValidationError{
		Validator: v.Name(),
		Message:   fmt.Sprintf("answer %q is not one of the %d options", raw, len(a.Options)),
		Retryable: true,
	}
}

// runValidators returns the first failure, or nil.
func runValidators(vs []Validator, a Answer) *ValidationError {
	for _, v := range vs {
		if err := v.Validate(a); err != nil {
			return err
		}
	}
	return nil
}
