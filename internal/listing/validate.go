package listing

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// ErrInvalidListing is the sentinel behind every CompositionError.
var ErrInvalidListing = errors.New("listing: invalid composition")

// Violation is one field-level reason a listing was rejected.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// CompositionError carries every violation found in one submission.
type CompositionError struct {
	Violations []Violation
}

func (e *CompositionError) Error() string {
	return "listing: " + strings.Join(e.Messages(), "; ")
}

// Unwrap exposes ErrInvalidListing.
func (e *CompositionError) Unwrap() error { return ErrInvalidListing }

// Messages returns the human-readable violation strings.
func (e *CompositionError) Messages() []string {
	out := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		out[i] = v.Message
	}
	return out
}

// Validator checks admin submissions before anything is stored.
type Validator struct {
	v *validator.Validate
}

// NewValidator builds a validator with the listing tags registered.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("price", validPrice)
	return &Validator{v: v}
}

// validPrice accepts finite, non-negative amounts.
func validPrice(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Float32, reflect.Float64:
		p := f.Float()
		return !math.IsNaN(p) && !math.IsInf(p, 0) && p >= 0
	case reflect.Int, reflect.Int32, reflect.Int64:
		return f.Int() >= 0
	default:
		return false
	}
}

// ValidateListing checks one listing and collects every violation.
func (v *Validator) ValidateListing(in ListingInput) error {
	in.normalise()
	return v.check(in)
}

// ValidateEvent checks the event fields and all of its listings at once.
// Listing violations are reported with a listings[i] prefix.
func (v *Validator) ValidateEvent(in EventInput) error {
	in.Listings = slices.Clone(in.Listings)
	for i := range in.Listings {
		in.Listings[i].normalise()
	}
	return v.check(in)
}

func (v *Validator) check(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &CompositionError{Violations: make([]Violation, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		field := fieldPath(fe.Namespace())
		out.Violations = append(out.Violations, Violation{Field: field, Message: describe(fe, field)})
	}
	return out
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError, field string) string {
	isList := fe.Kind() == reflect.Slice
	switch fe.Tag() {
	case "required", "notblank":
		return field + " is required"
	case "price":
		return field + " must be a valid non-negative number"
	case "url":
		return field + " must be a valid URL"
	case "min":
		if isList && strings.HasSuffix(field, "items") {
			return fmt.Sprintf("%s must contain between 1 and 4 seats", field)
		}
		if isList {
			return fmt.Sprintf("%s must contain at least %s entries", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if isList && strings.HasSuffix(field, "items") {
			return fmt.Sprintf("%s must contain between 1 and 4 seats", field)
		}
		if isList {
			return fmt.Sprintf("%s must contain at most %s entries", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
