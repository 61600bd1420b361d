// Package model defines data structures used throughout the application.
package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validation errors for medicine requests.
var (
	ErrEmptyName   = errors.New("name cannot be empty")
	ErrNameTooLong = errors.New("name cannot exceed 255 characters")
)

// MaxNameLength is the longest medicine name accepted over the API.
const MaxNameLength = 255

var validate = newValidator()

// newValidator returns a validator that reports fields by their JSON name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Catalog is a point-in-time view of the medicine catalog.
type Catalog struct {
	Items     []string `json:"items"`
	Favorites []string `json:"favorites"`
	Order     []string `json:"order"`
	Ordered   []string `json:"ordered"`
}

// FavoriteStatus reports whether a medicine is marked favorite.
type FavoriteStatus struct {
	Name     string `json:"name"`
	Favorite bool   `json:"favorite"`
}

// MutationResult reports the outcome of a catalog change together with the
// display order after it.
type MutationResult struct {
	Name    string   `json:"name"`
	Changed bool     `json:"changed"`
	Ordered []string `json:"ordered"`
}

// AddMedicineRequest is the body of POST /api/v1/medicines.
type AddMedicineRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// Normalize trims surrounding whitespace from the name.
func (r *AddMedicineRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

// Validate checks the request fields.
func (r *AddMedicineRequest) Validate() error {
	return validateStruct(r)
}

// ReorderRequest is the body of POST /api/v1/medicines/reorder.
type ReorderRequest struct {
	Dragged string `json:"dragged" validate:"required,max=255"`
	Target  string `json:"target" validate:"required,max=255"`
}

// Normalize trims surrounding whitespace from both names.
func (r *ReorderRequest) Normalize() {
	r.Dragged = strings.TrimSpace(r.Dragged)
	r.Target = strings.TrimSpace(r.Target)
}

// Validate checks the request fields.
func (r *ReorderRequest) Validate() error {
	return validateStruct(r)
}

// ValidateName checks a single medicine name, such as one taken from a URL
// path, against the same rules as request bodies.
func ValidateName(name string) error {
	return mapValidationError("name", validate.Var(name, "required,max=255"))
}

// validateStruct runs the struct validator and maps the first failure to a
// sentinel error prefixed with the offending JSON field.
func validateStruct(v any) error {
	return mapValidationError("", validate.Struct(v))
}

// mapValidationError maps the first validator failure to a sentinel error.
// field overrides the reported field name when non-empty.
func mapValidationError(field string, err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	if field == "" {
		field = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s: %w", field, ErrEmptyName)
	case "max":
		return fmt.Errorf("%s: %w", field, ErrNameTooLong)
	default:
		return fmt.Errorf("%s: failed %s validation", field, fe.Tag())
	}
}
