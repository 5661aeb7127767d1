package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/deppfellow/todo-api/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validatable is implemented by request payload types that know how to validate themselves.
//
// Typical pattern:
// - Define a request struct with validator tags (`validate:"required,min=1"`)
// - Implement Validate() error that runs validator.Struct(req)
// - Return validator.ValidationErrors (or CustomValidationErrors for custom cases)
type Validatable interface {
	Validate() error
}

// Strict is implemented by payloads whose JSON body must not contain any key
// other than the ones declared through `json` tags. Key matching is exact
// (encoding/json alone would accept "Title" for "title").
type Strict interface {
	Validatable
	Strict()
}

// CustomValidationError represents a single validation issue for a specific field.
// This is used for validation errors that cannot be expressed via validator tags.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors is a slice of custom validation errors that satisfies error.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

// BindAndValidate binds request data into payload and validates it.
//
// Flow:
//  1. For Strict payloads, unknown body keys and keys holding a value of the
//     wrong JSON type are collected as field errors.
//  2. c.Bind(payload) populates the struct from path params and body.
//  3. payload.Validate() applies validation rules.
//
// All violations found are returned together as one 400 *errs.HTTPError.
// A field with a type error is not reported again as missing.
// payload must be a pointer so c.Bind can populate it.
func BindAndValidate(c echo.Context, payload Validatable) error {
	var fieldErrors []errs.FieldError
	mistyped := map[string]struct{}{}

	if strict, ok := payload.(Strict); ok {
		unknown, typeErrors, err := inspectBody(c, strict)
		if err != nil {
			return errs.NewBadRequestError("Invalid request body", false, nil, nil, nil)
		}
		fieldErrors = append(fieldErrors, unknown...)
		for _, fe := range typeErrors {
			mistyped[fe.Field] = struct{}{}
			fieldErrors = append(fieldErrors, fe)
		}
	}

	// encoding/json keeps decoding past a type error, so the remaining
	// fields are still bound and worth validating.
	if err := c.Bind(payload); err != nil {
		message, bindErrors := extractBindError(err)
		if bindErrors == nil {
			return errs.NewBadRequestError(message, false, nil, nil, nil)
		}
		for _, fe := range bindErrors {
			if _, seen := mistyped[fe.Field]; seen {
				continue
			}
			mistyped[fe.Field] = struct{}{}
			fieldErrors = append(fieldErrors, fe)
		}
	}

	if _, validationErrors := validateStruct(payload); validationErrors != nil {
		for _, fe := range validationErrors {
			if _, seen := mistyped[fe.Field]; seen {
				continue
			}
			fieldErrors = append(fieldErrors, fe)
		}
	}

	if len(fieldErrors) > 0 {
		return errs.NewValidationFailedError(fieldErrors)
	}

	return nil
}

// inspectBody reads the request body (restoring it for Bind afterwards) and
// reports every top-level key the payload does not declare, then every
// declared key whose value cannot be decoded into the field's type.
//
// Bodies that are empty or not a JSON object are left to Bind to report.
func inspectBody(c echo.Context, payload any) (unknown, mistyped []errs.FieldError, err error) {
	req := c.Request()
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil, nil
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, nil, err
	}
	req.Body = io.NopCloser(bytes.NewReader(body))

	var raw map[string]json.RawMessage
	if len(bytes.TrimSpace(body)) == 0 || json.Unmarshal(body, &raw) != nil {
		return nil, nil, nil
	}

	allowed := jsonFieldNames(payload)

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	// Map iteration order is random; keep responses stable.
	sort.Strings(keys)

	for _, key := range keys {
		fieldType, ok := allowed[key]
		if !ok {
			unknown = append(unknown, errs.FieldError{
				Field: key,
				Error: "is not allowed",
			})
			continue
		}

		var typeErr *json.UnmarshalTypeError
		if err := json.Unmarshal(raw[key], reflect.New(fieldType).Interface()); errors.As(err, &typeErr) {
			mistyped = append(mistyped, errs.FieldError{
				Field: key,
				Error: fmt.Sprintf("must be a %s", jsonTypeName(fieldType)),
			})
		}
	}
	return unknown, mistyped, nil
}

// jsonFieldNames returns the JSON keys a struct (or pointer to struct)
// accepts, each mapped to the type of the field it decodes into.
func jsonFieldNames(v any) map[string]reflect.Type {
	names := map[string]reflect.Type{}

	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return names
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := strings.Split(field.Tag.Get("json"), ",")[0]
		switch name {
		case "-":
			continue
		case "":
			name = field.Name
		}
		names[name] = field.Type
	}
	return names
}

// extractBindError turns an Echo bind error into a message and, when the
// failure can be pinned to a field (wrong JSON type), a field error.
//
// Decoder messages name Go types and offsets, so they never reach the client.
func extractBindError(err error) (string, []errs.FieldError) {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field == "" {
			return "Invalid request body", nil
		}
		return "Validation failed", []errs.FieldError{{
			Field: typeErr.Field,
			Error: fmt.Sprintf("must be a %s", jsonTypeName(typeErr.Type)),
		}}
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) && echoErr.Code != http.StatusBadRequest {
		// e.g. 415 for a body that is not JSON.
		return http.StatusText(echoErr.Code), nil
	}

	return "Invalid request body", nil
}

// jsonTypeName names a Go type the way a JSON client would think of it.
func jsonTypeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return "object"
	}
}

// validateStruct calls v.Validate() and extracts field errors if validation fails.
func validateStruct(v Validatable) (string, []errs.FieldError) {
	if err := v.Validate(); err != nil {
		return extractValidationError(err)
	}
	return "", nil
}

func extractValidationError(err error) (string, []errs.FieldError) {
	var fieldErrors []errs.FieldError

	var customValidationErrors CustomValidationErrors
	if errors.As(err, &customValidationErrors) {
		for _, err := range customValidationErrors {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: err.Field,
				Error: err.Message,
			})
		}
		return "Validation failed", fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		// Anything else (e.g. validator.InvalidValidationError) is a
		// programming error in the payload type, not a client mistake.
		return "Validation failed", []errs.FieldError{{Field: "request", Error: err.Error()}}
	}

	for _, err := range validationErrors {
		field := strings.ToLower(err.Field())
		var msg string

		switch err.Tag() {
		case "required":
			msg = "is required"

		case "min":
			// strings: minimum length, numbers: minimum value
			if err.Kind() == reflect.String {
				if err.Param() == "1" {
					msg = "cannot be empty"
				} else {
					msg = fmt.Sprintf("must be at least %s characters", err.Param())
				}
			} else {
				msg = fmt.Sprintf("must be at least %s", err.Param())
			}

		case "max":
			if err.Kind() == reflect.String {
				msg = fmt.Sprintf("must not exceed %s characters", err.Param())
			} else {
				msg = fmt.Sprintf("must not exceed %s", err.Param())
			}

		case "oneof":
			msg = fmt.Sprintf("must be one of: %s", err.Param())

		case "uuid":
			msg = "must be a valid UUID"

		case "dive":
			msg = "some items are invalid"

		default:
			if err.Param() != "" {
				msg = fmt.Sprintf("%s: %s:%s", field, err.Tag(), err.Param())
			} else {
				msg = fmt.Sprintf("%s: %s", field, err.Tag())
			}
		}

		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: field,
			Error: msg,
		})
	}

	return "Validation failed", fieldErrors
}
