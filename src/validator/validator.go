package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"ideas-jar/src/domain"

	"github.com/go-playground/validator/v10"
)

// CustomValidator は拡張バリデーション機能を提供
type CustomValidator struct {
	validator *validator.Validate
}

// ValidationError はバリデーションエラーの詳細情報
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// ValidationErrors は複数のバリデーションエラー
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (ve ValidationErrors) Error() string {
	messages := make([]string, 0, len(ve.Errors))
	for _, e := range ve.Errors {
		messages = append(messages, e.Message)
	}
	return strings.Join(messages, "; ")
}

// Unwrap places every ValidationErrors in the domain validation category
func (ve ValidationErrors) Unwrap() error {
	return domain.ErrValidation
}

// NewCustomValidator creates a new custom validator instance
func NewCustomValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return jsonName(field.Tag.Get("json"), field.Tag.Get("form"), field.Name)
	})

	cv := &CustomValidator{validator: v}

	// カスタムバリデーションルールを登録
	rules := map[string]validator.Func{
		"not_blank": cv.validateNotBlank,
		"priority":  cv.validatePriority,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("バリデーションルール %q の登録に失敗: %v", tag, err))
		}
	}

	return cv
}

// Validate validates a struct and returns detailed error information
func (cv *CustomValidator) Validate(s interface{}) error {
	err := cv.validator.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	var validationErrors []ValidationError
	for _, fe := range fieldErrors {
		validationErrors = append(validationErrors, ValidationError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Value:   fe.Value(),
			Message: cv.generateErrorMessage(fe),
		})
	}
	return ValidationErrors{Errors: validationErrors}
}

// カスタムバリデーション関数

func (cv *CustomValidator) validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func (cv *CustomValidator) validatePriority(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := domain.ParsePriority(value)
	return err == nil
}

// generateErrorMessage generates user-friendly error messages
func (cv *CustomValidator) generateErrorMessage(err validator.FieldError) string {
	field := err.Field()

	switch err.Tag() {
	case "required", "not_blank":
		if field == "content" {
			return "Idea content cannot be empty"
		}
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, err.Param())
	case "priority":
		return fmt.Sprintf("%s must be one of: high, medium, low", field)
	default:
		return fmt.Sprintf("%s is invalid (value: %v)", field, err.Value())
	}
}

// ParseID parses an idea ID path parameter.
// Integers outside the id column's 32-bit range cannot name an idea and report not found.
func (cv *CustomValidator) ParseID(idStr string) (int, error) {
	id, err := strconv.ParseInt(idStr, 10, 32)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: id %s", domain.ErrIdeaNotFound, idStr)
		}
		return 0, fmt.Errorf("%w: idea ID must be an integer", domain.ErrValidation)
	}
	return int(id), nil
}

func jsonName(jsonTag, formTag, fallback string) string {
	for _, tag := range []string{jsonTag, formTag} {
		name := strings.Split(tag, ",")[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fallback
}
