package util

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateDTO 校验结构体，返回首个失败字段的描述
func ValidateDTO(dto any) error {
	if err := validate.Struct(dto); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			firstError := vErrs[0]
			return &FieldError{Field: firstError.Field(), Tag: firstError.Tag()}
		}
		return err
	}
	return nil
}

// ValidateEmail 单独校验邮箱格式
func ValidateEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

// FieldError 字段校验失败
type FieldError struct {
	Field string
	Tag   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field [%s] failed rule [%s]", e.Field, e.Tag)
}
