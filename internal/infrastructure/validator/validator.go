package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Deokive/BE-sub001/internal/domain/entity"
)

// RegisterCustomValidators registers custom validation functions with the
// Gin validator.
func RegisterCustomValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("contentdomain", isContentDomain)
	}
}

// isContentDomain validates that the field is a known content domain.
func isContentDomain(fl validator.FieldLevel) bool {
	_, err := entity.ParseContentDomain(fl.Field().String())
	return err == nil
}
