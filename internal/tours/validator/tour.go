package validator

import (
	"errors"
	"fmt"
	"strings"
	"tourbook/pkg/logger"
	"tourbook/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type TourValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewTourValidator(log *logger.Logger) *TourValidator {
	v := validator.New()

	log.Info("Tour validator initialized successfully")

	return &TourValidator{
		validate: v,
		logger:   log,
	}
}

func (v *TourValidator) Validate(tour *model.Tour) error {
	if err := v.validate.Struct(tour); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}

	if tour.CurrentParticipants > tour.MaxParticipants {
		return ValidationErrors{
			ValidationError{
				Field:   "CurrentParticipants",
				Message: fmt.Sprintf("current participants (%d) exceeds capacity (%d)", tour.CurrentParticipants, tour.MaxParticipants),
			},
		}
	}

	if tour.Prices.AdultCents < 0 || tour.Prices.ChildCents < 0 || tour.Prices.SeniorCents < 0 {
		return ValidationErrors{
			ValidationError{
				Field:   "Prices",
				Message: "tier prices cannot be negative",
			},
		}
	}

	return nil
}

func (v *TourValidator) ValidateUpdate(update *model.TourUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}

	if update.Prices != nil {
		if update.Prices.AdultCents < 0 || update.Prices.ChildCents < 0 || update.Prices.SeniorCents < 0 {
			return ValidationErrors{
				ValidationError{
					Field:   "Prices",
					Message: "tier prices cannot be negative",
				},
			}
		}
	}

	return nil
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "gte":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "lte":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
