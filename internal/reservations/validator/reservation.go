package validator

import (
	"errors"
	"fmt"
	"strings"
	"tourbook/pkg/config"
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

type ReservationValidator struct {
	validate *validator.Validate
	cfg      *config.Config
	logger   *logger.Logger
}

func NewReservationValidator(cfg *config.Config, log *logger.Logger) *ReservationValidator {
	v := validator.New()

	log.Info("Reservation validator initialized successfully")

	return &ReservationValidator{
		validate: v,
		cfg:      cfg,
		logger:   log,
	}
}

func (v *ReservationValidator) ValidateRequest(req *model.ReservationRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}

	if errs := v.checkParticipants(req.Participants, 0); errs != nil {
		return errs
	}

	// Each room must hold everyone travelling on it; a request asking for
	// more occupants than the party size is malformed.
	for i, rr := range req.RoomRequests {
		if rr.OccupantCount > len(req.Participants) {
			return ValidationErrors{
				ValidationError{
					Field:   fmt.Sprintf("RoomRequests[%d].OccupantCount", i),
					Message: fmt.Sprintf("occupant count %d exceeds party size %d", rr.OccupantCount, len(req.Participants)),
				},
			}
		}
	}

	return nil
}

func (v *ReservationValidator) ValidateParticipants(newOnes []model.Participant, existing int) error {
	if len(newOnes) == 0 {
		return ValidationErrors{
			ValidationError{Field: "Participants", Message: "at least one participant is required"},
		}
	}

	for i := range newOnes {
		if err := v.validate.Struct(&newOnes[i]); err != nil {
			var validationErrs validator.ValidationErrors
			if errors.As(err, &validationErrs) {
				return translateValidationErrors(validationErrs)
			}
			return err
		}
	}

	return v.checkParticipants(newOnes, existing)
}

func (v *ReservationValidator) checkParticipants(participants []model.Participant, existing int) error {
	if total := existing + len(participants); total > v.cfg.MaxParticipantsPerReservation {
		return ValidationErrors{
			ValidationError{
				Field:   "Participants",
				Message: fmt.Sprintf("reservation would hold %d participants, limit is %d", total, v.cfg.MaxParticipantsPerReservation),
			},
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
