package validator

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"hotelbook/pkg/logger"
	"hotelbook/pkg/model"

	"github.com/go-playground/validator/v10"
)

// maxStayNights bounds a single reservation.
const maxStayNights = 90

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

// Details renders the errors as the details map of an AppError.
func (v ValidationErrors) Details() map[string]any {
	fields := make(map[string]any, len(v))
	for _, err := range v {
		fields[err.Field] = err.Message
	}
	return map[string]any{"fields": fields}
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
	now      func() time.Time
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)

	log.Debug("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
		now:      time.Now,
	}
}

// jsonFieldName reports fields by their wire name.
func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// Stay is a validated reservation window.
type Stay struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// ValidateReserve checks the request and returns the normalised stay dates.
func (v *BookingValidator) ValidateReserve(req *model.ReserveRequest) (Stay, error) {
	if err := v.Struct(req); err != nil {
		return Stay{}, err
	}
	if math.IsInf(req.TotalPrice, 0) || math.IsNaN(req.TotalPrice) {
		return Stay{}, ValidationErrors{{Field: "totalPrice", Message: "totalPrice must be a finite number"}}
	}

	var errs ValidationErrors
	checkIn, err := model.ParseStayDate(req.CheckIn)
	if err != nil {
		errs = append(errs, ValidationError{Field: "checkIn", Message: err.Error()})
	}
	checkOut, err := model.ParseStayDate(req.CheckOut)
	if err != nil {
		errs = append(errs, ValidationError{Field: "checkOut", Message: err.Error()})
	}
	if len(errs) > 0 {
		return Stay{}, errs
	}

	if !checkOut.After(checkIn) {
		return Stay{}, ValidationErrors{{Field: "checkOut", Message: "checkOut must be after checkIn"}}
	}

	y, m, d := v.now().UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if checkIn.Before(today) {
		return Stay{}, ValidationErrors{{Field: "checkIn", Message: "checkIn cannot be in the past"}}
	}

	if checkOut.After(checkIn.AddDate(0, 0, maxStayNights)) {
		return Stay{}, ValidationErrors{{Field: "checkOut", Message: fmt.Sprintf("stay cannot exceed %d nights", maxStayNights)}}
	}

	return Stay{CheckIn: checkIn, CheckOut: checkOut}, nil
}

// Struct validates any tagged DTO and translates the failures.
func (v *BookingValidator) Struct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
