package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"faktura/internal/models"
	"faktura/internal/rbac"

	playgroundvalidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// ValidationErrors wraps the validator's ValidationErrors
type ValidationErrors []playgroundvalidator.FieldError

// CustomValidator wraps go-playground/validator
type CustomValidator struct {
	validator *playgroundvalidator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() echo.Validator {
	v := playgroundvalidator.New()

	// Register custom validation tags
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Register custom validations
	err := v.RegisterValidation("user_role", validateUserRole)
	if err != nil {
		return nil
	}
	err = v.RegisterValidation("invite_status", validateInviteStatus)
	if err != nil {
		return nil
	}
	err = v.RegisterValidation("invoice_status", validateInvoiceStatus)
	if err != nil {
		return nil
	}

	return &CustomValidator{validator: v}
}

// Custom validation functions
func validateUserRole(fl playgroundvalidator.FieldLevel) bool {
	return rbac.IsValidRole(rbac.Role(fl.Field().String()))
}

func validateInviteStatus(fl playgroundvalidator.FieldLevel) bool {
	status := fl.Field().String()
	return status == "PENDING" || status == "ACCEPTED" || status == "REJECTED"
}

func validateInvoiceStatus(fl playgroundvalidator.FieldLevel) bool {
	return models.IsValidInvoiceStatus(models.InvoiceStatus(fl.Field().String()))
}

// Validate implements echo.Validator interface
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		var validationErrors playgroundvalidator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return ValidationErrors(validationErrors)
		}
		return err
	}
	return nil
}

// Error implements the error interface for ValidationErrors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}
	var fields []string
	for _, err := range ve {
		fields = append(fields, err.Field())
	}
	return fmt.Sprintf("validation failed on fields: %s", strings.Join(fields, ", "))
}

// UserRequest Request validation structs based on models
type UserRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Role       string `json:"role" validate:"required,user_role"`
	BusinessID string `json:"businessId" validate:"required,uuid"`
}

type BusinessSettingsRequest struct {
	LogoURL        string `json:"logoUrl"`
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
}

type BusinessRequest struct {
	Name     string                   `json:"name" validate:"required"`
	Settings *BusinessSettingsRequest `json:"settings"`
}

type BusinessInviteRequest struct {
	Email      string    `json:"email" validate:"required,email"`
	Name       string    `json:"name" validate:"required"`
	Role       string    `json:"role" validate:"required,user_role"`
	BusinessID string    `json:"businessId" validate:"required,uuid"`
	ExpiresAt  time.Time `json:"expiresAt" validate:"required,gt=now"`
}

type ClientRequest struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	TaxNumber  string `json:"taxNumber"`
	BusinessID string `json:"businessId" validate:"required,uuid"`
}

type ItemRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	UnitPrice   float64 `json:"unitPrice" validate:"min=0"`
	Unit        string  `json:"unit"`
	TaxRate     float64 `json:"taxRate" validate:"min=0,max=100"`
	BusinessID  string  `json:"businessId" validate:"required,uuid"`
}

type LayoutRequest struct {
	Name       string `json:"name" validate:"required"`
	Definition string `json:"definition" validate:"required,json"`
	IsDefault  bool   `json:"isDefault"`
	BusinessID string `json:"businessId" validate:"required,uuid"`
}

type InvoiceLineRequest struct {
	ItemID      string  `json:"itemId" validate:"omitempty,uuid"`
	Description string  `json:"description" validate:"required"`
	Quantity    float64 `json:"quantity" validate:"required,gt=0"`
	UnitPrice   float64 `json:"unitPrice" validate:"min=0"`
	TaxRate     float64 `json:"taxRate" validate:"min=0,max=100"`
}

type InvoiceRequest struct {
	Number     string               `json:"number"`
	ClientID   string               `json:"clientId" validate:"required,uuid"`
	LayoutID   string               `json:"layoutId" validate:"omitempty,uuid"`
	Status     string               `json:"status" validate:"omitempty,invoice_status"`
	Currency   string               `json:"currency" validate:"omitempty,iso4217"`
	DueAt      time.Time            `json:"dueAt" validate:"required"`
	Lines      []InvoiceLineRequest `json:"lines" validate:"required,min=1,dive"`
	Notes      string               `json:"notes"`
	BusinessID string               `json:"businessId" validate:"required,uuid"`
}

type ChangeRoleRequest struct {
	UserID string `json:"userId" validate:"required,uuid"`
	Role   string `json:"role" validate:"required,user_role"`
}
