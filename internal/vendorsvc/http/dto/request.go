// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/dealgrid/vendorsync/internal/validation"
)

// passwordRule is the credential policy enforced on registration and rotation.
var passwordRule = customValidation.PasswordStrength{
	MinLength:     8,
	RequireUpper:  true,
	RequireLower:  true,
	RequireNumber: true,
}

// CreateVendorRequest contains the parameters for registering a new vendor.
type CreateVendorRequest struct {
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	Password     string   `json:"password"`
	BusinessName string   `json:"business_name"`
	Category     string   `json:"category"`
	Documents    []string `json:"documents"`
}

// Validate checks if the create vendor request is valid.
func (r *CreateVendorRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, customValidation.Email),
		validation.Field(&r.Phone, validation.Required, customValidation.Phone),
		validation.Field(&r.Password, validation.Required, passwordRule),
		validation.Field(&r.BusinessName, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&r.Category, validation.Required, customValidation.NotBlank, validation.Length(1, 100)),
	)
}

// UpdateEmailRequest contains the parameters for changing a vendor's contact email.
type UpdateEmailRequest struct {
	Email string `json:"email"`
}

// Validate checks if the update email request is valid.
func (r *UpdateEmailRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, customValidation.Email),
	)
}

// UpdatePhoneRequest contains the parameters for changing a vendor's contact phone.
type UpdatePhoneRequest struct {
	Phone string `json:"phone"`
}

// Validate checks if the update phone request is valid.
func (r *UpdatePhoneRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Phone, validation.Required, customValidation.Phone),
	)
}

// SetPasswordRequest contains the parameters for rotating a vendor's credential.
type SetPasswordRequest struct {
	Password string `json:"password"`
}

// Validate checks if the set password request is valid.
func (r *SetPasswordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Password, validation.Required, passwordRule),
	)
}

// SetStatusRequest contains the parameters for changing a vendor's verification status.
type SetStatusRequest struct {
	Status string `json:"status"`
}

// Validate checks if the set status request is valid. The status value itself
// is validated against the known set by the use case.
func (r *SetStatusRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Status, validation.Required, customValidation.NotBlank),
	)
}
