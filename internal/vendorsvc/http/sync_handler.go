// Package http provides HTTP handlers for vendor sync operations.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dealgrid/vendorsync/internal/httputil"
	customValidation "github.com/dealgrid/vendorsync/internal/validation"
	"github.com/dealgrid/vendorsync/internal/vendorsvc/domain"
	"github.com/dealgrid/vendorsync/internal/vendorsvc/http/dto"
	vendorUseCase "github.com/dealgrid/vendorsync/internal/vendorsvc/usecase"
)

// SyncHandler handles HTTP requests for vendor lifecycle operations.
// Every operation delegates to the sync coordinator and reports whether the
// outcome was fully synchronous or partially deferred to the outbox.
type SyncHandler struct {
	syncUseCase vendorUseCase.SyncUseCase
	logger      *slog.Logger
}

// NewSyncHandler creates a new sync handler with required dependencies.
func NewSyncHandler(syncUseCase vendorUseCase.SyncUseCase, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{
		syncUseCase: syncUseCase,
		logger:      logger,
	}
}

// CreateHandler registers a new vendor on both sides.
// POST /v1/vendors
// Returns 201 Created on full success, 202 Accepted when the local half was
// deferred to the outbox.
func (h *SyncHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateVendorRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input := &vendorUseCase.CreateVendorInput{
		Email:        req.Email,
		Phone:        req.Phone,
		Password:     req.Password,
		BusinessName: req.BusinessName,
		Category:     req.Category,
		Documents:    req.Documents,
	}

	result, err := h.syncUseCase.CreateVendor(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(statusFor(result.Partial, http.StatusCreated), dto.MapSyncResultToResponse(result))
}

// UpdateEmailHandler changes a vendor's contact email on both sides.
// PUT /v1/vendors/:profile_id/email
func (h *SyncHandler) UpdateEmailHandler(c *gin.Context) {
	profileID, ok := h.parseProfileID(c)
	if !ok {
		return
	}

	var req dto.UpdateEmailRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.syncUseCase.UpdateEmail(c.Request.Context(), profileID, req.Email)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(statusFor(result.Partial, http.StatusOK), dto.MapSyncResultToResponse(result))
}

// UpdatePhoneHandler changes a vendor's contact phone on both sides.
// PUT /v1/vendors/:profile_id/phone
func (h *SyncHandler) UpdatePhoneHandler(c *gin.Context) {
	profileID, ok := h.parseProfileID(c)
	if !ok {
		return
	}

	var req dto.UpdatePhoneRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.syncUseCase.UpdatePhone(c.Request.Context(), profileID, req.Phone)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(statusFor(result.Partial, http.StatusOK), dto.MapSyncResultToResponse(result))
}

// SetPasswordHandler rotates the provider-held credential.
// PUT /v1/vendors/:profile_id/password
// The credential never touches the local store, so this operation is always
// fully synchronous.
func (h *SyncHandler) SetPasswordHandler(c *gin.Context) {
	profileID, ok := h.parseProfileID(c)
	if !ok {
		return
	}

	var req dto.SetPasswordRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.syncUseCase.SetPassword(c.Request.Context(), profileID, req.Password)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSyncResultToResponse(result))
}

// SetStatusHandler changes a vendor's verification status.
// PUT /v1/vendors/:profile_id/status
func (h *SyncHandler) SetStatusHandler(c *gin.Context) {
	profileID, ok := h.parseProfileID(c)
	if !ok {
		return
	}

	var req dto.SetStatusRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	status, err := domain.ParseVerificationStatus(req.Status)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	result, err := h.syncUseCase.SetVendorStatus(c.Request.Context(), profileID, status)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(statusFor(result.Partial, http.StatusOK), dto.MapSyncResultToResponse(result))
}

// DeleteHandler removes a business record and, when it was the profile's last
// record, the profile and its external identity.
// DELETE /v1/businesses/:business_id
// Returns 204 No Content on full success, 202 Accepted when identity removal
// was deferred to the outbox.
func (h *SyncHandler) DeleteHandler(c *gin.Context) {
	businessID, err := uuid.Parse(c.Param("business_id"))
	if err != nil {
		httputil.HandleValidationErrorGin(
			c,
			fmt.Errorf("invalid business_id: must be a valid UUID"),
			h.logger,
		)
		return
	}

	result, err := h.syncUseCase.DeleteVendorFully(c.Request.Context(), businessID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if result.Partial {
		c.JSON(http.StatusAccepted, dto.MapSyncResultToResponse(result))
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// parseProfileID extracts and validates the profile_id URL parameter.
func (h *SyncHandler) parseProfileID(c *gin.Context) (uuid.UUID, bool) {
	profileID, err := uuid.Parse(c.Param("profile_id"))
	if err != nil {
		httputil.HandleValidationErrorGin(
			c,
			fmt.Errorf("invalid profile_id: must be a valid UUID"),
			h.logger,
		)
		return uuid.Nil, false
	}
	return profileID, true
}

// statusFor picks the response status, downgrading to 202 Accepted when part
// of the operation was deferred to the outbox.
func statusFor(partial bool, fullSuccess int) int {
	if partial {
		return http.StatusAccepted
	}
	return fullSuccess
}
