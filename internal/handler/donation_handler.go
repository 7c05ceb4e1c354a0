package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "donationhub/internal/errors"
	"donationhub/internal/model"
	"donationhub/internal/service"
)

const (
	msgDonationFieldsRequired = "All fields are required"
	msgInvalidQuantity        = "Quantity must be a positive number"
	msgStatusFieldsRequired   = "donationId and status are required"
	msgInvalidStatus          = `Status must be one of "pending", "claimed", "completed"`
)

// DonationHandler forwards donation requests to the donation service.
type DonationHandler struct {
	donationService service.DonationService
}

// NewDonationHandler creates a new donation handler.
func NewDonationHandler(donationService service.DonationService) *DonationHandler {
	return &DonationHandler{donationService: donationService}
}

// CreateDonationRequest represents a new donation. Any donorEmail sent by the
// client is ignored.
type CreateDonationRequest struct {
	DonorName string      `json:"donorName" validate:"required"`
	FoodType  string      `json:"foodType" validate:"required"`
	Quantity  json.Number `json:"quantity" validate:"required" swaggertype:"number"`
	City      string      `json:"city" validate:"required"`
}

// UpdateStatusRequest moves a donation to a new status.
type UpdateStatusRequest struct {
	DonationID string               `json:"donationId" validate:"required"`
	Status     model.DonationStatus `json:"status" validate:"required,oneof=pending claimed completed"`
}

// Create godoc
// @Summary Create a donation
// @Description Donor only. The donor email is taken from the session.
// @Tags donations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateDonationRequest true "Donation"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /donations/create [post]
func (h *DonationHandler) Create(c echo.Context) error {
	var req CreateDonationRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(err)
	}
	if err := c.Validate(&req); err != nil {
		return validationError(err, msgDonationFieldsRequired, nil)
	}
	if qty, err := req.Quantity.Float64(); err != nil || qty <= 0 {
		return apperrors.Validation(msgInvalidQuantity)
	}

	body, err := h.donationService.Create(c.Request().Context(), model.NewDonation{
		DonorName: req.DonorName,
		FoodType:  req.FoodType,
		Quantity:  req.Quantity,
		City:      req.City,
	})
	if err != nil {
		return err
	}
	return c.JSONBlob(http.StatusCreated, body)
}

// List godoc
// @Summary List donations
// @Description Receiver only.
// @Tags donations
// @Produce json
// @Security BearerAuth
// @Success 200 {array} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /donations/list [get]
func (h *DonationHandler) List(c echo.Context) error {
	body, err := h.donationService.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSONBlob(http.StatusOK, body)
}

// UpdateStatus godoc
// @Summary Update a donation's status
// @Description Receiver only.
// @Tags donations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateStatusRequest true "New status"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /donations/status [put]
func (h *DonationHandler) UpdateStatus(c echo.Context) error {
	var req UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(err)
	}
	if err := c.Validate(&req); err != nil {
		return validationError(err, msgStatusFieldsRequired, map[string]string{
			"Status": msgInvalidStatus,
		})
	}

	body, err := h.donationService.UpdateStatus(c.Request().Context(), model.DonationStatusUpdate{
		DonationID: req.DonationID,
		Status:     req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSONBlob(http.StatusOK, body)
}
