package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/cowork-api/internal/application/service"
	"github.com/sangkips/cowork-api/internal/domain/enum"
	"github.com/sangkips/cowork-api/internal/domain/repository"
	"github.com/sangkips/cowork-api/internal/presentation/http/dto/request"
	"github.com/sangkips/cowork-api/internal/presentation/http/dto/response"
	"github.com/sangkips/cowork-api/pkg/apperror"
)

// SpaceHandler handles spaces and their bookings
type SpaceHandler struct {
	spaceService *service.SpaceService
}

// NewSpaceHandler creates a new space handler
func NewSpaceHandler(spaceService *service.SpaceService) *SpaceHandler {
	return &SpaceHandler{spaceService: spaceService}
}

func kindOf(s string) enum.SpaceKind {
	return enum.SpaceKind(strings.ToUpper(strings.TrimSpace(s)))
}

// ListSpaces handles listing spaces, optionally by kind
func (h *SpaceHandler) ListSpaces(c *gin.Context) {
	var kind *enum.SpaceKind
	if k := c.Query("kind"); k != "" {
		parsed := kindOf(k)
		if !parsed.IsValid() {
			response.Error(c, apperror.NewFieldError("kind", "is not a valid space kind"))
			return
		}
		kind = &parsed
	}

	result, err := h.spaceService.ListSpaces(c.Request.Context(), pageParams(c), kind)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Spaces retrieved successfully", result)
}

// CreateSpace handles creating a space
func (h *SpaceHandler) CreateSpace(c *gin.Context) {
	var req request.CreateSpaceRequest
	if !bindJSON(c, &req) {
		return
	}

	space, err := h.spaceService.CreateSpace(c.Request.Context(), &service.CreateSpaceInput{
		Name:       req.Name,
		Kind:       kindOf(req.Kind),
		Capacity:   req.Capacity,
		HourlyRate: req.HourlyRate,
		Floor:      req.Floor,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Space created successfully", space)
}

// GetSpace handles getting a single space
func (h *SpaceHandler) GetSpace(c *gin.Context) {
	id, ok := pathID(c, "id", "space")
	if !ok {
		return
	}

	space, err := h.spaceService.GetSpace(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Space retrieved successfully", space)
}

// UpdateSpace handles updating a space
func (h *SpaceHandler) UpdateSpace(c *gin.Context) {
	id, ok := pathID(c, "id", "space")
	if !ok {
		return
	}

	var req request.UpdateSpaceRequest
	if !bindJSON(c, &req) {
		return
	}

	input := &service.UpdateSpaceInput{
		ID:         id,
		Name:       req.Name,
		Capacity:   req.Capacity,
		HourlyRate: req.HourlyRate,
		Floor:      req.Floor,
		IsActive:   req.IsActive,
	}
	if req.Kind != nil {
		kind := kindOf(*req.Kind)
		input.Kind = &kind
	}

	space, err := h.spaceService.UpdateSpace(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Space updated successfully", space)
}

// DeleteSpace handles deleting a space
func (h *SpaceHandler) DeleteSpace(c *gin.Context) {
	id, ok := pathID(c, "id", "space")
	if !ok {
		return
	}

	if err := h.spaceService.DeleteSpace(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// ListBookings handles listing bookings
func (h *SpaceHandler) ListBookings(c *gin.Context) {
	var req request.BookingFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	spaceID, err := queryUUID(req.SpaceID, "space_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	clientID, err := queryUUID(req.ClientID, "client_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.spaceService.ListBookings(c.Request.Context(), &repository.BookingFilterParams{
		Pagination: pageParams(c),
		SpaceID:    spaceID,
		ClientID:   clientID,
		From:       req.From,
		To:         req.To,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Bookings retrieved successfully", result)
}

// CreateBooking reserves a space
func (h *SpaceHandler) CreateBooking(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req request.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	booking, err := h.spaceService.CreateBooking(c.Request.Context(), &service.CreateBookingInput{
		UserID:   userID,
		SpaceID:  req.SpaceID,
		ClientID: req.ClientID,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
		Notes:    req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Booking created successfully", booking)
}

// GetBooking handles getting a single booking
func (h *SpaceHandler) GetBooking(c *gin.Context) {
	id, ok := pathID(c, "id", "booking")
	if !ok {
		return
	}

	booking, err := h.spaceService.GetBooking(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Booking retrieved successfully", booking)
}

// CancelBooking releases a booking
func (h *SpaceHandler) CancelBooking(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "booking")
	if !ok {
		return
	}

	booking, err := h.spaceService.CancelBooking(c.Request.Context(), id, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Booking cancelled successfully", booking)
}
