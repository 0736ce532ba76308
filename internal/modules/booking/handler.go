package booking

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/djdeepak14/laundry-backend/internal/domain"
	"github.com/djdeepak14/laundry-backend/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.CreateReservation)
	rg.GET("/bookings", h.ListMine)
	rg.GET("/bookings/upcoming", h.ListUpcoming)
	rg.GET("/bookings/past", h.ListPast)
	rg.DELETE("/bookings/:id", h.CancelReservation)
	rg.GET("/machines/availability/:id", h.GetAvailability)
}

// RegisterAdminRoutes mounts the privileged endpoints; the caller wraps the
// group with the admin-only middleware.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/bookings/all", h.ListAll)
	rg.DELETE("/bookings/cancel/:id", h.CancelReservation)
}

func (h *Handler) CreateReservation(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Machine ID and start time are required")
		return
	}

	created, err := h.service.CreateReservation(c.Request.Context(), c.GetInt64("user_id"), req.MachineID, req.Start)
	if err != nil {
		h.writeError(c, err)
		return
	}

	now := time.Now().UTC()
	views := make([]ReservationView, 0, len(created))
	for _, r := range created {
		views = append(views, newView(*r, now))
	}
	response.Success(c, http.StatusCreated, gin.H{"reservations": views})
}

func (h *Handler) CancelReservation(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid reservation id")
		return
	}

	isAdmin := c.GetString("role") == string(domain.RoleAdmin)
	res, err := h.service.CancelReservation(c.Request.Context(), id, c.GetInt64("user_id"), isAdmin)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservation": newView(*res, time.Now().UTC())})
}

func (h *Handler) ListMine(c *gin.Context) {
	views, err := h.service.ListMine(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservations": views})
}

func (h *Handler) ListUpcoming(c *gin.Context) {
	page, limit, includeCancelled := listParams(c)
	p, err := h.service.ListUpcoming(c.Request.Context(), c.GetInt64("user_id"), page, limit, includeCancelled)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

func (h *Handler) ListPast(c *gin.Context) {
	page, limit, includeCancelled := listParams(c)
	p, err := h.service.ListPast(c.Request.Context(), c.GetInt64("user_id"), page, limit, includeCancelled)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

func (h *Handler) ListAll(c *gin.Context) {
	page, limit, _ := listParams(c)
	p, err := h.service.ListAll(c.Request.Context(), page, limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

func (h *Handler) GetAvailability(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid machine id")
		return
	}

	slots, err := h.service.GetAvailability(c.Request.Context(), id, c.DefaultQuery("date", time.Now().UTC().Format("2006-01-02")))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"free_slots": slots})
}

func listParams(c *gin.Context) (page, limit int, includeCancelled bool) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	includeCancelled = c.DefaultQuery("includeCancelled", "false") == "true"
	return page, limit, includeCancelled
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var slotTaken *SlotTakenError
	var quota *QuotaExceededError

	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Start time must be a future slot boundary")
	case errors.Is(err, ErrMachineNotFound):
		response.Error(c, http.StatusNotFound, "MACHINE_NOT_FOUND", "Machine not found")
	case errors.Is(err, ErrMachineUnavailable):
		response.Error(c, http.StatusConflict, "MACHINE_UNAVAILABLE", "Machine is not available for booking")
	case errors.As(err, &slotTaken):
		response.ErrorWithDetails(c, http.StatusConflict, "SLOT_TAKEN", "Time slot already booked", gin.H{
			"machine_id": slotTaken.MachineID,
			"start":      slotTaken.Start,
			"end":        slotTaken.End,
		})
	case errors.As(err, &quota):
		response.ErrorWithDetails(c, http.StatusConflict, "QUOTA_EXCEEDED", "Weekly booking quota exceeded", gin.H{
			"machine_type":    quota.MachineType,
			"cap_hours":       quota.CapHours,
			"next_week_start": quota.NextWeekStart,
		})
	case errors.Is(err, ErrDryerUnavailable):
		response.Error(c, http.StatusConflict, "DRYER_UNAVAILABLE", "No dryer is free for the following slot")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Reservation not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Not authorized to cancel this reservation")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Request failed")
	}
}
