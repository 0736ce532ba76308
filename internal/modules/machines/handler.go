package machines

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/djdeepak14/laundry-backend/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, mw ...gin.HandlerFunc) {
	rg.GET("/machines", append(mw, h.ListAll)...)
	rg.GET("/machines/type/:type", append(mw, h.ListByType)...)
}

// RegisterAdminRoutes mounts catalog CRUD; the caller wraps the group with the
// admin-only middleware.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/machines", h.Create)
	rg.DELETE("/machines/id/:id", h.DeleteByID)
	rg.DELETE("/machines/code/:code", h.DeleteByCode)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateMachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Both machine code and type are required")
		return
	}

	m, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Type must be either 'washer' or 'dryer'")
		case errors.Is(err, ErrCodeTaken):
			response.Error(c, http.StatusConflict, "CODE_TAKEN", "Machine with this code already exists")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create machine")
		}
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"machine": m})
}

func (h *Handler) DeleteByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid machine id")
		return
	}

	m, err := h.service.DeleteByID(c.Request.Context(), id)
	if err != nil {
		h.writeDeleteError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"machine": m})
}

func (h *Handler) DeleteByCode(c *gin.Context) {
	m, err := h.service.DeleteByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.writeDeleteError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"machine": m})
}

func (h *Handler) ListByType(c *gin.Context) {
	ms, err := h.service.ListByType(c.Request.Context(), c.Param("type"))
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid type. Must be 'washer' or 'dryer'")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list machines")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"machines": ms})
}

func (h *Handler) ListAll(c *gin.Context) {
	ms, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list machines")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"machines": ms})
}

func (h *Handler) writeDeleteError(c *gin.Context, err error) {
	if errors.Is(err, ErrNotFound) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Machine not found")
		return
	}
	response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete machine")
}
