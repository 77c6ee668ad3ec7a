package registrants

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/walle-league/regpay/internal/validation"
)

// Handler provides HTTP endpoints for registration.
type Handler struct {
	service *Service
}

// NewHandler creates a new registrants handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes sets up public registration routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/registrants", h.Register)
	r.GET("/registrants/:id", h.Get)
}

// RegisterAdminRoutes sets up organizer-only routes.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.GET("/registrants", h.List)
	r.POST("/registrants/:id/approve", h.Approve)
	r.POST("/registrants/:id/waitlist", h.Waitlist)
}

// Register handles POST /registrants
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "name and a valid email are required",
		})
		return
	}

	r, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "email_exists",
				"message": "This email is already registered",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"registrant": r})
}

// Get handles GET /registrants/:id
func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	if !validation.IsValidID(id) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "malformed registrant id",
		})
		return
	}

	r, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "no such registrant",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"registrant": r})
}

// List handles GET /registrants
func (h *Handler) List(c *gin.Context) {
	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	list, err := h.service.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"registrants": list,
		"count":       len(list),
	})
}

// Approve handles POST /registrants/:id/approve
func (h *Handler) Approve(c *gin.Context) {
	h.decide(c, h.service.Approve)
}

// Waitlist handles POST /registrants/:id/waitlist
func (h *Handler) Waitlist(c *gin.Context) {
	h.decide(c, h.service.Waitlist)
}

func (h *Handler) decide(c *gin.Context, fn func(ctx context.Context, id string) (*Registrant, error)) {
	r, err := fn(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "no such registrant",
			})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "not_eligible",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"registrant": r})
}
