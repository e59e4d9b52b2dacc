package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/capitolcinema/booking-backend/internal/middleware"
	"github.com/capitolcinema/booking-backend/internal/service"
)

// ReferenceHandler serves the public catalog endpoints and the admin
// room-plan upload.
type ReferenceHandler struct {
	Reference *service.ReferenceService
}

func NewReferenceHandler(ref *service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{Reference: ref}
}

func (h *ReferenceHandler) Movies(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	movies, err := h.Reference.Movies(ctx)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, movies)
}

func (h *ReferenceHandler) Categories(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	cats, err := h.Reference.Categories(ctx)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *ReferenceHandler) Rooms(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	rooms, err := h.Reference.Rooms(ctx)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, rooms)
}

func (h *ReferenceHandler) RoomPlan(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	plan, err := h.Reference.RoomPlan(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, plan)
}

// UploadRoomPlan creates a room with its full seat layout. Admin only.
func (h *ReferenceHandler) UploadRoomPlan(c echo.Context) error {
	var req service.RoomPlanInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.Reference.UploadRoomPlan(ctx, middleware.Token(c), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}
