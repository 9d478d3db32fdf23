package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

const storeTimeout = 2 * time.Second

type UsersService interface {
	Create(ctx context.Context, payload user.User) (user.User, error)
	Get(ctx context.Context, id int64) (user.User, error)
	Update(ctx context.Context, id int64, payload user.User) (user.User, error)
	Delete(ctx context.Context, id int64) error
}

type UsersHandler struct {
	svc UsersService
}

func NewUsersHandler(svc UsersService) *UsersHandler {
	return &UsersHandler{svc: svc}
}

func (h *UsersHandler) CreateUser(ctx *gin.Context) {
	var req user.CreateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	u, err := h.svc.Create(cctx, req.ToUser())
	if err != nil {
		h.respondServiceError(ctx, err, "create")
		return
	}

	ctx.JSON(http.StatusCreated, u)
}

func (h *UsersHandler) GetUserByID(ctx *gin.Context) {
	id, ok := userIDParam(ctx)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	u, err := h.svc.Get(cctx, id)
	if err != nil {
		h.respondServiceError(ctx, err, "fetch")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, u)
}

func (h *UsersHandler) UpdateUser(ctx *gin.Context) {
	id, ok := userIDParam(ctx)
	if !ok {
		return
	}

	var req user.UpdateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	u, err := h.svc.Update(cctx, id, req.ToUser())
	if err != nil {
		h.respondServiceError(ctx, err, "update")
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	id, ok := userIDParam(ctx)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	if err := h.svc.Delete(cctx, id); err != nil {
		h.respondServiceError(ctx, err, "delete")
		return
	}

	ctx.Status(http.StatusNoContent)
}

func userIDParam(ctx *gin.Context) (int64, bool) {
	raw := ctx.Param("id")

	// zero and negative ids parse fine and simply match no user
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		RespondBadRequest(ctx, "Invalid user id", gin.H{
			"fields": []FieldError{{Field: "id", Rule: "type", Message: "must be a 64-bit integer"}},
		})
		return 0, false
	}

	return id, true
}

func (h *UsersHandler) respondServiceError(ctx *gin.Context, err error, action string) {
	var notFound *user.NotFoundError
	if errors.As(err, &notFound) {
		RespondNotFound(ctx, fmt.Sprintf("User %d not found", notFound.ID), gin.H{"id": notFound.ID})
		return
	}

	if errors.Is(err, user.ErrNotFound) {
		RespondNotFound(ctx, "User not found", nil)
		return
	}

	slog.Default().ErrorContext(ctx.Request.Context(), "user_"+action+"_failed",
		"err", err,
		"request_id", requestIDFrom(ctx),
	)
	RespondInternal(ctx, "Could not "+action+" user")
}
