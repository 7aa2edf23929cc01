package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/velotir/starship_registry/internal/hash"
	"github.com/velotir/starship_registry/internal/middleware"
	"github.com/velotir/starship_registry/internal/models"
	"github.com/velotir/starship_registry/internal/mykafka"
)

type UserHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *UserHandler) GetUsers(c echo.Context) error {
	var users []models.User
	if err := h.DB.WithContext(c.Request().Context()).Find(&users).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid id")
	}

	var user models.User
	if err := h.DB.WithContext(c.Request().Context()).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusNotFound, "user not found")
		}
		return errorResponse(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" || req.Password == "" {
		return errorResponse(c, http.StatusBadRequest, "the 'name' and 'password' fields are required")
	}

	var existing models.User
	err := h.DB.WithContext(ctx).Where("name = ?", req.Name).First(&existing).Error
	if err == nil {
		return errorResponse(c, http.StatusBadRequest, "username is already taken")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return errorResponse(c, http.StatusInternalServerError, err.Error())
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	user := models.User{Name: req.Name, Password: pwHash}
	if err := h.DB.WithContext(ctx).Create(&user).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err.Error())
	}

	publish(c, h.Producer, "user_events", fmt.Sprint(user.ID), map[string]any{
		"type":    "user_registered",
		"user_id": user.ID,
		"name":    user.Name,
	})

	c.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("/api/users/%d", user.ID))
	return c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) UpdateUser(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid id")
	}
	if !isSelf(c, id) {
		return errorResponse(c, http.StatusForbidden, "forbidden")
	}

	var user models.User
	if err := h.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusNotFound, "user not found")
		}
		return errorResponse(c, http.StatusInternalServerError, err.Error())
	}

	var req struct {
		Name     *string `json:"name"`
		Password *string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid body")
	}
	if req.Name == nil && req.Password == nil {
		return errorResponse(c, http.StatusBadRequest, "no data in request")
	}

	if req.Name != nil && *req.Name != user.Name {
		var taken models.User
		if err := h.DB.WithContext(ctx).Where("name = ?", *req.Name).First(&taken).Error; err == nil {
			return errorResponse(c, http.StatusBadRequest, "username is already taken")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusInternalServerError, err.Error())
		}
		user.Name = *req.Name
	}
	if req.Password != nil {
		pwHash, err := hash.HashPassword(*req.Password)
		if err != nil {
			return errorResponse(c, http.StatusInternalServerError, "internal server error")
		}
		user.Password = pwHash
	}

	if err := h.DB.WithContext(ctx).Save(&user).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid id")
	}
	if !isSelf(c, id) {
		return errorResponse(c, http.StatusForbidden, "forbidden")
	}

	var user models.User
	if err := h.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusNotFound, "user not found")
		}
		return errorResponse(c, http.StatusInternalServerError, err.Error())
	}

	if err := h.DB.WithContext(ctx).Delete(&user).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// isSelf reports whether the authenticated subject is the user with the given
// id. Users may only modify or delete their own account.
func isSelf(c echo.Context, id int) bool {
	subject, _ := c.Get(middleware.CtxUserID).(string)
	return subject == strconv.Itoa(id)
}
