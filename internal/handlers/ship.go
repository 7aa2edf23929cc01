package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/velotir/starship_registry/internal/logging"
	"github.com/velotir/starship_registry/internal/models"
	"github.com/velotir/starship_registry/internal/mykafka"
)

type ShipHandler struct {
	DB       *gorm.DB
	ES       *elasticsearch.Client
	Index    string
	Producer *mykafka.Producer
}

func (h *ShipHandler) GetShips(c echo.Context) error {
	var ships []models.Ship
	if err := h.DB.WithContext(c.Request().Context()).Find(&ships).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, ships)
}

func (h *ShipHandler) GetShip(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid id")
	}

	var ship models.Ship
	if err := h.DB.WithContext(c.Request().Context()).First(&ship, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusNotFound, "ship not found")
		}
		return errorResponse(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, ship)
}

func (h *ShipHandler) CreateShip(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.Ship
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid body")
	}

	var missing []string
	if req.Model == "" {
		missing = append(missing, "model")
	}
	if req.ShipClass == "" {
		missing = append(missing, "ship_class")
	}
	if len(missing) > 0 {
		return errorResponse(c, http.StatusBadRequest, "missing required fields: "+strings.Join(missing, ", "))
	}

	ship := models.Ship{
		Affiliation:  req.Affiliation,
		Category:     req.Category,
		Crew:         req.Crew,
		Length:       req.Length,
		Manufacturer: req.Manufacturer,
		Model:        req.Model,
		Roles:        req.Roles,
		ShipClass:    req.ShipClass,
	}
	if err := h.DB.WithContext(ctx).Create(&ship).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err.Error())
	}

	h.indexShip(ctx, &ship)

	publish(c, h.Producer, "ship_events", fmt.Sprint(ship.ID), map[string]any{
		"type":    "ship_created",
		"ship_id": ship.ID,
		"model":   ship.Model,
	})

	c.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("/api/ships/%d", ship.ID))
	return c.JSON(http.StatusCreated, ship)
}

func (h *ShipHandler) UpdateShip(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid id")
	}

	var ship models.Ship
	if err := h.DB.WithContext(ctx).First(&ship, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusNotFound, "ship not found")
		}
		return errorResponse(c, http.StatusInternalServerError, err.Error())
	}

	// only fields present in the body are touched
	var req struct {
		Affiliation  *string   `json:"affiliation"`
		Category     *string   `json:"category"`
		Crew         *int      `json:"crew"`
		Length       *int      `json:"length"`
		Manufacturer *string   `json:"manufacturer"`
		Model        *string   `json:"model"`
		Roles        *[]string `json:"roles"`
		ShipClass    *string   `json:"ship_class"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid body")
	}

	if req.Affiliation != nil {
		ship.Affiliation = *req.Affiliation
	}
	if req.Category != nil {
		ship.Category = *req.Category
	}
	if req.Crew != nil {
		ship.Crew = *req.Crew
	}
	if req.Length != nil {
		ship.Length = *req.Length
	}
	if req.Manufacturer != nil {
		ship.Manufacturer = *req.Manufacturer
	}
	if req.Model != nil {
		ship.Model = *req.Model
	}
	if req.Roles != nil {
		ship.Roles = *req.Roles
	}
	if req.ShipClass != nil {
		ship.ShipClass = *req.ShipClass
	}

	if err := h.DB.WithContext(ctx).Save(&ship).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err.Error())
	}

	h.indexShip(ctx, &ship)

	publish(c, h.Producer, "ship_events", fmt.Sprint(ship.ID), map[string]any{
		"type":    "ship_updated",
		"ship_id": ship.ID,
		"model":   ship.Model,
	})

	return c.JSON(http.StatusOK, ship)
}

func (h *ShipHandler) DeleteShip(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid id")
	}

	var ship models.Ship
	if err := h.DB.WithContext(ctx).First(&ship, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusNotFound, "ship not found")
		}
		return errorResponse(c, http.StatusInternalServerError, err.Error())
	}

	if err := h.DB.WithContext(ctx).Delete(&ship).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err.Error())
	}

	h.deindexShip(ctx, id)

	publish(c, h.Producer, "ship_events", fmt.Sprint(id), map[string]any{
		"type":    "ship_deleted",
		"ship_id": id,
	})

	return c.NoContent(http.StatusNoContent)
}

// indexShip mirrors the ship into Elasticsearch for full-text search. Index
// failures are logged, never surfaced: the database row is the source of truth.
func (h *ShipHandler) indexShip(ctx context.Context, ship *models.Ship) {
	if h.ES == nil {
		return
	}
	l := logging.FromContext(ctx)

	data, err := json.Marshal(ship)
	if err != nil {
		l.Error("es index error", "ship_id", ship.ID, "error", err)
		return
	}

	res, err := h.ES.Index(
		h.Index,
		bytes.NewReader(data),
		h.ES.Index.WithDocumentID(fmt.Sprint(ship.ID)),
		h.ES.Index.WithContext(ctx),
	)
	if err != nil {
		l.Error("es index error", "ship_id", ship.ID, "error", err)
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		l.Error("es index error", "ship_id", ship.ID, "status", res.Status())
	}
}

func (h *ShipHandler) deindexShip(ctx context.Context, id int) {
	if h.ES == nil {
		return
	}
	l := logging.FromContext(ctx)

	res, err := h.ES.Delete(h.Index, strconv.Itoa(id), h.ES.Delete.WithContext(ctx))
	if err != nil {
		l.Error("es delete error", "ship_id", id, "error", err)
		return
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		l.Error("es delete error", "ship_id", id, "status", res.Status())
	}
}
