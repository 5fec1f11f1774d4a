package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/quangvu-dev/cakeshop/internal/models"
	"github.com/quangvu-dev/cakeshop/internal/mykafka"
	"github.com/quangvu-dev/cakeshop/internal/service/inventory"
	"github.com/quangvu-dev/cakeshop/internal/util"
)

type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type ProductHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func errorResponse(c echo.Context, code int, err error) error {
	return c.JSON(code, Response{
		Status:  "error",
		Message: err.Error(),
	})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func (h *ProductHandler) publish(c echo.Context, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", fmt.Sprint(event["productID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	product := models.Product{}
	if err := h.DB.Preload("Options.Warehouse").First(&product, id).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, err)
	}

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.Model(&models.Product{}).Count(&total).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	var items []models.Product
	if err := h.DB.Model(&models.Product{}).Preload("Options.Warehouse").Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	prod := models.Product{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := h.DB.Create(&prod).Error; err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	h.publish(c, map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"name":      prod.Name,
	})

	return c.JSON(http.StatusCreated, prod)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if err := h.DB.Delete(&models.Product{}, id).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	h.publish(c, map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})

	return c.NoContent(http.StatusNoContent)
}

// CreateOption adds a purchasable variant to a product together with its
// warehouse row, so every option is immediately orderable.
func (h *ProductHandler) CreateOption(c echo.Context) error {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var req struct {
		Flavor   string          `json:"flavor"`
		Weight   string          `json:"weight"`
		Price    decimal.Decimal `json:"price"`
		ImageURL string          `json:"image_url"`
		Quantity int             `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if req.Flavor == "" || req.Weight == "" || !req.Price.IsPositive() {
		return errorResponse(c, http.StatusBadRequest, fmt.Errorf("please fill all the information"))
	}
	if req.Quantity < 0 {
		return errorResponse(c, http.StatusBadRequest, fmt.Errorf("quantity must be >= 0"))
	}

	var prod models.Product
	if err := h.DB.First(&prod, productID).Error; err != nil {
		return errorResponse(c, http.StatusNotFound, fmt.Errorf("product not found"))
	}

	opt := models.ProductOption{
		ProductID: prod.ID,
		Flavor:    req.Flavor,
		Weight:    req.Weight,
		Price:     req.Price,
		ImageURL:  req.ImageURL,
	}
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&opt).Error; err != nil {
			return err
		}
		opt.Warehouse = models.Warehouse{ProductOptionID: opt.ID, Quantity: req.Quantity}
		return tx.Create(&opt.Warehouse).Error
	})
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	h.publish(c, map[string]any{
		"type":      "product_option_created",
		"productID": prod.ID,
		"optionID":  opt.ID,
	})

	return c.JSON(http.StatusCreated, opt)
}

func (h *ProductHandler) Restock(c echo.Context) error {
	optionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if req.Quantity <= 0 {
		return errorResponse(c, http.StatusBadRequest, fmt.Errorf("quantity must be > 0"))
	}

	if err := inventory.Increase(c.Request().Context(), h.DB, uint(optionID), req.Quantity); err != nil {
		if errors.Is(err, inventory.ErrWarehouseNotFound) {
			return errorResponse(c, http.StatusNotFound, err)
		}
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
