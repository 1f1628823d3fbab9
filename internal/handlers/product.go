package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/lucasmoraes/shop-api/internal/logging"
	"github.com/lucasmoraes/shop-api/internal/models"
	"github.com/lucasmoraes/shop-api/internal/mykafka"
	"github.com/lucasmoraes/shop-api/internal/service/search"
)

type ProductHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
	Index    string
}

func (h *ProductHandler) publish(c echo.Context, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", fmt.Sprint(event["productID"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "error", err)
	}
}

func (h *ProductHandler) index(c echo.Context, p models.Product) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := search.IndexProduct(ctx, h.ES, h.Index, p); err != nil {
		logging.FromContext(c.Request().Context()).Error("product indexing failed", "error", err)
	}
}

func (h *ProductHandler) deindex(c echo.Context, id uint) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := search.RemoveProduct(ctx, h.ES, h.Index, id); err != nil {
		logging.FromContext(c.Request().Context()).Error("product deindexing failed", "error", err)
	}
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req struct {
		Name        string   `json:"name"`
		Price       *float64 `json:"price"`
		Description string   `json:"description"`
	}

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request data")
	}
	if req.Name == "" || req.Price == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request data")
	}

	prod := models.Product{
		Name:        req.Name,
		Price:       *req.Price,
		Description: req.Description,
	}
	if err := h.DB.Create(&prod).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"name":      prod.Name,
	})
	h.index(c, prod)

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "product created",
	})
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var prod models.Product
	if err := h.DB.First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	var items []models.Product
	if err := h.DB.Order("id ASC").Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	list := make([]models.ProductSummary, 0, len(items))
	for _, p := range items {
		list = append(list, models.ProductSummary{
			ID:    p.ID,
			Name:  p.Name,
			Price: p.Price,
		})
	}

	return c.JSON(http.StatusOK, list)
}

// UpdateProduct merges the provided fields into the existing product; fields
// absent from the payload keep their prior values.
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var prod models.Product
	if err := h.DB.First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var req struct {
		Name        *string  `json:"name"`
		Price       *float64 `json:"price"`
		Description *string  `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request data")
	}

	if req.Name != nil {
		prod.Name = *req.Name
	}
	if req.Price != nil {
		prod.Price = *req.Price
	}
	if req.Description != nil {
		prod.Description = *req.Description
	}

	if err := h.DB.Save(&prod).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":      "product_updated",
		"productID": prod.ID,
		"name":      prod.Name,
	})
	h.index(c, prod)

	return c.JSON(http.StatusOK, prod)
}

// DeleteProduct removes the product together with any cart items that still
// reference it, in one transaction, so carts never hold dangling product ids.
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var prod models.Product
	if err := h.DB.First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", prod.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&prod).Error
	})
	if txErr != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, txErr.Error())
	}

	h.publish(c, map[string]any{
		"type":      "product_deleted",
		"productID": prod.ID,
	})
	h.deindex(c, prod.ID)

	return c.JSON(http.StatusOK, echo.Map{
		"message": "product deleted",
	})
}
