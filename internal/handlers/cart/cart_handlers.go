package cart

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/lucasmoraes/shop-api/internal/models"
	"github.com/lucasmoraes/shop-api/internal/mykafka"
	"github.com/lucasmoraes/shop-api/internal/session"
)

type CartHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

// AddToCart creates a new line item on every call: adding the same product
// twice yields two rows, never a merged quantity.
func (h *CartHandler) AddToCart(c echo.Context) error {
	userID, err := session.UserID(c)
	if err != nil {
		return err
	}

	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil || productID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Quantity uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request data")
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	var product models.Product
	if err := h.DB.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	item := models.CartItem{
		UserID:    userID,
		ProductID: product.ID,
		Quantity:  req.Quantity,
	}
	if err := h.DB.Create(&item).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":      "cart_item_added",
		"userID":    userID,
		"productID": product.ID,
		"quantity":  item.Quantity,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": "product added to cart",
	})
}

// RemoveFromCart deletes one line item matching the product. Duplicates are
// removed one call at a time, oldest row first.
func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	userID, err := session.UserID(c)
	if err != nil {
		return err
	}

	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil || productID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var item models.CartItem
	if err := h.DB.Where("user_id = ? AND product_id = ?", userID, productID).
		Order("id ASC").First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, "product not found in cart")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.DB.Delete(&item).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":      "cart_item_removed",
		"userID":    userID,
		"productID": productID,
		"itemID":    item.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": "product removed from cart",
	})
}

// GetCart always returns a JSON array, empty included. A line item whose
// product has vanished resolves to 404 rather than a broken feed.
func (h *CartHandler) GetCart(c echo.Context) error {
	userID, err := session.UserID(c)
	if err != nil {
		return err
	}

	var items []models.CartItem
	if err := h.DB.Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	entries := make([]models.CartEntry, 0, len(items))
	for _, item := range items {
		var product models.Product
		if err := h.DB.First(&product, item.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return echo.NewHTTPError(http.StatusNotFound,
					fmt.Sprintf("product %d no longer exists", item.ProductID))
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		entries = append(entries, models.CartEntry{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  item.Quantity,
		})
	}

	return c.JSON(http.StatusOK, entries)
}

// Checkout clears every line item of the acting user, unconditionally.
func (h *CartHandler) Checkout(c echo.Context) error {
	userID, err := session.UserID(c)
	if err != nil {
		return err
	}

	if err := h.DB.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":   "cart_checked_out",
		"userID": userID,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": "checkout successful",
	})
}
