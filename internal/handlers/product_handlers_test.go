package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/lucasmoraes/shop-api/internal/models"
)

func newProductHandler(t *testing.T) *ProductHandler {
	return &ProductHandler{DB: initTestDB(t), Index: "products"}
}

func createProduct(t *testing.T, h *ProductHandler, name string, price float64, description string) {
	t.Helper()
	e := echo.New()
	body := map[string]interface{}{"name": name, "price": price}
	if description != "" {
		body["description"] = description
	}
	rec, c := doJSONRequest(t, e, http.MethodPost, "/api/products/add", body)
	require.NoError(t, h.CreateProduct(c))
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateAndGetProduct(t *testing.T) {
	h := newProductHandler(t)
	e := echo.New()

	createProduct(t, h, "Pen", 1.5, "blue ink")

	rec, c := doJSONRequest(t, e, http.MethodGet, "/api/products/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.GetProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var prod models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prod))
	require.Equal(t, uint(1), prod.ID)
	require.Equal(t, "Pen", prod.Name)
	require.Equal(t, 1.5, prod.Price)
	require.Equal(t, "blue ink", prod.Description)
}

func TestCreateProductValidation(t *testing.T) {
	h := newProductHandler(t)
	e := echo.New()

	_, cNoPrice := doJSONRequest(t, e, http.MethodPost, "/api/products/add",
		map[string]interface{}{"name": "Pen"})
	requireHTTPError(t, h.CreateProduct(cNoPrice), http.StatusBadRequest)

	_, cNoName := doJSONRequest(t, e, http.MethodPost, "/api/products/add",
		map[string]interface{}{"price": 1.5})
	requireHTTPError(t, h.CreateProduct(cNoName), http.StatusBadRequest)
}

func TestCreateProductDefaultDescription(t *testing.T) {
	h := newProductHandler(t)

	createProduct(t, h, "Pen", 1.5, "")

	var prod models.Product
	require.NoError(t, h.DB.First(&prod, 1).Error)
	require.Equal(t, "", prod.Description)
}

func TestGetProductNotFound(t *testing.T) {
	h := newProductHandler(t)
	e := echo.New()

	_, c := doJSONRequest(t, e, http.MethodGet, "/api/products/99", nil)
	c.SetParamNames("id")
	c.SetParamValues("99")
	requireHTTPError(t, h.GetProduct(c), http.StatusNotFound)
}

func TestUpdateProductPartial(t *testing.T) {
	h := newProductHandler(t)
	e := echo.New()

	createProduct(t, h, "Pen", 1.5, "blue ink")

	rec, c := doJSONRequest(t, e, http.MethodPut, "/api/products/update/1",
		map[string]interface{}{"price": 2.0})
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.UpdateProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var prod models.Product
	require.NoError(t, h.DB.First(&prod, 1).Error)
	require.Equal(t, "Pen", prod.Name)
	require.Equal(t, 2.0, prod.Price)
	require.Equal(t, "blue ink", prod.Description)
}

func TestUpdateProductNotFound(t *testing.T) {
	h := newProductHandler(t)
	e := echo.New()

	_, c := doJSONRequest(t, e, http.MethodPut, "/api/products/update/99",
		map[string]interface{}{"price": 2.0})
	c.SetParamNames("id")
	c.SetParamValues("99")
	requireHTTPError(t, h.UpdateProduct(c), http.StatusNotFound)
}

func TestDeleteProduct(t *testing.T) {
	h := newProductHandler(t)
	e := echo.New()

	createProduct(t, h, "Pen", 1.5, "")

	rec, c := doJSONRequest(t, e, http.MethodDelete, "/api/products/delete/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.DeleteProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	_, cGet := doJSONRequest(t, e, http.MethodGet, "/api/products/1", nil)
	cGet.SetParamNames("id")
	cGet.SetParamValues("1")
	requireHTTPError(t, h.GetProduct(cGet), http.StatusNotFound)

	_, cAgain := doJSONRequest(t, e, http.MethodDelete, "/api/products/delete/1", nil)
	cAgain.SetParamNames("id")
	cAgain.SetParamValues("1")
	requireHTTPError(t, h.DeleteProduct(cAgain), http.StatusNotFound)
}

func TestDeleteProductClearsCartReferences(t *testing.T) {
	h := newProductHandler(t)
	e := echo.New()

	createProduct(t, h, "Pen", 1.5, "")
	createProduct(t, h, "Notebook", 4.0, "")

	require.NoError(t, h.DB.Create(&models.CartItem{UserID: 1, ProductID: 1, Quantity: 2}).Error)
	require.NoError(t, h.DB.Create(&models.CartItem{UserID: 2, ProductID: 1, Quantity: 1}).Error)
	require.NoError(t, h.DB.Create(&models.CartItem{UserID: 1, ProductID: 2, Quantity: 1}).Error)

	_, c := doJSONRequest(t, e, http.MethodDelete, "/api/products/delete/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.DeleteProduct(c))

	var count int64
	require.NoError(t, h.DB.Model(&models.CartItem{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	var remaining models.CartItem
	require.NoError(t, h.DB.First(&remaining).Error)
	require.Equal(t, uint(2), remaining.ProductID)
}

func TestListProductsOmitsDescription(t *testing.T) {
	h := newProductHandler(t)
	e := echo.New()

	createProduct(t, h, "Pen", 1.5, "blue ink")
	createProduct(t, h, "Notebook", 4.0, "ruled")

	rec, c := doJSONRequest(t, e, http.MethodGet, "/api/products", nil)
	require.NoError(t, h.GetProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	require.Equal(t, "Pen", list[0]["name"])
	require.Equal(t, 1.5, list[0]["price"])
	require.NotContains(t, list[0], "description")
	require.NotContains(t, list[1], "description")
}

func TestListProductsEmpty(t *testing.T) {
	h := newProductHandler(t)
	e := echo.New()

	rec, c := doJSONRequest(t, e, http.MethodGet, "/api/products", nil)
	require.NoError(t, h.GetProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())
}
