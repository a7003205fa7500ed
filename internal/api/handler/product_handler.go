package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/apifuncional/catalog-api/internal/api/metrics"
	"github.com/apifuncional/catalog-api/internal/core/ports"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service ports.ProductService
}

func NewProductHandler(service ports.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// List handles GET /api/produtos.
//
// @Summary      List products
// @Tags         produtos
// @Produce      json
// @Success      200  {array}   productResponse
// @Failure      404  {object}  map[string]any
// @Router       /api/produtos [get]
func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductResponses(products))
}

// Get handles GET /api/produtos/:id.
//
// @Summary      Get a product by id
// @Tags         produtos
// @Produce      json
// @Param        id   path      int  true  "Product id"
// @Success      200  {object}  productResponse
// @Failure      400  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /api/produtos/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := productID(c)
	if err != nil {
		return err
	}

	p, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

// Create handles POST /api/produtos.
//
// @Summary      Create a product
// @Tags         produtos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      productRequest  true  "Product"
// @Success      201   {object}  productResponse
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Router       /api/produtos [post]
func (h *ProductHandler) Create(c echo.Context) error {
	var req productRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	p, err := h.service.Create(c.Request().Context(), caller(c), toProductInput(req))
	if err != nil {
		return err
	}

	metrics.ProductMutationsTotal.WithLabelValues("create").Inc()
	c.Response().Header().Set(echo.HeaderLocation, "/api/produtos/"+strconv.FormatInt(p.ID, 10))
	return c.JSON(http.StatusCreated, toProductResponse(p))
}

// Update handles PUT /api/produtos/:id.
//
// @Summary      Replace a product
// @Tags         produtos
// @Accept       json
// @Security     BearerAuth
// @Param        id    path      int             true  "Product id"
// @Param        body  body      productRequest  true  "Product"
// @Success      204
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Failure      404   {object}  map[string]any
// @Router       /api/produtos/{id} [put]
func (h *ProductHandler) Update(c echo.Context) error {
	id, err := productID(c)
	if err != nil {
		return err
	}

	var req productRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if _, err := h.service.Update(c.Request().Context(), caller(c), id, toProductInput(req)); err != nil {
		return err
	}

	metrics.ProductMutationsTotal.WithLabelValues("update").Inc()
	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /api/produtos/:id. Requires the Admin role.
//
// @Summary      Delete a product
// @Tags         produtos
// @Security     BearerAuth
// @Param        id   path  int  true  "Product id"
// @Success      204
// @Failure      401  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /api/produtos/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := productID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), caller(c), id); err != nil {
		return err
	}

	metrics.ProductMutationsTotal.WithLabelValues("delete").Inc()
	return c.NoContent(http.StatusNoContent)
}
