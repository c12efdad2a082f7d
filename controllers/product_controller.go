package controllers

import (
	"strconv"

	"furniture-shop/models"
	"furniture-shop/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProductController struct {
	products *services.ProductService
	log      *zap.Logger
}

func NewProductController(products *services.ProductService, log *zap.Logger) *ProductController {
	return &ProductController{products: products, log: log}
}

// @Summary List products in a category
// @Description Paginated list with the price of each product's default configuration
// @Tags Products
// @Produce json
// @Param id path string true "Category id"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(12)
// @Success 200 {object} models.PaginationResponse
// @Router /categories/{id}/products [get]
func (ctrl *ProductController) ListCategory(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))

	products, meta, err := ctrl.products.ListCategory(c.Request.Context(), c.Param("id"), page, limit)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	c.JSON(200, models.PaginationResponse{
		Success: true,
		Message: "Products retrieved",
		Data:    products,
		Meta:    meta,
	})
}

// @Summary Get product detail
// @Description Product with its option lists, default selection and price
// @Tags Products
// @Produce json
// @Param slug path string true "Product slug"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{slug} [get]
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	detail, err := ctrl.products.GetProductDetail(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	c.JSON(200, gin.H{
		"success": true,
		"message": "Product retrieved",
		"data":    detail,
	})
}

// @Summary Quote a configuration
// @Description Price breakdown for a selection without touching the cart
// @Tags Products
// @Accept json
// @Produce json
// @Param slug path string true "Product slug"
// @Param request body models.SelectionRequest true "Selected options"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{slug}/quote [post]
func (ctrl *ProductController) Quote(c *gin.Context) {
	var req models.SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{
			"success": false,
			"message": "Invalid request",
			"error":   err.Error(),
		})
		return
	}

	quote, err := ctrl.products.Quote(c.Request.Context(), c.Param("slug"), req)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	c.JSON(200, gin.H{
		"success": true,
		"message": "Price calculated",
		"data":    quote,
	})
}
