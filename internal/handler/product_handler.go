package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wearvault/storefront-service/internal/domain"
	"github.com/wearvault/storefront-service/internal/service"
)

type ProductHandler struct {
	catalog *service.CatalogService
	logger  *zap.Logger
}

func NewProductHandler(catalog *service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		logger:  logger,
	}
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req domain.CreateProductRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrProductExists) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "Product already exists",
			})
			return
		}

		h.logger.Error("Failed to create product",
			zap.String("product_id", req.ProductID),
			zap.Error(err))

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create product",
		})
		return
	}

	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get products",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID := c.Param("id")

	product, err := h.catalog.GetProduct(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
			return
		}

		h.logger.Error("Failed to get product",
			zap.String("product_id", productID),
			zap.Error(err))

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get product",
		})
		return
	}

	c.JSON(http.StatusOK, product)
}
