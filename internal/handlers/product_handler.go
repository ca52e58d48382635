package handlers

import (
	"github.com/dafailyasa/salt-be-test/internal/models"
	"github.com/dafailyasa/salt-be-test/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes with the Fiber router.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Patch("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var in models.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return badRequestBody(err)
	}

	product, err := h.service.Create(c.UserContext(), &in)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
		"data":   product,
	})
}

// HandleGetProductByID returns a product, reporting whether it came from the cache.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, fromCache, err := h.service.FindByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
		"cache":  fromCache,
		"data":   product,
	})
}

// HandleUpdateProduct applies a partial update.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var in models.ProductUpdate
	if err := c.BodyParser(&in); err != nil {
		return badRequestBody(err)
	}

	product, err := h.service.Update(c.UserContext(), c.Params("id"), &in)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
		"data":   product,
	})
}

// HandleDeleteProduct removes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"deleted": true})
}

func badRequestBody(err error) error {
	return fiber.NewError(fiber.StatusBadRequest, "Invalid request body: "+err.Error())
}
