package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quangvu-dev/cakeshop/internal/handlers"
)

type Deps struct {
	OrderHandler   *handlers.OrderHandler
	ProductHandler *handlers.ProductHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	api := e.Group("/api")

	orders := api.Group("/orders")
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.GET("", d.OrderHandler.ListOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.GET("/:id/status", d.OrderHandler.GetStatus)
	orders.PATCH("/:id/status", d.OrderHandler.UpdateStatus)
	orders.PATCH("/:id/address", d.OrderHandler.UpdateAddress)
	orders.DELETE("/:id", d.OrderHandler.DeleteOrder)

	products := api.Group("/products")
	products.POST("", d.ProductHandler.CreateProduct)
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.DELETE("/:id", d.ProductHandler.DeleteProduct)
	products.POST("/:id/options", d.ProductHandler.CreateOption)

	api.POST("/options/:id/restock", d.ProductHandler.Restock)
}
