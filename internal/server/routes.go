package server

import (
	"shopapp/internal/config"
	"shopapp/internal/handler"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(
	e *echo.Echo,
	cfg config.Config,
	authH *handler.AuthHandler,
	productH *handler.ProductHandler,
	cartH *handler.CartHandler,
) {
	api := e.Group("/api")

	authH.RegisterRoutes(api.Group("/auth"))
	productH.RegisterRoutes(api.Group("/products"), cfg)
	cartH.RegisterRoutes(api.Group("/cart"), cfg)
}
