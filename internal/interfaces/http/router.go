package http

import (
	"github.com/gofiber/fiber/v2"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Resources *ResourceHandler
	JWTSecret string
	JWTIssuer string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	v1 := app.Group("/api/v1", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	h := deps.Resources
	v1.Get("/_resources", h.Resources)
	v1.Get("/:resource", h.List)
	v1.Post("/:resource", h.Create)
	v1.Get("/:resource/:id", h.Read)
	v1.Put("/:resource/:id", h.Update)
	v1.Patch("/:resource/:id", h.Update)
	v1.Delete("/:resource/:id", h.Delete)
}
