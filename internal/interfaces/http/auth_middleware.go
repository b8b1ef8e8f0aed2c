package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Concesionario-api/internal/application/dto"
	"github.com/jhoicas/Concesionario-api/internal/domain/entity"
	"github.com/jhoicas/Concesionario-api/pkg/jwt"
)

// localUser llave de c.Locals con el *entity.ActingUser autenticado.
const localUser = "acting_user"

// AuthMiddleware resuelve el usuario actual desde el Bearer Token JWT y lo deja en c.Locals.
// Sin header Authorization la petición sigue como anónima (el motor responde 401);
// un token mal formado, inválido o sin rol se rechaza aquí mismo.
func AuthMiddleware(jwtSecret, issuer string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Next()
		}
		scheme, tokenString, _ := strings.Cut(strings.TrimSpace(authHeader), " ")
		if !strings.EqualFold(scheme, "Bearer") {
			return unauthorized(c, "INVALID_TOKEN", "formato: Bearer <token>")
		}
		tokenString = strings.TrimSpace(tokenString)
		if tokenString == "" {
			return unauthorized(c, "MISSING_TOKEN", "token vacío")
		}
		userID, dealerID, role, err := jwt.Parse(jwtSecret, issuer, tokenString)
		if err != nil {
			return unauthorized(c, "INVALID_TOKEN", "token inválido o expirado")
		}
		if role == "" {
			return unauthorized(c, "MISSING_ROLE", "el token no incluye rol")
		}
		c.Locals(localUser, &entity.ActingUser{ID: userID, Role: role, DealerID: dealerID})
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: code, Error: msg})
}

// CurrentUser devuelve el usuario autenticado o nil (después del middleware de auth).
func CurrentUser(c *fiber.Ctx) *entity.ActingUser {
	u, _ := c.Locals(localUser).(*entity.ActingUser)
	return u
}
