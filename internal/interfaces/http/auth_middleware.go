package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Comanda-api/internal/application/dto"
	"github.com/jhoicas/Comanda-api/pkg/jwt"
)

// Locals keys para los datos del token en Fiber.
const (
	LocalUserID          = "user_id"
	LocalRole            = "role"
	LocalCountLocationID = "count_location_id"
)

// AuthMiddleware valida el Bearer Token de sesión y extrae UserID y Role a c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, errResp := bearerToken(c)
		if errResp != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(*errResp)
		}
		userID, role, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalUserID, userID)
		c.Locals(LocalRole, role)
		return c.Next()
	}
}

// CountTokenMiddleware valida el token de conteo (QR) emitido para una ubicación.
// El canal QR solo puede registrar conteos sobre esa ubicación; el actor queda
// registrado como el usuario que emitió el token.
func CountTokenMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, errResp := bearerToken(c)
		if errResp != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(*errResp)
		}
		issuerUserID, locationID, err := jwt.ParseCountToken(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token de conteo inválido o expirado"})
		}
		c.Locals(LocalUserID, issuerUserID)
		c.Locals(LocalCountLocationID, locationID)
		return c.Next()
	}
}

// RequireRoles restringe el acceso a los roles indicados. Se usa después de AuthMiddleware.
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol sin permiso para esta operación"})
	}
}

func bearerToken(c *fiber.Ctx) (string, *dto.ErrorResponse) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", &dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"}
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", &dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"}
	}
	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return "", &dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"}
	}
	return tokenString, nil
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	return localString(c, LocalUserID)
}

// GetRole devuelve el rol del contexto (después del middleware de auth).
func GetRole(c *fiber.Ctx) string {
	return localString(c, LocalRole)
}

// GetCountLocationID devuelve la ubicación autorizada por el token de conteo.
func GetCountLocationID(c *fiber.Ctx) string {
	return localString(c, LocalCountLocationID)
}

func localString(c *fiber.Ctx, key string) string {
	v := c.Locals(key)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
