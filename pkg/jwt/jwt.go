package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Propósitos de token. Un token de sesión da acceso a la API protegida; un
// token de conteo solo habilita el registro de conteos físicos (canal QR) en
// una ubicación concreta y por poco tiempo.
const (
	PurposeSession    = "session"
	PurposeStockCount = "stock_count"
)

// Claims incluye los claims estándar JWT más los campos propios de la
// aplicación. Role permite decisiones RBAC sin consultar la DB; LocationID
// solo viene en tokens de conteo.
type Claims struct {
	jwt.RegisteredClaims
	UserID     string `json:"user_id"`
	Role       string `json:"role,omitempty"`
	Purpose    string `json:"purpose"`
	LocationID string `json:"location_id,omitempty"`
}

// Generate genera un token de sesión firmado con userID y role.
func Generate(secret, userID, role, issuer string, expMinutes int) (string, error) {
	return sign(secret, Claims{
		RegisteredClaims: registered(userID, issuer, expMinutes),
		UserID:           userID,
		Role:             role,
		Purpose:          PurposeSession,
	})
}

// GenerateCountToken genera un token de conteo QR: atado a una ubicación y
// con expiración corta. issuerUserID queda como subject para auditoría.
func GenerateCountToken(secret, issuerUserID, locationID, issuer string, expMinutes int) (string, error) {
	if locationID == "" {
		return "", fmt.Errorf("jwt: token de conteo sin ubicación")
	}
	return sign(secret, Claims{
		RegisteredClaims: registered(issuerUserID, issuer, expMinutes),
		UserID:           issuerUserID,
		Purpose:          PurposeStockCount,
		LocationID:       locationID,
	})
}

// Parse valida un token de sesión y devuelve userID y role.
func Parse(secret, tokenString string) (userID, role string, err error) {
	claims, err := parseClaims(secret, tokenString)
	if err != nil {
		return "", "", err
	}
	if claims.Purpose != PurposeSession {
		return "", "", fmt.Errorf("jwt: el token no es de sesión")
	}
	return claims.UserID, claims.Role, nil
}

// ParseCountToken valida un token de conteo y devuelve el usuario emisor y la
// ubicación a la que está atado.
func ParseCountToken(secret, tokenString string) (issuerUserID, locationID string, err error) {
	claims, err := parseClaims(secret, tokenString)
	if err != nil {
		return "", "", err
	}
	if claims.Purpose != PurposeStockCount || claims.LocationID == "" {
		return "", "", fmt.Errorf("jwt: el token no es de conteo")
	}
	return claims.UserID, claims.LocationID, nil
}

func registered(subject, issuer string, expMinutes int) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
	}
}

func sign(secret string, claims Claims) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func parseClaims(secret, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("claims inválidos")
	}
	return claims, nil
}
