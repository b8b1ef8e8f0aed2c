package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims incluye los claims estándar JWT más los campos propios de la aplicación.
// DealerID vacío identifica a un usuario de plataforma (sin concesionario).
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	DealerID string `json:"dealer_id,omitempty"`
	Role     string `json:"role"` // "super_admin" | "dealer_admin" | "technician" | "sales" | ...
}

// Generate genera un token JWT firmado que incluye userID, dealerID y role.
// Los tokens de producción los emite el servicio de identidad; esto sirve a pruebas y herramientas.
func Generate(secret, userID, dealerID, role, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:   userID,
		DealerID: dealerID,
		Role:     role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida el token y devuelve userID, dealerID y role.
// Retorna error si el token es inválido, expirado, tiene firma incorrecta o
// (con issuer no vacío) fue emitido por otro emisor.
func Parse(secret, issuer, tokenString string) (userID, dealerID, role string, err error) {
	if secret == "" {
		return "", "", "", fmt.Errorf("jwt: secret vacío")
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return "", "", "", err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", "", "", fmt.Errorf("claims inválidos")
	}
	userID = claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	return userID, claims.DealerID, claims.Role, nil
}
