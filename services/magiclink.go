// services/magiclink.go
package services

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const magicLinkTTL = 48 * time.Hour

// CreateMagicLink builds a passwordless onboarding URL: a short-lived signed
// token the portal exchanges for a session.
func CreateMagicLink(email string) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", errors.New("JWT_SECRET not set")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     email,
		"purpose": "onboarding",
		"exp":     time.Now().Add(magicLinkTTL).Unix(),
		"iat":     time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	base := os.Getenv("PORTAL_BASE_URL")
	if base == "" {
		base = "https://portal.teravolta.energy"
	}
	return fmt.Sprintf("%s/onboarding?token=%s", base, signed), nil
}

// ValidateMagicLink parses an onboarding token and returns the email it was
// issued for.
func ValidateMagicLink(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid onboarding token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["purpose"] != "onboarding" {
		return "", errors.New("invalid onboarding token")
	}
	email, _ := claims["sub"].(string)
	if email == "" {
		return "", errors.New("invalid onboarding token")
	}
	return email, nil
}
