package serverutils

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func signTestToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func TestJwtMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	app := fiber.New()
	app.Get("/guarded", JwtMiddleware, func(ctx *fiber.Ctx) error {
		return ctx.SendString(ctx.Locals("user_id").(string))
	})

	valid := signTestToken(t, "test-secret", jwt.MapClaims{
		"user_id": "7f1e9a2c",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid token passes", "Bearer " + valid, fiber.StatusOK},
		{"missing header rejected", "", fiber.StatusUnauthorized},
		{"non-bearer scheme rejected", "Basic abc", fiber.StatusUnauthorized},
		{"wrong secret rejected", "Bearer " + signTestToken(t, "other-secret", jwt.MapClaims{"user_id": "x"}), fiber.StatusUnauthorized},
		{"expired token rejected", "Bearer " + signTestToken(t, "test-secret", jwt.MapClaims{"user_id": "x", "exp": time.Now().Add(-time.Hour).Unix()}), fiber.StatusUnauthorized},
		{"missing user_id claim rejected", "Bearer " + signTestToken(t, "test-secret", jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}), fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/guarded", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			res, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			defer res.Body.Close()
			if res.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", res.StatusCode, tt.wantStatus)
			}
		})
	}
}
