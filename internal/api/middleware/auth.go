package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// LocalClientID is the key holding the authenticated client's key hash prefix.
const LocalClientID = "client_id"

// APIKeyAuth accepts "Authorization: Bearer <key>" or "X-API-Key: <key>".
// With no keys configured every request passes.
func APIKeyAuth(keys []string) fiber.Handler {
	hashes := make([][]byte, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			sum := sha256.Sum256([]byte(k))
			hashes = append(hashes, sum[:])
		}
	}

	return func(c *fiber.Ctx) error {
		if len(hashes) == 0 {
			return c.Next()
		}

		apiKey := extractBearerToken(c)
		if apiKey == "" {
			apiKey = strings.TrimSpace(c.Get("X-API-Key"))
		}
		if apiKey == "" {
			return domain.ErrUnauthorized
		}

		sum := sha256.Sum256([]byte(apiKey))
		matched := 0
		for _, h := range hashes {
			matched |= subtle.ConstantTimeCompare(sum[:], h)
		}
		if matched != 1 {
			return domain.ErrUnauthorized
		}

		c.Locals(LocalClientID, hashAPIKey(apiKey)[:12])
		return c.Next()
	}
}

// extractBearerToken extracts token from Authorization header
func extractBearerToken(c *fiber.Ctx) string {
	auth := c.Get("Authorization")
	if auth == "" {
		return ""
	}

	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func hashAPIKey(apiKey string) string {
	hash := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(hash[:])
}
