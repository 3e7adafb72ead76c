package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Auth signs and verifies the page-view session tokens handed to browsers.
// These are unrelated to the room credentials issued by the token gateway.
type Auth interface {
	Sign(sessionID, kind string) (string, error)
	Verify(tokenString string) (*Payload, error)
}

// Payload binds a browser to one orchestrator instance. Kind tells which
// registry the ID lives in (watch session vs. creation flow).
type Payload struct {
	SessionID string `json:"sessionId"`
	Kind      string `json:"kind"`
	jwt.RegisteredClaims
}
