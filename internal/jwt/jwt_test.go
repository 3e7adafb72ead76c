package jwt

import (
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"
)

type JWTTestSuite struct {
	suite.Suite
	auth      Auth
	secret    string
	sessionID string
	kind      string
}

func TestJWTSuite(t *testing.T) {
	suite.Run(t, new(JWTTestSuite))
}

func (s *JWTTestSuite) SetupTest() {
	s.secret = "test-secret"
	s.sessionID = "sess-123"
	s.kind = "watch"
	s.auth = NewAuth(s.secret)
}

func (s *JWTTestSuite) TestNewAuth() {
	auth := NewAuth(s.secret).(*jwtAuthImpl)
	s.NotNil(auth)
	s.Equal(jwt.SigningMethodHS256, auth.signingMethod)
	s.True(auth.allowedMethods["HS256"])
}

func (s *JWTTestSuite) TestSign_Successful() {
	token, err := s.auth.Sign(s.sessionID, s.kind)
	s.Require().NoError(err)
	s.NotEmpty(token)
	s.True(strings.HasPrefix(token, "eyJ"))
}

func (s *JWTTestSuite) TestSign_EmptySessionID() {
	token, err := s.auth.Sign("", s.kind)
	s.Require().ErrorIs(err, ErrInvalidRequest)
	s.Empty(token)
	s.Contains(err.Error(), "required")
}

func (s *JWTTestSuite) TestSign_EmptyKind() {
	token, err := s.auth.Sign(s.sessionID, "")
	s.Require().ErrorIs(err, ErrInvalidRequest)
	s.Empty(token)
}

func (s *JWTTestSuite) TestVerify_ValidToken() {
	token, err := s.auth.Sign(s.sessionID, s.kind)
	s.Require().NoError(err)

	claims, err := s.auth.Verify(token)
	s.Require().NoError(err)
	s.NotNil(claims)
	s.Equal(s.sessionID, claims.SessionID)
	s.Equal(s.kind, claims.Kind)
}

func (s *JWTTestSuite) TestVerify_EmptyToken() {
	claims, err := s.auth.Verify("")
	s.Require().ErrorIs(err, ErrNoToken)
	s.Nil(claims)
}

func (s *JWTTestSuite) TestVerify_InvalidTokenFormat() {
	claims, err := s.auth.Verify("invalid-token")
	s.Require().ErrorIs(err, ErrInvalidToken)
	s.Nil(claims)
}

func (s *JWTTestSuite) TestVerify_WrongSecret() {
	token, err := s.auth.Sign(s.sessionID, s.kind)
	s.Require().NoError(err)

	wrongAuth := NewAuth("wrong-secret")
	claims, err := wrongAuth.Verify(token)
	s.Require().ErrorIs(err, ErrInvalidToken)
	s.Nil(claims)
}

func (s *JWTTestSuite) TestAlgorithmMismatch_RejectHS384() {
	authHS384 := NewAuthWithAlgorithm(s.secret, jwt.SigningMethodHS384)
	token, err := authHS384.Sign(s.sessionID, s.kind)
	s.Require().NoError(err)

	claims, err := s.auth.Verify(token)
	s.Require().ErrorIs(err, ErrInvalidToken)
	s.Nil(claims)
	s.Contains(err.Error(), "unexpected signing method")
	s.Contains(err.Error(), "HS384")
}

func (s *JWTTestSuite) TestTokenMissingFields() {
	claims := &Payload{
		SessionID: s.sessionID,
		Kind:      "",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.secret))
	s.Require().NoError(err)

	verifiedClaims, err := s.auth.Verify(tokenString)
	s.Require().ErrorIs(err, ErrInvalidToken)
	s.Nil(verifiedClaims)
	s.Contains(err.Error(), "missing required fields")
}

func (s *JWTTestSuite) TestSignAndVerifyRoundTrip() {
	algorithms := []struct {
		name   string
		method jwt.SigningMethod
	}{
		{"HS256", jwt.SigningMethodHS256},
		{"HS384", jwt.SigningMethodHS384},
		{"HS512", jwt.SigningMethodHS512},
	}

	for _, alg := range algorithms {
		s.Run(alg.name, func() {
			auth := NewAuthWithAlgorithm(s.secret, alg.method)

			token, err := auth.Sign(s.sessionID, s.kind)
			s.Require().NoError(err)
			s.NotEmpty(token)

			claims, err := auth.Verify(token)
			s.Require().NoError(err)
			s.Equal(s.sessionID, claims.SessionID)
			s.Equal(s.kind, claims.Kind)
		})
	}
}
