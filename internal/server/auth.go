package server

import (
	"context"
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gravitas-games/minesweeper/internal/config"
	"github.com/gravitas-games/minesweeper/pkg/models"
)

var (
	errTokenBlacklisted = errors.New("token is blacklisted")
	errMissingToken     = errors.New("missing authentication token")
)

// JWTValidator handles JWT token validation
type JWTValidator struct {
	issuer    string
	prefix    string
	publicKey *ecdsa.PublicKey
	redis     *redis.Client // nil disables the blacklist
	logger    *zap.Logger
}

// Claims represents the JWT claims a player token carries
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// NewJWTValidator creates a validator from the auth and redis sections
func NewJWTValidator(cfg *config.Config, redisClient *redis.Client, logger *zap.Logger) (*JWTValidator, error) {
	keyData, err := os.ReadFile(cfg.Auth.PublicKeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key: %w", err)
	}

	publicKey, err := ParsePublicKey(keyData)
	if err != nil {
		return nil, err
	}

	logger.Info("JWT validator initialized", zap.String("issuer", cfg.Auth.Issuer))
	return &JWTValidator{
		issuer:    cfg.Auth.Issuer,
		prefix:    cfg.Redis.BlacklistPrefix,
		publicKey: publicKey,
		redis:     redisClient,
		logger:    logger,
	}, nil
}

// ParsePublicKey decodes a PEM encoded ECDSA public key
func ParsePublicKey(keyData []byte) (*ecdsa.PublicKey, error) {
	block, _ := pem.Decode(keyData)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}

	pubKey, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	ecdsaKey, ok := pubKey.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("public key is not ECDSA")
	}
	return ecdsaKey, nil
}

// ValidateToken validates a JWT token and returns player information
func (v *JWTValidator) ValidateToken(ctx context.Context, tokenString string) (*models.Player, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.publicKey, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	if v.issuer != "" && claims.Issuer != v.issuer {
		return nil, fmt.Errorf("invalid issuer: expected %s, got %s", v.issuer, claims.Issuer)
	}

	userID := strconv.FormatInt(claims.UserID, 10)
	if err := v.checkBlacklist(ctx, userID); err != nil {
		return nil, err
	}

	return &models.Player{
		ID:       userID,
		Username: claims.Username,
	}, nil
}

func (v *JWTValidator) checkBlacklist(ctx context.Context, userID string) error {
	if v.redis == nil {
		return nil
	}

	n, err := v.redis.Exists(ctx, v.prefix+userID).Result()
	if err != nil {
		// fail open while redis is unavailable
		v.logger.Warn("Failed to check blacklist", zap.Error(err))
		return nil
	}
	if n > 0 {
		return errTokenBlacklisted
	}
	return nil
}

// guestPlayer builds an identity for unauthenticated connections
func guestPlayer() *models.Player {
	id := uuid.NewString()
	return &models.Player{
		ID:       id,
		Username: "guest-" + id[:8],
		Guest:    true,
	}
}

// extractToken pulls a bearer token from the Authorization header or the
// token query parameter
func extractToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return r.URL.Query().Get("token")
}

// authenticate resolves the player behind a websocket upgrade request
func (s *Server) authenticate(r *http.Request) (*models.Player, error) {
	if s.validator == nil {
		return guestPlayer(), nil
	}

	token := extractToken(r)
	if token == "" {
		return nil, errMissingToken
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	return s.validator.ValidateToken(ctx, token)
}
