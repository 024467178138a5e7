package server

import (
	"context"
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"

	"github.com/gravitas-games/hexlands/internal/config"
	"github.com/gravitas-games/hexlands/pkg/models"
)

// JWTValidator handles JWT token validation
type JWTValidator struct {
	config    *config.Config
	publicKey *ecdsa.PublicKey
	keyMu     sync.RWMutex
	redis     *redis.Client
	client    *http.Client
}

// Claims represents JWT token claims from the login server
type Claims struct {
	UserID      int64  `json:"user_id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	Permissions int64  `json:"permissions"`
	Activated   int64  `json:"activated"`
	jwt.RegisteredClaims
}

// NewJWTValidator creates a validator, fetching the public key once before returning
func NewJWTValidator(ctx context.Context, cfg *config.Config, redisClient *redis.Client) (*JWTValidator, error) {
	validator := &JWTValidator{
		config: cfg,
		redis:  redisClient,
		client: &http.Client{Timeout: 10 * time.Second},
	}

	if err := validator.RefreshPublicKey(ctx); err != nil {
		return nil, fmt.Errorf("failed to fetch public key: %w", err)
	}

	go validator.periodicKeyRefresh(ctx)

	log.Println("JWT validator initialized")
	return validator, nil
}

// RefreshPublicKey fetches the PEM public key from the configured URL
func (v *JWTValidator) RefreshPublicKey(ctx context.Context) error {
	log.Printf("Fetching public key from %s", v.config.JWT.PublicKeyURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.config.JWT.PublicKeyURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build public key request: %w", err)
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch public key: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("public key endpoint returned status %d", resp.StatusCode)
	}

	keyData, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read public key: %w", err)
	}

	key, err := parsePublicKey(keyData)
	if err != nil {
		return err
	}
	v.setPublicKey(key)

	log.Println("Public key refreshed successfully")
	return nil
}

func parsePublicKey(keyData []byte) (*ecdsa.PublicKey, error) {
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

func (v *JWTValidator) setPublicKey(key *ecdsa.PublicKey) {
	v.keyMu.Lock()
	v.publicKey = key
	v.keyMu.Unlock()
}

// periodicKeyRefresh refreshes the public key until ctx is cancelled
func (v *JWTValidator) periodicKeyRefresh(ctx context.Context) {
	refreshInterval := time.Duration(v.config.JWT.PublicKeyRefreshHrs) * time.Hour

	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := v.RefreshPublicKey(ctx); err != nil {
				log.Printf("Failed to refresh public key: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// ValidateToken validates a JWT token and returns player information
func (v *JWTValidator) ValidateToken(ctx context.Context, tokenString string) (*models.Player, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		v.keyMu.RLock()
		defer v.keyMu.RUnlock()
		if v.publicKey == nil {
			return nil, fmt.Errorf("no public key loaded")
		}
		return v.publicKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	if claims.Issuer != v.config.JWT.Issuer {
		return nil, fmt.Errorf("invalid issuer: expected %s, got %s", v.config.JWT.Issuer, claims.Issuer)
	}

	if claims.Activated == 0 {
		return nil, fmt.Errorf("user not activated")
	}
	if claims.Activated == -1 {
		return nil, fmt.Errorf("user is banned")
	}

	userIDStr := strconv.FormatInt(claims.UserID, 10)
	if v.redis != nil {
		blacklistKey := v.config.Redis.BlacklistPrefix + userIDStr
		isBlacklisted, err := v.redis.Exists(ctx, blacklistKey).Result()
		if err != nil {
			// Don't fail authentication if Redis is down
			log.Printf("Warning: Failed to check blacklist: %v", err)
		} else if isBlacklisted > 0 {
			return nil, fmt.Errorf("token is blacklisted")
		}
	}

	return &models.Player{
		ID:          userIDStr,
		Username:    claims.Username,
		Email:       claims.Email,
		Permissions: claims.Permissions,
		Activated:   claims.Activated,
	}, nil
}

// extractTokenFromHeader extracts the JWT from a WebSocket upgrade request
func extractTokenFromHeader(r *http.Request) string {
	// Sec-WebSocket-Protocol: "access_token, <token>"
	if protocols := r.Header.Get("Sec-WebSocket-Protocol"); protocols != "" {
		parts := splitAndTrim(protocols, ",")
		if len(parts) == 2 && parts[0] == "access_token" {
			return parts[1]
		}
	}

	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") && len(auth) > len("Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}

	// Query parameter is the least preferred option
	return r.URL.Query().Get("token")
}

func splitAndTrim(s, sep string) []string {
	var result []string
	for _, part := range strings.Split(s, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
