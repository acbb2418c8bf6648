// internal/security/security.go
package security

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"portalbackend/internal/config"
	"portalbackend/internal/logger"
)

var (
	csrfTokens   = make(map[string]time.Time)
	csrfTokensMu sync.Mutex
	csrfTokenTTL = time.Hour * 1
)

// TokenInfo describes one issued session token.
type TokenInfo struct {
	Token     string
	StudentID string
	CreatedAt time.Time
}

var (
	accessTokens   = make(map[string]*TokenInfo)
	accessTokensMu sync.RWMutex
)

// GenerateAccessToken mints the opaque token the portal hands out when a
// session starts.
func GenerateAccessToken() (string, error) {
	bytes := make([]byte, 16)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

// StoreAccessToken registers a token for a student.
func StoreAccessToken(token, studentID string) {
	accessTokensMu.Lock()
	accessTokens[token] = &TokenInfo{
		Token:     token,
		StudentID: studentID,
		CreatedAt: time.Now(),
	}
	accessTokensMu.Unlock()
}

// ValidateAccessToken checks that a token exists and is younger than maxAge.
func ValidateAccessToken(token string, maxAge time.Duration) bool {
	accessTokensMu.RLock()
	defer accessTokensMu.RUnlock()

	info, ok := accessTokens[token]
	if !ok {
		return false
	}
	return time.Since(info.CreatedAt) <= maxAge
}

// GetTokenInfo returns the registered info for a token, or nil.
func GetTokenInfo(token string) *TokenInfo {
	accessTokensMu.RLock()
	defer accessTokensMu.RUnlock()
	return accessTokens[token]
}

// RevokeAccessToken drops a token, ending its session.
func RevokeAccessToken(token string) {
	accessTokensMu.Lock()
	delete(accessTokens, token)
	accessTokensMu.Unlock()
}

// GenerateCSRFToken generates a new CSRF token.
func GenerateCSRFToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// Can't securely continue if randomness fails
		panic("Failed to generate CSRF token: " + err.Error())
	}
	token := base64.StdEncoding.EncodeToString(b)

	csrfTokensMu.Lock()
	csrfTokens[token] = time.Now().Add(csrfTokenTTL)
	csrfTokensMu.Unlock()

	return token
}

// ValidateCSRFToken validates and consumes a CSRF token.
func ValidateCSRFToken(token string) bool {
	csrfTokensMu.Lock()
	defer csrfTokensMu.Unlock()

	expiry, ok := csrfTokens[token]
	if !ok || time.Now().After(expiry) {
		return false
	}
	delete(csrfTokens, token)
	return true
}

// CSRFTokenHandler generates and returns a CSRF token.
func CSRFTokenHandler(w http.ResponseWriter, r *http.Request) {
	logger.LogHTTPRequest(r)

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	token := GenerateCSRFToken()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"csrf_token": token})
}

// CleanExpiredTokens periodically removes expired CSRF tokens and stale
// access tokens. Runs as a background goroutine for the process lifetime.
func CleanExpiredTokens(accessTokenTTL time.Duration) {
	ticker := time.NewTicker(time.Minute * 5)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()

		csrfTokensMu.Lock()
		for token, expiry := range csrfTokens {
			if now.After(expiry) {
				delete(csrfTokens, token)
			}
		}
		csrfTokensMu.Unlock()

		accessTokensMu.Lock()
		for token, info := range accessTokens {
			if now.Sub(info.CreatedAt) > accessTokenTTL {
				delete(accessTokens, token)
			}
		}
		accessTokensMu.Unlock()

		logger.LogInfo("Token cleanup completed")
	}
}

// AddCORSHeaders adds CORS headers and handles OPTIONS requests globally.
func AddCORSHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", config.AllowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Access-Token")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
