package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strconv"
	"time"

	"github.com/fernet/fernet-go"

	"github.com/ndewijer/Trading-Analytics-Engine/internal/api/response"
)

// Headers carrying internal-caller credentials.
const (
	APIKeyHeader    = "X-API-Key"
	TimeTokenHeader = "X-Time-Token"
)

// TimeTokenTTL is how long an issued time token is accepted.
const TimeTokenTTL = 5 * time.Minute

// NewAPIKeyMiddleware authenticates internal callers against the configured key.
// An empty key rejects every request with 500, since no caller could be verified.
func NewAPIKeyMiddleware(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return requireAPIKey(apiKey, next)
	}
}

// requireAPIKey checks the X-API-Key header and a fernet time token issued with
// the same key. The token proves the caller holds the key at request time and
// expires after TimeTokenTTL.
func requireAPIKey(key string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if key == "" {
			response.RespondError(w, http.StatusInternalServerError, "authentication error", "Authentication not loaded")
			return
		}

		provided := r.Header.Get(APIKeyHeader)
		if provided == "" {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing API key")
			return
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Invalid API key")
			return
		}

		token := r.Header.Get(TimeTokenHeader)
		if token == "" {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing Time token")
			return
		}
		if !verifyTimeToken(key, token) {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Time token is invalid or expired")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GenerateTimeToken issues a fernet token carrying the current Unix time,
// encrypted with a key derived from apiKey. Returns an empty string on failure.
func GenerateTimeToken(apiKey string) string {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	token, err := fernet.EncryptAndSign([]byte(now), fernetKey(apiKey))
	if err != nil {
		return ""
	}
	return string(token)
}

func verifyTimeToken(apiKey, token string) bool {
	msg := fernet.VerifyAndDecrypt([]byte(token), TimeTokenTTL, []*fernet.Key{fernetKey(apiKey)})
	if msg == nil {
		return false
	}
	_, err := strconv.ParseInt(string(msg), 10, 64)
	return err == nil
}

func fernetKey(apiKey string) *fernet.Key {
	k := fernet.Key(sha256.Sum256([]byte(apiKey)))
	return &k
}
