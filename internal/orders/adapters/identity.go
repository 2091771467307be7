package adapters

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"go-storefront/pkg/auth"
	apperrors "go-storefront/pkg/errors"
	"go-storefront/pkg/logger"
)

const identityCacheSize = 4096

// HTTPIdentityResolver implements auth.Resolver by asking the auth service who
// a bearer token belongs to. Answers are cached by token hash for a short TTL.
type HTTPIdentityResolver struct {
	url    string
	client *http.Client
	cache  *expirable.LRU[string, auth.Identity]
	log    *logger.Logger
}

// NewHTTPIdentityResolver creates a resolver. A zero ttl disables caching.
func NewHTTPIdentityResolver(url string, ttl, timeout time.Duration, log *logger.Logger) *HTTPIdentityResolver {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	r := &HTTPIdentityResolver{
		url:    url,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
	if ttl > 0 {
		r.cache = expirable.NewLRU[string, auth.Identity](identityCacheSize, nil, ttl)
	}
	return r
}

// flexibleID accepts numeric and string user ids
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("user id must be a string or number")
	}
	*f = flexibleID(n.String())
	return nil
}

type identityBody struct {
	ID   flexibleID `json:"id"`
	Role string     `json:"role"`
}

type identityResponse struct {
	identityBody
	Data *identityBody `json:"data"`
}

// Resolve returns the identity behind token
func (r *HTTPIdentityResolver) Resolve(ctx context.Context, token string) (*auth.Identity, error) {
	if token == "" {
		return nil, apperrors.NewUnauthorized("missing bearer token")
	}

	key := tokenKey(token)
	if r.cache != nil {
		if id, ok := r.cache.Get(key); ok {
			return &id, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, apperrors.NewInternal("failed to build auth request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if traceID := logger.GetTraceID(ctx); traceID != "" {
		req.Header.Set("X-Trace-ID", traceID)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.log.WithContext(ctx).Error("auth service unreachable", zap.Error(err))
		return nil, apperrors.NewInternal("auth service unavailable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, apperrors.NewInternal("failed to read auth response", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, apperrors.NewUnauthorized("invalid or expired token")
	case resp.StatusCode != http.StatusOK:
		r.log.WithContext(ctx).Error("unexpected auth service response", zap.Int("status", resp.StatusCode))
		return nil, apperrors.NewInternal("auth service unavailable", fmt.Errorf("auth responded %d", resp.StatusCode))
	}

	var body identityResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, apperrors.NewInternal("invalid auth response", err)
	}
	resolved := body.identityBody
	if body.Data != nil {
		resolved = *body.Data
	}
	if resolved.ID == "" {
		return nil, apperrors.NewUnauthorized("invalid or expired token")
	}

	id := auth.Identity{UserID: string(resolved.ID), Role: strings.ToLower(resolved.Role)}
	if id.Role == "" {
		id.Role = auth.RoleCustomer
	}
	if r.cache != nil {
		r.cache.Add(key, id)
	}
	return &id, nil
}

func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
