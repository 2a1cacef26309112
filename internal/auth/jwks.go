package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/utafrali/EVCatalog/pkg/httpclient"
)

const defaultKeyTTL = time.Hour

// httpGetter is satisfied by httpclient.CircuitBreakerClient.
type httpGetter interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

type jwkSet struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// KeySet caches the RSA signing keys published at a JWKS URL. Keys are
// refetched when the cache is older than the max-age the endpoint advertised
// (or an hour), or when a token names an unknown kid.
type KeySet struct {
	client httpGetter
	url    string
	now    func() time.Time

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	expiresAt time.Time
}

// NewKeySet creates a key cache for the JWKS document at url.
func NewKeySet(client httpGetter, url string) *KeySet {
	return &KeySet{
		client: client,
		url:    url,
		now:    time.Now,
		keys:   map[string]*rsa.PublicKey{},
	}
}

// Key returns the public key for kid.
func (s *KeySet) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	s.mu.RLock()
	key := s.keys[kid]
	fresh := s.now().Before(s.expiresAt)
	s.mu.RUnlock()

	if key != nil && fresh {
		return key, nil
	}

	if err := s.refresh(ctx); err != nil {
		// Serve a stale key rather than rejecting every session while the
		// endpoint is down.
		if key != nil {
			return key, nil
		}
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	key = s.keys[kid]
	if key == nil {
		return nil, fmt.Errorf("%w: unknown key id %q", ErrInvalidToken, kid)
	}
	return key, nil
}

func (s *KeySet) refresh(ctx context.Context) error {
	resp, err := s.client.Get(ctx, s.url)
	if err != nil {
		return fmt.Errorf("fetch jwks: %w", err)
	}
	if !httpclient.IsSuccess(resp.StatusCode) {
		return fmt.Errorf("fetch jwks: %w", httpclient.ResponseError(resp, "jwks endpoint"))
	}
	defer func() { _ = resp.Body.Close() }()

	var set jwkSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return fmt.Errorf("decode jwks: %w", err)
	}

	next := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kid == "" || k.Kty != "RSA" {
			continue
		}
		pub, err := rsaPublicKey(k.N, k.E)
		if err != nil {
			continue
		}
		next[k.Kid] = pub
	}
	if len(next) == 0 {
		return fmt.Errorf("jwks contained no usable RSA keys")
	}

	s.mu.Lock()
	s.keys = next
	s.expiresAt = s.now().Add(maxAge(resp.Header.Get("Cache-Control")))
	s.mu.Unlock()
	return nil
}

// maxAge extracts max-age from a Cache-Control header.
func maxAge(header string) time.Duration {
	for _, directive := range strings.Split(header, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(directive), "=")
		if !ok || !strings.EqualFold(name, "max-age") {
			continue
		}
		secs, err := strconv.Atoi(value)
		if err != nil || secs <= 0 {
			break
		}
		return time.Duration(secs) * time.Second
	}
	return defaultKeyTTL
}

func rsaPublicKey(nB64, eB64 string) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(nB64)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}
	eb, err := base64.RawURLEncoding.DecodeString(eB64)
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}

	e := 0
	for _, b := range eb {
		e = e<<8 + int(b)
	}
	if e == 0 {
		return nil, fmt.Errorf("invalid exponent")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: e}, nil
}
