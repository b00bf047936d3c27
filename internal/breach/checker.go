// Package breach implements a k-anonymity lookup against a Pwned
// Passwords style range API.
//
// Only the first five hex characters of the password's SHA-1 digest are
// sent. The returned suffix list is searched locally, so neither the
// password nor its full digest leaves the process.
package breach

import (
	"bufio"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/securevault/internal/common"
	"github.com/dmitrijs2005/securevault/internal/logging"
)

const (
	DefaultAPIURL    = "https://api.pwnedpasswords.com/range"
	DefaultUserAgent = "SecureVault/1.0"

	prefixLen       = 5
	maxResponseSize = 2 << 20
)

// Verdict is the result of a check. It never carries the password or its
// digest and must not be persisted or logged.
type Verdict struct {
	Compromised bool
	Count       int
}

// RangeCache stores raw range responses keyed by prefix. Responses are
// public data, so caching them reveals nothing about a password.
type RangeCache interface {
	Get(ctx context.Context, prefix string) (string, bool)
	Set(ctx context.Context, prefix string, body string, ttl time.Duration) error
}

type Checker struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	cache      RangeCache
	cacheTTL   time.Duration
	retryDelay time.Duration
	log        logging.Logger
}

type Option func(*Checker)

// WithCache enables range caching for ttl.
func WithCache(c RangeCache, ttl time.Duration) Option {
	return func(ch *Checker) {
		ch.cache = c
		ch.cacheTTL = ttl
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(ch *Checker) { ch.httpClient = hc }
}

func WithUserAgent(ua string) Option {
	return func(ch *Checker) { ch.userAgent = ua }
}

func WithRetryDelay(d time.Duration) Option {
	return func(ch *Checker) { ch.retryDelay = d }
}

func NewChecker(baseURL string, timeout time.Duration, log logging.Logger, opts ...Option) *Checker {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	c := &Checker{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  DefaultUserAgent,
		httpClient: &http.Client{Timeout: timeout},
		retryDelay: 200 * time.Millisecond,
		log:        log.With("module", "breach"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Check reports whether password appears in the breach directory.
// Failures to reach the directory wrap common.ErrServiceUnavailable.
func (c *Checker) Check(ctx context.Context, password string) (Verdict, error) {
	sum := sha1.Sum([]byte(password))
	digest := strings.ToUpper(hex.EncodeToString(sum[:]))
	prefix, suffix := digest[:prefixLen], digest[prefixLen:]

	body, err := c.fetchRange(ctx, prefix)
	if err != nil {
		return Verdict{}, err
	}

	return search(body, suffix)
}

func (c *Checker) fetchRange(ctx context.Context, prefix string) (string, error) {
	if c.cache != nil {
		if body, ok := c.cache.Get(ctx, prefix); ok {
			return body, nil
		}
	}

	var (
		body string
		err  error
	)
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", common.ErrServiceUnavailable, ctx.Err())
			case <-time.After(c.retryDelay):
			}
		}

		body, err = c.get(ctx, prefix)
		if err == nil || !isRetryable(err) {
			break
		}
		c.log.Warn(ctx, "breach range request failed, retrying", "attempt", attempt+1, "error", err)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrServiceUnavailable, err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, prefix, body, c.cacheTTL); err != nil {
			c.log.Warn(ctx, "breach range cache write failed", "error", err)
		}
	}

	return body, nil
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

var errResponseTooLarge = errors.New("range response too large")

func isRetryable(err error) bool {
	if errors.Is(err, errResponseTooLarge) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500
	}
	return !errors.Is(err, context.Canceled)
}

func (c *Checker) get(ctx context.Context, prefix string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+prefix, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Add-Padding", "true")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &statusError{code: resp.StatusCode}
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return "", err
	}
	if len(b) > maxResponseSize {
		return "", errResponseTooLarge
	}
	return string(b), nil
}

// search scans "SUFFIX:COUNT" lines for suffix. Padding rows have a zero
// count and never match.
func search(body, suffix string) (Verdict, error) {
	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		s, n, ok := strings.Cut(line, ":")
		if !ok || !strings.EqualFold(s, suffix) {
			continue
		}

		count, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return Verdict{}, fmt.Errorf("%w: malformed range response", common.ErrServiceUnavailable)
		}
		if count == 0 {
			continue
		}
		return Verdict{Compromised: true, Count: count}, nil
	}
	if err := sc.Err(); err != nil {
		return Verdict{}, fmt.Errorf("%w: %v", common.ErrServiceUnavailable, err)
	}

	return Verdict{}, nil
}
