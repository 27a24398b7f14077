package scrape

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultRequestsPerSecond is the politeness limit across all requests.
	DefaultRequestsPerSecond = 2
	// DefaultTimeout bounds a single request attempt.
	DefaultTimeout = 10 * time.Second
	// DefaultMaxAttempts is one request plus three retries.
	DefaultMaxAttempts = 4
	// DefaultBaseDelay is the first backoff delay; it doubles per retry.
	DefaultBaseDelay = time.Second
	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0 Safari/537.36"

	maxBodyBytes = 10 << 20
)

// Fetcher downloads pages sequentially under a shared rate limit.
// A Fetcher is safe for concurrent use; the limiter is shared.
type Fetcher struct {
	client      *http.Client
	limiter     *rate.Limiter
	timeout     time.Duration
	maxAttempts int
	baseDelay   time.Duration
	userAgent   string
	logger      *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher) error

// WithHTTPClient sets the HTTP client.
// Default is a client without an overall timeout; attempts are bounded by WithTimeout.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) error {
		if client != nil {
			f.client = client
		}
		return nil
	}
}

// WithRateLimit sets the request rate. rate.Inf disables limiting.
// Default is DefaultRequestsPerSecond with a burst of 1.
func WithRateLimit(limit rate.Limit, burst int) FetcherOption {
	return func(f *Fetcher) error {
		if burst < 1 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(limit, burst)
		return nil
	}
}

// WithRetry sets the number of attempts and the first backoff delay.
// Default is DefaultMaxAttempts and DefaultBaseDelay.
func WithRetry(maxAttempts int, baseDelay time.Duration) FetcherOption {
	return func(f *Fetcher) error {
		if maxAttempts < 1 {
			return ErrInvalidMaxAttempts
		}
		f.maxAttempts = maxAttempts
		f.baseDelay = baseDelay
		return nil
	}
}

// WithTimeout bounds each request attempt.
// Default is DefaultTimeout.
func WithTimeout(timeout time.Duration) FetcherOption {
	return func(f *Fetcher) error {
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", timeout)
		}
		f.timeout = timeout
		return nil
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) error {
		if ua != "" {
			f.userAgent = ua
		}
		return nil
	}
}

// WithFetcherLogger sets a custom logger.
// Default is slog.Default().
func WithFetcherLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
		return nil
	}
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts ...FetcherOption) (*Fetcher, error) {
	f := &Fetcher{
		client:      &http.Client{},
		limiter:     rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), 1),
		timeout:     DefaultTimeout,
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
		userAgent:   DefaultUserAgent,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	f.logger = f.logger.With("component", "fetcher")
	return f, nil
}

// response is a fully read HTTP response.
type response struct {
	body        []byte
	contentType string
}

// Get fetches url, retrying transient failures with exponential backoff.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, string, error) {
	var resp response
	err := RetryWithBackoff(ctx, func() error {
		r, err := f.attempt(ctx, url)
		if err != nil {
			return err
		}
		resp = r
		return nil
	}, f.maxAttempts, f.baseDelay, isTransient)
	if err != nil {
		return nil, "", err
	}
	return resp.body, resp.contentType, nil
}

// attempt performs one rate-limited, time-bounded GET.
func (f *Fetcher) attempt(ctx context.Context, url string) (response, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return response{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return response{}, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")

	res, err := f.client.Do(req)
	if err != nil {
		return response{}, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(res.Body, 64<<10))
		return response{}, &StatusError{StatusCode: res.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return response{}, err
	}
	return response{body: body, contentType: res.Header.Get("Content-Type")}, nil
}

// FetchPage fetches url and returns its visible text.
func (f *Fetcher) FetchPage(ctx context.Context, url string) (string, error) {
	body, contentType, err := f.Get(ctx, url)
	if err != nil {
		return "", err
	}

	mediaType := ""
	if contentType != "" {
		mediaType, _, _ = mime.ParseMediaType(contentType)
	}
	switch {
	case mediaType == "" || strings.Contains(mediaType, "html"):
		return PageText(body)
	case strings.HasPrefix(mediaType, "text/"):
		return strings.TrimSpace(string(body)), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedContent, mediaType)
	}
}

// FetchPerson fetches every url for one person and joins the page texts
// with a blank line. Failed URLs are returned as failures and skipped.
func (f *Fetcher) FetchPerson(ctx context.Context, name string, urls []string) (string, []Failure) {
	var (
		texts    []string
		failures []Failure
	)
	for _, url := range urls {
		if ctx.Err() != nil {
			failures = append(failures, Failure{Person: name, URL: url, Err: ctx.Err().Error()})
			continue
		}
		text, err := f.FetchPage(ctx, url)
		if err != nil {
			f.logger.Warn("failed to fetch page", "name", name, "url", url, "err", err)
			failures = append(failures, Failure{Person: name, URL: url, Err: err.Error()})
			continue
		}
		if text != "" {
			texts = append(texts, text)
		}
	}
	return strings.Join(texts, "\n\n"), failures
}
