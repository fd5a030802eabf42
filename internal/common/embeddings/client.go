// internal/common/embeddings/client.go
package embeddings

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"phalanx-matcher/internal/common/config"
	apperrors "phalanx-matcher/internal/common/errors"
	commonhttp "phalanx-matcher/internal/common/http"
	"phalanx-matcher/internal/common/logger"
	"phalanx-matcher/internal/common/metrics"
	"phalanx-matcher/internal/models"

	"golang.org/x/time/rate"
)

// MaxInputChars caps the text sent to the provider (~8k tokens).
const MaxInputChars = 32000

var (
	ErrEmptyText        = errors.New("embedding text cannot be empty")
	ErrInvalidDimension = errors.New("invalid embedding dimension")
)

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

type embeddingRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	EncodingFormat string `json:"encoding_format"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// Client calls an OpenAI compatible /embeddings endpoint.
type Client struct {
	http      *commonhttp.Client
	cfg       config.EmbeddingsConfig
	limiter   *rate.Limiter
	logger    logger.Logger
	baseDelay time.Duration
}

func NewClient(cfg config.EmbeddingsConfig, log logger.Logger) *Client {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 3000
	}
	burst := rpm / 60
	if burst < 1 {
		burst = 1
	}

	return &Client{
		http:      commonhttp.NewClient(config.GetDuration(cfg.Timeout)),
		cfg:       cfg,
		limiter:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), burst),
		logger:    log.WithFields(map[string]interface{}{"component": "embeddings"}),
		baseDelay: time.Second,
	}
}

// Embed returns the embedding for text, retrying rate limits and server
// errors with exponential backoff.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewInvalidInputError(ErrEmptyText.Error())
	}
	text = truncate(text, MaxInputChars)

	req := embeddingRequest{Model: c.cfg.Model, Input: text, EncodingFormat: "float"}
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/embeddings"

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, apperrors.NewEmbeddingGenerationFailedError(err)
		}

		var resp embeddingResponse
		err := c.http.PostJSON(ctx, url, headers, req, &resp)
		if err == nil {
			vec, verr := c.extract(resp)
			if verr != nil {
				metrics.EmbeddingRequests.WithLabelValues("invalid").Inc()
				return nil, apperrors.NewEmbeddingGenerationFailedError(verr)
			}
			metrics.EmbeddingRequests.WithLabelValues("success").Inc()
			c.logger.Debug("embedding generated", map[string]interface{}{
				"tokens":  resp.Usage.TotalTokens,
				"attempt": attempt + 1,
			})
			return vec, nil
		}

		lastErr = err
		var statusErr *commonhttp.StatusError
		retryable := errors.As(err, &statusErr) && statusErr.Temporary()
		if !retryable || attempt == c.cfg.MaxRetries {
			break
		}

		delay := c.baseDelay * time.Duration(1<<attempt)
		if statusErr.RetryAfter > delay {
			delay = statusErr.RetryAfter
		}
		c.logger.Warn("embedding request failed, retrying", map[string]interface{}{
			"status":  statusErr.StatusCode,
			"attempt": attempt + 1,
			"delay":   delay.String(),
		})

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, apperrors.NewEmbeddingGenerationFailedError(ctx.Err())
		}
	}

	var statusErr *commonhttp.StatusError
	if errors.As(lastErr, &statusErr) && statusErr.StatusCode == http.StatusTooManyRequests {
		metrics.EmbeddingRequests.WithLabelValues("rate_limited").Inc()
		return nil, apperrors.NewEmbeddingRateLimitedError(lastErr)
	}
	metrics.EmbeddingRequests.WithLabelValues("error").Inc()
	return nil, apperrors.NewEmbeddingGenerationFailedError(lastErr)
}

func (c *Client) extract(resp embeddingResponse) ([]float64, error) {
	if len(resp.Data) == 0 {
		return nil, errors.New("embedding response has no data")
	}
	vec := resp.Data[0].Embedding
	if c.cfg.Dimensions > 0 && len(vec) != c.cfg.Dimensions {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrInvalidDimension, c.cfg.Dimensions, len(vec))
	}
	return vec, nil
}

// EmbedFounder embeds the founder's profile text and returns the vector
// together with the text that produced it.
func EmbedFounder(ctx context.Context, e Embedder, f *models.Founder) ([]float64, string, error) {
	text := FounderEmbeddingText(f)
	vec, err := e.Embed(ctx, text)
	return vec, text, err
}

// EmbedFunder is EmbedFounder for funder profiles.
func EmbedFunder(ctx context.Context, e Embedder, f *models.Funder) ([]float64, string, error) {
	text := FunderEmbeddingText(f)
	vec, err := e.Embed(ctx, text)
	return vec, text, err
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
