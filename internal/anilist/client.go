package anilist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"nextair/internal/logging"
	"nextair/internal/rategate"
)

const (
	defaultBaseURL     = "https://graphql.anilist.co"
	defaultPerPage     = 10
	defaultHTTPTimeout = 30 * time.Second

	// transportRetryDelay is the fixed pause after connection-level failures.
	// This retry path is uncapped on purpose: the batch runs on a schedule,
	// so it is bounded by run frequency rather than user-facing latency.
	transportRetryDelay = 2 * time.Second
)

const searchQuery = `query ($search: String, $perPage: Int, $formats: [MediaFormat]) {
  Page(perPage: $perPage) {
    media(search: $search, type: ANIME, sort: POPULARITY_DESC, format_in: $formats) {
      id
      title { romaji english native }
      synonyms
      format
      status
      averageScore
      nextAiringEpisode { airingAt episode }
    }
  }
}`

const byIDQuery = `query ($id: Int) {
  Media(id: $id, type: ANIME) {
    id
    title { romaji english native }
    synonyms
    format
    status
    averageScore
    nextAiringEpisode { airingAt episode }
  }
}`

// APIError is an error envelope returned in an otherwise successful response
// body. It marks an upstream semantic failure: the title degrades to an
// unresolved result instead of aborting the batch.
type APIError struct {
	Messages []string
}

func (e *APIError) Error() string {
	if len(e.Messages) == 0 {
		return "anilist: api error"
	}
	return "anilist: " + strings.Join(e.Messages, "; ")
}

// ErrNotFound reports a by-ID lookup whose record does not exist.
var ErrNotFound = errors.New("anilist: media not found")

// Config describes the AniList client configuration.
type Config struct {
	Token      string
	BaseURL    string
	PerPage    int
	Formats    []string
	Gate       *rategate.Gate
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client wraps the AniList GraphQL endpoint.
type Client struct {
	token   string
	baseURL string
	perPage int
	formats []string
	gate    *rategate.Gate
	http    *http.Client
	logger  *slog.Logger
}

// New creates a Client from the supplied configuration. The auth token and
// rate gate are required.
func New(cfg Config) (*Client, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("anilist: auth token is required")
	}
	if cfg.Gate == nil {
		return nil, errors.New("anilist: rate gate is required")
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	perPage := cfg.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		token:   token,
		baseURL: strings.TrimRight(base, "/"),
		perPage: perPage,
		formats: cfg.Formats,
		gate:    cfg.Gate,
		http:    httpClient,
		logger:  logging.NewComponentLogger(cfg.Logger, "anilist"),
	}, nil
}

// Search returns the catalog records matching the query title.
func (c *Client) Search(ctx context.Context, title string) ([]Media, error) {
	variables := map[string]any{
		"search":  title,
		"perPage": c.perPage,
	}
	if len(c.formats) > 0 {
		variables["formats"] = c.formats
	}

	var payload struct {
		Page struct {
			Media []Media `json:"media"`
		} `json:"Page"`
	}
	if err := c.do(ctx, searchQuery, variables, &payload); err != nil {
		return nil, err
	}
	return payload.Page.Media, nil
}

// MediaByID fetches a single catalog record, used by integer overrides.
func (c *Client) MediaByID(ctx context.Context, id int) (Media, error) {
	var payload struct {
		Media *Media `json:"Media"`
	}
	if err := c.do(ctx, byIDQuery, map[string]any{"id": id}, &payload); err != nil {
		return Media{}, err
	}
	if payload.Media == nil {
		return Media{}, ErrNotFound
	}
	return *payload.Media, nil
}

type graphqlError struct {
	Message string `json:"message"`
}

// do issues one GraphQL request through the rate gate, retrying transport
// failures and 429s indefinitely. Other HTTP failures and error envelopes are
// returned to the caller.
func (c *Client) do(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return fmt.Errorf("anilist: encode request: %w", err)
	}

	for {
		if err := c.gate.Acquire(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("anilist: build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("transport failure, retrying", logging.Error(err))
			if err := c.gate.Sleep(ctx, transportRetryDelay); err != nil {
				return err
			}
			continue
		}

		data, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()
		rate := rategate.ParseResponse(resp.StatusCode, resp.Header)
		c.gate.Record(rate)

		if resp.StatusCode == http.StatusTooManyRequests {
			delay := c.gate.RetryDelay(rate)
			c.logger.Warn("rate limited, backing off", logging.Duration("delay", delay))
			if err := c.gate.Sleep(ctx, delay); err != nil {
				return err
			}
			continue
		}
		if readErr != nil {
			c.logger.Warn("transport failure reading response, retrying", logging.Error(readErr))
			if err := c.gate.Sleep(ctx, transportRetryDelay); err != nil {
				return err
			}
			continue
		}
		if resp.StatusCode >= 400 {
			return fmt.Errorf("anilist: request failed (%s): %s", resp.Status, strings.TrimSpace(string(data)))
		}

		var envelope struct {
			Data   json.RawMessage `json:"data"`
			Errors []graphqlError  `json:"errors"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return fmt.Errorf("anilist: decode response: %w", err)
		}
		if len(envelope.Errors) > 0 {
			apiErr := &APIError{Messages: make([]string, 0, len(envelope.Errors))}
			for _, e := range envelope.Errors {
				apiErr.Messages = append(apiErr.Messages, e.Message)
			}
			return apiErr
		}
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("anilist: decode data: %w", err)
		}
		return nil
	}
}
