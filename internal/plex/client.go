package plex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"nextair/internal/logging"
)

const (
	defaultHTTPTimeout = 30 * time.Second

	connectRetries = 5
	connectDelay   = 10 * time.Second

	// streamTypeAudio is Plex's stream type discriminator for audio tracks.
	streamTypeAudio = 2
	// libtypeShow selects show-level items when listing a section.
	libtypeShow = "2"
)

// Show is one series in the enumerated library.
type Show struct {
	RatingKey    string
	Title        string
	EpisodeCount int
}

// Config describes the Plex client configuration.
type Config struct {
	URL        string
	Token      string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to a Plex Media Server over its JSON API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
	sleep   func(context.Context, time.Duration) error
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if base == "" {
		return nil, errors.New("plex: server url is required")
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("plex: auth token is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		baseURL: base,
		token:   cfg.Token,
		http:    httpClient,
		logger:  logging.NewComponentLogger(cfg.Logger, "plex"),
		sleep:   sleepContext,
	}, nil
}

// Connect verifies the server is reachable, retrying a few times before
// giving up so a briefly restarting server does not kill a scheduled run.
func (c *Client) Connect(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= connectRetries; attempt++ {
		var identity struct {
			MediaContainer struct {
				MachineIdentifier string `json:"machineIdentifier"`
			} `json:"MediaContainer"`
		}
		lastErr = c.get(ctx, "/identity", nil, &identity)
		if lastErr == nil {
			c.logger.Info("connected to plex", logging.Int("attempt", attempt))
			return nil
		}
		if attempt < connectRetries {
			c.logger.Warn("plex connection failed, retrying",
				logging.Error(lastErr),
				logging.Int("attempt", attempt),
				logging.Duration("delay", connectDelay))
			if err := c.sleep(ctx, connectDelay); err != nil {
				return err
			}
		}
	}
	return fmt.Errorf("plex: connect after %d attempts: %w", connectRetries, lastErr)
}

// Shows lists all series in the named library section in server order.
func (c *Client) Shows(ctx context.Context, library string) ([]Show, error) {
	key, err := c.sectionKey(ctx, library)
	if err != nil {
		return nil, err
	}

	var payload struct {
		MediaContainer struct {
			Metadata []struct {
				RatingKey string `json:"ratingKey"`
				Title     string `json:"title"`
				LeafCount int    `json:"leafCount"`
			} `json:"Metadata"`
		} `json:"MediaContainer"`
	}
	params := url.Values{"type": {libtypeShow}}
	if err := c.get(ctx, "/library/sections/"+key+"/all", params, &payload); err != nil {
		return nil, err
	}

	shows := make([]Show, 0, len(payload.MediaContainer.Metadata))
	for _, item := range payload.MediaContainer.Metadata {
		if item.Title == "" {
			continue
		}
		shows = append(shows, Show{
			RatingKey:    item.RatingKey,
			Title:        item.Title,
			EpisodeCount: item.LeafCount,
		})
	}
	return shows, nil
}

// EpisodeAudioTags returns one slice of audio-stream language tags per
// episode of the show, in episode order.
func (c *Client) EpisodeAudioTags(ctx context.Context, ratingKey string) ([][]string, error) {
	var payload struct {
		MediaContainer struct {
			Metadata []struct {
				Media []struct {
					Part []struct {
						Stream []struct {
							StreamType   int    `json:"streamType"`
							LanguageTag  string `json:"languageTag"`
							LanguageCode string `json:"languageCode"`
							Language     string `json:"language"`
						} `json:"Stream"`
					} `json:"Part"`
				} `json:"Media"`
			} `json:"Metadata"`
		} `json:"MediaContainer"`
	}
	if err := c.get(ctx, "/library/metadata/"+ratingKey+"/allLeaves", nil, &payload); err != nil {
		return nil, err
	}

	episodes := make([][]string, 0, len(payload.MediaContainer.Metadata))
	for _, episode := range payload.MediaContainer.Metadata {
		var tags []string
		for _, media := range episode.Media {
			for _, part := range media.Part {
				for _, stream := range part.Stream {
					if stream.StreamType != streamTypeAudio {
						continue
					}
					tag := stream.LanguageTag
					if tag == "" {
						tag = stream.LanguageCode
					}
					if tag == "" {
						tag = stream.Language
					}
					tags = append(tags, tag)
				}
			}
		}
		episodes = append(episodes, tags)
	}
	return episodes, nil
}

func (c *Client) sectionKey(ctx context.Context, library string) (string, error) {
	var payload struct {
		MediaContainer struct {
			Directory []struct {
				Key   string `json:"key"`
				Title string `json:"title"`
			} `json:"Directory"`
		} `json:"MediaContainer"`
	}
	if err := c.get(ctx, "/library/sections", nil, &payload); err != nil {
		return "", err
	}
	for _, section := range payload.MediaContainer.Directory {
		if strings.EqualFold(section.Title, library) {
			return section.Key, nil
		}
	}
	return "", fmt.Errorf("plex: library section %q not found", library)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("plex: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Plex-Token", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("plex: request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("plex: %s returned %s: %s", path, resp.Status, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("plex: decode %s response: %w", path, err)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
