package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"wikitextifier/pkg/config"
	"wikitextifier/pkg/model"
	"wikitextifier/pkg/request"
)

// Fetcher is the remote knowledge-base boundary consumed by the resolver.
type Fetcher interface {
	FetchItem(ctx context.Context, id model.EntityID) (*model.RawItem, error)
	FetchLabels(ctx context.Context, ids []model.EntityID, langs []string) (map[model.EntityID]EntityLabels, error)
}

// EntityLabels holds the per-language labels and descriptions returned
// for one entity.
type EntityLabels struct {
	Labels       map[string]string
	Descriptions map[string]string
}

// Client talks to the wbgetentities endpoint of a Wikibase instance.
type Client struct {
	request     *request.Client
	APIEndpoint string
	BatchSize   int
	Logger      *slog.Logger
}

// NewClient creates a new Wikidata client.
func NewClient(r *request.Client, cfg config.WikidataConfig, logger *slog.Logger) *Client {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Client{
		request:     r,
		APIEndpoint: cfg.APIEndpoint,
		BatchSize:   batchSize,
		Logger:      logger,
	}
}

// FetchItem fetches one entity with labels, descriptions, aliases and
// claims. Claim order follows the upstream payload.
func (c *Client) FetchItem(ctx context.Context, id model.EntityID) (*model.RawItem, error) {
	u, err := url.Parse(c.APIEndpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid endpoint: %v", ErrUpstream, err)
	}

	q := u.Query()
	q.Add("action", "wbgetentities")
	q.Add("format", "json")
	q.Add("ids", string(id))
	q.Add("props", "labels|descriptions|aliases|claims")
	q.Add("origin", "*")
	u.RawQuery = q.Encode()

	body, err := c.request.Get(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	var resp entitiesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if resp.Error != nil {
		if resp.Error.Code == "no-such-entity" {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: api error %s", ErrUpstream, resp.Error.Code)
	}

	raw, ok := resp.Entities[string(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %s missing from response", ErrNotFound, id)
	}

	var probe struct {
		Missing *string `json:"missing"`
	}
	if err := json.Unmarshal(raw, &probe); err == nil && probe.Missing != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	item, err := parseItem(id, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	c.Logger.Debug("Fetched item", "id", id, "claim_groups", len(item.Claims))
	return item, nil
}

// FetchLabels fetches labels and descriptions for the given IDs in the
// given languages in one remote call. The caller is responsible for
// chunking to the API limit.
func (c *Client) FetchLabels(ctx context.Context, ids []model.EntityID, langs []string) (map[model.EntityID]EntityLabels, error) {
	results := make(map[model.EntityID]EntityLabels)
	if len(ids) == 0 {
		return results, nil
	}
	if len(ids) > c.BatchSize {
		return nil, fmt.Errorf("%w: %d IDs exceed batch size %d", ErrUpstream, len(ids), c.BatchSize)
	}

	// Sort for a stable request URL; map iteration order upstream is random.
	sorted := make([]string, 0, len(ids))
	for _, id := range ids {
		sorted = append(sorted, string(id))
	}
	sort.Strings(sorted)

	u, err := url.Parse(c.APIEndpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid endpoint: %v", ErrUpstream, err)
	}

	q := u.Query()
	q.Add("action", "wbgetentities")
	q.Add("format", "json")
	q.Add("ids", strings.Join(sorted, "|"))
	q.Add("props", "labels|descriptions")
	if len(langs) > 0 {
		q.Add("languages", strings.Join(langs, "|"))
	}
	q.Add("origin", "*")
	u.RawQuery = q.Encode()

	body, err := c.request.Get(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	var resp entitiesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%w: api error %s", ErrUpstream, resp.Error.Code)
	}

	for id, raw := range resp.Entities {
		var ent struct {
			Missing      *string              `json:"missing"`
			Labels       map[string]langValue `json:"labels"`
			Descriptions map[string]langValue `json:"descriptions"`
		}
		if err := json.Unmarshal(raw, &ent); err != nil {
			c.Logger.Warn("Skipping unparseable entity in label response", "id", id, "error", err)
			continue
		}

		labels := EntityLabels{
			Labels:       make(map[string]string),
			Descriptions: make(map[string]string),
		}
		// A missing entity still yields an (empty) record so the caller
		// can cache the negative result.
		if ent.Missing == nil {
			for lang, v := range ent.Labels {
				labels.Labels[lang] = v.Value
			}
			for lang, v := range ent.Descriptions {
				labels.Descriptions[lang] = v.Value
			}
		}
		results[model.EntityID(id)] = labels
	}

	return results, nil
}

type entitiesResponse struct {
	Entities map[string]json.RawMessage `json:"entities"`
	Error    *apiError                  `json:"error"`
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

type langValue struct {
	Language string `json:"language"`
	Value    string `json:"value"`
}
