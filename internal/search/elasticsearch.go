package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"afisha/internal/models"
)

// Client keeps a full-text index of published events. The index backs the
// text filter of the public listing; everything else stays in Postgres.
type Client struct {
	es     *elasticsearch.Client
	config Config
}

type Config struct {
	Addresses []string
	Username  string
	Password  string
	Index     string
}

// eventDoc is the indexed projection of an event. Only fields the public
// search can filter on are stored.
type eventDoc struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Annotation  string    `json:"annotation"`
	Description string    `json:"description"`
	CategoryID  int64     `json:"category_id"`
	Paid        bool      `json:"paid"`
	EventDate   time.Time `json:"event_date"`
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.Index == "" {
		cfg.Index = "events"
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     cfg.Addresses,
		Username:      cfg.Username,
		Password:      cfg.Password,
		RetryOnStatus: []int{429, 502, 503, 504},
		MaxRetries:    3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	client := &Client{es: es, config: cfg}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.ensureIndex(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure index: %w", err)
	}

	slog.Info("Connected to Elasticsearch", "index", cfg.Index)
	return client, nil
}

func (c *Client) ensureIndex(ctx context.Context) error {
	existsReq := esapi.IndicesExistsRequest{Index: []string{c.config.Index}}
	res, err := existsReq.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		return nil
	}

	mapping := `{
		"mappings": {
			"properties": {
				"id":          {"type": "long"},
				"title":       {"type": "text"},
				"annotation":  {"type": "text"},
				"description": {"type": "text"},
				"category_id": {"type": "long"},
				"paid":        {"type": "boolean"},
				"event_date":  {"type": "date"}
			}
		}
	}`

	createReq := esapi.IndicesCreateRequest{
		Index: c.config.Index,
		Body:  strings.NewReader(mapping),
	}

	createRes, err := createReq.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("index creation error: %s", createRes.String())
	}

	slog.Info("Created Elasticsearch index", "index", c.config.Index)
	return nil
}

// IndexEvent upserts a published event into the index.
func (c *Client) IndexEvent(ctx context.Context, event *models.Event) error {
	doc := eventDoc{
		ID:         event.ID,
		Title:      event.Title,
		Annotation: event.Annotation,
		CategoryID: event.CategoryID,
		Paid:       event.Paid,
		EventDate:  event.EventDate,
	}
	if event.Description != nil {
		doc.Description = *event.Description
	}

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      c.config.Index,
		DocumentID: strconv.FormatInt(event.ID, 10),
		Body:       strings.NewReader(string(docJSON)),
	}

	res, err := req.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("failed to index event: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("indexing error: %s", res.String())
	}

	return nil
}

// DeleteEvent removes an event from the index. Missing documents are fine.
func (c *Client) DeleteEvent(ctx context.Context, id int64) error {
	req := esapi.DeleteRequest{
		Index:      c.config.Index,
		DocumentID: strconv.FormatInt(id, 10),
	}

	res, err := req.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete error: %s", res.String())
	}

	return nil
}

// SearchIDs returns ids of events matching the text, most relevant first.
// The caller re-reads the matched events from Postgres so results always
// reflect the current state.
func (c *Client) SearchIDs(ctx context.Context, text string, size int) ([]int64, error) {
	if size <= 0 {
		size = 100
	}

	searchRequest := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     text,
				"fields":    []string{"title^2", "annotation", "description"},
				"fuzziness": "AUTO",
			},
		},
		"sort": []map[string]interface{}{
			{"_score": map[string]interface{}{"order": "desc"}},
			{"id": map[string]interface{}{"order": "asc"}},
		},
		"size":    size,
		"_source": []string{"id"},
	}

	searchJSON, err := json.Marshal(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{c.config.Index},
		Body:  strings.NewReader(string(searchJSON)),
	}

	res, err := req.Do(ctx, c.es)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var response struct {
		Hits struct {
			Hits []struct {
				Source struct {
					ID int64 `json:"id"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	ids := make([]int64, len(response.Hits.Hits))
	for i, hit := range response.Hits.Hits {
		ids[i] = hit.Source.ID
	}

	return ids, nil
}

// HealthCheck waits for the cluster to reach at least yellow status.
func (c *Client) HealthCheck(ctx context.Context) error {
	req := esapi.ClusterHealthRequest{
		WaitForStatus: "yellow",
		Timeout:       10 * time.Second,
	}

	res, err := req.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("health check error: %s", res.String())
	}

	return nil
}
