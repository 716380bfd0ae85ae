package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// pointID maps a derived record key to the deterministic UUID Qdrant
// stores it under. Qdrant accepts only unsigned integers or UUIDs as
// point ids; the original key stays in the payload, where retrieval
// reads it back. Same key, same UUID, so upserts stay idempotent.
func pointID(key string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("defectbase://"+key)).String()
}

// Qdrant implements Store using Qdrant's REST API.
type Qdrant struct {
	baseURL string
	client  *http.Client
}

// NewQdrant creates a Qdrant store client.
func NewQdrant(baseURL string, timeout time.Duration) *Qdrant {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Qdrant{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (q *Qdrant) EnsureCollection(ctx context.Context, name string, dimension int) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	// PUT is idempotent for existing collections with the same params;
	// a 409 from an older server is treated as already-exists.
	err := q.put(ctx, fmt.Sprintf("/collections/%s", name), body)
	if err != nil && strings.Contains(err.Error(), "status 409") {
		return nil
	}
	return err
}

func (q *Qdrant) Upsert(ctx context.Context, collection string, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	payload := make([]map[string]any, len(points))
	for i, p := range points {
		payload[i] = map[string]any{
			"id":      pointID(p.ID),
			"vector":  p.Vector,
			"payload": p.Payload,
		}
	}
	body := map[string]any{"points": payload}
	return q.put(ctx, fmt.Sprintf("/collections/%s/points", collection), body)
}

func (q *Qdrant) Query(ctx context.Context, collection string, vector []float32, filter Filter, limit int) ([]Candidate, error) {
	body := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	if cond := buildFilter(filter); cond != nil {
		body["filter"] = cond
	}

	data, err := q.post(ctx, fmt.Sprintf("/collections/%s/points/search", collection), body)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Result []struct {
			ID      any            `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("qdrant search decode: %w", err)
	}

	candidates := make([]Candidate, len(resp.Result))
	for i, r := range resp.Result {
		candidates[i] = Candidate{
			ID:         fmt.Sprintf("%v", r.ID),
			Similarity: r.Score,
			Payload:    r.Payload,
		}
	}
	return candidates, nil
}

func (q *Qdrant) Get(ctx context.Context, collection string, id string) (map[string]any, error) {
	body := map[string]any{
		"ids":          []string{pointID(id)},
		"with_payload": true,
	}
	data, err := q.post(ctx, fmt.Sprintf("/collections/%s/points", collection), body)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Result []struct {
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("qdrant retrieve decode: %w", err)
	}
	if len(resp.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return resp.Result[0].Payload, nil
}

func (q *Qdrant) SetPayload(ctx context.Context, collection string, id string, patch map[string]any) error {
	body := map[string]any{
		"payload": patch,
		"points":  []string{pointID(id)},
	}
	_, err := q.post(ctx, fmt.Sprintf("/collections/%s/points/payload", collection), body)
	return err
}

// buildFilter converts a Filter into Qdrant's conjunctive must clause.
func buildFilter(filter Filter) map[string]any {
	if len(filter) == 0 {
		return nil
	}
	var must []map[string]any
	for key, values := range filter {
		switch len(values) {
		case 0:
			continue
		case 1:
			must = append(must, map[string]any{
				"key":   key,
				"match": map[string]any{"value": values[0]},
			})
		default:
			must = append(must, map[string]any{
				"key":   key,
				"match": map[string]any{"any": values},
			})
		}
	}
	if len(must) == 0 {
		return nil
	}
	return map[string]any{"must": must}
}

// --- HTTP helpers ---

func (q *Qdrant) put(ctx context.Context, path string, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal qdrant request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, q.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := q.client.Do(req)
	if err != nil {
		return wrapTransport(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: PUT %s: status %d", ErrUnavailable, path, resp.StatusCode)
	}
	return nil
}

func (q *Qdrant) post(ctx context.Context, path string, body any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal qdrant request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, q.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := q.client.Do(req)
	if err != nil {
		return nil, wrapTransport(err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: POST %s: status %d: %s", ErrUnavailable, path, resp.StatusCode, string(data))
	}
	return data, nil
}

func wrapTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: timeout: %v", ErrUnavailable, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
