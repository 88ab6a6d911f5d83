// Package classify wraps the external text-classification service that
// extracts structured disaster attributes from raw social-media posts.
package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/crisiswatch/disaster-watch/internal/models"
)

// Classifier extracts disaster attributes from a post. Implementations
// return a CandidateRecord whose fields may be absent, or a *Error when the
// post cannot be classified at all.
type Classifier interface {
	Classify(ctx context.Context, post models.Post) (models.CandidateRecord, error)
}

const systemInstruction = `You are a disaster detection assistant. Analyze the social media post and return only JSON with these fields:
- is_disaster: true/false
- disaster_type: one of earthquake, flood, fire, storm, landslide, other
- urgency_level: 1-3 (1=low, 2=high, 3=critical)
- confidence_level: 0-10
- place: most specific location mentioned, "City, Country" format
- region: continental region (asia, europe, north_america, south_america, africa, oceania, antarctica)
- sources: array of supporting source URLs`

// HTTPClassifier talks to a Gemini-style text generation endpoint over JSON.
type HTTPClassifier struct {
	url           string
	apiKey        string
	model         string
	timeout       time.Duration
	minConfidence int
	client        *http.Client
}

type Options struct {
	URL           string
	APIKey        string
	Model         string
	Timeout       time.Duration
	MinConfidence int
}

func NewHTTPClassifier(opts Options) *HTTPClassifier {
	return &HTTPClassifier{
		url:           opts.URL,
		apiKey:        opts.APIKey,
		model:         opts.Model,
		timeout:       opts.Timeout,
		minConfidence: opts.MinConfidence,
		client:        &http.Client{Timeout: opts.Timeout},
	}
}

type classifyRequest struct {
	Model        string `json:"model"`
	Instructions string `json:"instructions"`
	Input        string `json:"input"`
}

type classifyResponse struct {
	Output string `json:"output"`
}

// Classify sends one post to the classification service. The outbound call
// is bounded by the configured timeout so a slow service cannot stall the
// pipeline. There is no retry here; re-submission is the caller's concern
// and the dedup key absorbs it safely.
func (c *HTTPClassifier) Classify(ctx context.Context, post models.Post) (models.CandidateRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	input := post.Title
	if post.Content != "" {
		input = input + "\n" + post.Content
	}

	body, err := json.Marshal(classifyRequest{
		Model:        c.model,
		Instructions: systemInstruction,
		Input:        input,
	})
	if err != nil {
		return models.CandidateRecord{}, fmt.Errorf("error encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return models.CandidateRecord{}, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return models.CandidateRecord{}, failure(ReasonTimeout, err)
		}
		return models.CandidateRecord{}, failure(ReasonUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.CandidateRecord{}, failure(ReasonUnavailable,
			fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status))
	}

	var data classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return models.CandidateRecord{}, failure(ReasonMalformed, fmt.Errorf("error decoding resp.Body: %w", err))
	}
	if strings.TrimSpace(data.Output) == "" {
		return models.CandidateRecord{}, failure(ReasonMalformed, errors.New("empty model output"))
	}

	return c.parseOutput(data.Output)
}

// parseOutput converts the model's text payload into a candidate. Field-level
// damage (missing keys, wrong types, non-JSON text) degrades to absent
// fields; only an explicit not-a-disaster verdict or a sub-threshold
// confidence rejects the post.
func (c *HTTPClassifier) parseOutput(output string) (models.CandidateRecord, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(stripCodeFences(output)), &fields); err != nil {
		// The service answered but with prose instead of JSON. Treat every
		// field as absent and let normalization default them.
		return models.CandidateRecord{}, nil
	}

	if isDisaster, ok := boolField(fields, "is_disaster"); ok && !isDisaster {
		return models.CandidateRecord{}, failure(ReasonLowRelevance, errors.New("classifier verdict: not a disaster"))
	}

	candidate := models.CandidateRecord{
		DisasterType:    stringField(fields, "disaster_type"),
		UrgencyLevel:    intField(fields, "urgency_level"),
		ConfidenceLevel: intField(fields, "confidence_level"),
		Place:           stringField(fields, "place"),
		Region:          stringField(fields, "region"),
		Sources:         stringListField(fields, "sources"),
	}

	if candidate.ConfidenceLevel != nil && *candidate.ConfidenceLevel < c.minConfidence {
		return models.CandidateRecord{}, failure(ReasonLowRelevance,
			fmt.Errorf("confidence %d below threshold %d", *candidate.ConfidenceLevel, c.minConfidence))
	}

	return candidate, nil
}

// stripCodeFences removes markdown fencing the model wraps around JSON.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var timeout interface{ Timeout() bool }
	return errors.As(err, &timeout) && timeout.Timeout()
}

func stringField(m map[string]any, key string) *string {
	v, ok := m[key].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}

func boolField(m map[string]any, key string) (value, present bool) {
	v, ok := m[key].(bool)
	return v, ok
}

func intField(m map[string]any, key string) *int {
	// encoding/json decodes all numbers into float64.
	v, ok := m[key].(float64)
	if !ok {
		return nil
	}
	i := int(v)
	return &i
}

func stringListField(m map[string]any, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
