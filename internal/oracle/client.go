// Package oracle talks to the external semantic-similarity service that judges
// whether a new report describes the same event as an existing incident.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/imcoderdev/emergency-backend/internal/models"
	"golang.org/x/time/rate"
)

// Client implements the similarity oracle over HTTP.
type Client struct {
	apiKey   string
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

// NewClient creates an oracle client. The HTTP timeout is an upper bound; callers
// also bound each comparison with their own context deadline.
func NewClient(endpoint, apiKey string, timeout, minInterval time.Duration) *Client {
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	return &Client{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Compare asks the oracle to judge each candidate against the report.
// Returns judgments indexed by candidate position. The call is not retried.
func (c *Client) Compare(ctx context.Context, report *models.Report, candidates []models.DuplicateCandidate) ([]models.SimilarityJudgment, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	jsonBody, err := json.Marshal(buildRequest(report, candidates))
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oracle API error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed compareResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	judgments := make([]models.SimilarityJudgment, 0, len(parsed.Judgments))
	for _, j := range parsed.Judgments {
		judgments = append(judgments, models.SimilarityJudgment{
			CandidateIndex: j.CandidateIndex,
			Confidence:     j.Confidence,
			Rationale:      j.Rationale,
		})
	}
	return judgments, nil
}

func buildRequest(report *models.Report, candidates []models.DuplicateCandidate) compareRequest {
	req := compareRequest{
		Report: reportPayload{
			Category:    string(report.Category),
			Description: report.Description,
			Latitude:    report.Location.Latitude,
			Longitude:   report.Location.Longitude,
		},
		Candidates: make([]candidatePayload, 0, len(candidates)),
	}
	for i, c := range candidates {
		p := candidatePayload{
			Index:               i,
			DistanceMeters:      c.DistanceMeters,
			MinutesApart:        c.Elapsed.Minutes(),
			HeuristicConfidence: c.HeuristicConfidence,
		}
		if c.Incident != nil {
			p.IncidentID = c.Incident.ID.String()
			p.Category = string(c.Incident.Category)
			p.Description = c.Incident.Description
		}
		req.Candidates = append(req.Candidates, p)
	}
	return req
}

// compareRequest is the request body for the oracle compare endpoint.
type compareRequest struct {
	Report     reportPayload      `json:"report"`
	Candidates []candidatePayload `json:"candidates"`
}

type reportPayload struct {
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

type candidatePayload struct {
	Index               int     `json:"index"`
	IncidentID          string  `json:"incident_id"`
	Category            string  `json:"category"`
	Description         string  `json:"description"`
	DistanceMeters      float64 `json:"distance_meters"`
	MinutesApart        float64 `json:"minutes_apart"`
	HeuristicConfidence int     `json:"heuristic_confidence"`
}

// compareResponse is the response body from the oracle compare endpoint.
type compareResponse struct {
	Judgments []judgmentPayload `json:"judgments"`
}

type judgmentPayload struct {
	CandidateIndex int     `json:"candidate_index"`
	Confidence     float64 `json:"confidence"`
	Rationale      string  `json:"rationale"`
}
