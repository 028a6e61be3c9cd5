package models

import "time"

// DuplicateCandidate - существующий инцидент, похожий на новое сообщение
type DuplicateCandidate struct {
	Incident            *Incident     `json:"incident"`
	DistanceMeters      float64       `json:"distance_meters"`
	Elapsed             time.Duration `json:"elapsed"`
	HeuristicConfidence int           `json:"heuristic_confidence"`
	// SemanticConfidence заполняется только если оракул вернул оценку для кандидата
	SemanticConfidence *int   `json:"semantic_confidence,omitempty"`
	Confidence         int    `json:"confidence"`
	Rationale          string `json:"rationale,omitempty"`
}

// SimilarityJudgment - оценка оракула для одного кандидата
type SimilarityJudgment struct {
	CandidateIndex int     `json:"candidate_index"`
	Confidence     float64 `json:"confidence"`
	Rationale      string  `json:"rationale"`
}
