package dedup

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/imcoderdev/emergency-backend/internal/models"
)

var ErrOracleTimeout = errors.New("similarity oracle timed out")

// Oracle - внешний сервис семантического сходства
type Oracle interface {
	Compare(ctx context.Context, report *models.Report, candidates []models.DuplicateCandidate) ([]models.SimilarityJudgment, error)
}

// Fuse смешивает эвристическую уверенность с оценкой оракула (среднее без весов)
// и пересортировывает кандидатов. Кандидаты без оценки сохраняют эвристику.
// Входной срез не изменяется.
func Fuse(candidates []models.DuplicateCandidate, judgments []models.SimilarityJudgment) []models.DuplicateCandidate {
	fused := make([]models.DuplicateCandidate, len(candidates))
	copy(fused, candidates)

	seen := make(map[int]bool, len(judgments))
	for _, j := range judgments {
		if j.CandidateIndex < 0 || j.CandidateIndex >= len(fused) || seen[j.CandidateIndex] {
			continue
		}
		if math.IsNaN(j.Confidence) || math.IsInf(j.Confidence, 0) {
			continue
		}
		seen[j.CandidateIndex] = true

		semantic := math.Min(100, math.Max(0, j.Confidence))
		semanticRounded := int(math.Round(semantic))

		c := &fused[j.CandidateIndex]
		c.SemanticConfidence = &semanticRounded
		c.Confidence = clampConfidence(int(math.Round((float64(c.HeuristicConfidence) + semantic) / 2)))
		c.Rationale = j.Rationale
	}

	sortByConfidence(fused)
	return fused
}

// Refine запрашивает оракула с фиксированным таймаутом и смешивает оценки.
// При любой ошибке возвращает исходный список без изменений вместе с ошибкой,
// чтобы вызывающий мог залогировать деградацию.
func Refine(ctx context.Context, oracle Oracle, report *models.Report, candidates []models.DuplicateCandidate, timeout time.Duration) ([]models.DuplicateCandidate, error) {
	if oracle == nil || len(candidates) == 0 {
		return candidates, nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		judgments []models.SimilarityJudgment
		err       error
	}
	done := make(chan result, 1)
	go func() {
		judgments, err := oracle.Compare(ctx, report, candidates)
		done <- result{judgments: judgments, err: err}
	}()

	select {
	case <-ctx.Done():
		return candidates, ErrOracleTimeout
	case res := <-done:
		if res.err != nil {
			return candidates, res.err
		}
		return Fuse(candidates, res.judgments), nil
	}
}
