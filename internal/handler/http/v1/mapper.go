package v1

import (
	"github.com/imcoderdev/emergency-backend/internal/geo"
	"github.com/imcoderdev/emergency-backend/internal/models"
)

// DTOToReportModel преобразует DTO сообщения в доменную модель.
// Координаты к этому моменту уже проверены валидатором.
func DTOToReportModel(dto CreateReportRequest) *models.Report {
	report := &models.Report{
		Category:    models.Category(dto.Category),
		Description: dto.Description,
		Location:    geo.Point{Latitude: *dto.Latitude, Longitude: *dto.Longitude},
		ReporterID:  dto.ReporterID,
		MediaURL:    dto.MediaURL,
		Severity:    models.Severity(dto.Severity),
		AIAnalysis:  dto.AIAnalysis,
	}
	if dto.ReportedAt != nil {
		report.ReceivedAt = dto.ReportedAt.UTC()
	}
	return report
}

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	resp := &IncidentResponse{
		ID:                 model.ID,
		Category:           string(model.Category),
		Description:        model.Description,
		Severity:           string(model.Severity),
		SeverityTag:        model.SeverityTag,
		Status:             string(model.Status),
		CorroborationCount: model.CorroborationCount,
		Verified:           model.Verified,
		ReporterID:         model.ReporterID,
		MediaURL:           model.MediaURL,
		AIAnalysis:         model.AIAnalysis,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}
	if model.Location != nil {
		lat, lon := model.Location.Latitude, model.Location.Longitude
		resp.Latitude = &lat
		resp.Longitude = &lon
	}
	return resp
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(models []*models.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}

// ModelToReportResponse преобразует результат обработки сообщения
func ModelToReportResponse(result *models.ReportResult) *ReportResponse {
	resp := &ReportResponse{
		Outcome:  string(result.Outcome),
		Incident: *ModelToIncidentResponse(result.Incident),
	}
	if len(result.Duplicates) > 0 {
		resp.Duplicates = make([]DuplicateResponse, len(result.Duplicates))
		for i, d := range result.Duplicates {
			resp.Duplicates[i] = DuplicateResponse{
				IncidentID:          d.Incident.ID,
				Category:            string(d.Incident.Category),
				Description:         d.Incident.Description,
				DistanceMeters:      d.DistanceMeters,
				MinutesApart:        d.Elapsed.Minutes(),
				HeuristicConfidence: d.HeuristicConfidence,
				SemanticConfidence:  d.SemanticConfidence,
				Confidence:          d.Confidence,
				Rationale:           d.Rationale,
			}
		}
	}
	return resp
}

// ModelsToQueueResponses преобразует очередь реагирования в слайс DTO
func ModelsToQueueResponses(entries []models.QueueEntry) []*QueueEntryResponse {
	responses := make([]*QueueEntryResponse, len(entries))
	for i, entry := range entries {
		responses[i] = &QueueEntryResponse{
			IncidentResponse: *ModelToIncidentResponse(entry.Incident),
			PriorityScore:    entry.Score,
			PriorityLabel:    string(entry.Label),
			DistanceMeters:   entry.DistanceMeters,
		}
	}
	return responses
}
