package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/imcoderdev/emergency-backend/internal/config"
	"github.com/imcoderdev/emergency-backend/internal/geo"
	"github.com/imcoderdev/emergency-backend/internal/models"
	"github.com/imcoderdev/emergency-backend/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var apiKeyHeader = map[string]string{"X-API-Key": "test-api-key"}

// newTestHandler создает новый экземпляр Handler с мокированным сервисом
func newTestHandler(t *testing.T) (*Handler, *mocks.MockIncidentService, *gin.Engine) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockIncidentService(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{
		APIKeys: []string{"test-api-key"},
	}

	handler := NewHandler(mockService, logger, cfg)

	// Настройка Gin роутера для тестов
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	return handler, mockService, router
}

// makeRequest - вспомогательная функция для выполнения HTTP-запросов
func makeRequest(router *gin.Engine, method, url string, body io.Reader, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func sampleIncident(id uuid.UUID) *models.Incident {
	return &models.Incident{
		ID:                 id,
		Category:           models.CategoryFire,
		Description:        "smoke from the third floor",
		Location:           &geo.Point{Latitude: 28.6139, Longitude: 77.2090},
		Severity:           models.SeverityHigh,
		SeverityTag:        "high",
		Status:             models.StatusReported,
		CorroborationCount: 1,
		CreatedAt:          time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		UpdatedAt:          time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}
}

func validReportBody() CreateReportRequest {
	return CreateReportRequest{
		Category:    "Fire",
		Description: "smoke from the third floor",
		Latitude:    floatPtr(28.6139),
		Longitude:   floatPtr(77.2090),
		Severity:    "High",
	}
}

func TestSubmitReport_Created(t *testing.T) {
	// Подготовка
	_, mockService, router := newTestHandler(t)
	incidentID := uuid.New()
	duplicate := sampleIncident(uuid.New())
	reqBody := validReportBody()

	// Ожидания
	mockService.EXPECT().
		ProcessReport(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, report *models.Report) (*models.ReportResult, error) {
			assert.Equal(t, models.CategoryFire, report.Category)
			assert.Equal(t, geo.Point{Latitude: 28.6139, Longitude: 77.2090}, report.Location)
			assert.Equal(t, models.SeverityHigh, report.Severity)
			assert.True(t, report.ReceivedAt.IsZero())
			return &models.ReportResult{
				Outcome:  models.OutcomeCreated,
				Incident: sampleIncident(incidentID),
				Duplicates: []models.DuplicateCandidate{{
					Incident:            duplicate,
					DistanceMeters:      150,
					Elapsed:             10 * time.Minute,
					HeuristicConfidence: 83,
					SemanticConfidence:  intPtr(90),
					Confidence:          87,
					Rationale:           "same building",
				}},
			}, nil
		}).Times(1)

	// Действие
	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/reports", bytes.NewBuffer(bodyBytes), apiKeyHeader)

	// Проверки
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp ReportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "created", resp.Outcome)
	assert.Equal(t, incidentID, resp.Incident.ID)
	require.NotNil(t, resp.Incident.Latitude)
	assert.InDelta(t, 28.6139, *resp.Incident.Latitude, 1e-9)
	require.Len(t, resp.Duplicates, 1)
	assert.Equal(t, duplicate.ID, resp.Duplicates[0].IncidentID)
	assert.Equal(t, 83, resp.Duplicates[0].HeuristicConfidence)
	assert.Equal(t, 87, resp.Duplicates[0].Confidence)
	assert.InDelta(t, 10.0, resp.Duplicates[0].MinutesApart, 1e-9)
	require.NotNil(t, resp.Duplicates[0].SemanticConfidence)
	assert.Equal(t, 90, *resp.Duplicates[0].SemanticConfidence)
}

func TestSubmitReport_Merged(t *testing.T) {
	// Подготовка
	_, mockService, router := newTestHandler(t)
	merged := sampleIncident(uuid.New())
	merged.CorroborationCount = 2
	reqBody := validReportBody()
	reportedAt := time.Date(2026, 3, 14, 11, 55, 0, 0, time.UTC)
	reqBody.ReportedAt = &reportedAt

	// Ожидания
	mockService.EXPECT().
		ProcessReport(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, report *models.Report) (*models.ReportResult, error) {
			assert.True(t, reportedAt.Equal(report.ReceivedAt))
			return &models.ReportResult{Outcome: models.OutcomeMerged, Incident: merged}, nil
		}).Times(1)

	// Действие
	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/reports", bytes.NewBuffer(bodyBytes), apiKeyHeader)

	// Проверки
	assert.Equal(t, http.StatusOK, w.Code)

	var resp ReportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "merged", resp.Outcome)
	assert.Equal(t, 2, resp.Incident.CorroborationCount)
	assert.Empty(t, resp.Duplicates)
	assert.NotContains(t, w.Body.String(), "duplicates")
}

func TestSubmitReport_InvalidJSON(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().ProcessReport(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(router, "POST", "/api/v1/reports", bytes.NewBufferString(`{"category": "Fire"`), apiKeyHeader)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestSubmitReport_ValidationError(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *CreateReportRequest)
		message string
	}{
		{
			name:    "unknown category",
			mutate:  func(r *CreateReportRequest) { r.Category = "Alien" },
			message: "Error:Field validation for 'Category' failed on the 'incident_category' tag",
		},
		{
			name:    "missing latitude",
			mutate:  func(r *CreateReportRequest) { r.Latitude = nil },
			message: "Error:Field validation for 'Latitude' failed on the 'required' tag",
		},
		{
			name:    "longitude out of range",
			mutate:  func(r *CreateReportRequest) { r.Longitude = floatPtr(181) },
			message: "Error:Field validation for 'Longitude' failed on the 'longitude' tag",
		},
		{
			name:    "unknown severity",
			mutate:  func(r *CreateReportRequest) { r.Severity = "Apocalyptic" },
			message: "Error:Field validation for 'Severity' failed on the 'incident_severity' tag",
		},
		{
			name:    "malformed media url",
			mutate:  func(r *CreateReportRequest) { r.MediaURL = "not a url" },
			message: "Error:Field validation for 'MediaURL' failed on the 'url' tag",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mockService, router := newTestHandler(t)
			reqBody := validReportBody()
			tt.mutate(&reqBody)

			mockService.EXPECT().ProcessReport(gomock.Any(), gomock.Any()).Times(0)

			bodyBytes, _ := json.Marshal(reqBody)
			w := makeRequest(router, "POST", "/api/v1/reports", bytes.NewBuffer(bodyBytes), apiKeyHeader)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.message)
		})
	}
}

func TestSubmitReport_ZeroCoordinatesAccepted(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	reqBody := validReportBody()
	reqBody.Latitude = floatPtr(0)
	reqBody.Longitude = floatPtr(0)

	mockService.EXPECT().
		ProcessReport(gomock.Any(), gomock.Any()).
		Return(&models.ReportResult{Outcome: models.OutcomeCreated, Incident: sampleIncident(uuid.New())}, nil).
		Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/reports", bytes.NewBuffer(bodyBytes), apiKeyHeader)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestSubmitReport_ServiceRejectsReport(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	serviceError := fmt.Errorf("service: %w: unrecognized category", models.ErrInvalidReport)

	mockService.EXPECT().ProcessReport(gomock.Any(), gomock.Any()).Return(nil, serviceError).Times(1)

	bodyBytes, _ := json.Marshal(validReportBody())
	w := makeRequest(router, "POST", "/api/v1/reports", bytes.NewBuffer(bodyBytes), apiKeyHeader)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid report")
}

func TestSubmitReport_ServiceError(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	serviceError := errors.New("service: could not look up merge candidates: connection refused")

	mockService.EXPECT().ProcessReport(gomock.Any(), gomock.Any()).Return(nil, serviceError).Times(1)

	bodyBytes, _ := json.Marshal(validReportBody())
	w := makeRequest(router, "POST", "/api/v1/reports", bytes.NewBuffer(bodyBytes), apiKeyHeader)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestSubmitReport_Unauthorized(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().ProcessReport(gomock.Any(), gomock.Any()).Times(0)

	bodyBytes, _ := json.Marshal(validReportBody())
	w := makeRequest(router, "POST", "/api/v1/reports", bytes.NewBuffer(bodyBytes))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetQueue_WithResponder(t *testing.T) {
	// Подготовка
	_, mockService, router := newTestHandler(t)
	incident := sampleIncident(uuid.New())
	responder := &geo.Point{Latitude: 28.62, Longitude: 77.21}

	// Ожидания
	mockService.EXPECT().
		GetQueue(gomock.Any(), responder, 5).
		Return([]models.QueueEntry{{
			Incident:       incident,
			Score:          61,
			Label:          models.PriorityHigh,
			DistanceMeters: floatPtr(700),
		}}, nil).
		Times(1)

	// Действие
	w := makeRequest(router, "GET", "/api/v1/incidents/queue?lat=28.62&lon=77.21&limit=5", nil, apiKeyHeader)

	// Проверки
	assert.Equal(t, http.StatusOK, w.Code)

	var resp []QueueEntryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, incident.ID, resp[0].ID)
	assert.Equal(t, 61, resp[0].PriorityScore)
	assert.Equal(t, "HIGH", resp[0].PriorityLabel)
	require.NotNil(t, resp[0].DistanceMeters)
	assert.InDelta(t, 700.0, *resp[0].DistanceMeters, 1e-9)
}

func TestGetQueue_WithoutResponder(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().
		GetQueue(gomock.Any(), gomock.Nil(), 0).
		Return([]models.QueueEntry{}, nil).
		Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents/queue", nil, apiKeyHeader)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestGetQueue_InvalidQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		message string
	}{
		{name: "lat without lon", query: "?lat=28.6", message: "lat and lon must be provided together"},
		{name: "lon without lat", query: "?lon=77.2", message: "lat and lon must be provided together"},
		{name: "latitude out of range", query: "?lat=91&lon=77.2", message: "failed on the 'latitude' tag"},
		{name: "not a number", query: "?lat=north&lon=77.2", message: "invalid query parameters"},
		{name: "negative limit", query: "?limit=-1", message: "failed on the 'min' tag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mockService, router := newTestHandler(t)

			mockService.EXPECT().GetQueue(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

			w := makeRequest(router, "GET", "/api/v1/incidents/queue"+tt.query, nil, apiKeyHeader)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.message)
		})
	}
}

func TestGetQueue_ServiceError(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().
		GetQueue(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("service: could not list active incidents")).
		Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents/queue", nil, apiKeyHeader)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}

func TestGetIncident_Success(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	incidentID := uuid.New()
	expectedIncident := sampleIncident(incidentID)

	mockService.EXPECT().GetIncident(gomock.Any(), incidentID).Return(expectedIncident, nil).Times(1)

	w := makeRequest(router, "GET", fmt.Sprintf("/api/v1/incidents/%s", incidentID.String()), nil, apiKeyHeader)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp IncidentResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, incidentID, resp.ID)
	assert.Equal(t, "Fire", resp.Category)
	assert.Equal(t, "high", resp.SeverityTag)
}

func TestGetIncident_WithoutLocation(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	incidentID := uuid.New()
	incident := sampleIncident(incidentID)
	incident.Location = nil

	mockService.EXPECT().GetIncident(gomock.Any(), incidentID).Return(incident, nil).Times(1)

	w := makeRequest(router, "GET", fmt.Sprintf("/api/v1/incidents/%s", incidentID.String()), nil, apiKeyHeader)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "latitude")
}

func TestGetIncident_InvalidID(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().GetIncident(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(router, "GET", "/api/v1/incidents/invalid-uuid", nil, apiKeyHeader)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid incident ID")
}

func TestGetIncident_NotFound(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	incidentID := uuid.New()
	serviceError := fmt.Errorf("service: could not get incident: %w", models.ErrNotFound)

	mockService.EXPECT().GetIncident(gomock.Any(), incidentID).Return(nil, serviceError).Times(1)

	w := makeRequest(router, "GET", fmt.Sprintf("/api/v1/incidents/%s", incidentID.String()), nil, apiKeyHeader)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "incident not found")
}

func TestGetIncident_ServiceError(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	incidentID := uuid.New()
	serviceError := errors.New("database error")

	mockService.EXPECT().GetIncident(gomock.Any(), incidentID).Return(nil, serviceError).Times(1)

	w := makeRequest(router, "GET", fmt.Sprintf("/api/v1/incidents/%s", incidentID.String()), nil, apiKeyHeader)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}

func TestListIncidents_Success(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	expectedIncidents := []*models.Incident{
		sampleIncident(uuid.New()),
		sampleIncident(uuid.New()),
	}

	mockService.EXPECT().ListIncidents(gomock.Any(), 1, 10).Return(expectedIncidents, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents?page=1&pageSize=10", nil, apiKeyHeader)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []IncidentResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Len(t, resp, 2)
	assert.Equal(t, expectedIncidents[0].ID, resp[0].ID)
}

func TestListIncidents_DefaultPaging(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().ListIncidents(gomock.Any(), 1, 20).Return([]*models.Incident{}, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents", nil, apiKeyHeader)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListIncidents_ServiceError(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	serviceError := errors.New("failed to list incidents")

	mockService.EXPECT().ListIncidents(gomock.Any(), 1, 10).Return(nil, serviceError).Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents?page=1&pageSize=10", nil, apiKeyHeader)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}

func TestUpdateStatus_Success(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	incidentID := uuid.New()
	updated := sampleIncident(incidentID)
	updated.Status = models.StatusInProgress

	mockService.EXPECT().UpdateStatus(gomock.Any(), incidentID, models.StatusInProgress).Return(updated, nil).Times(1)

	bodyBytes, _ := json.Marshal(UpdateStatusRequest{Status: "In Progress"})
	w := makeRequest(router, "PATCH", fmt.Sprintf("/api/v1/incidents/%s/status", incidentID), bytes.NewBuffer(bodyBytes), apiKeyHeader)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp IncidentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "In Progress", resp.Status)
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	incidentID := uuid.New()

	mockService.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	bodyBytes, _ := json.Marshal(UpdateStatusRequest{Status: "Forgotten"})
	w := makeRequest(router, "PATCH", fmt.Sprintf("/api/v1/incidents/%s/status", incidentID), bytes.NewBuffer(bodyBytes), apiKeyHeader)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "failed on the 'incident_status' tag")
}

func TestUpdateStatus_ClosedIsFinal(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	incidentID := uuid.New()
	serviceError := fmt.Errorf("service: %w: incident %s is closed", models.ErrInvalidStatus, incidentID)

	mockService.EXPECT().UpdateStatus(gomock.Any(), incidentID, models.StatusReported).Return(nil, serviceError).Times(1)

	bodyBytes, _ := json.Marshal(UpdateStatusRequest{Status: "Reported"})
	w := makeRequest(router, "PATCH", fmt.Sprintf("/api/v1/incidents/%s/status", incidentID), bytes.NewBuffer(bodyBytes), apiKeyHeader)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "is closed")
}

func TestUpdateStatus_NotFound(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	incidentID := uuid.New()
	serviceError := fmt.Errorf("service: could not get incident for status update: %w", models.ErrNotFound)

	mockService.EXPECT().UpdateStatus(gomock.Any(), incidentID, models.StatusResolved).Return(nil, serviceError).Times(1)

	bodyBytes, _ := json.Marshal(UpdateStatusRequest{Status: "Resolved"})
	w := makeRequest(router, "PATCH", fmt.Sprintf("/api/v1/incidents/%s/status", incidentID), bytes.NewBuffer(bodyBytes), apiKeyHeader)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateStatus_InvalidID(t *testing.T) {
	_, mockService, router := newTestHandler(t)

	mockService.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	bodyBytes, _ := json.Marshal(UpdateStatusRequest{Status: "Resolved"})
	w := makeRequest(router, "PATCH", "/api/v1/incidents/invalid-uuid/status", bytes.NewBuffer(bodyBytes), apiKeyHeader)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid incident ID")
}

func TestVerifyIncident_Success(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	incidentID := uuid.New()
	verified := sampleIncident(incidentID)
	verified.Verified = true
	verified.Status = models.StatusVerified

	mockService.EXPECT().VerifyIncident(gomock.Any(), incidentID).Return(verified, nil).Times(1)

	w := makeRequest(router, "POST", fmt.Sprintf("/api/v1/incidents/%s/verify", incidentID), nil, apiKeyHeader)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp IncidentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Verified)
	assert.Equal(t, "Verified", resp.Status)
}

func TestVerifyIncident_NotFound(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	incidentID := uuid.New()
	serviceError := fmt.Errorf("service: could not verify incident: %w", models.ErrNotFound)

	mockService.EXPECT().VerifyIncident(gomock.Any(), incidentID).Return(nil, serviceError).Times(1)

	w := makeRequest(router, "POST", fmt.Sprintf("/api/v1/incidents/%s/verify", incidentID), nil, apiKeyHeader)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "incident not found")
}

func TestHealthCheck_Success(t *testing.T) {
	_, _, router := newTestHandler(t)

	w := makeRequest(router, "GET", "/api/v1/system/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestAPIKeyAuthMiddleware_Success(t *testing.T) {
	// Создаем Gin-роутер и добавляем middleware
	gin.SetMode(gin.TestMode)
	router := gin.New()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	cfg := &config.Config{
		APIKeys: []string{"valid-key"},
	}

	router.Use(APIKeyAuthMiddleware(cfg, logger))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := makeRequest(router, "GET", "/test", nil, map[string]string{"X-API-Key": "valid-key"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIKeyAuthMiddleware_BearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	cfg := &config.Config{
		APIKeys: []string{"valid-key"},
	}

	router.Use(APIKeyAuthMiddleware(cfg, logger))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := makeRequest(router, "GET", "/test", nil, map[string]string{"Authorization": "Bearer valid-key"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIKeyAuthMiddleware_MissingKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	cfg := &config.Config{
		APIKeys: []string{"valid-key"},
	}

	router.Use(APIKeyAuthMiddleware(cfg, logger))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := makeRequest(router, "GET", "/test", nil) // Нет API ключа
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "API key required")
}

func TestAPIKeyAuthMiddleware_InvalidKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	cfg := &config.Config{
		APIKeys: []string{"valid-key"},
	}

	router.Use(APIKeyAuthMiddleware(cfg, logger))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := makeRequest(router, "GET", "/test", nil, map[string]string{"X-API-Key": "invalid-key"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid API key")
}
