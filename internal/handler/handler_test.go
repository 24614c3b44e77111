package handler

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	apperrors "github.com/hospitalroster/core/pkg/errors"
)

func TestRespondJSON_WritesStatusAndBody(t *testing.T) {
	rec := httptest.NewRecorder()
	respondJSON(rec, 202, map[string]string{"run_id": "abc"})

	if rec.Code != 202 {
		t.Errorf("expected status 202, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected valid JSON body: %v", err)
	}
	if body["run_id"] != "abc" {
		t.Errorf("expected run_id abc, got %v", body)
	}
}

func TestRespondError_WritesAppErrorFields(t *testing.T) {
	rec := httptest.NewRecorder()
	err := apperrors.New(apperrors.CodeNotFound, "任务不存在").WithDetails("run-1")
	respondError(rec, err)

	if rec.Code != 404 {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	var body map[string]interface{}
	if jsonErr := json.Unmarshal(rec.Body.Bytes(), &body); jsonErr != nil {
		t.Fatalf("expected valid JSON body: %v", jsonErr)
	}
	if body["code"] != string(apperrors.CodeNotFound) {
		t.Errorf("expected code %s, got %v", apperrors.CodeNotFound, body["code"])
	}
	if body["details"] != "run-1" {
		t.Errorf("expected details run-1, got %v", body["details"])
	}
}

func TestRespondAppOrInternal_PassesThroughAppError(t *testing.T) {
	rec := httptest.NewRecorder()
	respondAppOrInternal(rec, apperrors.New(apperrors.CodeQueueFull, "队列已满"))

	if rec.Code != 503 {
		t.Errorf("expected 503 for queue full, got %d", rec.Code)
	}
}

func TestRespondAppOrInternal_WrapsPlainError(t *testing.T) {
	rec := httptest.NewRecorder()
	respondAppOrInternal(rec, errors.New("unexpected"))

	if rec.Code != 500 {
		t.Errorf("expected 500 for wrapped plain error, got %d", rec.Code)
	}
	var body map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["code"] != string(apperrors.CodeInternal) {
		t.Errorf("expected INTERNAL_ERROR code, got %v", body["code"])
	}
}
