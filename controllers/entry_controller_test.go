package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/dailydraw/giveaway_backend/models"
	"github.com/dailydraw/giveaway_backend/services"
)

type testValidator struct {
	validator *validator.Validate
}

func (tv *testValidator) Validate(i interface{}) error {
	return tv.validator.Struct(i)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestBuildListFilter(t *testing.T) {
	tests := []struct {
		name   string
		status string
		date   string
		want   bson.M
	}{
		{
			name: "no filters",
			want: bson.M{},
		},
		{
			name: "date only",
			date: "2026-08-28",
			want: bson.M{"date": "2026-08-28"},
		},
		{
			name:   "pending with date",
			status: models.EntryStatusPending,
			date:   "2026-08-28",
			want:   bson.M{"status": models.EntryStatusPending, "date": "2026-08-28"},
		},
		{
			name:   "completed only",
			status: models.EntryStatusCompleted,
			want:   bson.M{"status": models.EntryStatusCompleted},
		},
		{
			name:   "verified expands to union",
			status: models.EntryStatusVerified,
			want: bson.M{"$or": []bson.M{
				{"status": models.EntryStatusVerified},
				{"status": models.EntryStatusCompleted},
				{"verified": true},
			}},
		},
		{
			name:   "verified union ignores date",
			status: models.EntryStatusVerified,
			date:   "2026-08-28",
			want: bson.M{"$or": []bson.M{
				{"status": models.EntryStatusVerified},
				{"status": models.EntryStatusCompleted},
				{"verified": true},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildListFilter(tt.status, tt.date)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("buildListFilter(%q, %q) = %v, want %v", tt.status, tt.date, got, tt.want)
			}
		})
	}
}

func TestValidateBulkRequest(t *testing.T) {
	tests := []struct {
		name string
		req  models.BulkRequest
		want string
	}{
		{
			name: "missing operation",
			req:  models.BulkRequest{EntryIDs: []string{"abc"}},
			want: "Invalid request parameters",
		},
		{
			name: "missing ids",
			req:  models.BulkRequest{Operation: models.BulkOperationDelete},
			want: "Invalid request parameters",
		},
		{
			name: "delete is valid",
			req:  models.BulkRequest{Operation: models.BulkOperationDelete, EntryIDs: []string{"abc"}},
			want: "",
		},
		{
			name: "update without status",
			req:  models.BulkRequest{Operation: models.BulkOperationUpdateStatus, EntryIDs: []string{"abc"}},
			want: "Status is required for update operation",
		},
		{
			name: "update with status",
			req: models.BulkRequest{
				Operation: models.BulkOperationUpdateStatus,
				EntryIDs:  []string{"abc"},
				Status:    models.EntryStatusVerified,
			},
			want: "",
		},
		{
			name: "unknown operation",
			req:  models.BulkRequest{Operation: "archive", EntryIDs: []string{"abc"}},
			want: "Invalid operation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validateBulkRequest(&tt.req); got != tt.want {
				t.Errorf("validateBulkRequest(%+v) = %q, want %q", tt.req, got, tt.want)
			}
		})
	}
}

func TestOnlyStatus(t *testing.T) {
	status := models.EntryStatusCompleted
	upi := "user@bank"

	if !onlyStatus(&models.EntryUpdateRequest{Status: &status}) {
		t.Error("expected a bare status change to be detected")
	}
	if onlyStatus(&models.EntryUpdateRequest{Status: &status, UpiID: &upi}) {
		t.Error("expected extra fields to disqualify the bare transition")
	}
}

func TestCreateEntryRejectsMissingFields(t *testing.T) {
	e := newTestEcho()
	window := services.NewWindowController(nil, nil)
	ec := NewEntryController(nil, nil, window)

	req := jsonRequest(http.MethodPost, "/api/entries", `{"name":"Alice"}`)
	rec := httptest.NewRecorder()

	if err := ec.CreateEntry(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp models.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Success {
		t.Fatal("expected success=false")
	}
}

func TestCreateEntryRejectedWhileClosed(t *testing.T) {
	e := newTestEcho()
	window := services.NewWindowController(nil, nil)
	window.End(context.Background())
	ec := NewEntryController(nil, nil, window)

	body := `{"name":"Alice","email":"alice@example.com","phone":"+15550001111","date":"2026-08-28"}`
	req := jsonRequest(http.MethodPost, "/api/entries", body)
	rec := httptest.NewRecorder()

	if err := ec.CreateEntry(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 while closed, got %d", rec.Code)
	}
}

func TestEntryHandlersRejectInvalidID(t *testing.T) {
	e := newTestEcho()
	ec := NewEntryController(nil, nil, nil)

	handlers := map[string]func(echo.Context) error{
		"get":    ec.GetEntry,
		"update": ec.UpdateEntry,
		"delete": ec.DeleteEntry,
	}

	for name, handler := range handlers {
		t.Run(name, func(t *testing.T) {
			req := jsonRequest(http.MethodGet, "/api/entries/not-an-id", "{}")
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetParamNames("id")
			c.SetParamValues("not-an-id")

			if err := handler(c); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 for malformed id, got %d", rec.Code)
			}
		})
	}
}

func TestBulkUpdateValidation(t *testing.T) {
	e := newTestEcho()
	ec := NewEntryController(nil, nil, nil)

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{
			name:     "unknown operation",
			body:     `{"operation":"archive","entryIds":["64b000000000000000000001"]}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "update without status",
			body:     `{"operation":"updateStatus","entryIds":["64b000000000000000000001"]}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "malformed entry id",
			body:     `{"operation":"delete","entryIds":["nope"]}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "empty id list is a no-op",
			body:     `{"operation":"delete","entryIds":[]}`,
			wantCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := jsonRequest(http.MethodPost, "/api/entries/bulk", tt.body)
			rec := httptest.NewRecorder()

			if err := ec.BulkUpdate(e.NewContext(req, rec)); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d (body %s)", tt.wantCode, rec.Code, rec.Body.String())
			}
		})
	}
}
