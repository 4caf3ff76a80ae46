package analysis

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func testApp(t *testing.T, svc *Service) *fiber.App {
	t.Helper()
	app := fiber.New()
	fakeAuth := func(c *fiber.Ctx) error {
		c.Locals("user_id", "user-1")
		return c.Next()
	}
	RegisterRoutes(app.Group("/analysis"), svc, fakeAuth)
	return app
}

func TestAnalyzeEndpoint(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO sheet_analyses`).
		WithArgs(pgxmock.AnyArg(), "user-1", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	svc := NewService(mock, nil, &fakeVision{result: json.RawMessage(`{"key":"E minor"}`)})
	app := testApp(t, svc)

	body, _ := json.Marshal(AnalyzeInput{
		ImageBase64: base64.StdEncoding.EncodeToString([]byte("sheet")),
	})
	req := httptest.NewRequest("POST", "/analysis/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var a Analysis
	if err := json.NewDecoder(resp.Body).Decode(&a); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if a.UserID != "user-1" || string(a.Result) != `{"key":"E minor"}` {
		t.Fatalf("unexpected response: %+v", a)
	}
}

func TestAnalyzeEndpointValidation(t *testing.T) {
	svc := NewService(newMock(t), nil, &fakeVision{})
	app := testApp(t, svc)

	req := httptest.NewRequest("POST", "/analysis/", bytes.NewReader([]byte(`{"image_base64":""}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGetAnalysisEndpointForbidden(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"id", "user_id", "image_hash", "result", "created_at"}).
		AddRow("an-1", "someone-else", "h", []byte(`{}`), time.Now())
	mock.ExpectQuery(`SELECT id, user_id, image_hash, result, created_at`).
		WithArgs("an-1").
		WillReturnRows(rows)

	svc := NewService(mock, nil, &fakeVision{})
	app := testApp(t, svc)

	resp, err := app.Test(httptest.NewRequest("GET", "/analysis/an-1", nil), -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}
