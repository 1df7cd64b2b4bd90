package middleware

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/jpmarichal/ccmwf-go/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
}

func TestErrorHandlerMapsAppErrorToItsStatus(t *testing.T) {
	app := newTestApp()
	app.Get("/", func(c *fiber.Ctx) error {
		return apperr.New("generation_not_found", "no such generation", fiber.StatusNotFound)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}

	var body ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if body.Success {
		t.Error("expected success=false")
	}
	if body.Error.Code != "generation_not_found" {
		t.Errorf("Error.Code = %q, want generation_not_found", body.Error.Code)
	}
}

func TestErrorHandlerMapsFiberErrorByStatusCode(t *testing.T) {
	app := newTestApp()
	app.Get("/", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusUnauthorized, "missing token")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}

	var body ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if body.Error.Code != apperr.CodeUnauthorized {
		t.Errorf("Error.Code = %q, want %q", body.Error.Code, apperr.CodeUnauthorized)
	}
}

func TestErrorHandlerDefaultsUnknownErrorsTo500(t *testing.T) {
	app := newTestApp()
	app.Get("/", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}

	var body ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if body.Error.Code != apperr.CodeInternalError {
		t.Errorf("Error.Code = %q, want %q", body.Error.Code, apperr.CodeInternalError)
	}
}

func TestRequestIDGeneratesWhenAbsentAndEchoesWhenPresent(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("request_id").(string))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("expected a generated X-Request-ID header")
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "client-supplied-id")
	resp2, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if got := resp2.Header.Get("X-Request-ID"); got != "client-supplied-id" {
		t.Errorf("X-Request-ID = %q, want echoed client-supplied-id", got)
	}
}

func TestRecoverConvertsPanicToInternalErrorResponse(t *testing.T) {
	app := fiber.New()
	app.Use(Recover())
	app.Get("/", func(c *fiber.Ctx) error {
		panic("unexpected nil pointer")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}

	var body ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if body.Error.Code != apperr.CodeInternalError {
		t.Errorf("Error.Code = %q, want %q", body.Error.Code, apperr.CodeInternalError)
	}
}

func TestMapHTTPStatusToCode(t *testing.T) {
	tests := map[int]string{
		400: apperr.CodeValidationFailed,
		401: apperr.CodeUnauthorized,
		403: apperr.CodeForbidden,
		404: apperr.CodeNotFound,
		409: apperr.CodeConflict,
		429: "RATE_LIMITED",
		500: apperr.CodeInternalError,
		502: "SERVICE_UNAVAILABLE",
		418: "UNKNOWN_ERROR",
	}
	for status, want := range tests {
		if got := mapHTTPStatusToCode(status); got != want {
			t.Errorf("mapHTTPStatusToCode(%d) = %q, want %q", status, got, want)
		}
	}
}
