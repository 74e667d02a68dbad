package http_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/oliauusc/CSCI201-Group7/internal/adapters/http"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestAccessLog_StatusFromReturnedError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"fiber error", fiber.NewError(fiber.StatusTeapot, "short and stout"), fiber.StatusTeapot},
		{"plain error", errors.New("boom"), fiber.StatusInternalServerError},
		{"no error", nil, fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t)
			app := fiber.New(fiber.Config{DisableStartupMessage: true})
			app.Use(handler.AccessLogMiddleware())
			app.Get("/x", func(c *fiber.Ctx) error {
				if tt.err != nil {
					return tt.err
				}
				return c.SendString("ok")
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/x", nil), -1)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("expected response %d, got %d", tt.want, resp.StatusCode)
			}

			var entry struct {
				Status int `json:"status"`
			}
			if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
				t.Fatalf("decode log line %q: %v", buf.String(), err)
			}
			if entry.Status != tt.want {
				t.Errorf("expected logged status %d, got %d", tt.want, entry.Status)
			}
		})
	}
}
