package handler

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/roguepikachu/vanish/internal/domain"
	"github.com/roguepikachu/vanish/pkg"
	"github.com/roguepikachu/vanish/pkg/logger"
)

const (
	// TimeFormat is the standard format for time serialization (UTC, millisecond precision).
	TimeFormat = "2006-01-02T15:04:05.000Z"

	// PasteTemplateName is the name the HTML view renders.
	PasteTemplateName = "paste.html"
)

// PasteTemplate renders a paste as a minimal HTML document. html/template
// escapes the content, so embedded markup is shown as text.
var PasteTemplate = template.Must(template.New(PasteTemplateName).Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <title>Paste</title>
  </head>
  <body>
    <pre>{{ .Content }}</pre>
  </body>
</html>
`))

// PasteService defines the handler's dependency contract.
type PasteService interface {
	CreatePaste(ctx context.Context, content string, ttlSeconds, maxViews *int) (domain.Paste, error)
	ConsumePaste(ctx context.Context, id string) (domain.ConsumedPaste, error)
}

// Handler handles HTTP requests for pastes.
type Handler struct {
	svc     PasteService
	baseURL string
}

// NewHandler constructs a Handler. baseURL is the origin share links point at.
func NewHandler(svc PasteService, baseURL string) *Handler {
	return &Handler{svc: svc, baseURL: strings.TrimRight(baseURL, "/")}
}

// ShareURL returns the human-facing link for id.
func (h *Handler) ShareURL(id string) string {
	return h.baseURL + pkg.ViewPathPrefix + id
}

// Field-level validation codes returned to clients.
const (
	codeInvalidContent  = "invalid_content"
	codeInvalidTTL      = "invalid_ttl_seconds"
	codeInvalidMaxViews = "invalid_max_views"
)

// validationCode maps create errors to a client-facing code and message.
func validationCode(err error) (string, string, bool) {
	switch {
	case errors.Is(err, domain.ErrInvalidContent):
		return codeInvalidContent, "Invalid content", true
	case errors.Is(err, domain.ErrInvalidTTL):
		return codeInvalidTTL, "Invalid ttl_seconds", true
	case errors.Is(err, domain.ErrInvalidMaxViews):
		return codeInvalidMaxViews, "Invalid max_views", true
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		switch typeErr.Field {
		case "content":
			return codeInvalidContent, "Invalid content", true
		case "ttl_seconds":
			return codeInvalidTTL, "Invalid ttl_seconds", true
		case "max_views":
			return codeInvalidMaxViews, "Invalid max_views", true
		}
	}
	return "", "", false
}

// Create handles the creation of a new paste.
func (h *Handler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	var req domain.CreatePasteRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(ctx, "failed to bind JSON: %s", err.Error())
		if code, msg, ok := validationCode(err); ok {
			c.JSON(http.StatusBadRequest, pkg.NewError(code, msg))
			return
		}
		body := pkg.NewError("bad_request", "invalid request")
		body.Error.Details = err.Error()
		c.JSON(http.StatusBadRequest, body)
		return
	}

	paste, err := h.svc.CreatePaste(ctx, req.Content, req.TTLSeconds, req.MaxViews)
	if err != nil {
		if code, msg, ok := validationCode(err); ok {
			logger.WithField(ctx, "code", code).Debug("paste rejected")
			c.JSON(http.StatusBadRequest, pkg.NewError(code, msg))
			return
		}
		logger.Error(ctx, "failed to create paste: %s", err.Error())
		c.JSON(http.StatusInternalServerError, pkg.NewError("internal_error", "internal server error"))
		return
	}
	logger.With(ctx, map[string]any{
		"ttl_seconds": req.TTLSeconds,
		"max_views":   req.MaxViews,
	}).Info("paste created")
	c.JSON(http.StatusCreated, domain.CreatePasteResponseDTO{
		ID:  paste.ID,
		URL: h.ShareURL(paste.ID),
	})
}

// consume runs the shared read path of Get and View. It writes nothing; ok is
// false when the caller must answer 404 (gone) or 500 (status set accordingly).
func (h *Handler) consume(c *gin.Context) (domain.ConsumedPaste, int, bool) {
	ctx := c.Request.Context()
	got, err := h.svc.ConsumePaste(ctx, c.Param("id"))
	if err == nil {
		logger.Debug(ctx, "paste consumed")
		return got, http.StatusOK, true
	}
	if domain.IsGone(err) {
		// The reason stays in the logs; readers only ever see 404.
		logger.WithField(ctx, "reason", err.Error()).Debug("paste unavailable")
		return domain.ConsumedPaste{}, http.StatusNotFound, false
	}
	logger.Error(ctx, "failed to consume paste: %s", err.Error())
	return domain.ConsumedPaste{}, http.StatusInternalServerError, false
}

// Get handles fetching a paste as JSON.
func (h *Handler) Get(c *gin.Context) {
	got, status, ok := h.consume(c)
	if !ok {
		if status == http.StatusNotFound {
			c.JSON(status, pkg.NewError("not_found", "paste not found"))
			return
		}
		c.JSON(status, pkg.NewError("internal_error", "internal server error"))
		return
	}
	var expiresAt *string
	if got.ExpiresAt != nil {
		v := got.ExpiresAt.UTC().Format(TimeFormat)
		expiresAt = &v
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, domain.PasteResponseDTO{
		Content:        got.Content,
		RemainingViews: got.RemainingViews,
		ExpiresAt:      expiresAt,
	})
}

// View handles rendering a paste as an HTML page.
func (h *Handler) View(c *gin.Context) {
	got, status, ok := h.consume(c)
	if !ok {
		if status == http.StatusNotFound {
			c.String(status, "Not Found")
			return
		}
		c.String(status, "Internal Server Error")
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")
	c.HTML(http.StatusOK, PasteTemplateName, gin.H{"Content": got.Content})
}
