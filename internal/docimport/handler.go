package docimport

import (
	"net/http"

	apphttp "angebot_backend/internal/http"
	"angebot_backend/platform/httpkit"
	"angebot_backend/platform/logger"
	"angebot_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// AnalyzeRequest carries the extracted text of an uploaded proposal.
// Word extraction happens client-side; the server only sees plain text.
type AnalyzeRequest struct {
	DocumentText string `json:"documentText" validate:"required,min=1"`
}

// Handler handles HTTP requests for document import
type Handler struct {
	svc *Service
	val *validator.Validator
}

// NewHandler creates a new document import handler
func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the upload routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze", h.Analyze)
}

func (h *Handler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.svc.Analyze(c.Request.Context(), req.DocumentText)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Module represents the document import module
type Module struct {
	handler *Handler
}

// NewModule creates a new document import module
func NewModule(extractor Extractor, library Library, log *logger.Logger, val *validator.Validator) *Module {
	svc := New(extractor, library, log)
	return &Module{handler: NewHandler(svc, val)}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "docimport"
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/upload"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
