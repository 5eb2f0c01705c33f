package controller

import (
	"errors"
	"io"
	"mime/multipart"

	"ai-docassist/internal/dto"
	"ai-docassist/internal/pkg/logger"
	"ai-docassist/internal/pkg/serverutils"
	"ai-docassist/internal/service"
	"ai-docassist/pkg/agent"

	"github.com/gofiber/fiber/v2"
)

type IAgentController interface {
	RegisterRoutes(r fiber.Router)
}

type agentController struct {
	agentService    service.IAgentService
	documentService service.IDocumentService
	healthService   service.IHealthService
	log             logger.ILogger
}

func NewAgentController(
	agentService service.IAgentService,
	documentService service.IDocumentService,
	healthService service.IHealthService,
	log logger.ILogger,
) IAgentController {
	return &agentController{
		agentService:    agentService,
		documentService: documentService,
		healthService:   healthService,
		log:             log,
	}
}

func (c *agentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/agent")
	h.Get("/health", c.Health)

	h.Post("/query", serverutils.JwtMiddleware, c.Query)
	h.Post("/document-query", serverutils.JwtMiddleware, c.DocumentQuery)
	h.Post("/auto-query", serverutils.JwtMiddleware, c.AutoQuery)
	h.Post("/upload", serverutils.JwtMiddleware, c.Upload)
	h.Get("/documents", serverutils.JwtMiddleware, c.ListDocuments)
	h.Get("/documents/:documentId/status", serverutils.JwtMiddleware, c.DocumentStatus)
	h.Delete("/documents/:documentId", serverutils.JwtMiddleware, c.DeleteDocument)
	h.Get("/agents", serverutils.JwtMiddleware, c.Agents)
	h.Get("/status", serverutils.JwtMiddleware, c.Status)
	h.Get("/stats", serverutils.JwtMiddleware, c.Stats)
}

// agentError renders errors in the {success:false, error} envelope the
// agent endpoints use instead of the global {message} one.
func agentError(ctx *fiber.Ctx, err error) error {
	if errors.Is(err, agent.ErrNoDocuments) {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	var apiErr *serverutils.ApiError
	if errors.As(err, &apiErr) {
		return ctx.Status(apiErr.Status).JSON(fiber.Map{
			"success": false,
			"error":   apiErr.Message,
		})
	}

	return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"error":   "Internal server error",
	})
}

// sourceStrings flattens result sources into the display strings clients
// expect, deduplicated in order.
func sourceStrings(sources []agent.Source) []string {
	out := make([]string, 0, len(sources))
	seen := make(map[string]bool, len(sources))
	for _, s := range sources {
		label := s.DocumentName
		if s.URL != "" {
			label = s.URL
		}
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		out = append(out, label)
	}
	return out
}

func (c *agentController) Health(ctx *fiber.Ctx) error {
	status, components := c.healthService.Check(ctx.Context())
	return ctx.JSON(fiber.Map{
		"success":    status != "unhealthy",
		"status":     status,
		"components": components,
	})
}

func (c *agentController) Query(ctx *fiber.Ctx) error {
	userId, err := userIdFromLocals(ctx)
	if err != nil {
		return agentError(ctx, err)
	}

	var req dto.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return agentError(ctx, serverutils.NewApiError(fiber.StatusBadRequest, "invalid request body"))
	}
	if err := serverutils.ValidateStruct(&req); err != nil {
		return agentError(ctx, serverutils.NewApiError(fiber.StatusBadRequest, err.Error()))
	}

	outcome, err := c.agentService.Query(ctx.Context(), userId, &req)
	if err != nil {
		return agentError(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"success":    true,
		"response":   outcome.Result.Response,
		"agent_used": outcome.AgentUsed,
		"error":      "",
	})
}

func (c *agentController) DocumentQuery(ctx *fiber.Ctx) error {
	userId, err := userIdFromLocals(ctx)
	if err != nil {
		return agentError(ctx, err)
	}

	var req dto.DocumentQueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return agentError(ctx, serverutils.NewApiError(fiber.StatusBadRequest, "invalid request body"))
	}
	if err := serverutils.ValidateStruct(&req); err != nil {
		return agentError(ctx, serverutils.NewApiError(fiber.StatusBadRequest, err.Error()))
	}

	outcome, err := c.agentService.DocumentQuery(ctx.Context(), userId, &req)
	if err != nil {
		return agentError(ctx, err)
	}

	sources := sourceStrings(outcome.Result.Sources)
	return ctx.JSON(fiber.Map{
		"success":          true,
		"response":         outcome.Result.Response,
		"sources":          sources,
		"documents_found":  len(sources),
		"document_matches": len(outcome.Result.Sources),
		"error":            "",
	})
}

func (c *agentController) AutoQuery(ctx *fiber.Ctx) error {
	userId, err := userIdFromLocals(ctx)
	if err != nil {
		return agentError(ctx, err)
	}

	var req dto.AutoQueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return agentError(ctx, serverutils.NewApiError(fiber.StatusBadRequest, "invalid request body"))
	}
	if err := serverutils.ValidateStruct(&req); err != nil {
		return agentError(ctx, serverutils.NewApiError(fiber.StatusBadRequest, err.Error()))
	}

	outcome, err := c.agentService.AutoQuery(ctx.Context(), userId, &req)
	if err != nil {
		return agentError(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"success":         true,
		"response":        outcome.Result.Response,
		"agent_selection": outcome.Selection,
		"sources":         sourceStrings(outcome.Result.Sources),
		"error":           "",
	})
}

func readUpload(fh *multipart.FileHeader) (service.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return service.Upload{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return service.Upload{}, err
	}
	return service.Upload{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (c *agentController) Upload(ctx *fiber.Ctx) error {
	userId, err := userIdFromLocals(ctx)
	if err != nil {
		return agentError(ctx, err)
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		return agentError(ctx, serverutils.NewApiError(fiber.StatusBadRequest, "expected multipart form"))
	}
	files := form.File["files"]
	if len(files) == 0 {
		return agentError(ctx, serverutils.NewApiError(fiber.StatusBadRequest, "no files provided"))
	}

	uploads := make([]service.Upload, 0, len(files))
	for _, fh := range files {
		u, err := readUpload(fh)
		if err != nil {
			return agentError(ctx, serverutils.NewApiError(fiber.StatusBadRequest, "failed to read uploaded file"))
		}
		uploads = append(uploads, u)
	}

	docs, err := c.documentService.Upload(ctx.Context(), userId, uploads)
	if err != nil {
		return agentError(ctx, err)
	}
	return ctx.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success":   true,
		"message":   "Documents accepted for processing",
		"documents": docs,
	})
}

func (c *agentController) ListDocuments(ctx *fiber.Ctx) error {
	userId, err := userIdFromLocals(ctx)
	if err != nil {
		return agentError(ctx, err)
	}

	docs, err := c.documentService.List(ctx.Context(), userId)
	if err != nil {
		return agentError(ctx, err)
	}
	if docs == nil {
		docs = []*dto.DocumentResponse{}
	}
	return ctx.JSON(fiber.Map{
		"success":   true,
		"documents": docs,
	})
}

func (c *agentController) DocumentStatus(ctx *fiber.Ctx) error {
	userId, err := userIdFromLocals(ctx)
	if err != nil {
		return agentError(ctx, err)
	}
	documentId, err := pathUUID(ctx, "documentId")
	if err != nil {
		return agentError(ctx, err)
	}

	doc, err := c.documentService.Status(ctx.Context(), userId, documentId)
	if err != nil {
		return agentError(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"success":  true,
		"document": doc,
	})
}

func (c *agentController) DeleteDocument(ctx *fiber.Ctx) error {
	userId, err := userIdFromLocals(ctx)
	if err != nil {
		return agentError(ctx, err)
	}
	documentId, err := pathUUID(ctx, "documentId")
	if err != nil {
		return agentError(ctx, err)
	}

	if err := c.documentService.Delete(ctx.Context(), userId, documentId); err != nil {
		return agentError(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Document deleted",
	})
}

func (c *agentController) Agents(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{
		"success": true,
		"agents":  c.agentService.Agents(),
	})
}

func (c *agentController) Status(ctx *fiber.Ctx) error {
	status, components := c.healthService.Check(ctx.Context())

	recentErrors, err := c.log.GetLogs("ERROR", 10, 0)
	if err != nil {
		recentErrors = []logger.LogEntry{}
	}

	return ctx.JSON(fiber.Map{
		"success":       status != "unhealthy",
		"status":        status,
		"components":    components,
		"recent_errors": recentErrors,
	})
}

func (c *agentController) Stats(ctx *fiber.Ctx) error {
	userId, err := userIdFromLocals(ctx)
	if err != nil {
		return agentError(ctx, err)
	}

	stats, err := c.agentService.Stats(ctx.Context(), userId)
	if err != nil {
		return agentError(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"stats": fiber.Map{
			"queries_by_agent": stats.QueriesByAgent,
			"documents": fiber.Map{
				"total":      stats.DocumentsTotal,
				"completed":  stats.DocumentsCompleted,
				"processing": stats.DocumentsPending,
				"failed":     stats.DocumentsFailed,
			},
		},
	})
}
