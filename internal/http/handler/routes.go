package handler

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"intakeapi/internal/audit"
	"intakeapi/internal/model"
	"intakeapi/internal/repository"
	"intakeapi/internal/service"
)

// Handler wires the intake use cases to HTTP routes.
type Handler struct {
	db           *sql.DB
	documents    service.DocumentService
	applications service.ApplicationService
	auditor      *audit.Recorder
}

func New(db *sql.DB, documents service.DocumentService, applications service.ApplicationService, auditor *audit.Recorder) *Handler {
	return &Handler{
		db:           db,
		documents:    documents,
		applications: applications,
		auditor:      auditor,
	}
}

// Register attaches all routes. Fixed segments must be registered before the
// :id routes they would otherwise shadow.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/health", h.Health)
	app.Get("/healthz", h.Liveness)

	app.Post("/clients/:clientID/documents", h.UploadDocument)
	app.Get("/clients/:clientID/documents", h.ListClientDocuments)
	app.Patch("/clients/:clientID/application", h.SaveApplication)
	app.Get("/clients/:clientID/application", h.GetClientApplication)

	app.Get("/documents/review-queue", h.DocumentReviewQueue)
	app.Get("/documents/:id", h.GetDocument)
	app.Get("/documents/:id/download", h.DownloadDocument)
	app.Post("/documents/:id/review", h.ReviewDocument)
	app.Delete("/documents/:id", h.DeleteDocument)

	app.Get("/applications/review-queue", h.ApplicationReviewQueue)
	app.Get("/applications/:id", h.GetApplication)
	app.Post("/applications/:id/submit", h.SubmitApplication)
	app.Post("/applications/:id/status", h.SetApplicationStatus)

	app.Get("/audit/resources/:type/:id", h.ResourceTrail)
	app.Get("/audit/actors/:id", h.ActorTrail)

	app.Post("/admin/impersonation/start", h.StartImpersonation)
	app.Post("/admin/impersonation/end", h.EndImpersonation)
}

// actorFromCtx builds the audit identity from request headers. Identity
// verification happens upstream at the gateway; the header carries the result.
func actorFromCtx(c *fiber.Ctx) model.Actor {
	id := c.Get("X-Actor-ID")
	if id == "" {
		id = "anonymous"
	}
	return model.Actor{ID: id, IP: c.IP()}
}

func pageParams(c *fiber.Ctx) (limit, offset int, err error) {
	limit, err = strconv.Atoi(c.Query("limit", "10"))
	if err != nil {
		return 0, 0, writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
	}
	offset, err = strconv.Atoi(c.Query("offset", "0"))
	if err != nil {
		return 0, 0, writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
	}
	return limit, offset, nil
}

func validID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	}
	return id, nil
}

// Health verifies database connectivity.
func (h *Handler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
}

// Liveness is the bare process probe.
func (h *Handler) Liveness(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusOK)
}

// UploadDocument accepts multipart/form-data with fields "file" and
// "document_type".
func (h *Handler) UploadDocument(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
	}
	defer f.Close()

	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}

	doc, err := h.documents.Upload(
		c.UserContext(),
		actorFromCtx(c),
		c.Params("clientID"),
		c.FormValue("document_type"),
		f, fh.Filename, ct, fh.Size,
	)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

func (h *Handler) ListClientDocuments(c *fiber.Ctx) error {
	limit, offset, err := pageParams(c)
	if err != nil {
		return err
	}
	res, err := h.documents.ListByClient(c.UserContext(), c.Params("clientID"), limit, offset)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(res)
}

func (h *Handler) DocumentReviewQueue(c *fiber.Ctx) error {
	limit, offset, err := pageParams(c)
	if err != nil {
		return err
	}
	res, err := h.documents.ListForReview(c.UserContext(), limit, offset)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(res)
}

func (h *Handler) GetDocument(c *fiber.Ctx) error {
	id, err := validID(c)
	if err != nil {
		return err
	}
	doc, err := h.documents.Get(c.UserContext(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(doc)
}

// DownloadDocument returns a time-limited download URL for the stored file.
func (h *Handler) DownloadDocument(c *fiber.Ctx) error {
	id, err := validID(c)
	if err != nil {
		return err
	}
	url, err := h.documents.PresignDownload(c.UserContext(), actorFromCtx(c), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"url": url})
}

type reviewRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// ReviewDocument applies the administrator decision to a pending document.
func (h *Handler) ReviewDocument(c *fiber.Ctx) error {
	id, err := validID(c)
	if err != nil {
		return err
	}
	var req reviewRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}
	doc, err := h.documents.Review(c.UserContext(), actorFromCtx(c), id, model.DocumentStatus(req.Status), req.Reason)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(doc)
}

func (h *Handler) DeleteDocument(c *fiber.Ctx) error {
	id, err := validID(c)
	if err != nil {
		return err
	}
	if err := h.documents.Delete(c.UserContext(), actorFromCtx(c), id); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SaveApplication merges a partial JSON payload into the client's
// application, creating it on first save.
func (h *Handler) SaveApplication(c *fiber.Ctx) error {
	payload := map[string]any{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "body must be a JSON object")
		}
	}
	app, err := h.applications.Save(c.UserContext(), actorFromCtx(c), c.Params("clientID"), c.Query("application_id"), payload)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(app)
}

func (h *Handler) GetClientApplication(c *fiber.Ctx) error {
	app, err := h.applications.GetByClient(c.UserContext(), c.Params("clientID"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(app)
}

func (h *Handler) GetApplication(c *fiber.Ctx) error {
	id, err := validID(c)
	if err != nil {
		return err
	}
	app, err := h.applications.Get(c.UserContext(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(app)
}

func (h *Handler) SubmitApplication(c *fiber.Ctx) error {
	id, err := validID(c)
	if err != nil {
		return err
	}
	app, err := h.applications.Submit(c.UserContext(), actorFromCtx(c), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(app)
}

type statusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// SetApplicationStatus applies the administrator decision.
func (h *Handler) SetApplicationStatus(c *fiber.Ctx) error {
	id, err := validID(c)
	if err != nil {
		return err
	}
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}
	app, err := h.applications.SetStatus(c.UserContext(), actorFromCtx(c), id, model.ApplicationStatus(req.Status), req.Reason)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(app)
}

func (h *Handler) ApplicationReviewQueue(c *fiber.Ctx) error {
	limit, offset, err := pageParams(c)
	if err != nil {
		return err
	}
	res, err := h.applications.ListForReview(c.UserContext(), limit, offset)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(res)
}

// ResourceTrail returns a resource's audit entries, newest first.
func (h *Handler) ResourceTrail(c *fiber.Ctx) error {
	resourceType := c.Params("type")
	switch resourceType {
	case model.ResourceDocument, model.ResourceApplication, model.ResourceUser:
	default:
		return writeError(c, fiber.StatusBadRequest, "INVALID_RESOURCE", "unknown resource type")
	}
	limit, offset, err := pageParams(c)
	if err != nil {
		return err
	}
	entries, err := h.auditor.Trail(c.UserContext(), resourceType, c.Params("id"), repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"data": entries})
}

func (h *Handler) ActorTrail(c *fiber.Ctx) error {
	limit, _, err := pageParams(c)
	if err != nil {
		return err
	}
	entries, err := h.auditor.TrailForActor(c.UserContext(), c.Params("id"), limit)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"data": entries})
}

type impersonationRequest struct {
	TargetClientID string `json:"target_client_id"`
}

// StartImpersonation records that an administrator starts acting on a
// client's behalf. Authorization happens upstream; the trail entry is the
// point here.
func (h *Handler) StartImpersonation(c *fiber.Ctx) error {
	var req impersonationRequest
	if err := c.BodyParser(&req); err != nil || req.TargetClientID == "" {
		return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "target_client_id is required")
	}
	actor := actorFromCtx(c)
	h.auditor.Record(c.UserContext(), actor, model.ActionImpersonationStart, model.ResourceUser, req.TargetClientID, map[string]any{
		"target_client_id": req.TargetClientID,
	})
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"impersonating": req.TargetClientID})
}

func (h *Handler) EndImpersonation(c *fiber.Ctx) error {
	var req impersonationRequest
	if err := c.BodyParser(&req); err != nil || req.TargetClientID == "" {
		return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "target_client_id is required")
	}
	actor := actorFromCtx(c)
	h.auditor.Record(c.UserContext(), actor, model.ActionImpersonationEnd, model.ResourceUser, req.TargetClientID, map[string]any{
		"target_client_id": req.TargetClientID,
	})
	return c.SendStatus(fiber.StatusNoContent)
}
