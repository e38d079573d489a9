package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/nkko/flowvault/pkg/services"
)

type APIHandlers struct {
	backupService    *services.Backup
	integrityService *services.Integrity
	lockService      *services.Locks
	validator        *validator.Validate
}

func NewAPIHandlers(
	backupService *services.Backup,
	integrityService *services.Integrity,
	lockService *services.Locks,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		backupService:    backupService,
		integrityService: integrityService,
		lockService:      lockService,
		validator:        validator,
	}
}

func (h *APIHandlers) CreateBackup(c fiber.Ctx) error {
	workflowID := c.Params("id")
	if workflowID == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req CreateBackupRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	info, err := h.backupService.CreateSnapshot(c.Context(), services.CreateSnapshotRequest{
		WorkflowID:  workflowID,
		Description: req.Description,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(info)
}

func (h *APIHandlers) ListBackups(c fiber.Ctx) error {
	workflowID := c.Params("id")
	if workflowID == "" {
		return badRequest(c, "Workflow ID is required")
	}

	infos, err := h.backupService.ListSnapshots(c.Context(), workflowID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflow_id": workflowID,
		"backups":     infos,
		"count":       len(infos),
	})
}

func (h *APIHandlers) RestoreBackup(c fiber.Ctx) error {
	workflowID := c.Params("id")
	backupID := c.Params("backupId")

	if workflowID == "" {
		return badRequest(c, "Workflow ID is required")
	}

	if backupID == "" {
		return badRequest(c, "Backup ID is required")
	}

	var req RestoreBackupRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	result, err := h.backupService.RestoreSnapshot(c.Context(), services.RestoreSnapshotRequest{
		WorkflowID:        workflowID,
		BackupID:          backupID,
		AutoBackupCurrent: req.AutoBackupCurrent,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) DiffBackups(c fiber.Ctx) error {
	workflowID := c.Params("id")
	if workflowID == "" {
		return badRequest(c, "Workflow ID is required")
	}

	diff, err := h.backupService.DiffSnapshots(c.Context(), services.DiffSnapshotsRequest{
		WorkflowID: workflowID,
		BackupID1:  c.Query("from"),
		BackupID2:  c.Query("to"),
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(diff)
}

func (h *APIHandlers) RotateBackups(c fiber.Ctx) error {
	workflowID := c.Params("id")
	if workflowID == "" {
		return badRequest(c, "Workflow ID is required")
	}

	keepLast := 0

	if keepStr := c.Query("keep"); keepStr != "" {
		keep, err := strconv.Atoi(keepStr)
		if err != nil {
			return badRequest(c, "Invalid keep parameter: "+err.Error())
		}

		keepLast = keep
	}

	deleted, err := h.backupService.RotateSnapshots(c.Context(), workflowID, keepLast)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflow_id": workflowID,
		"deleted":     deleted,
		"count":       len(deleted),
	})
}

// bindWorkflow decodes a workflow payload and converts it through the strict
// connection boundary. Shape violations come back so the handler can report
// them alongside the analysis result.
func (h *APIHandlers) bindWorkflow(c fiber.Ctx) (*WorkflowPayload, error) {
	var payload WorkflowPayload
	if err := c.Bind().JSON(&payload); err != nil {
		return nil, err
	}

	return &payload, nil
}

func (h *APIHandlers) ValidateStructure(c fiber.Ctx) error {
	payload, err := h.bindWorkflow(c)
	if err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	workflow, violations := payload.ToWorkflow()

	result, err := h.integrityService.ValidateStructure(c.Context(), workflow)
	if err != nil {
		return handleServiceError(c, err)
	}

	for _, violation := range violations {
		result.AddError(violation)
	}

	return c.JSON(result)
}

func (h *APIHandlers) ValidateExpressions(c fiber.Ctx) error {
	payload, err := h.bindWorkflow(c)
	if err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	workflow, _ := payload.ToWorkflow()

	result, err := h.integrityService.ValidateExpressions(c.Context(), workflow)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) LintWorkflow(c fiber.Ctx) error {
	payload, err := h.bindWorkflow(c)
	if err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	workflow, _ := payload.ToWorkflow()

	report, err := h.integrityService.Lint(c.Context(), workflow)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(report)
}

func (h *APIHandlers) SuggestImprovements(c fiber.Ctx) error {
	payload, err := h.bindWorkflow(c)
	if err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	workflow, _ := payload.ToWorkflow()

	report, err := h.integrityService.SuggestImprovements(c.Context(), workflow)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(report)
}

func (h *APIHandlers) AcquireLock(c fiber.Ctx) error {
	resourceID := c.Params("resourceId")
	holderID := c.Params("holderId")

	err := h.lockService.AcquireLock(c.Context(), resourceID, holderID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ReleaseLock(c fiber.Ctx) error {
	resourceID := c.Params("resourceId")
	holderID := c.Params("holderId")

	err := h.lockService.ReleaseLock(c.Context(), resourceID, holderID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ReleaseAllLocks(c fiber.Ctx) error {
	holderID := c.Params("holderId")

	err := h.lockService.ReleaseAllLocks(c.Context(), holderID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GetLockStatus(c fiber.Ctx) error {
	resourceID := c.Params("resourceId")

	holders, err := h.lockService.Holders(c.Context(), resourceID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(LockStatusResponse{
		ResourceID: resourceID,
		Locked:     len(holders) > 0,
		Holders:    holders,
	})
}

func (h *APIHandlers) CheckDeletable(c fiber.Ctx) error {
	resourceID := c.Params("resourceId")
	force := c.Query("force") == "true"

	err := h.lockService.CheckDeletable(c.Context(), resourceID, force)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"resource_id": resourceID,
		"deletable":   true,
	})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"status":    "healthy",
		"message":   "FlowVault API is healthy",
		"timestamp": time.Now().UTC(),
	})
}
