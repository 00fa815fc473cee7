package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-workflow/internal/api/dto"
	"github.com/spec-kit/issue-workflow/internal/auth"
	"github.com/spec-kit/issue-workflow/internal/domain"
	"github.com/spec-kit/issue-workflow/internal/service"
	"github.com/spec-kit/issue-workflow/internal/workflow"
	apperrors "github.com/spec-kit/issue-workflow/pkg/util/errorutil"
)

// IssuesHandler exposes workflow commands and reads over HTTP.
type IssuesHandler struct {
	service *service.IssueService
}

// NewIssuesHandler constructs handler.
func NewIssuesHandler(issueService *service.IssueService) *IssuesHandler {
	return &IssuesHandler{service: issueService}
}

// Create POST /issues.
func (h *IssuesHandler) Create(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	issue, err := h.service.Create(c.UserContext(), actor, workflow.CreateInput{
		TemplateID:  req.TemplateID,
		Subject:     req.Subject,
		Responsible: req.Responsible,
		Fields:      req.Fields,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": issueSummary(issue)})
}

// Clone POST /issues/:id/clone.
func (h *IssuesHandler) Clone(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CloneIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	issue, err := h.service.Clone(c.UserContext(), actor, workflow.CloneInput{
		OriginID:    c.Params("id"),
		Subject:     req.Subject,
		Responsible: req.Responsible,
		Fields:      req.Fields,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": issueSummary(issue)})
}

// Get GET /issues/:id.
func (h *IssuesHandler) Get(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	issue, err := h.service.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueSummary(issue)})
}

// Values GET /issues/:id/values.
func (h *IssuesHandler) Values(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	views, err := h.service.Values(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.FieldValueResponse, 0, len(views))
	for _, view := range views {
		items = append(items, dto.FieldValueResponse{
			FieldID:   view.Field.ID,
			FieldName: view.Field.Name,
			Kind:      view.Field.Kind,
			ValueID:   view.ValueID,
			Value:     view.Value,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// Events GET /issues/:id/events.
func (h *IssuesHandler) Events(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	records, err := h.service.Events(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.EventResponse, 0, len(records))
	for _, record := range records {
		items = append(items, dto.EventResponse{
			ID:        record.ID,
			Type:      record.Type,
			UserID:    record.UserID,
			CreatedAt: record.CreatedAt,
			Parameter: record.Parameter,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// History GET /issues/:id/fields/:fieldID/history.
func (h *IssuesHandler) History(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	changes, err := h.service.History(c.UserContext(), actor, c.Params("id"), c.Params("fieldID"))
	if err != nil {
		return err
	}
	items := make([]dto.ChangeResponse, 0, len(changes))
	for _, change := range changes {
		items = append(items, dto.ChangeResponse{
			ID:         change.ID,
			FieldID:    change.FieldID,
			UserID:     change.UserID,
			CreatedAt:  change.CreatedAt,
			OldValueID: change.OldValueID,
			NewValueID: change.NewValueID,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// ChangeState POST /issues/:id/state.
func (h *IssuesHandler) ChangeState(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ChangeStateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if req.StateID == "" {
		return apperrors.NewBadRequest("state_id required")
	}
	err := h.service.ChangeState(c.UserContext(), actor, workflow.ChangeStateInput{
		IssueID:  c.Params("id"),
		StateID:  req.StateID,
		Assignee: req.Responsible,
		Fields:   req.Fields,
	})
	if err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Update PATCH /issues/:id.
func (h *IssuesHandler) Update(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	err := h.service.Update(c.UserContext(), actor, workflow.UpdateInput{
		IssueID: c.Params("id"),
		Subject: req.Subject,
		Fields:  req.Fields,
	})
	if err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Reassign POST /issues/:id/reassign.
func (h *IssuesHandler) Reassign(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ReassignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if req.ResponsibleID == "" {
		return apperrors.NewBadRequest("responsible_id required")
	}
	if err := h.service.Reassign(c.UserContext(), actor, c.Params("id"), req.ResponsibleID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Suspend POST /issues/:id/suspend.
func (h *IssuesHandler) Suspend(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.SuspendRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	until, err := time.Parse("2006-01-02", req.Until)
	if err != nil {
		return apperrors.NewBadRequest("until must be a date in YYYY-MM-DD form")
	}
	if err := h.service.Suspend(c.UserContext(), actor, c.Params("id"), until); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Resume POST /issues/:id/resume.
func (h *IssuesHandler) Resume(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.Resume(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Delete DELETE /issues/:id.
func (h *IssuesHandler) Delete(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func issueSummary(issue *domain.Issue) dto.IssueSummary {
	return dto.IssueSummary{
		ID:             issue.ID,
		Subject:        issue.Subject,
		TemplateID:     issue.TemplateID,
		StateID:        issue.StateID,
		AuthorID:       issue.AuthorID,
		ResponsibleID:  issue.ResponsibleID,
		OriginID:       issue.OriginID,
		SuspendedUntil: issue.SuspendedUntil,
		CreatedAt:      issue.CreatedAt,
		ChangedAt:      issue.ChangedAt,
		ClosedAt:       issue.ClosedAt,
	}
}
