package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/apartguide/apartguide/internal/models"
	"github.com/apartguide/apartguide/internal/services"
	"github.com/apartguide/apartguide/pkg/response"
)

// EmailHandler exposes the admin email surface: template CRUD, templated
// sends, and the delivery log.
type EmailHandler struct {
	email *services.EmailService
}

func NewEmailHandler(email *services.EmailService) *EmailHandler {
	return &EmailHandler{email: email}
}

type sendEmailRequest struct {
	TemplateName string            `json:"template_name" validate:"required,max=100"`
	To           string            `json:"to" validate:"required,email"`
	Data         map[string]string `json:"data"`
	UserID       *string           `json:"user_id" validate:"omitempty,uuid4"`
	PropertyID   *string           `json:"property_id" validate:"omitempty,uuid4"`
}

// POST /api/email/send
func (h *EmailHandler) Send(c *gin.Context) {
	var req sendEmailRequest
	if !bindAndValidate(c, &req) {
		return
	}

	log, err := h.email.Send(requestContext(c), services.SendInput{
		TemplateName: req.TemplateName,
		To:           req.To,
		Data:         req.Data,
		UserID:       req.UserID,
		PropertyID:   req.PropertyID,
	})
	if err != nil {
		// The failed attempt is still recorded in the log.
		response.Error(c, serviceError(err))
		return
	}

	response.Success(c, http.StatusOK, log)
}

// GET /api/email/templates
func (h *EmailHandler) ListTemplates(c *gin.Context) {
	templates, err := h.email.ListTemplates(requestContext(c))
	if err != nil {
		response.Error(c, serviceError(err))
		return
	}
	response.Success(c, http.StatusOK, templates)
}

// GET /api/email/templates/:id
func (h *EmailHandler) GetTemplate(c *gin.Context) {
	template, err := h.email.GetTemplate(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, serviceError(err))
		return
	}
	response.Success(c, http.StatusOK, template)
}

type createTemplateRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Subject string `json:"subject" validate:"required,max=300"`
	Body    string `json:"body" validate:"required"`
}

// POST /api/email/templates
func (h *EmailHandler) CreateTemplate(c *gin.Context) {
	var req createTemplateRequest
	if !bindAndValidate(c, &req) {
		return
	}

	template := &models.EmailTemplate{
		Name:    req.Name,
		Subject: req.Subject,
		Body:    req.Body,
	}
	if err := h.email.CreateTemplate(requestContext(c), template); err != nil {
		response.Error(c, serviceError(err))
		return
	}

	response.Success(c, http.StatusCreated, template)
}

type updateTemplateRequest struct {
	Name    *string `json:"name" validate:"omitempty,max=100"`
	Subject *string `json:"subject" validate:"omitempty,max=300"`
	Body    *string `json:"body"`
}

// PATCH /api/email/templates/:id
func (h *EmailHandler) UpdateTemplate(c *gin.Context) {
	var req updateTemplateRequest
	if !bindAndValidate(c, &req) {
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Subject != nil {
		updates["subject"] = *req.Subject
	}
	if req.Body != nil {
		updates["body"] = *req.Body
	}

	template, err := h.email.UpdateTemplate(requestContext(c), c.Param("id"), updates)
	if err != nil {
		response.Error(c, serviceError(err))
		return
	}

	response.Success(c, http.StatusOK, template)
}

// DELETE /api/email/templates/:id
func (h *EmailHandler) DeleteTemplate(c *gin.Context) {
	if err := h.email.DeleteTemplate(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, serviceError(err))
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// GET /api/email/logs
func (h *EmailHandler) ListLogs(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	perPage := parseIntQuery(c, "per_page", 50)

	logs, total, err := h.email.ListLogs(requestContext(c), page, perPage)
	if err != nil {
		response.Error(c, serviceError(err))
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, logs, &response.Meta{
		Page:    page,
		PerPage: perPage,
		Total:   int(total),
	})
}
