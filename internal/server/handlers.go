package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"maqua-crm/internal/briefing"
	apperrors "maqua-crm/internal/common/errors"
	"maqua-crm/internal/common/logger"
	"maqua-crm/internal/common/validation"
	"maqua-crm/internal/submission"
)

const briefingRequestSchema = `{
	"type": "object",
	"required": ["text"],
	"properties": {
		"text": {"type": "string", "minLength": 1},
		"skipAudit": {"type": "boolean"},
		"paymentMethod": {"type": "string"},
		"autoGenerateCode": {"type": "boolean"}
	}
}`

const sessionRequestSchema = `{
	"type": "object",
	"required": ["token"],
	"properties": {
		"token": {"type": "string", "minLength": 1}
	}
}`

// Handlers holds the HTTP endpoints of the briefing API.
type Handlers struct {
	engine   *briefing.Engine
	contexts *briefing.ContextBuilder
	service  *submission.Service
	log      logger.Logger

	briefingValidator *validation.Validator
	sessionValidator  *validation.Validator
}

// NewHandlers wires the endpoints.
func NewHandlers(service *submission.Service, log logger.Logger) (*Handlers, error) {
	briefingValidator, err := validation.NewValidator(briefingRequestSchema)
	if err != nil {
		return nil, err
	}
	sessionValidator, err := validation.NewValidator(sessionRequestSchema)
	if err != nil {
		return nil, err
	}
	return &Handlers{
		engine:            briefing.NewEngine(briefing.DefaultOptions(), log),
		contexts:          briefing.NewContextBuilder(log),
		service:           service,
		log:               log,
		briefingValidator: briefingValidator,
		sessionValidator:  sessionValidator,
	}, nil
}

type briefingRequest struct {
	Text             string `json:"text"`
	SkipAudit        bool   `json:"skipAudit"`
	PaymentMethod    string `json:"paymentMethod"`
	AutoGenerateCode *bool  `json:"autoGenerateCode"`
}

type sessionRequest struct {
	Token string `json:"token"`
}

// ParseCustomer parses a briefing into the normalized customer record
// without touching the CRM.
func (h *Handlers) ParseCustomer(c *gin.Context) {
	var req briefingRequest
	if !h.readBody(c, h.briefingValidator, &req) {
		return
	}
	autoGenerate := true
	if req.AutoGenerateCode != nil {
		autoGenerate = *req.AutoGenerateCode
	}
	result, err := h.engine.ParseCustomer(req.Text, autoGenerate)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ParseOpportunity parses a briefing into the opportunity context,
// running the customer parse first for the fallback fields.
func (h *Handlers) ParseOpportunity(c *gin.Context) {
	var req briefingRequest
	if !h.readBody(c, h.briefingValidator, &req) {
		return
	}
	parsed, err := h.engine.ParseCustomer(req.Text, true)
	if err != nil {
		h.renderError(c, err)
		return
	}
	result := h.contexts.ParseOpportunity(req.Text, parsed.Customer)
	c.JSON(http.StatusOK, result)
}

// Submit runs the full submission pipeline.
func (h *Handlers) Submit(c *gin.Context) {
	var req briefingRequest
	if !h.readBody(c, h.briefingValidator, &req) {
		return
	}
	result, err := h.service.Run(c.Request.Context(), req.Text, submission.RunOptions{
		SkipAudit:     req.SkipAudit,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateOpportunityFromSession creates the opportunity for a stored
// submission session.
func (h *Handlers) CreateOpportunityFromSession(c *gin.Context) {
	var req sessionRequest
	if !h.readBody(c, h.sessionValidator, &req) {
		return
	}
	outcome, err := h.service.CreateOpportunityFromSession(c.Request.Context(), req.Token)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// CreateTasks creates the follow-up tasks for a customer code.
func (h *Handlers) CreateTasks(c *gin.Context) {
	report, err := h.service.CreateTasksForCustomerCode(c.Request.Context(), c.Param("customerCode"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handlers) readBody(c *gin.Context, validator *validation.Validator, out interface{}) bool {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.renderError(c, apperrors.NewValidationError("reading request body").WithCause(err))
		return false
	}
	if err := validator.ValidateBytes(body); err != nil {
		h.renderError(c, err)
		return false
	}
	if err := json.Unmarshal(body, out); err != nil {
		h.renderError(c, apperrors.NewValidationError("decoding request body").WithCause(err))
		return false
	}
	return true
}

func (h *Handlers) renderError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	response := gin.H{"error": err.Error()}

	if stdErr, ok := err.(*apperrors.StandardError); ok {
		response["code"] = stdErr.Code
		if len(stdErr.Metadata) > 0 {
			response["metadata"] = stdErr.Metadata
		}
		switch stdErr.Code {
		case apperrors.CodeValidationFailed:
			status = http.StatusBadRequest
		case apperrors.CodeLookupNotFound:
			status = http.StatusNotFound
		case apperrors.CodeRemoteCallFailed, apperrors.CodeRemoteRejected:
			status = http.StatusBadGateway
		}
	}
	if h.log != nil && status >= 500 {
		h.log.Error("request failed", map[string]interface{}{"error": err.Error()})
	}
	c.JSON(status, response)
}
