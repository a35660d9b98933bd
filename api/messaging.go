package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/parcelbooking/internal/domain"
	"github.com/Domenick1991/parcelbooking/internal/service/messaging"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type MessagingHandler struct {
	service messaging.MessagingUseCase
	log     logrus.FieldLogger
}

type templateRequest struct {
	Channel domain.Channel `json:"channel"`
	Body    string         `json:"body"`
	Active  *bool          `json:"active"`
}

type previewRequest struct {
	Vars map[string]string `json:"vars"`
}

type previewResponse struct {
	Key  string `json:"key"`
	Body string `json:"body"`
}

func NewMessagingHandler(service messaging.MessagingUseCase, log logrus.FieldLogger) *MessagingHandler {
	return &MessagingHandler{service: service, log: log}
}

func (h *MessagingHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.GET("/templates", h.listTemplates)
	router.PUT("/templates/:key", h.upsertTemplate)
	router.POST("/templates/:key/preview", h.preview)
	router.GET("/message-logs", h.listLogs)
}

func (h *MessagingHandler) listTemplates(c *gin.Context) {
	templates, err := h.service.ListTemplates(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

func (h *MessagingHandler) upsertTemplate(c *gin.Context) {
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	tpl, err := h.service.UpsertTemplate(c.Request.Context(), domain.MessageTemplate{
		Key:     c.Param("key"),
		Channel: req.Channel,
		Body:    req.Body,
		Active:  req.Active == nil || *req.Active,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

func (h *MessagingHandler) preview(c *gin.Context) {
	var req previewRequest
	// An empty body previews with sample values only.
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	key := c.Param("key")
	body, err := h.service.Preview(c.Request.Context(), key, req.Vars)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, previewResponse{Key: key, Body: body})
}

func (h *MessagingHandler) listLogs(c *gin.Context) {
	var bookingID *int64
	if raw := c.Query("booking_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "invalid booking_id", Field: "booking_id"})
			return
		}
		bookingID = &id
	}
	limit, offset := pagination(c)
	logs, err := h.service.ListLogs(c.Request.Context(), bookingID, limit, offset)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
