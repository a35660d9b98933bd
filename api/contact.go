package api

import (
	"net/http"

	"github.com/Domenick1991/parcelbooking/internal/domain"
	"github.com/Domenick1991/parcelbooking/internal/service/contact"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ContactHandler struct {
	service contact.ContactUseCase
	log     logrus.FieldLogger
}

type contactStatusRequest struct {
	Status string `json:"status"`
}

func NewContactHandler(service contact.ContactUseCase, log logrus.FieldLogger) *ContactHandler {
	return &ContactHandler{service: service, log: log}
}

func (h *ContactHandler) Register(router *gin.RouterGroup) {
	router.POST("/contact", h.submit)
}

func (h *ContactHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.GET("/contact-messages", h.list)
	router.PUT("/contact-messages/:id/status", h.setStatus)
}

func (h *ContactHandler) submit(c *gin.Context) {
	var req contact.SubmitInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	msg, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": msg.ID, "status": msg.Status})
}

func (h *ContactHandler) list(c *gin.Context) {
	limit, offset := pagination(c)
	msgs, err := h.service.List(c.Request.Context(), domain.ContactStatus(c.Query("status")), limit, offset)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func (h *ContactHandler) setStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req contactStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	msg, err := h.service.SetStatus(c.Request.Context(), id, domain.ContactStatus(req.Status))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}
