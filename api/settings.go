package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Domenick1991/parcelbooking/internal/domain"
	"github.com/Domenick1991/parcelbooking/internal/service/settings"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type SettingsHandler struct {
	service settings.SettingsUseCase
	log     logrus.FieldLogger
}

type settingRequest struct {
	Value json.RawMessage `json:"value"`
}

func NewSettingsHandler(service settings.SettingsUseCase, log logrus.FieldLogger) *SettingsHandler {
	return &SettingsHandler{service: service, log: log}
}

func (h *SettingsHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.GET("/settings", h.get)
	router.PUT("/settings/:key", h.update)
}

func (h *SettingsHandler) get(c *gin.Context) {
	current, err := h.service.Get(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, current)
}

// update expects {"value": <json>} where the value type depends on the key.
func (h *SettingsHandler) update(c *gin.Context) {
	var req settingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if len(req.Value) == 0 {
		badRequest(c, errors.New("value is required"))
		return
	}
	updated, err := h.service.Update(c.Request.Context(), domain.SettingKey(c.Param("key")), req.Value)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
