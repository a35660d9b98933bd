package api

import (
	"context"
	"net/http"

	"github.com/Domenick1991/parcelbooking/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// LoginService exchanges the shared staff password for a token.
type LoginService interface {
	Login(ctx context.Context, ip, password string) (auth.Token, error)
}

type AuthHandler struct {
	service LoginService
	log     logrus.FieldLogger
}

type loginRequest struct {
	Password string `json:"password"`
}

func NewAuthHandler(service LoginService, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{service: service, log: log}
}

func (h *AuthHandler) Register(router *gin.RouterGroup) {
	router.POST("/admin/login", h.login)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	token, err := h.service.Login(c.Request.Context(), c.ClientIP(), req.Password)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, token)
}
