package api

import (
	"net/http"

	"github.com/Domenick1991/parcelbooking/internal/domain"
	"github.com/Domenick1991/parcelbooking/internal/service/pricing"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type PricingHandler struct {
	service pricing.PricingUseCase
	log     logrus.FieldLogger
}

type quoteRequest struct {
	PickupAreaID  int64    `json:"pickup_area_id"`
	DropoffAreaID int64    `json:"dropoff_area_id"`
	AddonCodes    []string `json:"addon_codes"`
}

type rateRequest struct {
	FromZoneID int64        `json:"from_zone_id"`
	ToZoneID   int64        `json:"to_zone_id"`
	BasePrice  domain.Money `json:"base_price"`
	EtaText    string       `json:"eta_text"`
	Active     *bool        `json:"active"`
}

type addonRequest struct {
	Code   string       `json:"code"`
	Name   string       `json:"name"`
	Fee    domain.Money `json:"fee"`
	Active *bool        `json:"active"`
}

func NewPricingHandler(service pricing.PricingUseCase, log logrus.FieldLogger) *PricingHandler {
	return &PricingHandler{service: service, log: log}
}

func (h *PricingHandler) Register(router *gin.RouterGroup) {
	router.GET("/addons", h.activeAddons)
	router.POST("/quotes", h.quote)
}

func (h *PricingHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.GET("/zone-rates", h.listRates)
	router.PUT("/zone-rates", h.upsertRate)
	router.GET("/addons", h.listAddons)
	router.PUT("/addons", h.upsertAddon)
}

// quote always answers 200 when the lookup ran; an unavailable route is a
// quote with success=false.
func (h *PricingHandler) quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	quote, err := h.service.Quote(c.Request.Context(), req.PickupAreaID, req.DropoffAreaID, req.AddonCodes)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (h *PricingHandler) activeAddons(c *gin.Context) {
	addons, err := h.service.ActiveAddons(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, addons)
}

func (h *PricingHandler) listRates(c *gin.Context) {
	rates, err := h.service.ListRates(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, rates)
}

func (h *PricingHandler) upsertRate(c *gin.Context) {
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	rate, err := h.service.UpsertRate(c.Request.Context(), domain.ZoneRate{
		FromZoneID: req.FromZoneID,
		ToZoneID:   req.ToZoneID,
		BasePrice:  req.BasePrice,
		EtaText:    req.EtaText,
		Active:     req.Active == nil || *req.Active,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, rate)
}

func (h *PricingHandler) listAddons(c *gin.Context) {
	addons, err := h.service.ListAddons(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, addons)
}

func (h *PricingHandler) upsertAddon(c *gin.Context) {
	var req addonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	addon, err := h.service.UpsertAddon(c.Request.Context(), domain.Addon{
		Code:   req.Code,
		Name:   req.Name,
		Fee:    req.Fee,
		Active: req.Active == nil || *req.Active,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, addon)
}
