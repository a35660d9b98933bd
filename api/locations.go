package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/parcelbooking/internal/domain"
	"github.com/Domenick1991/parcelbooking/internal/service/location"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type LocationHandler struct {
	service location.LocationUseCase
	log     logrus.FieldLogger
}

type nameRequest struct {
	Name string `json:"name"`
}

type createCityRequest struct {
	StateID int64  `json:"state_id"`
	Name    string `json:"name"`
}

type createZoneRequest struct {
	CityID int64  `json:"city_id"`
	Name   string `json:"name"`
}

type createAreaRequest struct {
	CityID int64  `json:"city_id"`
	ZoneID *int64 `json:"zone_id"`
	Name   string `json:"name"`
}

type assignZoneRequest struct {
	ZoneID *int64 `json:"zone_id"`
}

type activeRequest struct {
	Active *bool `json:"active"`
}

func NewLocationHandler(service location.LocationUseCase, log logrus.FieldLogger) *LocationHandler {
	return &LocationHandler{service: service, log: log}
}

func (h *LocationHandler) Register(router *gin.RouterGroup) {
	router.GET("/locations/states", h.states)
	router.GET("/locations/states/:id/cities", h.cities)
	router.GET("/locations/cities/:id/areas", h.areas)
}

func (h *LocationHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.POST("/states", h.createState)
	router.POST("/cities", h.createCity)
	router.POST("/zones", h.createZone)
	router.POST("/areas", h.createArea)
	router.GET("/cities/:id/zones", h.zones)
	router.PUT("/areas/:id/zone", h.assignZone)
	for _, kind := range []domain.LocationKind{
		domain.LocationKindState, domain.LocationKindCity, domain.LocationKindZone, domain.LocationKindArea,
	} {
		router.PUT("/"+string(kind)+"/:id/active", h.setActive(kind))
	}
}

func (h *LocationHandler) states(c *gin.Context) {
	states, err := h.service.ActiveStates(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, states)
}

func (h *LocationHandler) cities(c *gin.Context) {
	stateID, ok := paramID(c, "id")
	if !ok {
		return
	}
	cities, err := h.service.ActiveCities(c.Request.Context(), stateID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, cities)
}

func (h *LocationHandler) areas(c *gin.Context) {
	cityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	areas, err := h.service.ActiveAreas(c.Request.Context(), cityID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, areas)
}

func (h *LocationHandler) zones(c *gin.Context) {
	cityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	zones, err := h.service.ListZones(c.Request.Context(), cityID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, zones)
}

func (h *LocationHandler) createState(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	state, err := h.service.CreateState(c.Request.Context(), req.Name)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, state)
}

func (h *LocationHandler) createCity(c *gin.Context) {
	var req createCityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	city, err := h.service.CreateCity(c.Request.Context(), req.StateID, req.Name)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, city)
}

func (h *LocationHandler) createZone(c *gin.Context) {
	var req createZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	zone, err := h.service.CreateZone(c.Request.Context(), req.CityID, req.Name)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, zone)
}

func (h *LocationHandler) createArea(c *gin.Context) {
	var req createAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	area, err := h.service.CreateArea(c.Request.Context(), req.CityID, req.ZoneID, req.Name)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, area)
}

// assignZone sets an area's zone; a null zone_id unassigns it.
func (h *LocationHandler) assignZone(c *gin.Context) {
	areaID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req assignZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.service.AssignAreaZone(c.Request.Context(), areaID, req.ZoneID); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LocationHandler) setActive(kind domain.LocationKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req activeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if req.Active == nil {
			badRequest(c, errors.New("active is required"))
			return
		}
		if err := h.service.SetActive(c.Request.Context(), kind, id, *req.Active); err != nil {
			writeError(c, h.log, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
