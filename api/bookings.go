package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/parcelbooking/internal/docs"
	"github.com/Domenick1991/parcelbooking/internal/domain"
	"github.com/Domenick1991/parcelbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AreaLabeler turns an area id into a printable place name.
type AreaLabeler interface {
	AreaLabel(ctx context.Context, areaID int64) (string, error)
}

// SettingsReader returns the current business settings.
type SettingsReader interface {
	Get(ctx context.Context) (domain.Settings, error)
}

type BookingHandler struct {
	service  booking.BookingUseCase
	areas    AreaLabeler
	settings SettingsReader
	loc      *time.Location
	log      logrus.FieldLogger
}

type trackingResponse struct {
	Booking domain.Booking              `json:"booking"`
	History []domain.StatusHistoryEntry `json:"history"`
}

type quoteRejectedResponse struct {
	Error string            `json:"error"`
	Quote domain.PriceQuote `json:"quote"`
}

type statusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

type riderRequest struct {
	Name  string `json:"rider_name"`
	Phone string `json:"rider_phone"`
}

type notesRequest struct {
	Notes string `json:"admin_notes"`
}

func NewBookingHandler(service booking.BookingUseCase, areas AreaLabeler, settings SettingsReader, loc *time.Location, log logrus.FieldLogger) *BookingHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &BookingHandler{service: service, areas: areas, settings: settings, loc: loc, log: log}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/bookings", h.create)
	router.GET("/track/:tracking_id", h.track)
	router.GET("/track/:tracking_id/waybill", h.waybill)
}

func (h *BookingHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.GET("/bookings", h.list)
	router.GET("/bookings/:id", h.get)
	router.PUT("/bookings/:id/status", h.transition)
	router.PUT("/bookings/:id/rider", h.assignRider)
	router.PUT("/bookings/:id/notes", h.updateNotes)
}

// publicView strips the fields only staff may see.
func publicView(b domain.Booking) domain.Booking {
	b.AdminNotes = ""
	b.RiderPhone = ""
	return b
}

func (h *BookingHandler) create(c *gin.Context) {
	var req booking.CreateBookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	created, quote, err := h.service.QuoteAndCreate(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrQuoteRequired) {
			c.JSON(http.StatusUnprocessableEntity, quoteRejectedResponse{Error: err.Error(), Quote: quote})
			return
		}
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, publicView(*created))
}

func (h *BookingHandler) track(c *gin.Context) {
	details, err := h.service.GetByTrackingID(c.Request.Context(), c.Param("tracking_id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, trackingResponse{Booking: publicView(*details.Booking), History: details.History})
}

func (h *BookingHandler) waybill(c *gin.Context) {
	ctx := c.Request.Context()
	details, err := h.service.GetByTrackingID(ctx, c.Param("tracking_id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	data := docs.WaybillData{
		Booking:  publicView(*details.Booking),
		History:  details.History,
		Location: h.loc,
	}
	if h.settings != nil {
		current, err := h.settings.Get(ctx)
		if err != nil {
			writeError(c, h.log, err)
			return
		}
		data.BusinessName = current.BusinessName
		data.SupportPhone = current.SupportPhone
		data.Currency = current.Currency
	}
	if h.areas != nil {
		data.PickupArea = h.areaLabel(ctx, details.Booking.Pickup.AreaID)
		data.DropoffArea = h.areaLabel(ctx, details.Booking.Dropoff.AreaID)
	}

	pdf, filename, err := docs.BuildWaybill(data)
	if err != nil {
		writeError(c, h.log, fmt.Errorf("render waybill: %w", err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// areaLabel falls back to an empty label; a missing place name never blocks
// the document.
func (h *BookingHandler) areaLabel(ctx context.Context, areaID int64) string {
	label, err := h.areas.AreaLabel(ctx, areaID)
	if err != nil {
		h.log.WithError(err).WithField("area_id", areaID).Warn("area label lookup failed")
		return ""
	}
	return label
}

func (h *BookingHandler) list(c *gin.Context) {
	limit, offset := pagination(c)
	bookings, err := h.service.List(c.Request.Context(), domain.BookingFilter{
		Status: domain.BookingStatus(c.Query("status")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	details, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *BookingHandler) transition(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	updated, err := h.service.TransitionStatus(c.Request.Context(), id, domain.BookingStatus(req.Status), req.Note)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *BookingHandler) assignRider(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req riderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	updated, err := h.service.AssignRider(c.Request.Context(), id, req.Name, req.Phone)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *BookingHandler) updateNotes(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req notesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	updated, err := h.service.UpdateAdminNotes(c.Request.Context(), id, req.Notes)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
