package docs

import (
	"bytes"
	"testing"
	"time"

	"github.com/Domenick1991/parcelbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWaybill(t *testing.T) {
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	data := WaybillData{
		Booking: domain.Booking{
			TrackingID:     "DL20250301001",
			Sender:         domain.Party{Name: "Ada", Phone: "08030000000"},
			Receiver:       domain.Party{Name: "Bola", Phone: "08040000000", WhatsApp: "08040000000"},
			Pickup:         domain.Address{Street: "1 Rumuola Road"},
			Dropoff:        domain.Address{Street: "2 Eliozu Street", Landmark: "Market"},
			PriceBase:      domain.MustMoney("1200"),
			PriceAddons:    domain.MustMoney("300"),
			PriceTotal:     domain.MustMoney("1500"),
			AddonsSelected: []string{"FRAGILE"},
			EtaText:        "45-60 minutes",
			Status:         domain.BookingStatusConfirmed,
			CreatedAt:      created,
		},
		History: []domain.StatusHistoryEntry{
			{Status: domain.BookingStatusPending, Note: domain.InitialStatusNote, CreatedAt: created},
			{Status: domain.BookingStatusConfirmed, Note: "Rider assigned", CreatedAt: created.Add(time.Hour)},
		},
		PickupArea:   "Rumuola, Port Harcourt, Rivers",
		BusinessName: "Swift Dispatch",
		Currency:     "NGN",
	}

	pdf, filename, err := BuildWaybill(data)
	require.NoError(t, err)
	assert.Equal(t, "WAYBILL_DL20250301001.pdf", filename)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
	assert.Greater(t, len(pdf), 500)
}

func TestBuildWaybill_MinimalBooking(t *testing.T) {
	_, filename, err := BuildWaybill(WaybillData{Booking: domain.Booking{TrackingID: "DL20250301002"}})
	require.NoError(t, err)
	assert.Equal(t, "WAYBILL_DL20250301002.pdf", filename)
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "NGN 1500.00", money("NGN", domain.MustMoney("1500")))
	assert.Equal(t, "0.50", money("", domain.MustMoney("0.5")))
}
