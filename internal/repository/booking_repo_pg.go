package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/parcelbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	CreateWithHistory(ctx context.Context, booking *domain.Booking, entry *domain.StatusHistoryEntry) error
	TrackingIDExists(ctx context.Context, trackingID string) (bool, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByTrackingID(ctx context.Context, trackingID string) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error)
	History(ctx context.Context, bookingID int64) ([]domain.StatusHistoryEntry, error)
	TransitionStatus(ctx context.Context, bookingID int64, entry *domain.StatusHistoryEntry) (*domain.Booking, error)
	AssignRider(ctx context.Context, bookingID int64, name, phone string) (*domain.Booking, error)
	UpdateAdminNotes(ctx context.Context, bookingID int64, notes string) (*domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const trackingIDConstraint = "bookings_tracking_id_key"

const bookingColumns = `id, tracking_id,
	sender_name, sender_phone, sender_whatsapp,
	receiver_name, receiver_phone, receiver_whatsapp,
	pickup_state_id, pickup_city_id, pickup_area_id, pickup_street, pickup_landmark,
	dropoff_state_id, dropoff_city_id, dropoff_area_id, dropoff_street, dropoff_landmark,
	package_description, customer_notes,
	(price_base * 100)::bigint, (price_addons * 100)::bigint, (price_total * 100)::bigint,
	addons_selected, eta_text, status, rider_name, rider_phone, admin_notes, created_at, updated_at`

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		b                   domain.Booking
		base, addons, total int64
	)
	err := row.Scan(&b.ID, &b.TrackingID,
		&b.Sender.Name, &b.Sender.Phone, &b.Sender.WhatsApp,
		&b.Receiver.Name, &b.Receiver.Phone, &b.Receiver.WhatsApp,
		&b.Pickup.StateID, &b.Pickup.CityID, &b.Pickup.AreaID, &b.Pickup.Street, &b.Pickup.Landmark,
		&b.Dropoff.StateID, &b.Dropoff.CityID, &b.Dropoff.AreaID, &b.Dropoff.Street, &b.Dropoff.Landmark,
		&b.PackageDescription, &b.CustomerNotes,
		&base, &addons, &total,
		&b.AddonsSelected, &b.EtaText, &b.Status, &b.RiderName, &b.RiderPhone, &b.AdminNotes, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	b.PriceBase = domain.Money(base)
	b.PriceAddons = domain.Money(addons)
	b.PriceTotal = domain.Money(total)
	if b.AddonsSelected == nil {
		b.AddonsSelected = []string{}
	}
	return &b, nil
}

// CreateWithHistory inserts the booking and its first history entry in one
// transaction. A duplicate tracking id returns domain.ErrTrackingIDTaken and
// leaves nothing behind.
func (r *PGBookingRepository) CreateWithHistory(ctx context.Context, booking *domain.Booking, entry *domain.StatusHistoryEntry) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	addons := booking.AddonsSelected
	if addons == nil {
		addons = []string{}
	}

	err = tx.QueryRow(ctx, `INSERT INTO bookings (
		tracking_id,
		sender_name, sender_phone, sender_whatsapp,
		receiver_name, receiver_phone, receiver_whatsapp,
		pickup_state_id, pickup_city_id, pickup_area_id, pickup_street, pickup_landmark,
		dropoff_state_id, dropoff_city_id, dropoff_area_id, dropoff_street, dropoff_landmark,
		package_description, customer_notes,
		price_base, price_addons, price_total, addons_selected, eta_text, status)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19,
		$20::bigint::numeric / 100, $21::bigint::numeric / 100, $22::bigint::numeric / 100, $23, $24, $25)
	RETURNING id, created_at, updated_at`,
		booking.TrackingID,
		booking.Sender.Name, booking.Sender.Phone, booking.Sender.WhatsApp,
		booking.Receiver.Name, booking.Receiver.Phone, booking.Receiver.WhatsApp,
		booking.Pickup.StateID, booking.Pickup.CityID, booking.Pickup.AreaID, booking.Pickup.Street, booking.Pickup.Landmark,
		booking.Dropoff.StateID, booking.Dropoff.CityID, booking.Dropoff.AreaID, booking.Dropoff.Street, booking.Dropoff.Landmark,
		booking.PackageDescription, booking.CustomerNotes,
		int64(booking.PriceBase), int64(booking.PriceAddons), int64(booking.PriceTotal), addons, booking.EtaText, booking.Status,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err, trackingIDConstraint):
			return domain.ErrTrackingIDTaken
		case isForeignKeyViolation(err):
			return domain.ValidationError{Field: "location", Msg: "references an unknown state, city or area", Err: err}
		}
		return fmt.Errorf("insert booking: %w", err)
	}

	entry.BookingID = booking.ID
	if err := insertHistory(ctx, tx, entry); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func insertHistory(ctx context.Context, tx pgx.Tx, entry *domain.StatusHistoryEntry) error {
	// clock_timestamp, not now(): entries must order by the time the row
	// lock was held, not by when the transaction began.
	err := tx.QueryRow(ctx, `INSERT INTO booking_status_history (booking_id, status, note, created_by, created_at)
		VALUES ($1, $2, $3, $4, clock_timestamp())
		RETURNING id, created_at`, entry.BookingID, entry.Status, entry.Note, entry.CreatedBy).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert status history: %w", err)
	}
	return nil
}

func (r *PGBookingRepository) TrackingIDExists(ctx context.Context, trackingID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE tracking_id=$1)`, trackingID).Scan(&exists)
	return exists, err
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id))
}

func (r *PGBookingRepository) GetByTrackingID(ctx context.Context, trackingID string) (*domain.Booking, error) {
	return scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE tracking_id=$1`, trackingID))
}

func (r *PGBookingRepository) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	limit := filter.Limit
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, string(filter.Status), limit, max(filter.Offset, 0))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) History(ctx context.Context, bookingID int64) ([]domain.StatusHistoryEntry, error) {
	rows, err := r.db.Query(ctx, `SELECT id, booking_id, status, note, created_by, created_at
		FROM booking_status_history WHERE booking_id=$1 ORDER BY created_at, id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]domain.StatusHistoryEntry, 0)
	for rows.Next() {
		var h domain.StatusHistoryEntry
		if err := rows.Scan(&h.ID, &h.BookingID, &h.Status, &h.Note, &h.CreatedBy, &h.CreatedAt); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

// TransitionStatus updates the booking status and appends the history entry
// in one transaction. The UPDATE takes the row lock first so concurrent
// transitions of the same booking serialize and their history rows land in
// lock order.
func (r *PGBookingRepository) TransitionStatus(ctx context.Context, bookingID int64, entry *domain.StatusHistoryEntry) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	updated, err := scanBooking(tx.QueryRow(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2
		RETURNING `+bookingColumns, entry.Status, bookingID))
	if err != nil {
		return nil, err
	}

	entry.BookingID = updated.ID
	if err := insertHistory(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *PGBookingRepository) AssignRider(ctx context.Context, bookingID int64, name, phone string) (*domain.Booking, error) {
	return scanBooking(r.db.QueryRow(ctx, `UPDATE bookings SET rider_name=$1, rider_phone=$2, updated_at=now() WHERE id=$3
		RETURNING `+bookingColumns, name, phone, bookingID))
}

func (r *PGBookingRepository) UpdateAdminNotes(ctx context.Context, bookingID int64, notes string) (*domain.Booking, error) {
	return scanBooking(r.db.QueryRow(ctx, `UPDATE bookings SET admin_notes=$1, updated_at=now() WHERE id=$2
		RETURNING `+bookingColumns, notes, bookingID))
}

var _ BookingRepository = (*PGBookingRepository)(nil)
