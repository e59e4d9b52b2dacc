package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/capitolcinema/booking-backend/internal/apperr"
	"github.com/capitolcinema/booking-backend/internal/mail"
	"github.com/capitolcinema/booking-backend/internal/payment"
	"github.com/capitolcinema/booking-backend/internal/queue"
	"github.com/capitolcinema/booking-backend/internal/repository"
)

// ShowingStore is the showing surface of the booking store.
type ShowingStore interface {
	ListUpcoming(ctx context.Context, movieID uint64) ([]repository.ShowingListItem, error)
	GetDetail(ctx context.Context, showingID uint64) (repository.ShowingDetail, error)
	SeatsWithOccupancy(ctx context.Context, roomID, showingID uint64) ([]repository.SeatState, error)
	Create(ctx context.Context, movieID, roomID uint64, basePrice float64, startsAt time.Time, threeD bool) (uint64, error)
}

// OrderStore is the order surface of the booking store.
type OrderStore interface {
	SeatsByIDs(ctx context.Context, roomID uint64, seatIDs []uint64) ([]repository.PricedSeat, error)
	CreateWithSeats(ctx context.Context, accountID, showingID uint64, b repository.Billing, seats []repository.OrderSeat) (uint64, error)
}

// Availability is the full seat-state payload of one showing: room
// metadata, the cached category catalog and every seat of the room with
// its occupied flag.
type Availability struct {
	ShowingID  uint64                    `json:"showing_id"`
	MovieID    uint64                    `json:"movie_id"`
	RoomName   string                    `json:"room_name"`
	ThreeD     bool                      `json:"three_d"`
	BasePrice  float64                   `json:"base_price"`
	Width      uint32                    `json:"width"`
	Height     uint32                    `json:"height"`
	Categories []repository.SeatCategory `json:"categories"`
	Seats      []repository.SeatState    `json:"seats"`
}

// CreateShowingInput is the admin input for scheduling a showing.
type CreateShowingInput struct {
	MovieID   uint64    `json:"movie_id"`
	RoomID    uint64    `json:"room_id"`
	BasePrice float64   `json:"base_price"`
	StartsAt  time.Time `json:"starts_at"`
	ThreeD    bool      `json:"three_d"`
}

// OrderInput is a booking request: the showing, the chosen seats, the
// billing address and the payment reference to confirm against the
// payment provider.
type OrderInput struct {
	ShowingID        uint64       `json:"showing_id"`
	SeatIDs          []uint64     `json:"seat_ids"`
	Billing          AddressInput `json:"billing"`
	PaymentReference string       `json:"payment_reference"`
}

// OrderReceipt is returned after an order commits.
type OrderReceipt struct {
	OrderID     uint64   `json:"order_id"`
	SeatLabels  []string `json:"seats"`
	TotalAmount float64  `json:"total_amount"`
}

// BookingService computes seat availability and places orders.
type BookingService struct {
	Auth      *AuthService
	Showings  ShowingStore
	Orders    OrderStore
	Reference *ReferenceService
	Payments  payment.Confirmer
	Mail      mail.Mailer
}

func NewBookingService(auth *AuthService, showings ShowingStore, orders OrderStore,
	reference *ReferenceService, payments payment.Confirmer, m mail.Mailer) *BookingService {
	return &BookingService{Auth: auth, Showings: showings, Orders: orders,
		Reference: reference, Payments: payments, Mail: m}
}

// ListShowings returns upcoming showings, optionally filtered by movie.
// An empty result is NotFound, matching the public browse contract.
func (s *BookingService) ListShowings(ctx context.Context, movieID uint64) ([]repository.ShowingListItem, error) {
	items, err := s.Showings.ListUpcoming(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperr.New(apperr.NotFound, "no showings found")
	}
	return items, nil
}

// GetAvailability reconciles the showing room's fixed seat layout
// against the seats already sold for that showing. Occupied means "part
// of a completed order"; in-flight seat selections are not modeled
// here, double booking is prevented by the order uniqueness constraint.
func (s *BookingService) GetAvailability(ctx context.Context, showingID int64) (Availability, error) {
	if showingID < 1 {
		return Availability{}, apperr.New(apperr.BadRequest, "invalid showing id")
	}
	detail, err := s.Showings.GetDetail(ctx, uint64(showingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Availability{}, apperr.New(apperr.NotFound, "showing not found")
		}
		return Availability{}, err
	}
	cats, err := s.Reference.Categories(ctx)
	if err != nil {
		return Availability{}, err
	}
	seats, err := s.Showings.SeatsWithOccupancy(ctx, detail.RoomID, detail.ID)
	if err != nil {
		return Availability{}, err
	}
	return Availability{
		ShowingID:  detail.ID,
		MovieID:    detail.MovieID,
		RoomName:   detail.RoomName,
		ThreeD:     detail.ThreeD,
		BasePrice:  detail.BasePrice,
		Width:      detail.Width,
		Height:     detail.Height,
		Categories: cats,
		Seats:      seats,
	}, nil
}

// CreateShowing schedules a showing. Admin-only.
func (s *BookingService) CreateShowing(ctx context.Context, token string, in CreateShowingInput) (uint64, error) {
	if _, err := s.Auth.Authorize(ctx, token, AdminRoleLevel); err != nil {
		return 0, err
	}
	if in.MovieID == 0 || in.RoomID == 0 || in.BasePrice <= 0 || in.StartsAt.IsZero() {
		return 0, apperr.New(apperr.BadRequest, "movie_id, room_id, base_price and starts_at are required")
	}
	id, err := s.Showings.Create(ctx, in.MovieID, in.RoomID, in.BasePrice, in.StartsAt, in.ThreeD)
	if err != nil {
		if errors.Is(err, repository.ErrBadReference) {
			return 0, apperr.New(apperr.NotFound, "movie_id or room_id could not be resolved")
		}
		return 0, err
	}
	return id, nil
}

// seatPrice charges basePrice*factor + surcharge, rounded to cents.
func seatPrice(basePrice float64, cat repository.SeatCategory) float64 {
	return math.Round((basePrice*cat.Factor+cat.Surcharge)*100) / 100
}

// PlaceOrder books seats for a showing on behalf of the caller. The
// payment is confirmed against the provider before anything is written;
// the order and its seats then commit in one transaction, where the
// (showing, seat) uniqueness constraint rejects seats sold in the
// meantime. Confirmation mail and the order event are dispatched
// fire-and-forget after commit.
func (s *BookingService) PlaceOrder(ctx context.Context, token string, in OrderInput) (OrderReceipt, error) {
	acct, err := s.Auth.resolveActive(ctx, token)
	if err != nil {
		return OrderReceipt{}, err
	}
	if len(in.SeatIDs) == 0 {
		return OrderReceipt{}, apperr.New(apperr.BadRequest, "select at least one seat")
	}
	if err := validateAddress(&in.Billing); err != nil {
		return OrderReceipt{}, err
	}

	detail, err := s.Showings.GetDetail(ctx, in.ShowingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return OrderReceipt{}, apperr.New(apperr.NotFound, "showing not found")
		}
		return OrderReceipt{}, err
	}
	seats, err := s.Orders.SeatsByIDs(ctx, detail.RoomID, in.SeatIDs)
	if err != nil {
		return OrderReceipt{}, err
	}
	if len(seats) != len(in.SeatIDs) {
		return OrderReceipt{}, apperr.New(apperr.BadRequest, "unknown seat for this room")
	}

	cats, err := s.Reference.Categories(ctx)
	if err != nil {
		return OrderReceipt{}, err
	}
	catByID := make(map[uint64]repository.SeatCategory, len(cats))
	for _, c := range cats {
		catByID[c.ID] = c
	}

	orderSeats := make([]repository.OrderSeat, 0, len(seats))
	labels := make([]string, 0, len(seats))
	var total float64
	for _, seat := range seats {
		cat, ok := catByID[seat.CategoryID]
		if !ok {
			return OrderReceipt{}, fmt.Errorf("seat %d references unknown category %d", seat.ID, seat.CategoryID)
		}
		price := seatPrice(detail.BasePrice, cat)
		total += price
		orderSeats = append(orderSeats, repository.OrderSeat{SeatID: seat.ID, Price: price})
		labels = append(labels, fmt.Sprintf("%s%d", seat.RowLabel, seat.Number))
	}
	total = math.Round(total*100) / 100

	if !s.Payments.Confirm(ctx, in.PaymentReference, total) {
		return OrderReceipt{}, apperr.New(apperr.Conflict, "payment could not be confirmed")
	}

	billing := repository.Billing{
		Salutation: in.Billing.Salutation,
		Name:       in.Billing.Name,
		Street:     in.Billing.Street,
		PostalCode: in.Billing.PostalCode,
		City:       in.Billing.City,
	}
	if in.Billing.Phone != "" {
		billing.Phone = sql.NullString{String: in.Billing.Phone, Valid: true}
	}
	orderID, err := s.Orders.CreateWithSeats(ctx, acct.ID, detail.ID, billing, orderSeats)
	if err != nil {
		if errors.Is(err, repository.ErrSeatTaken) {
			return OrderReceipt{}, apperr.New(apperr.Conflict, "at least one seat was already taken for this showing")
		}
		return OrderReceipt{}, err
	}

	mail.SendOrderConfirmation(s.Mail, acct.Name, acct.Email, orderID, labels, total)
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := queue.Publish(pubCtx, queue.OrderQueue, queue.OrderConfirmedEvent{
			OrderID:     orderID,
			AccountID:   acct.ID,
			ShowingID:   detail.ID,
			MovieID:     detail.MovieID,
			RoomName:    detail.RoomName,
			StartsAt:    detail.StartsAt.UTC().Format(time.RFC3339),
			SeatLabels:  labels,
			TotalAmount: total,
			ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			log.Printf("order %d: event publish failed: %v", orderID, err)
		}
	}()

	return OrderReceipt{OrderID: orderID, SeatLabels: labels, TotalAmount: total}, nil
}
