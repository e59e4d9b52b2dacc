package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/capitolcinema/booking-backend/internal/apperr"
	"github.com/capitolcinema/booking-backend/internal/cache"
	"github.com/capitolcinema/booking-backend/internal/repository"
)

type stubShowings struct {
	detail   repository.ShowingDetail
	upcoming []repository.ShowingListItem
	seats    []repository.SeatState
	created  []repository.ShowingDetail
	badRef   bool
}

func (s *stubShowings) ListUpcoming(_ context.Context, movieID uint64) ([]repository.ShowingListItem, error) {
	if movieID == 0 {
		return s.upcoming, nil
	}
	var out []repository.ShowingListItem
	for _, it := range s.upcoming {
		if it.MovieID == movieID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *stubShowings) GetDetail(_ context.Context, showingID uint64) (repository.ShowingDetail, error) {
	if showingID != s.detail.ID {
		return repository.ShowingDetail{}, sql.ErrNoRows
	}
	return s.detail, nil
}

func (s *stubShowings) SeatsWithOccupancy(_ context.Context, roomID, showingID uint64) ([]repository.SeatState, error) {
	return s.seats, nil
}

func (s *stubShowings) Create(_ context.Context, movieID, roomID uint64, basePrice float64, startsAt time.Time, threeD bool) (uint64, error) {
	if s.badRef {
		return 0, repository.ErrBadReference
	}
	id := uint64(len(s.created) + 1000)
	s.created = append(s.created, repository.ShowingDetail{
		ID: id, MovieID: movieID, RoomID: roomID, BasePrice: basePrice, StartsAt: startsAt, ThreeD: threeD,
	})
	return id, nil
}

type placedOrder struct {
	accountID uint64
	showingID uint64
	billing   repository.Billing
	seats     []repository.OrderSeat
}

type stubOrders struct {
	priced []repository.PricedSeat
	taken  bool
	placed []placedOrder
}

func (s *stubOrders) SeatsByIDs(_ context.Context, roomID uint64, seatIDs []uint64) ([]repository.PricedSeat, error) {
	var out []repository.PricedSeat
	for _, id := range seatIDs {
		for _, ps := range s.priced {
			if ps.ID == id {
				out = append(out, ps)
			}
		}
	}
	return out, nil
}

func (s *stubOrders) CreateWithSeats(_ context.Context, accountID, showingID uint64, b repository.Billing, seats []repository.OrderSeat) (uint64, error) {
	if s.taken {
		return 0, repository.ErrSeatTaken
	}
	s.placed = append(s.placed, placedOrder{accountID, showingID, b, seats})
	return uint64(len(s.placed)), nil
}

// stubConfirmer approves exactly one reference/amount pair.
type stubConfirmer struct {
	reference string
	amount    float64
}

func (c *stubConfirmer) Confirm(_ context.Context, orderReference string, expectedAmount float64) bool {
	return orderReference == c.reference && expectedAmount == c.amount
}

type bookingRig struct {
	svc      *BookingService
	showings *stubShowings
	orders   *stubOrders
	pay      *stubConfirmer
	mailer   *recorderMailer
	token    string
	admin    string
}

func newBookingRig(t *testing.T) *bookingRig {
	t.Helper()
	catalog := newStubCatalog()
	catalog.cats = []repository.SeatCategory{
		{ID: 1, Name: "Parkett", Surcharge: 0, Factor: 1},
		{ID: 2, Name: "Loge", Surcharge: 2.5, Factor: 1.2},
	}

	accounts := newStubAccounts()
	mailer := &recorderMailer{}
	auth := NewAuthService(accounts, mailer, bcrypt.MinCost, "http://cinema.test")
	token := registerActive(t, auth, "ada@mail.test", "secret-pass", "Ada Lovelace")
	admin := registerActive(t, auth, "admin@cinema.test", "super-secret", "Admin Admin")
	accounts.setRole(2, AdminRoleLevel)

	reference := NewReferenceService(auth, catalog, roomStoreAdapter{catalog}, catalog,
		cache.New[[]repository.SeatCategory](time.Hour),
		cache.New[[]repository.RoomSummary](time.Hour),
		cache.New[[]repository.Movie](time.Hour),
	)

	showings := &stubShowings{
		detail: repository.ShowingDetail{
			ID: 5, MovieID: 11, RoomID: 3, RoomName: "Saal 1",
			BasePrice: 10, StartsAt: time.Date(2026, 4, 1, 20, 0, 0, 0, time.UTC),
			ThreeD: true, Width: 800, Height: 600,
		},
		seats: []repository.SeatState{
			{ID: 21, RowLabel: "A", Number: 1, CategoryID: 1, Occupied: false},
			{ID: 22, RowLabel: "A", Number: 2, CategoryID: 1, Occupied: true},
			{ID: 23, RowLabel: "B", Number: 1, CategoryID: 2, Occupied: false},
		},
	}
	orders := &stubOrders{
		priced: []repository.PricedSeat{
			{ID: 21, CategoryID: 1, RowLabel: "A", Number: 1},
			{ID: 23, CategoryID: 2, RowLabel: "B", Number: 1},
		},
	}
	pay := &stubConfirmer{reference: "PAY-1", amount: 24.50}
	mailer.sent = nil

	return &bookingRig{
		svc:      NewBookingService(auth, showings, orders, reference, pay, mailer),
		showings: showings,
		orders:   orders,
		pay:      pay,
		mailer:   mailer,
		token:    token,
		admin:    admin,
	}
}

func TestGetAvailability(t *testing.T) {
	rig := newBookingRig(t)
	ctx := context.Background()

	av, err := rig.svc.GetAvailability(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Saal 1", av.RoomName)
	assert.True(t, av.ThreeD)
	assert.Equal(t, 10.0, av.BasePrice)
	assert.Len(t, av.Categories, 2)
	require.Len(t, av.Seats, 3)
	assert.False(t, av.Seats[0].Occupied)
	assert.True(t, av.Seats[1].Occupied)

	_, err = rig.svc.GetAvailability(ctx, 0)
	assert.Equal(t, apperr.BadRequest, apperr.KindOf(err))
	_, err = rig.svc.GetAvailability(ctx, -3)
	assert.Equal(t, apperr.BadRequest, apperr.KindOf(err))
	_, err = rig.svc.GetAvailability(ctx, 999)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestListShowings(t *testing.T) {
	rig := newBookingRig(t)
	ctx := context.Background()

	rig.showings.upcoming = []repository.ShowingListItem{
		{ID: 5, MovieID: 11, RoomName: "Saal 1"},
		{ID: 6, MovieID: 12, RoomName: "Saal 2"},
	}

	all, err := rig.svc.ListShowings(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	one, err := rig.svc.ListShowings(ctx, 12)
	require.NoError(t, err)
	assert.Len(t, one, 1)

	_, err = rig.svc.ListShowings(ctx, 404)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestCreateShowing(t *testing.T) {
	rig := newBookingRig(t)
	ctx := context.Background()

	in := CreateShowingInput{
		MovieID: 11, RoomID: 3, BasePrice: 9.5,
		StartsAt: time.Date(2026, 4, 2, 20, 0, 0, 0, time.UTC), ThreeD: false,
	}

	_, err := rig.svc.CreateShowing(ctx, rig.token, in)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))

	id, err := rig.svc.CreateShowing(ctx, rig.admin, in)
	require.NoError(t, err)
	assert.NotZero(t, id)

	bad := in
	bad.BasePrice = 0
	_, err = rig.svc.CreateShowing(ctx, rig.admin, bad)
	assert.Equal(t, apperr.BadRequest, apperr.KindOf(err))

	rig.showings.badRef = true
	_, err = rig.svc.CreateShowing(ctx, rig.admin, in)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func validOrder() OrderInput {
	return OrderInput{
		ShowingID:        5,
		SeatIDs:          []uint64{21, 23},
		Billing:          validInput(),
		PaymentReference: "PAY-1",
	}
}

func TestPlaceOrderPricesAndCommits(t *testing.T) {
	rig := newBookingRig(t)
	ctx := context.Background()

	// Seat 21: 10*1+0 = 10.00, seat 23: 10*1.2+2.5 = 14.50.
	receipt, err := rig.svc.PlaceOrder(ctx, rig.token, validOrder())
	require.NoError(t, err)
	assert.Equal(t, 24.50, receipt.TotalAmount)
	assert.Equal(t, []string{"A1", "B1"}, receipt.SeatLabels)

	require.Len(t, rig.orders.placed, 1)
	placed := rig.orders.placed[0]
	assert.Equal(t, uint64(1), placed.accountID)
	assert.Equal(t, uint64(5), placed.showingID)
	require.Len(t, placed.seats, 2)
	assert.Equal(t, 10.0, placed.seats[0].Price)
	assert.Equal(t, 14.50, placed.seats[1].Price)

	require.Len(t, rig.mailer.sent, 1)
	assert.Equal(t, "ada@mail.test", rig.mailer.sent[0].ToAddress)
}

func TestPlaceOrderRejectsBadInput(t *testing.T) {
	rig := newBookingRig(t)
	ctx := context.Background()

	in := validOrder()
	in.SeatIDs = nil
	_, err := rig.svc.PlaceOrder(ctx, rig.token, in)
	assert.Equal(t, apperr.BadRequest, apperr.KindOf(err))

	in = validOrder()
	in.Billing.PostalCode = "123"
	_, err = rig.svc.PlaceOrder(ctx, rig.token, in)
	assert.Equal(t, apperr.BadRequest, apperr.KindOf(err))

	in = validOrder()
	in.SeatIDs = []uint64{21, 404}
	_, err = rig.svc.PlaceOrder(ctx, rig.token, in)
	assert.Equal(t, apperr.BadRequest, apperr.KindOf(err))

	in = validOrder()
	in.ShowingID = 999
	_, err = rig.svc.PlaceOrder(ctx, rig.token, in)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	_, err = rig.svc.PlaceOrder(ctx, "bad-token", validOrder())
	assert.Equal(t, apperr.BadRequest, apperr.KindOf(err))
}

func TestPlaceOrderPaymentMismatch(t *testing.T) {
	rig := newBookingRig(t)
	ctx := context.Background()

	in := validOrder()
	in.PaymentReference = "PAY-2"
	_, err := rig.svc.PlaceOrder(ctx, rig.token, in)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
	assert.Empty(t, rig.orders.placed, "a failed payment must not write an order")
}

func TestPlaceOrderSeatRace(t *testing.T) {
	rig := newBookingRig(t)
	ctx := context.Background()

	rig.orders.taken = true
	_, err := rig.svc.PlaceOrder(ctx, rig.token, validOrder())
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
	assert.Empty(t, rig.mailer.sent, "a failed order must not send a confirmation")
}
