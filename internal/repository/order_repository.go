package repository

import (
	"context"
	"database/sql"
	"strings"
)

// Billing carries the billing-address fields of an order.
type Billing struct {
	Salutation string
	Name       string
	Street     string
	PostalCode string
	City       string
	Phone      sql.NullString
}

// OrderSeat pairs a seat with the price actually charged for it.
type OrderSeat struct {
	SeatID uint64
	Price  float64
}

// PricedSeat is a seat fetched for price calculation before an order is
// committed.
type PricedSeat struct {
	ID         uint64
	CategoryID uint64
	RowLabel   string
	Number     int
}

type OrderRepo struct{ DB *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{DB: db} }

// SeatsByIDs fetches the given seats constrained to one room, so an
// order cannot smuggle in seats from another room.
func (r *OrderRepo) SeatsByIDs(ctx context.Context, roomID uint64, seatIDs []uint64) ([]PricedSeat, error) {
	if len(seatIDs) == 0 {
		return nil, nil
	}
	q := `SELECT id, category_id, row_label, seat_number FROM seats
	      WHERE room_id=? AND id IN (?` + strings.Repeat(",?", len(seatIDs)-1) + `)`
	args := make([]interface{}, 0, len(seatIDs)+1)
	args = append(args, roomID)
	for _, id := range seatIDs {
		args = append(args, id)
	}
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []PricedSeat
	for rows.Next() {
		var s PricedSeat
		if err := rows.Scan(&s.ID, &s.CategoryID, &s.RowLabel, &s.Number); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// CreateWithSeats inserts an order and its seats in one transaction.
// The UNIQUE (showing_id, seat_id) key on order_seats is what prevents
// two orders from claiming the same seat for the same showing; a
// violation surfaces as ErrSeatTaken and rolls the whole order back.
func (r *OrderRepo) CreateWithSeats(ctx context.Context, accountID, showingID uint64, b Billing, seats []OrderSeat) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (showing_id, account_id, salutation, name, street, postal_code, city, phone)
		 VALUES (?,?,?,?,?,?,?,?)`,
		showingID, accountID, b.Salutation, b.Name, b.Street, b.PostalCode, b.City, b.Phone)
	if err != nil {
		return 0, err
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	query := "INSERT INTO order_seats (order_id, showing_id, seat_id, price) VALUES "
	args := make([]interface{}, 0, len(seats)*4)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?,?,?,?)"
		args = append(args, orderID, showingID, s.SeatID, s.Price)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isDuplicate(err) {
			return 0, ErrSeatTaken
		}
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return uint64(orderID), nil
}
