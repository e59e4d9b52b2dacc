package repository

import (
	"context"
	"database/sql"
	"time"
)

// ShowingListItem is one row of the public showing list, with the room
// name already joined in.
type ShowingListItem struct {
	ID        uint64    `json:"id"`
	MovieID   uint64    `json:"movie_id"`
	RoomName  string    `json:"room_name"`
	BasePrice float64   `json:"base_price"`
	StartsAt  time.Time `json:"starts_at"`
	ThreeD    bool      `json:"three_d"`
}

// ShowingDetail is the showing metadata needed by the availability
// computation: the room's identity and pixel dimensions plus the
// showing's pricing fields.
type ShowingDetail struct {
	ID        uint64
	MovieID   uint64
	RoomID    uint64
	RoomName  string
	BasePrice float64
	StartsAt  time.Time
	ThreeD    bool
	Width     uint32
	Height    uint32
}

// SeatState is one seat of a room joined against the ordered seats of a
// showing. Occupied means the seat is part of a completed order for
// that showing.
type SeatState struct {
	ID         uint64 `json:"id"`
	RowLabel   string `json:"row"`
	Number     int    `json:"number"`
	CategoryID uint64 `json:"category"`
	X          uint32 `json:"x"`
	Y          uint32 `json:"y"`
	Occupied   bool   `json:"occupied"`
}

type ShowingRepo struct{ DB *sql.DB }

func NewShowingRepo(db *sql.DB) *ShowingRepo { return &ShowingRepo{DB: db} }

// ListUpcoming returns future showings ordered by start time, filtered
// to one movie when movieID > 0.
func (r *ShowingRepo) ListUpcoming(ctx context.Context, movieID uint64) ([]ShowingListItem, error) {
	q := `SELECT sh.id, sh.movie_id, rm.name, sh.base_price, sh.starts_at, sh.three_d
	      FROM showings sh INNER JOIN rooms rm ON rm.id = sh.room_id
	      WHERE sh.starts_at > CURRENT_TIMESTAMP`
	args := []interface{}{}
	if movieID > 0 {
		q += " AND sh.movie_id=?"
		args = append(args, movieID)
	}
	q += " ORDER BY sh.starts_at"

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ShowingListItem
	for rows.Next() {
		var s ShowingListItem
		if err := rows.Scan(&s.ID, &s.MovieID, &s.RoomName, &s.BasePrice, &s.StartsAt, &s.ThreeD); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// GetDetail fetches a showing joined with its room. Returns
// sql.ErrNoRows when the showing does not exist.
func (r *ShowingRepo) GetDetail(ctx context.Context, showingID uint64) (ShowingDetail, error) {
	var d ShowingDetail
	err := r.DB.QueryRowContext(ctx,
		`SELECT sh.id, sh.movie_id, sh.room_id, rm.name, sh.base_price,
		        sh.starts_at, sh.three_d, rm.width, rm.height
		 FROM showings sh INNER JOIN rooms rm ON rm.id = sh.room_id
		 WHERE sh.id=?`, showingID).
		Scan(&d.ID, &d.MovieID, &d.RoomID, &d.RoomName, &d.BasePrice,
			&d.StartsAt, &d.ThreeD, &d.Width, &d.Height)
	return d, err
}

// SeatsWithOccupancy returns every seat of a room left-joined against
// the ordered seats of one showing. A single pass over the room's seats
// keeps cost linear in room size; the join is the only place occupancy
// is computed.
func (r *ShowingRepo) SeatsWithOccupancy(ctx context.Context, roomID, showingID uint64) ([]SeatState, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT s.id, s.row_label, s.seat_number, s.category_id, s.x, s.y,
		        os.seat_id IS NOT NULL
		 FROM seats s
		 LEFT JOIN (SELECT seat_id FROM order_seats WHERE showing_id=?) os
		   ON os.seat_id = s.id
		 WHERE s.room_id=?
		 ORDER BY s.row_label, s.seat_number`, showingID, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SeatState
	for rows.Next() {
		var s SeatState
		if err := rows.Scan(&s.ID, &s.RowLabel, &s.Number, &s.CategoryID, &s.X, &s.Y, &s.Occupied); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// Create inserts a showing. Returns ErrBadReference when movie or room
// cannot be resolved.
func (r *ShowingRepo) Create(ctx context.Context, movieID, roomID uint64, basePrice float64, startsAt time.Time, threeD bool) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO showings (movie_id, room_id, base_price, starts_at, three_d) VALUES (?,?,?,?,?)",
		movieID, roomID, basePrice, startsAt, threeD)
	if err != nil {
		if isBadReference(err) {
			return 0, ErrBadReference
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	return uint64(id), err
}
