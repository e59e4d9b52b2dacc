package repository

import (
	"context"
	"database/sql"
)

// RoomSummary is the public room-catalog entry.
type RoomSummary struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// PlanSeat is one seat of a room layout: category, human-facing
// row/number, and the pixel coordinates inside the room.
type PlanSeat struct {
	CategoryID uint64 `json:"category"`
	RowLabel   string `json:"row"`
	Number     int    `json:"number"`
	X          uint32 `json:"x"`
	Y          uint32 `json:"y"`
}

// RoomPlan is a room with its full seat layout.
type RoomPlan struct {
	Name   string     `json:"name"`
	Width  uint32     `json:"width"`
	Height uint32     `json:"height"`
	Seats  []PlanSeat `json:"seats"`
}

type RoomRepo struct{ DB *sql.DB }

func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{DB: db} }

// List returns all rooms.
func (r *RoomRepo) List(ctx context.Context) ([]RoomSummary, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id, name FROM rooms ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []RoomSummary
	for rows.Next() {
		var rm RoomSummary
		if err := rows.Scan(&rm.ID, &rm.Name); err != nil {
			return nil, err
		}
		result = append(result, rm)
	}
	return result, rows.Err()
}

// GetPlan returns a room's dimensions and seat layout. Returns
// sql.ErrNoRows when the room does not exist.
func (r *RoomRepo) GetPlan(ctx context.Context, roomID uint64) (RoomPlan, error) {
	var plan RoomPlan
	err := r.DB.QueryRowContext(ctx,
		"SELECT name, width, height FROM rooms WHERE id=?", roomID).
		Scan(&plan.Name, &plan.Width, &plan.Height)
	if err != nil {
		return RoomPlan{}, err
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT category_id, row_label, seat_number, x, y
		 FROM seats WHERE room_id=? ORDER BY row_label, seat_number`, roomID)
	if err != nil {
		return RoomPlan{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var s PlanSeat
		if err := rows.Scan(&s.CategoryID, &s.RowLabel, &s.Number, &s.X, &s.Y); err != nil {
			return RoomPlan{}, err
		}
		plan.Seats = append(plan.Seats, s)
	}
	return plan, rows.Err()
}

// CreateWithSeats inserts a room and its complete seat list in one
// transaction, so readers never observe a partial layout. Returns the
// new room ID.
func (r *RoomRepo) CreateWithSeats(ctx context.Context, name string, width, height uint32, seats []PlanSeat) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO rooms (name, width, height) VALUES (?,?,?)", name, width, height)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrRoomNameExists
		}
		return 0, err
	}
	roomID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(seats) > 0 {
		query := "INSERT INTO seats (room_id, category_id, row_label, seat_number, x, y) VALUES "
		args := make([]interface{}, 0, len(seats)*6)
		for i, s := range seats {
			if i > 0 {
				query += ","
			}
			query += "(?,?,?,?,?,?)"
			args = append(args, roomID, s.CategoryID, s.RowLabel, s.Number, s.X, s.Y)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if isBadReference(err) {
				return 0, ErrBadReference
			}
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return uint64(roomID), nil
}
