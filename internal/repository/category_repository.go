package repository

import (
	"context"
	"database/sql"
)

// SeatCategory mirrors the 'seat_categories' table. Surcharge is an
// additive price modifier, Factor a multiplicative one; Width/Height
// describe the seat footprint in pixels.
type SeatCategory struct {
	ID        uint64  `json:"id"`
	Name      string  `json:"name"`
	Surcharge float64 `json:"surcharge"`
	Factor    float64 `json:"factor"`
	Width     uint32  `json:"width"`
	Height    uint32  `json:"height"`
	ColorHex  string  `json:"color_hex"`
	Icon      *string `json:"icon,omitempty"`
}

type CategoryRepo struct{ DB *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{DB: db} }

// List returns every seat category.
func (r *CategoryRepo) List(ctx context.Context) ([]SeatCategory, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name, surcharge, factor, width, height, color_hex, icon FROM seat_categories ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SeatCategory
	for rows.Next() {
		var c SeatCategory
		var icon sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.Surcharge, &c.Factor,
			&c.Width, &c.Height, &c.ColorHex, &icon); err != nil {
			return nil, err
		}
		if icon.Valid {
			c.Icon = &icon.String
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
