package repository

import (
	"context"
	"database/sql"
	"time"
)

// Movie mirrors the 'movies' table.
type Movie struct {
	ID               uint64    `json:"id"`
	Name             string    `json:"name"`
	PosterURL        string    `json:"poster_url"`
	BackdropURL      string    `json:"backdrop_url"`
	TrailerYoutubeID string    `json:"trailer_youtube_id"`
	ShortDescription string    `json:"short_description"`
	Description      string    `json:"description"`
	FSK              uint8     `json:"fsk"`
	DurationMin      uint16    `json:"duration_min"`
	Country          string    `json:"country"`
	ReleaseDate      time.Time `json:"release_date"`
	Recommended      bool      `json:"recommended"`
}

type MovieRepo struct{ DB *sql.DB }

func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{DB: db} }

// ListActive returns active movies, newest release first. Inactive
// movies stay in storage for old orders but are not listed.
func (r *MovieRepo) ListActive(ctx context.Context) ([]Movie, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, name, poster_url, backdrop_url, trailer_youtube_id,
		        short_description, description, fsk, duration_min, country,
		        release_date, recommended
		 FROM movies WHERE active=1 ORDER BY release_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Movie
	for rows.Next() {
		var m Movie
		if err := rows.Scan(&m.ID, &m.Name, &m.PosterURL, &m.BackdropURL,
			&m.TrailerYoutubeID, &m.ShortDescription, &m.Description,
			&m.FSK, &m.DurationMin, &m.Country, &m.ReleaseDate, &m.Recommended); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}
