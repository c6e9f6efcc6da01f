package entity

import (
	"time"

	"github.com/google/uuid"
)

type Showtime struct {
	Base
	MovieID   uuid.UUID `db:"movie_id"`
	TheaterID uuid.UUID `db:"theater_id"`
	StartTime time.Time `db:"start_time"`
	Price     float64   `db:"price"`
}
