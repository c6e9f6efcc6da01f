package response

import (
	"time"

	"cinema-tickets/internal/data/entity"
)

type SeatResponse struct {
	Row    string `json:"row"`
	Number int    `json:"number"`
}

func SeatsToResponse(seats []entity.SeatRef) []SeatResponse {
	out := make([]SeatResponse, len(seats))
	for i, seat := range seats {
		out[i] = SeatResponse{Row: seat.Row, Number: seat.Number}
	}
	return out
}

// CreateBookingResponse carries the new booking plus the payable handle the
// client completes payment with.
type CreateBookingResponse struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
	PayToken  string `json:"pay_token"`
}

type PaymentTokenResponse struct {
	PayToken string `json:"pay_token"`
}

type BookingResponse struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	ShowtimeID  string         `json:"showtime_id"`
	MovieTitle  string         `json:"movie_title"`
	PosterURL   string         `json:"poster_url,omitempty"`
	TheaterName string         `json:"theater_name"`
	StartTime   time.Time      `json:"start_time"`
	TotalPrice  float64        `json:"total_price"`
	Status      string         `json:"status"`
	Seats       []SeatResponse `json:"seats"`
	CreatedAt   time.Time      `json:"created_at"`
}
