package response

import (
	"time"

	"cinema-tickets/internal/data/entity"
)

type MovieResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Genre       string  `json:"genre"`
	Duration    int     `json:"duration"`
	PosterURL   string  `json:"poster_url,omitempty"`
	Rating      float64 `json:"rating"`
}

func MovieToResponse(movie *entity.Movie) MovieResponse {
	resp := MovieResponse{
		ID:          movie.ID.String(),
		Title:       movie.Title,
		Description: movie.Description,
		Genre:       movie.Genre,
		Duration:    movie.Duration,
		Rating:      movie.Rating,
	}
	if movie.PosterURL != nil {
		resp.PosterURL = *movie.PosterURL
	}
	return resp
}

type ShowtimeResponse struct {
	ID          string    `json:"id"`
	MovieID     string    `json:"movie_id"`
	TheaterName string    `json:"theater_name"`
	StartTime   time.Time `json:"start_time"`
	Price       float64   `json:"price"`
}
