package adaptor

import (
	"errors"
	"net/http"

	"cinema-tickets/internal/data/repository"
	"cinema-tickets/internal/usecase"
	"cinema-tickets/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MovieHandler struct {
	service usecase.MovieService
	log     *zap.Logger
}

func NewMovieHandler(service usecase.MovieService, log *zap.Logger) *MovieHandler {
	return &MovieHandler{
		service: service,
		log:     log.With(zap.String("handler", "movie")),
	}
}

// GetMovies handles GET /api/movies
func (h *MovieHandler) GetMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := h.service.GetMovies(r.Context())
	if err != nil {
		h.log.Error("Failed to get movies", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	utils.ResponseSuccess(w, "success", movies)
}

// GetMovieByID handles GET /api/movies/{id}
func (h *MovieHandler) GetMovieByID(w http.ResponseWriter, r *http.Request) {
	movieID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(movieID); err != nil {
		utils.ResponseBadRequest(w, "Invalid movie ID", nil)
		return
	}

	movie, err := h.service.GetMovieByID(r.Context(), movieID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.ResponseNotFound(w, "Movie not found")
			return
		}
		h.log.Error("Failed to get movie", zap.Error(err), zap.String("movie_id", movieID))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	utils.ResponseSuccess(w, "success", movie)
}

// GetShowtimes handles GET /api/movies/{id}/showtimes
func (h *MovieHandler) GetShowtimes(w http.ResponseWriter, r *http.Request) {
	movieID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(movieID); err != nil {
		utils.ResponseBadRequest(w, "Invalid movie ID", nil)
		return
	}

	showtimes, err := h.service.GetShowtimes(r.Context(), movieID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.ResponseNotFound(w, "Movie not found")
			return
		}
		h.log.Error("Failed to get showtimes", zap.Error(err), zap.String("movie_id", movieID))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	utils.ResponseSuccess(w, "success", showtimes)
}
