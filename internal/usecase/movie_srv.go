package usecase

import (
	"context"
	"fmt"

	"cinema-tickets/internal/data/repository"
	"cinema-tickets/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MovieService serves the catalog: read-only reference data the booking core
// joins against.
type MovieService interface {
	GetMovies(ctx context.Context) ([]response.MovieResponse, error)
	GetMovieByID(ctx context.Context, movieID string) (*response.MovieResponse, error)
	GetShowtimes(ctx context.Context, movieID string) ([]response.ShowtimeResponse, error)
}

type movieService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewMovieService(repo *repository.Repository, log *zap.Logger) MovieService {
	return &movieService{
		repo: repo,
		log:  log.With(zap.String("service", "movie")),
	}
}

func (s *movieService) GetMovies(ctx context.Context) ([]response.MovieResponse, error) {
	movies, err := s.repo.Movie.FindAll(ctx)
	if err != nil {
		s.log.Error("Failed to get movies", zap.Error(err))
		return nil, fmt.Errorf("get movies: %w", err)
	}

	responses := make([]response.MovieResponse, len(movies))
	for i, movie := range movies {
		responses[i] = response.MovieToResponse(movie)
	}
	return responses, nil
}

func (s *movieService) GetMovieByID(ctx context.Context, movieID string) (*response.MovieResponse, error) {
	id, err := uuid.Parse(movieID)
	if err != nil {
		return nil, fmt.Errorf("invalid movie ID format %s: %w", movieID, err)
	}

	movie, err := s.repo.Movie.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get movie: %w", err)
	}
	if movie == nil {
		return nil, fmt.Errorf("movie %s: %w", movieID, repository.ErrNotFound)
	}

	resp := response.MovieToResponse(movie)
	return &resp, nil
}

func (s *movieService) GetShowtimes(ctx context.Context, movieID string) ([]response.ShowtimeResponse, error) {
	id, err := uuid.Parse(movieID)
	if err != nil {
		return nil, fmt.Errorf("invalid movie ID format %s: %w", movieID, err)
	}

	showtimes, err := s.repo.Showtime.FindByMovieID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get showtimes: %w", err)
	}

	responses := make([]response.ShowtimeResponse, len(showtimes))
	for i, showtime := range showtimes {
		var theaterName string
		theater, _ := s.repo.Theater.FindByID(ctx, showtime.TheaterID)
		if theater != nil {
			theaterName = theater.Name
		}

		responses[i] = response.ShowtimeResponse{
			ID:          showtime.ID.String(),
			MovieID:     showtime.MovieID.String(),
			TheaterName: theaterName,
			StartTime:   showtime.StartTime,
			Price:       showtime.Price,
		}
	}
	return responses, nil
}
