package entity

type Movie struct {
	Base
	Title       string  `db:"title"`
	Description string  `db:"description"`
	Genre       string  `db:"genre"`
	Duration    int     `db:"duration"`
	PosterURL   *string `db:"poster_url"`
	Rating      float64 `db:"rating"`
}
