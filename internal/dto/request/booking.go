package request

type SeatRequest struct {
	Row    string `json:"row" validate:"required,len=1,uppercase"`
	Number int    `json:"number" validate:"required,min=1"`
}

type CreateBookingRequest struct {
	ShowtimeID string        `json:"showtime_id" validate:"required,uuid"`
	Seats      []SeatRequest `json:"seats" validate:"required,min=1,max=10,dive"`
	TotalPrice float64       `json:"total_price" validate:"required,gt=0"`
}
