package store

import "stagepass/models"

// SampleShows returns the fixed sample inventory used to seed an empty shows
// collection and the in-memory fallback.
func SampleShows() []models.Show {
	return []models.Show{
		{
			ID: "1", Title: "Avengers", Time: "18:00", Date: "2024-01-15",
			Price: 250, TotalSeats: 100, BookedSeats: []string{},
			SeatLayout: models.SeatLayout{Rows: 10, Cols: 10},
		},
		{
			ID: "2", Title: "Spider-Man", Time: "21:00", Date: "2024-01-15",
			Price: 300, TotalSeats: 80, BookedSeats: []string{},
			SeatLayout: models.SeatLayout{Rows: 8, Cols: 10},
		},
		{
			ID: "3", Title: "Batman", Time: "15:00", Date: "2024-01-16",
			Price: 280, TotalSeats: 120, BookedSeats: []string{},
			SeatLayout: models.SeatLayout{Rows: 12, Cols: 10},
		},
	}
}
