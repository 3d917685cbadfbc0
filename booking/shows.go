package booking

import (
	"context"
	"encoding/json"

	"stagepass/models"
)

// Normalize back-fills legacy show documents the same way the startup
// migration does, so read paths are correct even for records the migration
// never saw.
func Normalize(show *models.Show) {
	if show.TotalSeats == 0 && show.LegacySeats > 0 {
		show.TotalSeats = show.LegacySeats
		show.LegacySeats = 0
	}
	if show.TotalSeats == 0 {
		show.TotalSeats = 100
	}
	if show.BookedSeats == nil {
		show.BookedSeats = []string{}
	}
	if show.SeatLayout.Rows == 0 || show.SeatLayout.Cols == 0 {
		show.SeatLayout = models.SeatLayout{Rows: 10, Cols: 10}
	}
}

// ListShows projects availableSeats over every show. Results are cached under
// the shows key; any reservation or cancellation invalidates it, so the cache
// lifetime is "until the next inventory mutation".
func (s *Service) ListShows(ctx context.Context) ([]models.ShowView, error) {
	if cached, ok := s.cache.Get(ctx, showsCacheKey); ok {
		var views []models.ShowView
		if err := json.Unmarshal([]byte(cached), &views); err == nil {
			return views, nil
		}
		// corrupt entry: drop it and recompute
		s.cache.Delete(ctx, showsCacheKey)
	}

	shows, err := s.store.ListShows(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]models.ShowView, 0, len(shows))
	for _, show := range shows {
		Normalize(&show)
		views = append(views, models.ShowView{
			Show:           show,
			AvailableSeats: show.TotalSeats - len(show.BookedSeats),
		})
	}

	if data, err := json.Marshal(views); err == nil {
		s.cache.Set(ctx, showsCacheKey, string(data), listingTTL)
	}
	return views, nil
}

// GetSeats returns the normalized seat map of one show.
func (s *Service) GetSeats(ctx context.Context, showID string) (*models.Show, error) {
	show, err := s.store.FindShow(ctx, showID)
	if err != nil {
		return nil, err
	}
	Normalize(show)
	return show, nil
}
