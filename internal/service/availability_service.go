package service

import (
	"context"
	"time"

	"roomstay/internal/domain"
	"roomstay/internal/models"

	"github.com/rs/zerolog"
)

// AvailabilityService answers free/occupied questions over confirmed
// bookings plus unexpired locks.
type AvailabilityService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewAvailabilityService(repo domain.Repository, logger *zerolog.Logger) *AvailabilityService {
	return &AvailabilityService{
		repo:   repo,
		logger: logger,
	}
}

func (s *AvailabilityService) IsAvailable(ctx context.Context, roomID int64, checkin, checkout time.Time, excludeToken string) (bool, error) {
	return s.repo.IsRoomAvailable(ctx, roomID, checkin, checkout, excludeToken)
}

func (s *AvailabilityService) CheckMultiple(ctx context.Context, roomIDs []int64, checkin, checkout time.Time) (map[int64]bool, error) {
	result := make(map[int64]bool, len(roomIDs))
	for _, roomID := range roomIDs {
		available, err := s.repo.IsRoomAvailable(ctx, roomID, checkin, checkout, "")
		if err != nil {
			return nil, err
		}
		result[roomID] = available
	}
	return result, nil
}

func (s *AvailabilityService) FindAvailableRooms(ctx context.Context, roomTypeID int64, checkin, checkout time.Time, branchID int64) ([]models.Room, error) {
	return s.repo.FindAvailableRooms(ctx, roomTypeID, checkin, checkout, branchID)
}

func (s *AvailabilityService) CountAvailable(ctx context.Context, roomTypeID int64, checkin, checkout time.Time, branchID int64) (int, error) {
	rooms, err := s.repo.FindAvailableRooms(ctx, roomTypeID, checkin, checkout, branchID)
	if err != nil {
		return 0, err
	}
	return len(rooms), nil
}

func (s *AvailabilityService) DetectConflicts(ctx context.Context, roomID int64, checkin, checkout time.Time, excludeBookingID int64) ([]models.Conflict, error) {
	return s.repo.DetectConflicts(ctx, roomID, checkin, checkout, excludeBookingID)
}

// Calendar reports per-night availability over [start, end). Each night is
// probed as a one-night stay, so a stay checking out on a given day leaves
// that night free.
func (s *AvailabilityService) Calendar(ctx context.Context, roomID int64, start, end time.Time) (*models.AvailabilityCalendar, error) {
	calendar := &models.AvailabilityCalendar{
		RoomID: roomID,
		Days:   make(map[string]bool),
	}

	for day := models.Day(start); day.Before(end); day = day.AddDate(0, 0, 1) {
		available, err := s.repo.IsRoomAvailable(ctx, roomID, day, day.AddDate(0, 0, 1), "")
		if err != nil {
			return nil, err
		}
		calendar.Days[day.Format(models.DateLayout)] = available
		if available {
			calendar.Available++
		} else {
			calendar.Blocked++
		}
	}

	return calendar, nil
}
