package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"roomstay/internal/database"
	"roomstay/internal/domain"
	"roomstay/internal/models"

	"github.com/go-playground/validator/v10"
)

// The server depends on the domain interfaces, not the concrete services.
type (
	AvailabilityAPI = domain.AvailabilityChecker
	LockAPI         = domain.LockManager
	PricingAPI      = domain.PriceResolver
	LifecycleAPI    = domain.EventLifecycle
)

var validate = validator.New()

type acquireLockRequest struct {
	RoomID   int64  `json:"room_id" validate:"required,gt=0"`
	Checkin  string `json:"checkin" validate:"required,datetime=2006-01-02"`
	Checkout string `json:"checkout" validate:"required,datetime=2006-01-02"`
	ActorID  int64  `json:"actor_id" validate:"gte=0"`
}

type convertLockRequest struct {
	BookingID int64 `json:"booking_id" validate:"required,gt=0"`
}

type bulkAvailabilityRequest struct {
	RoomIDs  []int64 `json:"room_ids" validate:"required,min=1,dive,gt=0"`
	Checkin  string  `json:"checkin" validate:"required,datetime=2006-01-02"`
	Checkout string  `json:"checkout" validate:"required,datetime=2006-01-02"`
}

func (s *HTTPServer) handleFindAvailable(w http.ResponseWriter, r *http.Request) {
	roomTypeID, err := queryID(r, "room_type_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "room_type_id is required")
		return
	}
	checkin, checkout, err := queryDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	branchID, _ := queryID(r, "branch_id") // optional

	rooms, err := s.availability.FindAvailableRooms(r.Context(), roomTypeID, checkin, checkout, branchID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms, "count": len(rooms)})
}

func (s *HTTPServer) handleRoomAvailability(w http.ResponseWriter, r *http.Request) {
	roomID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}
	checkin, checkout, err := queryDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	available, err := s.availability.IsAvailable(r.Context(), roomID, checkin, checkout, strings.TrimSpace(r.URL.Query().Get("exclude_token")))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"room_id": roomID, "available": available})
}

func (s *HTTPServer) handleAvailabilityBulk(w http.ResponseWriter, r *http.Request) {
	var body bulkAvailabilityRequest
	if !s.decodeAndValidate(w, r, &body) {
		return
	}

	checkin, checkout, err := parseDateRange(body.Checkin, body.Checkout)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.availability.CheckMultiple(r.Context(), body.RoomIDs, checkin, checkout)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"availability": result})
}

func (s *HTTPServer) handleCalendar(w http.ResponseWriter, r *http.Request) {
	roomID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}
	start, err := queryDate(r, "start")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := queryDate(r, "end")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !start.Before(end) {
		writeError(w, http.StatusBadRequest, "start must be before end")
		return
	}

	calendar, err := s.availability.Calendar(r.Context(), roomID, start, end)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, calendar)
}

func (s *HTTPServer) handleConflicts(w http.ResponseWriter, r *http.Request) {
	roomID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}
	checkin, checkout, err := queryDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	excludeBookingID, _ := queryID(r, "exclude_booking_id") // optional

	conflicts, err := s.availability.DetectConflicts(r.Context(), roomID, checkin, checkout, excludeBookingID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"room_id": roomID, "conflicts": conflicts, "count": len(conflicts)})
}

func (s *HTTPServer) handlePrice(w http.ResponseWriter, r *http.Request) {
	roomID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}
	date, err := queryDate(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	quote, err := s.pricing.ResolvePrice(r.Context(), roomID, date)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quote)
}

func (s *HTTPServer) handleAcquireLock(w http.ResponseWriter, r *http.Request) {
	var body acquireLockRequest
	if !s.decodeAndValidate(w, r, &body) {
		return
	}

	checkin, checkout, err := parseDateRange(body.Checkin, body.Checkout)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	lock, err := s.locks.Acquire(r.Context(), body.RoomID, checkin, checkout, body.ActorID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, lock)
}

func (s *HTTPServer) handleReleaseLock(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.PathValue("token"))
	if token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	if err := s.locks.Release(r.Context(), token); err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"token": token, "released": true})
}

func (s *HTTPServer) handleConvertLock(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.PathValue("token"))
	if token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	var body convertLockRequest
	if !s.decodeAndValidate(w, r, &body) {
		return
	}

	if err := s.locks.Convert(r.Context(), token, body.BookingID); err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"token": token, "booking_id": body.BookingID, "converted": true})
}

func (s *HTTPServer) handleEventTransition(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	var status string
	switch {
	case strings.HasSuffix(r.URL.Path, "/activate"):
		err = s.lifecycle.ActivateEvent(r.Context(), eventID)
		status = models.EventStatusActive
	case strings.HasSuffix(r.URL.Path, "/complete"):
		err = s.lifecycle.CompleteEvent(r.Context(), eventID)
		status = models.EventStatusCompleted
	case strings.HasSuffix(r.URL.Path, "/cancel"):
		err = s.lifecycle.CancelEvent(r.Context(), eventID)
		status = models.EventStatusCancelled
	default:
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"event_id": eventID, "status": status})
}

func (s *HTTPServer) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// writeDomainError maps storage-layer sentinel errors onto HTTP statuses:
// retriable conflicts get 409, contract violations 422, unknown entities 404.
func (s *HTTPServer) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrRoomUnavailable),
		errors.Is(err, database.ErrLockExpired):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrInvalidStateTransition),
		errors.Is(err, database.ErrDataIntegrity):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, database.ErrLockNotFound),
		errors.Is(err, database.ErrRoomNotFound),
		errors.Is(err, database.ErrEventNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(r.PathValue(name)), 10, 64)
}

func queryID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get(name)), 10, 64)
}

func queryDate(r *http.Request, name string) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return time.Time{}, errors.New(name + " is required")
	}
	date, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		return time.Time{}, errors.New("invalid " + name + "; expected YYYY-MM-DD")
	}
	return date, nil
}

func queryDateRange(r *http.Request) (time.Time, time.Time, error) {
	checkin, err := queryDate(r, "checkin")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	checkout, err := queryDate(r, "checkout")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !checkin.Before(checkout) {
		return time.Time{}, time.Time{}, errors.New("checkin must be before checkout")
	}
	return checkin, checkout, nil
}

func parseDateRange(checkinRaw, checkoutRaw string) (time.Time, time.Time, error) {
	checkin, err := time.Parse(models.DateLayout, checkinRaw)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid checkin; expected YYYY-MM-DD")
	}
	checkout, err := time.Parse(models.DateLayout, checkoutRaw)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid checkout; expected YYYY-MM-DD")
	}
	if !checkin.Before(checkout) {
		return time.Time{}, time.Time{}, errors.New("checkin must be before checkout")
	}
	return checkin, checkout, nil
}
