package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/fitnesstracker/internal/advisory"
	"github.com/2beens/fitnesstracker/internal/middleware"
	"github.com/2beens/fitnesstracker/internal/offline"
	"github.com/2beens/fitnesstracker/internal/program"
	"github.com/2beens/fitnesstracker/internal/progress"
	"github.com/2beens/fitnesstracker/internal/telemetry/metrics"
	"github.com/2beens/fitnesstracker/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=tracker

// MaxRequestBodySize bounds request bodies, backup uploads being the largest;
// a year of records is well below it.
const MaxRequestBodySize = 4 << 20

type offlineApp interface {
	Status() offline.Status
	HandlePush(ctx context.Context, payload string) error
	HandleNotificationClick(action string) offline.ClickResult
}

type notificationLog interface {
	Recent() []offline.Notification
}

type Handler struct {
	store         *progress.Store
	advisor       advisory.Advisor
	offline       offlineApp
	notifications notificationLog
	now           func() time.Time
}

type NewHandlerParams struct {
	Store         *progress.Store
	Advisor       advisory.Advisor
	Offline       offlineApp
	Notifications notificationLog
	// Now defaults to time.Now.
	Now func() time.Time
}

func NewHandler(params NewHandlerParams) *Handler {
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Handler{
		store:         params.Store,
		advisor:       params.Advisor,
		offline:       params.Offline,
		notifications: params.Notifications,
		now:           now,
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	metricsManager *metrics.Manager,
	checkinsPerMin int,
) {
	mainRouter.HandleFunc("/program/current", handler.handleCurrentProgram).Methods("GET", "OPTIONS").Name("program-current")
	mainRouter.HandleFunc("/program/week/{week}", handler.handleProgramWeek).Methods("GET", "OPTIONS").Name("program-week")
	mainRouter.HandleFunc("/today", handler.handleToday).Methods("GET", "OPTIONS").Name("today")
	mainRouter.HandleFunc("/progress", handler.handleProgress).Methods("GET", "OPTIONS").Name("progress")
	mainRouter.HandleFunc("/week/progression", handler.handleWeekProgression).Methods("GET", "OPTIONS").Name("week-progression")
	mainRouter.HandleFunc("/week/advance", handler.handleWeekAdvance).Methods("POST", "OPTIONS").Name("week-advance")
	mainRouter.HandleFunc("/export", handler.handleExport).Methods("GET", "OPTIONS").Name("export")
	mainRouter.HandleFunc("/import", handler.handleImport).Methods("POST", "OPTIONS").Name("import")
	mainRouter.HandleFunc("/advisory", handler.handleAdvisory).Methods("GET", "OPTIONS").Name("advisory")
	mainRouter.HandleFunc("/notifications", handler.handleNotifications).Methods("GET", "OPTIONS").Name("notifications")
	mainRouter.HandleFunc("/notifications/click", handler.handleNotificationClick).Methods("POST", "OPTIONS").Name("notification-click")
	mainRouter.HandleFunc("/notifications/push", handler.handlePush).Methods("POST", "OPTIONS").Name("notification-push")
	mainRouter.HandleFunc("/offline/status", handler.handleOfflineStatus).Methods("GET", "OPTIONS").Name("offline-status")

	// check-ins are the only routes a misbehaving client can hammer
	checkinRouter := mainRouter.NewRoute().Subrouter()
	checkinRouter.HandleFunc("/checkin", handler.handleCheckin).Methods("POST", "OPTIONS").Name("checkin")
	checkinRouter.HandleFunc("/wake-time", handler.handleWakeTime).Methods("PUT", "OPTIONS").Name("wake-time")
	checkinRouter.HandleFunc("/energy", handler.handleEnergy).Methods("PUT", "OPTIONS").Name("energy")
	checkinRouter.Use(middleware.RateLimit(rateLimiter, "checkin", checkinsPerMin, metricsManager))
}

func (handler *Handler) handleCurrentProgram(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSONResponseOK(w, program.GetOrFirst(handler.store.CurrentWeek()))
}

func (handler *Handler) handleProgramWeek(w http.ResponseWriter, r *http.Request) {
	weekStr := mux.Vars(r)["week"]
	week, err := strconv.Atoi(weekStr)
	if err != nil {
		http.Error(w, "error, week NaN", http.StatusBadRequest)
		return
	}

	weekProgram, err := program.Get(week)
	if err != nil {
		if errors.Is(err, program.ErrWeekNotFound) {
			http.Error(w, fmt.Sprintf("week %d not found", week), http.StatusNotFound)
			return
		}
		log.Errorf("get program week %d: %s", week, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, weekProgram)
}

func (handler *Handler) handleToday(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSONResponseOK(w, handler.store.Overview(handler.store.Today()))
}

type ProgressResponse struct {
	CurrentWeek             int              `json:"currentWeek"`
	WeeklyCompletionPercent int              `json:"weeklyCompletionPercent"`
	Streak                  int              `json:"streak"`
	LongestStreak           int              `json:"longestStreak"`
	TotalWorkouts           int              `json:"totalWorkouts"`
	Badges                  []progress.Badge `json:"badges"`
	AvgEnergy               int              `json:"avgEnergy"`
}

func (handler *Handler) handleProgress(w http.ResponseWriter, _ *http.Request) {
	ov := handler.store.Overview(handler.store.Today())
	pkg.WriteJSONResponseOK(w, ProgressResponse{
		CurrentWeek:             ov.CurrentWeek,
		WeeklyCompletionPercent: ov.WeeklyCompletionPercent,
		Streak:                  ov.Streak,
		LongestStreak:           ov.LongestStreak,
		TotalWorkouts:           ov.TotalWorkouts,
		Badges:                  ov.Badges,
		AvgEnergy:               ov.AvgEnergy,
	})
}

type WeekProgressionResponse struct {
	CurrentWeek int  `json:"currentWeek"`
	Recommended bool `json:"recommended"`
}

func (handler *Handler) handleWeekProgression(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSONResponseOK(w, WeekProgressionResponse{
		CurrentWeek: handler.store.CurrentWeek(),
		Recommended: handler.store.CheckWeekProgression(handler.store.Today()),
	})
}

type WeekAdvanceResponse struct {
	Advanced    bool `json:"advanced"`
	CurrentWeek int  `json:"currentWeek"`
}

func (handler *Handler) handleWeekAdvance(w http.ResponseWriter, r *http.Request) {
	advanced := handler.store.AdvanceWeek(r.Context())
	pkg.WriteJSONResponseOK(w, WeekAdvanceResponse{
		Advanced:    advanced,
		CurrentWeek: handler.store.CurrentWeek(),
	})
}

// CheckinRequest sets one check-in flag. Date defaults to today.
type CheckinRequest struct {
	Date  string         `json:"date,omitempty"`
	Field progress.Field `json:"field"`
	Value bool           `json:"value"`
}

type WakeTimeRequest struct {
	Date string `json:"date,omitempty"`
	Time string `json:"time"`
}

type EnergyRequest struct {
	Date  string `json:"date,omitempty"`
	Level int    `json:"level"`
}

// DayResponse is returned by every check-in mutation.
type DayResponse struct {
	Date       progress.Date      `json:"date"`
	Record     progress.DayRecord `json:"record"`
	PerfectDay bool               `json:"perfectDay"`
}

func (handler *Handler) handleCheckin(w http.ResponseWriter, r *http.Request) {
	var req CheckinRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "invalid check-in request", err)
		return
	}
	date, err := handler.requestDate(req.Date)
	if err != nil {
		writeError(w, "invalid date", err)
		return
	}

	if err := handler.store.RecordCheckin(date, req.Field, req.Value); err != nil {
		writeError(w, "check-in failed", err)
		return
	}
	handler.writeDay(w, date)
}

func (handler *Handler) handleWakeTime(w http.ResponseWriter, r *http.Request) {
	var req WakeTimeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "invalid wake time request", err)
		return
	}
	date, err := handler.requestDate(req.Date)
	if err != nil {
		writeError(w, "invalid date", err)
		return
	}

	if err := handler.store.SetWakeTime(date, req.Time); err != nil {
		writeError(w, "set wake time failed", err)
		return
	}
	handler.writeDay(w, date)
}

func (handler *Handler) handleEnergy(w http.ResponseWriter, r *http.Request) {
	var req EnergyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "invalid energy request", err)
		return
	}
	date, err := handler.requestDate(req.Date)
	if err != nil {
		writeError(w, "invalid date", err)
		return
	}

	if err := handler.store.SetEnergyLevel(date, req.Level); err != nil {
		writeError(w, "set energy level failed", err)
		return
	}
	handler.writeDay(w, date)
}

func (handler *Handler) writeDay(w http.ResponseWriter, date progress.Date) {
	record, _ := handler.store.Record(date)
	pkg.WriteJSONResponseOK(w, DayResponse{
		Date:       date,
		Record:     record,
		PerfectDay: record.IsPerfect(),
	})
}

func (handler *Handler) requestDate(raw string) (progress.Date, error) {
	if raw == "" {
		return handler.store.Today(), nil
	}
	date, err := progress.ParseDate(raw)
	if err != nil {
		return progress.Date{}, fmt.Errorf("%w: %s", progress.ErrValidation, err)
	}
	return date, nil
}

func (handler *Handler) handleExport(w http.ResponseWriter, _ *http.Request) {
	now := handler.now()
	data, err := handler.store.Export(now)
	if err != nil {
		writeError(w, "export failed", err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", progress.ExportFileName(now)))
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, data, http.StatusOK)
}

func (handler *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRequestBodySize))
	if err != nil {
		log.Errorf("read import body: %s", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "backup too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "read body error", http.StatusBadRequest)
		return
	}

	if err := handler.store.Import(r.Context(), data); err != nil {
		writeError(w, "import failed", err)
		return
	}

	log.Infof("progress imported, current week: %d", handler.store.CurrentWeek())
	pkg.WriteJSONResponseOK(w, handler.store.Overview(handler.store.Today()))
}

func (handler *Handler) handleAdvisory(w http.ResponseWriter, r *http.Request) {
	conditions := advisory.Conditions{
		Condition: advisory.Condition(r.URL.Query().Get("condition")),
		Time:      handler.now(),
	}
	if tempStr := r.URL.Query().Get("temp"); tempStr != "" {
		temp, err := strconv.ParseFloat(tempStr, 64)
		if err != nil {
			http.Error(w, "error, temp NaN", http.StatusBadRequest)
			return
		}
		conditions.TemperatureC = &temp
	}

	pkg.WriteJSONResponseOK(w, advisory.Check(r.Context(), handler.advisor, conditions))
}

func (handler *Handler) handleNotifications(w http.ResponseWriter, _ *http.Request) {
	recent := handler.notifications.Recent()
	if recent == nil {
		recent = []offline.Notification{}
	}
	pkg.WriteJSONResponseOK(w, recent)
}

type NotificationClickRequest struct {
	Action string `json:"action"`
}

func (handler *Handler) handleNotificationClick(w http.ResponseWriter, r *http.Request) {
	var req NotificationClickRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "invalid notification click", err)
		return
	}
	pkg.WriteJSONResponseOK(w, handler.offline.HandleNotificationClick(req.Action))
}

type PushRequest struct {
	Payload string `json:"payload"`
}

func (handler *Handler) handlePush(w http.ResponseWriter, r *http.Request) {
	var req PushRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "invalid push message", err)
		return
	}
	if err := handler.offline.HandlePush(r.Context(), req.Payload); err != nil {
		writeError(w, "push failed", err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (handler *Handler) handleOfflineStatus(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSONResponseOK(w, handler.offline.Status())
}

func decodeJSON(r *http.Request, target any) error {
	if r.Body == nil {
		return fmt.Errorf("%w: empty body", progress.ErrValidation)
	}
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return fmt.Errorf("%w: %s", progress.ErrValidation, err)
	}
	return nil
}

// writeError answers 400 for validation failures and 500 for everything else.
func writeError(w http.ResponseWriter, message string, err error) {
	if errors.Is(err, progress.ErrValidation) {
		log.Debugf("%s: %s", message, err)
		http.Error(w, fmt.Sprintf("%s: %s", message, err), http.StatusBadRequest)
		return
	}
	log.Errorf("%s: %s", message, err)
	http.Error(w, message, http.StatusInternalServerError)
}
