package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"aromos/internal/availability"
	"aromos/internal/database"
	"aromos/internal/messaging"
	"aromos/internal/metrics"
	"aromos/internal/models"
	"aromos/internal/receipt"
	"aromos/internal/stats"

	"github.com/google/uuid"
)

// writeServiceError переводит доменные ошибки в HTTP-статусы.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrEmptyField),
		errors.Is(err, database.ErrUnknownStatus),
		errors.Is(err, database.ErrUnknownCategory),
		errors.Is(err, database.ErrUnknownReason):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// handleAvailability отдает занятость юнита: точечный запрос по дню либо
// месячную сетку. Смотрит в последний снапшот, на заблокированном
// представлении отвечает 503 без частичных данных.
func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	const prefix = "/api/v1/availability/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	unitID, sub, _ := strings.Cut(rest, "/")
	unitID = strings.TrimSpace(unitID)
	if unitID == "" {
		writeError(w, http.StatusBadRequest, "unit id is required")
		return
	}

	snap, err := s.view.Snapshot()
	if err != nil {
		writeBlocked(w, err)
		return
	}

	switch sub {
	case "":
		dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
		if dateStr == "" {
			writeError(w, http.StatusBadRequest, "date is required")
			return
		}
		date, err := time.ParseInLocation(models.DateLayout, dateStr, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
			return
		}

		occupied := availability.IsDateOccupied(snap.Reservations, date.Day(), date.Month(), date.Year(), unitID)
		writeJSON(w, http.StatusOK, map[string]any{
			"unit_id":  unitID,
			"date":     dateStr,
			"occupied": occupied,
		})

	case "grid":
		monthStr := strings.TrimSpace(r.URL.Query().Get("month"))
		ref := time.Now()
		if monthStr != "" {
			parsed, err := time.ParseInLocation("2006-01", monthStr, time.Local)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid month format; expected YYYY-MM")
				return
			}
			ref = parsed
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"unit_id": unitID,
			"month":   availability.DaysInMonth(ref),
			"cells":   availability.MonthGrid(snap.Reservations, ref, unitID),
		})

	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	dash, err := s.view.Dashboard()
	if err != nil {
		writeBlocked(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

// handleAgenda заезды и выезды на день. Сравнение по точному совпадению
// строки даты, по умолчанию сегодня.
func (s *HTTPServer) handleAgenda(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	if dateStr == "" {
		dateStr = time.Now().Format(models.DateLayout)
	} else if _, err := time.ParseInLocation(models.DateLayout, dateStr, time.Local); err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	snap, err := s.view.Snapshot()
	if err != nil {
		writeBlocked(w, err)
		return
	}

	agenda := stats.DailyAgenda(snap.Reservations, dateStr)
	writeJSON(w, http.StatusOK, agenda)
}

func (s *HTTPServer) handleReservations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		reservations, err := s.reservations.GetReservations(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"reservations": reservations})

	case http.MethodPost:
		var res models.Reservation
		if err := decodeBody(r, &res); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.reservations.CreateReservation(r.Context(), &res); err != nil {
			writeServiceError(w, err)
			return
		}
		metrics.IncReservation("created")
		writeJSON(w, http.StatusCreated, res)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleReservationByID(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/reservations/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	id, sub, _ := strings.Cut(rest, "/")
	id = strings.TrimSpace(id)
	if id == "" {
		writeError(w, http.StatusBadRequest, "reservation id is required")
		return
	}

	switch sub {
	case "":
		s.handleReservationCRUD(w, r, id)
	case "receipt":
		s.handleReceipt(w, r, id)
	case "whatsapp":
		s.handleWhatsApp(w, r, id)
	case "reschedule":
		s.handleReschedule(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) handleReservationCRUD(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		res, err := s.reservations.GetReservation(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)

	case http.MethodPut:
		var res models.Reservation
		if err := decodeBody(r, &res); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		res.ID = id
		if err := s.reservations.UpdateReservation(r.Context(), &res); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)

	case http.MethodDelete:
		reason := strings.TrimSpace(r.URL.Query().Get("reason"))
		if reason == "" {
			reason = models.ReasonCancellation
		}
		if !models.ValidCancellationReason(reason) {
			writeError(w, http.StatusBadRequest, "unknown cancellation reason")
			return
		}

		record, err := s.reservations.CancelReservation(r.Context(), id, reason)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		metrics.IncReservation("canceled")
		writeJSON(w, http.StatusOK, record)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleReschedule(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Checkin  string `json:"checkin"`
		Checkout string `json:"checkout"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.reservations.RescheduleReservation(r.Context(), id, body.Checkin, body.Checkout)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	metrics.IncReservation("rescheduled")
	writeJSON(w, http.StatusOK, res)
}

func (s *HTTPServer) handleReceipt(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	res, err := s.reservations.GetReservation(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	rc := receipt.Build(s.business, res, s.unitName(r, res.UnitID))
	writeJSON(w, http.StatusOK, map[string]any{
		"receipt": rc,
		"lines":   rc.Lines(),
	})
}

func (s *HTTPServer) handleWhatsApp(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	res, err := s.reservations.GetReservation(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	unitName := s.unitName(r, res.UnitID)
	writeJSON(w, http.StatusOK, map[string]string{
		"text": messaging.ConfirmationText(s.business, res, unitName),
		"link": messaging.ConfirmationLink(s.business, res, unitName),
	})
}

// unitName подставляет имя бунгало; если юнит не найден, остается сырой ID.
func (s *HTTPServer) unitName(r *http.Request, unitID string) string {
	unit, err := s.units.GetUnit(r.Context(), unitID)
	if err != nil || unit == nil {
		return unitID
	}
	return unit.Name
}

func (s *HTTPServer) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		expenses, err := s.expenses.GetExpenses(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"expenses": expenses})

	case http.MethodPost:
		var exp models.Expense
		if err := decodeBody(r, &exp); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.expenses.AddExpense(r.Context(), &exp); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, exp)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleExpenseByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/api/v1/expenses/"))
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "expense id is required")
		return
	}

	if err := s.expenses.DeleteExpense(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *HTTPServer) handleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		tasks, err := s.maintenance.GetTasks(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})

	case http.MethodPost:
		var task models.MaintenanceTask
		if err := decodeBody(r, &task); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.maintenance.CreateTask(r.Context(), &task); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, task)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleTaskByID(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/tasks/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	id, sub, _ := strings.Cut(rest, "/")
	id = strings.TrimSpace(id)
	if id == "" {
		writeError(w, http.StatusBadRequest, "task id is required")
		return
	}

	switch {
	case sub == "" && r.Method == http.MethodDelete:
		if err := s.maintenance.DeleteTask(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	case sub == "toggle" && r.Method == http.MethodPost:
		status, err := s.maintenance.ToggleTask(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": status})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleUnits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	units, err := s.units.GetUnits(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"units": units})
}

func (s *HTTPServer) handleUnitByID(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/units/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	id, sub, _ := strings.Cut(rest, "/")
	id = strings.TrimSpace(id)
	if id == "" {
		writeError(w, http.StatusBadRequest, "unit id is required")
		return
	}

	if sub != "status" || r.Method != http.MethodPatch {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.units.SetUnitStatus(r.Context(), id, body.Status); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": body.Status})
}

// handleExportOccupancy собирает xlsx по снапшоту и отдает файл. По умолчанию
// выгружается текущий месяц.
func (s *HTTPServer) handleExportOccupancy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	now := time.Now()
	month := now.Month()
	year := now.Year()

	if raw := strings.TrimSpace(r.URL.Query().Get("month")); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil || m < 1 || m > 12 {
			writeError(w, http.StatusBadRequest, "invalid month; expected 1-12")
			return
		}
		month = time.Month(m)
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("year")); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 2000 || y > 2200 {
			writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = y
	}

	snap, err := s.view.Snapshot()
	if err != nil {
		writeBlocked(w, err)
		return
	}

	path, err := s.exporter.OccupancyGrid(snap.Units, snap.Reservations, snap.Expenses, month, year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepathBase(path)))
	http.ServeFile(w, r, path)
}

func filepathBase(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// handleSession выдает и гасит сессии дашборда. Логин требует валидный
// API-ключ, разлогин валидный токен.
func (s *HTTPServer) handleSession(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		session, err := s.auth.Login(r, uuid.NewString())
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, session)

	case http.MethodDelete:
		token := strings.TrimSpace(r.Header.Get(sessionHeader))
		if token == "" {
			writeError(w, http.StatusBadRequest, "session token is required")
			return
		}
		if err := s.auth.Logout(r, token); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
