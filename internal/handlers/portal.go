package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/kardemumma/internal/app"
	"github.com/shrimpsizemoose/kardemumma/internal/marks"
	"github.com/shrimpsizemoose/kardemumma/internal/metrics"
	"github.com/shrimpsizemoose/kardemumma/internal/models"
	"github.com/shrimpsizemoose/kardemumma/internal/roster"
	"github.com/shrimpsizemoose/kardemumma/internal/schedule"
)

type PortalHandler struct {
	service  *app.Service
	ledger   *marks.Ledger
	resolver *roster.Resolver
}

func NewPortalHandler(service *app.Service) *PortalHandler {
	return &PortalHandler{
		service:  service,
		ledger:   marks.NewLedger(service.Store),
		resolver: roster.NewResolver(service.Store),
	}
}

func (h *PortalHandler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Debug.Printf("Error encoding response: %v", err)
	}
}

func (h *PortalHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, models.ErrValidation):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, models.ErrConflict):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, app.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = app.ErrInvalidCredentials.Error()
	default:
		logger.Error.Printf("Internal error: %v", err)
	}

	h.writeJSON(w, status, map[string]interface{}{"message": message})
}

// identify resolves the caller. With sessions enabled it validates the
// bearer token; otherwise identity comes from plain headers, which is
// only acceptable behind a trusted gateway.
func (h *PortalHandler) identify(r *http.Request) (*app.Identity, error) {
	if h.service.Sessions.Enabled() {
		return h.service.Sessions.Resolve(r.Context(), r.Header.Get(h.service.Sessions.TokenHeader()))
	}

	identity := &app.Identity{
		UserID: r.Header.Get(h.service.Config.API.UserIDHeader),
		Role:   r.Header.Get(h.service.Config.API.RoleHeader),
	}
	if identity.UserID == "" || identity.Role == "" {
		return nil, fmt.Errorf("missing identity headers")
	}
	return identity, nil
}

func (h *PortalHandler) requireRole(w http.ResponseWriter, r *http.Request, role string) (*app.Identity, bool) {
	identity, err := h.identify(r)
	if err != nil {
		logger.Debug.Printf("Auth failed: %v", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	if identity.Role != role {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return nil, false
	}
	return identity, true
}

func (h *PortalHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, user, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

func (h *PortalHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}

	var req app.NewUser
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.service.CreateUser(req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": fmt.Sprintf("%s added successfully", user.Role),
		"user":    user,
	})
}

func (h *PortalHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}

	users, err := h.service.Store.ListUsers()
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

func (h *PortalHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireRole(w, r, models.RoleAdmin)
	if !ok {
		return
	}

	userID := r.PathValue("userID")
	if userID == "" {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteUser(identity.UserID, userID); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"message": "User deleted successfully"})
}

func (h *PortalHandler) HandleBulkImportUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}

	var req struct {
		Users []app.NewUser `json:"users"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	report := h.service.BulkImportUsers(req.Users)
	h.writeJSON(w, http.StatusCreated, report)
}

func (h *PortalHandler) HandleCreateLab(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}

	var lab models.Lab
	if err := json.NewDecoder(r.Body).Decode(&lab); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.service.CreateLab(&lab)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Lab added successfully",
		"lab":     created,
	})
}

func (h *PortalHandler) HandleListLabs(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}

	semester := 0
	if raw := r.URL.Query().Get("semester"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "Invalid semester", http.StatusBadRequest)
			return
		}
		semester = parsed
	}

	labs, err := h.service.Store.ListLabs(semester)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"labs": labs})
}

func (h *PortalHandler) HandleBulkImportLabs(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}

	var req struct {
		Labs []models.Lab `json:"labs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	report := h.service.BulkImportLabs(req.Labs)
	h.writeJSON(w, http.StatusCreated, report)
}

func (h *PortalHandler) HandleCreateAssignment(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}

	var req app.AssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	assignment, err := h.service.CreateAssignment(req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":    "Lab assigned successfully",
		"assignment": assignment,
	})
}

func (h *PortalHandler) HandleListAssignments(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}

	assignments, err := h.service.Store.ListAssignments()
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"assignments": assignments})
}

func (h *PortalHandler) HandleAssignedLabs(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireRole(w, r, models.RoleFaculty)
	if !ok {
		return
	}

	assignments, err := h.service.Store.ListAssignmentsByFaculty(identity.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"labs": assignments})
}

func (h *PortalHandler) HandleStudentsForLab(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireRole(w, r, models.RoleFaculty); !ok {
		return
	}

	assignmentID := r.PathValue("assignmentID")
	if assignmentID == "" {
		http.Error(w, "Invalid assignment id", http.StatusBadRequest)
		return
	}

	students, err := h.resolver.ResolveStudents(
		assignmentID,
		r.URL.Query().Get("section"),
		r.URL.Query().Get("batch"),
	)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"students": students})
}

// parseSessionDate accepts both a bare day and a full timestamp; only
// the calendar day matters for week identity.
func parseSessionDate(raw string) (time.Time, error) {
	if t, err := time.Parse(schedule.DayKeyFormat, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q: %w", raw, models.ErrValidation)
	}
	return t, nil
}

func (h *PortalHandler) HandleSubmitMarks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "200"
	defer func() {
		metrics.APIRequestDuration.WithLabelValues(
			r.URL.Path,
			r.Method,
			status,
		).Observe(time.Since(start).Seconds())
	}()

	identity, ok := h.requireRole(w, r, models.RoleFaculty)
	if !ok {
		status = "403"
		return
	}

	assignmentID := r.PathValue("assignmentID")
	if assignmentID == "" {
		status = "400"
		http.Error(w, "Invalid assignment id", http.StatusBadRequest)
		return
	}

	var req struct {
		Date  string             `json:"date"`
		Marks []models.MarkInput `json:"marks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		status = "400"
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	date, err := parseSessionDate(req.Date)
	if err != nil {
		status = "400"
		h.writeError(w, err)
		return
	}

	report, err := h.ledger.Submit(assignmentID, identity.UserID, date, req.Marks)
	if err != nil {
		status = "500"
		if errors.Is(err, models.ErrNotFound) {
			status = "404"
		}
		h.writeError(w, err)
		return
	}

	for i, result := range report.Results {
		outcome := "saved"
		if result.Error != "" {
			outcome = "failed"
		} else {
			metrics.MarkTotalHistogram.WithLabelValues(assignmentID).Observe(float64(marks.ComputeTotal(req.Marks[i])))
		}
		metrics.MarkSubmissionsTotal.WithLabelValues(assignmentID, outcome).Inc()
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Marks updated successfully",
		"report":  report,
	})
}

func (h *PortalHandler) HandleMarkHistory(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireRole(w, r, models.RoleFaculty); !ok {
		return
	}

	assignmentID := r.PathValue("assignmentID")
	if assignmentID == "" {
		http.Error(w, "Invalid assignment id", http.StatusBadRequest)
		return
	}

	rows, err := h.ledger.History(assignmentID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"marks": rows})
}

func (h *PortalHandler) HandleMyMarks(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireRole(w, r, models.RoleStudent)
	if !ok {
		return
	}

	labs, err := h.ledger.StudentView(identity.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"labs": labs})
}

func (h *PortalHandler) HandleMyProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireRole(w, r, models.RoleStudent)
	if !ok {
		return
	}

	user, err := h.service.Store.GetUser(identity.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"student": user})
}

func (h *PortalHandler) HandleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	identity, err := h.identify(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.UpdatePassword(identity.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Password updated successfully"})
}
