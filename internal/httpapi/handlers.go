package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/nexthr/nexthr-backend/internal/auth"
	"github.com/nexthr/nexthr-backend/internal/ratelimit"
	"github.com/nexthr/nexthr-backend/internal/store"
	"github.com/nexthr/nexthr-backend/internal/tenant"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.auth.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		s.writeLoginError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeLoginError maps login failures to responses. Credential mismatches
// stay generic; inactive and unapproved states are specific because they are
// already account-scoped and operationally useful.
func (s *Server) writeLoginError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, auth.ErrAccountInactive):
		writeError(w, http.StatusUnauthorized, "account is inactive, contact your administrator")
	case errors.Is(err, auth.ErrTenantNotApproved):
		writeError(w, http.StatusUnauthorized, "organization registration is pending approval")
	case errors.Is(err, ratelimit.ErrLoginRateLimited):
		writeError(w, http.StatusTooManyRequests, "too many login attempts, try again later")
	default:
		s.log.Error("login failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req auth.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	org, err := s.auth.SignupOrganization(r.Context(), req)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"organizationUuid": org.UUID,
		"status":           org.Status,
	})
}

func (s *Server) handleApproveOrganization(w http.ResponseWriter, r *http.Request) {
	orgUUID := mux.Vars(r)["uuid"]

	if err := s.auth.ApproveOrganization(r.Context(), orgUUID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "organization not found")
			return
		}
		s.log.Error("approve organization failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	orgUUID, ok := s.scopeOrganization(w, r)
	if !ok {
		return
	}

	employees, err := s.employees.ListByOrganization(r.Context(), orgUUID)
	if err != nil {
		s.log.Error("list employees failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, employees)
}

func (s *Server) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	orgUUID, ok := s.scopeOrganization(w, r)
	if !ok {
		return
	}

	var body struct {
		FirstName   string `json:"firstName"`
		LastName    string `json:"lastName"`
		Email       string `json:"email"`
		Designation string `json:"designation"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// The organization always comes from the request scope, never the body:
	// a caller cannot create rows under another tenant.
	employee := &store.Employee{
		OrganizationUUID: orgUUID,
		FirstName:        body.FirstName,
		LastName:         body.LastName,
		Email:            body.Email,
		Designation:      body.Designation,
	}
	if err := s.employees.Insert(r.Context(), employee); err != nil {
		s.log.Error("create employee failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, employee)
}

// scopeOrganization resolves the tenant id for tenant-owned routes. System
// administrators carry no organization and are rejected here; platform-level
// views live under /api/admin.
func (s *Server) scopeOrganization(w http.ResponseWriter, r *http.Request) (string, bool) {
	sc, ok := tenant.FromContext(r.Context())
	if !ok || !sc.Populated() {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	orgUUID, ok := sc.OrganizationUUID()
	if !ok {
		writeError(w, http.StatusForbidden, "route requires an organization context")
		return "", false
	}
	return orgUUID, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
