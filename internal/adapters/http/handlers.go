package web

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"gymdesk/internal/adapters/http/middleware"
	"gymdesk/internal/application/listutil"
	"gymdesk/internal/application/orchestrators"
	"gymdesk/internal/application/projections"
	accountDomain "gymdesk/internal/domain/account"
	memberDomain "gymdesk/internal/domain/member"
	paymentDomain "gymdesk/internal/domain/payment"
	"gymdesk/internal/domain/period"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// domainErrors lists sentinel errors that map to a 400 response.
var domainErrors = []error{
	memberDomain.ErrEmptyFirstName,
	memberDomain.ErrEmptyLastName,
	memberDomain.ErrEmptyContact,
	paymentDomain.ErrNonPositiveAmount,
	paymentDomain.ErrInvalidMethod,
	paymentDomain.ErrExpiresBeforePaid,
	paymentDomain.ErrEmptyMemberID,
	paymentDomain.ErrInvalidAmount,
	period.ErrInvalidKey,
}

// writeDomainError maps known errors to client statuses; everything else is a 500.
// POST: 404 for missing rows, 409 for duplicates, 400 for validation, 500 otherwise
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		writeError(w, http.StatusNotFound, "not found")
		return
	case errors.Is(err, paymentDomain.ErrDuplicatePayment):
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	for _, de := range domainErrors {
		if errors.Is(err, de) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	internalError(w, err)
}

// requireAdmin extracts the session and checks for admin role, writing the error response itself.
func requireAdmin(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return middleware.Session{}, false
	}
	if session.Role != accountDomain.RoleAdmin {
		writeError(w, http.StatusForbidden, "admin role required")
		return middleware.Session{}, false
	}
	return session, true
}

// registerRoutes wires all API endpoints onto the mux.
// Everything except login and ready sits behind RequireAuth.
func registerRoutes(mux *http.ServeMux) {
	authed := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireAuth(h)
	}

	mux.HandleFunc("/api/login", handleLogin)
	mux.HandleFunc("/api/ready", handleReady)
	mux.HandleFunc("/api/session", handleSession)
	mux.Handle("/api/logout", authed(handleLogout))
	mux.Handle("/api/password", authed(handleChangePassword))

	mux.Handle("/api/members", authed(handleMembers))
	mux.Handle("/api/members/{id}", authed(handleMemberByID))
	mux.Handle("/api/members/{id}/active", authed(handleMemberActive))
	mux.Handle("/api/members/{id}/notes", authed(handleMemberNotes))

	mux.Handle("/api/payments", authed(handlePayments))
	mux.Handle("/api/payments/{id}", authed(handlePaymentByID))

	mux.Handle("/api/dashboard", authed(handleDashboard))
	mux.Handle("/api/dashboard/annual", authed(handleAnnualSummary))
	mux.Handle("/api/dashboard/expiring", authed(handleExpiringMembers))

	mux.Handle("/api/admin/perf", authed(handlePerfSnapshot))
}

// handleReady handles GET /api/ready
func handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLogin handles POST /api/login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input orchestrators.LoginInput
	if err := strictDecode(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), input, orchestrators.LoginDeps{
		AccountStore: stores.AccountStore,
	})
	if err != nil {
		if errors.Is(err, orchestrators.ErrAccountLocked) {
			writeError(w, http.StatusForbidden, err.Error())
			return
		}
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	token, err := sessions.Create(result.AccountID, result.Email, result.Role)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)

	writeJSON(w, http.StatusOK, map[string]string{
		"email": result.Email,
		"role":  result.Role,
	})
}

// handleLogout handles POST /api/logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	cookie, err := r.Cookie("gymdesk_session")
	if err == nil {
		sessions.Delete(cookie.Value)
	}
	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleSession handles GET /api/session. The client uses it to decide
// between the dashboard and the login screen.
func handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"email":         session.Email,
		"role":          session.Role,
	})
}

// handleChangePassword handles PUT /api/password
func handleChangePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != "PUT" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	session, _ := middleware.GetSessionFromContext(r.Context())

	var body struct {
		CurrentPassword string
		NewPassword     string
	}
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := orchestrators.ExecuteChangePassword(r.Context(), orchestrators.ChangePasswordInput{
		AccountID:       session.AccountID,
		CurrentPassword: body.CurrentPassword,
		NewPassword:     body.NewPassword,
	}, orchestrators.ChangePasswordDeps{AccountStore: stores.AccountStore})
	if err != nil {
		switch {
		case errors.Is(err, orchestrators.ErrCurrentPasswordWrong),
			errors.Is(err, orchestrators.ErrNewPasswordSame),
			errors.Is(err, accountDomain.ErrPasswordTooShort):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			internalError(w, err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMembers handles GET (list) and POST (add) for /api/members
func handleMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case "GET":
		lp := listutil.ParseListParams(r.URL.Query(),
			[]string{"first_name", "last_name", "created_at", "status"},
			[]string{"status"},
		)

		result, err := projections.QueryGetMemberList(ctx, projections.GetMemberListQuery{
			Status:  lp.Filters["status"],
			Search:  lp.Search,
			Sort:    lp.Sort,
			Dir:     lp.Dir,
			Page:    lp.Page,
			PerPage: lp.PerPage,
		}, projections.GetMemberListDeps{
			MemberStore:  stores.MemberStore,
			PaymentStore: stores.PaymentStore,
		}, timeNow())
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)

	case "POST":
		var input orchestrators.AddMemberInput
		if err := strictDecode(r, &input); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		id, err := orchestrators.ExecuteAddMember(ctx, input, orchestrators.AddMemberDeps{
			MemberStore: stores.MemberStore,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": id})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleMemberByID handles PUT (edit) and DELETE for /api/members/{id}
func handleMemberByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	switch r.Method {
	case "PUT":
		var body struct {
			FirstName string
			LastName  string
			Contact   string
		}
		if err := strictDecode(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		err := orchestrators.ExecuteEditMember(ctx, orchestrators.EditMemberInput{
			MemberID:  id,
			FirstName: body.FirstName,
			LastName:  body.LastName,
			Contact:   body.Contact,
		}, orchestrators.EditMemberDeps{MemberStore: stores.MemberStore})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case "DELETE":
		err := orchestrators.ExecuteDeleteMember(ctx, orchestrators.DeleteMemberInput{
			MemberID: id,
		}, orchestrators.DeleteMemberDeps{MemberStore: stores.MemberStore})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleMemberActive handles PUT /api/members/{id}/active
func handleMemberActive(w http.ResponseWriter, r *http.Request) {
	if r.Method != "PUT" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Active bool
	}
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := orchestrators.ExecuteSetMemberActive(r.Context(), orchestrators.SetMemberActiveInput{
		MemberID: r.PathValue("id"),
		Active:   body.Active,
	}, orchestrators.EditMemberDeps{MemberStore: stores.MemberStore})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMemberNotes handles GET and PUT for /api/members/{id}/notes.
// GET returns both the raw markdown and the rendered HTML.
func handleMemberNotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	switch r.Method {
	case "GET":
		m, err := stores.MemberStore.GetByID(ctx, id)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		var buf bytes.Buffer
		if err := mdRenderer.Convert([]byte(m.Notes), &buf); err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"notes": m.Notes,
			"html":  buf.String(),
		})

	case "PUT":
		var body struct {
			Notes string
		}
		if err := strictDecode(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		err := orchestrators.ExecuteSaveNotes(ctx, orchestrators.SaveNotesInput{
			MemberID: id,
			Notes:    body.Notes,
		}, orchestrators.EditMemberDeps{MemberStore: stores.MemberStore})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handlePayments handles POST (register) and GET (monthly history) for /api/payments
func handlePayments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case "GET":
		key := period.KeyOf(timeNow())
		if raw := r.URL.Query().Get("period"); raw != "" {
			parsed, err := period.Parse(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			key = parsed
		}

		result, err := projections.QueryGetPaymentHistory(ctx, projections.GetPaymentHistoryQuery{
			Period: key,
		}, projections.GetPaymentHistoryDeps{PaymentStore: stores.PaymentStore})
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)

	case "POST":
		var body struct {
			MemberID  string
			Period    string
			Amount    string
			Method    string
			PaidAt    time.Time
			ExpiresAt time.Time
		}
		if err := strictDecode(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		key, err := period.Parse(body.Period)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		amountCents, err := paymentDomain.ParseAmountCents(body.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		paidAt := body.PaidAt
		if paidAt.IsZero() {
			paidAt = timeNow()
		}
		// Default coverage runs 30 days from payment when the client omits it
		expiresAt := body.ExpiresAt
		if expiresAt.IsZero() {
			expiresAt = paidAt.AddDate(0, 0, paymentDomain.DefaultCoverageDays)
		}

		id, err := orchestrators.ExecuteRegisterPayment(ctx, orchestrators.RegisterPaymentInput{
			MemberID:    body.MemberID,
			Period:      key,
			AmountCents: amountCents,
			Method:      body.Method,
			PaidAt:      paidAt,
			ExpiresAt:   expiresAt,
		}, orchestrators.RegisterPaymentDeps{
			PaymentStore: stores.PaymentStore,
			MemberStore:  stores.MemberStore,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": id})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handlePaymentByID handles PUT /api/payments/{id} (date corrections only)
func handlePaymentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != "PUT" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		PaidAt    time.Time
		ExpiresAt time.Time
	}
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := orchestrators.ExecuteEditPaymentDates(r.Context(), orchestrators.EditPaymentDatesInput{
		PaymentID: r.PathValue("id"),
		PaidAt:    body.PaidAt,
		ExpiresAt: body.ExpiresAt,
	}, orchestrators.EditPaymentDatesDeps{PaymentStore: stores.PaymentStore})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDashboard handles GET /api/dashboard?period=YYYY-MM
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	now := timeNow()
	key := period.KeyOf(now)
	if raw := r.URL.Query().Get("period"); raw != "" {
		parsed, err := period.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		key = parsed
	}

	result, err := projections.QueryGetDashboard(r.Context(), projections.GetDashboardQuery{
		Period: key,
	}, projections.GetDashboardDeps{
		PaymentStore: stores.PaymentStore,
		MemberStore:  stores.MemberStore,
	}, now)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleAnnualSummary handles GET /api/dashboard/annual?year=YYYY
func handleAnnualSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	year := timeNow().UTC().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "year must be a positive number")
			return
		}
		year = parsed
	}

	result, err := projections.QueryGetAnnualSummary(r.Context(), projections.GetAnnualSummaryQuery{
		Year: year,
	}, projections.GetAnnualSummaryDeps{PaymentStore: stores.PaymentStore})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleExpiringMembers handles GET /api/dashboard/expiring
func handleExpiringMembers(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	rows, err := projections.QueryGetExpiringMembers(r.Context(), projections.GetExpiringMembersDeps{
		PaymentStore: stores.PaymentStore,
	}, timeNow())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"members": rows,
		"count":   len(rows),
	})
}

// handlePerfSnapshot handles GET /api/admin/perf?minutes=N (admin only)
func handlePerfSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	minutes := 15
	if raw := r.URL.Query().Get("minutes"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			minutes = parsed
		}
	}

	snap := perfCollector.Snapshot(timeNow().Add(-time.Duration(minutes)*time.Minute), 10)
	writeJSON(w, http.StatusOK, snap)
}
