package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"shoptrack/internal/adapters/http/middleware"
	"shoptrack/internal/application/orchestrators"
	"shoptrack/internal/domain/hms"
	"shoptrack/internal/domain/ledger"
)

// timeNow is swapped out by tests that need a fixed clock.
var timeNow = time.Now

func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and answers with a generic message
// so storage and template failures never leak detail to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// writeError maps domain errors onto HTTP statuses: unknown member 404,
// malformed input 400, state conflicts 409. Anything else is treated as
// an internal failure and kept generic.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrMemberNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, hms.ErrInvalidDuration),
		errors.Is(err, ledger.ErrInvalidDirection),
		errors.Is(err, ledger.ErrEmptyAddress):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ledger.ErrInvalidAccrual),
		errors.Is(err, ledger.ErrNotCheckedIn),
		errors.Is(err, ledger.ErrAlreadyExists):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		internalError(w, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// isForm reports whether the request body is an HTML form post rather
// than JSON. The kiosk and admin pages submit forms; scripted clients
// send JSON.
func isForm(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
}

// parseForm parses a form body, answering 400 when it is malformed.
func parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return false
	}
	return true
}

// decodeJSON rejects bodies with fields the input struct does not have,
// so a typoed field name fails loudly instead of silently defaulting.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func wantsHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

const templatesDir = "internal/adapters/http/templates"

// noteMarkdown renders audit-trail notes on the member detail page.
// WithUnsafe stays off so raw HTML inside a note is escaped, not emitted.
var noteMarkdown = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// pageFuncs exposes the session and a few view helpers to the
// templates. Every page parses against layout.html, whose nav needs
// the login state.
func pageFuncs(r *http.Request) template.FuncMap {
	var role, email string
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		role, email = sess.Role, sess.Email
	}

	return template.FuncMap{
		"currentRole":  func() string { return role },
		"currentEmail": func() string { return email },
		"isLoggedIn":   func() bool { return role != "" },
		"csrfToken":    func() string { return csrf.Token(r) },
		"add":          func(a, b int) int { return a + b },
		"sub":          func(a, b int) int { return a - b },
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := noteMarkdown.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"sortHeaderArgs": func(col, label, activeSort, activeDir, search string, perPage int) map[string]string {
			next := "asc"
			if col == activeSort && activeDir == "asc" {
				next = "desc"
			}
			return map[string]string{
				"Col": col, "Label": label,
				"ActiveSort": activeSort, "ActiveDir": activeDir, "NextDir": next,
				"Search":  search,
				"PerPage": strconv.Itoa(perPage),
			}
		},
		"paginationQuery": func(page int, sort, dir, search string, perPage int) template.URL {
			q := url.Values{}
			q.Set("page", strconv.Itoa(page))
			if sort != "" {
				q.Set("sort", sort)
			}
			if dir != "" {
				q.Set("dir", dir)
			}
			if search != "" {
				q.Set("q", search)
			}
			if perPage > 0 {
				q.Set("per_page", strconv.Itoa(perPage))
			}
			return template.URL(q.Encode())
		},
	}
}

func renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	tpl, err := template.New("layout.html").Funcs(pageFuncs(r)).ParseFiles(
		filepath.Join(templatesDir, "layout.html"),
		filepath.Join(templatesDir, name),
	)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.Execute(w, data); err != nil {
		http.Error(w, "Render error: "+err.Error(), http.StatusInternalServerError)
	}
}

// attendanceDeps assembles the orchestrator dependencies every
// attendance command shares. Policy knobs come from SetLedgerPolicy;
// zero values keep the ledger defaults.
func attendanceDeps() orchestrators.AttendanceDeps {
	return orchestrators.AttendanceDeps{
		RosterStore:        stores.RosterStore,
		WeekStore:          stores.WeekStore,
		DefaultRequirement: defaultRequirement,
		GenerateID:         generateID,
		Now:                timeNow,
	}
}

// handleKioskPage serves the check-in form at "/".
func handleKioskPage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	renderTemplate(w, r, "kiosk.html", map[string]any{
		"CSRFToken": csrf.Token(r),
	})
}

// handleSubmit accepts one kiosk event: POST /submit.
func handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input orchestrators.SubmitAttendanceInput
	if isForm(r) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		input.Address = r.FormValue("Address")
		input.Direction = r.FormValue("Direction")
		input.Metadata = r.FormValue("Metadata")
	} else if err := decodeJSON(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := orchestrators.ExecuteSubmitAttendance(r.Context(), input, attendanceDeps()); err != nil {
		writeError(w, err)
		return
	}

	if wantsHTML(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
