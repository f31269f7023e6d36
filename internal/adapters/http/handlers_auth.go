package web

import (
	"errors"
	"net/http"

	"github.com/gorilla/csrf"

	"shoptrack/internal/adapters/http/middleware"
	accountStore "shoptrack/internal/adapters/storage/account"
	"shoptrack/internal/application/orchestrators"
	accountDomain "shoptrack/internal/domain/account"
)

// startSession turns a verified login into a cookie-backed session.
func startSession(w http.ResponseWriter, result orchestrators.LoginResult) (string, error) {
	token, err := sessions.Create(result.AccountID, result.Email, result.Role)
	if err != nil {
		return "", err
	}
	middleware.SetSessionCookie(w, token)
	return token, nil
}

func renderLogin(w http.ResponseWriter, r *http.Request, errMsg string) {
	data := map[string]any{"CSRFToken": csrf.Token(r)}
	if errMsg != "" {
		data["Error"] = errMsg
	}
	renderTemplate(w, r, "login.html", data)
}

// handleLogin serves the form on GET and authenticates on POST.
func handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		// Already signed in, go straight to the roster.
		if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
			http.Redirect(w, r, "/roster", http.StatusSeeOther)
			return
		}
		renderLogin(w, r, "")

	case "POST":
		if !parseForm(w, r) {
			return
		}
		result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
			Email:    r.FormValue("Email"),
			Password: r.FormValue("Password"),
		}, orchestrators.LoginDeps{AccountStore: stores.AccountStore})
		if err != nil {
			renderLogin(w, r, err.Error())
			return
		}
		if _, err := startSession(w, result); err != nil {
			internalError(w, err)
			return
		}
		http.Redirect(w, r, "/roster", http.StatusSeeOther)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleAPILogin takes JSON credentials and answers with the session
// token. shopctl logs in here and replays the token as its cookie.
func handleAPILogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input orchestrators.LoginInput
	if err := decodeJSON(r, &input); err != nil {
		http.Error(w, "malformed JSON", http.StatusBadRequest)
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), input,
		orchestrators.LoginDeps{AccountStore: stores.AccountStore})
	if err != nil {
		if errors.Is(err, orchestrators.ErrAccountLocked) {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	token, err := startSession(w, result)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"Token": token,
		"Role":  result.Role,
	})
}

// handleLogout drops the session and its cookie: POST /logout.
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if cookie, err := r.Cookie("shoptrack_session"); err == nil {
		sessions.Delete(cookie.Value)
	}
	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func renderChangePassword(w http.ResponseWriter, r *http.Request, errMsg string) {
	data := map[string]any{"CSRFToken": csrf.Token(r)}
	if errMsg != "" {
		data["Error"] = errMsg
	}
	renderTemplate(w, r, "change_password.html", data)
}

// handleChangePassword serves the form on GET and updates on POST.
func handleChangePassword(w http.ResponseWriter, r *http.Request) {
	s, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	switch r.Method {
	case "GET":
		renderChangePassword(w, r, "")

	case "POST":
		if !parseForm(w, r) {
			return
		}
		if r.FormValue("NewPassword") != r.FormValue("ConfirmPassword") {
			renderChangePassword(w, r, "New passwords do not match")
			return
		}

		err := orchestrators.ExecuteChangePassword(r.Context(), orchestrators.ChangePasswordInput{
			AccountID:       s.AccountID,
			CurrentPassword: r.FormValue("CurrentPassword"),
			NewPassword:     r.FormValue("NewPassword"),
		}, orchestrators.ChangePasswordDeps{AccountStore: stores.AccountStore})
		if err != nil {
			renderChangePassword(w, r, err.Error())
			return
		}
		http.Redirect(w, r, "/roster", http.StatusSeeOther)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// accountErrorStatus maps account command errors to HTTP statuses.
// Zero means the error is not a user error.
func accountErrorStatus(err error) int {
	switch {
	case errors.Is(err, orchestrators.ErrEmailAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, accountDomain.ErrInvalidEmail),
		errors.Is(err, accountDomain.ErrEmptyEmail),
		errors.Is(err, accountDomain.ErrEmailTooLong),
		errors.Is(err, accountDomain.ErrInvalidRole),
		errors.Is(err, accountDomain.ErrEmptyPassword),
		errors.Is(err, accountDomain.ErrPasswordTooShort):
		return http.StatusBadRequest
	}
	return 0
}

// safeAccount is the account shape exposed over HTTP. Password hashes
// never leave the store layer.
type safeAccount struct {
	ID, Email, Role string
}

// handleAccounts lists editors on GET and creates one on POST.
func handleAccounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case "GET":
		// An empty role filters nothing out.
		accounts, err := stores.AccountStore.List(ctx, accountStore.ListFilter{
			Limit: 1000,
			Role:  r.URL.Query().Get("role"),
		})
		if err != nil {
			internalError(w, err)
			return
		}
		safe := make([]safeAccount, 0, len(accounts))
		for _, a := range accounts {
			safe = append(safe, safeAccount{ID: a.ID, Email: a.Email, Role: a.Role})
		}

		if wantsHTML(r) {
			renderTemplate(w, r, "accounts.html", map[string]any{
				"Accounts":  safe,
				"CSRFToken": csrf.Token(r),
			})
			return
		}
		writeJSON(w, http.StatusOK, safe)

	case "POST":
		var input orchestrators.CreateAccountInput
		if !decodeCommand(w, r, &input, map[string]*string{
			"Email":    &input.Email,
			"Password": &input.Password,
			"Role":     &input.Role,
		}) {
			return
		}

		id, err := orchestrators.ExecuteCreateAccount(ctx, input,
			orchestrators.CreateAccountDeps{AccountStore: stores.AccountStore})
		if err != nil {
			if status := accountErrorStatus(err); status != 0 {
				http.Error(w, err.Error(), status)
				return
			}
			internalError(w, err)
			return
		}

		if wantsHTML(r) {
			http.Redirect(w, r, "/accounts", http.StatusSeeOther)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{
			"ID":    id,
			"Email": input.Email,
			"Role":  input.Role,
		})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleAccountDelete removes an editor account: POST /accounts/delete.
// An admin cannot remove the account it is signed in with.
func handleAccountDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input struct {
		ID string
	}
	if !decodeCommand(w, r, &input, map[string]*string{"ID": &input.ID}) {
		return
	}

	if input.ID == "" {
		http.Error(w, "ID is required", http.StatusBadRequest)
		return
	}
	s, _ := middleware.GetSessionFromContext(r.Context())
	if input.ID == s.AccountID {
		http.Error(w, "cannot delete your own account", http.StatusBadRequest)
		return
	}

	if err := stores.AccountStore.Delete(r.Context(), input.ID); err != nil {
		internalError(w, err)
		return
	}

	if wantsHTML(r) {
		http.Redirect(w, r, "/accounts", http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
