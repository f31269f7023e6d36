package web

import (
	"net/http"

	"shoptrack/internal/adapters/http/middleware"
	"shoptrack/internal/domain/account"
)

// registerRoutes attaches every handler to the mux. Role enforcement
// happens here so no admin command or steward view is reachable
// without a session; the kiosk surface stays open to the floor.
func registerRoutes(mux *http.ServeMux) {
	editor := middleware.RequireRole(account.RoleAdmin, account.RoleEditor)
	admin := middleware.RequireRole(account.RoleAdmin)

	// Kiosk surface (open, rate-limited, CSRF-protected).
	mux.HandleFunc("/", handleKioskPage)
	mux.HandleFunc("/submit", handleSubmit)

	// Sessions.
	mux.HandleFunc("/login", handleLogin)
	mux.HandleFunc("/logout", handleLogout)
	mux.Handle("/change-password", middleware.RequireAuth(http.HandlerFunc(handleChangePassword)))
	mux.HandleFunc("/api/login", handleAPILogin)

	// Steward views.
	mux.Handle("/roster", editor(http.HandlerFunc(handleRoster)))
	mux.Handle("/checked-in", editor(http.HandlerFunc(handleCheckedIn)))
	mux.Handle("/members/", editor(http.HandlerFunc(handleMember)))

	// Admin commands (shopctl and the roster page post here).
	mux.Handle("/admin/checkin", editor(http.HandlerFunc(handleAdminCheckIn)))
	mux.Handle("/admin/checkout", editor(http.HandlerFunc(handleAdminCheckOut)))
	mux.Handle("/admin/hours", editor(http.HandlerFunc(handleAdminHours)))
	mux.Handle("/admin/timeout", editor(http.HandlerFunc(handleAdminTimeout)))
	mux.Handle("/admin/reset-timeouts", editor(http.HandlerFunc(handleAdminResetTimeouts)))
	mux.Handle("/admin/exempt", editor(http.HandlerFunc(handleAdminExempt)))
	mux.Handle("/admin/requirement", editor(http.HandlerFunc(handleAdminRequirement)))
	mux.Handle("/admin/sweep", editor(http.HandlerFunc(handleAdminSweep)))

	// Account management and ops surfaces, admins only.
	mux.Handle("/accounts", admin(http.HandlerFunc(handleAccounts)))
	mux.Handle("/accounts/delete", admin(http.HandlerFunc(handleAccountDelete)))
	mux.Handle("/admin/perf", admin(http.HandlerFunc(handlePerf)))
}
