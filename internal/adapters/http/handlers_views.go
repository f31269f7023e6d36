package web

import (
	"net/http"
	"strings"

	"shoptrack/internal/application/listutil"
	"shoptrack/internal/application/projections"
)

// handleRoster handles GET /roster: every member with derived totals,
// make-up debt and check-in state, sortable and paged.
func handleRoster(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	lp := listutil.ParseListParams(r.URL.Query(), projections.RosterSortColumns)

	query := projections.GetRosterQuery{Params: lp}
	deps := projections.GetRosterDeps{
		RosterStore: stores.RosterStore,
		WeekStore:   stores.WeekStore,
	}

	result, err := projections.QueryGetRoster(r.Context(), query, deps)
	if err != nil {
		internalError(w, err)
		return
	}

	if wantsHTML(r) {
		renderTemplate(w, r, "roster.html", map[string]any{
			"Entries":        result.Entries,
			"CheckedInCount": result.CheckedInCount,
			"PageInfo":       result.Page,
			"Sort":           result.Sort.Sort,
			"Dir":            result.Sort.Dir,
			"Search":         result.Search,
			"PerPageOptions": listutil.PerPageOptions,
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleCheckedIn handles GET /checked-in, the floor view of open visits.
func handleCheckedIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	query := projections.GetCheckedInQuery{Now: timeNow()}
	deps := projections.GetCheckedInDeps{
		RosterStore: stores.RosterStore,
		Threshold:   timeoutThreshold,
	}

	result, err := projections.QueryGetCheckedIn(r.Context(), query, deps)
	if err != nil {
		internalError(w, err)
		return
	}

	if wantsHTML(r) {
		renderTemplate(w, r, "checked_in.html", map[string]any{
			"Entries": result.Entries,
		})
		return
	}
	writeJSON(w, http.StatusOK, result.Entries)
}

// handleMember dispatches GET /members/:address and
// GET /members/:address/missed-hours.
func handleMember(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 || parts[0] != "members" || parts[1] == "" {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}
	address := parts[1]

	if len(parts) == 3 && parts[2] == "missed-hours" {
		handleMissedHours(w, r, address)
		return
	}
	if len(parts) != 2 {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}
	handleMemberDetail(w, r, address)
}

// handleMissedHours serves a member's recomputed make-up debt.
func handleMissedHours(w http.ResponseWriter, r *http.Request, address string) {
	deps := projections.GetMissedHoursDeps{
		RosterStore: stores.RosterStore,
		WeekStore:   stores.WeekStore,
	}
	result, err := projections.QueryGetMissedHours(r.Context(), projections.GetMissedHoursQuery{Address: address}, deps)
	if err != nil {
		writeError(w, err)
		return
	}

	if wantsHTML(r) {
		renderTemplate(w, r, "missed_hours.html", map[string]any{
			"Address":    result.Address,
			"MissedText": result.MissedText,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"Address":     result.Address,
		"MissedHours": result.MissedText,
	})
}

// handleMemberDetail serves the full ledger view for one member. The
// trail is rendered as markdown in the HTML view (escaped, never raw).
func handleMemberDetail(w http.ResponseWriter, r *http.Request, address string) {
	deps := projections.GetMemberDetailDeps{
		RosterStore: stores.RosterStore,
		WeekStore:   stores.WeekStore,
	}
	result, err := projections.QueryGetMemberDetail(r.Context(), projections.GetMemberDetailQuery{Address: address}, deps)
	if err != nil {
		writeError(w, err)
		return
	}

	if wantsHTML(r) {
		renderTemplate(w, r, "member_detail.html", map[string]any{
			"Member": result,
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handlePerf handles GET /admin/perf, the request/query timing snapshot.
func handlePerf(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	snap := perfCollector.Snapshot(20)

	if wantsHTML(r) {
		renderTemplate(w, r, "perf.html", map[string]any{
			"Snapshot": snap,
		})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
