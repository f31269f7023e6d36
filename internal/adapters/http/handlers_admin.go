package web

import (
	"net/http"

	"shoptrack/internal/application/orchestrators"
)

// decodeCommand fills a roster-command input from either a form post or
// a JSON body. fields maps form names onto the input's string fields;
// the JSON path decodes into input directly. Returns false after
// answering 400.
func decodeCommand(w http.ResponseWriter, r *http.Request, input any, fields map[string]*string) bool {
	if isForm(r) {
		if !parseForm(w, r) {
			return false
		}
		for name, dst := range fields {
			*dst = r.FormValue(name)
		}
		return true
	}
	if err := decodeJSON(r, input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return false
	}
	return true
}

// finishCommand answers a roster mutation. Domain errors map onto
// statuses via writeError; on success HTML clients bounce back to the
// roster and API clients get 204.
func finishCommand(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	if wantsHTML(r) {
		http.Redirect(w, r, "/roster", http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAdminCheckIn opens a session for a member: POST /admin/checkin.
func handleAdminCheckIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var input orchestrators.CheckInMemberInput
	if !decodeCommand(w, r, &input, map[string]*string{
		"Selector": &input.Selector,
		"Metadata": &input.Metadata,
	}) {
		return
	}
	finishCommand(w, r, orchestrators.ExecuteCheckInMember(r.Context(), input, attendanceDeps()))
}

// handleAdminCheckOut closes an open session: POST /admin/checkout.
func handleAdminCheckOut(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var input orchestrators.CheckOutMemberInput
	if !decodeCommand(w, r, &input, map[string]*string{
		"Selector": &input.Selector,
		"Metadata": &input.Metadata,
	}) {
		return
	}
	finishCommand(w, r, orchestrators.ExecuteCheckOutMember(r.Context(), input, attendanceDeps()))
}

// handleAdminHours applies a signed hours correction: POST /admin/hours.
func handleAdminHours(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var input orchestrators.ModifyHoursInput
	if !decodeCommand(w, r, &input, map[string]*string{
		"Selector": &input.Selector,
		"Delta":    &input.Delta,
		"Metadata": &input.Metadata,
	}) {
		return
	}
	finishCommand(w, r, orchestrators.ExecuteModifyHours(r.Context(), input, attendanceDeps()))
}

// handleAdminTimeout force-closes an open session with the timeout
// credit: POST /admin/timeout.
func handleAdminTimeout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var input orchestrators.TimeoutMemberInput
	if !decodeCommand(w, r, &input, map[string]*string{
		"Selector": &input.Selector,
	}) {
		return
	}
	finishCommand(w, r, orchestrators.ExecuteTimeoutMember(r.Context(), input, attendanceDeps()))
}

// handleAdminResetTimeouts zeroes a member's timeout tally:
// POST /admin/reset-timeouts.
func handleAdminResetTimeouts(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var input orchestrators.ResetTimeoutsInput
	if !decodeCommand(w, r, &input, map[string]*string{
		"Selector": &input.Selector,
	}) {
		return
	}
	err := orchestrators.ExecuteResetTimeouts(r.Context(), input,
		orchestrators.ResetTimeoutsDeps{RosterStore: stores.RosterStore})
	finishCommand(w, r, err)
}

// handleAdminExempt credits an excused absence: POST /admin/exempt.
func handleAdminExempt(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var input orchestrators.ExemptWeekInput
	if !decodeCommand(w, r, &input, map[string]*string{
		"Selector": &input.Selector,
		"Amount":   &input.Amount,
		"Metadata": &input.Metadata,
	}) {
		return
	}
	finishCommand(w, r, orchestrators.ExecuteExemptWeek(r.Context(), input, attendanceDeps()))
}

// handleAdminRequirement sets a member's weekly hour requirement:
// POST /admin/requirement.
func handleAdminRequirement(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var input orchestrators.SetRequirementInput
	if !decodeCommand(w, r, &input, map[string]*string{
		"Selector":    &input.Selector,
		"Requirement": &input.Requirement,
	}) {
		return
	}
	err := orchestrators.ExecuteSetRequirement(r.Context(), input,
		orchestrators.SetRequirementDeps{RosterStore: stores.RosterStore})
	finishCommand(w, r, err)
}

// handleAdminSweep runs the timeout pass on demand: POST /admin/sweep.
// The cron job calls the orchestrator directly; this route exists for
// shopctl and for operators who want a sweep now.
func handleAdminSweep(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	result, err := orchestrators.ExecuteTimeoutSweep(r.Context(), orchestrators.TimeoutSweepDeps{
		RosterStore: stores.RosterStore,
		WeekStore:   stores.WeekStore,
		Threshold:   timeoutThreshold,
		EmailSender: emailSender,
		EmailFrom:   emailFromAddress,
		EmailReply:  emailReplyTo,
		GenerateID:  generateID,
		Now:         timeNow,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	if wantsHTML(r) {
		http.Redirect(w, r, "/checked-in", http.StatusSeeOther)
		return
	}
	if result.TimedOut == nil {
		result.TimedOut = []string{}
	}
	writeJSON(w, http.StatusOK, result)
}
