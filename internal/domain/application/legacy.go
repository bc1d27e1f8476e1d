package application

// NormalizeLegacy collapses the old status + state pair (and the old
// "submitted with input_ready" underwriter hand-off) into one canonical
// status. Used by the one-time workflow migration only.
func NormalizeLegacy(status, state string, inputReady bool) Status {
	s := Status(status)
	if s.Terminal() {
		return s
	}
	switch {
	case state == "underwriter_review":
		return StatusAnalystApproved
	case state == "under_review" || s == StatusUnderReview:
		return StatusUnderReview
	case s == StatusSubmitted && inputReady:
		return StatusAnalystApproved
	}
	if s.Valid() {
		return s
	}
	return StatusSubmitted
}
