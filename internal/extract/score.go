package extract

import (
	"regexp"
	"strings"
)

var (
	rePolicyNumber = regexp.MustCompile(`^[A-Z0-9\-/]{6,}$`)
	reDateYMD      = regexp.MustCompile(`^\d{4}[-/.]\d{1,2}[-/.]\d{1,2}$`)
	reDateDMY      = regexp.MustCompile(`^\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4}$`)
	reAmount       = regexp.MustCompile(`^[$€£]?\s?[\d,.]+(\.\d{2})?$`)
	reDigit        = regexp.MustCompile(`\d`)
	reStreet       = regexp.MustCompile(`(?i)\b(St|Street|Ave|Avenue|Rd|Road|Blvd|Lane|Ln|Drive|Dr|Ct|Court)\b`)
)

// Score returns the heuristic confidence for a candidate value of a field.
// Empty values always score 0.0; unknown fields score a flat 0.5.
func Score(field, value string) float32 {
	v := strings.TrimSpace(value)
	if v == "" {
		return 0.0
	}
	switch field {
	case "policy_number":
		if rePolicyNumber.MatchString(v) {
			return 0.9
		}
		return 0.6
	case "date_of_incident", "submission_date":
		if reDateYMD.MatchString(v) || reDateDMY.MatchString(v) {
			return 0.85
		}
		return 0.5
	case "claim_amount":
		if reAmount.MatchString(v) {
			return 0.85
		}
		return 0.5
	case "customer_name":
		parts := strings.Fields(v)
		if len(parts) >= 2 && len(parts[0]) >= 2 && len(parts[1]) >= 2 {
			return 0.8
		}
		return 0.5
	case "address":
		if reDigit.MatchString(v) && reStreet.MatchString(v) {
			return 0.75
		}
		return 0.5
	case "agent", "claim_type", "form_type":
		if len(v) >= 3 {
			return 0.6
		}
		return 0.4
	}
	return 0.5
}
