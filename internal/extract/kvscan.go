package extract

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/claims-extractor/internal/fields"
)

// labelKeywords maps field names to lowercase label substrings recognized by
// the line-based key-value scan.
var labelKeywords = map[string][]string{
	"customer_name":    {"insured", "insured name", "name of insured", "customer name", "policy holder", "name"},
	"address":          {"address"},
	"policy_number":    {"policy no", "policy number", "policy #", "policy"},
	"claim_type":       {"claim type", "type of claim"},
	"date_of_incident": {"date of incident", "loss date", "date of loss"},
	"claim_amount":     {"claim amount", "amount claimed", "total claim", "amount"},
	"agent":            {"agent", "broker", "branch", "producer"},
	"submission_date":  {"submission date", "date submitted", "issue date", "submission"},
	"form_type":        {"axa xl", "form", "policy", "customer", "claim"},
}

var (
	reSeparator   = regexp.MustCompile(`[:#\-]`)
	reTrailingSep = regexp.MustCompile(`[:#\-]\s*$`)
	reInnerSpaces = regexp.MustCompile(`\s{2,}`)
	kvBonus       = float32(0.1)
)

// kvCandidate is one field value recovered by the key-value scan.
type kvCandidate struct {
	Value      string
	Confidence float32
}

// scanKeyValues runs the label-based scan over the un-normalized line-split
// text. A structural label match is a stronger signal than a bare regex hit,
// so scores carry a flat bonus. Only the highest-confidence candidate per
// field survives; fields with no candidate are absent from the map.
func scanKeyValues(text string) map[string]kvCandidate {
	rawLines := strings.Split(text, "\n")
	lines := make([]string, len(rawLines))
	for i, ln := range rawLines {
		lines[i] = strings.TrimSpace(ln)
	}

	results := make(map[string]kvCandidate)
	for idx, raw := range lines {
		low := strings.ToLower(raw)
		for field, keys := range labelKeywords {
			if !containsAny(low, keys) {
				continue
			}
			value := sameLineValue(raw)
			if value == "" {
				value = nextLineValue(lines, idx, field)
			}
			if value == "" {
				continue
			}
			value = strings.TrimSpace(reInnerSpaces.ReplaceAllString(value, " "))
			conf := fields.Clamp(Score(field, value) + kvBonus)
			if cur, ok := results[field]; !ok || conf > cur.Confidence {
				results[field] = kvCandidate{Value: value, Confidence: conf}
			}
		}
	}
	return results
}

// sameLineValue splits "Label: value" on the first separator and returns the
// remainder, if any.
func sameLineValue(line string) string {
	parts := reSeparator.Split(line, 2)
	if len(parts) > 1 {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// nextLineValue scans forward to the next non-blank line and uses it as the
// value unless it looks like another label. Addresses may span one further
// line.
func nextLineValue(lines []string, idx int, field string) string {
	j := idx + 1
	for j < len(lines) && lines[j] == "" {
		j++
	}
	if j >= len(lines) || isLabelLine(lines[j]) {
		return ""
	}
	value := lines[j]
	if field == "address" && j+1 < len(lines) && lines[j+1] != "" && !isLabelLine(lines[j+1]) {
		value = strings.Trim(value+", "+lines[j+1], ", ")
	}
	return value
}

func isLabelLine(s string) bool {
	if reTrailingSep.MatchString(s) {
		return true
	}
	return len(strings.Fields(s)) <= 6 && strings.HasSuffix(s, ":")
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
