package extract

import (
	"github.com/joseph-ayodele/claims-extractor/internal/formconfig"
)

// DefaultPatterns maps each default field to an ordered list of extraction
// patterns. Patterns are compiled case-insensitive and multiline with `.`
// matching newlines, and the first capture group is the extracted value.
var DefaultPatterns = map[string][]string{
	"customer_name": {
		`(?:Insured|Insured\s+Name|Name\s+of\s+Insured|Customer\s+Name|Policy\s+Holder)\s*[:#\-]?\s*([A-Z][A-Za-z ,.'\-]{2,}(?:\s+[A-Z][A-Za-z ,.'\-]{1,})?)`,
		`(?:Name)\s*[:#\-]?\s*([A-Z][A-Za-z ,.'\-]{2,}(?:\s+[A-Z][A-Za-z ,.'\-]{1,})?)`,
	},
	"address": {
		// Capture up to 2 lines for addresses; stop before the next label-like
		// token. RE2 has no lookahead, so the stopping label is consumed
		// rather than asserted; only the capture group is used either way.
		`Address\s*[:#\-]?\s*([\s\S]{5,160}?)\n\S+\s*[:#\-]`,
		`Address\s*[:#\-]?\s*([\s\S]{5,120})`,
	},
	"policy_number": {
		`Policy\s*(?:No\.?|Number|#)?\s*[:#\-]?\s*([A-Z0-9][A-Z0-9\-/]{4,})`,
	},
	"claim_type": {
		`Claim\s*Type\s*[:#\-]?\s*([A-Za-z /]{3,80})`,
		`Type\s*of\s*Claim\s*[:#\-]?\s*([A-Za-z /]{3,80})`,
	},
	"date_of_incident": {
		`(?:Date\s*of\s*Incident|Loss\s*Date|Date\s*of\s*Loss)\s*[:#\-]?\s*(\d{2,4}[-/.]\d{1,2}[-/.]\d{1,2})`,
	},
	"claim_amount": {
		`(?:Claim\s*Amount|Amount\s*Claimed|Total\s*Claim(?:ed)?|Amount)\s*[:#\-]?\s*([$€£]?\s?[\d,.]+(?:\.\d{2})?)`,
	},
	"agent": {
		`(?:Agent|Broker|Branch|Producer)\s*[:#\-]?\s*([A-Za-z0-9 .,'&\-]{3,120})`,
	},
	"form_type": {
		`(AXA\s*XL[\s\S]{0,40}?(?:Claim|Form|Policy|Customer|Schedule|Certificate))`,
	},
	"submission_date": {
		`(?:Submission\s*Date|Date\s*Submitted|Issue\s*Date|Submission)\s*[:#\-]?\s*(\d{2,4}[-/.]\d{1,2}[-/.]\d{1,2})`,
	},
}

// MergePatterns unions the default pattern set with config-provided overrides
// per field, defaults first, dropping duplicate pattern strings while
// preserving first-seen order. Config-only field names broaden the search.
func MergePatterns(cfg *formconfig.FormConfig) map[string][]string {
	var overrides map[string][]string
	if cfg != nil {
		overrides = cfg.Patterns
	}
	merged := make(map[string][]string, len(DefaultPatterns)+len(overrides))
	for name, pats := range DefaultPatterns {
		merged[name] = appendUnique(nil, pats)
	}
	for name, pats := range overrides {
		merged[name] = appendUnique(merged[name], pats)
	}
	return merged
}

func appendUnique(dst []string, pats []string) []string {
	seen := make(map[string]struct{}, len(dst)+len(pats))
	for _, p := range dst {
		seen[p] = struct{}{}
	}
	for _, p := range pats {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		dst = append(dst, p)
	}
	return dst
}
