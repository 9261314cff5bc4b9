package constants

// DefaultFieldNames holds the nine fields every extraction attempts by default.
// Form configs may add to or omit any of these.
var DefaultFieldNames = []string{
	"customer_name",
	"address",
	"policy_number",
	"claim_type",
	"date_of_incident",
	"claim_amount",
	"agent",
	"form_type",
	"submission_date",
}

// MarkerPhrase is the brand/program marker looked for in raw document text.
// Its presence is recorded in document metadata as ContainsMarkerKey.
const MarkerPhrase = "AXA XL"

// ContainsMarkerKey is the doc-meta key carrying the marker-phrase flag.
const ContainsMarkerKey = "contains_axa_xl"
