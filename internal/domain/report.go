package domain

// ReportType classifies a player report. "positive" is praise, not a complaint.
type ReportType string

const (
	ReportCheating ReportType = "cheating"
	ReportToxicity ReportType = "toxicity"
	ReportTeaming  ReportType = "teaming"
	ReportSpam     ReportType = "spam"
	ReportOther    ReportType = "other"
	ReportPositive ReportType = "positive"
)

// ReportTypes lists every accepted report type.
var ReportTypes = []ReportType{
	ReportCheating, ReportToxicity, ReportTeaming, ReportSpam, ReportOther, ReportPositive,
}

// ReportRecord is a persisted report as listed back to its author.
type ReportRecord struct {
	ID             int64      `json:"id"`
	ReportedPlayer string     `json:"reported_player"`
	Type           ReportType `json:"type"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	CreatedAt      Timestamp  `json:"created_at"`
}
