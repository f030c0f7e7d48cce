package models

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

type Recommendation struct {
	Type        string   `json:"type"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Impact      string   `json:"impact"`
	HowToFix    string   `json:"howToFix"`
}

type Summary struct {
	Score           int              `json:"score"`
	CriticalIssues  int              `json:"criticalIssues"`
	Warnings        int              `json:"warnings"`
	Passed          int              `json:"passed"`
	Recommendations []Recommendation `json:"recommendations"`
}
