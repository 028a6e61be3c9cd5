package models

// Outcome - результат решения о слиянии
type Outcome string

const (
	OutcomeMerged  Outcome = "merged"
	OutcomeCreated Outcome = "created"
)

// ReportResult возвращается после обработки сообщения
type ReportResult struct {
	Outcome    Outcome              `json:"outcome"`
	Incident   *Incident            `json:"incident"`
	Duplicates []DuplicateCandidate `json:"duplicates,omitempty"`
}
