package models

// IssueType identifies the detector that produced an issue.
type IssueType string

const (
	IssueDeadNode       IssueType = "dead_node"
	IssueOrphanNode     IssueType = "orphan_node"
	IssueCastAbuse      IssueType = "cast_abuse"
	IssueTickAbuse      IssueType = "tick_abuse"
	IssueUnusedFunction IssueType = "unused_function"
)

// AllIssueTypes lists every detector type, in reporting order.
var AllIssueTypes = []IssueType{
	IssueDeadNode,
	IssueOrphanNode,
	IssueCastAbuse,
	IssueTickAbuse,
	IssueUnusedFunction,
}

// ParseIssueType converts a string to an IssueType, accepting the wire
// names above. Returns false for unknown names.
func ParseIssueType(s string) (IssueType, bool) {
	for _, t := range AllIssueTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Severity ranks how urgent an issue is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank returns an ordinal for sorting, Critical highest.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	default:
		return 0
	}
}

// Issue is one finding. Issues are immutable once created, kept in
// discovery order, and never deduplicated within a scan.
type Issue struct {
	Type        IssueType `json:"type"`
	ProgramPath string    `json:"program_path"`
	NodeName    string    `json:"node_name"`
	Description string    `json:"description"`
	Severity    Severity  `json:"severity"`
	NodeID      string    `json:"node_id,omitempty"`
}
