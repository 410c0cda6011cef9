package ticketcsv

// Column positions in the export. The header row is never inspected.
const (
	ColID = iota
	ColURL
	ColSubject
	ColInbox
	ColStatus
	ColType
	ColSource
	ColPriority
	ColTagged
	ColAgent
	ColCompany
	ColClient
	ColEmail
	ColHappinessComment
	ColHappinessRating
	ColTimeTracked
	ColTimeBilled
	ColResponseTime
	ColResolutionTime
	ColCreatedAt
	ColUpdatedAt

	ColumnCount
)

// Row is one parsed line.
type Row []string

// Field returns the trimmed value at idx, or "" when the row is too short.
func (r Row) Field(idx int) string {
	if idx < 0 || idx >= len(r) {
		return ""
	}
	return r[idx]
}

func (r Row) fieldOr(idx int, fallback string) string {
	if v := r.Field(idx); v != "" {
		return v
	}
	return fallback
}
