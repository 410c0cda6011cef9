package domain

import (
	"strings"
	"time"
)

// TicketStatus is the free-form status string exported by the help desk.
type TicketStatus string

const (
	TicketStatusOpen              TicketStatus = "open"
	TicketStatusActive            TicketStatus = "active"
	TicketStatusWaitingOnCustomer TicketStatus = "waiting on customer"
	TicketStatusSolved            TicketStatus = "solved"
	TicketStatusResolved          TicketStatus = "resolved"
	TicketStatusClosed            TicketStatus = "closed"
)

// Normalized lowercases the status for comparisons.
func (s TicketStatus) Normalized() TicketStatus {
	return TicketStatus(strings.ToLower(string(s)))
}

// IsResolved reports whether the status is one of the terminal synonyms.
func (s TicketStatus) IsResolved() bool {
	switch s.Normalized() {
	case TicketStatusSolved, TicketStatusResolved, TicketStatusClosed:
		return true
	default:
		return false
	}
}

// InBacklog reports whether the status counts toward the backlog age buckets.
func (s TicketStatus) InBacklog() bool {
	switch s.Normalized() {
	case TicketStatusActive, TicketStatusWaitingOnCustomer:
		return true
	default:
		return false
	}
}

// UnknownValue is the placeholder the export uses for missing people and organizations.
const UnknownValue = "Unknown"

// Ticket is one support-desk record built from a CSV row.
type Ticket struct {
	ID               string
	URL              string
	Subject          string
	Inbox            string
	Status           TicketStatus
	Type             string
	Source           string
	Priority         string
	Tagged           string
	Agent            string
	Company          string
	Client           string
	Email            string
	HappinessComment string
	HappinessRating  string
	TimeTracked      string
	TimeBilled       string
	ResponseTime     string
	ResolutionTime   string
	CreatedAt        *time.Time
	UpdatedAt        *time.Time
}

// PriorityKey returns the bucket used for per-priority averages.
func (t *Ticket) PriorityKey() string {
	return PriorityKey(t.Priority)
}

// HasPriority reports whether a priority was assigned.
func (t *Ticket) HasPriority() bool {
	return strings.TrimSpace(t.Priority) != ""
}

// HasTags reports whether the tagged column marks the ticket as tagged.
func (t *Ticket) HasTags() bool {
	tagged := strings.TrimSpace(t.Tagged)
	return tagged != "" && strings.ToLower(tagged) != "false"
}

// BacklogTicket is the reduced ticket shown in the open backlog list.
type BacklogTicket struct {
	ID        string
	URL       string
	Subject   string
	Inbox     string
	Status    TicketStatus
	Agent     string
	CreatedAt time.Time
	DaysOpen  int
}

// Backlog severities, matching the 8-14d and 15+d age buckets.
const (
	SeverityCritical = "critical"
	SeverityAging    = "aging"
)

// Severity classifies how overdue the ticket is.
func (b BacklogTicket) Severity() string {
	switch {
	case b.DaysOpen > 14:
		return SeverityCritical
	case b.DaysOpen > 7:
		return SeverityAging
	default:
		return ""
	}
}

// DisplayURL returns the URL or "N/A".
func (b BacklogTicket) DisplayURL() string {
	return orNotAvailable(b.URL)
}

// DisplayInbox returns the inbox or "N/A".
func (b BacklogTicket) DisplayInbox() string {
	return orNotAvailable(b.Inbox)
}

func orNotAvailable(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}
