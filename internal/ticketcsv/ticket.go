package ticketcsv

import (
	"strings"
	"time"

	"github.com/spec-kit/ticket-metrics/internal/domain"
)

// Walk applies the export's row filter and calls fn for every row that
// describes a real ticket. The first line is the header and is always skipped,
// as are blank lines, rows with fewer than two fields, rows without an agent
// (or with the "Unknown" placeholder) and rows without an id.
func Walk(lines []string, fn func(Row)) {
	for i := 1; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		row := Row(ParseLine(line))
		if len(row) < 2 {
			continue
		}
		agent := row.Field(ColAgent)
		if agent == "" || agent == domain.UnknownValue {
			continue
		}
		if row.Field(ColID) == "" {
			continue
		}
		fn(row)
	}
}

// BuildTicket maps every column of a row onto a Ticket. Timestamps are read in loc.
func BuildTicket(row Row, loc *time.Location) domain.Ticket {
	return domain.Ticket{
		ID:               row.Field(ColID),
		URL:              row.Field(ColURL),
		Subject:          row.fieldOr(ColSubject, "No Subject"),
		Inbox:            row.Field(ColInbox),
		Status:           domain.TicketStatus(row.fieldOr(ColStatus, string(domain.TicketStatusOpen))),
		Type:             row.fieldOr(ColType, domain.UnknownValue),
		Source:           row.fieldOr(ColSource, domain.UnknownValue),
		Priority:         row.Field(ColPriority),
		Tagged:           row.fieldOr(ColTagged, "false"),
		Agent:            row.Field(ColAgent),
		Company:          row.fieldOr(ColCompany, domain.UnknownValue),
		Client:           row.fieldOr(ColClient, domain.UnknownValue),
		Email:            row.fieldOr(ColEmail, domain.UnknownValue),
		HappinessComment: row.fieldOr(ColHappinessComment, domain.UnknownValue),
		HappinessRating:  row.fieldOr(ColHappinessRating, domain.UnknownValue),
		TimeTracked:      row.fieldOr(ColTimeTracked, domain.UnknownValue),
		TimeBilled:       row.fieldOr(ColTimeBilled, domain.UnknownValue),
		ResponseTime:     row.Field(ColResponseTime),
		ResolutionTime:   row.fieldOr(ColResolutionTime, domain.UnknownValue),
		CreatedAt:        parseDatePtr(row.Field(ColCreatedAt), loc),
		UpdatedAt:        parseDatePtr(row.Field(ColUpdatedAt), loc),
	}
}

// BuildBacklogTicket maps only the columns the backlog list shows.
func BuildBacklogTicket(row Row, loc *time.Location) domain.Ticket {
	return domain.Ticket{
		ID:        row.Field(ColID),
		URL:       row.Field(ColURL),
		Subject:   row.fieldOr(ColSubject, "No Subject"),
		Inbox:     row.Field(ColInbox),
		Status:    domain.TicketStatus(row.fieldOr(ColStatus, string(domain.TicketStatusOpen))),
		Agent:     row.Field(ColAgent),
		CreatedAt: parseDatePtr(row.Field(ColCreatedAt), loc),
	}
}
