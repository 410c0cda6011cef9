package analytics

import (
	"sort"
	"time"

	"github.com/spec-kit/ticket-metrics/internal/domain"
	"github.com/spec-kit/ticket-metrics/internal/ticketcsv"
)

// ComputeBacklog lists unresolved tickets with a known creation date, oldest
// first. Tickets open for the same number of days keep their document order.
func ComputeBacklog(lines []string, now time.Time) []domain.BacklogTicket {
	backlog := make([]domain.BacklogTicket, 0)
	ticketcsv.Walk(lines, func(row ticketcsv.Row) {
		ticket := ticketcsv.BuildBacklogTicket(row, now.Location())
		if ticket.Status.IsResolved() || ticket.CreatedAt == nil {
			return
		}
		backlog = append(backlog, domain.BacklogTicket{
			ID:        ticket.ID,
			URL:       ticket.URL,
			Subject:   ticket.Subject,
			Inbox:     ticket.Inbox,
			Status:    ticket.Status,
			Agent:     ticket.Agent,
			CreatedAt: *ticket.CreatedAt,
			DaysOpen:  DaysBetween(*ticket.CreatedAt, now),
		})
	})

	sort.SliceStable(backlog, func(i, j int) bool {
		return backlog[i].DaysOpen > backlog[j].DaysOpen
	})
	return backlog
}
