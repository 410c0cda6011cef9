// Package analytics turns parsed ticket rows into the operational report: the
// aggregate metrics and the open backlog list. Both pipelines are pure
// functions of the document lines and an explicit "now".
package analytics

import (
	"strings"
	"time"

	"github.com/spec-kit/ticket-metrics/internal/domain"
	"github.com/spec-kit/ticket-metrics/internal/ticketcsv"
)

// ComputeMetrics aggregates the document in one pass. Line 0 is the header.
// Timestamps without an offset are read in now's location, and backlog ages
// are measured against now.
func ComputeMetrics(lines []string, now time.Time) domain.Metrics {
	acc := newAccumulator(now)
	ticketcsv.Walk(lines, func(row ticketcsv.Row) {
		ticket := ticketcsv.BuildTicket(row, now.Location())
		acc.add(&ticket)
	})
	return acc.finish()
}

type accumulator struct {
	now     time.Time
	metrics domain.Metrics
}

func newAccumulator(now time.Time) *accumulator {
	return &accumulator{now: now, metrics: domain.NewMetrics()}
}

func (a *accumulator) add(ticket *domain.Ticket) {
	m := &a.metrics
	m.TotalTickets++

	if ticket.Status.IsResolved() {
		m.ResolvedTickets++
	}
	if ticket.HasTags() {
		m.TagCoverage.TicketsWithTags++
	}
	if ticket.HasPriority() {
		m.TagCoverage.TicketsWithPriority++
	}

	if inbox := strings.TrimSpace(ticket.Inbox); inbox != "" {
		m.VolumeByInbox[inbox]++
	}
	m.VolumeByClient[ticket.Client]++

	if ticket.CreatedAt != nil {
		m.VolumeByWeek[WeekKey(*ticket.CreatedAt)]++
		if ticket.Status.InBacklog() {
			m.BacklogByAge.Add(DaysBetween(*ticket.CreatedAt, a.now))
		}
	}

	if minutes, ok := ticketcsv.ParseNumber(ticket.ResponseTime); ok && minutes > 0 {
		addSample(m.AvgFirstResponseTime.ByPriority, ticket.PriorityKey(), minutes/minutesPerHour)
	}

	if days := timeToCloseDays(ticket); days > 0 {
		addSample(m.AvgTimeToClose.ByPriority, ticket.PriorityKey(), days)
	}
}

// timeToCloseDays prefers the exported resolution time. Only when that column
// is empty or "Unknown" does a resolved ticket fall back to its created and
// updated timestamps.
func timeToCloseDays(ticket *domain.Ticket) float64 {
	resolution := ticket.ResolutionTime
	if resolution != "" && resolution != domain.UnknownValue {
		minutes, ok := ticketcsv.ParseNumber(resolution)
		if !ok {
			return 0
		}
		return minutes / minutesPerDay
	}
	if ticket.Status.IsResolved() && ticket.CreatedAt != nil && ticket.UpdatedAt != nil {
		return float64(DaysBetween(*ticket.CreatedAt, *ticket.UpdatedAt))
	}
	return 0
}

func addSample(byPriority map[string]domain.PriorityAverage, key string, value float64) {
	entry := byPriority[key]
	entry.Total += value
	entry.Count++
	byPriority[key] = entry
}

func (a *accumulator) finish() domain.Metrics {
	m := a.metrics
	m.ResolutionRate = percent(m.ResolvedTickets, m.TotalTickets, 2)
	finishAverages(&m.AvgFirstResponseTime)
	finishAverages(&m.AvgTimeToClose)
	m.TagCoverage.PercentWithTags = percent(m.TagCoverage.TicketsWithTags, m.TotalTickets, 1)
	m.TagCoverage.PercentWithPriority = percent(m.TagCoverage.TicketsWithPriority, m.TotalTickets, 1)
	return m
}

func finishAverages(avg *domain.DurationAverages) {
	var total float64
	var count int
	for _, key := range domain.OrderedPriorityKeys(avg.ByPriority) {
		entry := avg.ByPriority[key]
		total += entry.Total
		count += entry.Count
		entry.Average = round(entry.Total/float64(entry.Count), 1)
		avg.ByPriority[key] = entry
	}
	if count > 0 {
		avg.Overall = round(total/float64(count), 1)
	}
}
