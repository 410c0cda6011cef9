package dto

import (
	"sort"
	"time"

	"github.com/spec-kit/ticket-metrics/internal/domain"
)

// MetricsResponse is the aggregate report of one document.
type MetricsResponse struct {
	TotalTickets         int                      `json:"total_tickets" yaml:"total_tickets"`
	ResolvedTickets      int                      `json:"resolved_tickets" yaml:"resolved_tickets"`
	OpenTickets          int                      `json:"open_tickets" yaml:"open_tickets"`
	ResolutionRate       float64                  `json:"resolution_rate" yaml:"resolution_rate"`
	VolumeByInbox        map[string]int           `json:"volume_by_inbox" yaml:"volume_by_inbox"`
	VolumeByClient       map[string]int           `json:"volume_by_client" yaml:"volume_by_client"`
	VolumeByWeek         map[string]int           `json:"volume_by_week" yaml:"volume_by_week"`
	BacklogByAge         BacklogAgeResponse       `json:"backlog_by_age" yaml:"backlog_by_age"`
	AvgFirstResponseTime DurationAveragesResponse `json:"avg_first_response_time" yaml:"avg_first_response_time"`
	AvgTimeToClose       DurationAveragesResponse `json:"avg_time_to_close" yaml:"avg_time_to_close"`
	TagCoverage          TagCoverageResponse      `json:"tag_coverage" yaml:"tag_coverage"`
}

// BacklogAgeResponse keeps the buckets in age order.
type BacklogAgeResponse struct {
	Fresh    int `json:"0-2d" yaml:"0-2d"`
	Recent   int `json:"3-7d" yaml:"3-7d"`
	Aging    int `json:"8-14d" yaml:"8-14d"`
	Critical int `json:"15+d" yaml:"15+d"`
	Total    int `json:"total" yaml:"total"`
}

// DurationAveragesResponse lists per-priority averages in display order.
type DurationAveragesResponse struct {
	Unit       string                    `json:"unit" yaml:"unit"`
	Overall    float64                   `json:"overall" yaml:"overall"`
	ByPriority []PriorityAverageResponse `json:"by_priority" yaml:"by_priority"`
}

// PriorityAverageResponse is one priority's average.
type PriorityAverageResponse struct {
	Priority string  `json:"priority" yaml:"priority"`
	Label    string  `json:"label" yaml:"label"`
	Average  float64 `json:"average" yaml:"average"`
	Count    int     `json:"count" yaml:"count"`
}

// TagCoverageResponse payload.
type TagCoverageResponse struct {
	TicketsWithTags     int     `json:"tickets_with_tags" yaml:"tickets_with_tags"`
	TicketsWithPriority int     `json:"tickets_with_priority" yaml:"tickets_with_priority"`
	PercentWithTags     float64 `json:"percent_with_tags" yaml:"percent_with_tags"`
	PercentWithPriority float64 `json:"percent_with_priority" yaml:"percent_with_priority"`
}

// NewMetricsResponse maps the domain aggregate.
func NewMetricsResponse(m domain.Metrics) MetricsResponse {
	return MetricsResponse{
		TotalTickets:    m.TotalTickets,
		ResolvedTickets: m.ResolvedTickets,
		OpenTickets:     m.TotalTickets - m.ResolvedTickets,
		ResolutionRate:  m.ResolutionRate,
		VolumeByInbox:   nonNil(m.VolumeByInbox),
		VolumeByClient:  nonNil(m.VolumeByClient),
		VolumeByWeek:    nonNil(m.VolumeByWeek),
		BacklogByAge: BacklogAgeResponse{
			Fresh:    m.BacklogByAge.Fresh,
			Recent:   m.BacklogByAge.Recent,
			Aging:    m.BacklogByAge.Aging,
			Critical: m.BacklogByAge.Critical,
			Total:    m.BacklogByAge.Total(),
		},
		AvgFirstResponseTime: newDurationAverages(m.AvgFirstResponseTime),
		AvgTimeToClose:       newDurationAverages(m.AvgTimeToClose),
		TagCoverage: TagCoverageResponse{
			TicketsWithTags:     m.TagCoverage.TicketsWithTags,
			TicketsWithPriority: m.TagCoverage.TicketsWithPriority,
			PercentWithTags:     m.TagCoverage.PercentWithTags,
			PercentWithPriority: m.TagCoverage.PercentWithPriority,
		},
	}
}

func newDurationAverages(avg domain.DurationAverages) DurationAveragesResponse {
	resp := DurationAveragesResponse{
		Unit:       avg.Unit,
		Overall:    avg.Overall,
		ByPriority: make([]PriorityAverageResponse, 0, len(avg.ByPriority)),
	}
	for _, key := range domain.OrderedPriorityKeys(avg.ByPriority) {
		entry := avg.ByPriority[key]
		resp.ByPriority = append(resp.ByPriority, PriorityAverageResponse{
			Priority: key,
			Label:    domain.PriorityLabel(key),
			Average:  entry.Average,
			Count:    entry.Count,
		})
	}
	return resp
}

func nonNil(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}

// CountEntry is one row of a volume breakdown.
type CountEntry struct {
	Key   string
	Count int
}

// SortedCounts orders a volume breakdown by count descending, then key.
func SortedCounts(m map[string]int) []CountEntry {
	entries := make([]CountEntry, 0, len(m))
	for k, v := range m {
		entries = append(entries, CountEntry{Key: k, Count: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Key < entries[j].Key
	})
	return entries
}

// BacklogResponse lists unresolved tickets, oldest first.
type BacklogResponse struct {
	Count   int                     `json:"count" yaml:"count"`
	Tickets []BacklogTicketResponse `json:"tickets" yaml:"tickets"`
}

// BacklogTicketResponse is one open ticket.
type BacklogTicketResponse struct {
	ID        string    `json:"id" yaml:"id"`
	URL       string    `json:"url" yaml:"url"`
	Subject   string    `json:"subject" yaml:"subject"`
	Inbox     string    `json:"inbox" yaml:"inbox"`
	Status    string    `json:"status" yaml:"status"`
	Agent     string    `json:"agent" yaml:"agent"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	DaysOpen  int       `json:"days_open" yaml:"days_open"`
	Severity  string    `json:"severity,omitempty" yaml:"severity,omitempty"`
}

// NewBacklogResponse maps the backlog. Count is always the full backlog size;
// a positive limit truncates the ticket list.
func NewBacklogResponse(backlog []domain.BacklogTicket, limit int) BacklogResponse {
	resp := BacklogResponse{Count: len(backlog), Tickets: make([]BacklogTicketResponse, 0, len(backlog))}
	for i, t := range backlog {
		if limit > 0 && i >= limit {
			break
		}
		resp.Tickets = append(resp.Tickets, BacklogTicketResponse{
			ID:        t.ID,
			URL:       t.DisplayURL(),
			Subject:   t.Subject,
			Inbox:     t.DisplayInbox(),
			Status:    string(t.Status),
			Agent:     t.Agent,
			CreatedAt: t.CreatedAt,
			DaysOpen:  t.DaysOpen,
			Severity:  t.Severity(),
		})
	}
	return resp
}
