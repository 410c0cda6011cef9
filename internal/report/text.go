package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/spec-kit/ticket-metrics/internal/api/dto"
	"github.com/spec-kit/ticket-metrics/internal/domain"
)

const (
	labelWidth   = 26
	subjectWidth = 48
)

type styles struct {
	title    lipgloss.Style
	section  lipgloss.Style
	label    lipgloss.Style
	value    lipgloss.Style
	faint    lipgloss.Style
	header   lipgloss.Style
	critical lipgloss.Style
	aging    lipgloss.Style
}

func newStyles(color bool) styles {
	s := styles{
		title:    lipgloss.NewStyle().Bold(true),
		section:  lipgloss.NewStyle().Bold(true).MarginTop(1),
		label:    lipgloss.NewStyle().Width(labelWidth).PaddingLeft(2),
		value:    lipgloss.NewStyle(),
		faint:    lipgloss.NewStyle(),
		header:   lipgloss.NewStyle().Bold(true),
		critical: lipgloss.NewStyle(),
		aging:    lipgloss.NewStyle(),
	}
	if !color {
		return s
	}
	s.title = s.title.Foreground(lipgloss.Color("12"))
	s.section = s.section.Foreground(lipgloss.Color("14"))
	s.value = s.value.Bold(true)
	s.faint = s.faint.Foreground(lipgloss.Color("8"))
	s.critical = s.critical.Foreground(lipgloss.Color("9"))
	s.aging = s.aging.Foreground(lipgloss.Color("11"))
	return s
}

func (s styles) row(label, value string) string {
	return s.label.Render(label) + s.value.Render(value)
}

func renderMetricsText(w io.Writer, m dto.MetricsResponse, s styles) error {
	var b strings.Builder
	b.WriteString(s.title.Render("Support Ticket Metrics") + "\n")

	b.WriteString(s.section.Render("Overview") + "\n")
	b.WriteString(s.row("Total tickets", strconv.Itoa(m.TotalTickets)) + "\n")
	b.WriteString(s.row("Resolved tickets", strconv.Itoa(m.ResolvedTickets)) + "\n")
	b.WriteString(s.row("Open tickets", strconv.Itoa(m.OpenTickets)) + "\n")
	b.WriteString(s.row("Resolution rate", formatFloat(m.ResolutionRate)+"%") + "\n")

	b.WriteString(s.section.Render("Backlog by age") + "\n")
	for _, bucket := range []struct {
		label string
		count int
	}{
		{domain.BacklogBucketFresh, m.BacklogByAge.Fresh},
		{domain.BacklogBucketRecent, m.BacklogByAge.Recent},
		{domain.BacklogBucketAging, m.BacklogByAge.Aging},
		{domain.BacklogBucketCritical, m.BacklogByAge.Critical},
	} {
		b.WriteString(s.row(bucket.label, strconv.Itoa(bucket.count)) + "\n")
	}

	writeAverages(&b, s, "Average first response time", m.AvgFirstResponseTime)
	writeAverages(&b, s, "Average time to close", m.AvgTimeToClose)

	b.WriteString(s.section.Render("Tag coverage") + "\n")
	b.WriteString(s.row("Tickets with tags", fmt.Sprintf("%d (%s%%)", m.TagCoverage.TicketsWithTags, formatFloat(m.TagCoverage.PercentWithTags))) + "\n")
	b.WriteString(s.row("Tickets with priority", fmt.Sprintf("%d (%s%%)", m.TagCoverage.TicketsWithPriority, formatFloat(m.TagCoverage.PercentWithPriority))) + "\n")

	writeCounts(&b, s, "Volume by inbox", dto.SortedCounts(m.VolumeByInbox))
	writeCounts(&b, s, "Volume by client", dto.SortedCounts(m.VolumeByClient))
	writeCounts(&b, s, "Volume by week", weekCounts(m.VolumeByWeek))

	_, err := io.WriteString(w, b.String())
	return err
}

func writeAverages(b *strings.Builder, s styles, title string, avg dto.DurationAveragesResponse) {
	b.WriteString(s.section.Render(fmt.Sprintf("%s (%s)", title, avg.Unit)) + "\n")
	if len(avg.ByPriority) == 0 {
		b.WriteString(s.label.Render(s.faint.Render("no data")) + "\n")
		return
	}
	b.WriteString(s.row("Overall", formatFloat(avg.Overall)) + "\n")
	for _, p := range avg.ByPriority {
		b.WriteString(s.row(p.Label, formatFloat(p.Average)) + s.faint.Render(fmt.Sprintf("  n=%d", p.Count)) + "\n")
	}
}

func writeCounts(b *strings.Builder, s styles, title string, entries []dto.CountEntry) {
	b.WriteString(s.section.Render(title) + "\n")
	if len(entries) == 0 {
		b.WriteString(s.label.Render(s.faint.Render("no data")) + "\n")
		return
	}
	for _, e := range entries {
		b.WriteString(s.row(e.Key, strconv.Itoa(e.Count)) + "\n")
	}
}

// weekCounts orders "Week N" keys numerically.
func weekCounts(m map[string]int) []dto.CountEntry {
	entries := make([]dto.CountEntry, 0, len(m))
	for k, v := range m {
		entries = append(entries, dto.CountEntry{Key: k, Count: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		wi, wj := weekIndex(entries[i].Key), weekIndex(entries[j].Key)
		if wi != wj {
			return wi < wj
		}
		return entries[i].Key < entries[j].Key
	})
	return entries
}

func weekIndex(key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(key, "Week")))
	if err != nil {
		return 1 << 30
	}
	return n
}

func renderBacklogText(w io.Writer, resp dto.BacklogResponse, s styles) error {
	var b strings.Builder
	b.WriteString(s.title.Render("Open Ticket Backlog") + "\n\n")

	if resp.Count == 0 {
		b.WriteString(s.faint.Render("No open tickets.") + "\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	columns := []string{"DAYS", "ID", "STATUS", "INBOX", "AGENT", "SUBJECT", "URL"}
	rows := make([][]string, 0, len(resp.Tickets))
	for _, t := range resp.Tickets {
		rows = append(rows, []string{
			strconv.Itoa(t.DaysOpen),
			t.ID,
			t.Status,
			t.Inbox,
			t.Agent,
			truncate(t.Subject, subjectWidth),
			t.URL,
		})
	}

	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = lipgloss.Width(c)
	}
	for _, r := range rows {
		for i, cell := range r {
			if cw := lipgloss.Width(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	b.WriteString(s.header.Render(formatRow(columns, widths)) + "\n")
	for i, r := range rows {
		line := formatRow(r, widths)
		switch resp.Tickets[i].Severity {
		case domain.SeverityCritical:
			line = s.critical.Render(line)
		case domain.SeverityAging:
			line = s.aging.Render(line)
		}
		b.WriteString(line + "\n")
	}

	footer := fmt.Sprintf("\n%d open tickets", resp.Count)
	if len(resp.Tickets) < resp.Count {
		footer += fmt.Sprintf(" (showing %d)", len(resp.Tickets))
	}
	b.WriteString(s.faint.Render(footer) + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		if i == len(cells)-1 {
			parts[i] = cell
			continue
		}
		parts[i] = cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
	}
	return strings.Join(parts, "  ")
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
