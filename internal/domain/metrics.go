package domain

// Backlog age bucket labels.
const (
	BacklogBucketFresh    = "0-2d"
	BacklogBucketRecent   = "3-7d"
	BacklogBucketAging    = "8-14d"
	BacklogBucketCritical = "15+d"
)

// BacklogBuckets lists the age buckets from youngest to oldest.
var BacklogBuckets = []string{BacklogBucketFresh, BacklogBucketRecent, BacklogBucketAging, BacklogBucketCritical}

// BacklogAge counts open backlog tickets per age bucket.
type BacklogAge struct {
	Fresh    int
	Recent   int
	Aging    int
	Critical int
}

// Add files a ticket of the given age in days into its bucket.
func (b *BacklogAge) Add(ageDays int) {
	switch {
	case ageDays <= 2:
		b.Fresh++
	case ageDays <= 7:
		b.Recent++
	case ageDays <= 14:
		b.Aging++
	default:
		b.Critical++
	}
}

// Total is the size of the open backlog.
func (b BacklogAge) Total() int {
	return b.Fresh + b.Recent + b.Aging + b.Critical
}

// Bucket returns the count for a bucket label.
func (b BacklogAge) Bucket(label string) int {
	switch label {
	case BacklogBucketFresh:
		return b.Fresh
	case BacklogBucketRecent:
		return b.Recent
	case BacklogBucketAging:
		return b.Aging
	case BacklogBucketCritical:
		return b.Critical
	default:
		return 0
	}
}

// PriorityAverage accumulates one priority's durations.
type PriorityAverage struct {
	Total   float64
	Count   int
	Average float64
}

// DurationAverages holds an overall average and a per-priority breakdown.
// Unit is "hours" for response times and "days" for time to close.
type DurationAverages struct {
	Unit       string
	Overall    float64
	ByPriority map[string]PriorityAverage
}

// TagCoverage reports how many tickets carry tags and priorities.
type TagCoverage struct {
	TicketsWithTags     int
	TicketsWithPriority int
	PercentWithTags     float64
	PercentWithPriority float64
}

// Metrics is the full aggregate computed from one CSV document.
type Metrics struct {
	TotalTickets         int
	ResolvedTickets      int
	ResolutionRate       float64
	VolumeByInbox        map[string]int
	VolumeByClient       map[string]int
	VolumeByWeek         map[string]int
	BacklogByAge         BacklogAge
	AvgFirstResponseTime DurationAverages
	AvgTimeToClose       DurationAverages
	TagCoverage          TagCoverage
}

// NewMetrics returns an empty aggregate with initialized mappings.
func NewMetrics() Metrics {
	return Metrics{
		VolumeByInbox:        map[string]int{},
		VolumeByClient:       map[string]int{},
		VolumeByWeek:         map[string]int{},
		AvgFirstResponseTime: DurationAverages{Unit: "hours", ByPriority: map[string]PriorityAverage{}},
		AvgTimeToClose:       DurationAverages{Unit: "days", ByPriority: map[string]PriorityAverage{}},
	}
}
