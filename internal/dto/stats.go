package dto

import "github.com/contactdock/contactdock-server/internal/domain"

// TagStat is a per-tag contact count with the tag resolved for display.
type TagStat struct {
	Tag   TagRef `json:"tag"`
	Count int    `json:"count"`
}

// CompanyStat is a per-company contact count.
type CompanyStat struct {
	Company string `json:"company"`
	Count   int    `json:"count"`
}

// TimelinePoint is a daily contact-creation count, date as YYYY-MM-DD.
type TimelinePoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// StatsSummary holds the headline dashboard numbers.
type StatsSummary struct {
	TotalContacts int       `json:"totalContacts"`
	NewThisWeek   int       `json:"newThisWeek"`
	TagStats      []TagStat `json:"tagStats"`
}

// DashboardStats is the full dashboard payload.
type DashboardStats struct {
	Stats     StatsSummary    `json:"stats"`
	ByCompany []CompanyStat   `json:"byCompany"`
	Timeline  []TimelinePoint `json:"timeline"`
}

// FromDashboardStats converts the domain aggregate.
func FromDashboardStats(s *domain.DashboardStats) DashboardStats {
	tagStats := make([]TagStat, 0, len(s.Stats.TagStats))
	for _, ts := range s.Stats.TagStats {
		tagStats = append(tagStats, TagStat{Tag: FromTagRef(ts.Tag), Count: ts.Count})
	}

	byCompany := make([]CompanyStat, 0, len(s.ByCompany))
	for _, cs := range s.ByCompany {
		byCompany = append(byCompany, CompanyStat{Company: cs.Company, Count: cs.Count})
	}

	timeline := make([]TimelinePoint, 0, len(s.Timeline))
	for _, tp := range s.Timeline {
		timeline = append(timeline, TimelinePoint{Date: tp.Date, Count: tp.Count})
	}

	return DashboardStats{
		Stats: StatsSummary{
			TotalContacts: s.Stats.TotalContacts,
			NewThisWeek:   s.Stats.NewThisWeek,
			TagStats:      tagStats,
		},
		ByCompany: byCompany,
		Timeline:  timeline,
	}
}
