package domain

// UnspecifiedCompany is the bucket for contacts with no company set.
const UnspecifiedCompany = "Unspecified"

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

// TimelinePoint is a daily contact-creation count.
// Date is formatted as YYYY-MM-DD.
type TimelinePoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DashboardSummary holds the headline dashboard numbers.
type DashboardSummary struct {
	TotalContacts int       `json:"total_contacts"`
	NewThisWeek   int       `json:"new_this_week"`
	TagStats      []TagStat `json:"tag_stats"`
}

// DashboardStats is the full dashboard payload.
type DashboardStats struct {
	Stats     DashboardSummary `json:"stats"`
	ByCompany []CompanyStat    `json:"by_company"`
	Timeline  []TimelinePoint  `json:"timeline"`
}
