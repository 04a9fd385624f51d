package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/contactdock/contactdock-server/internal/domain"
	"github.com/contactdock/contactdock-server/internal/store"
)

// TimelineDays is the trailing window covered by the dashboard timeline.
const TimelineDays = 30

// topCompanies caps the per-company grouping.
const topCompanies = 10

// StatsService computes owner-scoped dashboard aggregates.
type StatsService struct {
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewStatsService creates a new stats service.
func NewStatsService(store *store.Store, logger *slog.Logger) *StatsService {
	return &StatsService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Dashboard computes the full dashboard payload for an owner.
// The three aggregations are independent and run concurrently.
func (s *StatsService) Dashboard(ctx context.Context, ownerID string) (*domain.DashboardStats, error) {
	contacts, err := s.store.ListContacts(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	tags, err := s.store.ListTags(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	stats := &domain.DashboardStats{}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats.Stats = summarize(contacts, tags, now)
		return nil
	})
	g.Go(func() error {
		stats.ByCompany = groupByCompany(contacts)
		return nil
	})
	g.Go(func() error {
		stats.Timeline = buildTimeline(contacts, now)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return stats, nil
}

// summarize computes the headline numbers and per-tag distribution.
func summarize(contacts []*domain.Contact, tags []*domain.Tag, now time.Time) domain.DashboardSummary {
	weekAgo := now.Add(-7 * 24 * time.Hour)

	newThisWeek := 0
	tagCounts := make(map[string]int)
	for _, c := range contacts {
		if !c.CreatedAt.Before(weekAgo) {
			newThisWeek++
		}
		for _, tagID := range c.TagIDs {
			tagCounts[tagID]++
		}
	}

	tagStats := make([]domain.TagStat, 0, len(tags))
	for _, t := range tags {
		tagStats = append(tagStats, domain.TagStat{
			Tag:   t.Ref(),
			Count: tagCounts[t.ID],
		})
	}
	sort.SliceStable(tagStats, func(i, j int) bool {
		return tagStats[i].Count > tagStats[j].Count
	})

	return domain.DashboardSummary{
		TotalContacts: len(contacts),
		NewThisWeek:   newThisWeek,
		TagStats:      tagStats,
	}
}

// groupByCompany returns the top companies by contact count, descending.
// Contacts without a company land in the Unspecified bucket.
func groupByCompany(contacts []*domain.Contact) []domain.CompanyStat {
	counts := make(map[string]int)
	for _, c := range contacts {
		company := c.Company
		if company == "" {
			company = domain.UnspecifiedCompany
		}
		counts[company]++
	}

	stats := make([]domain.CompanyStat, 0, len(counts))
	for company, count := range counts {
		stats = append(stats, domain.CompanyStat{Company: company, Count: count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Company < stats[j].Company
	})

	if len(stats) > topCompanies {
		stats = stats[:topCompanies]
	}
	return stats
}

// buildTimeline buckets contact creations per calendar day over the trailing
// window, ascending by date. Days with no creations are omitted.
func buildTimeline(contacts []*domain.Contact, now time.Time) []domain.TimelinePoint {
	cutoff := now.AddDate(0, 0, -TimelineDays)

	counts := make(map[string]int)
	for _, c := range contacts {
		if c.CreatedAt.Before(cutoff) {
			continue
		}
		counts[c.CreatedAt.Format("2006-01-02")]++
	}

	points := make([]domain.TimelinePoint, 0, len(counts))
	for date, count := range counts {
		points = append(points, domain.TimelinePoint{Date: date, Count: count})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})
	return points
}
