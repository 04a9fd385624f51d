package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/contactdock/contactdock-server/internal/dto"
)

func (s *Server) registerStatsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getContactStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/contacts/stats",
		Summary:     "Dashboard statistics",
		Description: "Returns contact totals, tag distribution, company grouping, and the 30-day creation timeline",
		Tags:        []string{"Stats"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetContactStats)
}

// GetContactStatsInput contains parameters for the stats endpoint.
type GetContactStatsInput struct {
	Authorization string `header:"Authorization"`
}

// StatsOutput wraps the dashboard stats response for Huma.
type StatsOutput struct {
	Body dto.DashboardStats
}

func (s *Server) handleGetContactStats(ctx context.Context, input *GetContactStatsInput) (*StatsOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	stats, err := s.services.Stats.Dashboard(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &StatsOutput{Body: dto.FromDashboardStats(stats)}, nil
}
