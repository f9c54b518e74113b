package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tahmid-dev/clinic-records/internal/model"
	"github.com/tahmid-dev/clinic-records/internal/repository"
)

// StatsService serves the clinic's aggregate statistics. The heavy lifting
// happens in SQL (GROUP BY and COUNT queries in the repository); this layer
// exists so the handler stays storage-agnostic like everywhere else.
type StatsService struct {
	stats  repository.StatsRepository
	logger *slog.Logger
}

// NewStatsService creates a StatsService.
func NewStatsService(stats repository.StatsRepository, logger *slog.Logger) *StatsService {
	return &StatsService{stats: stats, logger: logger}
}

// Collect gathers the aggregate view behind GET /api/stats.
func (s *StatsService) Collect(ctx context.Context) (*model.Stats, error) {
	stats, err := s.stats.CollectStats(ctx)
	if err != nil {
		s.logger.Error("failed to collect stats", slog.String("error", err.Error()))
		return nil, fmt.Errorf("collecting stats: %w", err)
	}
	return stats, nil
}
