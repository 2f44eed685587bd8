package services

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	"inventory-system/internal/events"
	"inventory-system/internal/repositories"
	"inventory-system/pkg/config"
	"inventory-system/pkg/constants"
	"inventory-system/pkg/eventbus"
)

type ReportServiceInterface interface {
	InventoryReport(ctx context.Context, actor entities.Actor, filter dto.ReportFilterDTO) (*dto.InventoryReportDTO, error)
	EmployeeOperations(ctx context.Context, actor entities.Actor, filter dto.ReportFilterDTO) ([]dto.EmployeeOperationsRowDTO, error)
	MostUsedDevices(ctx context.Context, actor entities.Actor, limit uint64) ([]dto.MostUsedDeviceRowDTO, error)
	DailyOperations(ctx context.Context, actor entities.Actor, filter dto.ReportFilterDTO) ([]dto.DailyOperationsRowDTO, error)
	GetStats(ctx context.Context) (*dto.InventoryStatsDTO, error)
}

type ReportService struct {
	reportRepo repositories.ReportRepositoryInterface
	cacheRepo  repositories.CacheRepositoryInterface
	bus        *eventbus.Bus
	logger     *zap.Logger
	cacheCfg   config.CacheConfig
}

func NewReportService(
	reportRepo repositories.ReportRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
	cacheCfg config.CacheConfig,
) ReportServiceInterface {
	return &ReportService{
		reportRepo: reportRepo,
		cacheRepo:  cacheRepo,
		bus:        bus,
		logger:     logger,
		cacheCfg:   cacheCfg,
	}
}

func (s *ReportService) InventoryReport(ctx context.Context, actor entities.Actor, filter dto.ReportFilterDTO) (*dto.InventoryReportDTO, error) {
	rows, err := s.reportRepo.InventoryReport(ctx, filter)
	if err != nil {
		return nil, err
	}

	var stats dto.InventoryReportStatsDTO
	stats.TotalDevices = len(rows)
	for _, row := range rows {
		stats.TotalQuantity += row.CalculatedQuantity
		if row.CalculatedQuantity == 0 {
			stats.OutOfStockDevices++
		} else if row.MinimumQuantity > 0 && row.CalculatedQuantity <= row.MinimumQuantity {
			stats.LowStockDevices++
		}
		switch row.Status {
		case string(entities.DeviceAvailable):
			stats.AvailableDevices++
		case string(entities.DeviceAssigned):
			stats.AssignedDevices++
		}
	}

	s.bus.Publish(ctx, events.ReportGeneratedEvent{
		ReportType: "inventory",
		Actor:      actor,
	})

	return &dto.InventoryReportDTO{
		Devices:     rows,
		Statistics:  stats,
		GeneratedAt: time.Now().Format("2006-01-02, 15:04:05"),
		GeneratedBy: actor.FullName,
	}, nil
}

func (s *ReportService) EmployeeOperations(ctx context.Context, actor entities.Actor, filter dto.ReportFilterDTO) ([]dto.EmployeeOperationsRowDTO, error) {
	rows, err := s.reportRepo.EmployeeOperations(ctx, filter)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.ReportGeneratedEvent{
		ReportType: "employee_operations",
		Actor:      actor,
	})

	return rows, nil
}

func (s *ReportService) MostUsedDevices(ctx context.Context, actor entities.Actor, limit uint64) ([]dto.MostUsedDeviceRowDTO, error) {
	if limit == 0 || limit > 100 {
		limit = 10
	}

	rows, err := s.reportRepo.MostUsedDevices(ctx, limit)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.ReportGeneratedEvent{
		ReportType: "most_used_devices",
		Actor:      actor,
	})

	return rows, nil
}

func (s *ReportService) DailyOperations(ctx context.Context, actor entities.Actor, filter dto.ReportFilterDTO) ([]dto.DailyOperationsRowDTO, error) {
	rows, err := s.reportRepo.DailyOperations(ctx, filter)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.ReportGeneratedEvent{
		ReportType: "daily_operations",
		Actor:      actor,
	})

	return rows, nil
}

// GetStats отдаёт сводку для дашборда. Счётчики недолго живут в Redis,
// устаревание на считанные секунды здесь допустимо.
func (s *ReportService) GetStats(ctx context.Context) (*dto.InventoryStatsDTO, error) {
	if cached, err := s.cacheRepo.Get(ctx, constants.CacheKeyInventoryStats); err == nil && cached != "" {
		var stats dto.InventoryStatsDTO
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			return &stats, nil
		}
	}

	stats, err := s.reportRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(stats); err == nil {
		if err := s.cacheRepo.Set(ctx, constants.CacheKeyInventoryStats, string(raw), s.cacheCfg.StatsTTL); err != nil {
			s.logger.Warn("не удалось закешировать сводку", zap.Error(err))
		}
	}

	return stats, nil
}
