package service

import (
	"context"
	"time"

	pktNats "ai-docassist/pkg/nats"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type IHealthService interface {
	Check(ctx context.Context) (status string, components map[string]string)
}

type healthService struct {
	db        *gorm.DB
	rdb       *redis.Client
	publisher *pktNats.Publisher
	llmName   string
}

func NewHealthService(db *gorm.DB, rdb *redis.Client, publisher *pktNats.Publisher, llmName string) IHealthService {
	return &healthService{
		db:        db,
		rdb:       rdb,
		publisher: publisher,
		llmName:   llmName,
	}
}

// Check probes each dependency with a short deadline. Only the database is
// load-bearing for overall health; the rest report as degraded components.
func (s *healthService) Check(ctx context.Context) (string, map[string]string) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	components := map[string]string{}
	status := "healthy"

	if sqlDB, err := s.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		components["database"] = "unavailable"
		status = "unhealthy"
	} else {
		components["database"] = "ok"
	}

	switch {
	case s.rdb == nil:
		components["redis"] = "disabled"
	case s.rdb.Ping(ctx).Err() != nil:
		components["redis"] = "unavailable"
		if status == "healthy" {
			status = "degraded"
		}
	default:
		components["redis"] = "ok"
	}

	switch {
	case s.publisher == nil:
		components["nats"] = "disabled"
	case !s.publisher.Connected():
		components["nats"] = "unavailable"
		if status == "healthy" {
			status = "degraded"
		}
	default:
		components["nats"] = "ok"
	}

	components["llm"] = s.llmName

	return status, components
}
