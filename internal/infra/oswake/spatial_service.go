package oswake

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/KasumiMercury/primind-trigger-engine/internal/trigger"
)

// ManualSpatialService is a SpatialTriggerService without a real geofencing
// backend. It mints handles and records regions; transitions arrive from the
// outside through the HTTP ingest endpoint.
type ManualSpatialService struct {
	mu      sync.Mutex
	regions map[string]trigger.Region
}

func NewManualSpatialService() *ManualSpatialService {
	return &ManualSpatialService{
		regions: make(map[string]trigger.Region),
	}
}

func (s *ManualSpatialService) RegisterRegion(_ context.Context, region trigger.Region) (string, error) {
	handle := uuid.New().String()

	s.mu.Lock()
	s.regions[handle] = region
	s.mu.Unlock()

	slog.Debug("spatial region recorded",
		"handle", handle,
		"key", region.Key,
		"latitude", region.Latitude,
		"longitude", region.Longitude,
		"radius_meters", region.RadiusMeters,
	)

	return handle, nil
}

func (s *ManualSpatialService) UnregisterRegion(_ context.Context, handle string) error {
	s.mu.Lock()
	delete(s.regions, handle)
	s.mu.Unlock()

	return nil
}

// RegionCount returns the number of recorded regions.
func (s *ManualSpatialService) RegionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.regions)
}
