package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"linecheck/internal/domain/location"
)

// LocationStoreForWrite defines the store interface needed by the location orchestrators.
type LocationStoreForWrite interface {
	GetByID(ctx context.Context, id string) (location.Location, error)
	Save(ctx context.Context, l location.Location) error
}

// CreateLocationInput carries input for CreateLocation.
type CreateLocationInput struct {
	Name     string
	Address  string
	Timezone string
}

// CreateLocationDeps holds dependencies for CreateLocation.
type CreateLocationDeps struct {
	LocationStore LocationStoreForWrite
}

// ExecuteCreateLocation creates a new location.
// PRE: Name and timezone are non-empty
// POST: Active location persisted; its ID is returned
func ExecuteCreateLocation(ctx context.Context, input CreateLocationInput, deps CreateLocationDeps) (string, error) {
	loc := location.Location{
		ID:        uuid.New().String(),
		Name:      input.Name,
		Address:   input.Address,
		Timezone:  input.Timezone,
		Status:    location.StatusActive,
		CreatedAt: time.Now(),
	}
	if err := loc.Validate(); err != nil {
		return "", err
	}
	if err := deps.LocationStore.Save(ctx, loc); err != nil {
		return "", err
	}

	slog.Info("location_event", "event", "location_created", "location_id", loc.ID, "name", loc.Name)
	return loc.ID, nil
}

// ArchiveLocationDeps holds dependencies for ArchiveLocation.
type ArchiveLocationDeps struct {
	LocationStore LocationStoreForWrite
}

// ExecuteArchiveLocation archives a location. Archived locations stop
// counting toward the multi-location gate.
// PRE: Location exists
// POST: Location status is archived
func ExecuteArchiveLocation(ctx context.Context, locationID string, deps ArchiveLocationDeps) error {
	loc, err := deps.LocationStore.GetByID(ctx, locationID)
	if err != nil {
		return err
	}
	loc.Archive()
	if err := deps.LocationStore.Save(ctx, loc); err != nil {
		return err
	}

	slog.Info("location_event", "event", "location_archived", "location_id", locationID)
	return nil
}
