package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/itsm-service/internal/domain"
)

// CalendarRepository stores per-organization business-hours configuration.
// Windows and holidays are kept as JSONB documents.
type CalendarRepository interface {
	Upsert(ctx context.Context, hours *domain.BusinessHours) error
	GetByOrganization(ctx context.Context, organizationID string) (*domain.BusinessHours, error)
}

type calendarRepository struct {
	pool *pgxpool.Pool
}

// NewCalendarRepository instantiates repository.
func NewCalendarRepository(pool *pgxpool.Pool) CalendarRepository {
	return &calendarRepository{pool: pool}
}

type storedWindow struct {
	Weekday int    `json:"weekday"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

func (r *calendarRepository) Upsert(ctx context.Context, hours *domain.BusinessHours) error {
	windows := make([]storedWindow, 0, len(hours.Windows))
	for _, dw := range hours.Windows {
		windows = append(windows, storedWindow{
			Weekday: int(dw.Weekday),
			Start:   dw.StartTime,
			End:     dw.EndTime,
		})
	}
	windowsJSON, err := json.Marshal(windows)
	if err != nil {
		return err
	}
	holidaysJSON, err := json.Marshal(hours.Holidays)
	if err != nil {
		return err
	}

	const query = `
        INSERT INTO business_hours (organization_id, name, timezone, windows, holidays)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (organization_id) DO UPDATE
            SET name=EXCLUDED.name, timezone=EXCLUDED.timezone,
                windows=EXCLUDED.windows, holidays=EXCLUDED.holidays, updated_at=NOW()
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		hours.OrganizationID,
		hours.Name,
		hours.Timezone,
		windowsJSON,
		holidaysJSON,
	).Scan(&hours.ID, &hours.CreatedAt, &hours.UpdatedAt)
}

func (r *calendarRepository) GetByOrganization(ctx context.Context, organizationID string) (*domain.BusinessHours, error) {
	const query = `
        SELECT id, organization_id, name, timezone, windows, holidays, created_at, updated_at
        FROM business_hours WHERE organization_id=$1`
	var (
		hours        domain.BusinessHours
		windowsJSON  []byte
		holidaysJSON []byte
	)
	if err := r.pool.QueryRow(ctx, query, organizationID).Scan(
		&hours.ID,
		&hours.OrganizationID,
		&hours.Name,
		&hours.Timezone,
		&windowsJSON,
		&holidaysJSON,
		&hours.CreatedAt,
		&hours.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var windows []storedWindow
	if err := json.Unmarshal(windowsJSON, &windows); err != nil {
		return nil, err
	}
	for _, w := range windows {
		hours.Windows = append(hours.Windows, domain.DayWindow{
			Weekday:   time.Weekday(w.Weekday),
			StartTime: w.Start,
			EndTime:   w.End,
		})
	}
	if err := json.Unmarshal(holidaysJSON, &hours.Holidays); err != nil {
		return nil, err
	}
	return &hours, nil
}
