package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/zatekoja/erhospitalmatch/internal/domain/entities"
	"github.com/zatekoja/erhospitalmatch/internal/domain/repositories"
	"github.com/zatekoja/erhospitalmatch/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/erhospitalmatch/pkg/errors"
)

const staticProfileTable = "hospital_static"

// StaticProfileAdapter implements StaticProfileRepository on the append-only hospital_static table
type StaticProfileAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewStaticProfileAdapter creates a new static profile adapter
func NewStaticProfileAdapter(client *postgres.Client) repositories.StaticProfileRepository {
	return &StaticProfileAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByHPID returns the earliest stored row for the hospital
func (a *StaticProfileAdapter) GetByHPID(ctx context.Context, hpid string) (*entities.StaticHospitalProfile, error) {
	query, args, err := a.db.From(staticProfileTable).
		Prepared(true).
		Select("hpid", "name", "address", "phone", "total_er_beds", "total_icu_beds", "total_beds").
		Where(goqu.Ex{"hpid": hpid}).
		Order(goqu.I("id").Asc()).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	profile := &entities.StaticHospitalProfile{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&profile.HPID,
		&profile.Name,
		&profile.Address,
		&profile.Phone,
		&profile.TotalERBeds,
		&profile.TotalICUBeds,
		&profile.TotalBeds,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("static profile for %s not found", hpid))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get static profile", err)
	}

	return profile, nil
}

// Append inserts a new row. Existing rows for the same hpid are left alone.
func (a *StaticProfileAdapter) Append(ctx context.Context, profile *entities.StaticHospitalProfile) error {
	if profile == nil || profile.HPID == "" {
		return apperrors.NewValidationError("static profile requires an hpid")
	}

	record := goqu.Record{
		"hpid":           profile.HPID,
		"name":           profile.Name,
		"address":        profile.Address,
		"phone":          profile.Phone,
		"total_er_beds":  profile.TotalERBeds,
		"total_icu_beds": profile.TotalICUBeds,
		"total_beds":     profile.TotalBeds,
	}

	query, args, err := a.db.Insert(staticProfileTable).Prepared(true).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to append static profile", err)
	}

	return nil
}
