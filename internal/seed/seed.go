package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/osasdev/osas/internal/app/models"
	"github.com/osasdev/osas/internal/app/repositories"
	"github.com/osasdev/osas/internal/pkg/auth"
)

// defaultViolationTypes are the categories the report rollup buckets by.
var defaultViolationTypes = []struct {
	name        string
	description string
}{
	{models.TypeImproperUniform, "Not wearing the prescribed school uniform"},
	{models.TypeImproperFootwear, "Not wearing the prescribed footwear"},
	{models.TypeNoID, "Not wearing or presenting the school ID"},
}

// defaultViolationLevels define the severity ordering used by reports.
var defaultViolationLevels = []struct {
	name string
	rank models.SeverityRank
}{
	{"permitted", models.RankPermitted},
	{"warning", models.RankWarning},
	{"disciplinary", models.RankDisciplinary},
}

var defaultSettings = []models.Setting{
	{Key: "office.name", Value: "Office of Student Affairs and Services", Type: models.SettingString, Category: "general", IsPublic: true},
	{Key: "office.school_year", Value: "2026-2027", Type: models.SettingString, Category: "general", IsPublic: true},
	{Key: "violations.duplicate_window_minutes", Value: "5", Type: models.SettingInteger, Category: "violations", IsPublic: false},
	{Key: "announcements.dashboard_limit", Value: "5", Type: models.SettingInteger, Category: "announcements", IsPublic: false},
}

// CreateDefaultData seeds the lookup tables, default settings and the initial
// admin account. Every step is idempotent; errors are collected so one
// failure does not stop the rest.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	repos := repositories.NewRepositories(dbPool)

	lgr.Info().Msg("Checking/Creating default data...")
	var finalErr error

	// --- Violation types --- //
	for _, t := range defaultViolationTypes {
		_, err := dbPool.Exec(ctx, `
			INSERT INTO violation_types (name, description) VALUES ($1, $2)
			ON CONFLICT (name) DO NOTHING`, t.name, t.description)
		if err != nil {
			lgr.Error().Err(err).Str("type", t.name).Msg("Error seeding violation type")
			finalErr = errors.Join(finalErr, err)
		}
	}

	// --- Violation levels --- //
	for _, l := range defaultViolationLevels {
		_, err := dbPool.Exec(ctx, `
			INSERT INTO violation_levels (name, severity_rank) VALUES ($1, $2)
			ON CONFLICT (name) DO NOTHING`, l.name, int(l.rank))
		if err != nil {
			lgr.Error().Err(err).Str("level", l.name).Msg("Error seeding violation level")
			finalErr = errors.Join(finalErr, err)
		}
	}

	// --- Default settings --- //
	for i := range defaultSettings {
		s := defaultSettings[i]
		existing, err := repos.SettingRepository.GetByKey(ctx, s.Key)
		if err == nil && existing != nil {
			continue
		}
		if err := repos.SettingRepository.Upsert(ctx, &s); err != nil {
			lgr.Error().Err(err).Str("key", s.Key).Msg("Error seeding setting")
			finalErr = errors.Join(finalErr, err)
		}
	}

	// --- Initial admin account --- //
	exists, err := repos.UserRepository.UsernameExists(ctx, "admin")
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking if admin user exists")
		finalErr = errors.Join(finalErr, err)
	} else if !exists {
		lgr.Info().Msg("Creating default admin user...")

		hashed, err := auth.HashPassword("Admin123!")
		if err != nil {
			lgr.Error().Err(err).Msg("Error hashing admin password")
			finalErr = errors.Join(finalErr, err)
		} else {
			admin := &models.User{
				Username: "admin",
				Email:    "admin@osas.local",
				Password: hashed,
				Role:     models.RoleAdmin,
				IsActive: true,
			}
			if err := repos.UserRepository.Create(ctx, admin); err != nil {
				lgr.Error().Err(err).Msg("Error creating admin user")
				finalErr = errors.Join(finalErr, err)
			} else {
				lgr.Info().Int64("adminID", admin.ID).Msg("Default admin user created successfully")
			}
		}
	} else {
		lgr.Info().Msg("Admin user already exists, skipping creation")
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}
