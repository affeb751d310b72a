package main

import (
	"context"
	"os"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/mokarr/appointpro/internal/adapters/database"
	"github.com/mokarr/appointpro/internal/application/services"
	"github.com/mokarr/appointpro/internal/domain/entities"
	"github.com/mokarr/appointpro/internal/infrastructure/clients/postgres"
	"github.com/mokarr/appointpro/internal/infrastructure/observability"
	"github.com/mokarr/appointpro/pkg/config"
	"github.com/rs/zerolog/log"
)

var dialect = goqu.Dialect("postgres")

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	observability.InitLogger("appointpro-seed", cfg.Log.Env, cfg.Log.Level)

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to DB")
	}
	defer pgClient.Close()

	ctx := context.Background()
	if err := pgClient.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate")
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				bookings,
				class_session_settings,
				class_sessions,
				classes,
				location_operating_hours,
				organization_operating_hours,
				facilities,
				locations,
				organizations
			CASCADE
		`)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to reset tables")
		}
	}

	now := time.Now().UTC()
	orgID := uuid.NewString()
	locationID := uuid.NewString()
	courtIDs := []string{uuid.NewString(), uuid.NewString()}

	// 1. Tenant, location and facilities
	insert(ctx, pgClient, "organizations", goqu.Record{"id": orgID, "name": "Sportcentrum De Meer", "created_at": now, "updated_at": now})
	insert(ctx, pgClient, "locations", goqu.Record{
		"id": locationID, "organization_id": orgID, "name": "De Meer Amsterdam",
		"timezone": "Europe/Amsterdam", "created_at": now, "updated_at": now,
	})
	for i, id := range courtIDs {
		insert(ctx, pgClient, "facilities", goqu.Record{
			"id": id, "name": []string{"Padel Court 1", "Padel Court 2"}[i], "price": 3200,
			"location_id": locationID, "created_at": now, "updated_at": now,
		})
	}

	// 2. Organization default hours, with location overrides for the weekend
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		insert(ctx, pgClient, "organization_operating_hours", goqu.Record{
			"organization_id": orgID, "weekday": int(wd), "open_time": "07:00", "close_time": "23:00", "is_closed": false,
		})
	}
	insert(ctx, pgClient, "location_operating_hours", goqu.Record{
		"location_id": locationID, "weekday": int(time.Saturday), "open_time": "09:00", "close_time": "18:00", "is_closed": false,
	})
	insert(ctx, pgClient, "location_operating_hours", goqu.Record{
		"location_id": locationID, "weekday": int(time.Sunday), "open_time": "00:00", "close_time": "00:00", "is_closed": true,
	})

	// 3. A weekly class on court 1 and a few bookings, through the services
	facilityRepo := database.NewFacilityAdapter(pgClient)
	bookingRepo := database.NewBookingAdapter(pgClient)
	classRepo := database.NewClassAdapter(pgClient)
	classService := services.NewClassService(classRepo, bookingRepo, facilityRepo, nil, cfg.Availability)
	bookingService := services.NewBookingService(facilityRepo, bookingRepo, nil)

	ams, err := time.LoadLocation("Europe/Amsterdam")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load timezone")
	}
	y, m, d := now.In(ams).AddDate(0, 0, 1).Date()
	tomorrow := time.Date(y, m, d, 0, 0, 0, 0, ams)

	var sessions []entities.Interval
	for week := 0; week < 4; week++ {
		start := tomorrow.AddDate(0, 0, 7*week).Add(19 * time.Hour)
		sessions = append(sessions, entities.Interval{Start: start, End: start.Add(time.Hour)})
	}
	maxParticipants := 8
	created, err := classService.CreateClassWithSessions(ctx, entities.ClassDraft{
		Name:                   "Padel Clinic",
		Instructor:             "Sanne de Vries",
		LocationID:             locationID,
		FacilityID:             &courtIDs[0],
		MaxParticipants:        &maxParticipants,
		CreateFacilityBookings: true,
		Sessions:               sessions,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create class")
	}
	log.Info().Str("class_id", created.Class.ID).Int("sessions", len(created.Sessions)).Msg("Class seeded")

	for _, name := range []string{"Lotte", "Daan"} {
		if _, err := classService.EnrollParticipant(ctx, created.Sessions[0].ID, entities.Customer{Name: name}); err != nil {
			log.Error().Err(err).Str("customer", name).Msg("Failed to enroll participant")
		}
	}

	for i, hour := range []int{10, 14, 20} {
		start := tomorrow.Add(time.Duration(hour) * time.Hour)
		_, err := bookingService.CreateBooking(ctx, entities.NewBooking{
			FacilityID: courtIDs[i%len(courtIDs)],
			StartTime:  start,
			EndTime:    start.Add(90 * time.Minute),
			Customer:   entities.Customer{Name: "Demo Customer", Email: "demo@example.com"},
		})
		if err != nil {
			log.Error().Err(err).Time("start", start).Msg("Failed to create booking")
		}
	}

	log.Info().Str("organization_id", orgID).Strs("facility_ids", courtIDs).Msg("Seeding completed")
}

func insert(ctx context.Context, client *postgres.Client, table string, record goqu.Record) {
	query, _, err := dialect.Insert(table).Rows(record).ToSQL()
	if err != nil {
		log.Fatal().Err(err).Str("table", table).Msg("Failed to build insert")
	}
	if _, err := client.DB().ExecContext(ctx, query); err != nil {
		log.Fatal().Err(err).Str("table", table).Msg("Failed to insert")
	}
}
