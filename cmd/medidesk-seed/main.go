package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"medidesk/internal/config"
	"medidesk/internal/domain"
	"medidesk/internal/remote/postgres"
	"medidesk/internal/store"
)

// Seeds demo reference data and availability windows straight through the
// remote gateway. The server hydrates its mirror from the same tables on
// startup.
func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", "medidesk-seed"),
	)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	db, err := postgres.Open(cfg.DatabaseURL, postgres.PoolConfig{})
	if err != nil {
		log.Error("remote store connection failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		_ = postgres.Close(db)
	}()

	gateway := postgres.NewGateway(db)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	gofakeit.Seed(time.Now().UnixNano())

	departmentNames := []string{
		"General Medicine",
		"Cardiology",
		"Pediatrics",
		"Orthopedics",
		"Dermatology",
	}
	specialties := map[string]string{
		"General Medicine": "General Practice",
		"Cardiology":       "Cardiology",
		"Pediatrics":       "Pediatrics",
		"Orthopedics":      "Orthopedic Surgery",
		"Dermatology":      "Dermatology",
	}

	var providers []domain.Provider
	for _, name := range departmentNames {
		dept := domain.Department{ID: uuid.New(), Name: name}
		if err := gateway.Create(ctx, store.KindDepartments, dept); err != nil {
			log.Error("seed department failed", slog.Any("err", err), slog.String("name", name))
			os.Exit(1)
		}

		for i := 0; i < 3; i++ {
			p := domain.Provider{
				ID:           uuid.New(),
				DepartmentID: dept.ID,
				Name:         "Dr. " + gofakeit.Name(),
				Specialty:    specialties[name],
			}
			if err := gateway.Create(ctx, store.KindProviders, p); err != nil {
				log.Error("seed provider failed", slog.Any("err", err))
				os.Exit(1)
			}
			providers = append(providers, p)
		}
	}
	log.Info("departments and providers seeded", slog.Int("departments", len(departmentNames)), slog.Int("providers", len(providers)))

	const patientCount = 200
	for i := 0; i < patientCount; i++ {
		p := domain.Patient{
			ID:    uuid.New(),
			Name:  gofakeit.Name(),
			Email: gofakeit.Email(),
			Phone: gofakeit.Phone(),
		}
		if err := gateway.Create(ctx, store.KindPatients, p); err != nil {
			log.Error("seed patient failed", slog.Any("err", err))
			os.Exit(1)
		}
	}
	log.Info("patients seeded", slog.Int("count", patientCount))

	// Weekday morning and afternoon windows for every provider.
	windows := 0
	for _, p := range providers {
		for weekday := 1; weekday <= 5; weekday++ {
			for _, span := range [][2]domain.TimeOfDay{
				{domain.NewTimeOfDay(9, 0), domain.NewTimeOfDay(12, 0)},
				{domain.NewTimeOfDay(13, 0), domain.NewTimeOfDay(17, 0)},
			} {
				w := domain.AvailabilityWindow{
					ID:          uuid.New(),
					ProviderID:  p.ID,
					Weekday:     weekday,
					Start:       span[0],
					End:         span[1],
					SlotMinutes: 30,
				}
				if err := gateway.Create(ctx, store.KindAvailability, w); err != nil {
					log.Error("seed availability failed", slog.Any("err", err))
					os.Exit(1)
				}
				windows++
			}
		}
	}
	log.Info("availability seeded", slog.Int("windows", windows))

	log.Info("seed complete")
}
