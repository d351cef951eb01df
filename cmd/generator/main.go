package main

import (
	"context"
	"crypto/sha256"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"tiketin/internal/config"
	"tiketin/internal/database"
	"tiketin/internal/models"
	"tiketin/internal/repository"
	"tiketin/internal/search"

	"github.com/joho/godotenv"
)

var (
	eventCount    = flag.Int("events", 5, "Number of demo events to generate")
	schedulesPer  = flag.Int("schedules", 4, "Schedules per event")
	usersCount    = flag.Int("users", 10, "Number of demo users to generate")
	skipIndex     = flag.Bool("skip-index", false, "Skip indexing events into Elasticsearch")
	earlyBirdDays = flag.Int("early-days", 7, "Days from now until the early-bird cutoff")
)

type Seeder struct {
	repos *repository.Repositories
}

func main() {
	flag.Parse()
	_ = godotenv.Load()

	slog.Info("Starting demo data seeder...")

	cfg := config.Load()
	db, err := database.Connect(cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	var repos *repository.Repositories
	if *skipIndex {
		repos = repository.NewRepositories(db)
	} else {
		esClient, err := search.NewElasticsearchClient(config.LoadElasticsearchConfig())
		if err != nil {
			slog.Warn("Elasticsearch unavailable, seeding without search index", "error", err)
			repos = repository.NewRepositories(db)
		} else {
			repos = repository.NewRepositoriesWithElasticsearch(db, esClient)
		}
	}

	seeder := &Seeder{repos: repos}
	ctx := context.Background()

	if err := seeder.SeedUsers(ctx); err != nil {
		slog.Error("Failed to seed users", "error", err)
		os.Exit(1)
	}

	if err := seeder.SeedEvents(ctx); err != nil {
		slog.Error("Failed to seed events", "error", err)
		os.Exit(1)
	}

	slog.Info("Demo data seeding completed successfully!")
}

func (s *Seeder) SeedUsers(ctx context.Context) error {
	for i := 1; i <= *usersCount; i++ {
		email := fmt.Sprintf("demo%d@tiketin.local", i)

		existing, err := s.repos.Users.GetByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("failed to check user: %w", err)
		}
		if existing != nil {
			continue
		}

		hash := sha256.Sum256([]byte(fmt.Sprintf("password%d", i)))
		user := &models.User{
			Email:        email,
			PasswordHash: fmt.Sprintf("%x", hash),
			FirstName:    fmt.Sprintf("Demo%d", i),
			Surname:      "User",
			IsActive:     true,
		}

		if err := s.repos.Users.Create(ctx, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
	}

	slog.Info("Seeded users", "count", *usersCount)
	return nil
}

var eventTemplates = []struct {
	title string
	kind  string
	venue string
}{
	{"Jazz Nights", "concert", "Balai Sarbini"},
	{"Gamelan Workshop Series", "workshop", "Taman Ismail Marzuki"},
	{"Stand-up Comedy Festival", "comedy", "Ciputra Artpreneur"},
	{"Indie Film Retrospective", "screening", "Kineforum"},
	{"Photography Masterclass", "workshop", "Museum MACAN"},
}

func (s *Seeder) SeedEvents(ctx context.Context) error {
	earlyDay := time.Now().AddDate(0, 0, *earlyBirdDays)

	for i := 0; i < *eventCount; i++ {
		tpl := eventTemplates[i%len(eventTemplates)]
		description := fmt.Sprintf("%s at %s", tpl.title, tpl.venue)

		event := &models.Event{
			Title:       fmt.Sprintf("%s #%d", tpl.title, i+1),
			Description: &description,
			Type:        tpl.kind,
			Venue:       tpl.venue,
			Currency:    "IDR",
		}

		if err := s.repos.EventsDB.Create(ctx, event); err != nil {
			return fmt.Errorf("failed to create event: %w", err)
		}

		var firstStart *time.Time
		for w := 0; w < *schedulesPer; w++ {
			start := time.Now().AddDate(0, 0, 14+7*w).Truncate(time.Hour)
			end := start.Add(2 * time.Hour)
			if firstStart == nil {
				firstStart = &start
			}

			schedule := &models.Schedule{
				EventID:   event.ID,
				StartTime: start,
				EndTime:   end,
			}
			if err := s.repos.Schedules.Create(ctx, schedule); err != nil {
				return fmt.Errorf("failed to create schedule: %w", err)
			}

			if err := s.seedTicketTypes(ctx, schedule.ID, earlyDay); err != nil {
				return err
			}
		}

		addOn := &models.AddOn{
			EventID:   event.ID,
			Name:      "Merchandise pack",
			UnitPrice: 150_000,
		}
		if err := s.repos.AddOns.Create(ctx, addOn); err != nil {
			return fmt.Errorf("failed to create add-on: %w", err)
		}

		if s.repos.Events != nil {
			if err := s.repos.Events.Index(ctx, event, firstStart); err != nil {
				slog.Warn("Failed to index event", "event_id", event.ID, "error", err)
			}
		}

		slog.Info("Seeded event", "event_id", event.ID, "title", event.Title)
	}

	return nil
}

func (s *Seeder) seedTicketTypes(ctx context.Context, scheduleID int64, earlyDay time.Time) error {
	tiers := []struct {
		name      string
		price     int64
		earlyRate float64
		comboRate float64
		quantity  int
	}{
		{"Regular", 500_000, 0.10, 0.05, 150},
		{"VIP", 1_000_000, 0.10, 0.05, 40},
	}

	for _, tier := range tiers {
		tt := &models.TicketType{
			ScheduleID:    scheduleID,
			Name:          tier.name,
			BasePrice:     tier.price,
			EarlyBirdRate: tier.earlyRate,
			ComboRate:     tier.comboRate,
			TotalQuantity: tier.quantity,
			MaxPerUser:    4,
			EarlyDay:      &earlyDay,
		}
		if err := s.repos.Tickets.Create(ctx, tt); err != nil {
			return fmt.Errorf("failed to create ticket type: %w", err)
		}
	}

	return nil
}
