package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"decisions-api/internal/config"
	"decisions-api/internal/domain"
	"decisions-api/internal/repository"
	"decisions-api/pkg/database"
	"decisions-api/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

const usage = "Usage: go run ./cmd/migrate [up|drop|seed|audit]"

// errDrift makes audit exit non-zero when counters disagree with vote records
var errDrift = errors.New("counter drift detected")

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}
	command := os.Args[1]

	dbType := strings.ToLower(os.Getenv("DATABASE_TYPE"))
	if dbType == "" {
		dbType = config.DatabasePostgres
	}

	ctx := context.Background()

	var err error
	switch dbType {
	case config.DatabasePostgres:
		err = runPostgres(ctx, command)
	case config.DatabaseSQLite:
		err = runSQLite(ctx, command)
	default:
		log.Fatalf("Unsupported DATABASE_TYPE %q", dbType)
	}
	if errors.Is(err, errDrift) {
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s failed: %v", command, err)
	}
}

func runPostgres(ctx context.Context, command string) error {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	switch command {
	case "up", "drop":
		conn, err := pgx.Connect(ctx, dbURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer conn.Close(ctx)

		if command == "up" {
			if err := database.Migrate(ctx, conn); err != nil {
				return err
			}
			fmt.Println("✅ Migrations applied successfully")
			return nil
		}
		for _, query := range database.DropStatements {
			if _, err := conn.Exec(ctx, query); err != nil {
				return fmt.Errorf("failed to execute query: %w", err)
			}
			fmt.Printf("  Dropped: %s\n", query)
		}
		fmt.Println("✅ All tables dropped successfully")
		return nil

	case "seed", "audit":
		db, err := database.NewPostgresDB(ctx, dbURL)
		if err != nil {
			return err
		}
		defer db.Close()
		return runRepository(ctx, command, repository.NewPostgresDecisionRepository(db))

	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
}

func runSQLite(ctx context.Context, command string) error {
	path := os.Getenv("SQLITE_PATH")
	if path == "" {
		path = "data/decisions.db"
	}

	db, err := database.NewSQLiteDB(ctx, path)
	if err != nil {
		return err
	}
	defer db.Close()

	switch command {
	case "up":
		fmt.Printf("✅ Schema ready at %s\n", path)
		return nil
	case "drop":
		for _, query := range database.SQLiteDropStatements {
			if _, err := db.DB.ExecContext(ctx, query); err != nil {
				return fmt.Errorf("failed to execute query: %w", err)
			}
			fmt.Printf("  Dropped: %s\n", query)
		}
		fmt.Println("✅ All tables dropped successfully")
		return nil
	case "seed", "audit":
		return runRepository(ctx, command, repository.NewSQLiteDecisionRepository(db))
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
}

func runRepository(ctx context.Context, command string, repo repository.DecisionRepository) error {
	if command == "seed" {
		n, err := seedData(ctx, repo, time.Now().UTC().Truncate(time.Microsecond))
		if err != nil {
			return err
		}
		fmt.Printf("✅ Seeded %d decisions\n", n)
		return nil
	}

	drift, err := audit(ctx, repo)
	if err != nil {
		return err
	}
	if drift > 0 {
		fmt.Printf("❌ %d decisions have counters that disagree with their vote records\n", drift)
		return errDrift
	}
	fmt.Println("✅ All counters match their vote records")
	return nil
}

type seedDecision struct {
	draft domain.DecisionDraft
	age   time.Duration
	votes string
}

var seedDecisions = []seedDecision{
	{
		draft: domain.DecisionDraft{Title: "Should I switch teams at work?", Details: "Same pay, more interesting product, new manager I have not met.", OptionA: "Switch", OptionB: "Stay", Category: domain.CategoryCareer, DurationHours: 24},
		age:   2 * time.Hour,
		votes: "AABAB",
	},
	{
		draft: domain.DecisionDraft{Title: "Tell my friend I can't make the wedding?", Details: "It is abroad and flights are expensive this month.", OptionA: "Tell now", OptionB: "Wait a week", Category: domain.CategoryRelationships, DurationHours: 48},
		age:   6 * time.Hour,
		votes: "AAA",
	},
	{
		draft: domain.DecisionDraft{Title: "Morning or evening workouts?", Details: "I keep skipping the gym. Which slot is easier to stick to?", OptionA: "Morning", OptionB: "Evening", Category: domain.CategoryLifestyle, DurationHours: 72},
		age:   time.Hour,
		votes: "",
	},
	{
		draft: domain.DecisionDraft{Title: "Pay off the card or build savings first?", Details: "Small balance on the card, almost no emergency fund.", OptionA: "Card", OptionB: "Savings", Category: domain.CategoryMoney, DurationHours: 24},
		age:   30 * time.Hour,
		votes: "BBA",
	},
	{
		draft: domain.DecisionDraft{Title: "Paint the hallway green?", Details: "Currently beige. The landlord said any colour is fine.", OptionA: "Green", OptionB: "Keep beige", Category: domain.CategoryOther, DurationHours: 24},
		age:   50 * time.Hour,
		votes: "AB",
	},
}

// seedData inserts sample decisions, some already ended, and casts their
// votes through the registrar while each decision was still open
func seedData(ctx context.Context, repo repository.DecisionRepository, now time.Time) (int, error) {
	for i, s := range seedDecisions {
		draft := s.draft
		decision := draft.Accept(uuid.NewString(), now.Add(-s.age))
		if err := repo.Create(ctx, decision); err != nil {
			return i, fmt.Errorf("failed to insert %q: %w", decision.Title, err)
		}

		for j, c := range s.votes {
			result, err := repo.CastVote(ctx, domain.CastVoteParams{
				DecisionID: decision.ID,
				Choice:     domain.Choice(string(c)),
				VoterHash:  utils.Fingerprint(decision.ID, fmt.Sprintf("seed-%d", j), "seed", "seed"),
				UserAgent:  "seed",
				Now:        decision.CreatedAt.Add(time.Duration(j+1) * time.Minute),
			})
			if err != nil {
				return i, fmt.Errorf("failed to vote on %q: %w", decision.Title, err)
			}
			if !result.Success {
				return i, fmt.Errorf("vote on %q rejected: %s", decision.Title, result.Message)
			}
		}
		fmt.Printf("  Seeded: %s (%d votes)\n", decision.Title, len(s.votes))
	}
	return len(seedDecisions), nil
}

// audit prints every decision whose counters disagree with its vote records
// and returns how many there were
func audit(ctx context.Context, repo repository.DecisionRepository) (int, error) {
	tallies, err := repo.Audit(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to audit: %w", err)
	}

	drift := 0
	for _, t := range tallies {
		if t.Consistent() {
			continue
		}
		drift++
		fmt.Printf("  %s: counters A=%d B=%d, records A=%d B=%d\n",
			t.DecisionID, t.CounterA, t.CounterB, t.RecordsA, t.RecordsB)
	}
	fmt.Printf("  Audited %d decisions\n", len(tallies))
	return drift, nil
}
