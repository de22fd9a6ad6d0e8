package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"solar-strategy-service/internal/adapters/repositories"
	"solar-strategy-service/internal/config"
	"solar-strategy-service/internal/platform/db"
)

// dbtool prepares route storage outside the server process: schema init,
// legacy column migration, seeding survey data, and clearing simulation
// outputs for a fresh run.
func main() {
	seedFlag := flag.Bool("seed", true, "seed survey waypoints from SEED_PATH")
	resetRoute := flag.String("reset", "", "clear simulation outputs for the given route id")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	ctx := context.Background()

	if databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL")); databaseURL != "" {
		pool, err := db.OpenPostgres(ctx, databaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer pool.Close()

		log.Println("Initializing postgres schema...")
		if err := repositories.NewPostgresStore(pool).InitSchema(ctx); err != nil {
			log.Fatalf("schema initialization failed: %v", err)
		}
		log.Println("Schema ready.")
		return
	}

	dbPath := config.Get("DB_PATH", "data/routes.db")
	sdb, err := db.OpenSqlite(ctx, dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer sdb.Close()

	if *resetRoute != "" {
		resetOutputs(ctx, sdb, *resetRoute)
		return
	}

	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(sdb); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	if err := repositories.MigrateLegacy(sdb); err != nil {
		log.Fatalf("legacy migration failed: %v", err)
	}
	log.Println("Schema ready.")

	if *seedFlag {
		seedPath := config.Get("SEED_PATH", "data/seeds/routes.json")
		log.Println("Seeding database...")
		if err := repositories.SeedFromJSON(sdb, seedPath); err != nil {
			log.Fatalf("seeding failed: %v", err)
		}
		log.Println("Seeding complete.")
	}
}

func resetOutputs(ctx context.Context, sdb *sql.DB, routeID string) {
	store := repositories.NewSqliteTelemetryStore(sdb)
	if err := store.Reset(ctx, routeID); err != nil {
		log.Fatalf("reset outputs failed: %v", err)
	}
	log.Printf("Cleared simulation outputs for route %q.", routeID)
}
