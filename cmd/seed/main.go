package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"ai-home-decorator/internal/config"
	"ai-home-decorator/internal/domain/model"
	"ai-home-decorator/internal/domain/ports/repository"
	pg "ai-home-decorator/internal/infra/db/postgres"
)

// Creates the schema and a demo profile, and prints a ready-to-use
// webhook curl so a fresh environment can be smoke-tested end to end.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	if err := pg.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("schema: %v", err)
	}
	fmt.Println("schema ensured")

	profiles := pg.NewPostgresProfileRepo(pool)
	const demoID = "demo-user"

	if existing, err := profiles.FindByID(ctx, repository.NoTX, demoID); err == nil {
		fmt.Printf("demo profile already present (credits=%d). No changes.\n", existing.Credits)
		return
	}

	p, err := model.NewUserProfile(demoID, "demo@example.com", cfg.Credits.Welcome)
	if err != nil {
		log.Fatalf("new profile: %v", err)
	}
	if err := profiles.Save(ctx, repository.NoTX, p); err != nil {
		log.Fatalf("save profile: %v", err)
	}
	fmt.Printf("seeded: %s (credits=%d)\n", p.ID, p.Credits)

	fmt.Println("\nsmoke-test the webhook with:")
	fmt.Printf(`  curl -X POST localhost:%d/webhook/revenuecat \
    -H "Authorization: Bearer %s" \
    -H "Content-Type: application/json" \
    -d '{"event":{"id":"evt_seed_1","type":"INITIAL_PURCHASE","app_user_id":"%s","product_id":"credits_15","transaction_id":"txn_seed_1"}}'
`, cfg.Server.WebhookPort, cfg.RevenueCat.WebhookSecret, demoID)
}
