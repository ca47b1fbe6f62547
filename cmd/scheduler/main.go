package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/edufin/financing-engine/internal/config"
	"github.com/edufin/financing-engine/internal/repository"
)

func main() {
	log.Println("Starting payment reminder scheduler...")

	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	planRepo := repository.NewPlanRepository(db)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Invalid scheduler timezone %q: %v", cfg.Scheduler.Timezone, err)
	}

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	_, err = c.AddFunc(cfg.Scheduler.ReminderSpec, func() {
		if err := flagPastDuePlans(context.Background(), planRepo, redisClient); err != nil {
			log.Printf("Past-due scan failed: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to schedule past-due scan: %v", err)
	}

	// Start the scheduler
	c.Start()
	log.Println("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	c.Stop()
	log.Println("Scheduler stopped")
}

// flagPastDuePlans scans active plans whose next due date has passed and
// leaves a reminder marker per plan in redis for the notification pipeline
// to pick up. The marker expires after a day so the next scan refreshes it.
func flagPastDuePlans(ctx context.Context, plans repository.PlanRepository, redisClient *redis.Client) error {
	log.Println("Scanning for past-due installment plans...")

	overdue, err := plans.ListDueBefore(ctx, time.Now().UTC())
	if err != nil {
		return err
	}

	for _, plan := range overdue {
		key := fmt.Sprintf("reminder:plan:%s", plan.ID)
		if err := redisClient.Set(ctx, key, plan.NextDueDate.Format(time.RFC3339), 24*time.Hour).Err(); err != nil {
			log.Printf("Failed to record reminder for plan %s: %v", plan.ID, err)
			continue
		}
		log.Printf("Plan %s is past due (installment %d of %d, due %s)",
			plan.ID, plan.PaidInstallments+1, plan.NumberOfInstallments, plan.NextDueDate.Format(time.RFC3339))
	}

	log.Printf("Past-due scan complete: %d plan(s) flagged", len(overdue))
	return nil
}
