package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bazaar/internal/config"
	"bazaar/internal/events"
	"bazaar/internal/http/handlers"
	applog "bazaar/internal/log"
	"bazaar/internal/repos"
	"bazaar/internal/services"
	"bazaar/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// Optional file logging
	logFile := applog.Tee(cfg.LogFile)
	err = run(cfg)
	logFile.Close()
	if err != nil {
		log.Fatal(err)
	}
}

// run owns every resource it opens, so deferred closes (DB, Kafka flush)
// also happen when startup fails.
func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()
	if err := repos.SeedAdmin(ctx, db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	var backends handlers.Backends

	if cfg.AWSS3Bucket != "" {
		store, err := services.NewS3ImageStore(ctx, services.S3Config{
			Region:          cfg.AWSRegion,
			Bucket:          cfg.AWSS3Bucket,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			return fmt.Errorf("s3 image store: %w", err)
		}
		backends.Images = store
		log.Printf("[images] s3 bucket %s (%s)", cfg.AWSS3Bucket, cfg.AWSRegion)
	} else {
		log.Printf("[images] local dir %s", cfg.MediaDir)
	}

	if len(cfg.KafkaBrokers) > 0 {
		pub, err := events.NewKafkaPublisher(events.KafkaConfig{
			Brokers:  cfg.KafkaBrokers,
			Topic:    cfg.KafkaTopic,
			Username: cfg.KafkaUsername,
			Password: cfg.KafkaPassword,
		})
		if err != nil {
			return fmt.Errorf("kafka publisher: %w", err)
		}
		defer pub.Close()
		backends.Events = pub
		log.Printf("[events] kafka %s topic %s", strings.Join(cfg.KafkaBrokers, ","), cfg.KafkaTopic)
	}

	if cfg.GeminiAPIKey != "" {
		gen, err := services.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			// descriptions degrade to the "unavailable" message
			applog.Error(nil, "describe.init", err, nil)
		} else {
			backends.Generator = gen
		}
	}

	deps, err := handlers.NewDeps(ctx, db, cfg, backends)
	if err != nil {
		return fmt.Errorf("wire services: %w", err)
	}

	mediaDir := cfg.MediaDir
	if backends.Images != nil {
		mediaDir = ""
	}
	app := handlers.NewApp(deps, handlers.Options{
		Views:          web.Engine(),
		MediaDir:       mediaDir,
		AllowedOrigins: cfg.AllowedOrigins,
		CookieSecure:   cfg.CookieSecure,
		AccessLog:      true,
	})

	go func() {
		<-ctx.Done()
		log.Printf("[server] shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			applog.Error(nil, "server.shutdown", err, nil)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		applog.Error(nil, "server.listen", err, nil)
		return err
	}
	return nil
}
