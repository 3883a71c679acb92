// cmd/tools/catalog-loader/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"lender-match-engine/internal/catalog"
	"lender-match-engine/internal/common/aws"
	"lender-match-engine/internal/common/config"
	"lender-match-engine/internal/common/database"
	"lender-match-engine/internal/common/logger"
	"lender-match-engine/internal/match"
	"lender-match-engine/internal/notify"
	"lender-match-engine/pkg/catalogfile"
)

func main() {
	loadCmd := flag.NewFlagSet("load", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	// Load command flags
	loadPath := loadCmd.String("path", "configs/lender-catalog.json", "Path to catalog file")
	staleDays := loadCmd.Int("staleDays", 90, "Age in days beyond which a broker confirmation is reported stale")
	sendAlerts := loadCmd.Bool("alert", false, "Publish an SNS alert for each stale confirmation")
	awsRegion := loadCmd.String("region", "us-east-1", "AWS region for SNS alerts")
	topicARN := loadCmd.String("topic", "", "SNS topic ARN for stale-catalog alerts")

	// Validate command flags
	validatePath := validateCmd.String("path", "configs/lender-catalog.json", "Path to catalog file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "load":
		loadCmd.Parse(os.Args[2:])
		if err := loadCatalog(*loadPath, *staleDays, *sendAlerts, *awsRegion, *topicARN); err != nil {
			fmt.Printf("Error loading catalog: %v\n", err)
			os.Exit(1)
		}

	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validateCatalog(*validatePath); err != nil {
			fmt.Printf("Catalog validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Catalog validation passed.")

	case "help":
		fallthrough
	default:
		help()
	}
}

func validateCatalog(path string) error {
	file, err := catalogfile.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load catalog file: %w", err)
	}

	if len(file.Profiles) == 0 {
		return fmt.Errorf("catalog file contains no profiles")
	}

	ids := make(map[string]bool)
	invalid := 0
	for i, doc := range file.Profiles {
		id, err := catalogfile.ProfileID(doc)
		if err != nil {
			fmt.Printf("profile %d: %v\n", i, err)
			invalid++
			continue
		}
		if ids[id] {
			return fmt.Errorf("duplicate profile id: %s", id)
		}
		ids[id] = true

		violations, err := catalog.ValidateProfile(doc)
		if err != nil {
			return fmt.Errorf("profile %s: %w", id, err)
		}
		for _, v := range violations {
			fmt.Printf("profile %s: %s\n", id, v)
		}
		if len(violations) > 0 {
			invalid++
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d profiles failed validation", invalid, len(file.Profiles))
	}
	fmt.Printf("Catalog validation passed. Found %d profiles.\n", len(file.Profiles))
	return nil
}

func loadCatalog(path string, staleDays int, sendAlerts bool, region, topicARN string) error {
	if err := validateCatalog(path); err != nil {
		return err
	}

	file, err := catalogfile.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load catalog file: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	ctx := context.Background()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return fmt.Errorf("postgres connection failed: %w", err)
	}
	defer pg.Close()

	upsert := `
		INSERT INTO lender_profiles (id, document, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document, updated_at = NOW()`

	now := time.Now()
	var stale []match.LenderProfile
	for _, doc := range file.Profiles {
		id, err := catalogfile.ProfileID(doc)
		if err != nil {
			return err
		}
		if _, err := pg.DB.ExecContext(ctx, upsert, id, []byte(doc)); err != nil {
			return fmt.Errorf("upsert failed for %s: %w", id, err)
		}

		var profile match.LenderProfile
		if err := json.Unmarshal(doc, &profile); err != nil {
			continue
		}
		if age := profile.ConfirmationAgeDays(now); age < 0 || age > staleDays {
			stale = append(stale, profile)
		}
	}
	fmt.Printf("Loaded %d profiles into lender_profiles.\n", len(file.Profiles))

	// Drop the cached snapshot so the workers pick up the new catalog.
	redis, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		fmt.Printf("Warning: redis connection failed, snapshot cache not invalidated: %v\n", err)
	} else {
		defer redis.Close()
		log := logger.NewZapAdapter(logger.New("info", "console"))
		repo := catalog.NewRepository(pg.DB, redis.Client, catalog.DefaultRepositoryConfig(), log)
		if err := repo.Invalidate(ctx); err != nil {
			fmt.Printf("Warning: snapshot cache invalidation failed: %v\n", err)
		} else {
			fmt.Println("Snapshot cache invalidated.")
		}
	}

	for _, profile := range stale {
		age := profile.ConfirmationAgeDays(now)
		if age < 0 {
			fmt.Printf("Stale: %s has no recorded broker confirmation\n", profile.Name)
		} else {
			fmt.Printf("Stale: %s broker confirmation is %d days old\n", profile.Name, age)
		}
	}

	if sendAlerts && len(stale) > 0 {
		if topicARN == "" {
			return fmt.Errorf("-topic is required with -alert")
		}
		snsClient, err := aws.NewSNSClient(ctx, region)
		if err != nil {
			return fmt.Errorf("sns client init failed: %w", err)
		}
		log := logger.NewZapAdapter(logger.New("info", "console"))
		alerts := notify.NewService(nil, snsClient, &notify.Config{
			Enabled:     true,
			SMSTopicARN: topicARN,
		}, log)
		for _, profile := range stale {
			age := profile.ConfirmationAgeDays(now)
			if err := alerts.SendStaleCatalogAlert(ctx, profile.Name, age); err != nil {
				fmt.Printf("Warning: stale alert for %s failed: %v\n", profile.Name, err)
			}
		}
		fmt.Printf("Published %d stale-catalog alerts.\n", len(stale))
	}

	return nil
}

func help() {
	fmt.Print(`
Usage: catalog-loader <command> [flags]

Commands:
  load     Validate and load a catalog file into Postgres, then invalidate the snapshot cache
  validate Validate a catalog file without touching the database
  help     Show this help message

Examples:
  catalog-loader validate -path configs/lender-catalog.json
  catalog-loader load -path configs/lender-catalog.json -staleDays 90
  catalog-loader load -path configs/lender-catalog.json -alert -region us-east-1 -topic arn:aws:sns:us-east-1:123456789012:catalog-alerts

Use 'catalog-loader <command> -h' for more information about a command.
`)
}
