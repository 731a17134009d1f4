package main

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"time"

	"langingo/internal/config"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostic checks on your Langingo installation",
		Long: `Verifies that Langingo's configuration, API credentials, database, and
temp directory are correctly set up. Reports pass/fail for each check.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			fmt.Printf("Langingo Doctor v%s\n", version)
			fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

			passed := 0
			failed := 0
			warned := 0

			// 1. Config file exists
			if _, err := os.Stat(cfgPath); err != nil {
				printFail("Config file", fmt.Sprintf("not found at %s", cfgPath))
				failed++
				fmt.Printf("\nRun 'langingo init' to create a default configuration.\n")
				return nil
			}
			printPass("Config file", cfgPath)
			passed++

			// 2. Config loads and validates
			cfg, err := config.Load(cfgPath)
			if err != nil {
				printFail("Config validation", err.Error())
				failed++
			} else {
				printPass("Config validation", "valid")
				passed++
			}

			if cfg == nil {
				fmt.Printf("\n%d passed, %d failed\n", passed, failed)
				return nil
			}

			// 3. OpenAI credentials
			if cfg.OpenAI.APIKey == "" {
				printFail("OpenAI", "no API key configured (set openai.apiKey or OPENAI_API_KEY)")
				failed++
			} else {
				printPass("OpenAI", fmt.Sprintf("model %s", cfg.OpenAI.Model))
				passed++
			}

			// 4. Enrichment credentials
			if cfg.News.APIKey == "" {
				printWarn("News", "no API key; news questions will answer without headlines")
				warned++
			} else {
				printPass("News", fmt.Sprintf("country %s", cfg.News.Country))
				passed++
			}
			if cfg.Weather.APIKey == "" {
				printWarn("Weather", "no API key; weather questions will answer without conditions")
				warned++
			} else {
				printPass("Weather", fmt.Sprintf("units %s", cfg.Weather.Units))
				passed++
			}

			// 5. Intent rules file
			if cfg.Intent.RulesPath != "" {
				if _, err := os.Stat(cfg.Intent.RulesPath); err != nil {
					printWarn("Intent rules", fmt.Sprintf("not found: %s (built-in keywords apply)", cfg.Intent.RulesPath))
					warned++
				} else {
					printPass("Intent rules", cfg.Intent.RulesPath)
					passed++
				}
			}

			// 6. History database writable
			if cfg.History.Enabled {
				if err := checkDatabase(cfg.History.DBPath); err != nil {
					printFail("History database", err.Error())
					failed++
				} else {
					printPass("History database", cfg.History.DBPath)
					passed++
				}
			}

			// 7. Audio pipeline
			if cfg.Audio.Enabled {
				if cfg.Storage.Bucket == "" {
					printFail("Audio storage", "audio enabled but no storage.bucket configured")
					failed++
				} else if cfg.Storage.Token == "" {
					printWarn("Audio storage", "no access token; uploads will be rejected (set GCS_ACCESS_TOKEN)")
					warned++
				} else {
					printPass("Audio storage", fmt.Sprintf("bucket %s", cfg.Storage.Bucket))
					passed++
				}

				dir := cfg.General.TempDir
				if dir == "" {
					dir = os.TempDir()
				}
				if err := checkTempDir(dir); err != nil {
					printFail("Temp directory", err.Error())
					failed++
				} else {
					printPass("Temp directory", dir)
					passed++
				}
			}

			// 8. Channels
			channels := 0
			if cfg.Channels.Twilio.Enabled {
				channels++
				port := cfg.Channels.Twilio.Port
				if port == 0 {
					port = 8000
				}
				if err := checkPort(port); err != nil {
					printWarn("Twilio port", fmt.Sprintf("port %d may be in use: %v", port, err))
					warned++
				} else {
					printPass("Twilio port", fmt.Sprintf(":%d available", port))
					passed++
				}
				if cfg.Channels.Twilio.AuthToken == "" {
					printWarn("Twilio signature", "no auth token; webhook signatures are not validated")
					warned++
				} else {
					printPass("Twilio signature", "validation enabled")
					passed++
				}
			}
			if cfg.Channels.Telegram.Enabled {
				channels++
				if cfg.Channels.Telegram.Token == "" {
					printFail("Telegram", "enabled but no bot token configured")
					failed++
				} else {
					printPass("Telegram", "configured")
					passed++
				}
			}
			if channels == 0 {
				printFail("Channels", "no channels enabled")
				failed++
			}

			// Summary
			fmt.Printf("\n━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
			fmt.Printf("Results: %d passed, %d warnings, %d failed\n", passed, warned, failed)
			if failed > 0 {
				fmt.Printf("\nPlease fix the failed checks before running Langingo.\n")
				return fmt.Errorf("%d check(s) failed", failed)
			}
			if warned > 0 {
				fmt.Printf("\nLangingo should work but consider fixing the warnings.\n")
			} else {
				fmt.Printf("\nAll checks passed! Langingo is ready to run.\n")
			}
			return nil
		},
	}
}

func checkDatabase(dbPath string) error {
	dir := dbPath
	for i := len(dir) - 1; i >= 0; i-- {
		if dir[i] == '/' || dir[i] == '\\' {
			dir = dir[:i]
			break
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("cannot open: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("cannot ping: %w", err)
	}

	// Try a write.
	if _, err := db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS _doctor_test (id INTEGER PRIMARY KEY)"); err != nil {
		return fmt.Errorf("not writable: %w", err)
	}
	db.ExecContext(ctx, "DROP TABLE IF EXISTS _doctor_test")

	return nil
}

func checkTempDir(dir string) error {
	f, err := os.CreateTemp(dir, "langingo-doctor-*")
	if err != nil {
		return fmt.Errorf("not writable: %w", err)
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return nil
}

func checkPort(port int) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return err
	}
	ln.Close()
	return nil
}

func printPass(check, detail string) {
	fmt.Printf("  [PASS] %-20s %s\n", check, detail)
}

func printFail(check, detail string) {
	fmt.Printf("  [FAIL] %-20s %s\n", check, detail)
}

func printWarn(check, detail string) {
	fmt.Printf("  [WARN] %-20s %s\n", check, detail)
}
