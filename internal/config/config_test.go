package config

import (
	"os"
	"path/filepath"
	"testing"

	"reserva/internal/models"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
app:
  name: "reserva"
  environment: "test"
database:
  path: "test.db"
booking:
  campuses: ["Monterrico", "San Miguel"]
  duration_choices: [30, 60]
  max_duration_minutes: 90
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "reserva" {
		t.Errorf("expected app name reserva, got %s", cfg.App.Name)
	}
	if cfg.Database.Path != "test.db" {
		t.Errorf("expected database path test.db, got %s", cfg.Database.Path)
	}
	if cfg.Booking.MaxDurationMinutes != 90 {
		t.Errorf("expected max duration 90, got %d", cfg.Booking.MaxDurationMinutes)
	}

	// Defaults kick in for sections the file omits.
	if cfg.API.HTTP.Port != 8080 {
		t.Errorf("expected default http port 8080, got %d", cfg.API.HTTP.Port)
	}
	if cfg.Verification.RefreshSeconds != models.DefaultVerificationRefreshSeconds {
		t.Errorf("expected default refresh %d, got %d",
			models.DefaultVerificationRefreshSeconds, cfg.Verification.RefreshSeconds)
	}
	if cfg.Booking.IdempotencyTTL != models.DefaultIdempotencyTTL {
		t.Errorf("expected default idempotency ttl %d, got %d",
			models.DefaultIdempotencyTTL, cfg.Booking.IdempotencyTTL)
	}
}

func TestLoadConfigEnvExpansion(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("TEST_DB_PATH", "/tmp/expanded.db")

	yamlContent := `
database:
  path: "${TEST_DB_PATH}"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Database.Path != "/tmp/expanded.db" {
		t.Errorf("expected expanded path, got %s", cfg.Database.Path)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				Database: DatabaseConfig{Path: "test.db"},
				Booking: BookingConfig{
					Campuses:           []string{"Monterrico"},
					DurationChoices:    []int{30, 60},
					MaxDurationMinutes: 120,
				},
			},
			wantErr: false,
		},
		{
			name:    "missing database path",
			cfg:     Config{},
			wantErr: true,
		},
		{
			name: "duration choice above max",
			cfg: Config{
				Database: DatabaseConfig{Path: "test.db"},
				Booking: BookingConfig{
					DurationChoices:    []int{30, 240},
					MaxDurationMinutes: 120,
				},
			},
			wantErr: true,
		},
		{
			name: "max above policy cap",
			cfg: Config{
				Database: DatabaseConfig{Path: "test.db"},
				Booking:  BookingConfig{MaxDurationMinutes: models.MaxReservationMinutes + 30},
			},
			wantErr: true,
		},
		{
			name: "duplicate campus",
			cfg: Config{
				Database: DatabaseConfig{Path: "test.db"},
				Booking: BookingConfig{
					Campuses:           []string{"Monterrico", "Monterrico"},
					MaxDurationMinutes: 120,
				},
			},
			wantErr: true,
		},
		{
			name: "empty campus name",
			cfg: Config{
				Database: DatabaseConfig{Path: "test.db"},
				Booking: BookingConfig{
					Campuses:           []string{""},
					MaxDurationMinutes: 120,
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
