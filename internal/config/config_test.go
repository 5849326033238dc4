package config

import (
	"testing"
)

func lookup(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(lookup(nil))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.Driver != DriverSQLite || cfg.SQLitePath != "fastingapi.db" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.BMI.HeightM != 1.72 || cfg.BMI.UseProfileHeight {
		t.Errorf("unexpected BMI defaults: %+v", cfg.BMI)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(lookup(map[string]string{
		"ADDR":                   "127.0.0.1:9000",
		"STORE_DRIVER":           "Postgres",
		"DATABASE_URL":           "postgres://localhost/fasting",
		"BMI_HEIGHT_M":           "1.80",
		"BMI_USE_PROFILE_HEIGHT": "true",
		"CORS_ORIGINS":           "http://localhost:3000, https://app.example.com ,",
		"GIN_MODE":               "release",
	}))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Driver != DriverPostgres || cfg.DatabaseURL != "postgres://localhost/fasting" {
		t.Errorf("store = %q %q", cfg.Driver, cfg.DatabaseURL)
	}
	if cfg.BMI.HeightM != 1.80 || !cfg.BMI.UseProfileHeight {
		t.Errorf("BMI = %+v", cfg.BMI)
	}
	want := []string{"http://localhost:3000", "https://app.example.com"}
	if len(cfg.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	for i := range want {
		if cfg.CORSOrigins[i] != want[i] {
			t.Errorf("CORSOrigins[%d] = %q, want %q", i, cfg.CORSOrigins[i], want[i])
		}
	}
	if cfg.Addr != "127.0.0.1:9000" || cfg.GinMode != "release" {
		t.Errorf("unexpected %+v", cfg)
	}
}

func TestFromEnvErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres without url", map[string]string{"STORE_DRIVER": "postgres"}},
		{"unknown driver", map[string]string{"STORE_DRIVER": "mysql"}},
		{"bad height", map[string]string{"BMI_HEIGHT_M": "tall"}},
		{"zero height", map[string]string{"BMI_HEIGHT_M": "0"}},
		{"bad bool", map[string]string{"BMI_USE_PROFILE_HEIGHT": "sometimes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromEnv(lookup(tt.env)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
