package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
)

const (
	testSecret1 = "0123456789abcdef0123456789abcdef:dGVzdHNlY3JldDEyMzQ1Njc4OTBhYmNkZWZnaGlqa2xtbm9w"
	testSecret2 = "fedcba9876543210fedcba9876543210:YW5vdGhlcnNlY3JldDEyMzQ1Njc4OTBhYmNkZWZnaGlqa2xtbm9w"
	testDupe    = "0123456789abcdef0123456789abcdef:YW5vdGhlcnNlY3JldDEyMzQ1Njc4OTBhYmNkZWZnaGlqa2xtbm9w"
)

func TestHMACSecrets(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    int
		wantErr bool
	}{
		{"none", nil, 0, false},
		{"single secret", map[string]string{"AUTOMATA_HMAC_SECRET": testSecret1}, 1, false},
		{"multiple numbered secrets", map[string]string{"AUTOMATA_HMAC_SECRET_1": testSecret1, "AUTOMATA_HMAC_SECRET_2": testSecret2}, 2, false},
		{"gap stops numbered scan", map[string]string{"AUTOMATA_HMAC_SECRET_1": testSecret1, "AUTOMATA_HMAC_SECRET_3": testSecret2}, 1, false},
		{"invalid format", map[string]string{"AUTOMATA_HMAC_SECRET": "invalid_format"}, 0, true},
		{"duplicate numbered", map[string]string{"AUTOMATA_HMAC_SECRET_1": testSecret1, "AUTOMATA_HMAC_SECRET_2": testDupe}, 0, true},
		{"duplicate single and numbered", map[string]string{"AUTOMATA_HMAC_SECRET": testSecret1, "AUTOMATA_HMAC_SECRET_1": testDupe}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"AUTOMATA_HMAC_SECRET", "AUTOMATA_HMAC_SECRET_1", "AUTOMATA_HMAC_SECRET_2", "AUTOMATA_HMAC_SECRET_3"} {
				t.Setenv(key, tt.env[key])
			}

			secrets, err := HMACSecrets()
			if (err != nil) != tt.wantErr {
				t.Fatalf("HMACSecrets() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && len(secrets) != tt.want {
				t.Errorf("expected %d secrets, got %d", tt.want, len(secrets))
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadConfig("", nil)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Server.Host != "0.0.0.0" {
			t.Errorf("expected host 0.0.0.0, got %s", cfg.Server.Host)
		}
		if cfg.Server.Port != 50051 {
			t.Errorf("expected port 50051, got %d", cfg.Server.Port)
		}
		if cfg.Server.RequestTimeout != 30*time.Second {
			t.Errorf("expected timeout 30s, got %v", cfg.Server.RequestTimeout)
		}
		if cfg.Evaluation.Parallel || cfg.Evaluation.MaxParallelism != 8 || cfg.Evaluation.Locale != "en" {
			t.Errorf("unexpected evaluation defaults: %+v", cfg.Evaluation)
		}
		if cfg.Metrics.Addr != ":9090" {
			t.Errorf("expected metrics addr :9090, got %s", cfg.Metrics.Addr)
		}
	})

	t.Run("environment override", func(t *testing.T) {
		t.Setenv("AUTOMATA_SERVER_PORT", "9999")
		t.Setenv("AUTOMATA_SERVER_HOST", "127.0.0.1")
		t.Setenv("AUTOMATA_EVALUATION_PARALLEL", "true")
		t.Setenv("AUTOMATA_EVALUATION_LOCALE", "de-CH")

		cfg, err := LoadConfig("", nil)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Server.Port != 9999 || cfg.Server.Host != "127.0.0.1" {
			t.Errorf("unexpected server config: %+v", cfg.Server)
		}
		if !cfg.Evaluation.Parallel || cfg.Evaluation.Locale != "de-CH" {
			t.Errorf("unexpected evaluation config: %+v", cfg.Evaluation)
		}
	})

	invalid := []struct {
		name, key, val string
	}{
		{"port out of range", "AUTOMATA_SERVER_PORT", "70000"},
		{"non-positive timeout", "AUTOMATA_SERVER_REQUEST_TIMEOUT", "0s"},
		{"negative definition size", "AUTOMATA_SERVER_MAX_DEFINITION_SIZE", "-1"},
		{"negative parallelism", "AUTOMATA_EVALUATION_MAX_PARALLELISM", "-2"},
		{"bad locale", "AUTOMATA_EVALUATION_LOCALE", "not a tag!"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := LoadConfig("", nil); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.val)
			}
		})
	}
}

func TestLoadConfig_Flags(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("server.port", 50051, "")
	flags.Bool("evaluation.parallel", false, "")
	if err := flags.Parse([]string{"--server.port=7000", "--evaluation.parallel"}); err != nil {
		t.Fatal(err)
	}
	t.Setenv("AUTOMATA_SERVER_PORT", "8000")

	cfg, err := LoadConfig("", flags)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("flag should override environment: expected 7000, got %d", cfg.Server.Port)
	}
	if !cfg.Evaluation.Parallel {
		t.Error("expected evaluation.parallel from flag")
	}
}

func TestParseHMACSecretWithID(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"valid format", testSecret1, false},
		{"missing colon", "0123456789abcdef0123456789abcdef", true},
		{"invalid secret_id length", "tooshort:dGVzdHNlY3JldDEyMzQ1Njc4OTBhYmNkZWZnaGlqa2xtbm9w", true},
		{"non-hex chars in secret_id", "0123456789abcdefGHIJKLMNOPQRSTUV:dGVzdHNlY3JldDEyMzQ1Njc4OTBhYmNkZWZnaGlqa2xtbm9w", true},
		{"invalid base64", "0123456789abcdef0123456789abcdef:not-valid-base64!!!", true},
		{"secret too short", "0123456789abcdef0123456789abcdef:c2hvcnQ=", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, secret, err := ParseHMACSecretWithID(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHMACSecretWithID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && (id != "0123456789abcdef0123456789abcdef" || len(secret) < 32) {
				t.Errorf("got id=%s len=%d", id, len(secret))
			}
		})
	}
}
