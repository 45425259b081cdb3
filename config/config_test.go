package config

import (
	"os"
	"testing"
	"time"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("setenv %s failed: %v", key, err)
	}
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	_ = os.Unsetenv(key)
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		}
	})
}

func TestLoadRequiresMySQLDSN(t *testing.T) {
	unsetEnv(t, "MYSQL_DSN")
	setEnv(t, "FATTUREINCLOUD_API_UID", "uid")
	setEnv(t, "FATTUREINCLOUD_API_KEY", "key")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing MYSQL_DSN")
	}
}

func TestLoadRequiresProviderCredentials(t *testing.T) {
	setEnv(t, "MYSQL_DSN", "root:root@tcp(localhost:3306)/wordpress?parseTime=true")
	setEnv(t, "FATTUREINCLOUD_API_UID", "uid")
	unsetEnv(t, "FATTUREINCLOUD_API_KEY")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing FATTUREINCLOUD_API_KEY")
	}
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	setEnv(t, "MYSQL_DSN", "root:root@tcp(localhost:3306)/wordpress?parseTime=true")
	setEnv(t, "FATTUREINCLOUD_API_UID", "uid-1")
	setEnv(t, "FATTUREINCLOUD_API_KEY", "key-1")
	setEnv(t, "FATTUREINCLOUD_STRIPE_WALLET", "Stripe")
	setEnv(t, "APP_SERVICE_NAME", "invoicing-test")
	setEnv(t, "HTTP_PORT", "8181")
	setEnv(t, "MYSQL_MAX_OPEN_CONNS", "20")
	setEnv(t, "MYSQL_CONN_MAX_LIFETIME_MINUTES", "40")
	setEnv(t, "KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	setEnv(t, "FATTUREINCLOUD_HTTP_TIMEOUT_SECONDS", "7")
	unsetEnv(t, "INVOICES_COUNTRIES_CACHE_TTL_MINUTES")
	unsetEnv(t, "MYSQL_TABLE_PREFIX")
	setEnv(t, "JOBS_COUNTRIES_WARM_INTERVAL_MINUTES", "90")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.App.ServiceName != "invoicing-test" {
		t.Fatalf("unexpected app service name: %s", cfg.App.ServiceName)
	}
	if cfg.HTTP.Port != "8181" {
		t.Fatalf("unexpected http port: %s", cfg.HTTP.Port)
	}
	if cfg.MySQL.MaxOpenConns != 20 || cfg.MySQL.ConnMaxLifetime != 40*time.Minute {
		t.Fatalf("unexpected mysql config: %+v", cfg.MySQL)
	}
	if cfg.MySQL.TablePrefix != "wp_" {
		t.Fatalf("unexpected table prefix: %q", cfg.MySQL.TablePrefix)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "kafka-2:9092" {
		t.Fatalf("unexpected kafka brokers: %v", cfg.Kafka.Brokers)
	}
	if cfg.FattureInCloud.APIUID != "uid-1" || cfg.FattureInCloud.APIKey != "key-1" || cfg.FattureInCloud.DefaultWallet != "Stripe" {
		t.Fatalf("unexpected provider config: %+v", cfg.FattureInCloud)
	}
	if cfg.FattureInCloud.HTTPTimeout != 7*time.Second {
		t.Fatalf("unexpected provider timeout: %v", cfg.FattureInCloud.HTTPTimeout)
	}
	if cfg.Invoices.CountriesCacheTTL != 48*time.Hour {
		t.Fatalf("unexpected countries cache ttl: %v", cfg.Invoices.CountriesCacheTTL)
	}
	if cfg.Jobs.CountriesWarmInterval != 90*time.Minute {
		t.Fatalf("unexpected countries warm interval: %v", cfg.Jobs.CountriesWarmInterval)
	}
}
