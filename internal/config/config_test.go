package config

import (
	"strings"
	"testing"
	"time"
)

func TestDatabaseConfig_PostgresDSN(t *testing.T) {
	c := &DatabaseConfig{
		Driver: "postgres", Host: "db", Port: "5432", Name: "flowtrack",
		User: "u", Password: "p", SSLMode: "disable", Timezone: "UTC",
	}
	dsn := c.DSN()
	for _, part := range []string{"host=db", "dbname=flowtrack", "sslmode=disable", "TimeZone=UTC"} {
		if !strings.Contains(dsn, part) {
			t.Errorf("expected %q in DSN %q", part, dsn)
		}
	}
}

func TestDatabaseConfig_MySQLDSN(t *testing.T) {
	c := &DatabaseConfig{
		Driver: "mysql", Host: "db", Port: "3306", Name: "flowtrack",
		User: "u", Password: "p", Timezone: "UTC",
	}
	dsn := c.DSN()
	if !strings.HasPrefix(dsn, "u:p@tcp(db:3306)/flowtrack?") {
		t.Errorf("unexpected DSN prefix: %q", dsn)
	}
	if !strings.Contains(dsn, "parseTime=true") {
		t.Errorf("expected parseTime in DSN %q", dsn)
	}
}

func TestStoreConfig_LocationFallback(t *testing.T) {
	if loc := (StoreConfig{Timezone: "Not/AZone"}).Location(); loc != time.UTC {
		t.Errorf("expected UTC fallback, got %v", loc)
	}
	if loc := (StoreConfig{Timezone: "Asia/Kolkata"}).Location(); loc.String() != "Asia/Kolkata" {
		t.Errorf("expected Asia/Kolkata, got %v", loc)
	}
}

func TestRedisConfig_Enabled(t *testing.T) {
	if (RedisConfig{}).Enabled() {
		t.Error("empty address should be disabled")
	}
	if !(RedisConfig{Addr: "localhost:6379"}).Enabled() {
		t.Error("address should enable redis")
	}
}
