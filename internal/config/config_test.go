package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "PG_MAX_CONNS", "JWT_TTL", "ADMIN_EMAILS", "ORDER_MAX_ATTEMPTS", "ORDER_TIMEOUT", "STATS_METRICS_ADDR"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, ":5000", cfg.HTTPAddr)
	assert.Equal(t, int32(8), cfg.PGMaxConns)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 3, cfg.OrderMaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.OrderTimeout)
	assert.Empty(t, cfg.AdminEmails)
	assert.Equal(t, ":9102", cfg.StatsMetricsAddr)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("ADMIN_EMAILS", "dio@gmail.com,yuan1@gmail.com")
	t.Setenv("ORDER_MAX_ATTEMPTS", "5")
	t.Setenv("ORDER_TIMEOUT", "750ms")
	t.Setenv("PG_MAX_CONNS", "not-a-number")

	cfg := Load()
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []string{"dio@gmail.com", "yuan1@gmail.com"}, cfg.AdminEmails)
	assert.Equal(t, 5, cfg.OrderMaxAttempts)
	assert.Equal(t, 750*time.Millisecond, cfg.OrderTimeout)
	assert.Equal(t, int32(8), cfg.PGMaxConns)
}
