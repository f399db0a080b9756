package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db", Port: "5432", Name: "gstpos", User: "pos",
		Password: "secret", SSLMode: "disable", Timezone: "Asia/Kolkata",
	}

	assert.Equal(t,
		"host=db user=pos password=secret dbname=gstpos port=5432 sslmode=disable TimeZone=Asia/Kolkata",
		cfg.DSN())
}

func TestSplitList_TrimsAndDropsEmpty(t *testing.T) {
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, splitList(" broker-1:9092, ,broker-2:9092 "))
	assert.Nil(t, splitList(""))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg := Load()

	assert.True(t, cfg.App.IsProduction())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "pos.sales", cfg.Kafka.SalesTopic)
	assert.Equal(t, 48, cfg.Printer.CharWidth)
}
