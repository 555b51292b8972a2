package cmd

import (
	"fmt"
	"time"

	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/domain/model/kernel"

	"github.com/shopspring/decimal"
)

// Realtime bus kinds accepted in REALTIME_BUS.
const (
	BusMemory   = "memory"
	BusRedis    = "redis"
	BusPostgres = "postgres"
)

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RealtimeBus   string

	FirebaseCredentialsFile string
	TelegramBotToken        string
	TelegramStaffChatID     int64

	EvidenceDir   string
	PublicBaseURL string

	DefaultShippingCost     string
	LinkExpirationHours     int
	PushSubscriptionTTLDays int
	LogLevel                string
}

// DSN is the libpq connection string for gorm and the LISTEN connection.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// OrderPolicy turns the shop settings into the policy the order commands apply.
func (c Config) OrderPolicy() (commands.OrderPolicy, error) {
	amount, err := decimal.NewFromString(c.DefaultShippingCost)
	if err != nil {
		return commands.OrderPolicy{}, fmt.Errorf("DEFAULT_SHIPPING_COST: %w", err)
	}
	shipping, err := kernel.NewMoney(amount)
	if err != nil {
		return commands.OrderPolicy{}, fmt.Errorf("DEFAULT_SHIPPING_COST: %w", err)
	}
	if c.LinkExpirationHours <= 0 {
		return commands.OrderPolicy{}, fmt.Errorf("LINK_EXPIRATION_HOURS must be positive, got %d", c.LinkExpirationHours)
	}

	return commands.OrderPolicy{
		DefaultShipping: shipping,
		LinkTTL:         time.Duration(c.LinkExpirationHours) * time.Hour,
	}, nil
}

// PushSubscriptionTTL is how long an unused device stays registered.
func (c Config) PushSubscriptionTTL() time.Duration {
	return time.Duration(c.PushSubscriptionTTLDays) * 24 * time.Hour
}
