package config

import (
	"time"

	"github.com/shopspring/decimal"
)

type DB struct {
	Url            string `envconfig:"URL"`
	Driver         string `envconfig:"DRIVER" default:"postgres"`
	MigrationsPath string `envconfig:"MIGRATIONS_PATH" default:"internal/migrations"`
	MaxOpenConns   int    `envconfig:"MAX_OPEN_CONNS" default:"25"`
}

type Jwt struct {
	Secret string        `envconfig:"SECRET" required:"true"`
	Expiry time.Duration `envconfig:"EXPIRY" default:"24h"`
}

type Auth struct {
	Jwt *Jwt `envconfig:"JWT"`
}

// Limits caps outgoing transfers per user over sliding windows.
type Limits struct {
	Daily  decimal.Decimal `envconfig:"DAILY" default:"2000.00"`
	Weekly decimal.Decimal `envconfig:"WEEKLY" default:"10000.00"`
}

// Settlement names the currency money requests are denominated and paid in.
type Settlement struct {
	Currency string `envconfig:"CURRENCY" default:"USD"`
}

type Card struct {
	MinFunding        decimal.Decimal `envconfig:"MIN_FUNDING" default:"2"`
	NumberMaxAttempts int             `envconfig:"NUMBER_MAX_ATTEMPTS" default:"10"`
}

type Fee struct {
	// ConversionPercentage is a fraction: 0.01 means 1% of the converted amount.
	ConversionPercentage decimal.Decimal `envconfig:"CONVERSION_PERCENTAGE" default:"0"`
}

type ExchangeRate struct {
	ApiKey      string        `envconfig:"API_KEY"`
	ApiUrl      string        `envconfig:"API_URL" default:"https://v6.exchangerate-api.com/v6"`
	Base        string        `envconfig:"BASE" default:"USD"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
	CacheTTL    time.Duration `envconfig:"CACHE_TTL" default:"15m"`
}

// Currency extends the built-in currency set from a CSV file.
type Currency struct {
	MetaFile string `envconfig:"META_FILE"`
}

type Redis struct {
	URL       string `envconfig:"URL"`
	KeyPrefix string `envconfig:"KEY_PREFIX" default:"lendrix:"`
}

type Kafka struct {
	Brokers     string `envconfig:"BROKERS"`
	TopicPrefix string `envconfig:"TOPIC_PREFIX" default:"lendrix.events"`
	GroupID     string `envconfig:"GROUP_ID" default:"lendrix"`
}

// EventBus selects where committed events are published: memory, kafka or redis.
type EventBus struct {
	Driver string `envconfig:"DRIVER" default:"memory"`
	Stream string `envconfig:"STREAM" default:"lendrix:events"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

type AccountNumber struct {
	// Node identifies this process in the snowflake id space (0-1023).
	Node int64 `envconfig:"NODE" default:"1"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"text"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[lendrix]"`
}

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"3000"`
}

type App struct {
	Env           string         `envconfig:"APP_ENV" default:"development"`
	Server        *Server        `envconfig:"SERVER"`
	Log           *Log           `envconfig:"LOG"`
	DB            *DB            `envconfig:"DATABASE"`
	Auth          *Auth          `envconfig:"AUTH"`
	Limits        *Limits        `envconfig:"LIMITS"`
	Settlement    *Settlement    `envconfig:"SETTLEMENT"`
	Card          *Card          `envconfig:"CARD"`
	Fee           *Fee           `envconfig:"FEE"`
	ExchangeRate  *ExchangeRate  `envconfig:"EXCHANGE_RATE"`
	Redis         *Redis         `envconfig:"REDIS"`
	Kafka         *Kafka         `envconfig:"KAFKA"`
	EventBus      *EventBus      `envconfig:"EVENT_BUS"`
	RateLimit     *RateLimit     `envconfig:"RATE_LIMIT"`
	AccountNumber *AccountNumber `envconfig:"ACCOUNT_NUMBER"`
	Currency      *Currency      `envconfig:"CURRENCY"`
}
