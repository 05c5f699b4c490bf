package config

import (
	"log"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	Printer   PrinterConfig
	Store     StoreConfig
	Sales     SalesConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type DatabaseConfig struct {
	Driver       string // postgres or mysql
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	Timezone     string
	MaxIdleConns int
	MaxOpenConns int
}

type JWTConfig struct {
	Secret             string
	ExpiryHours        time.Duration
	RefreshExpiryHours time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

// RedisConfig is optional. With an empty Addr carts, finalize locks, revoked
// tokens and change events all stay in process.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a Redis server is configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type PrinterConfig struct {
	Type      string // none, usb or network
	USBPath   string
	Address   string
	Width     int
	Workers   int
	QueueSize int
}

// StoreConfig holds shop details printed on receipts and the locale used for
// invoice numbering and display dates.
type StoreConfig struct {
	Name           string
	Address        string
	Phone          string
	Timezone       string
	DateLayout     string
	TimeLayout     string
	InvoicePrefix  string
	WalkInCustomer string
	ReceiptFooter  string
}

// Location loads the store timezone, falling back to UTC.
func (c StoreConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Warning: unknown STORE_TIMEZONE %q, using UTC: %v", c.Timezone, err)
		return time.UTC
	}
	return loc
}

type SalesConfig struct {
	CartTTL         time.Duration
	FinalizeLockTTL time.Duration
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "flowtrack-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "flowtrack")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("DB_MAX_IDLE_CONNS", 10)
	viper.SetDefault("DB_MAX_OPEN_CONNS", 100)
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 12)
	viper.SetDefault("JWT_REFRESH_EXPIRY_HOURS", 168)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("PRINTER_TYPE", "none")
	viper.SetDefault("PRINTER_USB_PATH", "/dev/usb/lp0")
	viper.SetDefault("PRINTER_WIDTH", 32)
	viper.SetDefault("PRINTER_WORKERS", 1)
	viper.SetDefault("PRINTER_QUEUE_SIZE", 64)
	viper.SetDefault("STORE_NAME", "Mahavir Traders")
	viper.SetDefault("STORE_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("STORE_DATE_LAYOUT", "02/01/2006")
	viper.SetDefault("STORE_TIME_LAYOUT", "03:04:05 PM")
	viper.SetDefault("STORE_INVOICE_PREFIX", "INV")
	viper.SetDefault("STORE_WALK_IN_CUSTOMER", "Walk-in Customer")
	viper.SetDefault("STORE_RECEIPT_FOOTER", "Thank you for shopping with us!")
	viper.SetDefault("SALES_CART_TTL_HOURS", 24)
	viper.SetDefault("SALES_FINALIZE_LOCK_SECONDS", 30)

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Database: DatabaseConfig{
			Driver:       viper.GetString("DB_DRIVER"),
			Host:         viper.GetString("DB_HOST"),
			Port:         viper.GetString("DB_PORT"),
			Name:         viper.GetString("DB_NAME"),
			User:         viper.GetString("DB_USER"),
			Password:     viper.GetString("DB_PASSWORD"),
			SSLMode:      viper.GetString("DB_SSL_MODE"),
			Timezone:     viper.GetString("DB_TIMEZONE"),
			MaxIdleConns: viper.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns: viper.GetInt("DB_MAX_OPEN_CONNS"),
		},
		JWT: JWTConfig{
			Secret:             viper.GetString("JWT_SECRET"),
			ExpiryHours:        time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
			RefreshExpiryHours: time.Duration(viper.GetInt("JWT_REFRESH_EXPIRY_HOURS")) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Printer: PrinterConfig{
			Type:      viper.GetString("PRINTER_TYPE"),
			USBPath:   viper.GetString("PRINTER_USB_PATH"),
			Address:   viper.GetString("PRINTER_ADDRESS"),
			Width:     viper.GetInt("PRINTER_WIDTH"),
			Workers:   viper.GetInt("PRINTER_WORKERS"),
			QueueSize: viper.GetInt("PRINTER_QUEUE_SIZE"),
		},
		Store: StoreConfig{
			Name:           viper.GetString("STORE_NAME"),
			Address:        viper.GetString("STORE_ADDRESS"),
			Phone:          viper.GetString("STORE_PHONE"),
			Timezone:       viper.GetString("STORE_TIMEZONE"),
			DateLayout:     viper.GetString("STORE_DATE_LAYOUT"),
			TimeLayout:     viper.GetString("STORE_TIME_LAYOUT"),
			InvoicePrefix:  viper.GetString("STORE_INVOICE_PREFIX"),
			WalkInCustomer: viper.GetString("STORE_WALK_IN_CUSTOMER"),
			ReceiptFooter:  viper.GetString("STORE_RECEIPT_FOOTER"),
		},
		Sales: SalesConfig{
			CartTTL:         time.Duration(viper.GetInt("SALES_CART_TTL_HOURS")) * time.Hour,
			FinalizeLockTTL: time.Duration(viper.GetInt("SALES_FINALIZE_LOCK_SECONDS")) * time.Second,
		},
	}
}

// DSN builds the connection string for the configured driver.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "mysql" {
		return c.MySQLDSN()
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

// MySQLDSN builds a go-sql-driver/mysql DSN with time parsing enabled.
func (c *DatabaseConfig) MySQLDSN() string {
	cfg := mysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = c.Host + ":" + c.Port
	cfg.DBName = c.Name
	cfg.ParseTime = true
	if loc, err := time.LoadLocation(c.Timezone); err == nil {
		cfg.Loc = loc
	}
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}
