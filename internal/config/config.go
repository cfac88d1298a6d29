package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-transfer/pkg/mysql"
)

// Store kinds
const (
	StoreMutex = "mutex"
	StoreActor = "actor"
)

// Seed sources
const (
	SeedFromConfig = "config"
	SeedFromMySQL  = "mysql"
)

// Notifier kinds
const (
	NotifierLog  = "log"
	NotifierNATS = "nats"
)

type Config struct {
	HTTP     ServerConfig   `yaml:"http"`
	GRPC     ServerConfig   `yaml:"grpc"`
	// Metrics 留空代表不另開 port，/metrics 只掛在 HTTP 上
	Metrics  ServerConfig   `yaml:"metrics"`
	Store    StoreConfig    `yaml:"store"`
	Seed     SeedConfig     `yaml:"seed"`
	MySQL    mysql.Config   `yaml:"mysql"`
	Notifier NotifierConfig `yaml:"notifier"`
	Tracing  TracingConfig  `yaml:"tracing"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	// Addr 監聽地址
	Addr string `yaml:"addr"`
}

type StoreConfig struct {
	Kind      string `yaml:"kind"`
	QueueSize int    `yaml:"queue_size"` // 只有 actor 使用
	// DebugLocks 開啟 go-deadlock 的鎖等待偵測，只有 mutex 使用
	DebugLocks bool `yaml:"debug_locks"`
}

type SeedConfig struct {
	Source   string        `yaml:"source"`
	Accounts []SeedAccount `yaml:"accounts"`
}

type SeedAccount struct {
	ID      string `yaml:"id"`
	Balance string `yaml:"balance"`
}

type NotifierConfig struct {
	Kind      string     `yaml:"kind"`
	QueueSize int        `yaml:"queue_size"`
	Workers   int        `yaml:"workers"`
	NATS      NATSConfig `yaml:"nats"`
}

type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

type TracingConfig struct {
	// Endpoint OTLP gRPC collector，留空不輸出 trace
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
	Environment string `yaml:"environment"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load 讀取 yaml 設定檔並補上預設值
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse 解析 yaml 內容，補上預設值後驗證
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults 補全 yaml 沒寫的設定
func (c *Config) SetDefaults() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.GRPC.Addr == "" {
		c.GRPC.Addr = ":50051"
	}
	if c.Store.Kind == "" {
		c.Store.Kind = StoreMutex
	}
	if c.Store.QueueSize == 0 {
		c.Store.QueueSize = 1000
	}
	if c.Seed.Source == "" {
		c.Seed.Source = SeedFromConfig
	}
	if c.Seed.Source == SeedFromMySQL {
		c.MySQL.SetDefaults()
	}
	if c.Notifier.Kind == "" {
		c.Notifier.Kind = NotifierLog
	}
	if c.Notifier.QueueSize == 0 {
		c.Notifier.QueueSize = 1024
	}
	if c.Notifier.Workers == 0 {
		c.Notifier.Workers = 4
	}
	if c.Notifier.NATS.URL == "" {
		c.Notifier.NATS.URL = "nats://localhost:4222"
	}
	if c.Notifier.NATS.Subject == "" {
		c.Notifier.NATS.Subject = "accounts.notifications"
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "go-mem-transfer"
	}
	if c.Tracing.Environment == "" {
		c.Tracing.Environment = "development"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate 檢查列舉值與初始帳戶
func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Kind {
	case StoreMutex, StoreActor:
	default:
		errs = append(errs, fmt.Errorf("unknown store kind %q", c.Store.Kind))
	}
	switch c.Notifier.Kind {
	case NotifierLog, NotifierNATS:
	default:
		errs = append(errs, fmt.Errorf("unknown notifier kind %q", c.Notifier.Kind))
	}
	switch c.Seed.Source {
	case SeedFromConfig:
		seen := make(map[string]struct{}, len(c.Seed.Accounts))
		for i, account := range c.Seed.Accounts {
			if account.ID == "" {
				errs = append(errs, fmt.Errorf("seed account #%d: empty id", i))
				continue
			}
			if _, dup := seen[account.ID]; dup {
				errs = append(errs, fmt.Errorf("seed account %q: duplicated", account.ID))
			}
			seen[account.ID] = struct{}{}
			balance, err := decimal.NewFromString(account.Balance)
			if err != nil {
				errs = append(errs, fmt.Errorf("seed account %q: invalid balance %q", account.ID, account.Balance))
				continue
			}
			if err := domain.ValidateAmount(balance); err != nil {
				errs = append(errs, fmt.Errorf("seed account %q: %w", account.ID, err))
			}
		}
	case SeedFromMySQL:
		if c.MySQL.Host == "" || c.MySQL.DBName == "" {
			errs = append(errs, errors.New("mysql seed requires mysql.host and mysql.db_name"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown seed source %q", c.Seed.Source))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
