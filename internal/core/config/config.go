package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
	RequestTimeout  time.Duration
	RateLimitRPS    float64
	RateLimitBurst  int
	MaxInFlight     int64
	MaxBodyBytes    int64
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

type Rotate struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level  string
	JSON   bool
	Rotate Rotate
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Session struct {
	CookieName string
	FlashName  string
	CSRFName   string
	Secure     bool
	FlashTTL   time.Duration
}

type Policy struct {
	AdminRoles []string
}

type Pagination struct {
	PerPage int
}

type S3 struct {
	Region          string
	Endpoint        string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	DisableSSL      bool
}

type Otel struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

// Admin seeds a first administrator at boot when Email and Password are set.
type Admin struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type Config struct {
	App        App
	Log        Log
	JWT        JWT
	DB         DB
	Redis      Redis `mapstructure:"redis"`
	Session    Session
	Policy     Policy
	Pagination Pagination
	S3         S3
	Otel       Otel
	Admin      Admin
}

func defaults(v *viper.Viper) {
	v.SetDefault("app.name", "sunday-market")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readtimeoutsec", 5)
	v.SetDefault("app.http.writetimeoutsec", 10)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.http.requesttimeout", "10s")
	v.SetDefault("app.http.ratelimitrps", 200)
	v.SetDefault("app.http.ratelimitburst", 400)
	v.SetDefault("app.http.maxinflight", 300)
	v.SetDefault("app.http.maxbodybytes", 16<<20)

	v.SetDefault("log.level", "info")

	v.SetDefault("jwt.issuer", "sunday-market")
	v.SetDefault("jwt.accesstokenttlmin", 60*24)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "file:market.db?_pragma=foreign_keys(1)")
	v.SetDefault("db.automigrate", true)
	v.SetDefault("db.loglevel", "warn")

	v.SetDefault("session.cookiename", "market_session")
	v.SetDefault("session.flashname", "market_flash")
	v.SetDefault("session.csrfname", "market_csrf")
	v.SetDefault("session.flashttl", "5m")

	v.SetDefault("policy.adminroles", []string{"AdminUser"})
	v.SetDefault("pagination.perpage", 6)
	v.SetDefault("otel.servicename", "sunday-market")

	// Keys without a meaningful default still need registering so that
	// AutomaticEnv can override them during Unmarshal.
	for _, k := range []string{
		"jwt.secret", "db.username", "db.password",
		"redis.addr", "redis.password",
		"s3.endpoint", "s3.bucket", "s3.accesskeyid", "s3.secretaccesskey",
		"otel.endpoint",
		"admin.email", "admin.password", "admin.firstname", "admin.lastname",
	} {
		v.SetDefault(k, "")
	}
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("redis.db", 0)
	v.SetDefault("session.secure", false)
	v.SetDefault("log.json", false)
	v.SetDefault("otel.enabled", false)
}

// Load reads path (or CONFIG_PATH, or ./configs/config.local.yaml) and
// applies APP_* environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	defaults(v)
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func MustLoad(path string) *Config {
	c, err := Load(path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	return c
}
