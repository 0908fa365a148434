package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	DB          DBConfig
	Redis       RedisConfig
	LLM         LLMConfig
	Scraper     ScraperConfig
	Quiz        QuizConfig
	JWT         JWTConfig
	GoogleOAuth GoogleOAuthConfig
	Logger      LoggerConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// LLMConfig carries the model backend settings. Retry/backoff/truncation
// values are policy, not structure; they default to the values the service
// shipped with but stay overridable.
type LLMConfig struct {
	GeminiAPIKey          string
	Model                 string
	Temperature           float64
	MaxRetries            int
	InitialBackoff        time.Duration
	CallTimeout           time.Duration
	MaxArticleChars       int
	MaxSupplementAttempts int
}

type ScraperConfig struct {
	FetchTimeout   time.Duration
	PreviewTimeout time.Duration
}

type QuizConfig struct {
	CacheEnabled    bool
	CacheTTL        time.Duration
	MinArticleChars int
	DefaultCount    int
	MaxCount        int
}

type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type LoggerConfig struct {
	Level string
	Env   string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		viper.AddConfigPath("../../config")
		viper.AddConfigPath("../../")
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// A missing file is fine: defaults plus environment cover everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout"),
			WriteTimeout: viper.GetDuration("server.write_timeout"),
		},
		DB: DBConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetInt("db.port"),
			User:     viper.GetString("db.user"),
			Password: viper.GetString("db.password"),
			DBName:   viper.GetString("db.name"),
		},
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		LLM: LLMConfig{
			GeminiAPIKey:          viper.GetString("llm.gemini_api_key"),
			Model:                 viper.GetString("llm.model"),
			Temperature:           viper.GetFloat64("llm.temperature"),
			MaxRetries:            viper.GetInt("llm.max_retries"),
			InitialBackoff:        viper.GetDuration("llm.initial_backoff"),
			CallTimeout:           viper.GetDuration("llm.call_timeout"),
			MaxArticleChars:       viper.GetInt("llm.max_article_chars"),
			MaxSupplementAttempts: viper.GetInt("llm.max_supplement_attempts"),
		},
		Scraper: ScraperConfig{
			FetchTimeout:   viper.GetDuration("scraper.fetch_timeout"),
			PreviewTimeout: viper.GetDuration("scraper.preview_timeout"),
		},
		Quiz: QuizConfig{
			CacheEnabled:    viper.GetBool("quiz.cache_enabled"),
			CacheTTL:        viper.GetDuration("quiz.cache_ttl"),
			MinArticleChars: viper.GetInt("quiz.min_article_chars"),
			DefaultCount:    viper.GetInt("quiz.default_count"),
			MaxCount:        viper.GetInt("quiz.max_count"),
		},
		JWT: JWTConfig{
			SecretKey:       viper.GetString("jwt.secret_key"),
			AccessTokenTTL:  viper.GetDuration("jwt.access_token_ttl"),
			RefreshTokenTTL: viper.GetDuration("jwt.refresh_token_ttl"),
		},
		GoogleOAuth: GoogleOAuthConfig{
			ClientID:     viper.GetString("google_oauth.client_id"),
			ClientSecret: viper.GetString("google_oauth.client_secret"),
			RedirectURL:  viper.GetString("google_oauth.redirect_url"),
		},
		Logger: LoggerConfig{
			Level: viper.GetString("logger.level"),
			Env:   viper.GetString("logger.env"),
		},
	}

	applyEnvOverrides(config)

	return config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 20*time.Second)
	viper.SetDefault("server.write_timeout", 20*time.Second)

	viper.SetDefault("llm.model", "gemini-2.5-flash")
	viper.SetDefault("llm.temperature", 0.7)
	viper.SetDefault("llm.max_retries", 3)
	viper.SetDefault("llm.initial_backoff", 2*time.Second)
	viper.SetDefault("llm.call_timeout", 60*time.Second)
	viper.SetDefault("llm.max_article_chars", 30000)
	viper.SetDefault("llm.max_supplement_attempts", 3)

	viper.SetDefault("scraper.fetch_timeout", 20*time.Second)
	viper.SetDefault("scraper.preview_timeout", 10*time.Second)

	viper.SetDefault("quiz.cache_enabled", true)
	viper.SetDefault("quiz.cache_ttl", 6*time.Hour)
	viper.SetDefault("quiz.min_article_chars", 200)
	viper.SetDefault("quiz.default_count", 10)
	viper.SetDefault("quiz.max_count", 50)

	viper.SetDefault("jwt.access_token_ttl", 1*time.Hour)
	viper.SetDefault("jwt.refresh_token_ttl", 14*24*time.Hour)

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.env", "development")
}

func applyEnvOverrides(config *Config) {
	if host := os.Getenv("DB_HOST"); host != "" {
		config.DB.Host = host
	}
	if user := os.Getenv("DB_USER"); user != "" {
		config.DB.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		config.DB.Password = password
	}
	if dbname := os.Getenv("DB_NAME"); dbname != "" {
		config.DB.DBName = dbname
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		config.Redis.Address = redisAddress
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.Redis.Password = redisPassword
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.LLM.GeminiAPIKey = apiKey
	}
	if secret := os.Getenv("JWT_SECRET_KEY"); secret != "" {
		config.JWT.SecretKey = secret
	}
}

// GetDSN builds the Oracle connection string.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("oracle://%s:%s@%s:%d/%s",
		c.DB.User,
		c.DB.Password,
		c.DB.Host,
		c.DB.Port,
		c.DB.DBName,
	)
}
