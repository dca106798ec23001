package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	// Classifier
	ClassifierBackend string // linear|remote
	ModelPath         string
	ModelServerURL    string
	ModelServerKey    string
	ModelServerRPS    int
	LexiconPath       string
	ClassifyCacheTTL  time.Duration

	// Ingestion
	Workers     int
	IngestInput string

	// Insights
	CacheTTL            time.Duration
	HighRatingThreshold float64
	RootCauseTopN       int
	InsightsPartitions  int
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("invalid integer, using default")
		}
		return def
	}
	atof := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
			log.Warn().Str("key", k).Str("value", v).Msg("invalid number, using default")
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/absa?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),

		ClassifierBackend: strings.ToLower(env("CLASSIFIER_BACKEND", "linear")),
		ModelPath:         env("MODEL_PATH", "artifacts/sentiment_model.json"),
		ModelServerURL:    env("MODEL_SERVER_URL", ""),
		ModelServerKey:    env("MODEL_SERVER_KEY", ""),
		ModelServerRPS:    atoi("MODEL_SERVER_RPS", 50),
		LexiconPath:       env("LEXICON_PATH", ""),
		ClassifyCacheTTL:  time.Duration(atoi("CLASSIFY_CACHE_TTL_SECONDS", 600)) * time.Second,

		Workers:     atoi("INGEST_WORKERS", 8),
		IngestInput: env("INGEST_INPUT", ""),

		CacheTTL:            time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		HighRatingThreshold: atof("HIGH_RATING_THRESHOLD", 4),
		RootCauseTopN:       atoi("ROOT_CAUSE_TOP_N", 10),
		InsightsPartitions:  atoi("INSIGHTS_PARTITIONS", 0),
	}
	// high-rated means strictly above the bottom of the 0-5 scale
	if c.HighRatingThreshold <= 0 || c.HighRatingThreshold > 5 {
		log.Warn().Float64("value", c.HighRatingThreshold).Msg("HIGH_RATING_THRESHOLD outside (0, 5], using default")
		c.HighRatingThreshold = 4
	}
	if c.ClassifierBackend == "remote" && c.ModelServerURL == "" {
		log.Warn().Msg("CLASSIFIER_BACKEND=remote but MODEL_SERVER_URL is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
