package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds all environment-driven settings for a dataset run.
type Config struct {
	PhoenixURL         string
	ChatHistoryTable   string
	AWSRegion          string
	DatasetName        string
	DatasetDescription string
	TargetCount        int
	SnapshotPath       string
	VerifyTimeout      time.Duration
}

const (
	defaultPhoenixURL  = "https://phoenix.songbird.live"
	defaultTable       = "songbird-chat-history"
	defaultRegion      = "us-east-1"
	defaultDatasetName = "analytics-golden-queries"
	defaultDescription = "Curated high-quality analytics queries for evaluation and testing"
	defaultTarget      = 50
	minTarget          = 1
	maxTarget          = 1000
	defaultVerifyWait  = 15 * time.Second
)

type fileConfig struct {
	PhoenixURL       string `yaml:"phoenix_url"`
	ChatHistoryTable string `yaml:"chat_history_table"`
	AWSRegion        string `yaml:"aws_region"`
	DatasetName      string `yaml:"dataset_name"`
	TargetCount      *int   `yaml:"target_count"`
	SnapshotPath     string `yaml:"snapshot_path"`
}

// Load reads configuration from an optional YAML file, an optional .env file,
// and the environment. Environment values win over file values.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		PhoenixURL:         defaultPhoenixURL,
		ChatHistoryTable:   defaultTable,
		AWSRegion:          defaultRegion,
		DatasetName:        defaultDatasetName,
		DatasetDescription: defaultDescription,
		TargetCount:        defaultTarget,
		VerifyTimeout:      defaultVerifyWait,
	}
	applyFile(&cfg, getenv("GOLDEN_CONFIG", "golden.yaml"))

	cfg.PhoenixURL = getenv("PHOENIX_URL", cfg.PhoenixURL)
	cfg.ChatHistoryTable = getenv("CHAT_HISTORY_TABLE", cfg.ChatHistoryTable)
	cfg.AWSRegion = getenv("AWS_REGION", cfg.AWSRegion)
	cfg.DatasetName = getenv("DATASET_NAME", cfg.DatasetName)
	cfg.TargetCount = clampInt(getenvInt("TARGET_COUNT", cfg.TargetCount), minTarget, maxTarget)
	cfg.SnapshotPath = getenv("SNAPSHOT_PATH", cfg.SnapshotPath)
	cfg.PhoenixURL = strings.TrimRight(cfg.PhoenixURL, "/")

	logrus.WithFields(logrus.Fields{
		"phoenix_url": cfg.PhoenixURL,
		"table":       cfg.ChatHistoryTable,
		"target":      cfg.TargetCount,
	}).Debug("config loaded")
	return cfg
}

// applyFile overlays values from a YAML config file. A missing file is fine;
// an unparsable one is reported and skipped.
func applyFile(cfg *Config, path string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		logrus.WithError(err).WithField("path", path).Warn("ignoring unparsable config file")
		return
	}
	if fc.PhoenixURL != "" {
		cfg.PhoenixURL = fc.PhoenixURL
	}
	if fc.ChatHistoryTable != "" {
		cfg.ChatHistoryTable = fc.ChatHistoryTable
	}
	if fc.AWSRegion != "" {
		cfg.AWSRegion = fc.AWSRegion
	}
	if fc.DatasetName != "" {
		cfg.DatasetName = fc.DatasetName
	}
	if fc.TargetCount != nil {
		cfg.TargetCount = *fc.TargetCount
	}
	if fc.SnapshotPath != "" {
		cfg.SnapshotPath = fc.SnapshotPath
	}
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
