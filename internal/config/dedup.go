package config

import (
	"github.com/spf13/viper"

	"github.com/mlynnf123/gfmd-outreach/internal/dedup"
)

// Dedup holds duplicate-detection settings.
type Dedup struct {
	CachePath      string
	RedisAddr      string
	RedisPassword  string
	RedisKey       string
	RedisDB        int
	FuzzyThreshold float64
	Fuzzy          bool
}

// LoadDedupConfig reads the dedup cache and optional Redis set settings.
func LoadDedupConfig() Dedup {
	config := Dedup{
		CachePath:      DataPath("dedup.cache_path", "lead_dedup_cache.json"),
		RedisAddr:      firstNonEmpty("dedup.redis_addr", "REDIS_ADDR"),
		RedisPassword:  firstNonEmpty("dedup.redis_password", "REDIS_PASSWORD"),
		RedisKey:       viper.GetString("dedup.redis_key"),
		RedisDB:        viper.GetInt("dedup.redis_db"),
		FuzzyThreshold: viper.GetFloat64("dedup.fuzzy_threshold"),
		Fuzzy:          viper.GetBool("dedup.fuzzy"),
	}
	if config.RedisKey == "" {
		config.RedisKey = dedup.DefaultRedisKey
	}
	if config.FuzzyThreshold <= 0 || config.FuzzyThreshold > 1 {
		config.FuzzyThreshold = dedup.DefaultFuzzyThreshold
	}
	return config
}
