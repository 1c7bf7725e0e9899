package config

import (
	"os"
	"sync"

	"github.com/mitchellh/mapstructure"
)

// AppConfig holds global application configuration
var AppConfig *Config
var once sync.Once

type Config struct {
	AppName      string `mapstructure:"app_name"`
	Port         string `mapstructure:"port"`
	Env          string `mapstructure:"env"`
	Debug        bool   `mapstructure:"debug"`
	AuditBatch   int    `mapstructure:"audit_batch"`
	RecipeTTLSec int64  `mapstructure:"recipe_ttl"`
}

// LoadAppConfig initializes the global AppConfig variable.
// Env vars are collected into a loose map and decoded weakly typed,
// so DEBUG=true and AUDIT_BATCH=500 land in typed fields.
func LoadAppConfig() {
	once.Do(func() {
		raw := map[string]interface{}{
			"app_name":    os.Getenv("APP_NAME"),
			"port":        os.Getenv("PORT"),
			"env":         os.Getenv("APP_ENV"),
			"debug":       os.Getenv("DEBUG"),
			"audit_batch": os.Getenv("AUDIT_BATCH"),
			"recipe_ttl":  os.Getenv("RECIPE_TTL"),
		}
		for k, v := range raw {
			if v == "" {
				delete(raw, k)
			}
		}
		cfg := &Config{AuditBatch: 500, RecipeTTLSec: 300}
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           cfg,
		})
		if err == nil {
			_ = dec.Decode(raw)
		}
		if cfg.Port == "" {
			cfg.Port = "8080"
		}
		AppConfig = cfg
	})
}
