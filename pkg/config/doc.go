// Package config loads environment-based configuration structs for
// notifykit components.
//
// Components declare their settings as structs tagged with `env` tags
// (github.com/caarlos0/env); a .env file, if present, is loaded once per
// process via github.com/joho/godotenv before parsing.
//
// # Usage
//
//	type StreamConfig struct {
//	    Addr           string `env:"STREAM_ADDR" envDefault:":8080"`
//	    SubscriberHMAC bool   `env:"STREAM_SUBSCRIBER_HMAC" envDefault:"false"`
//	    TenantSecret   string `env:"STREAM_TENANT_SECRET"`
//	}
//
//	var cfg StreamConfig
//	if err := config.Load(&cfg); err != nil {
//	    // handle error
//	}
package config
