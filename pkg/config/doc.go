// Package config loads typed configuration structs from environment
// variables, with an optional .env file for local development.
//
// Each package defines its own Config struct with `env` tags and loads it at
// startup:
//
//	type Config struct {
//		FollowUpDays int `env:"REMIND_FOLLOW_UP_DAYS" envDefault:"30"`
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
package config
