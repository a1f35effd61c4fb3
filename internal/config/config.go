package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env         string
	Port        string
	DatabaseURL string
	RedisURL    string // optional; enables the attachment URL cache when set

	// Credentials the feed provider sends via HTTP Basic Auth.
	FeedUsername string
	FeedPassword string

	// Whether a delete notification removes the listing from the site.
	RemoveListingsOnDelete bool

	SiteURL   string // base URL used to build listing permalinks
	UploadDir string // directory attachment files are written to
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL")
	if env == "test" && viper.GetString("DATABASE_URL_TEST") != "" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}

	removeOnDelete := true
	if viper.IsSet("REMOVE_LISTINGS_ON_DELETE") {
		removeOnDelete = viper.GetBool("REMOVE_LISTINGS_ON_DELETE")
	}

	uploadDir := viper.GetString("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}

	return &Config{
		Env:                    env,
		Port:                   port,
		DatabaseURL:            dbURL,
		RedisURL:               viper.GetString("REDIS_URL"),
		FeedUsername:           viper.GetString("AUTOTELEX_USERNAME"),
		FeedPassword:           viper.GetString("AUTOTELEX_PASSWORD"),
		RemoveListingsOnDelete: removeOnDelete,
		SiteURL:                strings.TrimRight(viper.GetString("SITE_URL"), "/"),
		UploadDir:              uploadDir,
	}, nil
}
