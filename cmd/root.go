package cmd

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/skillsight/internal/backend"
	"github.com/spigell/skillsight/internal/upload"
)

const (
	app = "skillsight"
)

type Config struct {
	API      *APIConfig      `mapstructure:"api"`
	Firebase *FirebaseConfig `mapstructure:"firebase"`
	Export   *ExportConfig   `mapstructure:"export"`
	Upload   *UploadConfig   `mapstructure:"upload"`
}

type APIConfig struct {
	BaseURL   string `mapstructure:"base-url"`
	Origin    string `mapstructure:"origin"`
	UserAgent string `mapstructure:"user-agent"`
	// Timeout of zero leaves requests to the transport.
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests-per-second"`
}

type FirebaseConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	ProjectID  string `mapstructure:"project-id"`
}

type ExportConfig struct {
	Dir          string    `mapstructure:"dir"`
	ShareCommand string    `mapstructure:"share-command"`
	S3           *S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Bucket        string `mapstructure:"bucket"`
	Region        string `mapstructure:"region"`
	Endpoint      string `mapstructure:"endpoint"`
	Prefix        string `mapstructure:"prefix"`
	AccessKeyFile string `mapstructure:"access-key-file"`
	SecretKeyFile string `mapstructure:"secret-key-file"`
}

type UploadConfig struct {
	MaxBytes int64 `mapstructure:"max-bytes"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "skillsight is a terminal client for SkillSight AI skill gap analysis",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	bindEnv("api.base-url", "SKILLSIGHT_API_BASE_URL", "VITE_API_BASE_URL")
	bindEnv("api.origin", "SKILLSIGHT_ORIGIN")
	bindEnv("firebase.api-key-file", "FIREBASE_API_KEY_FILE")
	bindEnv("firebase.project-id", "FIREBASE_PROJECT_ID")

	viper.SetDefault("api.base-url", backend.DefaultBaseURL)
	viper.SetDefault("api.origin", "http://localhost:5173")
	viper.SetDefault("upload.max-bytes", upload.DefaultMaxBytes)
	viper.SetDefault("export.s3.region", "auto")

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is skillsight.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("log-file", "", "write logs to this file instead of stderr")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("log-file", rootCmd.PersistentFlags().Lookup("log-file"))
}

func bindEnv(key string, envs ...string) {
	if err := viper.BindEnv(append([]string{key}, envs...)...); err != nil {
		log.Fatalf("binding %v environment variables: %v", envs, err)
	}
}

func initConfig() {
	// The real environment wins over .env files.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Everything has a default, so only an explicitly requested config file is mandatory.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.API == nil {
		config.API = &APIConfig{}
	}
	if config.Firebase == nil {
		config.Firebase = &FirebaseConfig{}
	}
	if config.Export == nil {
		config.Export = &ExportConfig{}
	}
	if config.Upload == nil {
		config.Upload = &UploadConfig{}
	}

	return config, nil
}
