package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/database"
)

// KafkaConfig holds broker settings.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// JWTConfig holds session token settings.
type JWTConfig struct {
	Secret        string
	SessionTTL    time.Duration
	PersistentTTL time.Duration
}

// PhotoConfig selects and configures the Photo Store backend.
type PhotoConfig struct {
	Driver            string
	Root              string
	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3PathStyle       bool
	S3AccessKey       string
	S3SecretKey       string
	RejectUnsupported bool
}

// MailConfig configures the confirmation email sender.
type MailConfig struct {
	SMTPURL       string
	From          string
	PublicBaseURL string
}

// ServiceConfig holds all configuration for the kennel service.
type ServiceConfig struct {
	Port                    string
	AppEnv                  string
	DBConfig                database.Config
	JWTConfig               JWTConfig
	KafkaConfig             KafkaConfig
	PhotoConfig             PhotoConfig
	MailConfig              MailConfig
	LookupCacheTTL          time.Duration
	RequireConfirmedAccount bool
	MigrationsDir           string
}

// Load reads configuration from KENNEL_* environment variables and an
// optional config.yaml in the working directory.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("KENNEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service_port", ":8080")
	v.SetDefault("app_env", "development")
	v.SetDefault("db_driver", database.DriverPostgres)
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "postgres")
	v.SetDefault("db_name", "kennel")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("db_path", "kennel.db")
	v.SetDefault("jwt_secret", "dev-secret-change-me")
	v.SetDefault("jwt_session_ttl", 12*time.Hour)
	v.SetDefault("jwt_persistent_ttl", 14*24*time.Hour)
	v.SetDefault("kafka_brokers", "localhost:9092")
	v.SetDefault("kafka_group_prefix", "kennel-")
	v.SetDefault("photo_driver", "fs")
	v.SetDefault("photo_root", "wwwroot/images")
	v.SetDefault("photo_s3_region", "us-east-1")
	v.SetDefault("photo_reject_unsupported", true)
	v.SetDefault("lookup_cache_ttl", time.Duration(0))
	v.SetDefault("mail_from", "no-reply@kennel.local")
	v.SetDefault("public_base_url", "http://localhost:8080")
	v.SetDefault("require_confirmed_account", true)
	v.SetDefault("migrations_dir", "migrations")
}

func fromViper(v *viper.Viper) (*ServiceConfig, error) {
	cfg := &ServiceConfig{
		Port:   v.GetString("service_port"),
		AppEnv: v.GetString("app_env"),
		DBConfig: database.Config{
			Driver: v.GetString("db_driver"),
			Postgres: database.PostgresConfig{
				Host:     v.GetString("db_host"),
				Port:     v.GetString("db_port"),
				User:     v.GetString("db_user"),
				Password: v.GetString("db_password"),
				DBName:   v.GetString("db_name"),
				SSLMode:  v.GetString("db_sslmode"),
			},
			SQLitePath: v.GetString("db_path"),
		},
		JWTConfig: JWTConfig{
			Secret:        v.GetString("jwt_secret"),
			SessionTTL:    v.GetDuration("jwt_session_ttl"),
			PersistentTTL: v.GetDuration("jwt_persistent_ttl"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     splitList(v.GetString("kafka_brokers")),
			GroupPrefix: v.GetString("kafka_group_prefix"),
		},
		PhotoConfig: PhotoConfig{
			Driver:            v.GetString("photo_driver"),
			Root:              v.GetString("photo_root"),
			S3Bucket:          v.GetString("photo_s3_bucket"),
			S3Region:          v.GetString("photo_s3_region"),
			S3Endpoint:        v.GetString("photo_s3_endpoint"),
			S3PathStyle:       v.GetBool("photo_s3_path_style"),
			S3AccessKey:       v.GetString("photo_s3_access_key"),
			S3SecretKey:       v.GetString("photo_s3_secret_key"),
			RejectUnsupported: v.GetBool("photo_reject_unsupported"),
		},
		MailConfig: MailConfig{
			SMTPURL:       v.GetString("smtp_url"),
			From:          v.GetString("mail_from"),
			PublicBaseURL: strings.TrimRight(v.GetString("public_base_url"), "/"),
		},
		LookupCacheTTL:          v.GetDuration("lookup_cache_ttl"),
		RequireConfirmedAccount: v.GetBool("require_confirmed_account"),
		MigrationsDir:           v.GetString("migrations_dir"),
	}

	if cfg.AppEnv != "development" && cfg.JWTConfig.Secret == "dev-secret-change-me" {
		return nil, fmt.Errorf("KENNEL_JWT_SECRET must be set outside development")
	}
	if cfg.PhotoConfig.Driver == "s3" && cfg.PhotoConfig.S3Bucket == "" {
		return nil, fmt.Errorf("KENNEL_PHOTO_S3_BUCKET is required for the s3 photo driver")
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
