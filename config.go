package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Port     int
	Database PostgresConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Redis    RedisConfig
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

type AuthConfig struct {
	Pepper  string
	HMACKey string
}

// StorageConfig selects the media blob backend. Backend is "disk" or "s3".
type StorageConfig struct {
	Backend   string
	Dir       string
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// RedisConfig enables the tweet cache when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
}

// ConnectionInfo builds the postgres dsn.
func (pc PostgresConfig) ConnectionInfo() string {
	if pc.Password == "" {
		return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable",
			pc.Host, pc.Port, pc.User, pc.Name)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		pc.Host, pc.Port, pc.User, pc.Password, pc.Name)
}

// LoadConfig reads config.yml if one is present and falls back to the
// default dev setup otherwise.
func LoadConfig() Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("http.port", 1111)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.name", "chirper")
	viper.SetDefault("auth.pepper", "secret-random-string")
	viper.SetDefault("auth.hmac_key", "secret-hmac-key")
	viper.SetDefault("storage.backend", "disk")
	viper.SetDefault("storage.dir", "media")
	viper.SetDefault("storage.use_ssl", false)
	viper.SetDefault("redis.addr", "")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			logrus.WithError(err).Fatal("could not read config file")
		}
		logrus.Info("no config file found, using the default dev setup")
	} else {
		logrus.WithField("file", viper.ConfigFileUsed()).Info("loaded config file")
	}

	return Config{
		Port: viper.GetInt("http.port"),
		Database: PostgresConfig{
			Host:     viper.GetString("database.host"),
			Port:     viper.GetInt("database.port"),
			User:     viper.GetString("database.user"),
			Password: viper.GetString("database.password"),
			Name:     viper.GetString("database.name"),
		},
		Auth: AuthConfig{
			Pepper:  viper.GetString("auth.pepper"),
			HMACKey: viper.GetString("auth.hmac_key"),
		},
		Storage: StorageConfig{
			Backend:   viper.GetString("storage.backend"),
			Dir:       viper.GetString("storage.dir"),
			Endpoint:  viper.GetString("storage.endpoint"),
			AccessKey: viper.GetString("storage.access_key"),
			SecretKey: viper.GetString("storage.secret_key"),
			UseSSL:    viper.GetBool("storage.use_ssl"),
			Bucket:    viper.GetString("storage.bucket"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
		},
	}
}
