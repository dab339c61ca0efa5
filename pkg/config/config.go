package config

import (
	"github.com/kelseyhightower/envconfig"

	"github.com/wearvault/storefront-service/pkg/tls"
)

type Config struct {
	Port             string `envconfig:"PORT" default:"8080"`
	AWSRegion        string `envconfig:"AWS_REGION" default:"ap-northeast-2"`
	ProductTableName string `envconfig:"PRODUCT_TABLE_NAME" default:"storefront-products"`
	UserTableName    string `envconfig:"USER_TABLE_NAME" default:"storefront-users"`
	OrderTableName   string `envconfig:"ORDER_TABLE_NAME" default:"storefront-orders"`
	KafkaEnabled     bool   `envconfig:"KAFKA_ENABLED" default:"false"`
	KafkaBrokers     string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaTopic       string `envconfig:"KAFKA_TOPIC" default:"order-events"`
	JWTSecret        string `envconfig:"JWT_SECRET" default:"dev-only-secret"`
	JWTTTLHours      int    `envconfig:"JWT_TTL_HOURS" default:"24"`
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info"`

	TLS tls.TLSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
