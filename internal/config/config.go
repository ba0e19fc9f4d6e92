package config

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env             string     `yaml:"env" env:"ENV" env-default:"production"`
	HTTPServer      HTTPServer `yaml:"http_server" env-required:"true"`
	MinIO           MinIO      `yaml:"minio" env-required:"true"`
	Mongo           Mongo      `yaml:"mongo" env-required:"true"`
	Redis           Redis      `yaml:"redis"`
	Media           Media      `yaml:"media"`
	JWTSecret       string     `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	GalleryPassword string     `yaml:"gallery_password" env:"GALLERY_PASSWORD" env-required:"true"`
}

type HTTPServer struct {
	Address string `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	// Uploads can be very large and clients very slow, so the whole request
	// lifecycle gets hour-scale timeouts.
	ReadTimeout  time.Duration `yaml:"read_timeout" env-default:"1h"`
	WriteTimeout time.Duration `yaml:"write_timeout" env-default:"1h"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env-default:"1h"`
}

type MinIO struct {
	Endpoint        string `yaml:"endpoint" env:"MINIO_ENDPOINT" env-required:"true"`
	AccessKeyID     string `yaml:"access_key_id" env:"MINIO_ACCESS_KEY" env-required:"true"`
	SecretAccessKey string `yaml:"secret_access_key" env:"MINIO_SECRET_KEY" env-required:"true"`
	BucketName      string `yaml:"bucket_name" env:"MINIO_BUCKET" env-default:"gallery"`
	Region          string `yaml:"region" env:"MINIO_REGION" env-default:"us-east-1"`
	UseSSL          bool   `yaml:"use_ssl" env:"MINIO_USE_SSL" env-default:"false"`
	// Optional CDN / reverse-proxy base for public object URLs. When empty
	// the URL is derived from the endpoint.
	PublicBaseURL string `yaml:"public_base_url" env:"MINIO_PUBLIC_BASE_URL"`
}

type Mongo struct {
	URI      string `yaml:"uri" env:"MONGO_URI" env-default:"mongodb://localhost:27017"`
	Database string `yaml:"database" env:"MONGO_DATABASE" env-default:"gallery"`
}

type Redis struct {
	Address  string `yaml:"address" env:"REDIS_ADDRESS" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Media struct {
	MaxFileSize     int64 `yaml:"max_file_size" env-default:"5368709120"` // 5GB
	MaxBatchFiles   int   `yaml:"max_batch_files" env-default:"100"`
	PresignedURLTTL int   `yaml:"presigned_url_ttl" env-default:"3600"` // seconds
}

func MustLoad() *Config {
	var configPath string

	configPath = os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to config file")
		flag.Parse()
		configPath = *flags

		if configPath == "" {
			log.Fatal("config path must be provided")
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist at path: %s", configPath)
	}

	var cfg Config

	err := cleanenv.ReadConfig(configPath, &cfg)

	if err != nil {
		log.Fatalf("failed to read config: %s", err)
	}

	return &cfg
}
