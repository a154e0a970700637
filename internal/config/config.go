package config

import (
	"fmt"
	"os"
	"strconv"
)

// Configはアプリ全体の設定
// 起動時に1回だけ組み立てて、以降は読み取り専用で各層に渡す
type Config struct {
	Port string // サーバーポート（8080）

	DatabaseURL      string // あれば最優先で使う接続文字列
	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）
	PostgresSSLMode  string // disable/require

	JWTSecret string // JWT署名シークレット

	GoEnv string // dev/prod
	FEURL string // フロントURL（リセットURLの組み立てに使う）

	UploadDriver string // local / gcs
	UploadDir    string // localドライバの保存先ディレクトリ
	GCSBucket    string // gcsドライバのバケット名
	GCSPrefix    string // gcsドライバのオブジェクトprefix
	GCSCredsFile string // サービスアカウントJSON（空ならADC）

	MailDriver    string // log / mailgun
	MailgunDomain string
	MailgunAPIKey string
	MailgunSender string
}

// Loadは環境変数から設定を組み立てる
func Load() (Config, error) {
	cfg := Config{
		Port: getenv("PORT", "8080"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "shopapp"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		GoEnv: getenv("GO_ENV", "dev"),
		FEURL: getenv("FE_URL", "http://localhost:3000"),

		UploadDriver: getenv("UPLOAD_DRIVER", "local"),
		UploadDir:    getenv("UPLOAD_DIR", "uploads"),
		GCSBucket:    os.Getenv("GCS_BUCKET"),
		GCSPrefix:    getenv("GCS_PREFIX", "shopapp-products"),
		GCSCredsFile: os.Getenv("GCS_CREDENTIALS_FILE"),

		MailDriver:    getenv("MAIL_DRIVER", "log"),
		MailgunDomain: os.Getenv("MAILGUN_DOMAIN"),
		MailgunAPIKey: os.Getenv("MAILGUN_API_KEY"),
		MailgunSender: os.Getenv("MAILGUN_SENDER"),
	}

	pgPort, err := atoiDefault("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	cfg.PostgresPort = pgPort

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	switch cfg.UploadDriver {
	case "local":
	case "gcs":
		if cfg.GCSBucket == "" {
			return Config{}, fmt.Errorf("GCS_BUCKET is required when UPLOAD_DRIVER=gcs")
		}
	default:
		return Config{}, fmt.Errorf("UPLOAD_DRIVER must be local or gcs")
	}
	switch cfg.MailDriver {
	case "log":
	case "mailgun":
		if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
			return Config{}, fmt.Errorf("MAILGUN_DOMAIN, MAILGUN_API_KEY and MAILGUN_SENDER are required when MAIL_DRIVER=mailgun")
		}
	default:
		return Config{}, fmt.Errorf("MAIL_DRIVER must be log or mailgun")
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}
