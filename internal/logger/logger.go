package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New は環境に合わせたlogrusロガーを作る。
// devはテキスト+Debug、それ以外はJSON+Info。
func New(env string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if env == "dev" {
		log.SetLevel(logrus.DebugLevel)
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	return log
}
