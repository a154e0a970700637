package server

import (
	"time"

	"shopapp/internal/config"
	"shopapp/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// New はechoを組み立てる。起動はmainに任せる
func New(
	cfg config.Config,
	log *logrus.Logger,
	authH *handler.AuthHandler,
	productH *handler.ProductHandler,
	cartH *handler.CartHandler,
	uploadsDir string,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(requestLogger(log))

	RegisterRoutes(e, cfg, authH, productH, cartH)

	// localドライバのときだけアップロード画像を静的配信
	if uploadsDir != "" {
		e.Static("/uploads", uploadsDir)
	}

	return e
}

// リクエスト1件につき1行のアクセスログ
func requestLogger(log *logrus.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			log.WithFields(logrus.Fields{
				"method":  c.Request().Method,
				"path":    c.Request().URL.Path,
				"status":  c.Response().Status,
				"latency": time.Since(start).String(),
			}).Info("request")

			return err
		}
	}
}
