package main

import (
	"context"

	"shopapp/internal/config"
	"shopapp/internal/domain/model"
	"shopapp/internal/handler"
	"shopapp/internal/infra/db"
	infraRepo "shopapp/internal/infra/repository"
	"shopapp/internal/logger"
	"shopapp/internal/mailer"
	"shopapp/internal/server"
	"shopapp/internal/upload"
	"shopapp/internal/usecase"
	"shopapp/internal/validator"

	"github.com/joho/godotenv"
)

func main() {
	// .envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.GoEnv)

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		panic(err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
	); err != nil {
		panic(err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)

	//画像ストレージ（local or GCS）
	var storage upload.Storage
	uploadsDir := ""
	switch cfg.UploadDriver {
	case "gcs":
		gcs, err := upload.NewGCSStorage(context.Background(), cfg.GCSBucket, cfg.GCSPrefix, cfg.GCSCredsFile)
		if err != nil {
			panic(err)
		}
		storage = gcs
	default:
		local, err := upload.NewLocalStorage(cfg.UploadDir)
		if err != nil {
			panic(err)
		}
		storage = local
		uploadsDir = local.Dir()
	}

	//リセットメール係（dev: ログ / 本番: Mailgun）
	var resetMailer mailer.ResetMailer
	if cfg.MailDriver == "mailgun" {
		resetMailer = mailer.NewMailgunMailer(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	} else {
		resetMailer = mailer.NewLogMailer(log)
	}

	//Usecase生成
	authValidator := validator.NewAuthValidator(userRepo)
	authUC := usecase.NewAuthUsecase(cfg, userRepo, authValidator, resetMailer, log)
	productUC := usecase.NewProductUsecase(productRepo, userRepo, storage, log)
	cartUC := usecase.NewCartUsecase(cartRepo, cartRepo, productRepo)

	//Handler生成
	authH := handler.NewAuthHandler(authUC, cfg)
	productH := handler.NewProductHandler(productUC)
	cartH := handler.NewCartHandler(cartUC)

	//Server起動
	e := server.New(cfg, log, authH, productH, cartH, uploadsDir)

	log.WithField("port", cfg.Port).Info("server starting")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
