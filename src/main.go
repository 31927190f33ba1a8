package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ideas-jar/src/config"
	"ideas-jar/src/database"
	"ideas-jar/src/infrastructure/improver"
	"ideas-jar/src/infrastructure/repository"
	"ideas-jar/src/interface/handler"
	"ideas-jar/src/logger"
	"ideas-jar/src/middleware"
	"ideas-jar/src/routes"
	"ideas-jar/src/storage"
	"ideas-jar/src/usecase"
	"ideas-jar/src/validator"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// 設定を読み込み
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("設定の読み込みに失敗")
	}

	// ロガーを初期化
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.Directory); err != nil {
		logrus.WithError(err).Fatal("ロガーの初期化に失敗")
	}
	defer logger.CloseLogger()

	logger.Log.Info("アプリケーションを開始しています")

	// データベース接続
	db, err := database.NewDB(&database.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger.Log)
	if err != nil {
		logger.Log.WithError(err).Fatal("データベース接続に失敗")
	}
	defer db.Close()

	if err := db.EnsureSchema(context.Background()); err != nil {
		logger.Log.WithError(err).Fatal("スキーマの作成に失敗")
	}

	// 依存関係を組み立て
	ideaRepo := repository.NewIdeaRepository(db, logger.Log)
	ideaUsecase := usecase.NewIdeaUsecase(ideaRepo, improver.NewPlaceholderImprover(cfg.Improver.Prefix))
	ideaHandler := handler.NewIdeaHandler(ideaUsecase, validator.NewCustomValidator(), logger.Log)
	systemHandler := handler.NewSystemHandler(db, logger.Log)

	// ログアーカイブ（設定が有効な場合）
	archiveCtx, stopArchive := context.WithCancel(context.Background())
	archiveDone := startArchiver(archiveCtx, cfg)

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))
	if cfg.RateLimit.Enabled {
		r.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)))
	}
	routes.SetupRoutes(r, ideaHandler, systemHandler, logger.Log)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.WithField("port", cfg.Server.Port).Info("サーバーを開始します")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.WithError(err).Fatal("サーバーの起動に失敗")
		}
	}()

	// グレースフルシャットダウン
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Log.Info("シャットダウンシグナルを受信しました")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("サーバーのシャットダウンに失敗")
	}

	stopArchive()
	<-archiveDone

	logger.Log.Info("サーバーを停止しました")
}

// startArchiver starts the S3 log archiver when enabled. The returned channel
// is closed once the archiver has finished its final upload.
func startArchiver(ctx context.Context, cfg *config.Config) <-chan struct{} {
	done := make(chan struct{})
	if !cfg.Log.UploadEnabled || cfg.Log.Directory == "" {
		close(done)
		return done
	}

	client, err := storage.NewS3Client(&storage.S3Config{
		Endpoint:        cfg.S3.Endpoint,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		Region:          cfg.S3.Region,
		Bucket:          cfg.S3.Bucket,
		UseSSL:          cfg.S3.UseSSL,
	})
	if err != nil {
		logger.Log.WithError(err).Error("S3アップローダーの初期化に失敗")
		close(done)
		return done
	}

	archiver := storage.NewLogArchiver(client, cfg.S3.Bucket, storage.ArchiveConfig{
		Directory:  cfg.Log.Directory,
		Interval:   cfg.Log.UploadInterval,
		MaxAge:     cfg.Log.UploadMaxAge,
		ActiveFile: logger.GetCurrentLogFile,
	}, logger.Log)

	go func() {
		defer close(done)
		archiver.Run(ctx)
	}()
	return done
}
