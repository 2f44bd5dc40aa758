package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/xiebiao/bookcatalog/docs" // swagger文档注册
	appbook "github.com/xiebiao/bookcatalog/internal/application/book"
	appuser "github.com/xiebiao/bookcatalog/internal/application/user"
	"github.com/xiebiao/bookcatalog/internal/domain/asset"
	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/internal/domain/user"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/config"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/imaging"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/storage"
	"github.com/xiebiao/bookcatalog/internal/interface/http/handler"
	"github.com/xiebiao/bookcatalog/internal/interface/http/middleware"
	"github.com/xiebiao/bookcatalog/pkg/jwt"
	"github.com/xiebiao/bookcatalog/pkg/logger"
	"github.com/xiebiao/bookcatalog/pkg/metrics"
	"github.com/xiebiao/bookcatalog/pkg/mq"
	"github.com/xiebiao/bookcatalog/pkg/response"
	"github.com/xiebiao/bookcatalog/pkg/tracing"
)

// cleanupQueueSize 封面异步清理队列长度
const cleanupQueueSize = 128

// main 主程序入口
// 说明：手动依赖注入，组装顺序与wire.go中的ProviderSet一致
// Repository ← Service ← UseCase ← Handler
//
// @title                      BookCatalog API
// @version                    1.0
// @description                图书目录服务API：用户认证、图书生命周期、封面上传、评分
// @host                       localhost:8080
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 2. 初始化日志
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.EnableCaller); err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}

	// 3. 初始化指标
	metrics.InitMetrics()

	// 4. 初始化追踪（可选）
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			log.Fatalf("初始化追踪失败: %v", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				logger.L().WithError(err).Warn("追踪组件关闭失败")
			}
		}()
	}

	// 5. 初始化数据库与Redis
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 6. 封面存储链路：本地存储 → JPEG转码器 → 接入器/清理器
	localStore, err := storage.NewLocalStore(cfg.Storage.Dir, cfg.Storage.BaseURL)
	if err != nil {
		log.Fatalf("初始化封面存储失败: %v", err)
	}
	codec := imaging.NewJPEGCodec(cfg.Storage.JPEGQuality)
	ingestor := asset.NewIngestor(localStore, codec)
	cleaner := asset.NewCleaner(localStore, cleanupQueueSize)
	defer cleaner.Stop()

	// 7. 事件发布器：未启用MQ时退化为Noop（本地开发无需RabbitMQ）
	var publisher mq.EventPublisher
	if cfg.MQ.Enabled {
		p, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
		if err != nil {
			log.Fatalf("初始化消息队列失败: %v", err)
		}
		publisher = p
	} else {
		publisher = mq.NewNoopPublisher()
	}
	defer publisher.Close()

	// 8. 仓储与会话
	userRepo := mysql.NewUserRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	sessionStore := redis.NewSessionStore(redisClient)
	bestRatedCache := redis.NewBestRatedCache(redisClient)
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)

	// 9. 领域层
	userService := user.NewService(userRepo)
	bookService := book.NewService(bookRepo, ingestor, cleaner)

	// 10. 应用层
	registerUseCase := appuser.NewRegisterUseCase(userService)
	loginUseCase := appuser.NewLoginUseCase(userService, jwtManager, sessionStore)
	logoutUseCase := appuser.NewLogoutUseCase(sessionStore)
	createBookUseCase := appbook.NewCreateBookUseCase(bookService, publisher, bestRatedCache)
	getBookUseCase := appbook.NewGetBookUseCase(bookService)
	listBooksUseCase := appbook.NewListBooksUseCase(bookService)
	topRatedUseCase := appbook.NewTopRatedUseCase(bookService, bestRatedCache)
	updateBookUseCase := appbook.NewUpdateBookUseCase(bookService, bestRatedCache)
	deleteBookUseCase := appbook.NewDeleteBookUseCase(bookService, publisher, bestRatedCache)
	rateBookUseCase := appbook.NewRateBookUseCase(bookService, publisher, bestRatedCache)

	// 11. 接口层
	userHandler := handler.NewUserHandler(registerUseCase, loginUseCase, logoutUseCase)
	bookHandler := handler.NewBookHandler(
		createBookUseCase,
		getBookUseCase,
		listBooksUseCase,
		topRatedUseCase,
		updateBookUseCase,
		deleteBookUseCase,
		rateBookUseCase,
		cfg.Storage.MaxUploadBytes,
	)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)

	// 12. 初始化Gin引擎并注册路由
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.CORS(), middleware.Metrics())

	registerRoutes(r, cfg, userHandler, bookHandler, authMiddleware)

	// 13. 启动服务（支持优雅停机）
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.L().WithField("addr", addr).Info("服务启动")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("启动服务失败: %v", err)
		}
	}()

	// 等待终止信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.L().Info("收到终止信号，开始优雅停机")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.L().WithError(err).Error("优雅停机失败")
	}
	logger.L().Info("服务已停止")
}

// registerRoutes 注册路由
func registerRoutes(
	r *gin.Engine,
	cfg *config.Config,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Prometheus抓取端点
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 封面静态文件
	r.Static("/images", cfg.Storage.Dir)

	// API路由组
	v1 := r.Group("/api/v1")
	{
		// 用户模块
		users := v1.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
			users.POST("/logout", authMiddleware.RequireAuth(), userHandler.Logout)
		}

		// 图书模块
		books := v1.Group("/books")
		{
			// 公开接口
			books.GET("", bookHandler.List)
			books.GET("/bestrating", bookHandler.TopRated)
			books.GET("/:id", bookHandler.Get)

			// 需要登录
			books.POST("", authMiddleware.RequireAuth(), bookHandler.Create)
			books.PUT("/:id", authMiddleware.RequireAuth(), bookHandler.Update)
			books.DELETE("/:id", authMiddleware.RequireAuth(), bookHandler.Delete)
			books.POST("/:id/rating", authMiddleware.RequireAuth(), bookHandler.Rate)
		}
	}
}
