//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// Wire在编译期生成依赖组装代码：
// Step 1: 编写本文件，定义Providers和Injector
// Step 2: 运行 `wire gen ./cmd/api`
// Step 3: Wire生成wire_gen.go，包含完整的依赖创建代码
//
// main.go中保留了等价的手动组装，两者的依赖链必须保持一致。

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"

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
	"github.com/xiebiao/bookcatalog/pkg/mq"
)

// infrastructureSet 基础设施层依赖
var infrastructureSet = wire.NewSet(
	config.Load,
	mysql.NewDB,
	redis.NewClient,
	provideLocalStore,
	provideJPEGCodec,
	providePublisher,
	wire.Bind(new(asset.Store), new(*storage.LocalStore)),
	wire.Bind(new(asset.Codec), new(*imaging.JPEGCodec)),
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,
	mysql.NewBookRepository,
)

// assetSet 封面资产链路
var assetSet = wire.NewSet(
	asset.NewIngestor,
	provideCleaner,
	wire.Bind(new(book.AssetIngestor), new(*asset.Ingestor)),
	wire.Bind(new(book.AssetReleaser), new(*asset.Cleaner)),
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	user.NewService,
	book.NewService,
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
	appbook.NewCreateBookUseCase,
	appbook.NewGetBookUseCase,
	appbook.NewListBooksUseCase,
	appbook.NewTopRatedUseCase,
	appbook.NewUpdateBookUseCase,
	appbook.NewDeleteBookUseCase,
	appbook.NewRateBookUseCase,
	wire.Bind(new(appbook.TopRatedCache), new(*redis.BestRatedCache)),
	redis.NewBestRatedCache,
)

// middlewareSet 中间件依赖
var middlewareSet = wire.NewSet(
	provideJWTManager,
	provideSessionStore,
	middleware.NewAuthMiddleware,
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	handler.NewUserHandler,
	provideBookHandler,
)

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideSessionStore 从Redis客户端创建Session存储
func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

// provideLocalStore 从配置创建本地封面存储
func provideLocalStore(cfg *config.Config) (*storage.LocalStore, error) {
	return storage.NewLocalStore(cfg.Storage.Dir, cfg.Storage.BaseURL)
}

// provideJPEGCodec 从配置创建JPEG转码器
func provideJPEGCodec(cfg *config.Config) *imaging.JPEGCodec {
	return imaging.NewJPEGCodec(cfg.Storage.JPEGQuality)
}

// provideCleaner 创建封面异步清理器
func provideCleaner(store asset.Store) *asset.Cleaner {
	return asset.NewCleaner(store, cleanupQueueSize)
}

// providePublisher 从配置创建事件发布器
// 未启用MQ时退化为Noop实现
func providePublisher(cfg *config.Config) (mq.EventPublisher, error) {
	if !cfg.MQ.Enabled {
		return mq.NewNoopPublisher(), nil
	}
	return mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
}

// provideBookHandler 创建图书处理器
// 上传大小上限取自配置，Wire无法注入裸int64，这里手动组装
func provideBookHandler(
	cfg *config.Config,
	createUseCase *appbook.CreateBookUseCase,
	getUseCase *appbook.GetBookUseCase,
	listUseCase *appbook.ListBooksUseCase,
	topRatedUseCase *appbook.TopRatedUseCase,
	updateUseCase *appbook.UpdateBookUseCase,
	deleteUseCase *appbook.DeleteBookUseCase,
	rateUseCase *appbook.RateBookUseCase,
) *handler.BookHandler {
	return handler.NewBookHandler(
		createUseCase,
		getUseCase,
		listUseCase,
		topRatedUseCase,
		updateUseCase,
		deleteUseCase,
		rateUseCase,
		cfg.Storage.MaxUploadBytes,
	)
}

// provideGinEngine 创建并配置Gin引擎
// 路由注册与main.go中的registerRoutes共用一份实现
func provideGinEngine(
	cfg *config.Config,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.CORS(), middleware.Metrics())

	registerRoutes(r, cfg, userHandler, bookHandler, authMiddleware)

	return r
}

// InitializeApp 初始化整个应用
// Wire会按依赖关系生成wire_gen.go中的组装代码
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		assetSet,
		domainSet,
		applicationSet,
		middlewareSet,
		handlerSet,
		provideGinEngine,
	)

	return nil, nil
}
