package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat-system/config"
	"chat-system/internal/handler"
	"chat-system/internal/repository"
	"chat-system/internal/service"
	"chat-system/internal/store"
	"chat-system/pkg/logger"
	"chat-system/pkg/response"
	"chat-system/pkg/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	cfg := config.LoadConfig()

	// 2. 初始化日志系统
	log := logger.InitLogger(cfg.Log)
	defer log.Sync()

	log.Info("=== 聊天系统账户服务启动 ===")
	log.Info("服务器配置信息",
		zap.String("port", cfg.Server.Port),
		zap.String("store_path", cfg.Store.Path()),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 初始化用户数据存储
	fileStore, err := store.InitStore(cfg.Store)
	if err != nil {
		log.Fatal("用户数据存储初始化失败", zap.Error(err))
	}
	log.Info("用户数据存储就绪", zap.String("path", fileStore.Path()))

	// 3.1 初始化业务服务
	userRepo := repository.NewUserRepository(fileStore)
	userSvc := service.NewUserService(userRepo)
	userSvc.SetPresenceNotifier(websocket.GetManager())
	userHandler := handler.NewUserHandler(userSvc, log)

	// 4. 设置Gin模式
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 5. 创建Gin路由
	router := gin.New()

	// 使用中间件
	router.Use(logger.RequestIDMiddleware())   // 请求ID中间件
	router.Use(logger.LoggerMiddleware())      // 自定义日志中间件
	router.Use(logger.ErrorLoggerMiddleware()) // 错误日志中间件

	// 6. 设置基础路由
	setupBasicRoutes(router)

	// 6.1 绑定账户路由
	auth := router.Group("/auth")
	{
		auth.POST("/register", userHandler.Register)
		auth.POST("/login", userHandler.Login)
		auth.POST("/logout", userHandler.Logout)
	}

	// 用户目录
	router.GET("/users", userHandler.ListUsers)

	// WebSocket在线状态订阅
	router.GET("/ws", websocket.WsHandler)

	// 7. 创建HTTP服务器
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 8. 启动HTTP服务器
	go func() {
		log.Info("HTTP服务器启动", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP服务器启动失败", zap.Error(err))
		}
	}()

	// 9. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务器...")

	// 设置关闭超时
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 关闭HTTP服务器
	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP服务器关闭失败", zap.Error(err))
	}

	log.Info("服务器已安全关闭")
}

// setupBasicRoutes 设置基础路由
func setupBasicRoutes(router *gin.Engine) {
	// 健康检查
	// 完整url为：http://localhost:8080/health
	router.GET("/health", func(c *gin.Context) {
		status := "ok"
		if err := store.HealthCheck(); err != nil {
			status = "store-down"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  status,
			"message": "账户服务运行状态",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	// 根路径
	// 完整url为：http://localhost:8080/
	router.GET("/", func(c *gin.Context) {
		response.Success(c, "欢迎使用聊天系统账户服务", nil)
	})
}
