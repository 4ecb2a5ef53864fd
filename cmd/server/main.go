package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"breadit/internal/cache"
	"breadit/internal/config"
	"breadit/internal/db"
	"breadit/internal/router"
	"breadit/internal/services"
	"breadit/internal/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize Database
	gdb, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// 热帖缓存：redis 不可用时只记录日志，投票照常进行
	redisClient := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	store := cache.NewRedisStore(redisClient, cfg.HotPostTTL)
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := store.Ping(pingCtx); err != nil {
		log.Printf("Redis at %s is not reachable, hot post cache degraded: %v", cfg.RedisAddr, err)
	}
	cancel()

	dispatcher := services.NewCacheDispatcher(store, cfg.CacheFlushEvery)
	dispatcher.Start()

	comments := services.NewCommentService(gdb, utils.NewLocalCache(1000), cfg.CommentCacheTTL)

	r := gin.Default()
	router.RegisterRoutes(r, router.Deps{
		DB:            gdb,
		Votes:         services.NewVoteService(gdb, dispatcher, comments, cfg.CacheAfterUpvotes),
		Posts:         services.NewPostService(gdb, store),
		Comments:      comments,
		Subreddits:    services.NewSubredditService(gdb),
		Users:         services.NewUserService(gdb),
		SessionSecret: cfg.SessionSecret,
		JWTSecret:     cfg.JWTSecret,
		TokenTTL:      cfg.TokenTTL,
		CorsOrigins:   cfg.CorsOrigins,
		PageSize:      cfg.PaginationResults,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("Breadit server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// 等待队列中的快照写完再关闭 redis
	dispatcher.Stop()
	if err := redisClient.Close(); err != nil {
		log.Printf("Failed to close redis: %v", err)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		sqlDB.Close()
	}
	log.Println("Server exited")
}
