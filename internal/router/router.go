package router

import (
	"net/http"
	"time"

	"breadit/internal/handlers"
	"breadit/internal/middleware"
	"breadit/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const sessionName = "breadit_session"

// Deps is everything the routes need.
type Deps struct {
	DB         *gorm.DB
	Votes      *services.VoteService
	Posts      *services.PostService
	Comments   *services.CommentService
	Subreddits *services.SubredditService
	Users      *services.UserService

	SessionSecret string
	JWTSecret     string
	TokenTTL      time.Duration
	CorsOrigins   []string
	PageSize      int
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Middleware
	r.Use(middleware.RequestID())
	r.Use(cors.New(corsConfig(d.CorsOrigins)))
	r.Use(sessions.Sessions(sessionName, cookie.NewStore([]byte(d.SessionSecret))))
	r.Use(middleware.LoadUser(d.DB, []byte(d.JWTSecret)))

	// Handlers
	authHandler := handlers.NewAuthHandler(d.Users, []byte(d.JWTSecret), d.TokenTTL)
	voteHandler := handlers.NewVoteHandler(d.Votes)
	postHandler := handlers.NewPostHandler(d.Posts, d.Comments, d.PageSize)
	subredditHandler := handlers.NewSubredditHandler(d.Subreddits, d.Posts, d.PageSize)
	userHandler := handlers.NewUserHandler(d.Users)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// 公共路由 (Public Routes)
	api.GET("/posts", postHandler.List)                  // 帖子列表，登录用户看订阅的社区
	api.GET("/posts/:id", postHandler.Detail)            // 帖子详情，优先读热帖缓存
	api.GET("/posts/:id/comments", postHandler.Comments) // 评论树
	api.GET("/r/:slug", subredditHandler.Show)           // 社区主页

	api.POST("/auth/register", authHandler.Register) // 注册
	api.POST("/auth/login", authHandler.Login)       // 登录
	api.POST("/auth/logout", authHandler.Logout)     // 退出登录

	// 受保护路由 (Protected Routes)
	authorized := api.Group("")
	authorized.Use(middleware.RequireUser())
	{
		authorized.GET("/me", userHandler.Me)                     // 当前用户
		authorized.PATCH("/username", userHandler.UpdateUsername) // 修改用户名

		authorized.POST("/subreddit", subredditHandler.Create)                  // 创建社区
		authorized.POST("/subreddit/subscribe", subredditHandler.Subscribe)     // 订阅
		authorized.POST("/subreddit/unsubscribe", subredditHandler.Unsubscribe) // 取消订阅

		authorized.POST("/subreddit/post/create", postHandler.Create)             // 发布帖子
		authorized.PATCH("/subreddit/post/vote", voteHandler.VotePost)            // 帖子投票
		authorized.PATCH("/subreddit/post/comment", postHandler.CreateComment)    // 发表评论
		authorized.PATCH("/subreddit/post/comment/vote", voteHandler.VoteComment) // 评论投票
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Retry-After", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		// credentials 不能和 "*" 一起使用，回显请求的 Origin
		cfg.AllowOriginFunc = func(origin string) bool { return true }
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
