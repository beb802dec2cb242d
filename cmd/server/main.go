package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/contentpilot/configs"
	"github.com/maheshrc27/contentpilot/internal/api/handlers"
	"github.com/maheshrc27/contentpilot/internal/api/middleware"
	"github.com/maheshrc27/contentpilot/internal/graph"
	job "github.com/maheshrc27/contentpilot/internal/jobs"
	"github.com/maheshrc27/contentpilot/internal/queue"
	"github.com/maheshrc27/contentpilot/internal/repository"
	"github.com/maheshrc27/contentpilot/internal/service"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	graphClient := graph.New(graph.WithBaseURL(cfg.GraphAPIBase))

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	socialAccountRepo := repository.NewSocialAccountRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	usageRepo := repository.NewUsageLogRepository(db)

	authService := service.NewAuthService(*cfg, userRepo)
	userService := service.NewUserService(userRepo)
	storageService := service.NewStorageService(*cfg)
	postService := service.NewPostService(postRepo, storageService)
	instagramService := service.NewInstagramService(*cfg, graphClient, socialAccountRepo)
	accountService := service.NewAccountService(socialAccountRepo)
	publishService := service.NewPublishService(*cfg, graphClient, postRepo, socialAccountRepo, historyRepo)
	generationService := service.NewGenerationService(*cfg, postRepo, storageService)
	usageService := service.NewUsageService(usageRepo)
	historyService := service.NewHistoryService(historyRepo)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	auth := handlers.NewAuthHandler(*cfg, authService)
	app.Get("/login", auth.Login)
	app.Get("/login/callback", auth.LoginCallbackHandler)

	instagram := handlers.NewInstagramHandler(*cfg, instagramService)
	app.Get("/auth/instagram", instagram.AddAccount)
	app.Get("/auth/instagram/callback", instagram.Callback)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	api.Post("/logout", auth.Logout)

	user := handlers.NewUserHandler(userService)
	api.Get("/user/info", user.GetUserInfo)
	api.Post("/user/remove", user.RemoveUser)

	account := handlers.NewAccountHandler(accountService)
	api.Get("/accounts", account.ListAccounts)
	api.Post("/accounts/set-active", account.SetActive)

	post := handlers.NewPostHandler(postService, publishService, client)
	api.Post("/posts/save", post.SavePost)
	api.Get("/posts", post.ListPosts)
	api.Post("/posts/update", post.UpdatePost)
	api.Post("/posts/remove", post.RemovePost)
	api.Post("/posts/publish", post.PublishPost)
	api.Post("/posts/auto-post", post.AutoPost)

	generate := handlers.NewGenerateHandler(generationService, usageService)
	api.Post("/generate/ideas", generate.GenerateIdeas)
	api.Post("/generate/caption", generate.GenerateCaption)
	api.Post("/generate/image", generate.GenerateImage)
	api.Post("/generate/video", generate.GenerateVideo)

	history := handlers.NewHistoryHandler(historyService)
	api.Get("/history", history.ListHistory)

	// cron jobs
	usageCleanupJob := job.NewUsageCleanupJob(usageRepo)

	//queue
	queueW := queue.NewQueue(publishService)

	c := cron.New()
	c.AddFunc("@every 24h00m00s", usageCleanupJob.Cleanup)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeAutoPost, queueW.HandleAutoPostTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
