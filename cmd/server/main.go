package main

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"powerpulse/config"
	"powerpulse/controllers"
	"powerpulse/db"
	"powerpulse/middlewares"
	"powerpulse/routes"
	"powerpulse/services"
	"powerpulse/utils"
	"powerpulse/websocket"
)

func main() {
	cfg, err := config.LoadConfig("./config/config.yml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	utils.SetJWTSecret(cfg.Auth.JWTSecret)

	if err := db.ConnectMongoDB(cfg.Database.URI); err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Println("Connected to MongoDB")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.EnsureIndexes(ctx); err != nil {
		cancel()
		log.Fatalf("Failed to ensure indexes: %v", err)
	}
	cancel()

	// Seed initial catalog and development users
	utils.SeedExerciseTypes()
	utils.PopulateTestUsers()

	// Wire the core: stores, policy, completion service, fan-out
	userStore := db.NewUserStore()
	accessPolicy := services.NewAccessPolicy(userStore)
	progressService := services.NewProgressService(
		userStore,
		db.NewCatalog(),
		db.NewProgressLedger(),
		cfg.Progress.KeepLifetimePoints,
	)

	hub := websocket.NewHub()
	fanout := services.NewNotificationFanout(userStore, db.NewNotificationStore(), hub)
	fanout.Start(context.Background())

	controllers.Init(progressService, fanout, accessPolicy)

	router := setupRouter(cfg, accessPolicy, hub)
	port := strconv.Itoa(cfg.Server.Port)
	log.Printf("Server starting on port %s", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRouter(cfg *config.Config, policy *services.AccessPolicy, hub *websocket.Hub) *gin.Engine {
	router := gin.Default()

	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	router.OPTIONS("/*path", func(c *gin.Context) { c.Status(204) })

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "wsClients": hub.ClientCount()})
	})

	public := router.Group("/")

	auth := router.Group("/")
	auth.Use(middlewares.AuthMiddleware())

	admin := router.Group("/admin")
	admin.Use(middlewares.AuthMiddleware(), middlewares.AdminMiddleware(policy))

	routes.SetupUserRoutes(public, auth)
	routes.SetupExerciseRoutes(auth, admin)
	routes.SetupNotificationRoutes(auth)

	// The handler authenticates on its own: browser websocket clients can
	// only pass the token as a query parameter
	router.GET("/ws/events", websocket.EventsHandler(hub))

	return router
}
