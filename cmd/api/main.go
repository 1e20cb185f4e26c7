package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"township-rental-portal/internal/audit"
	"township-rental-portal/internal/config"
	"township-rental-portal/internal/database"
	"township-rental-portal/internal/handlers"
	"township-rental-portal/internal/models"
	"township-rental-portal/internal/notify"
	"township-rental-portal/internal/payments"
	"township-rental-portal/internal/ratelimit"
	"township-rental-portal/internal/scheduler"
	"township-rental-portal/internal/search"
)

var (
	pgDB         *database.DB
	gormDB       *database.GormDB
	searchClient *search.SearchClient
	appConfig    *config.Config
	rateLimiter  *ratelimit.RateLimiter
	appScheduler *scheduler.Scheduler
	verifyWorker *scheduler.VerificationWorker
	gateway      *payments.Gateway
	settlement   *payments.Settlement
	notifySvc    *notify.Service
)

func main() {
	// .env is optional; real deployments set env vars directly
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	configPath := getEnv("CONFIG_PATH", "/app/config/portal_config.yaml")
	var err error
	appConfig, err = config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: Failed to load config from %s: %v. Using defaults.", configPath, err)
		appConfig = config.DefaultConfig()
	} else {
		log.Printf("Loaded configuration from %s", configPath)
	}

	// Primary database: MySQL with GORM
	mysqlCfg := appConfig.Database.MySQL
	portStr := ""
	if mysqlCfg.Port > 0 {
		portStr = fmt.Sprintf("%d", mysqlCfg.Port)
	}

	gormDB, err = database.NewGormDB(
		getEnvOrConfig(mysqlCfg.Host, "DB_HOST", "mysql"),
		getEnvOrConfig(portStr, "DB_PORT", "3306"),
		getEnvOrConfig(mysqlCfg.User, "DB_USER", "portal_user"),
		getEnvOrConfig(mysqlCfg.Password, "DB_PASSWORD", "portal_pass"),
		getEnvOrConfig(mysqlCfg.Database, "DB_NAME", "portal_db"),
	)
	if err != nil {
		log.Fatalf("Failed to connect to MySQL: %v", err)
	}
	defer gormDB.Close()

	if err := gormDB.InitSchema(); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	// Optional Postgres listing mirror for read-only property browsing
	if appConfig.Database.MirrorListings {
		pgCfg := appConfig.Database.Postgres
		pgPortStr := ""
		if pgCfg.Port > 0 {
			pgPortStr = fmt.Sprintf("%d", pgCfg.Port)
		}

		pgDB, err = database.NewDB(
			getEnvOrConfig(pgCfg.Host, "PG_HOST", "db"),
			getEnvOrConfig(pgPortStr, "PG_PORT", "5432"),
			getEnvOrConfig(pgCfg.User, "PG_USER", "portal_user"),
			getEnvOrConfig(pgCfg.Password, "PG_PASSWORD", "portal_pass"),
			getEnvOrConfig(pgCfg.Database, "PG_NAME", "portal_listings"),
		)
		if err != nil {
			log.Printf("Warning: Listing mirror unavailable: %v", err)
			pgDB = nil
		} else {
			defer pgDB.Close()
			if err := pgDB.InitSchema(); err != nil {
				log.Printf("Warning: Failed to initialize mirror schema: %v", err)
			} else {
				log.Println("Postgres listing mirror enabled")
			}
		}
	}

	// Meilisearch
	if appConfig.Search.Meilisearch.Enabled {
		meilisearchHost := getEnvOrConfig(appConfig.Search.Meilisearch.Host, "MEILISEARCH_HOST", "http://meilisearch:7700")
		meilisearchKey := getEnvOrConfig(appConfig.Search.Meilisearch.APIKey, "MEILISEARCH_KEY", "masterKey123")
		searchClient = search.NewSearchClient(meilisearchHost, meilisearchKey)

		if err := searchClient.InitIndex(); err != nil {
			log.Printf("Warning: Failed to initialize search index: %v", err)
		}
	} else {
		log.Println("Search is disabled in configuration")
	}

	// Rate limiter
	rateLimiter = ratelimit.NewRateLimiter(
		appConfig.RateLimit.RequestsPerMinute,
		appConfig.RateLimit.RequestsPerHour,
		appConfig.RateLimit.Enabled,
	)
	log.Printf("Rate limiter initialized: %d req/min, %d req/hour (enabled: %v)",
		appConfig.RateLimit.RequestsPerMinute,
		appConfig.RateLimit.RequestsPerHour,
		appConfig.RateLimit.Enabled,
	)

	// Domain services
	auditSvc := audit.NewService(gormDB.DB())
	notifySvc = notify.NewService(gormDB.DB())
	gateway = payments.NewGateway(appConfig.Gateway)
	settlement = payments.NewSettlement(gormDB, auditSvc, notifySvc)
	if gateway.Enabled() {
		log.Printf("Ozow gateway enabled (site %s, test: %v)", appConfig.Gateway.SiteCode, appConfig.Gateway.IsTest)
	} else {
		log.Println("Ozow gateway is disabled; payment initiation will return 503")
	}

	// Background jobs
	appScheduler = scheduler.NewScheduler(gormDB, appConfig)
	if err := appScheduler.Start(); err != nil {
		log.Printf("Warning: Failed to start scheduler: %v", err)
	}
	defer appScheduler.Stop()

	pollInterval := time.Duration(appConfig.Scheduler.VerifyIntervalSeconds) * time.Second
	if pollInterval <= 0 {
		pollInterval = time.Minute
	}
	verifyWorker = scheduler.NewVerificationWorker(gormDB, gateway, settlement, pollInterval)
	verifyWorker.Start()
	defer verifyWorker.Stop()

	// Setup Gin router
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{getEnv("FRONTEND_ORIGIN", "http://localhost:3000")},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-User-ID"},
		AllowCredentials: true,
	}))

	// Public routes
	r.GET("/health", healthCheck)
	r.GET("/api/properties", getProperties)
	r.GET("/api/properties/:id", getProperty)
	r.GET("/api/townships", getTownships)
	r.GET("/api/search", searchProperties)
	r.GET("/api/filter", filterProperties)
	r.GET("/api/search/facets", getSearchFacets)

	// Favorites
	r.POST("/api/favorites", addFavorite)
	r.DELETE("/api/favorites/:propertyID", removeFavorite)
	r.GET("/api/favorites", getFavorites)

	// Viewing requests
	viewingHandler := handlers.NewViewingHandler(gormDB, notifySvc)
	r.POST("/api/viewings", rateLimitMiddleware(), viewingHandler.Create)
	r.GET("/api/viewings", viewingHandler.List)
	r.GET("/api/viewings/:id", viewingHandler.Get)
	r.PUT("/api/viewings/:id/:action", viewingHandler.Transition)

	// Applications
	applicationHandler := handlers.NewApplicationHandler(gormDB, notifySvc)
	r.POST("/api/applications", applicationHandler.Create)
	r.GET("/api/applications", applicationHandler.List)
	r.GET("/api/applications/:id", applicationHandler.Get)
	r.PUT("/api/applications/:id/:action", applicationHandler.Decide)

	// Leases
	leaseHandler := handlers.NewLeaseHandler(gormDB, auditSvc, notifySvc)
	r.POST("/api/leases", leaseHandler.Create)
	r.GET("/api/leases", leaseHandler.List)
	r.GET("/api/leases/:id", leaseHandler.Get)
	r.POST("/api/leases/:id/sign", leaseHandler.Sign)
	r.POST("/api/leases/:id/cancel", leaseHandler.Cancel)
	r.GET("/api/leases/:id/document", leaseHandler.Document)
	r.GET("/api/leases/:id/history", leaseHandler.History)

	// Payments
	paymentHandler := handlers.NewPaymentHandler(gormDB, gateway, settlement)
	r.GET("/api/payments/quote", paymentHandler.Quote)
	r.POST("/api/payments/initiate", rateLimitMiddleware(), paymentHandler.Initiate)
	r.POST("/api/payments/notify", paymentHandler.Webhook)
	r.GET("/api/payments", paymentHandler.History)
	r.GET("/api/payments/:id", paymentHandler.Get)

	// Notifications
	notificationHandler := handlers.NewNotificationHandler(gormDB, notifySvc)
	r.GET("/api/notifications", notificationHandler.List)
	r.PUT("/api/notifications/read-all", notificationHandler.MarkAllRead)
	r.PUT("/api/notifications/:id/read", notificationHandler.MarkRead)

	// Rate limiter stats endpoint
	r.GET("/api/ratelimit/stats", getRateLimitStats)

	// Listing mirror sync (requires Postgres mirror)
	r.POST("/api/mirror/sync", syncListingMirror)

	// Admin API routes (requires authentication in production)
	adminHandler := handlers.NewAdminHandler(gormDB, appScheduler, appConfig, searchClient, rateLimiter, gateway, verifyWorker)
	admin := r.Group("/api/admin")
	{
		admin.GET("/stats", adminHandler.GetStats)
		admin.GET("/events/recent", adminHandler.GetLeaseEvents)

		admin.POST("/scheduler/trigger", adminHandler.TriggerScheduler)

		admin.POST("/cleanup/run", adminHandler.RunCleanup)
		admin.GET("/cleanup/logs", adminHandler.GetCleanupStats)

		admin.POST("/search/reindex", adminHandler.ReindexSearch)
		admin.GET("/ratelimit/stats", adminHandler.GetRateLimitStats)
		admin.GET("/gateway/status", adminHandler.GetGatewayStatus)
		admin.GET("/worker/stats", adminHandler.GetWorkerStats)
	}
	log.Println("Admin API routes registered at /api/admin/*")

	port := getEnv("PORT", "8084")
	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now(),
	})
}

func getProperties(c *gin.Context) {
	params := database.ListParams{
		TownshipID:   c.Query("township"),
		PropertyType: c.Query("type"),
		Status:       c.Query("status"),
		SortBy:       c.DefaultQuery("sort", "newest"),
	}

	if minRentStr := c.Query("min_rent"); minRentStr != "" {
		if minRent, parseErr := strconv.ParseFloat(minRentStr, 64); parseErr == nil {
			params.MinRent = &minRent
		}
	}
	if maxRentStr := c.Query("max_rent"); maxRentStr != "" {
		if maxRent, parseErr := strconv.ParseFloat(maxRentStr, 64); parseErr == nil {
			params.MaxRent = &maxRent
		}
	}
	if bedroomsStr := c.Query("min_bedrooms"); bedroomsStr != "" {
		if bedrooms, parseErr := strconv.Atoi(bedroomsStr); parseErr == nil {
			params.MinBedrooms = &bedrooms
		}
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, parseErr := strconv.Atoi(limitStr); parseErr == nil && limit > 0 {
			params.Limit = limit
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if offset, parseErr := strconv.Atoi(offsetStr); parseErr == nil && offset >= 0 {
			params.Offset = offset
		}
	}

	// The mirror serves reads when explicitly requested, taking browse
	// load off the primary.
	if pgDB != nil && c.Query("source") == "mirror" {
		properties, err := pgDB.ListProperties(params)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"properties": properties,
			"total":      len(properties),
			"source":     "mirror",
		})
		return
	}

	start := time.Now()
	properties, total, err := gormDB.ListProperties(params)
	duration := time.Since(start)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Printf("[Listings] duration_ms=%d total=%d township=%s sort=%s",
		duration.Milliseconds(), total, params.TownshipID, params.SortBy)

	c.JSON(http.StatusOK, gin.H{
		"properties": properties,
		"total":      total,
		"limit":      params.Limit,
		"offset":     params.Offset,
	})
}

func getProperty(c *gin.Context) {
	id := c.Param("id")

	property, err := gormDB.GetPropertyByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	images, _ := gormDB.GetPropertyImages(id)

	c.JSON(http.StatusOK, gin.H{
		"property": property,
		"images":   images,
	})
}

func getTownships(c *gin.Context) {
	townships, err := gormDB.ListTownships()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"townships": townships, "count": len(townships)})
}

func searchProperties(c *gin.Context) {
	if searchClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Search is not configured"})
		return
	}

	query := c.Query("q")
	limitStr := c.DefaultQuery("limit", "20")

	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil {
		limit = 20
	}

	docs, err := searchClient.FilterSearch(search.FilterParams{
		Query:  query,
		Status: string(models.PropertyStatusAvailable),
		Limit:  limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"hits": docs, "count": len(docs)})
}

func filterProperties(c *gin.Context) {
	if searchClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Search is not configured"})
		return
	}

	limitStr := c.DefaultQuery("limit", "20")
	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil {
		limit = 20
	}

	params := search.FilterParams{
		Query:    c.Query("q"),
		Township: c.Query("township"),
		Status:   c.DefaultQuery("status", string(models.PropertyStatusAvailable)),
		SortBy:   c.Query("sort_by"),
		Limit:    limit,
	}

	if types := c.Query("types"); types != "" {
		params.PropertyTypes = strings.Split(types, ",")
	}
	if minRentStr := c.Query("min_rent"); minRentStr != "" {
		if minRent, err := strconv.ParseFloat(minRentStr, 64); err == nil {
			params.MinRent = &minRent
		}
	}
	if maxRentStr := c.Query("max_rent"); maxRentStr != "" {
		if maxRent, err := strconv.ParseFloat(maxRentStr, 64); err == nil {
			params.MaxRent = &maxRent
		}
	}
	if bedroomsStr := c.Query("min_bedrooms"); bedroomsStr != "" {
		if bedrooms, err := strconv.Atoi(bedroomsStr); err == nil {
			params.MinBedrooms = &bedrooms
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if offset, err := strconv.ParseInt(offsetStr, 10, 64); err == nil && offset >= 0 {
			params.Offset = offset
		}
	}

	docs, err := searchClient.FilterSearch(params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"hits": docs, "count": len(docs)})
}

func getSearchFacets(c *gin.Context) {
	if searchClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Search is not configured"})
		return
	}

	facets, err := searchClient.GetFacets([]string{"township", "property_type", "bedrooms"})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, facets)
}

func addFavorite(c *gin.Context) {
	userID := requestUserID(c)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
		return
	}

	var req struct {
		PropertyID string `json:"property_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := gormDB.GetPropertyByID(req.PropertyID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	favorite := models.Favorite{TenantID: userID, PropertyID: req.PropertyID}
	if err := gormDB.DB().Where(favorite).FirstOrCreate(&favorite).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, favorite)
}

func removeFavorite(c *gin.Context) {
	userID := requestUserID(c)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
		return
	}

	result := gormDB.DB().
		Where("tenant_id = ? AND property_id = ?", userID, c.Param("propertyID")).
		Delete(&models.Favorite{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": result.Error.Error()})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": true})
}

func getFavorites(c *gin.Context) {
	userID := requestUserID(c)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
		return
	}

	var favorites []models.Favorite
	if err := gormDB.DB().Where("tenant_id = ?", userID).Order("created_at DESC").Find(&favorites).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorites": favorites, "count": len(favorites)})
}

// syncListingMirror copies available listings into the Postgres mirror
func syncListingMirror(c *gin.Context) {
	if pgDB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Listing mirror is not configured"})
		return
	}

	var properties []models.Property
	if err := gormDB.DB().Find(&properties).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var mirrored int
	var errs []string
	for i := range properties {
		if err := pgDB.MirrorProperty(&properties[i]); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", properties[i].ID, err))
			continue
		}
		mirrored++
	}

	log.Printf("[Mirror] synced %d/%d properties", mirrored, len(properties))
	c.JSON(http.StatusOK, gin.H{
		"mirrored": mirrored,
		"failed":   len(errs),
		"errors":   errs,
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrConfig returns config value if set, otherwise falls back to environment variable, then default
func getEnvOrConfig(configValue, envKey, defaultValue string) string {
	if configValue != "" {
		return configValue
	}
	return getEnv(envKey, defaultValue)
}

// requestUserID resolves the acting user for public routes
func requestUserID(c *gin.Context) string {
	if id := c.GetHeader("X-User-ID"); id != "" {
		return id
	}
	return c.Query("user_id")
}

// rateLimitMiddleware returns a Gin middleware that enforces per-caller
// rate limiting, keyed by user id when present and client IP otherwise.
func rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := requestUserID(c)
		if key == "" {
			key = c.ClientIP()
		}

		if !rateLimiter.AllowRequest(key) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": "Too many requests. Please try again later.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// getRateLimitStats returns current rate limiter statistics
func getRateLimitStats(c *gin.Context) {
	stats := rateLimiter.GetStats()
	c.JSON(http.StatusOK, stats)
}
