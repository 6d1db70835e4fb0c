package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	config "github.com/drummonds/goconvert/config"
	"github.com/drummonds/goconvert/convert"
	database "github.com/drummonds/goconvert/database"
	engine "github.com/drummonds/goconvert/engine"
	"github.com/drummonds/goconvert/engine/pdfrenderer"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// injectGlobals injects all of our globals into their packages
func injectGlobals(logger *slog.Logger) {
	Logger = logger
	database.Logger = Logger
	config.Logger = Logger
	engine.Logger = Logger
}

// @title goconvert Backend API
// @version 1.0
// @description File conversion service API - convert images, build and split PDFs, merge documents
// @description Files are queued per server, converted on demand and kept until their retention window expires

// @contact.name API Support
// @contact.url https://github.com/drummonds/goconvert

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8000
// @BasePath /api
// @schemes http https

// @tag.name Queue
// @tag.description File queue and selection operations

// @tag.name Convert
// @tag.description Conversion operations

// @tag.name Outputs
// @tag.description Converted file downloads

// @tag.name Jobs
// @tag.description Job tracking operations

// @tag.name Admin
// @tag.description Administrative operations

func main() {
	// Parse command-line flags
	port := flag.String("port", "8000", "Port to run backend server on")
	flag.Parse()

	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Println("🔧  goconvert Backend API Server")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("• API-only mode (no frontend)")
	fmt.Println("• All endpoints under /api/*")
	fmt.Println("• CORS enabled for frontend access")
	fmt.Println(strings.Repeat("=", 50) + "\n")

	serverConfig, logger := config.SetupServer()
	injectGlobals(logger) //inject the logger into all of the packages

	// Show info banner if using ephemeral database
	if serverConfig.DatabaseType == "ephemeral" {
		fmt.Println("🚀  EPHEMERAL DATABASE MODE")
		fmt.Println("• Database will be destroyed on exit")
		fmt.Println()
	}

	repo := database.NewRepository(serverConfig)
	defer repo.Close()

	database.WriteConfigToDB(serverConfig, repo)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Custom 404 handler for API endpoints
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
		}

		if code == http.StatusNotFound {
			// Return JSON for API endpoints
			c.JSON(http.StatusNotFound, map[string]string{
				"error":   "Not Found",
				"message": "The requested API endpoint does not exist",
				"path":    c.Request().URL.Path,
			})
			return
		}

		// For other errors, use default handler
		e.DefaultHTTPErrorHandler(err, c)
	}

	renderer, err := pdfrenderer.NewRenderer(serverConfig.Renderer)
	if err != nil {
		Logger.Warn("PDF renderer unavailable", "renderer", serverConfig.Renderer, "error", err)
	} else {
		defer renderer.Close()
	}

	serverHandler := engine.ServerHandler{
		DB:           repo,
		Echo:         e,
		ServerConfig: serverConfig,
		Queue:        convert.NewQueue(),
		Renderer:     renderer,
		Services:     engine.NewServiceClients(serverConfig.PDFServiceURL),
	}
	Logger.Info("Initializing backend services...")
	serverHandler.InitializeSchedules(repo) //initialize all the cron jobs
	serverHandler.StartupChecks()           //Run all the sanity checks
	Logger.Info("Backend services initialized")

	// CORS configuration - allow frontend from different origin
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"}, // In production, specify your frontend URL
		AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// Request logging
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "method=${method}, uri=${uri}, status=${status}, latency=${latency_human}\n",
	}))

	Logger.Info("Setting up API routes...")

	// Queue API routes
	e.POST("/api/files", serverHandler.UploadFiles)
	e.GET("/api/files", serverHandler.GetQueue)
	e.DELETE("/api/files", serverHandler.ClearQueue)
	e.DELETE("/api/files/:index", serverHandler.RemoveFile)
	e.POST("/api/files/:index/select", serverHandler.SelectFile)
	e.POST("/api/files/:index/deselect", serverHandler.DeselectFile)
	e.GET("/api/files/:index/info", serverHandler.GetFileInfo)

	// Conversion API routes
	e.POST("/api/convert", serverHandler.RunConversion)
	e.GET("/api/outputs", serverHandler.GetOutputs)
	e.GET("/api/outputs/:id/download", serverHandler.DownloadOutput)
	e.DELETE("/api/outputs/:id", serverHandler.DeleteOutputFile)

	// Job tracking API routes
	e.GET("/api/jobs", serverHandler.GetRecentJobs)
	e.GET("/api/jobs/active", serverHandler.GetActiveJobs)
	e.GET("/api/jobs/:id", serverHandler.GetJob)

	// Admin API routes
	e.GET("/api/about", serverHandler.GetAboutInfo)

	// Health check endpoint
	e.GET("/api/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": "goconvert Backend API",
		})
	})

	// Override port if specified via flag
	if *port != "8000" {
		serverConfig.ListenAddrPort = *port
	}

	// Start server
	addr := fmt.Sprintf("%s:%s", serverConfig.ListenAddrIP, serverConfig.ListenAddrPort)
	Logger.Info("Starting Backend API Server", "address", addr)
	fmt.Printf("\n✅  Backend API Server running on %s\n", addr)
	fmt.Printf("📡  API endpoints available at http://%s/api/\n", addr)
	fmt.Printf("🏥  Health check: http://%s/api/health\n\n", addr)

	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		Logger.Error("Server failed to start", "error", err)
		os.Exit(1)
	}
}
