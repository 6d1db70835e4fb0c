package engine

import (
	"fmt"
	"os"

	"github.com/drummonds/goconvert/config"
	"github.com/drummonds/goconvert/database"
)

// StartupChecks performs all the checks to make sure everything works
func (serverHandler *ServerHandler) StartupChecks() error {
	serverConfig, err := database.FetchConfigFromDB(serverHandler.DB)
	if err != nil {
		Logger.Error("Error fetching config", "error", err)
		return err
	}
	if err := tempDirectoryChecks(serverConfig); err != nil {
		return err
	}
	if err := outputDirectoryChecks(serverConfig); err != nil {
		return err
	}
	rendererChecks(serverHandler)
	return nil
}

// tempDirectoryChecks ensures the upload staging directory exists
func tempDirectoryChecks(serverConfig config.ServerConfig) error {
	if serverConfig.TempPath == "" {
		Logger.Warn("Temp path not configured")
		return nil
	}

	// Check if directory exists
	tempInfo, err := os.Stat(serverConfig.TempPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Create the directory
			Logger.Info("Creating temp directory", "path", serverConfig.TempPath)
			err = os.MkdirAll(serverConfig.TempPath, 0755)
			if err != nil {
				Logger.Error("Failed to create temp directory", "path", serverConfig.TempPath, "error", err)
				return err
			}
			Logger.Info("Temp directory created successfully", "path", serverConfig.TempPath)
			return nil
		}
		Logger.Error("Error checking temp directory", "path", serverConfig.TempPath, "error", err)
		return err
	}

	// Check if it's actually a directory
	if !tempInfo.IsDir() {
		Logger.Error("Temp path exists but is not a directory", "path", serverConfig.TempPath)
		return fmt.Errorf("temp path is not a directory: %s", serverConfig.TempPath)
	}

	Logger.Info("Temp directory exists", "path", serverConfig.TempPath)
	return nil
}

// outputDirectoryChecks ensures the converted file directory exists
func outputDirectoryChecks(serverConfig config.ServerConfig) error {
	if serverConfig.OutputPath == "" {
		Logger.Warn("Output path not configured")
		return nil
	}

	// Check if directory exists
	outputInfo, err := os.Stat(serverConfig.OutputPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Create the directory
			Logger.Info("Creating output directory", "path", serverConfig.OutputPath)
			err = os.MkdirAll(serverConfig.OutputPath, 0755)
			if err != nil {
				Logger.Error("Failed to create output directory", "path", serverConfig.OutputPath, "error", err)
				return err
			}
			Logger.Info("Output directory created successfully", "path", serverConfig.OutputPath)
			return nil
		}
		Logger.Error("Error checking output directory", "path", serverConfig.OutputPath, "error", err)
		return err
	}

	// Check if it's actually a directory
	if !outputInfo.IsDir() {
		Logger.Error("Output path exists but is not a directory", "path", serverConfig.OutputPath)
		return fmt.Errorf("output path is not a directory: %s", serverConfig.OutputPath)
	}

	Logger.Info("Output directory exists", "path", serverConfig.OutputPath)
	return nil
}

// rendererChecks reports which PDF rasterizer the server will use. A missing
// renderer is not fatal since the sidecar service may handle rasterization.
func rendererChecks(serverHandler *ServerHandler) {
	if serverHandler.Services != nil && serverHandler.Services.PDFURL != "" {
		Logger.Info("PDF rasterization delegated to sidecar service", "url", serverHandler.Services.PDFURL)
		return
	}
	if serverHandler.Renderer == nil {
		Logger.Warn("No PDF renderer available, pdfToImages will fail")
		return
	}
	Logger.Info("PDF renderer ready", "renderer", serverHandler.ServerConfig.Renderer)
}
