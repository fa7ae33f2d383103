package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/philipparndt/gopano/pkg/viewer"
	"github.com/philipparndt/gopano/version"
)

var (
	configFile string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "gopano",
	Short: "A CLI tool for inspecting and rendering equirectangular panoramas",
	Long: `gopano inspects 360° panoramas and renders perspective views of them
without a window. It reads JPEG, PNG, WebP, TIFF and BMP files and honours
embedded GPano XMP data for partial panoramas.`,
	Version: version.GetFullVersion(),
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML viewer configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log load progress")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig returns the configuration named by --config, or the defaults
func loadConfig() viewer.Config {
	if configFile == "" {
		return viewer.DefaultConfig()
	}
	cfg, err := viewer.LoadConfig(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
