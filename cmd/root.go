package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/philipparndt/gopano/internal/app"
	"github.com/philipparndt/gopano/pkg/viewer"
	"github.com/philipparndt/gopano/version"
)

var (
	configFile string
	watch      bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:     "gopano-gui [file]",
	Short:   "Equirectangular panorama viewer",
	Long:    `gopano-gui shows 360° equirectangular panoramas in a window. Drag to look around, scroll to zoom.`,
	Args:    cobra.MaximumNArgs(1),
	Version: version.GetFullVersion(),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := viewer.DefaultConfig()
		if configFile != "" {
			loaded, err := viewer.LoadConfig(configFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
				os.Exit(1)
			}
			cfg = loaded
		}
		if len(args) == 1 {
			cfg.Panorama = args[0]
		}

		level := slog.LevelWarn
		if verbose {
			level = slog.LevelInfo
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		if err := app.Run(app.Options{Config: cfg, Watch: watch, Logger: logger}); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML viewer configuration")
	rootCmd.Flags().BoolVarP(&watch, "watch", "w", true, "reload the panorama when the file changes")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log loads and file changes")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
