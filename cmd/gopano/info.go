package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/philipparndt/gopano/pkg/panorama"
	"github.com/philipparndt/gopano/pkg/viewer"
)

var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Display information about a panorama",
	Long:  "Show the image size, format, GPano XMP data and the part of the sphere the panorama covers.",
	Args:  cobra.ExactArgs(1),
	Run:   runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) {
	filename := args[0]
	cfg := loadConfig()

	loader := panorama.NewFileLoader(panorama.FileLoaderOptions{
		Workers:         1,
		MaxTextureWidth: cfg.MaxTextureWidth,
		UseXMP:          cfg.UseXMPData,
	})
	defer loader.Close()

	meta, err := loader.LoadMetadata(context.Background(), filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading panorama: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Panorama Information")
	fmt.Println("====================")
	fmt.Printf("File: %s\n", filename)
	fmt.Printf("Format: %s\n", meta.Format)
	fmt.Printf("Size: %d x %d pixels\n\n", meta.Width, meta.Height)

	pano := meta.PanoData
	fmt.Println("Projection:")
	if meta.HasXMP {
		fmt.Println("  Source: GPano XMP data")
	} else {
		fmt.Println("  Source: image size")
	}
	fmt.Printf("  Full Size: %d x %d pixels\n", pano.FullWidth, pano.FullHeight)
	if pano.IsCropped() {
		fmt.Printf("  Cropped Area: %d x %d pixels at (%d, %d)\n",
			pano.CroppedWidth, pano.CroppedHeight, pano.CroppedX, pano.CroppedY)
	}
	fmt.Printf("  Horizontal Coverage: %.1f°\n", 360*float64(pano.CroppedWidth)/float64(pano.FullWidth))
	fmt.Printf("  Vertical Coverage: %.1f°\n\n", 180*float64(pano.CroppedHeight)/float64(pano.FullHeight))

	fmt.Println("Viewer:")
	fmt.Printf("  Field of View: %.1f° - %.1f°\n", cfg.MinFOV.Degrees(), cfg.MaxFOV.Degrees())
	fmt.Printf("  Initial Zoom: %d (%.1f°)\n", cfg.InitialZoom(), viewer.Angle(cfg.FieldOfView(cfg.InitialZoom())).Degrees())
	if meta.Width > cfg.MaxTextureWidth {
		fmt.Printf("  Texture: downscaled to %d pixels wide\n", cfg.MaxTextureWidth)
	}
}
