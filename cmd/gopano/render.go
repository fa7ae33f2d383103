package main

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/cobra"

	"github.com/philipparndt/gopano/pkg/geometry"
	"github.com/philipparndt/gopano/pkg/panorama"
)

var (
	renderOutput   string
	renderPosition string
	renderFOV      string
	renderWidth    int
	renderHeight   int
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Render a perspective view of a panorama",
	Long: `Render the view from the panorama center in one direction to a PNG or JPEG file.
Angles accept degrees ("90deg", "45°") or radians.`,
	Example: `  gopano render pano.jpg -o view.png --position 90deg,10deg --fov 60deg
  gopano render pano.jpg -o detail.jpg --position 1200px,600px`,
	Args:    cobra.ExactArgs(1),
	Run:     runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "view.png", "output image (.png or .jpg)")
	renderCmd.Flags().StringVarP(&renderPosition, "position", "p", "", "view direction as longitude,latitude or as a source pixel xpx,ypx (default from config)")
	renderCmd.Flags().StringVar(&renderFOV, "fov", "", "vertical field of view (default from config)")
	renderCmd.Flags().IntVar(&renderWidth, "width", 0, "image width (default from config)")
	renderCmd.Flags().IntVar(&renderHeight, "height", 0, "image height (default from config)")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	if renderWidth > 0 {
		cfg.Size.Width = renderWidth
	}
	if renderHeight > 0 {
		cfg.Size.Height = renderHeight
	}

	h, err := newHeadless(cfg, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer h.close()

	var opts []panorama.RequestOption
	if renderPosition != "" {
		opt, err := parseTarget(renderPosition)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		opts = append(opts, opt)
	}

	if err := h.load(args[0], opts...); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading panorama: %v\n", err)
		os.Exit(1)
	}

	if renderFOV != "" {
		fov, err := geometry.ParseAngle(renderFOV)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing field of view: %v\n", err)
			os.Exit(1)
		}
		h.viewer.Zoom(float64(geometry.ZoomForFOV(fov, float64(cfg.MinFOV), float64(cfg.MaxFOV))))
	}
	h.viewer.Render(true)

	img, err := h.snapshot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering: %v\n", err)
		os.Exit(1)
	}
	if err := saveImage(renderOutput, img); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	pos := h.viewer.Position()
	fmt.Printf("Rendered %s (%dx%d)\n", renderOutput, img.Rect.Dx(), img.Rect.Dy())
	fmt.Printf("  Longitude: %.2f°\n", mgl64.RadToDeg(pos.Longitude))
	fmt.Printf("  Latitude: %.2f°\n", mgl64.RadToDeg(pos.Latitude))
	fmt.Printf("  Field of View: %.2f°\n", mgl64.RadToDeg(h.viewer.FieldOfView()))
}
