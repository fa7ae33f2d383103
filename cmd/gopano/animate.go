package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/philipparndt/gopano/pkg/motion"
	"github.com/philipparndt/gopano/pkg/panorama"
)

// maxFrames bounds the length of a rendered sequence
const maxFrames = 10000

var (
	animateOutput     string
	animateFrom       string
	animateTo         string
	animateTiming     string
	animateAutorotate time.Duration
	animateFPS        int
)

var animateCmd = &cobra.Command{
	Use:   "animate [file]",
	Short: "Render an animated rotation as an image sequence",
	Long: `Render every frame of a rotation to numbered PNG files. Either animate to a
position with --to, or let the panorama autorotate for --autorotate.`,
	Example: `  gopano animate pano.jpg --to 180deg,0 --timing 3s -o frames
  gopano animate pano.jpg --to 90deg,20deg --timing 30dps
  gopano animate pano.jpg --autorotate 10s --fps 25`,
	Args: cobra.ExactArgs(1),
	Run:  runAnimate,
}

func init() {
	animateCmd.Flags().StringVarP(&animateOutput, "output", "o", "frames", "output directory")
	animateCmd.Flags().StringVar(&animateFrom, "from", "", "start position as longitude,latitude or as a source pixel xpx,ypx (default from config)")
	animateCmd.Flags().StringVar(&animateTo, "to", "", "target position as longitude,latitude")
	animateCmd.Flags().StringVar(&animateTiming, "timing", "2s", "duration (\"2s\") or speed (\"30dps\", \"2rpm\") of the rotation")
	animateCmd.Flags().DurationVar(&animateAutorotate, "autorotate", 0, "autorotate for this long instead of animating to --to")
	animateCmd.Flags().IntVar(&animateFPS, "fps", 30, "frames per second")
	rootCmd.AddCommand(animateCmd)
}

func runAnimate(cmd *cobra.Command, args []string) {
	if (animateTo == "") == (animateAutorotate <= 0) {
		fmt.Fprintln(os.Stderr, "Error: exactly one of --to and --autorotate is required")
		os.Exit(1)
	}

	cfg := loadConfig()
	// the idle delay would start autorotate in the middle of a sequence
	cfg.TimeAnim = 0

	h, err := newHeadless(cfg, animateFPS)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer h.close()

	var opts []panorama.RequestOption
	if animateFrom != "" {
		opt, err := parseTarget(animateFrom)
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

	if err := os.MkdirAll(animateOutput, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	var done func(frame int) bool
	if animateTo != "" {
		to, err := parsePosition(animateTo)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		timing, err := motion.ParseTiming(animateTiming)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing timing: %v\n", err)
			os.Exit(1)
		}
		if err := h.viewer.Animate(to, timing); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		done = func(int) bool { return h.viewer.Source() != motion.AnimatedRotate }
	} else {
		h.viewer.StartAutorotate()
		frames := int(animateAutorotate * time.Duration(animateFPS) / time.Second)
		done = func(frame int) bool { return frame >= frames }
	}

	start := time.Now()
	frame := 0
	for ; frame < maxFrames; frame++ {
		img, err := h.snapshot()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering: %v\n", err)
			os.Exit(1)
		}
		path := filepath.Join(animateOutput, fmt.Sprintf("frame_%05d.png", frame))
		if err := saveImage(path, img); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if done(frame) {
			break
		}
		h.step()
	}

	fmt.Printf("Rendered %d frames to %s in %.2fs\n", frame+1, animateOutput, time.Since(start).Seconds())
	fmt.Printf("  Final Position: %s\n", h.viewer.Position())
}
