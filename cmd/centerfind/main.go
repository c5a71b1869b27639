// Command centerfind estimates the center of a circular pattern in an image
// and prints the result.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"circle-center/internal/center"
	"circle-center/internal/config"
	"circle-center/internal/edges"
	cimage "circle-center/internal/image"
	"circle-center/internal/version"
	"circle-center/internal/vote"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	imagePath := flag.String("image", "", "Path to image (TIFF, PNG, or JPEG)")
	configPath := flag.String("config", "", "Optional YAML config file")
	minRadius := flag.Int("min-radius", 0, "Lower bound of the radius sweep in pixels")
	maxRadius := flag.Int("max-radius", 0, "Upper bound of the radius sweep (0 = half the smaller dimension)")
	epsilon := flag.Float64("epsilon", 0, "Minimum gradient magnitude for an edge pixel to vote")
	cannyLow := flag.Float64("canny-low", 0, "Canny lower hysteresis threshold")
	cannyHigh := flag.Float64("canny-high", 0, "Canny upper hysteresis threshold")
	ksize := flag.Int("ksize", 0, "Sobel kernel size (1, 3, 5 or 7)")
	workers := flag.Int("workers", 0, "Voting goroutines (0 = one per CPU)")
	dpi := flag.Float64("dpi", 0, "Image DPI (default: from TIFF metadata)")
	minDiam := flag.Float64("min-diam", 0, "Smallest circle diameter in inches (needs DPI; overrides -min-radius)")
	maxDiam := flag.Float64("max-diam", 0, "Largest circle diameter in inches (needs DPI; overrides -max-radius)")
	accPath := flag.String("accumulator", "", "Write the normalised accumulator to this image file")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("centerfind %s (commit %s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
		return
	}

	if *imagePath == "" {
		fmt.Println("Usage: centerfind -image <path> [-config file.yaml] [-min-radius 10] [-max-radius N] [-accumulator out.png]")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Explicit flags override file and environment values.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "min-radius":
			cfg.MinRadius = *minRadius
		case "max-radius":
			cfg.MaxRadius = *maxRadius
		case "epsilon":
			cfg.GradientEpsilon = *epsilon
		case "canny-low":
			cfg.Canny.Low = float32(*cannyLow)
		case "canny-high":
			cfg.Canny.High = float32(*cannyHigh)
		case "ksize":
			cfg.Sobel.KernelSize = *ksize
		case "workers":
			cfg.Workers = *workers
		case "accumulator":
			cfg.KeepAccumulator = true
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	start := time.Now()
	src, err := cimage.Load(*imagePath)
	if err != nil {
		log.Fatalf("Failed to load image: %v", err)
	}
	g, err := src.Intensity()
	if err != nil {
		log.Fatalf("Failed to convert image: %v", err)
	}
	log.Printf("Loaded %s image %s: %dx%d pixels in %s", src.Format, *imagePath, g.Width, g.Height, time.Since(start).Round(time.Millisecond))
	if *dpi <= 0 {
		*dpi = src.DPI
	}
	if *dpi > 0 {
		log.Printf("DPI: %.0f", *dpi)
	}

	params := cfg.EstimatorParams()
	if *minDiam > 0 {
		if *dpi <= 0 {
			log.Fatalf("-min-diam needs a DPI: pass -dpi or use a TIFF with resolution tags")
		}
		params = params.WithDiameterInches(*dpi, *minDiam, *maxDiam)
		cfg.MinRadius, cfg.MaxRadius = params.MinRadius, params.MaxRadius
	}

	fmt.Printf("\nEstimation parameters:\n")
	fmt.Printf("  Radius: min %d, max %s\n", cfg.MinRadius, maxRadiusLabel(cfg.MaxRadius))
	fmt.Printf("  Gradient epsilon: %g\n", cfg.GradientEpsilon)
	fmt.Printf("  Canny: low %.0f high %.0f\n", cfg.Canny.Low, cfg.Canny.High)
	fmt.Printf("  Sobel kernel: %d\n", cfg.Sobel.KernelSize)
	fmt.Printf("  Workers: %d\n", cfg.Workers)

	start = time.Now()
	result, err := center.New(cfg.CannySource(), cfg.SobelSource(), params).Estimate(g)
	if errors.Is(err, vote.ErrEmptyAccumulator) {
		log.Fatalf("No center found: %v (check edge thresholds and radius range)", err)
	}
	if err != nil {
		log.Fatalf("Estimation failed: %v", err)
	}
	log.Printf("Estimated in %s", time.Since(start).Round(time.Millisecond))

	s := result.Stats
	fmt.Printf("\nVoting:\n")
	fmt.Printf("  Radius range: %s\n", result.Radius)
	fmt.Printf("  Edge pixels: %d (voting %d, weak gradient %d)\n", s.EdgePixels, s.VotingPixels, s.WeakGradient)
	fmt.Printf("  Votes: %d cast, %d outside the image\n", s.VotesCast, s.VotesDropped)

	fmt.Printf("\nCenter: x=%d y=%d votes=%d\n", result.Center.X, result.Center.Y, result.Votes)

	if *accPath != "" && result.Accumulator != nil {
		if err := edges.WriteAccumulator(*accPath, result.Accumulator); err != nil {
			log.Fatalf("Failed to export accumulator: %v", err)
		}
		log.Printf("Accumulator written to %s", *accPath)
	}
}

func maxRadiusLabel(r int) string {
	if r <= 0 {
		return "auto"
	}
	return fmt.Sprintf("%d", r)
}
