package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap/zapcore"

	swf "github.com/swfplayer/swfplayer"
	"github.com/swfplayer/swfplayer/renderebiten"
)

func main() {
	logFile := flag.String("log", "", "Log file path (default: stderr only)")
	verbose := flag.Bool("v", false, "Enable debug-level logging")
	frameRate := flag.Float64("framerate", 0, "Override the movie's own frame rate (0: use the movie's)")
	maxInstructions := flag.Int("max-instructions", 0, "Per-action instruction budget (0: default)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: swfplay [options] file.swf\n\nPlays a SWF3-8 movie.\n\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	movie, err := swf.ParseFile(data, swf.ParseOptions{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to parse %s: %v\n", flag.Arg(0), err)
		os.Exit(1)
	}

	level := zapcore.InfoLevel
	if *verbose {
		level = zapcore.DebugLevel
	}
	cfg := swf.PlayerConfig{
		FrameRateOverride: *frameRate,
		LogLevel:          level,
		LogFilePath:       *logFile,
	}
	if *maxInstructions > 0 {
		cfg.ScriptLimits = swf.ScriptLimits{MaxInstructions: *maxInstructions, MaxCallDepth: 256}
	}

	player, err := swf.NewPlayer(movie, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to start player: %v\n", err)
		os.Exit(1)
	}

	adapter := renderebiten.NewAdapter()
	player.SetRenderer(adapter)

	game := &playbackGame{player: player, adapter: adapter, width: int(movie.FrameRect.Width()), height: int(movie.FrameRect.Height())}
	ebiten.SetWindowSize(game.width, game.height)
	ebiten.SetWindowTitle(flag.Arg(0))
	if err := ebiten.RunGame(game); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// playbackGame adapts Player's Update/Render to ebiten's Game interface.
type playbackGame struct {
	player       *swf.Player
	adapter      *renderebiten.Adapter
	width, height int
	lastTick     time.Time
}

func (g *playbackGame) Update() error {
	now := time.Now()
	if g.lastTick.IsZero() {
		g.lastTick = now
	}
	dt := now.Sub(g.lastTick).Seconds()
	g.lastTick = now
	return g.player.Update(dt)
}

func (g *playbackGame) Draw(screen *ebiten.Image) {
	g.player.Render(g.width, g.height)
	if img := g.adapter.Image(); img != nil {
		screen.DrawImage(img, nil)
	}
}

func (g *playbackGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}
