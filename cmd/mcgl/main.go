package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mcgl/engine/internal/config"
	"github.com/mcgl/engine/internal/core/ecs"
	"github.com/mcgl/engine/internal/core/event"
	"github.com/mcgl/engine/internal/core/world"
	"github.com/mcgl/engine/internal/data"
	"github.com/mcgl/engine/internal/scripting"
	"github.com/mcgl/engine/internal/system"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(worldName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             mcgl engine  v0.1.0           \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mworld:\033[0m %s\n\n", worldName)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main loop ──────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/engine.toml"
	if p := os.Getenv("MCGL_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.World.Name)

	// 3. Build the world and its layers
	printSection("world")
	w := world.New(world.Options{Name: cfg.World.Name, Capacity: cfg.World.Capacity}, log)
	for _, name := range cfg.Layers.Names {
		w.Layers().AddLayerName(name)
	}
	printOK(fmt.Sprintf("world %s created", w.ID()))
	printStat("entity capacity", w.Capacity())
	printStat("component types (max)", ecs.MaxComponents)
	printStat("layers", w.Layers().LayerCount())
	fmt.Println()

	// 4. Load scripts and prefabs
	printSection("data")
	lua, err := scripting.NewEngine(w, cfg.Scripting.Dir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer lua.Close()
	printStat("lua scripts", len(lua.Scripts()))

	prefabs := &data.PrefabTable{}
	if cfg.Data.Prefabs != "" {
		prefabs, err = data.LoadPrefabTable(cfg.Data.Prefabs)
		if err != nil {
			return fmt.Errorf("prefabs: %w", err)
		}
	}
	printStat("prefabs", prefabs.Count())
	if n := prefabs.Entities(); n > w.Capacity() {
		return fmt.Errorf("prefabs: %d entities exceed capacity %d", n, w.Capacity())
	}
	fmt.Println()

	// 5. Register systems
	world.RegisterSystem(w, system.NewScriptSystem(w, lua, log))
	w.Schedule(system.NewSpawnSystem(w, prefabs, lua, log))
	w.Schedule(system.NewMovementSystem(w))
	w.Schedule(system.NewCleanupSystem(w, log))

	// A closed window and a shutdown signal end the loop the same way.
	quit := false
	world.Subscribe(w, func(event.WindowClosed) { quit = true })
	world.Subscribe(w, func(s scripting.Signal) {
		log.Info("script signal", zap.String("name", s.Name), zap.String("value", s.Value))
	})

	// 6. Start game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Loop.TickRate)
	defer ticker.Stop()

	printSection("ready")
	printReady(fmt.Sprintf("game loop started (tick: %s)", cfg.Loop.TickRate))
	fmt.Println()

	ticks := 0
	for {
		select {
		case <-ticker.C:
			w.Update(cfg.Loop.TickRate)
			ticks++
			if quit || (cfg.Loop.MaxTicks > 0 && ticks >= cfg.Loop.MaxTicks) {
				uptime := time.Since(time.Unix(cfg.World.StartTime, 0)).Round(time.Second)
				log.Info("world stopped",
					zap.Int("ticks", ticks),
					zap.Int("entities", w.Count()),
					zap.Duration("uptime", uptime))
				return nil
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			world.Emit(w, event.WindowClosed{})
		}
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
