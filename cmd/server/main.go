package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/pflag"

	"github.com/naozine/syncalign/internal/align"
	"github.com/naozine/syncalign/internal/config"
	"github.com/naozine/syncalign/internal/decoder"
	"github.com/naozine/syncalign/internal/httpapi"
	"github.com/naozine/syncalign/internal/logging"
	"github.com/naozine/syncalign/internal/store"
	"github.com/naozine/syncalign/internal/synth"
	"github.com/naozine/syncalign/internal/textfile"
	"github.com/naozine/syncalign/internal/worker"
)

func main() {
	_ = godotenv.Load()

	flags := pflag.NewFlagSet("syncalign-server", pflag.ExitOnError)
	configFile := flags.String("config", "", "path to a syncalign config file")
	flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configFile, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("SYNCALIGN_DB_PATH")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			logger.Fatal("resolve home directory", "err", err)
		}
		dbPath = filepath.Join(home, ".syncalign", "syncalign.db")
	}

	db, err := store.Open(dbPath)
	if err != nil {
		logger.Fatal("open database", "err", err)
	}
	defer db.Close()
	logger.Info("database initialized", "path", dbPath)

	runs := store.NewRunRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := func(ctx context.Context, run *store.Run) error {
		var fragments textfile.List
		if err := json.Unmarshal([]byte(run.TextJSON), &fragments); err != nil {
			return fmt.Errorf("decode fragments: %w", err)
		}

		pipeline := &align.Pipeline{
			Decoder:     decoder.FFmpeg{},
			Synthesizer: synth.DefaultUniform(),
			Config:      cfg,
			Logger:      logger,
		}
		result, err := pipeline.Execute(ctx, run.AudioPath, fragments)
		if err != nil {
			return err
		}

		resultJSON, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		return runs.Complete(ctx, run.ID, string(resultJSON))
	}

	w := worker.New(runs, handler, logger)
	w.Start(ctx)
	defer w.Stop()

	runHandler := httpapi.NewRunHandler(runs)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")
	api.POST("/runs", runHandler.Submit)
	api.GET("/runs/:id", runHandler.Get)
	api.GET("/runs/:id/waveform", runHandler.Waveform)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
		e.Close()
	}()

	logger.Info("starting syncalign server", "port", port)
	if err := e.Start(fmt.Sprintf(":%s", port)); err != nil {
		logger.Info("server stopped")
	}
}
