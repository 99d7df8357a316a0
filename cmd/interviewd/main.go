// Command interviewd runs the adaptive interview engine as an HTTP server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/internai/interviewd/internal/api"
	"github.com/internai/interviewd/internal/claims"
	"github.com/internai/interviewd/internal/config"
	"github.com/internai/interviewd/internal/evaluate"
	"github.com/internai/interviewd/internal/followup"
	"github.com/internai/interviewd/internal/gateway"
	"github.com/internai/interviewd/internal/health"
	"github.com/internai/interviewd/internal/interrupt"
	"github.com/internai/interviewd/internal/observe"
	"github.com/internai/interviewd/internal/orchestrator"
	"github.com/internai/interviewd/internal/resilience"
	"github.com/internai/interviewd/internal/session"
	"github.com/internai/interviewd/internal/transcript"
	"github.com/internai/interviewd/pkg/provider/embeddings"
	ollamaembed "github.com/internai/interviewd/pkg/provider/embeddings/ollama"
	oaembed "github.com/internai/interviewd/pkg/provider/embeddings/openai"
	"github.com/internai/interviewd/pkg/provider/llm"
	"github.com/internai/interviewd/pkg/provider/llm/anyllm"
	oallm "github.com/internai/interviewd/pkg/provider/llm/openai"
	"github.com/internai/interviewd/pkg/provider/stt"
	"github.com/internai/interviewd/pkg/provider/stt/deepgram"
	"github.com/internai/interviewd/pkg/provider/stt/whisper"
	"github.com/internai/interviewd/pkg/provider/tts"
	"github.com/internai/interviewd/pkg/provider/tts/coqui"
	"github.com/internai/interviewd/pkg/provider/tts/elevenlabs"
	"github.com/internai/interviewd/pkg/store"
	filestore "github.com/internai/interviewd/pkg/store/file"
	pgstore "github.com/internai/interviewd/pkg/store/postgres"
)

const (
	shutdownTimeout = 15 * time.Second
	pruneInterval   = time.Minute
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "interviewd: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "interviewd: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("interviewd starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
		"preset", cfg.Interview.Preset,
	)

	// ── Provider registry ─────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	// ── Instantiate providers ─────────────────────────────────────────────────
	providers, err := buildProviders(cfg, reg)
	if err != nil {
		slog.Error("failed to build providers", "err", err)
		return 1
	}
	if providers.LLM == nil {
		slog.Error("no usable LLM provider", "name", cfg.Providers.LLM.Name)
		return 1
	}

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "interviewd"})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := otelShutdown(shCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	metrics, err := observe.NewMetrics(otel.GetMeterProvider())
	if err != nil {
		slog.Error("failed to create metrics", "err", err)
		return 1
	}

	// ── Storage ───────────────────────────────────────────────────────────────
	var (
		snapshots store.SnapshotStore
		events    store.EventLog
		answers   store.AnswerIndex
		pg        *pgstore.Store
	)
	if cfg.Storage.PostgresDSN != "" {
		pg, err = pgstore.NewStore(ctx, cfg.Storage.PostgresDSN, cfg.Storage.EmbeddingDimensions)
		if err != nil {
			slog.Error("failed to connect to postgres", "err", err)
			return 1
		}
		defer pg.Close()
		snapshots, events, answers = pg, pg, pg
		slog.Info("storage backend", "kind", "postgres")
	} else {
		fs, err := filestore.New(cfg.Storage.SnapshotDir)
		if err != nil {
			slog.Error("failed to open snapshot directory", "dir", cfg.Storage.SnapshotDir, "err", err)
			return 1
		}
		snapshots = fs
		slog.Info("storage backend", "kind", "file", "dir", cfg.Storage.SnapshotDir)
	}

	// ── Session manager ───────────────────────────────────────────────────────
	manager := session.NewManager(snapshots)
	if err := manager.Restore(ctx); err != nil {
		slog.Warn("session restore failed, starting empty", "err", err)
	}
	manager.StartPruning(ctx, pruneInterval)

	// ── Engine wiring ─────────────────────────────────────────────────────────
	gw := gateway.New(providers.LLM, gateway.Config{}, metrics)

	var semantic *claims.SemanticIndex
	if providers.Embeddings != nil && answers != nil {
		semantic = claims.NewSemanticIndex(providers.Embeddings, answers)
		slog.Info("semantic answer retrieval enabled")
	}

	orc := orchestrator.New(orchestrator.Deps{
		Manager:    manager,
		Evaluator:  evaluate.New(gw, metrics),
		Questions:  evaluate.NewGenerator(gw),
		FollowUps:  followup.NewGenerator(gw, metrics),
		Claims:     claims.NewExtractor(gw, metrics),
		Semantic:   semantic,
		Interrupts: interrupt.NewEngine(gw, metrics, cfg.Interview.MaxInterruptions),
		Gateway:    gw,
		Corrector:  transcript.New(cfg.Interview.Vocabulary),
		Events:     events,
		Metrics:    metrics,
		Config:     cfg.Interview,
	})

	// ── HTTP surface ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	api.NewServer(orc, providers.STT, providers.TTS, cfg.Interview).Register(mux)
	health.New(storageChecker(pg, cfg.Storage.SnapshotDir)).Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           observe.Middleware(metrics, mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	printStartupSummary(cfg)

	errCh := make(chan error, 1)
	go func() {
		if cfg.Server.TLS != nil {
			errCh <- srv.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile)
		} else {
			errCh <- srv.ListenAndServe()
		}
	}()

	slog.Info("server ready — press Ctrl+C to shut down")

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			return 1
		}
	case <-ctx.Done():
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	slog.Info("shutdown signal received, stopping…")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// providerSet holds the instantiated providers the engine runs on. LLM is
// required; the rest degrade gracefully when absent.
type providerSet struct {
	LLM        llm.Provider
	STT        stt.Provider
	TTS        tts.Provider
	Embeddings embeddings.Provider
}

// registerBuiltinProviders wires all built-in provider factories into reg.
// Each factory receives a config.ProviderEntry and constructs the provider
// from the real implementation packages.
func registerBuiltinProviders(reg *config.Registry) {
	// ── LLM ───────────────────────────────────────────────────────────────────
	// openai talks to the official API (or a compatible BaseURL) directly.
	reg.RegisterLLM("openai", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []oallm.Option
		if entry.BaseURL != "" {
			opts = append(opts, oallm.WithBaseURL(entry.BaseURL))
		}
		return oallm.New(entry.APIKey, entry.Model, opts...)
	})

	// The remaining hosted backends share the any-llm pattern: optional
	// APIKey plus optional BaseURL.
	for _, providerName := range []string{
		"anthropic", "gemini", "deepseek", "mistral", "groq", "llamacpp",
	} {
		reg.RegisterLLM(providerName, func(entry config.ProviderEntry) (llm.Provider, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return anyllm.New(providerName, entry.Model, opts...)
		})
	}

	// ollama is a local server; it uses BaseURL for the address, not an API key.
	reg.RegisterLLM("ollama", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []anyllmlib.Option
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return anyllm.NewOllama(entry.Model, opts...)
	})

	// ── STT ───────────────────────────────────────────────────────────────────

	reg.RegisterSTT("deepgram", func(entry config.ProviderEntry) (stt.Provider, error) {
		var opts []deepgram.Option
		if entry.Model != "" {
			opts = append(opts, deepgram.WithModel(entry.Model))
		}
		if entry.BaseURL != "" {
			opts = append(opts, deepgram.WithBaseURL(entry.BaseURL))
		}
		return deepgram.New(entry.APIKey, opts...)
	})

	// whisper runs whisper.cpp in-process; Model is the GGML model path.
	reg.RegisterSTT("whisper", func(entry config.ProviderEntry) (stt.Provider, error) {
		modelPath := entry.Model
		if modelPath == "" {
			modelPath = optString(entry.Options, "model_path")
		}
		var opts []whisper.Option
		if lang := optString(entry.Options, "language"); lang != "" {
			opts = append(opts, whisper.WithLanguage(lang))
		}
		return whisper.New(modelPath, opts...)
	})

	// ── TTS ───────────────────────────────────────────────────────────────────

	reg.RegisterTTS("elevenlabs", func(entry config.ProviderEntry) (tts.Provider, error) {
		var opts []elevenlabs.Option
		if entry.Model != "" {
			opts = append(opts, elevenlabs.WithModel(entry.Model))
		}
		if voice := optString(entry.Options, "voice"); voice != "" {
			opts = append(opts, elevenlabs.WithVoice(voice))
		}
		return elevenlabs.New(entry.APIKey, opts...)
	})

	reg.RegisterTTS("coqui", func(entry config.ProviderEntry) (tts.Provider, error) {
		var opts []coqui.Option
		if speaker := optString(entry.Options, "speaker"); speaker != "" {
			opts = append(opts, coqui.WithSpeaker(speaker))
		}
		return coqui.New(entry.BaseURL, opts...)
	})

	// ── Embeddings ────────────────────────────────────────────────────────────

	reg.RegisterEmbeddings("openai", func(entry config.ProviderEntry) (embeddings.Provider, error) {
		var opts []oaembed.Option
		if entry.BaseURL != "" {
			opts = append(opts, oaembed.WithBaseURL(entry.BaseURL))
		}
		return oaembed.New(entry.APIKey, entry.Model, opts...)
	})

	reg.RegisterEmbeddings("ollama", func(entry config.ProviderEntry) (embeddings.Provider, error) {
		return ollamaembed.New(entry.BaseURL, entry.Model)
	})
}

// buildProviders instantiates all providers named in cfg. Fallback entries
// are wrapped into circuit-breaker failover groups around the primary.
func buildProviders(cfg *config.Config, reg *config.Registry) (*providerSet, error) {
	ps := &providerSet{}

	if name := cfg.Providers.LLM.Name; name != "" {
		p, err := reg.CreateLLM(cfg.Providers.LLM)
		if errors.Is(err, config.ErrProviderNotRegistered) {
			slog.Debug("provider not registered — skipping", "kind", "llm", "name", name)
		} else if err != nil {
			return nil, fmt.Errorf("create llm provider %q: %w", name, err)
		} else {
			ps.LLM = p
			slog.Info("provider created", "kind", "llm", "name", name)
		}
	}

	if name := cfg.Providers.LLMFallback.Name; name != "" && ps.LLM != nil {
		p, err := reg.CreateLLM(cfg.Providers.LLMFallback)
		if err != nil {
			return nil, fmt.Errorf("create llm fallback %q: %w", name, err)
		}
		fb := resilience.NewLLMFallback(ps.LLM, cfg.Providers.LLM.Name, resilience.FallbackConfig{})
		fb.AddFallback(name, p)
		ps.LLM = fb
		slog.Info("llm fallback enabled", "primary", cfg.Providers.LLM.Name, "fallback", name)
	}

	if name := cfg.Providers.STT.Name; name != "" {
		p, err := reg.CreateSTT(cfg.Providers.STT)
		if errors.Is(err, config.ErrProviderNotRegistered) {
			slog.Debug("provider not registered — skipping", "kind", "stt", "name", name)
		} else if err != nil {
			return nil, fmt.Errorf("create stt provider %q: %w", name, err)
		} else {
			ps.STT = p
			slog.Info("provider created", "kind", "stt", "name", name)
		}
	}

	if name := cfg.Providers.STTFallback.Name; name != "" && ps.STT != nil {
		p, err := reg.CreateSTT(cfg.Providers.STTFallback)
		if err != nil {
			return nil, fmt.Errorf("create stt fallback %q: %w", name, err)
		}
		fb := resilience.NewSTTFallback(ps.STT, cfg.Providers.STT.Name, resilience.FallbackConfig{})
		fb.AddFallback(name, p)
		ps.STT = fb
		slog.Info("stt fallback enabled", "primary", cfg.Providers.STT.Name, "fallback", name)
	}

	if name := cfg.Providers.TTS.Name; name != "" {
		p, err := reg.CreateTTS(cfg.Providers.TTS)
		if errors.Is(err, config.ErrProviderNotRegistered) {
			slog.Debug("provider not registered — skipping", "kind", "tts", "name", name)
		} else if err != nil {
			return nil, fmt.Errorf("create tts provider %q: %w", name, err)
		} else {
			ps.TTS = p
			slog.Info("provider created", "kind", "tts", "name", name)
		}
	}

	if name := cfg.Providers.TTSFallback.Name; name != "" && ps.TTS != nil {
		p, err := reg.CreateTTS(cfg.Providers.TTSFallback)
		if err != nil {
			return nil, fmt.Errorf("create tts fallback %q: %w", name, err)
		}
		fb := resilience.NewTTSFallback(ps.TTS, cfg.Providers.TTS.Name, resilience.FallbackConfig{})
		fb.AddFallback(name, p)
		ps.TTS = fb
		slog.Info("tts fallback enabled", "primary", cfg.Providers.TTS.Name, "fallback", name)
	}

	if name := cfg.Providers.Embeddings.Name; name != "" {
		p, err := reg.CreateEmbeddings(cfg.Providers.Embeddings)
		if errors.Is(err, config.ErrProviderNotRegistered) {
			slog.Debug("provider not registered — skipping", "kind", "embeddings", "name", name)
		} else if err != nil {
			return nil, fmt.Errorf("create embeddings provider %q: %w", name, err)
		} else {
			ps.Embeddings = p
			slog.Info("provider created", "kind", "embeddings", "name", name)
		}
	}

	return ps, nil
}

// ── Health ────────────────────────────────────────────────────────────────────

// storageChecker probes the active persistence backend: a pool ping for
// Postgres, a write-and-remove round trip for the snapshot directory.
func storageChecker(pg *pgstore.Store, snapshotDir string) health.Checker {
	if pg != nil {
		return health.Checker{Name: "postgres", Check: pg.Ping}
	}
	return health.Checker{
		Name: "snapshot_dir",
		Check: func(context.Context) error {
			probe := filepath.Join(snapshotDir, ".probe")
			if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
				return err
			}
			return os.Remove(probe)
		},
	}
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║       interviewd — startup summary    ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printProvider("LLM", cfg.Providers.LLM.Name, cfg.Providers.LLM.Model)
	printProvider("LLM fallback", cfg.Providers.LLMFallback.Name, cfg.Providers.LLMFallback.Model)
	printProvider("STT", cfg.Providers.STT.Name, cfg.Providers.STT.Model)
	printProvider("STT fallback", cfg.Providers.STTFallback.Name, cfg.Providers.STTFallback.Model)
	printProvider("TTS", cfg.Providers.TTS.Name, cfg.Providers.TTS.Model)
	printProvider("TTS fallback", cfg.Providers.TTSFallback.Name, cfg.Providers.TTSFallback.Model)
	printProvider("Embeddings", cfg.Providers.Embeddings.Name, cfg.Providers.Embeddings.Model)
	fmt.Printf("║  Preset          : %-19s ║\n", cfg.Interview.Preset)
	fmt.Printf("║  Max questions   : %-19d ║\n", cfg.Interview.MaxQuestions)
	if cfg.Interview.EnableInterruptions {
		fmt.Printf("║  Interruptions   : up to %-13d ║\n", cfg.Interview.MaxInterruptions)
	} else {
		fmt.Printf("║  Interruptions   : %-19s ║\n", "(disabled)")
	}
	if cfg.Storage.PostgresDSN != "" {
		fmt.Printf("║  Storage         : %-19s ║\n", "postgres")
	} else {
		fmt.Printf("║  Storage         : %-19s ║\n", "file snapshots")
	}
	if cfg.Server.ListenAddr != "" {
		fmt.Printf("║  Listen addr     : %-19s ║\n", cfg.Server.ListenAddr)
	}
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printProvider(kind, name, model string) {
	value := name
	if value == "" {
		value = "(not configured)"
	} else if model != "" {
		value = name + " / " + model
	}
	if len(value) > 19 {
		value = value[:16] + "…"
	}
	fmt.Printf("║  %-12s    : %-19s ║\n", kind, value)
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// optString extracts a string value from a provider Options map[string]any.
// Returns "" if the map is nil, the key is absent, or the value is not a string.
func optString(opts map[string]any, key string) string {
	if opts == nil {
		return ""
	}
	v, ok := opts[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
