package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/AlexMoto69/uplearn/internal/config"
	"github.com/AlexMoto69/uplearn/internal/lessons"
	"github.com/AlexMoto69/uplearn/internal/llm"
	"github.com/AlexMoto69/uplearn/internal/lock"
	"github.com/AlexMoto69/uplearn/internal/prompt"
	"github.com/AlexMoto69/uplearn/internal/retrieval"
	"github.com/AlexMoto69/uplearn/internal/store"
	"github.com/AlexMoto69/uplearn/internal/tutor"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// env holds the dependencies shared by the commands.
type env struct {
	cfg     *config.Config
	store   *store.Store
	lessons *lessons.FileStore
	tutor   *tutor.Service
	logger  *slog.Logger
	user    string

	closers []func() error
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			e.logger.Warn("close", "error", err)
		}
	}
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openStore opens the database with the configured locker.
func openStore(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) (*store.Store, []func() error, error) {
	dsn, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve database path: %w", err)
	}

	var (
		opts    []store.Option
		closers []func() error
	)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		locker := lock.NewRedisLocker(client, cfg.Redis.LockTTL)
		locker.OnLost(func(key string) {
			logger.Warn("lock expired before release", "key", key)
		})
		opts = append(opts, store.WithLocker(locker))
		closers = append(closers, client.Close)
	}

	st, err := store.Open(dsn, opts...)
	if err != nil {
		for _, c := range closers {
			_ = c()
		}
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return st, append(closers, st.Close), nil
}

// newEnv opens the store and builds the model, retrieval and tutor
// service from configuration.
func newEnv(cmd *cobra.Command) (*env, error) {
	ctx := cmd.Context()
	logger := newLogger(cmd)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	st, closers, err := openStore(cmd, cfg, logger)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, store: st, logger: logger, user: resolveUser(cmd), closers: closers}

	provider, err := llm.NewProvider(ctx, cfg.LLMProviderConfig(), st.EventRepo(), logger)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("LLM provider not configured: %w", err)
	}
	gateway := llm.NewGateway(provider, cfg.LLM.Timeout)

	index, err := loadIndex(cfg.Index.Path, logger)
	if err != nil {
		e.Close()
		return nil, err
	}
	embedder, err := retrieval.NewEmbedder(ctx, cfg.EmbedderConfig())
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("embedder: %w", err)
	}
	if index != nil && embedder == nil {
		logger.Info("vector index loaded without an embedder; using full lesson text")
	}

	e.lessons = lessons.NewFileStore(cfg.LessonsConfig())
	retriever := retrieval.New(retrieval.Config{
		Index:    index,
		Embedder: embedder,
		TopK:     cfg.Index.TopK,
	}, e.lessons, logger)
	e.closers = append(e.closers, retriever.Close)

	e.tutor = tutor.New(tutor.Deps{
		Generator: gateway,
		Retriever: retriever,
		Progress:  st.ProgressRepo(),
		Prompts:   prompt.New(cfg.PromptConfig()),
		Logger:    logger,
	}, tutor.Options{
		QuizCount:              cfg.Quiz.Count,
		QuizMaxTokens:          cfg.Quiz.MaxTokens,
		ChatMaxTokens:          cfg.Chat.MaxTokens,
		MaxContextChars:        cfg.Chat.MaxContextChars,
		RetrievalK:             cfg.Index.TopK,
		Workers:                cfg.Quiz.Workers,
		RegenerateExplanations: cfg.Quiz.RegenerateExplanations,
	})
	return e, nil
}

// loadIndex reads the vector index. A missing file disables semantic
// retrieval.
func loadIndex(path string, logger *slog.Logger) (*retrieval.Index, error) {
	if path == "" {
		return nil, nil
	}
	ix, err := retrieval.LoadIndex(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info("no vector index; using full lesson text", "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("vector index loaded", "path", path, "passages", ix.Len(), "dim", ix.Dim(), "model", ix.Model())
	return ix, nil
}

// readInput returns the contents of path, or of stdin for "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
