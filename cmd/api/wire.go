package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cloudwego/eino/components/model"
	"go.uber.org/zap"

	"github.com/zhouzirui/mind-chat/backend/internal/config"
	"github.com/zhouzirui/mind-chat/backend/internal/handler"
	"github.com/zhouzirui/mind-chat/backend/internal/scheduler"
	"github.com/zhouzirui/mind-chat/backend/internal/service/ai"
	"github.com/zhouzirui/mind-chat/backend/internal/service/companion"
	"github.com/zhouzirui/mind-chat/backend/internal/service/emotion"
	moodservice "github.com/zhouzirui/mind-chat/backend/internal/service/mood"
	"github.com/zhouzirui/mind-chat/backend/internal/service/quota"
	"github.com/zhouzirui/mind-chat/backend/internal/storage"
	"github.com/zhouzirui/mind-chat/backend/internal/storage/memory"
	"github.com/zhouzirui/mind-chat/backend/internal/storage/sqlite"
)

type app struct {
	store     storage.Store
	router    http.Handler
	scheduler *scheduler.Scheduler
	logger    *zap.Logger
}

func (a *app) Close() {
	if err := a.scheduler.Shutdown(); err != nil {
		a.logger.Warn("scheduler shutdown failed", zap.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("store close failed", zap.Error(err))
	}
}

func openStore(cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		return sqlite.Open(cfg.SQLitePath)
	default:
		return memory.NewStore(), nil
	}
}

func buildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	store, err := openStore(cfg.Storage)
	if err != nil {
		return nil, err
	}

	// 未配置 Ark 时客户端处于禁用状态，回复统一降级为 "(service unavailable)"
	var chatModel model.BaseChatModel
	if cfg.AI.Enabled() {
		cm, err := cfg.AI.NewChatModel(ctx)
		if err != nil {
			logger.Warn("failed to initialize chat model, continuing without AI", zap.Error(err))
		} else {
			chatModel = cm
		}
	} else {
		logger.Info("Ark 凭证未配置，跳过 AI 功能初始化")
	}

	client, err := ai.NewClient(ctx, chatModel, ai.ClientConfig{
		ModelID:     cfg.AI.Model,
		Timeout:     cfg.AI.Timeout,
		MaxInflight: int64(cfg.AI.MaxInflight),
	}, logger)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("build completion client: %w", err)
	}

	guard := quota.NewGuard(store, quota.Config{
		DailyLimit: cfg.Chat.DailyLimit,
		FailOpen:   cfg.Chat.QuotaFailOpen,
	}, logger)

	svc := companion.NewService(companion.Deps{
		Chats:      store,
		Notes:      store,
		Moods:      moodservice.NewService(store, logger),
		Guard:      guard,
		Windower:   ai.NewWindower(cfg.Chat.HistoryWindow, ai.NewPromptBook(cfg.AI.SystemPromptEN)),
		Dispatcher: ai.NewDispatcher(client, logger),
		Classifier: emotion.NewClassifier(client, logger),
		Logger:     logger,
	})

	sched, err := scheduler.New(guard, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &app{
		store:     store,
		router:    handler.NewRouter(svc, logger),
		scheduler: sched,
		logger:    logger,
	}, nil
}
