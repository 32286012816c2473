package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cnb.cool/zhiqiangwang/pkg/logx"
	"github.com/spf13/cobra"

	"github.com/Gaoz-1224/AgriChatBot/internal/chat"
	"github.com/Gaoz-1224/AgriChatBot/internal/database"
	"github.com/Gaoz-1224/AgriChatBot/internal/llm"
	"github.com/Gaoz-1224/AgriChatBot/internal/rag"
	"github.com/Gaoz-1224/AgriChatBot/internal/server"
)

// serverCmd 启动 HTTP 服务
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动农宝 HTTP 服务",
	Long:  `启动 HTTP 服务，提供对话、知识库管理和作物档案接口。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// 1. 组装知识库
		store, redisCache, err := buildStore(cfg)
		if err != nil {
			return err
		}
		if redisCache != nil {
			defer func() { _ = redisCache.Close() }()
		}

		// 2. 组装 RAG 引擎和对话管理
		llmClient := llm.NewClient(cfg.LLM)
		ragEngine := rag.NewEngine(store, llmClient, cfg.Chat.CacheSize, cfg.Knowledge.MaxResults)
		chatManager := chat.NewManager(cfg.Chat.MaxHistory)

		// 3. 启动 HTTP 服务
		httpServer := server.NewHTTPGinServer(cfg, store, ragEngine, chatManager, redisCache, llmClient)

		errCh := make(chan error, 1)
		go func() {
			errCh <- httpServer.Start()
		}()

		// 4. 等待退出信号
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-quit:
			logx.Info("Received signal %s, shutting down", sig)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Stop(ctx); err != nil {
			logx.Error("Failed to stop HTTP server: %v", err)
		}
		if err := database.Close(); err != nil {
			logx.Error("Failed to close database: %v", err)
		}

		logx.Info("✅ Server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
