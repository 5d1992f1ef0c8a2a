package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/yuqie6/planly/internal/bootstrap"
	"github.com/yuqie6/planly/internal/httpapi"
	"github.com/yuqie6/planly/internal/pkg/buildinfo"
	"github.com/yuqie6/planly/internal/pkg/config"
)

func main() {
	// .env 仅本地开发用，不存在就跳过
	_ = godotenv.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfgPath, cfgErr := config.DefaultConfigPath()
	if cfgErr == nil {
		if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
			_ = config.WriteFile(cfgPath, config.Default())
		}
	}

	core, err := bootstrap.NewCore(cfgPath)
	if err != nil {
		slog.Error("启动失败", "error", err)
		os.Exit(1)
	}
	defer core.Close()

	slog.Info("Planly Server 启动中...",
		"name", core.Cfg.App.Name,
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"timezone", core.Cfg.Stats.Timezone,
	)
	if core.DB.SafeMode {
		slog.Warn("数据库处于安全模式，仅提供只读数据", "error", core.DB.MigrationError)
	}

	server, err := httpapi.Start(ctx, core, httpapi.Options{ListenAddr: core.Cfg.Server.ListenAddr})
	if err != nil {
		slog.Error("启动 HTTP 服务失败", "error", err)
		os.Exit(1)
	}
	slog.Info("Planly Server 已启动", "base_url", server.BaseURL())

	if core.Cfg.Scheduler.MissedDayScanEnabled {
		if err := core.MissedDayScanner.Start(); err != nil {
			slog.Error("启动漏卡扫描任务失败", "error", err)
		}
	}

	// 监听系统信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	slog.Info("收到退出信号", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP 服务关闭失败", "error", err)
	}
	slog.Info("Planly Server 已退出")
}
