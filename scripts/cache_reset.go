// 手动清空仪表盘统计缓存脚本
//
// 仪表盘缓存通常通过写操作自动失效，此脚本用于运维场景下的全量重置，
// 例如批量数据修复或导入历史数据之后。
//
// 用法: go run scripts/cache_reset.go

package main

import (
	"context"
	"log"
	"os"

	"learnhub_backend/internal/config"
	"learnhub_backend/internal/service"
	"learnhub_backend/pkg/cache"
	"learnhub_backend/pkg/database"
	"learnhub_backend/pkg/logger"

	"gopkg.in/yaml.v3"
)

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(cfg.Server.Mode)

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Redis连接失败: %v", err)
	}
	defer rdb.Close()

	store := cache.NewRedisStore(rdb, logger.Log)
	invalidator := service.NewCacheInvalidator(store, logger.Log)

	log.Println("清空仪表盘统计缓存...")
	if err := invalidator.ClearAll(context.Background()); err != nil {
		log.Fatalf("清空缓存失败: %v", err)
	}
	log.Println("完成！")
}
