package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/moneerbcm20-rgb/decora-erp/internal/erp/entity"
	"github.com/moneerbcm20-rgb/decora-erp/internal/erp/store"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// BackupTargets 远端快照目标，均为可选；本地快照文件始终是权威回退
type BackupTargets struct {
	Redis       *redis.Client
	RedisKey    string
	Minio       *minio.Client
	MinioBucket string
	SnapshotURL string // snapshotd 端点，如 http://localhost:8082/api/v1/snapshots/decora
}

// BackupResult 一次远端保存/加载的逐目标结果
type BackupResult struct {
	Saved  []string          `json:"saved"`
	Failed map[string]string `json:"failed,omitempty"`
	Source string            `json:"source,omitempty"` // 加载来源
}

// BackupService 快照备份/恢复
// 远端写入全部是覆盖式 last-write-wins，失败只记日志并上报结果，不影响内存数据
type BackupService struct {
	store   *store.Store
	targets BackupTargets
	logger  *zap.Logger
	httpc   *http.Client
}

func NewBackupService(st *store.Store, targets BackupTargets, logger *zap.Logger) *BackupService {
	if targets.RedisKey == "" {
		targets.RedisKey = "decora:snapshot"
	}
	return &BackupService{
		store:   st,
		targets: targets,
		logger:  logger,
		httpc:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Export 导出全量快照
func (s *BackupService) Export() entity.Snapshot {
	return s.store.Export()
}

// Import 恢复快照：整体替换全部内存集合，不做合并
func (s *BackupService) Import(raw []byte) error {
	var snap entity.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("解析快照失败: %w", err)
	}
	s.store.Replace(snap)
	return nil
}

// SaveRemote 把当前快照推到所有已配置的远端目标
func (s *BackupService) SaveRemote(ctx context.Context) BackupResult {
	snap := s.store.Export()
	raw, err := json.Marshal(&snap)
	if err != nil {
		return BackupResult{Failed: map[string]string{"marshal": err.Error()}}
	}

	result := BackupResult{Failed: map[string]string{}}
	record := func(target string, err error) {
		if err != nil {
			s.logger.Warn("远端快照保存失败", zap.String("target", target), zap.Error(err))
			result.Failed[target] = err.Error()
			return
		}
		result.Saved = append(result.Saved, target)
	}

	if s.targets.Redis != nil {
		record("redis", s.targets.Redis.Set(ctx, s.targets.RedisKey, raw, 0).Err())
	}
	if s.targets.SnapshotURL != "" {
		record("snapshotd", s.putSnapshotd(ctx, raw))
	}
	if s.targets.Minio != nil {
		record("minio", s.putMinio(ctx, raw))
	}
	if len(result.Failed) == 0 {
		result.Failed = nil
	}
	return result
}

// LoadRemote 依次尝试 snapshotd、redis、minio，取到即整体恢复
func (s *BackupService) LoadRemote(ctx context.Context) (BackupResult, error) {
	type fetcher struct {
		name string
		fn   func(context.Context) ([]byte, error)
	}
	var fetchers []fetcher
	if s.targets.SnapshotURL != "" {
		fetchers = append(fetchers, fetcher{"snapshotd", s.getSnapshotd})
	}
	if s.targets.Redis != nil {
		fetchers = append(fetchers, fetcher{"redis", func(ctx context.Context) ([]byte, error) {
			return s.targets.Redis.Get(ctx, s.targets.RedisKey).Bytes()
		}})
	}
	if s.targets.Minio != nil {
		fetchers = append(fetchers, fetcher{"minio", s.getMinio})
	}
	if len(fetchers) == 0 {
		return BackupResult{}, fmt.Errorf("未配置远端快照目标")
	}

	result := BackupResult{Failed: map[string]string{}}
	for _, f := range fetchers {
		raw, err := f.fn(ctx)
		if err != nil {
			s.logger.Warn("远端快照读取失败", zap.String("target", f.name), zap.Error(err))
			result.Failed[f.name] = err.Error()
			continue
		}
		if err := s.Import(raw); err != nil {
			result.Failed[f.name] = err.Error()
			continue
		}
		result.Source = f.name
		if len(result.Failed) == 0 {
			result.Failed = nil
		}
		return result, nil
	}
	return result, fmt.Errorf("所有远端快照目标均不可用")
}

func (s *BackupService) putSnapshotd(ctx context.Context, raw []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.targets.SnapshotURL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("snapshotd 返回 %d: %s", resp.StatusCode, body)
	}
	return nil
}

func (s *BackupService) getSnapshotd(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.targets.SnapshotURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("snapshotd 返回 %d: %s", resp.StatusCode, body)
	}
	return io.ReadAll(resp.Body)
}

func (s *BackupService) putMinio(ctx context.Context, raw []byte) error {
	// latest 供恢复使用，另存一份带时间戳的归档副本
	latest := "snapshots/latest.json"
	archive := fmt.Sprintf("snapshots/%s.json", time.Now().Format("20060102-150405"))
	for _, object := range []string{latest, archive} {
		_, err := s.targets.Minio.PutObject(ctx, s.targets.MinioBucket, object,
			bytes.NewReader(raw), int64(len(raw)),
			minio.PutObjectOptions{ContentType: "application/json"})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *BackupService) getMinio(ctx context.Context) ([]byte, error) {
	object, err := s.targets.Minio.GetObject(ctx, s.targets.MinioBucket, "snapshots/latest.json", minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer object.Close()
	return io.ReadAll(object)
}

// RunAutoBackup 按配置间隔周期性落盘并推远端，ctx 取消时退出
func (s *BackupService) RunAutoBackup(ctx context.Context) {
	interval := s.store.GetSettings().BackupIntervalMinutes
	if interval <= 0 {
		interval = 30
	}
	ticker := time.NewTicker(time.Duration(interval) * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.store.Flush()
			return
		case <-ticker.C:
			s.store.Flush()
			if res := s.SaveRemote(ctx); len(res.Failed) > 0 {
				s.logger.Warn("定时远端备份部分失败", zap.Any("failed", res.Failed))
			}
		}
	}
}
