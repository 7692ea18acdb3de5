// Package upload abstracts binary-blob hosting (chat images, profile
// pictures). The realtime core only ever sees the returned URL.
package upload

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage 外部图片存储。聊天图片和头像走同一个接口。
type Storage interface {
	Upload(ctx context.Context, data []byte, contentType string) (url string, err error)
}

// LocalStorage 把文件写到本地磁盘，经 baseURL 静态路由对外提供。
type LocalStorage struct {
	Dir     string
	BaseURL string
}

func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStorage{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStorage) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty upload")
	}

	name := uuid.NewString() + extFor(contentType)
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return s.BaseURL + "/" + name, nil
}

func extFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

// DecodeDataURL 解析前端发来的 data URL（data:image/png;base64,xxx），
// 也接受裸 base64，当作 jpeg 处理。
func DecodeDataURL(raw string) (data []byte, contentType string, err error) {
	contentType = "image/jpeg"
	payload := raw

	if strings.HasPrefix(raw, "data:") {
		semi := strings.Index(raw, ";base64,")
		if semi < 0 {
			return nil, "", fmt.Errorf("unsupported data url")
		}
		contentType = raw[len("data:"):semi]
		payload = raw[semi+len(";base64,"):]
	}

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode base64: %w", err)
	}
	return data, contentType, nil
}
