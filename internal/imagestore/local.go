package imagestore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/foodwizard/bot/core/logger"
)

// LocalConfig serves uploads from disk behind the bot's own HTTP host.
// BaseURL is the externally reachable prefix mapped onto Dir.
type LocalConfig struct {
	Dir     string `yaml:"dir" envconfig:"IMAGES_DIR"`
	BaseURL string `yaml:"base_url" envconfig:"IMAGES_BASE_URL"`
}

type Local struct {
	cfg LocalConfig
}

func NewLocal(cfg LocalConfig) (*Local, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("imagestore: local dir not configured")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("imagestore: create dir %s: %w", cfg.Dir, err)
	}
	return &Local{cfg: cfg}, nil
}

func (l *Local) Name() string { return "local" }

func (l *Local) Upload(ctx context.Context, data []byte, name string) (string, error) {
	// Object names are generated internally, but strip any path parts
	// anyway so a bad name cannot escape the directory.
	name = filepath.Base(name)
	path := filepath.Join(l.cfg.Dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("imagestore: write %s: %w", path, err)
	}

	logger.Debug(ctx, "img", "uploaded",
		slog.String("backend", l.Name()),
		slog.String("path", path),
		slog.Int("bytes", len(data)),
	)

	if l.cfg.BaseURL == "" {
		return "file://" + path, nil
	}
	return strings.TrimSuffix(l.cfg.BaseURL, "/") + "/" + name, nil
}
