package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/vladislavdragonenkov/sabor/internal/domain"
)

// slipWorkers ограничивает число фич, которые рендерятся одновременно.
const slipWorkers = 4

// WriteSlips пишет по фиче на каждый заказ в dir и возвращает пути в порядке реестра.
// При первой ошибке остальные задачи отменяются.
func WriteSlips(ctx context.Context, dir string, records []domain.OrderRecord) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	paths := make([]string, len(records))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(slipWorkers)
	for i, rec := range records {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := Slip(rec)
			if err != nil {
				return fmt.Errorf("render slip for order %s: %w", rec.ID, err)
			}
			path := filepath.Join(dir, SlipFileName(rec))
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write slip for order %s: %w", rec.ID, err)
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// WriteArtifact сохраняет артефакт в dir под его именем.
func WriteArtifact(dir string, artifact Artifact) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, artifact.Name)
	if err := os.WriteFile(path, artifact.Data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", artifact.Name, err)
	}
	return path, nil
}
