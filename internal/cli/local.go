package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/raphaelgruber/circlemap/internal/deep"
	"github.com/raphaelgruber/circlemap/internal/models"
	"github.com/raphaelgruber/circlemap/internal/parser"
	"github.com/raphaelgruber/circlemap/internal/service"
	"github.com/raphaelgruber/circlemap/internal/vocab"
)

// overlayDir is shared by the commands that score deep profiles.
var overlayDir string

// localServices builds in-process services without a database or LLM.
func localServices() (*service.Services, error) {
	v, err := vocab.LoadFile(cfg.VocabularyFile)
	if err != nil {
		return nil, err
	}
	return service.New(cfg, v, nil, nil, nil, logger), nil
}

// readInput reads a file, or stdin for "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// analyzeChat runs the pipeline over a chat export and loads overlayDir
// when set.
func analyzeChat(ctx context.Context, path string) (*service.Services, *service.Analysis, error) {
	svc, err := localServices()
	if err != nil {
		return nil, nil, err
	}

	var a *service.Analysis
	if path != "" {
		data, err := readInput(path)
		if err != nil {
			return nil, nil, err
		}
		a, err = svc.Analyze(ctx, string(data))
		if err != nil {
			return nil, nil, fmt.Errorf("analyze: %w", err)
		}
	}

	if overlayDir != "" {
		n, err := loadOverlayDir(ctx, svc, overlayDir)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("loaded overlays", "dir", overlayDir, "count", n)
	}
	return svc, a, nil
}

// loadOverlayDir loads every contact note (*.md) and overlay file (*.yaml,
// *.yml, *.json) in dir. Notes are keyed by the slug of their name so they
// line up with transcript members; overlay files by file name.
func loadOverlayDir(ctx context.Context, svc *service.Services, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read overlay dir: %w", err)
	}

	loaded := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		ext := strings.ToLower(filepath.Ext(e.Name()))
		base := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))

		var (
			id     string
			source string
			o      models.Overlay
		)
		switch ext {
		case ".md":
			data, err := os.ReadFile(path)
			if err != nil {
				return loaded, fmt.Errorf("read %s: %w", path, err)
			}
			note, err := parser.ParseContactNote(string(data))
			if err != nil {
				return loaded, fmt.Errorf("%s: %w", path, err)
			}
			o = note.Overlay()
			if note.Name != "" {
				id = models.ProfileID(note.Name)
			}
			source = models.OverlaySourceNote
		case ".yaml", ".yml", ".json":
			data, err := os.ReadFile(path)
			if err != nil {
				return loaded, fmt.Errorf("read %s: %w", path, err)
			}
			o, err = deep.ParseOverlay(data)
			if err != nil {
				return loaded, fmt.Errorf("%s: %w", path, err)
			}
			id = models.Slugify(base)
			source = models.OverlaySourceManual
		default:
			continue
		}
		if id == "" {
			id = models.Slugify(base)
		}

		if err := svc.SetOverlay(ctx, id, source, o); err != nil {
			return loaded, err
		}
		loaded++
	}
	return loaded, nil
}

// readUserContext decodes a YAML or JSON user context file.
func readUserContext(path string) (models.UserContext, error) {
	var uc models.UserContext
	data, err := readInput(path)
	if err != nil {
		return uc, err
	}
	// JSON is valid YAML
	if err := yaml.Unmarshal(data, &uc); err != nil {
		return uc, fmt.Errorf("parse user context %s: %w", path, err)
	}
	return uc, nil
}
