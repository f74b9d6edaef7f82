package shapes

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Loader produces the shape sources: the procedural built-ins, overlaid by
// JSON shape files from an optional file system.
type Loader struct {
	fsys fs.FS
	log  *slog.Logger
}

// NewLoader creates a loader. fsys may be nil for built-ins only.
func NewLoader(fsys fs.FS, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{fsys: fsys, log: logger}
}

// Load builds every shape for an n-point cloud. Files override built-ins
// with the same name. Any unreadable or malformed file fails the whole load.
func (l *Loader) Load(ctx context.Context, n int) ([]Shape, error) {
	shapes := BuiltIn(n)
	if l.fsys == nil {
		return shapes, nil
	}

	files, err := l.LoadFS(ctx)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(shapes))
	for i, s := range shapes {
		index[s.Name] = i
	}
	for _, f := range files {
		if i, ok := index[f.Name]; ok {
			shapes[i] = f
			continue
		}
		index[f.Name] = len(shapes)
		shapes = append(shapes, f)
	}
	return shapes, nil
}

// LoadFS loads and normalizes every *.json shape file at the root of the
// loader's file system, in lexical order.
func (l *Loader) LoadFS(ctx context.Context) ([]Shape, error) {
	entries, err := fs.ReadDir(l.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to list shape files: %w", err)
	}

	var shapes []Shape
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := fs.ReadFile(l.fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}

		shape, err := ParseShapeJSON(strings.TrimSuffix(path.Base(entry.Name()), ".json"), data)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", entry.Name(), err)
		}
		l.log.Debug("shape loaded", "name", shape.Name, "points", len(shape.Points))
		shapes = append(shapes, shape)
	}
	return shapes, nil
}

// ParseShapeJSON parses a shape file. name is used unless the file sets one.
// Points are normalized to ReferenceSize.
func ParseShapeJSON(name string, data []byte) (Shape, error) {
	var raw ShapeFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return Shape{}, fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}
	if raw.Name != "" {
		name = raw.Name
	}
	if len(raw.Points) == 0 {
		return Shape{}, fmt.Errorf("%w: shape %q has no points", ErrInvalidShape, name)
	}

	points := make([]mgl64.Vec3, len(raw.Points))
	for i, p := range raw.Points {
		points[i] = mgl64.Vec3(p)
	}

	return Shape{
		Name:        name,
		Description: raw.Description,
		Points:      Normalize(points, ReferenceSize),
	}, nil
}
