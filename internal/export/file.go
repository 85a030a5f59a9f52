package export

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// FileExporter writes reports as indented JSON files.
type FileExporter struct {
	logger *zap.Logger
	// Dir defaults to the system temp directory.
	Dir string
}

func NewFileExporter(logger *zap.Logger, dir string) *FileExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileExporter{logger: logger, Dir: dir}
}

// createTemp is os.CreateTemp, replaced in tests.
var createTemp = os.CreateTemp

// Export writes the report and returns the file path. A failed write leaves
// no file behind.
func (e *FileExporter) Export(_ context.Context, report Report) (string, error) {
	data, err := report.encode()
	if err != nil {
		return "", err
	}

	file, err := createTemp(e.Dir, report.name()+"_*.json")
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}
	path := file.Name()

	_, err = file.Write(data)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			e.logger.Warn("removing partial export", zap.String("path", path), zap.Error(rmErr))
		}
		return "", fmt.Errorf("writing export file: %w", err)
	}

	e.logger.Debug("report exported", zap.String("path", path))
	return path, nil
}
