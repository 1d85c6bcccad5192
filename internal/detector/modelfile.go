package detector

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ensureModelFile returns the absolute model path under dataDir, copying the
// file from the read-only assetDir on first use. The relative layout is the
// same in both trees.
func ensureModelFile(dataDir, assetDir, relPath string) (string, error) {
	if relPath == "" {
		return "", errors.New("model path not configured")
	}

	dest := filepath.Join(dataDir, relPath)
	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("stat model file: %w", err)
	}

	src := filepath.Join(assetDir, relPath)
	in, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("model asset missing at %s", src)
		}
		return "", fmt.Errorf("open model asset: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("create model dir: %w", err)
	}

	// Copy through a temp name so a partial copy never looks like a model.
	tmp := dest + ".partial"
	out, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("create model file: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("copy model asset: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("flush model file: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("finalize model file: %w", err)
	}
	return dest, nil
}
