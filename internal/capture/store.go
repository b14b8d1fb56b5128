package capture

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// SessionDir creates and returns base/<timestamp>. When that directory
// already exists a numeric suffix is added, so each call gets its own.
func SessionDir(base string, now time.Time) (string, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", fmt.Errorf("create screenshot dir: %w", err)
	}
	stamp := now.Format("20060102_150405")
	dir := filepath.Join(base, stamp)
	for i := 2; ; i++ {
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			return dir, nil
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("create screenshot dir: %w", err)
		}
		dir = filepath.Join(base, fmt.Sprintf("%s_%d", stamp, i))
	}
}

// FileName returns "NN_name.png" with name reduced to safe characters.
func FileName(seq int, name string) string {
	return fmt.Sprintf("%02d_%s.png", seq, sanitize(name))
}

// Save writes data as dir/NN_name.png and returns the path.
func Save(dir string, seq int, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create screenshot dir: %w", err)
	}
	path := filepath.Join(dir, FileName(seq, name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}
	return path, nil
}

func sanitize(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "screen"
	}
	return b.String()
}
