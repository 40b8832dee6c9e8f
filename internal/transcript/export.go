package transcript

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const fileTimeLayout = "20060102_150405"

// Exporter writes closed conversations to Dir.
type Exporter struct {
	Dir string
	Now func() time.Time
}

// NewExporter creates an Exporter writing into dir.
func NewExporter(dir string) *Exporter {
	return &Exporter{Dir: dir, Now: time.Now}
}

// Filename returns the export name for a transcript created at t.
func Filename(t time.Time) string {
	return "conversation_log_" + t.Format(fileTimeLayout) + ".txt"
}

// Export writes the rendered turns to conversation_log_<YYYYMMDD_HHMMSS>.txt
// and returns the file path. Existing files are never overwritten: a second
// export within the same second gets a numeric suffix.
func (e *Exporter) Export(turns []Turn) (string, error) {
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	base := Filename(now())
	data := []byte(Render(turns))

	for n := 1; n < 100; n++ {
		name := base
		if n > 1 {
			name = fmt.Sprintf("%s_%d.txt", base[:len(base)-len(".txt")], n)
		}
		path := filepath.Join(e.Dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("creating transcript file: %w", err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return "", fmt.Errorf("writing transcript: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("closing transcript: %w", err)
		}
		return path, nil
	}
	return "", fmt.Errorf("too many transcripts named %s", base)
}
