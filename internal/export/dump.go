package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/user/attendance-service/internal/entity"
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// DumpFrames saves each frame's markup as attendance_<frame>.html and its
// screenshot, when present, as attendance_<frame>.png.
func DumpFrames(dir string, frames []entity.Frame) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var paths []string
	for _, fr := range frames {
		base := filepath.Join(dir, "attendance_"+frameFileName(fr.Name))
		if err := os.WriteFile(base+".html", []byte(fr.HTML), 0o644); err != nil {
			return paths, fmt.Errorf("failed to dump frame %s: %w", fr.Name, err)
		}
		paths = append(paths, base+".html")

		if len(fr.Screenshot) == 0 {
			continue
		}
		if err := os.WriteFile(base+".png", fr.Screenshot, 0o644); err != nil {
			return paths, fmt.Errorf("failed to dump screenshot %s: %w", fr.Name, err)
		}
		paths = append(paths, base+".png")
	}
	return paths, nil
}

func frameFileName(name string) string {
	if clean := unsafeFileChars.ReplaceAllString(name, "_"); clean != "" {
		return clean
	}
	return "frame"
}
