package util

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ImageFile represents a frame image on disk.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Frame is the frame number parsed from the file name.
	Frame int
}

// LoadDirectoryImageFiles lists the frame images of a directory, sorted by
// frame number. Decoding is left to the caller.
//
// Arguments:
//   - dir: Directory containing frame-<n> image files.
//
// Returns:
//   - []ImageFile: Sorted frame entries.
//   - error: Error if listing or frame-number parsing fails.
func LoadDirectoryImageFiles(dir string) ([]ImageFile, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var images []ImageFile
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		ext := filepath.Ext(file.Name())
		switch ext {
		case ".jpg", ".jpeg", ".png", ".bmp":
			frame, err := strconv.Atoi(strings.TrimSuffix(strings.ReplaceAll(file.Name(), "frame-", ""), ext))
			if err != nil {
				return nil, err
			}
			images = append(images, ImageFile{
				Path:  filepath.Join(dir, file.Name()),
				Frame: frame,
			})
		}
	}

	sort.Slice(images, func(i, j int) bool {
		return images[i].Frame < images[j].Frame
	})

	return images, nil
}
