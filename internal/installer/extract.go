package installer

import (
	"archive/tar"
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Extractor unpacks downloaded archives.
type Extractor struct {
	track TrackerFactory
}

// NewExtractor creates an Extractor; a nil factory disables progress.
func NewExtractor(track TrackerFactory) *Extractor {
	if track == nil {
		track = NopTracker
	}
	return &Extractor{track: track}
}

// Extract unpacks archive into destDir, choosing the format from the file
// extension. On failure destDir is removed, so its presence after a
// successful return is the only signal that extraction completed.
func (e *Extractor) Extract(archive, destDir string) error {
	var extract func(*os.File, int64, string, io.Writer) error

	lower := strings.ToLower(archive)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		extract = extractTarGz
	case strings.HasSuffix(lower, ".zip"):
		extract = extractZip
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(archive))
	}

	if err := e.run(archive, destDir, extract); err != nil {
		_ = os.RemoveAll(destDir)
		return fmt.Errorf("%w: %s: %w", ErrExtractionFailed, filepath.Base(archive), err)
	}
	return nil
}

func (e *Extractor) run(archive, destDir string, extract func(*os.File, int64, string, io.Writer) error) error {
	file, err := os.Open(archive)
	if err != nil {
		return fmt.Errorf("error opening archive: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("error reading metadata: %w", err)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}

	tracker := e.track("Extracting ...", info.Size())
	err = extract(file, info.Size(), destDir, tracker)
	tracker.Close(err)
	return err
}

func extractTarGz(file *os.File, _ int64, dest string, progress io.Writer) error {
	gz, err := gzip.NewReader(io.TeeReader(file, progress))
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		target, err := safeJoin(dest, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, dirMode(hdr.FileInfo().Mode())); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, hdr.FileInfo().Mode()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := symlink(dest, target, hdr.Linkname); err != nil {
				return err
			}
		case tar.TypeLink:
			source, err := safeJoin(dest, hdr.Linkname)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			if err := os.Link(source, target); err != nil {
				return err
			}
		}
	}
}

func extractZip(file *os.File, size int64, dest string, progress io.Writer) error {
	reader, err := zip.NewReader(&countingReaderAt{r: file, w: progress}, size)
	if err != nil {
		return fmt.Errorf("error reading zip archive: %w", err)
	}

	for _, f := range reader.File {
		target, err := safeJoin(dest, f.Name)
		if err != nil {
			return err
		}

		mode := f.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, dirMode(mode)); err != nil {
				return err
			}
		case mode&os.ModeSymlink != 0:
			linkname, err := readZipEntry(f)
			if err != nil {
				return err
			}
			if err := symlink(dest, target, linkname); err != nil {
				return err
			}
		default:
			rc, err := f.Open()
			if err != nil {
				return fmt.Errorf("failed to open file in zip: %w", err)
			}
			err = writeFile(target, rc, mode)
			rc.Close()
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func readZipEntry(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func writeFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	perm := mode.Perm()
	if perm == 0 {
		perm = 0o644
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("failed to extract file: %w", err)
	}
	return out.Close()
}

// symlink creates target -> linkname, refusing links that resolve outside dest.
func symlink(dest, target, linkname string) error {
	if filepath.IsAbs(linkname) {
		return fmt.Errorf("absolute symlink target: %s", linkname)
	}
	if !within(dest, filepath.Join(filepath.Dir(target), linkname)) {
		return fmt.Errorf("symlink escapes archive root: %s -> %s", target, linkname)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	return os.Symlink(linkname, target)
}

// safeJoin resolves an archive entry name under base.
func safeJoin(base, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimSpace(name)))
	if clean == "" || clean == "." {
		return base, nil
	}
	if filepath.IsAbs(clean) || filepath.VolumeName(clean) != "" {
		return "", fmt.Errorf("absolute archive path: %s", name)
	}
	target := filepath.Join(base, clean)
	if !within(base, target) {
		return "", fmt.Errorf("invalid archive path: %s", name)
	}
	return target, nil
}

func within(base, target string) bool {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}

// dirMode keeps directories writable by the owner so their contents can be
// extracted and later removed.
func dirMode(mode os.FileMode) os.FileMode {
	return mode.Perm() | 0o700
}

// countingReaderAt reports every byte read through ReadAt to w.
type countingReaderAt struct {
	r io.ReaderAt
	w io.Writer
}

func (c *countingReaderAt) ReadAt(p []byte, off int64) (int, error) {
	n, err := c.r.ReadAt(p, off)
	if n > 0 {
		c.w.Write(p[:n])
	}
	return n, err
}
