package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
)

// FileSet manages a collection of source files loaded for one run.
type FileSet struct {
	files   []File
	index   map[string]FileID // path -> id
	baseDir string            // базовая директория для относительных путей
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0),
		index: make(map[string]FileID),
	}
}

// NewFileSetWithBase создаёт FileSet с заданной базовой директорией.
func NewFileSetWithBase(baseDir string) *FileSet {
	fs := NewFileSet()
	fs.baseDir = baseDir
	return fs
}

// SetBaseDir устанавливает базовую директорию для относительных путей.
func (fileSet *FileSet) SetBaseDir(dir string) {
	fileSet.baseDir = dir
}

// BaseDir returns the directory relative paths are computed against,
// falling back to the working directory.
func (fileSet *FileSet) BaseDir() string {
	if fileSet.baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return fileSet.baseDir
}

// Add stores a file from normalized bytes, computes LineIdx and Hash, and returns a new FileID.
// It always creates a new FileID even if a file with the same path already exists.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	lenFiles, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	if _, err := safecast.Conv[uint32](len(content)); err != nil {
		panic(fmt.Errorf("file %s is too large: %w", path, err))
	}
	normalizedPath := normalizePath(path)
	id := FileID(lenFiles)
	fileSet.files = append(fileSet.files, File{
		ID:      id,
		Path:    normalizedPath,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	fileSet.index[normalizedPath] = id
	return id
}

// Load reads a file from disk, normalizes CRLF/BOM, and calls Add.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	content, flags := Normalize(content)
	return fileSet.Add(path, content, flags), nil
}

// AddVirtual adds a virtual file (stdin, test, or editor buffer) with the FileVirtual flag.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	content, flags := Normalize(content)
	return fileSet.Add(name, content, flags|FileVirtual)
}

// Get returns the file metadata for the given ID.
func (fileSet *FileSet) Get(id FileID) *File {
	return &fileSet.files[id]
}

// GetLatest returns the latest file ID for the given path, if it exists.
func (fileSet *FileSet) GetLatest(path string) (FileID, bool) {
	id, ok := fileSet.index[normalizePath(path)]
	return id, ok
}

// Resolve converts a span into line and column positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fileSet.files[span.File]
	return f.LineCol(span.Start), f.LineCol(span.End)
}

// LineCol converts a byte offset to a 1-based line and column.
func (f *File) LineCol(off Pos) LineCol {
	return toLineCol(f.LineIdx, uint32(off))
}

// GetLine возвращает строку с заданным номером (1-based) из файла.
// Если строка не существует, возвращает пустую строку.
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 {
		return ""
	}
	lenLineIdx, err := safecast.Conv[uint32](len(f.LineIdx))
	if err != nil {
		panic(fmt.Errorf("line index length overflow: %w", err))
	}
	lenContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}

	var start, end uint32
	switch {
	case lineNum == 1:
		start = 0
	case (lineNum - 2) < lenLineIdx:
		start = f.LineIdx[lineNum-2] + 1
	default:
		return ""
	}
	if (lineNum - 1) < lenLineIdx {
		end = f.LineIdx[lineNum-1]
	} else {
		end = lenContent
	}
	if start >= lenContent || start > end {
		return ""
	}
	return string(f.Content[start:end])
}

// FormatPath форматирует путь к файлу в зависимости от режима.
// mode: "absolute", "relative", "basename"
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := filepath.Abs(f.Path); err == nil {
			return filepath.ToSlash(abs)
		}
	case "relative":
		if baseDir == "" {
			if wd, err := os.Getwd(); err == nil {
				baseDir = wd
			}
		}
		absPath, err := filepath.Abs(f.Path)
		if err != nil {
			return f.Path
		}
		if rel, err := filepath.Rel(baseDir, absPath); err == nil {
			return filepath.ToSlash(rel)
		}
	case "basename":
		return filepath.Base(f.Path)
	}
	return f.Path
}
