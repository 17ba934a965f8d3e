// Package gamefile classifies files into coarse game-file categories by
// extension and scans directories for importable files.
package gamefile

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// FileType is the coarse category of a game file.
type FileType int

const (
	FileTypeUnknown FileType = iota
	FileTypeInstaller
	FileTypeIso
	FileTypeCompressed
	FileTypeRom
)

func (t FileType) String() string {
	switch t {
	case FileTypeInstaller:
		return "Installer"
	case FileTypeIso:
		return "Iso"
	case FileTypeCompressed:
		return "Compressed"
	case FileTypeRom:
		return "Rom"
	}

	return "Unknown"
}

var installerExtensions = map[string]struct{}{
	".exe": {}, ".msi": {}, ".sh": {}, ".pkg": {}, ".dmg": {}, ".appimage": {},
}

var isoExtensions = map[string]struct{}{
	".iso": {}, ".bin": {}, ".cue": {}, ".img": {}, ".mdf": {}, ".mds": {}, ".nrg": {},
}

var compressedExtensions = map[string]struct{}{
	".zip": {}, ".7z": {}, ".rar": {}, ".tar": {}, ".gz": {}, ".xz": {}, ".bz2": {},
}

var romExtensions = map[string]struct{}{
	".nsp": {}, ".xci": {}, ".rom": {}, ".nes": {}, ".snes": {}, ".sfc": {}, ".smc": {},
	".gba": {}, ".gbc": {}, ".gb": {}, ".nds": {}, ".3ds": {}, ".cia": {},
	".n64": {}, ".z64": {}, ".v64": {}, ".gcm": {}, ".wbfs": {}, ".wad": {},
	".gen": {}, ".md": {}, ".sms": {}, ".gg": {},
	".psx": {}, ".pbp": {},
	".vpk": {},
}

// DetectFileType classifies a path by extension, case-insensitively.
func DetectFileType(path string) FileType {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return FileTypeUnknown
	}

	if _, ok := installerExtensions[ext]; ok {
		return FileTypeInstaller
	}

	if _, ok := isoExtensions[ext]; ok {
		return FileTypeIso
	}

	if _, ok := compressedExtensions[ext]; ok {
		return FileTypeCompressed
	}

	if _, ok := romExtensions[ext]; ok {
		return FileTypeRom
	}

	return FileTypeUnknown
}

// IsGameFile reports whether the path has any recognized game-file extension.
func IsGameFile(path string) bool {
	return DetectFileType(path) != FileTypeUnknown
}

// ScanDirectory returns every game file under path, recursively. A missing
// path yields an empty list, never an error.
func ScanDirectory(fsys afero.Fs, path string) []string {
	exists, err := afero.DirExists(fsys, path)
	if err != nil || !exists {
		return []string{}
	}

	var files []string

	afero.Walk(fsys, path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}

		if !info.IsDir() && IsGameFile(p) {
			files = append(files, p)
		}

		return nil
	})

	if files == nil {
		return []string{}
	}

	return files
}
