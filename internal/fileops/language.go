package fileops

import (
	"path/filepath"
	"strings"
)

// languageByExt maps file extensions to display language tags. The mapping
// is purely presentational; unknown extensions fall back to plaintext.
var languageByExt = map[string]string{
	".py":    "python",
	".js":    "javascript",
	".ts":    "typescript",
	".java":  "java",
	".c":     "c",
	".cpp":   "cpp",
	".cxx":   "cpp",
	".cc":    "cpp",
	".h":     "c",
	".hpp":   "cpp",
	".html":  "html",
	".css":   "css",
	".scss":  "scss",
	".less":  "less",
	".json":  "json",
	".xml":   "xml",
	".yaml":  "yaml",
	".yml":   "yaml",
	".md":    "markdown",
	".txt":   "plaintext",
	".sql":   "sql",
	".sh":    "shell",
	".bash":  "shell",
	".php":   "php",
	".rb":    "ruby",
	".go":    "go",
	".rs":    "rust",
	".swift": "swift",
	".kt":    "kotlin",
	".scala": "scala",
	".r":     "r",
	".m":     "objective-c",
	".pl":    "perl",
	".lua":   "lua",
	".dart":  "dart",
}

// DetectLanguage returns the display language tag for a file path.
func DetectLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := languageByExt[ext]; ok {
		return lang
	}
	return "plaintext"
}
