package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
)

// AppDirName names the per-user config directory.
const AppDirName = "vennroots"

// PathResolver finds the corpus relative to the working directory, the
// executable and the user config directory.
type PathResolver struct {
	executableDir string
	configDir     string
	workDir       string
}

// NewPathResolver creates a new path resolver that determines the executable location
func NewPathResolver() (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}
	cwd, _ := os.Getwd()

	pr := &PathResolver{
		executableDir: filepath.Dir(execPath),
		configDir:     getConfigDir(homeDir),
		workDir:       cwd,
	}
	log.Debugf("PathResolver initialized: execDir=%s, configDir=%s", pr.executableDir, pr.configDir)
	return pr, nil
}

// getConfigDir returns the appropriate config directory for the platform
func getConfigDir(homeDir string) string {
	switch runtime.GOOS {
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, AppDirName)
		}
		return filepath.Join(homeDir, ".config", AppDirName)
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppDirName)
		}
		return filepath.Join(homeDir, "AppData", "Roaming", AppDirName)
	default:
		return filepath.Join(homeDir, ".config", AppDirName)
	}
}

// GetCorpusPath resolves the corpus location. It tries, in order:
// 1. User-specified path (if absolute)
// 2. Relative to current working directory
// 3. Relative to executable directory
// 4. data/ next to the executable, its parent, and the config dir
// When nothing matches, the working-directory candidate is returned so the
// loader can report a useful error.
func (pr *PathResolver) GetCorpusPath(userSpecifiedPath string) string {
	candidates := pr.corpusCandidates(userSpecifiedPath)
	for _, path := range candidates {
		if isCorpusPath(path) {
			log.Debugf("Found corpus at: %s", path)
			return path
		}
		log.Debugf("Corpus candidate not valid: %s", path)
	}
	if filepath.IsAbs(userSpecifiedPath) {
		return userSpecifiedPath
	}
	return filepath.Join(pr.workDir, userSpecifiedPath)
}

func (pr *PathResolver) corpusCandidates(userSpecifiedPath string) []string {
	if filepath.IsAbs(userSpecifiedPath) {
		return []string{userSpecifiedPath}
	}
	return []string{
		filepath.Join(pr.workDir, userSpecifiedPath),
		filepath.Join(pr.executableDir, userSpecifiedPath),
		filepath.Join(pr.executableDir, "data"),
		filepath.Join(filepath.Dir(pr.executableDir), "data"),
		filepath.Join(pr.configDir, "data"),
	}
}

// isCorpusPath accepts a .txt/.bin file or a directory holding chunk files
// or word lists.
func isCorpusPath(path string) bool {
	stat, err := os.Stat(path)
	if err != nil {
		return false
	}
	if !stat.IsDir() {
		ext := strings.ToLower(filepath.Ext(path))
		return ext == ".txt" || ext == ".bin"
	}
	for _, pattern := range []string{"dict_*.bin", "*.txt"} {
		matches, err := filepath.Glob(filepath.Join(path, pattern))
		if err == nil && len(matches) > 0 {
			return true
		}
	}
	return false
}
