package utils

import (
	"os"
	"path/filepath"
	"runtime"
)

const defaultAppName = "sentient-wallet"

// AppPaths are the per-user directories the wallet writes to
type AppPaths struct {
	ConfigDir string
	LogDir    string
	DataDir   string
}

// GetAppPaths resolves platform directories for appName (XDG on linux) and creates them.
func GetAppPaths(appName string) *AppPaths {
	if appName == "" {
		appName = defaultAppName
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		if homeDir, err = os.Getwd(); err != nil {
			homeDir = "."
		}
	}

	var paths AppPaths
	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(homeDir, "AppData", "Roaming")
		}
		dir := filepath.Join(appData, appName)
		paths = AppPaths{ConfigDir: dir, LogDir: filepath.Join(dir, "logs"), DataDir: dir}

	case "darwin":
		dir := filepath.Join(homeDir, "Library", "Application Support", appName)
		paths = AppPaths{ConfigDir: dir, LogDir: filepath.Join(homeDir, "Library", "Logs", appName), DataDir: dir}

	default:
		paths = AppPaths{
			ConfigDir: filepath.Join(xdgDir("XDG_CONFIG_HOME", homeDir, ".config"), appName),
			LogDir:    filepath.Join(xdgDir("XDG_CACHE_HOME", homeDir, ".cache"), appName, "logs"),
			DataDir:   filepath.Join(xdgDir("XDG_DATA_HOME", homeDir, ".local", "share"), appName),
		}
	}

	for _, dir := range []string{paths.ConfigDir, paths.LogDir, paths.DataDir} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return &AppPaths{ConfigDir: ".", LogDir: ".", DataDir: "."}
		}
	}

	return &paths
}

func xdgDir(env, homeDir string, fallback ...string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	return filepath.Join(append([]string{homeDir}, fallback...)...)
}

// GetDataPath returns filename inside the data dir unless it is already absolute
func (ap *AppPaths) GetDataPath(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(ap.DataDir, filename)
}
