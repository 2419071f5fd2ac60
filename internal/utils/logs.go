package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// RotationInterval is the period after which the log file is rotated
type RotationInterval string

const (
	RotationHourly RotationInterval = "hourly"
	RotationDaily  RotationInterval = "daily"
	RotationWeekly RotationInterval = "weekly"
)

type LogRotationConfig struct {
	MaxSizeMB      int
	MaxBackups     int
	TimeInterval   RotationInterval
	EnableRotation bool
}

// LogsManager writes JSON log lines tagged with a category and the caller's file
type LogsManager struct {
	cm              *ConfigManager
	dir             string
	logFileName     string
	logger          *log.Logger
	file            *os.File
	mutex           sync.RWMutex
	rotationConfig  LogRotationConfig
	lastRotateCheck time.Time
	fileSize        int64
}

func NewLogsManager(cm *ConfigManager) *LogsManager {
	paths := GetAppPaths("")

	lm := &LogsManager{
		cm:          cm,
		dir:         paths.LogDir,
		logFileName: cm.GetConfigWithDefault("logfile", "sentient-wallet.log"),
		logger:      log.New(),
		rotationConfig: LogRotationConfig{
			MaxSizeMB:      cm.GetConfigInt("log_max_size_mb", 50, 1, 10240),
			MaxBackups:     cm.GetConfigInt("log_max_backups", 5, 0, 1000),
			TimeInterval:   RotationInterval(cm.GetConfigWithDefault("log_rotation_interval", string(RotationDaily))),
			EnableRotation: cm.GetConfigBool("log_enable_rotation", true),
		},
		lastRotateCheck: time.Now(),
	}

	if err := lm.openFile(); err != nil {
		panic(err)
	}

	return lm
}

// NewDiscardLogsManager returns a manager that drops every entry. Used by
// tests and by commands that run before the log dir is known.
func NewDiscardLogsManager() *LogsManager {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return &LogsManager{
		cm:              NewConfigManagerFromMap(Config{}),
		logger:          logger,
		lastRotateCheck: time.Now(),
	}
}

func (lm *LogsManager) openFile() error {
	if runtime.GOOS == "windows" {
		lm.logFileName = filepath.FromSlash(lm.logFileName)
	}

	file, err := os.OpenFile(filepath.Join(lm.dir, lm.logFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	lm.file = file

	if stat, err := file.Stat(); err == nil {
		lm.fileSize = stat.Size()
	}

	level, err := log.ParseLevel(lm.cm.GetConfigWithDefault("log_level", "info"))
	if err != nil {
		level = log.InfoLevel
	}
	lm.logger.SetLevel(level)
	lm.logger.SetOutput(file)
	lm.logger.SetFormatter(&log.JSONFormatter{})

	return nil
}

func callerFile(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "<???>:1"
	}
	if slash := strings.LastIndex(file, "/"); slash >= 0 {
		file = file[slash+1:]
	}
	return fmt.Sprintf("%s:%d", file, line)
}

// Log writes message at level under category. Writes after Close are dropped.
func (lm *LogsManager) Log(level string, message string, category string) {
	lm.log(level, message, category, 3)
}

func (lm *LogsManager) log(level, message, category string, skip int) {
	if lm.rotationConfig.EnableRotation {
		lm.checkAndRotate()
	}

	lm.mutex.RLock()
	defer lm.mutex.RUnlock()

	if lm.file == nil {
		return
	}

	entry := lm.logger.WithFields(log.Fields{
		"category": category,
		"file":     callerFile(skip),
	})

	switch level {
	case "trace":
		entry.Trace(message)
	case "debug":
		entry.Debug(message)
	case "warn", "warning":
		entry.Warn(message)
	case "error":
		entry.Error(message)
	default:
		entry.Info(message)
	}

	lm.fileSize += int64(len(message) + 96)
}

func (lm *LogsManager) Debug(message string, category string) {
	lm.log("debug", message, category, 3)
}

func (lm *LogsManager) Info(message string, category string) {
	lm.log("info", message, category, 3)
}

func (lm *LogsManager) Warn(message string, category string) {
	lm.log("warn", message, category, 3)
}

func (lm *LogsManager) Error(message string, category string) {
	lm.log("error", message, category, 3)
}

// Logger exposes the underlying logrus logger for components that log with fields
func (lm *LogsManager) Logger() *log.Logger {
	return lm.logger
}

func (lm *LogsManager) Close() error {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	if lm.file == nil {
		return nil
	}
	err := lm.file.Close()
	lm.file = nil
	return err
}

func (lm *LogsManager) SetLogLevel(levelStr string) error {
	level, err := log.ParseLevel(levelStr)
	if err != nil {
		return fmt.Errorf("invalid log level '%s': %w", levelStr, err)
	}

	lm.mutex.Lock()
	lm.logger.SetLevel(level)
	lm.mutex.Unlock()
	return nil
}

func (lm *LogsManager) GetLogLevel() string {
	lm.mutex.RLock()
	defer lm.mutex.RUnlock()
	return lm.logger.GetLevel().String()
}

func (lm *LogsManager) checkAndRotate() {
	lm.mutex.RLock()
	oversized := lm.fileSize > int64(lm.rotationConfig.MaxSizeMB)*1024*1024
	lm.mutex.RUnlock()

	if oversized {
		lm.rotate("size")
		return
	}

	now := time.Now()
	lm.mutex.Lock()
	due := now.Sub(lm.lastRotateCheck) > time.Minute
	if due {
		lm.lastRotateCheck = now
	}
	lm.mutex.Unlock()

	if due && lm.intervalElapsed(now) {
		lm.rotate("time")
	}
}

func (lm *LogsManager) intervalElapsed(now time.Time) bool {
	lm.mutex.RLock()
	defer lm.mutex.RUnlock()

	if lm.file == nil {
		return false
	}
	stat, err := lm.file.Stat()
	if err != nil {
		return false
	}
	mod := stat.ModTime()

	switch lm.rotationConfig.TimeInterval {
	case RotationHourly:
		return now.Truncate(time.Hour) != mod.Truncate(time.Hour)
	case RotationWeekly:
		nowYear, nowWeek := now.ISOWeek()
		modYear, modWeek := mod.ISOWeek()
		return nowYear != modYear || nowWeek != modWeek
	default:
		return now.YearDay() != mod.YearDay() || now.Year() != mod.Year()
	}
}

func (lm *LogsManager) rotate(reason string) {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	if lm.file == nil {
		return
	}
	lm.file.Close()
	lm.file = nil

	current := filepath.Join(lm.dir, lm.logFileName)
	backup := fmt.Sprintf("%s.%s.bak", lm.logFileName, time.Now().Format("2006-01-02_15-04-05"))
	if err := os.Rename(current, filepath.Join(lm.dir, backup)); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to rotate log %s: %v\n", current, err)
	}

	if err := lm.openFile(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to reopen log after rotation: %v\n", err)
		return
	}
	lm.pruneBackups()

	lm.logger.WithFields(log.Fields{
		"category": "logrotate",
		"reason":   reason,
		"backup":   backup,
	}).Info("Log rotated")
}

func (lm *LogsManager) pruneBackups() {
	if lm.rotationConfig.MaxBackups <= 0 {
		return
	}

	backups, err := filepath.Glob(filepath.Join(lm.dir, lm.logFileName+".*.bak"))
	if err != nil || len(backups) <= lm.rotationConfig.MaxBackups {
		return
	}

	// timestamped names sort chronologically
	sort.Strings(backups)
	for _, old := range backups[:len(backups)-lm.rotationConfig.MaxBackups] {
		os.Remove(old)
	}
}
