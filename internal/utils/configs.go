package utils

import (
	"bufio"
	"embed"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

//go:embed configs
var defaultConfig embed.FS

type Config map[string]string

// ConfigManager holds the key=value settings of the wallet node.
type ConfigManager struct {
	configsPath string
	configs     Config
	configMutex sync.RWMutex
}

// NewConfigManager loads the configs file at path. An empty path resolves to
// the configs file in the application config dir, seeded from the embedded
// defaults on first run.
func NewConfigManager(path string) *ConfigManager {
	if path == "" {
		paths := GetAppPaths("")
		path = filepath.Join(paths.ConfigDir, "configs")
		if err := ensureConfig(path); err != nil {
			panic(err)
		}
	}

	configs, err := readConfigs(path)
	if err != nil {
		panic(err)
	}

	return &ConfigManager{
		configsPath: path,
		configs:     configs,
	}
}

// NewConfigManagerFromMap builds a manager without touching the filesystem.
func NewConfigManagerFromMap(values Config) *ConfigManager {
	configs := Config{}
	maps.Copy(configs, values)
	return &ConfigManager{configs: configs}
}

func ensureConfig(configPath string) error {
	if _, err := os.Stat(configPath); !os.IsNotExist(err) {
		return nil
	}

	data, err := defaultConfig.ReadFile("configs/configs")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

func readConfigs(configsPath string) (Config, error) {
	if len(configsPath) == 0 {
		return nil, fmt.Errorf("invalid configs path `%s`", configsPath)
	}

	file, err := os.Open(configsPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	config := Config{
		"file": configsPath,
	}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		if key = strings.TrimSpace(key); key != "" {
			config[key] = strings.TrimSpace(value)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return config, nil
}

func (cm *ConfigManager) GetConfig(key string) (string, bool) {
	cm.configMutex.RLock()
	defer cm.configMutex.RUnlock()

	value, exists := cm.configs[key]
	return value, exists
}

func (cm *ConfigManager) GetConfigWithDefault(key string, defaultValue string) string {
	if value, exists := cm.GetConfig(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// GetAllConfigs returns a copy of the loaded settings
func (cm *ConfigManager) GetAllConfigs() Config {
	cm.configMutex.RLock()
	defer cm.configMutex.RUnlock()

	configsCopy := make(Config, len(cm.configs))
	maps.Copy(configsCopy, cm.configs)
	return configsCopy
}

// ReloadConfig re-reads the configs file the manager was created with
func (cm *ConfigManager) ReloadConfig() error {
	if cm.configsPath == "" {
		return nil
	}

	newConfigs, err := readConfigs(cm.configsPath)
	if err != nil {
		return err
	}

	cm.configMutex.Lock()
	cm.configs = newConfigs
	cm.configMutex.Unlock()

	return nil
}

// GetConfigDuration parses a duration such as "50s" or "3m"
func (cm *ConfigManager) GetConfigDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := cm.GetConfigWithDefault(key, defaultValue.String())
	duration, err := time.ParseDuration(valueStr)
	if err != nil || duration <= 0 {
		fmt.Printf("Invalid duration '%s' for key '%s', using default %v\n", valueStr, key, defaultValue)
		return defaultValue
	}
	return duration
}

// GetConfigInt parses an integer and falls back to the default when it is out of [min, max]
func (cm *ConfigManager) GetConfigInt(key string, defaultValue int, min int, max int) int {
	valueStr := cm.GetConfigWithDefault(key, strconv.Itoa(defaultValue))
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		fmt.Printf("Invalid integer '%s' for key '%s', using default %d\n", valueStr, key, defaultValue)
		return defaultValue
	}
	if value < min || value > max {
		fmt.Printf("Value %d for key '%s' out of range [%d, %d], using default %d\n", value, key, min, max, defaultValue)
		return defaultValue
	}
	return value
}

// GetConfigSlice splits a comma-separated value, dropping empty items
func (cm *ConfigManager) GetConfigSlice(key string, defaultValues []string) []string {
	valueStr, exists := cm.GetConfig(key)
	if !exists || strings.TrimSpace(valueStr) == "" {
		return defaultValues
	}

	var values []string
	for _, value := range strings.Split(valueStr, ",") {
		if value = strings.TrimSpace(value); value != "" {
			values = append(values, value)
		}
	}

	if len(values) == 0 {
		return defaultValues
	}
	return values
}

// GetConfigBool accepts true/false, yes/no, 1/0, on/off and enabled/disabled
func (cm *ConfigManager) GetConfigBool(key string, defaultValue bool) bool {
	valueStr := strings.ToLower(cm.GetConfigWithDefault(key, strconv.FormatBool(defaultValue)))

	switch valueStr {
	case "true", "yes", "1", "on", "enabled":
		return true
	case "false", "no", "0", "off", "disabled":
		return false
	default:
		fmt.Printf("Invalid boolean '%s' for key '%s', using default %v\n", valueStr, key, defaultValue)
		return defaultValue
	}
}

// SetConfig overrides a value for the lifetime of the process
func (cm *ConfigManager) SetConfig(key string, value interface{}) {
	var strValue string
	switch v := value.(type) {
	case string:
		strValue = v
	case bool:
		strValue = strconv.FormatBool(v)
	case int:
		strValue = strconv.Itoa(v)
	case time.Duration:
		strValue = v.String()
	default:
		strValue = fmt.Sprintf("%v", v)
	}

	cm.configMutex.Lock()
	cm.configs[key] = strValue
	cm.configMutex.Unlock()
}
