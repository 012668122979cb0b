package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ckan-go/internal/logging"

	"github.com/fatih/color"
)

// EnvConfigPath 指定配置文件的环境变量
const EnvConfigPath = "CKAN_INI"

// DefaultFilenames 未指定配置时在工作目录中查找的文件
var DefaultFilenames = []string{"ckan.ini", "development.ini"}

// ResolvePath 按 参数 -> $CKAN_INI -> 默认文件名 的顺序确定配置文件
func ResolvePath(iniPath string) (string, error) {
	var filename string
	var source []string

	switch {
	case iniPath != "":
		if strings.HasPrefix(iniPath, "~") {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", newConfigurationError("无法展开路径 %s: %v", iniPath, err)
			}
			iniPath = filepath.Join(home, strings.TrimPrefix(iniPath, "~"))
		}
		abs, err := filepath.Abs(iniPath)
		if err != nil {
			return "", newConfigurationError("无法解析配置文件路径 %s: %v", iniPath, err)
		}
		filename = abs
		source = []string{"-c parameter"}
	case os.Getenv(EnvConfigPath) != "":
		filename = os.Getenv(EnvConfigPath)
		source = []string{"$" + EnvConfigPath}
	default:
		source = DefaultFilenames
		cwd, err := os.Getwd()
		if err != nil {
			return "", newConfigurationError("无法获取工作目录: %v", err)
		}
		for _, name := range DefaultFilenames {
			candidate := filepath.Join(cwd, name)
			if _, err := os.Stat(candidate); err == nil {
				filename = candidate
				break
			}
		}
		if filename == "" {
			return "", newConfigurationError(
				"\nERROR: You need to specify the CKAN config (.ini) file path.\n\n"+
					"Use the --config parameter or set environment variable %s\n"+
					"or have one of %s in the current directory.",
				EnvConfigPath, strings.Join(DefaultFilenames, ", "))
		}
	}

	if _, err := os.Stat(filename); err != nil {
		return "", newConfigurationError("Config file not found: %s\n(Given by: %s)",
			filename, strings.Join(source, ", "))
	}
	return filename, nil
}

// LoadConfig 确定配置文件、加载配置链并按文件设置日志
func LoadConfig(iniPath string) (Config, error) {
	filename, err := ResolvePath(iniPath)
	if err != nil {
		return nil, err
	}

	loader, err := NewLoader(filename)
	if err != nil {
		return nil, err
	}

	if err := logging.ConfigureFromFile(filename); err != nil {
		return nil, fmt.Errorf("加载日志配置失败: %w", err)
	}
	logging.Logger().Infof("Using configuration file %s", filename)

	return loader.Config(), nil
}

// ErrorShout 以红色把错误写到标准错误
func ErrorShout(err error) {
	ShoutTo(color.Error, err)
}

// ShoutTo 以红色把错误写到 w
func ShoutTo(w io.Writer, err error) {
	var cfgErr *ConfigurationError
	msg := err.Error()
	if errors.As(err, &cfgErr) {
		msg = cfgErr.Msg
	}
	color.New(color.FgRed).Fprintln(w, msg)
}
