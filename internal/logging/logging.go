package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

// 日志级别取自这些段，后者优先
var levelSections = []string{"logger_root", "logger_ckan"}

var std = newLogger(os.Stdout)

func newLogger(out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(out)
	logger.SetLevel(logrus.InfoLevel)
	return logger
}

// Logger 获取全局日志实例
func Logger() *logrus.Logger {
	return std
}

// SetOutput 重定向全局日志输出
func SetOutput(out io.Writer) {
	std.SetOutput(out)
}

// ConfigureFromFile 按 INI 文件中的 [logger_*] 段设置日志级别
func ConfigureFromFile(path string) error {
	f, err := ini.LoadSources(ini.LoadOptions{InsensitiveKeys: true, IgnoreInlineComment: true}, path)
	if err != nil {
		return err
	}

	level := logrus.InfoLevel
	for _, name := range levelSections {
		section, err := f.GetSection(name)
		if err != nil || !section.HasKey("level") {
			continue
		}
		if lvl, ok := ParseLevel(section.Key("level").String()); ok {
			level = lvl
		}
	}
	std.SetLevel(level)
	return nil
}

// ParseLevel 解析 Python logging 风格的级别名
func ParseLevel(name string) (logrus.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG", "NOTSET":
		return logrus.DebugLevel, true
	case "INFO":
		return logrus.InfoLevel, true
	case "WARN", "WARNING":
		return logrus.WarnLevel, true
	case "ERROR":
		return logrus.ErrorLevel, true
	case "CRITICAL", "FATAL":
		return logrus.FatalLevel, true
	}
	return logrus.InfoLevel, false
}
