// Package logger 提供基于logrus的应用日志
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var std = newDefault()

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	return l
}

// L 返回全局Logger
// 说明：未调用Init时返回默认配置（stdout、Info级别、文本格式）
func L() *logrus.Logger {
	return std
}

// Init 按配置初始化全局Logger
// 参数：
//   - level: debug | info | warn | error
//   - format: console | json
//   - output: stdout | stderr | 文件路径
//   - enableCaller: 是否记录调用位置
func Init(level, format, output string, enableCaller bool) error {
	l := logrus.New()

	// 1. 日志级别
	lv, err := logrus.ParseLevel(level)
	if err != nil {
		lv = logrus.InfoLevel
	}
	l.SetLevel(lv)

	// 2. 输出格式
	if format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	// 3. 输出目标
	switch output {
	case "", "stdout":
		l.SetOutput(os.Stdout)
	case "stderr":
		l.SetOutput(os.Stderr)
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		l.SetOutput(f)
	}

	l.SetReportCaller(enableCaller)

	std = l
	return nil
}
