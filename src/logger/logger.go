package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	Log         = logrus.New()
	currentFile *os.File
)

// InitLogger ロガーを初期化し、必要ならファイル出力を設定
func InitLogger(level, directory string) error {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("不正なログレベル %q: %w", level, err)
	}

	Log = logrus.New()
	Log.SetLevel(parsed)

	// JSON形式でログを出力
	Log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})

	if directory == "" {
		Log.SetOutput(os.Stdout)
		return nil
	}

	// ログディレクトリを作成
	if err := os.MkdirAll(directory, 0755); err != nil {
		return fmt.Errorf("ログディレクトリの作成に失敗: %w", err)
	}

	if err := openLogFile(directory); err != nil {
		return fmt.Errorf("ログファイルの作成に失敗: %w", err)
	}

	// 標準出力とファイルの両方に出力
	Log.SetOutput(io.MultiWriter(os.Stdout, currentFile))

	Log.WithField("file", currentFile.Name()).Info("ロガーが初期化されました")
	return nil
}

// openLogFile タイムスタンプ付きの新しいログファイルを作成
func openLogFile(directory string) error {
	if currentFile != nil {
		currentFile.Close()
	}

	filename := fmt.Sprintf("app_%s.log", time.Now().Format("2006-01-02_15-04-05"))
	file, err := os.OpenFile(filepath.Join(directory, filename), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	currentFile = file
	return nil
}

// GetCurrentLogFile 現在のログファイルパスを取得
func GetCurrentLogFile() string {
	if currentFile != nil {
		return currentFile.Name()
	}
	return ""
}

// CloseLogger ロガーを終了
func CloseLogger() {
	if currentFile != nil {
		Log.Info("ログファイルを閉じます")
		Log.SetOutput(os.Stdout)
		currentFile.Close()
		currentFile = nil
	}
}

// WithFields フィールド付きログエントリを作成
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Log.WithFields(fields)
}

// WithField フィールド付きログエントリを作成（単一フィールド）
func WithField(key string, value interface{}) *logrus.Entry {
	return Log.WithField(key, value)
}
