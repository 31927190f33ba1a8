package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "logs"

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	UseSSL          bool
}

// ArchiveConfig controls which log files get archived and how often
type ArchiveConfig struct {
	Directory string
	Interval  time.Duration
	MaxAge    time.Duration
	// ActiveFile returns the log file currently being written, which is never archived
	ActiveFile func() string
}

// LogArchiver moves aged log files from the log directory to S3
type LogArchiver struct {
	client s3iface.S3API
	bucket string
	config ArchiveConfig
	logger *logrus.Logger
	now    func() time.Time
}

// NewS3Client S3クライアントを作成
func NewS3Client(config *S3Config) (s3iface.S3API, error) {
	awsConfig := &aws.Config{
		Region:           aws.String(config.Region),
		Credentials:      credentials.NewStaticCredentials(config.AccessKeyID, config.SecretAccessKey, ""),
		DisableSSL:       aws.Bool(!config.UseSSL),
		S3ForcePathStyle: aws.Bool(true), // MinIOなどのS3互換ストレージ用
	}

	// エンドポイントが指定されている場合（MinIOなど）
	if config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(config.Endpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("AWSセッションの作成に失敗: %w", err)
	}
	return s3.New(sess), nil
}

// NewLogArchiver creates an archiver uploading to bucket through client
func NewLogArchiver(client s3iface.S3API, bucket string, config ArchiveConfig, logger *logrus.Logger) *LogArchiver {
	if config.ActiveFile == nil {
		config.ActiveFile = func() string { return "" }
	}
	return &LogArchiver{
		client: client,
		bucket: bucket,
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// ObjectKey S3オブジェクトキーを生成
func ObjectKey(filePath string) string {
	return path.Join(keyPrefix, filepath.Base(filePath))
}

// SelectArchivable returns the .log files in entries last modified before cutoff,
// sorted by name, excluding the active file
func SelectArchivable(entries []os.DirEntry, cutoff time.Time, active string) []string {
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		if active != "" && entry.Name() == filepath.Base(active) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names
}

// UploadLogFile ログファイルをS3にアップロード
func (a *LogArchiver) UploadLogFile(ctx context.Context, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("ファイルの読み込みに失敗: %w", err)
	}
	defer file.Close()

	key := ObjectKey(filePath)
	_, err = a.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String("application/x-ndjson"),
		Metadata: map[string]*string{
			"upload-time": aws.String(a.now().UTC().Format(time.RFC3339)),
			"source":      aws.String("ideas-jar"),
		},
	})
	if err != nil {
		return fmt.Errorf("S3アップロードに失敗: %w", err)
	}

	a.logger.WithFields(logrus.Fields{
		"file":   filepath.Base(filePath),
		"bucket": a.bucket,
		"key":    key,
	}).Info("ログファイルをS3にアップロードしました")
	return nil
}

// ArchiveOlderThan uploads and removes every archivable file older than maxAge.
// Returns how many files were archived.
func (a *LogArchiver) ArchiveOlderThan(ctx context.Context, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(a.config.Directory)
	if err != nil {
		return 0, fmt.Errorf("ログディレクトリの読み取りに失敗: %w", err)
	}

	cutoff := a.now().Add(-maxAge)
	archived := 0
	for _, name := range SelectArchivable(entries, cutoff, a.config.ActiveFile()) {
		if ctx.Err() != nil {
			return archived, ctx.Err()
		}

		filePath := filepath.Join(a.config.Directory, name)
		if err := a.UploadLogFile(ctx, filePath); err != nil {
			a.logger.WithError(err).WithField("file", name).Error("ログファイルのアップロードに失敗")
			continue
		}

		// ローカルファイルを削除
		if err := os.Remove(filePath); err != nil {
			a.logger.WithError(err).WithField("file", name).Error("ローカルファイルの削除に失敗")
			continue
		}
		archived++
	}
	return archived, nil
}

// Run archives on every interval tick until ctx is cancelled, then makes one
// final pass over every closed log file.
func (a *LogArchiver) Run(ctx context.Context) {
	ticker := time.NewTicker(a.config.Interval)
	defer ticker.Stop()

	a.logger.WithFields(logrus.Fields{
		"interval": a.config.Interval,
		"maxAge":   a.config.MaxAge,
	}).Info("定期的なログアップロードを開始しました")

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("最後のログアップロードを実行中...")
			// 呼び出し元のctxは既にキャンセル済み
			final, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if _, err := a.ArchiveOlderThan(final, 0); err != nil {
				a.logger.WithError(err).Error("最後のログアップロードに失敗")
			}
			cancel()
			return
		case <-ticker.C:
			a.logger.Info("定期的なログアップロードを開始")
			if _, err := a.ArchiveOlderThan(ctx, a.config.MaxAge); err != nil {
				a.logger.WithError(err).Error("定期的なログアップロードに失敗")
			}
		}
	}
}
