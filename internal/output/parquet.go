package output

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
	"go.uber.org/zap"

	"github.com/chrisdamba/foodrollup/internal/cloudwriter"
)

// ParquetOutput writes flattened metric rows to one parquet file per topic and hour,
// locally or through a cloud writer when a factory is set.
type ParquetOutput struct {
	basePath           string
	folder             string
	mu                 sync.Mutex
	writers            map[string]*writer.ParquetWriter
	writerMutexes      map[string]*sync.Mutex
	files              map[string]source.ParquetFile
	cloudWriterFactory cloudwriter.CloudWriterFactory
	cloudBucketName    string
	logger             *zap.Logger
}

func NewParquetOutput(basePath, folder string, factory cloudwriter.CloudWriterFactory, bucket string, logger *zap.Logger) *ParquetOutput {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParquetOutput{
		basePath:           basePath,
		folder:             folder,
		writers:            make(map[string]*writer.ParquetWriter),
		writerMutexes:      make(map[string]*sync.Mutex),
		files:              make(map[string]source.ParquetFile),
		cloudWriterFactory: factory,
		cloudBucketName:    bucket,
		logger:             logger,
	}
}

func (p *ParquetOutput) WriteMessage(topic string, msg []byte) error {
	env, err := decodeEnvelope(msg)
	if err != nil {
		return err
	}

	topic = sanitizeTopic(topic)
	partition := partitionPath(env.Timestamp)
	writerKey := fmt.Sprintf("%s_%s", topic, partition)

	p.mu.Lock()
	pw, ok := p.writers[writerKey]
	if !ok {
		pw, err = p.createNewWriter(writerKey, topic, partition)
		if err != nil {
			p.mu.Unlock()
			return fmt.Errorf("failed to create new writer: %w", err)
		}
	}
	writerMutex := p.writerMutexes[writerKey]
	p.mu.Unlock()

	writerMutex.Lock()
	defer writerMutex.Unlock()

	for _, row := range Flatten(env.Report) {
		if err := pw.Write(row); err != nil {
			return fmt.Errorf("failed to write metric row: %w", err)
		}
	}
	return nil
}

// createNewWriter must be called with p.mu held.
func (p *ParquetOutput) createNewWriter(writerKey, topic, partition string) (*writer.ParquetWriter, error) {
	var fw source.ParquetFile
	if p.cloudWriterFactory != nil {
		objectPath := path.Join(p.folder, topic, partition, "data.parquet")
		cw, err := p.cloudWriterFactory.NewWriter(p.cloudBucketName, objectPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		fw = NewCloudParquetFile(cw)
	} else {
		fullPath := filepath.Join(p.basePath, p.folder, topic, filepath.FromSlash(partition))
		if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
			return nil, err
		}
		lfw, err := local.NewLocalFileWriter(filepath.Join(fullPath, "data.parquet"))
		if err != nil {
			return nil, fmt.Errorf("failed to create local file writer: %w", err)
		}
		fw = lfw
	}

	pw, err := writer.NewParquetWriter(fw, new(MetricRow), 4)
	if err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to create ParquetWriter: %w", err)
	}

	p.writers[writerKey] = pw
	p.writerMutexes[writerKey] = &sync.Mutex{}
	p.files[writerKey] = fw
	p.logger.Debug("opened parquet writer", zap.String("key", writerKey), zap.Bool("cloud", p.cloudWriterFactory != nil))
	return pw, nil
}

// Close flushes every writer. It keeps going past failures and returns the first one.
func (p *ParquetOutput) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for key, pw := range p.writers {
		if err := pw.WriteStop(); err != nil {
			p.logger.Error("failed to stop parquet writer", zap.String("key", key), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
		if err := p.files[key].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.writers, key)
		delete(p.writerMutexes, key)
		delete(p.files, key)
	}
	return firstErr
}

// CloudParquetFile adapts a write-only CloudWriter to source.ParquetFile.
type CloudParquetFile struct {
	cloudWriter cloudwriter.CloudWriter
	offset      int64
}

func NewCloudParquetFile(cloudWriter cloudwriter.CloudWriter) *CloudParquetFile {
	return &CloudParquetFile{cloudWriter: cloudWriter}
}

func (c *CloudParquetFile) Open(string) (source.ParquetFile, error) {
	return c, nil
}

func (c *CloudParquetFile) Create(string) (source.ParquetFile, error) {
	return c, nil
}

func (c *CloudParquetFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		c.offset = offset
	case io.SeekCurrent:
		c.offset += offset
	default:
		return 0, fmt.Errorf("seek from end not supported for cloud storage")
	}
	return c.offset, nil
}

func (c *CloudParquetFile) Read([]byte) (int, error) {
	return 0, fmt.Errorf("read not supported for cloud storage")
}

func (c *CloudParquetFile) Write(p []byte) (int, error) {
	n, err := c.cloudWriter.Write(p)
	c.offset += int64(n)
	return n, err
}

func (c *CloudParquetFile) Close() error {
	return c.cloudWriter.Close()
}
