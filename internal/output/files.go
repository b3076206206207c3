package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// JSONOutput appends one envelope per line to a partitioned data.json.
type JSONOutput struct {
	basePath string
	folder   string
	mu       sync.Mutex
	files    map[string]*os.File
}

// CSVOutput writes flattened metric rows to a partitioned data.csv.
type CSVOutput struct {
	basePath string
	folder   string
	mu       sync.Mutex
	files    map[string]*os.File
	writers  map[string]*csv.Writer
}

func NewJSONOutput(basePath, folder string) *JSONOutput {
	return &JSONOutput{
		basePath: basePath,
		folder:   folder,
		files:    make(map[string]*os.File),
	}
}

func NewCSVOutput(basePath, folder string) *CSVOutput {
	return &CSVOutput{
		basePath: basePath,
		folder:   folder,
		files:    make(map[string]*os.File),
		writers:  make(map[string]*csv.Writer),
	}
}

// partitionDir creates and returns the local directory for topic at the envelope's hour.
func partitionDir(basePath, folder, topic string, env Envelope) (string, string, error) {
	partition := partitionPath(env.Timestamp)
	fullPath := filepath.Join(basePath, folder, sanitizeTopic(topic), filepath.FromSlash(partition))
	if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
		return "", "", err
	}
	return fullPath, fmt.Sprintf("%s_%s", topic, partition), nil
}

func (j *JSONOutput) WriteMessage(topic string, msg []byte) error {
	env, err := decodeEnvelope(msg)
	if err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	fullPath, fileKey, err := partitionDir(j.basePath, j.folder, topic, env)
	if err != nil {
		return err
	}
	file, ok := j.files[fileKey]
	if !ok {
		file, err = os.Create(filepath.Join(fullPath, "data.json"))
		if err != nil {
			return err
		}
		j.files[fileKey] = file
	}

	if _, err := file.Write(msg); err != nil {
		return err
	}
	_, err = file.WriteString("\n")
	return err
}

func (j *JSONOutput) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	for key, file := range j.files {
		if err := file.Close(); err != nil {
			return err
		}
		delete(j.files, key)
	}
	return nil
}

func (c *CSVOutput) WriteMessage(topic string, msg []byte) error {
	env, err := decodeEnvelope(msg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fullPath, fileKey, err := partitionDir(c.basePath, c.folder, topic, env)
	if err != nil {
		return err
	}
	csvWriter, ok := c.writers[fileKey]
	if !ok {
		file, err := os.Create(filepath.Join(fullPath, "data.csv"))
		if err != nil {
			return err
		}
		c.files[fileKey] = file
		csvWriter = csv.NewWriter(file)
		c.writers[fileKey] = csvWriter
		if err := csvWriter.Write(csvHeader); err != nil {
			return err
		}
	}

	for _, row := range Flatten(env.Report) {
		if err := csvWriter.Write(row.record()); err != nil {
			return err
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

func (c *CSVOutput) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, csvWriter := range c.writers {
		csvWriter.Flush()
		if err := csvWriter.Error(); err != nil {
			return err
		}
		if err := c.files[key].Close(); err != nil {
			return err
		}
		delete(c.writers, key)
		delete(c.files, key)
	}
	return nil
}
