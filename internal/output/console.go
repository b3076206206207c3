package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// ConsoleOutput pretty-prints each message to a writer, stdout by default.
type ConsoleOutput struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsoleOutput(w io.Writer) *ConsoleOutput {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleOutput{w: w}
}

func (c *ConsoleOutput) WriteMessage(topic string, msg []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, msg, "", "  "); err != nil {
		buf.Reset()
		buf.Write(msg)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.w, "[%s] %s\n", topic, buf.String())
	return err
}

func (c *ConsoleOutput) Close() error {
	return nil
}
