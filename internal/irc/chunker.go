package irc

import (
	"bytes"
	"strings"
)

// DefaultChunkMax is used when no positive line limit is configured.
const DefaultChunkMax = 350

// Chunker splits reply text into IRC-sized lines.
// It buffers content and emits complete lines, or a chunk once the buffer
// reaches the maximum size.
type Chunker struct {
	output       chan<- string
	buffer       *bytes.Buffer
	maxChunkSize int
}

// NewChunker creates a chunker that writes lines to output.
func NewChunker(output chan<- string, maxChunkSize int) *Chunker {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultChunkMax
	}
	return &Chunker{
		output:       output,
		buffer:       &bytes.Buffer{},
		maxChunkSize: maxChunkSize,
	}
}

// Write adds content to the buffer and emits complete lines immediately.
func (c *Chunker) Write(content string) {
	c.buffer.WriteString(content)

	for {
		line, err := c.buffer.ReadString('\n')
		if err != nil {
			// partial line, keep it buffered
			if line != "" {
				c.buffer.WriteString(line)
			}
			break
		}
		if line = strings.TrimRight(line, "\r\n"); line != "" {
			c.emit(line)
		}
	}

	for c.buffer.Len() >= c.maxChunkSize {
		chunk := c.extractBestSplitChunk()
		if chunk == "" {
			break
		}
		c.output <- chunk
	}
}

// emit sends a complete line, splitting it if it is over the limit.
func (c *Chunker) emit(line string) {
	for len(line) > c.maxChunkSize {
		cut := strings.LastIndexByte(line[:c.maxChunkSize], ' ')
		if cut <= 0 {
			c.output <- line[:c.maxChunkSize]
			line = line[c.maxChunkSize:]
			continue
		}
		c.output <- line[:cut]
		line = line[cut+1:]
	}
	if line != "" {
		c.output <- line
	}
}

func (c *Chunker) extractBestSplitChunk() string {
	if c.buffer.Len() == 0 {
		return ""
	}

	data := c.buffer.Bytes()
	end := min(c.maxChunkSize, len(data))

	if idx := bytes.LastIndexByte(data[:end], ' '); idx > 0 {
		chunk := string(data[:idx])
		c.buffer.Next(idx + 1)
		return chunk
	}

	chunk := string(data[:end])
	c.buffer.Next(end)
	return chunk
}

// Flush emits any remaining buffer content.
func (c *Chunker) Flush() {
	if c.buffer.Len() > 0 {
		rest := strings.TrimSpace(c.buffer.String())
		c.buffer.Reset()
		if rest != "" {
			c.emit(rest)
		}
	}
}

// Split chunks a complete reply.
func Split(text string, maxChunkSize int) []string {
	out := make(chan string)
	done := make(chan []string)
	go func() {
		var lines []string
		for l := range out {
			lines = append(lines, l)
		}
		done <- lines
	}()

	c := NewChunker(out, maxChunkSize)
	c.Write(text)
	c.Flush()
	close(out)
	return <-done
}
