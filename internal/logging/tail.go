package logging

import (
	"bytes"
	"io"
	"os"
)

// TailFile returns the last n lines of a file without reading it whole; log
// files here rotate at 10MB but can still be large. A missing file yields no
// lines and no error.
func TailFile(path string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := info.Size()
	if size == 0 {
		return nil, nil
	}

	const chunk = 32 * 1024
	var buf []byte
	offset := size

	// read fixed chunks backwards until enough newlines accumulated
	for offset > 0 && bytes.Count(buf, []byte{'\n'}) <= n {
		step := int64(chunk)
		if offset < step {
			step = offset
		}
		offset -= step
		part := make([]byte, step)
		if _, err := f.ReadAt(part, offset); err != nil && err != io.EOF {
			return nil, err
		}
		buf = append(part, buf...)
	}

	lines := splitLines(buf)
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}

func splitLines(b []byte) []string {
	b = bytes.TrimRight(b, "\n")
	if len(b) == 0 {
		return nil
	}
	raw := bytes.Split(b, []byte{'\n'})
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		out = append(out, string(bytes.TrimRight(l, "\r")))
	}
	return out
}
