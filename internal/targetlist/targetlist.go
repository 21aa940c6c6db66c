// Package targetlist parses the line-oriented list files: the pipe-delimited
// origin target schema and the plain domains list. Both tolerate blank lines
// and #-comments.
package targetlist

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"
)

// Target is one origin server to monitor, resolved against its explicit IP.
type Target struct {
	Name     string
	Domain   string
	OriginIP string
	Port     int
	Path     string
	SlowTime float64 // seconds before a matching response counts as slow
	Scheme   string
}

// Defaults fills the optional tail fields of a target line.
type Defaults struct {
	Port     int
	Path     string
	SlowTime float64
	Scheme   string
}

// ParseTargets reads the pipe schema
// name|domain|originIP[|port[|path[|slowTime[|scheme]]]].
// Lines with fewer than three fields are skipped; unparsable optional fields
// fall back to the defaults.
func ParseTargets(r io.Reader, d Defaults) ([]Target, error) {
	var out []Target
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "|")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) < 3 {
			continue
		}

		t := Target{
			Name:     parts[0],
			Domain:   parts[1],
			OriginIP: parts[2],
			Port:     d.Port,
			Path:     d.Path,
			SlowTime: d.SlowTime,
			Scheme:   d.Scheme,
		}
		if len(parts) >= 4 && parts[3] != "" {
			if p, err := strconv.Atoi(parts[3]); err == nil {
				t.Port = p
			}
		}
		if len(parts) >= 5 && parts[4] != "" {
			t.Path = parts[4]
		}
		if !strings.HasPrefix(t.Path, "/") {
			t.Path = "/" + t.Path
		}
		if len(parts) >= 6 && parts[5] != "" {
			if s, err := strconv.ParseFloat(parts[5], 64); err == nil {
				t.SlowTime = s
			}
		}
		if len(parts) >= 7 && parts[6] != "" {
			t.Scheme = strings.ToLower(parts[6])
		}
		out = append(out, t)
	}
	return out, sc.Err()
}

// LoadTargets reads the targets file. A missing file is an error: the caller
// treats it as a configuration problem, distinct from a present-but-empty
// list.
func LoadTargets(path string, d Defaults) ([]Target, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseTargets(f, d)
}

// ReadDomains reads one domain per line, skipping blanks and comments. A
// missing file is an error, same as LoadTargets.
func ReadDomains(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}
