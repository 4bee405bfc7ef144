package envutil

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Lookup resolves a setting by name. ok is false when it is unset or blank.
type Lookup func(name string) (value string, ok bool)

// OS reads the process environment.
func OS(name string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(name))
	return v, v != ""
}

// Map serves settings from a static map, e.g. a parsed config file.
func Map(m map[string]string) Lookup {
	return func(name string) (string, bool) {
		v := strings.TrimSpace(m[name])
		return v, v != ""
	}
}

// Reader consults its lookups in order; the first non-blank value wins.
type Reader struct {
	lookups []Lookup
}

func NewReader(lookups ...Lookup) Reader {
	return Reader{lookups: lookups}
}

func (r Reader) raw(name string) (string, bool) {
	for _, lookup := range r.lookups {
		if lookup == nil {
			continue
		}
		if v, ok := lookup(name); ok {
			return v, true
		}
	}
	return "", false
}

func (r Reader) Present(name string) bool {
	_, ok := r.raw(name)
	return ok
}

func (r Reader) String(name, def string) string {
	if v, ok := r.raw(name); ok {
		return v
	}
	return def
}

func (r Reader) Int(name string, def int) int {
	v, ok := r.raw(name)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func (r Reader) Int64(name string, def int64) int64 {
	v, ok := r.raw(name)
	if !ok {
		return def
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return i
}

func (r Reader) Float(name string, def float64) float64 {
	v, ok := r.raw(name)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func (r Reader) Bool(name string, def bool) bool {
	v, _ := r.raw(name)
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

// Duration accepts Go duration strings ("30s") or bare seconds ("30").
func (r Reader) Duration(name string, def time.Duration) time.Duration {
	v, ok := r.raw(name)
	if !ok {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

// List splits a comma separated value, dropping empty entries.
func (r Reader) List(name string, def []string) []string {
	v, ok := r.raw(name)
	if !ok {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

var env = NewReader(OS)

func String(name, def string) string { return env.String(name, def) }
func Int(name string, def int) int { return env.Int(name, def) }
func Int64(name string, def int64) int64 { return env.Int64(name, def) }
func Bool(name string, def bool) bool { return env.Bool(name, def) }
func Duration(name string, def time.Duration) time.Duration { return env.Duration(name, def) }
func List(name string, def []string) []string { return env.List(name, def) }
func Present(name string) bool { return env.Present(name) }
