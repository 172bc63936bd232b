package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Uint64(key string, value uint64) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Domain field helpers

func Component(name string) Field {
	return String("component", name)
}

func Intent(name string) Field {
	return String("intent", name)
}

func Facility(name string) Field {
	return String("facility", name)
}

func NodeID(id uint64) Field {
	return Uint64("node_id", id)
}

func Rows(n int) Field {
	return Int("rows", n)
}

func SkippedRows(n int) Field {
	return Int("skipped_rows", n)
}

func Dropped(n int) Field {
	return Int("dropped_relationships", n)
}

func Nodes(n int) Field {
	return Int("nodes", n)
}

func Edges(n int) Field {
	return Int("edges", n)
}

func Generation(id string) Field {
	return String("generation", id)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}
