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

// Helpers for the field names this codebase logs most

func Component(name string) Field {
	return String("component", name)
}

func ChainID(id string) Field {
	return String("chain_id", id)
}

func ProjectID(id string) Field {
	return String("project_id", id)
}

func NodeID(id string) Field {
	return String("node_id", id)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}
