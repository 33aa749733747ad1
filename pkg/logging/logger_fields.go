package logging

import (
	"time"
)

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

// Duration stores d in its String form so JSON output stays readable.
func Duration(key string, d time.Duration) Field {
	return Field{Key: key, Value: d.String()}
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

// Pool-domain helpers

func Component(name string) Field {
	return String("component", name)
}

func Pool(name string) Field {
	return String("pool", name)
}

func PoolID(id string) Field {
	return String("pool_id", id)
}

func Operation(op string) Field {
	return String("operation", op)
}

func Count(n int) Field {
	return Int("count", n)
}

// Cursor is the number of available items after an operation.
func Cursor(n int) Field {
	return Int("cursor", n)
}

// Reservoir is the physical length of the reservoir after an operation.
func Reservoir(n int) Field {
	return Int("reservoir", n)
}

func Worker(id int) Field {
	return Int("worker", id)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}
