package pathguard

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

// Size policy thresholds for snapshot payloads. Estimates feed threshold
// decisions only, never correctness.
const (
	// StreamSizeBytes is the point above which writes go through the
	// incremental encoder instead of a single buffer.
	StreamSizeBytes = 10 * 1024 * 1024

	// WarnSizeBytes is the soft threshold: back up anyway, log a warning.
	WarnSizeBytes = 50 * 1024 * 1024

	// MaxSizeBytes is the hard limit: payloads above this are rejected
	// before any write occurs.
	MaxSizeBytes = 500 * 1024 * 1024

	// sampleWindowBytes bounds how much of a payload gets serialized when
	// estimating its size.
	sampleWindowBytes = 256 * 1024
)

// FormatSize renders a byte count for display (B, KB, MB, GB).
func FormatSize(bytes int64) string {
	const unit = 1024

	switch {
	case bytes >= unit*unit*unit:
		return fmt.Sprintf("%.2f GB", float64(bytes)/(unit*unit*unit))
	case bytes >= unit*unit:
		return fmt.Sprintf("%.2f MB", float64(bytes)/(unit*unit))
	case bytes >= unit:
		return fmt.Sprintf("%.2f KB", float64(bytes)/unit)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// errSampleFull aborts encoding once the sample window is filled.
var errSampleFull = errors.New("sample window full")

// sampleWriter counts bytes and stops the encoder at the window boundary.
type sampleWriter struct {
	written int64
	limit   int64
}

func (sw *sampleWriter) Write(p []byte) (int, error) {
	sw.written += int64(len(p))
	if sw.written > sw.limit {
		return 0, errSampleFull
	}

	return len(p), nil
}

// EstimateSize approximates the serialized JSON size of value in bytes
// without fully materializing large payloads. Small values are serialized
// outright; once the serialized prefix exceeds the sample window the total is
// extrapolated from the structural key count.
func EstimateSize(value any) (int64, error) {
	sw := &sampleWriter{limit: sampleWindowBytes}

	enc := json.NewEncoder(sw)

	err := enc.Encode(value)
	if err == nil {
		return sw.written, nil
	}

	if !errors.Is(err, errSampleFull) {
		return 0, fmt.Errorf("failed to serialize value for size estimate: %w", err)
	}

	totalKeys := countKeys(value)
	if totalKeys == 0 {
		return sw.written, nil
	}

	sampledKeys := sampledKeyCount(value, sampleWindowBytes)
	if sampledKeys == 0 {
		sampledKeys = 1
	}

	perKey := float64(sampleWindowBytes) / float64(sampledKeys)

	return int64(perKey * float64(totalKeys)), nil
}

// countKeys walks the structure counting map entries, slice elements, struct
// fields and scalar leaves. It is the structural denominator for extrapolation.
func countKeys(value any) int64 {
	return countReflected(reflect.ValueOf(value))
}

func countReflected(v reflect.Value) int64 {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return 1
		}

		return countReflected(v.Elem())
	case reflect.Map:
		var n int64
		for _, key := range v.MapKeys() {
			n += 1 + countReflected(v.MapIndex(key))
		}

		return n
	case reflect.Slice, reflect.Array:
		var n int64
		for i := range v.Len() {
			n += 1 + countReflected(v.Index(i))
		}

		return n
	case reflect.Struct:
		var n int64

		for i := range v.NumField() {
			if !v.Type().Field(i).IsExported() {
				continue
			}

			n += 1 + countReflected(v.Field(i))
		}

		return n
	default:
		return 1
	}
}

// sampledKeyCount counts how many structural keys fit inside the sample
// window by serializing top-level entries until the window is exceeded.
func sampledKeyCount(value any, window int64) int64 {
	var used, keys int64

	for _, item := range topLevelItems(value) {
		data, err := json.Marshal(item)
		if err != nil {
			continue
		}

		used += int64(len(data))
		keys += 1 + countKeys(item)

		if used > window {
			break
		}
	}

	return keys
}

// topLevelItems splits a container value into its immediate children so the
// sampler can serialize them one at a time.
func topLevelItems(value any) []any {
	v := reflect.ValueOf(value)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}

		v = v.Elem()
	}

	var items []any

	switch v.Kind() {
	case reflect.Map:
		for _, key := range v.MapKeys() {
			items = append(items, v.MapIndex(key).Interface())
		}
	case reflect.Slice, reflect.Array:
		for i := range v.Len() {
			items = append(items, v.Index(i).Interface())
		}
	case reflect.Struct:
		for i := range v.NumField() {
			if !v.Type().Field(i).IsExported() {
				continue
			}

			items = append(items, v.Field(i).Interface())
		}
	default:
		items = append(items, value)
	}

	return items
}
