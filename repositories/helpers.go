package repositories

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Значения из записей bolt-протокола приходят как int64/float64/string.
// Отсутствующие и null-поля сводим к нулевым значениям.

func stringValue(record *neo4j.Record, key string) string {
	v, ok := record.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

func intValue(record *neo4j.Record, key string) int {
	v, ok := record.Get(key)
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func floatValue(record *neo4j.Record, key string) float64 {
	v, ok := record.Get(key)
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	}
	return 0
}
