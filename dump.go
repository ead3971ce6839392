package logging

import (
	"fmt"
	"reflect"

	"github.com/rs/zerolog"
)

// Maximum recursion depth for Dump to prevent stack overflow
const maxDumpDepth = 10

// maxDumpElements caps how many slice/array elements Dump logs.
const maxDumpElements = 10

// Dump logs the contents of the provided value at Debug level. Structs are
// walked field by field (exported fields only), maps and slices element by
// element, basic types by value. Pointer cycles are detected and cut.
func (s *Service) Dump(v interface{}) {
	if s == nil || !s.isInitialized.Load() {
		return
	}

	s.activeOps.Add(1)
	defer s.activeOps.Add(-1)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isInitialized.Load() {
		return
	}

	logger := s.logger.Load()
	if logger == nil {
		return
	}

	if v == nil {
		logger.Debug().Msg("Dump: <nil>")
		return
	}

	visited := make(map[uintptr]bool)
	dumpValue(logger, v, "", visited, 0)
}

func dumpValue(logger *zerolog.Logger, v interface{}, prefix string, visited map[uintptr]bool, depth int) {
	if depth > maxDumpDepth {
		logger.Debug().Msgf("%s: <max depth reached>", prefix)
		return
	}
	if v == nil {
		logger.Debug().Msgf("%s: <nil>", prefix)
		return
	}

	val := reflect.ValueOf(v)

	// Unwrap interfaces and pointers with cycle detection.
	for val.Kind() == reflect.Interface || val.Kind() == reflect.Ptr {
		if val.IsNil() {
			logger.Debug().Msgf("%s: <nil>", prefix)
			return
		}
		if val.Kind() == reflect.Ptr {
			ptr := val.Pointer()
			if visited[ptr] {
				logger.Debug().Msgf("%s: <circular reference>", prefix)
				return
			}
			visited[ptr] = true
		}
		val = val.Elem()
	}

	typ := val.Type()

	switch val.Kind() {
	case reflect.Struct:
		if prefix == "" {
			logger.Debug().Msgf("Struct: %s", typ.Name())
		} else {
			logger.Debug().Msgf("%s: %s {", prefix, typ.Name())
		}

		for i := 0; i < val.NumField(); i++ {
			fieldVal := val.Field(i)
			if !fieldVal.CanInterface() {
				continue
			}

			fieldPrefix := typ.Field(i).Name
			if prefix != "" {
				fieldPrefix = prefix + "." + fieldPrefix
			}
			dumpValue(logger, fieldVal.Interface(), fieldPrefix, visited, depth+1)
		}

		if prefix != "" {
			logger.Debug().Msgf("%s: }", prefix)
		}

	case reflect.Map:
		logger.Debug().Msgf("%s: map[%s]%s (len: %d) {",
			prefix, typ.Key().String(), typ.Elem().String(), val.Len())

		iter := val.MapRange()
		for iter.Next() {
			mapPrefix := fmt.Sprintf("%s[%v]", prefix, iter.Key().Interface())
			dumpValue(logger, iter.Value().Interface(), mapPrefix, visited, depth+1)
		}

		logger.Debug().Msgf("%s: }", prefix)

	case reflect.Slice, reflect.Array:
		logger.Debug().Msgf("%s: %s (len: %d) {", prefix, typ.String(), val.Len())

		for i := 0; i < val.Len() && i < maxDumpElements; i++ {
			elemPrefix := fmt.Sprintf("%s[%d]", prefix, i)
			dumpValue(logger, val.Index(i).Interface(), elemPrefix, visited, depth+1)
		}
		if val.Len() > maxDumpElements {
			logger.Debug().Msgf("%s: ... (%d more elements)", prefix, val.Len()-maxDumpElements)
		}

		logger.Debug().Msgf("%s: }", prefix)

	default:
		logger.Debug().Msgf("%s: %v", prefix, val.Interface())
	}
}
