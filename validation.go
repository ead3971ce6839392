package logging

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate
var once sync.Once

func sharedValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

func validateConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New(errMsgNilConfig)
	}
	if err := sharedValidator().Struct(cfg); err != nil {
		return fmt.Errorf("%s %w", errMsgConfigInvalid, err)
	}
	return nil
}

// RecordValidator decides whether a record's message payload conforms to the
// expected structured shape. Payloads that do not conform are dropped from
// the file sink; the console sink is never filtered.
//
// Any mechanism can back a RecordValidator; ModelValidator provides the
// stock struct-tag implementation.
type RecordValidator func(payload []byte) bool

// ModelValidator builds a RecordValidator from a model struct. A payload
// conforms when it parses as JSON, decodes into a fresh instance of the
// model type, and passes the model's `validate` struct tags.
//
// The model may be passed by value or by pointer; it must be a struct.
func ModelValidator(model interface{}) (RecordValidator, error) {
	if model == nil {
		return nil, errors.New(errMsgNilModel)
	}

	typ := reflect.TypeOf(model)
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("record model must be a struct, got %s", typ.Kind())
	}

	v := sharedValidator()

	return func(payload []byte) bool {
		target := reflect.New(typ).Interface()
		if err := json.Unmarshal(payload, target); err != nil {
			return false
		}
		return v.Struct(target) == nil
	}, nil
}
