package metadata

import (
	"fmt"
	"reflect"
)

// InvalidConstructorError reports a declared constructor that cannot build
// its implementation type.
type InvalidConstructorError struct {
	Type        reflect.Type
	Constructor reflect.Type
	Reason      string
}

func (e *InvalidConstructorError) Error() string {
	if e.Constructor != nil {
		return fmt.Sprintf("invalid constructor %v for %v: %s", e.Constructor, e.Type, e.Reason)
	}
	return fmt.Sprintf("invalid constructor for %v: %s", e.Type, e.Reason)
}

// InvalidSetterError reports a declared setter that cannot inject into its
// implementation type.
type InvalidSetterError struct {
	Type   reflect.Type
	Setter reflect.Type
	Reason string
}

func (e *InvalidSetterError) Error() string {
	if e.Setter != nil {
		return fmt.Sprintf("invalid setter %v for %v: %s", e.Setter, e.Type, e.Reason)
	}
	return fmt.Sprintf("invalid setter for %v: %s", e.Type, e.Reason)
}
