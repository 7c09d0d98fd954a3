package querybuilder

import (
	"errors"
	"fmt"
)

var (
	// ErrQueryNotBound, SetQuery çağrılmadan Apply çağrıldığında döner.
	ErrQueryNotBound = errors.New("querybuilder: no query bound, call SetQuery first")

	// ErrConditionBuild, ConditionBuilder.Build'in kendi CanApply'ının
	// reddedeceği bir girdiyle çağrıldığını belirtir.
	ErrConditionBuild = errors.New("querybuilder: condition build failed")
)

// ConditionBuildError, Build hatasının ayrıntısıdır.
//
//	var cbe *ConditionBuildError
//	if errors.As(err, &cbe) { ... cbe.Key ... }
type ConditionBuildError struct {
	Field  string
	Key    string
	Value  any
	Reason string
}

func (e *ConditionBuildError) Error() string {
	return fmt.Sprintf("querybuilder: cannot build condition for field %q from key %q (%v): %s",
		e.Field, e.Key, e.Value, e.Reason)
}

func (e *ConditionBuildError) Unwrap() error { return ErrConditionBuild }
