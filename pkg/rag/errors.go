// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rag

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when no usable text survives sanitization or
// chunking. Callers must not substitute an empty embedding or answer.
var ErrEmptyInput = errors.New("no usable text to embed after sanitization")

// ShapeError reports an external model response that matches none of the
// recognized schemas. The pipeline fails closed on such responses instead
// of attempting best-effort field access.
type ShapeError struct {
	Component string // component that received the response, e.g. "embedder"
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	msg := fmt.Sprintf("[%s] unexpected response shape: %s", e.Component, e.Message)
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ShapeError) Unwrap() error {
	return e.Err
}

// NewShapeError creates a new ShapeError.
func NewShapeError(component, message string, err error) *ShapeError {
	return &ShapeError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}
