// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stringdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/AleutianAI/genescope/services/genescope/datatypes"
)

// RequestError describes a failed STRING request.
type RequestError struct {
	Endpoint   string
	Kind       datatypes.ErrorKind
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("stringdb %s (%s, status %d): %v", e.Endpoint, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("stringdb %s (%s): %v", e.Endpoint, e.Kind, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// KindOf classifies any error returned by the client.
func KindOf(err error) datatypes.ErrorKind {
	if err == nil {
		return datatypes.ErrorKindNone
	}
	var re *RequestError
	if errors.As(err, &re) {
		return re.Kind
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return datatypes.ErrorKindCanceled
	}
	return datatypes.ErrorKindTransport
}
