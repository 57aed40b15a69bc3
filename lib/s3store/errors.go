// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package s3store

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/aws/smithy-go"
)

// retryTokens cover ExpiredToken, OperationAborted, RequestTimeout,
// SlowDown, Busy and RequestLimitExceeded, among others.
var retryTokens = []string{"exceeded", "expire", "aborted", "timeout", "slow", "busy"}

// RequiresRetry reports whether an object-store error is transient.
func RequiresRetry(err error) bool {
	if err == nil {
		return false
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := strings.ToLower(apiErr.ErrorCode())
		message := strings.ToLower(apiErr.ErrorMessage())
		for _, token := range retryTokens {
			if strings.Contains(code, token) || strings.Contains(message, token) {
				return true
			}
		}
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsNotFound reports whether an object-store error means the key does
// not exist.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch strings.ToLower(apiErr.ErrorCode()) {
		case "nosuchkey", "notfound", "404":
			return true
		}
	}
	var statusErr interface{ HTTPStatusCode() int }
	return errors.As(err, &statusErr) && statusErr.HTTPStatusCode() == http.StatusNotFound
}

// TooLargeError reports a document over the configured size limit.
type TooLargeError struct {
	Size  int
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("document is %d bytes, over the %d byte limit", e.Size, e.Limit)
}

func (e *TooLargeError) ExitCode() int { return 1 }
