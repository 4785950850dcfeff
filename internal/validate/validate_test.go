// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package validate

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_URL(t *testing.T) {
	tests := []struct {
		name           string
		value          string
		allowedSchemes []string
		wantErr        bool
	}{
		{"valid http", "http://example.com", []string{"http", "https"}, false},
		{"valid https", "https://example.com", []string{"http", "https"}, false},
		{"empty url", "", []string{"http"}, true},
		{"no host", "http://", []string{"http"}, true},
		{"invalid scheme", "ftp://example.com", []string{"http", "https"}, true},
		{"no scheme", "example.com", []string{"http"}, true},
		{"with port", "http://example.com:8080", []string{"http"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.URL("testURL", tt.value, tt.allowedSchemes)
			assert.Equal(t, tt.wantErr, !v.IsValid(), "err: %v", v.Err())
		})
	}
}

func TestValidator_Origin(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"https://academy.example", false},
		{"https://academy.example/", false},
		{"http://localhost:3000", false},
		{"https://academy.example/course", true},
		{"https://academy.example?x=1", true},
		{"https://user@academy.example", true},
		{"academy.example", true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			v := New()
			v.Origin("origin", tt.value)
			assert.Equal(t, tt.wantErr, !v.IsValid(), "err: %v", v.Err())
		})
	}
}

func TestValidator_ListenAddr(t *testing.T) {
	for addr, wantErr := range map[string]bool{
		":8080":          false,
		"127.0.0.1:8080": false,
		"[::1]:9000":     false,
		"localhost":      true,
		"":               true,
	} {
		v := New()
		v.ListenAddr("listenAddr", addr)
		assert.Equal(t, wantErr, !v.IsValid(), "addr %q", addr)
	}
}

func TestValidator_NumericAndDurations(t *testing.T) {
	v := New()
	v.Range("a", 5, 1, 10)
	v.FloatRange("b", 0.9, 0, 1)
	v.PositiveDuration("c", time.Second)
	v.NonNegativeDuration("d", 0)
	v.NonNegative("e", 0)
	require.True(t, v.IsValid())

	v.Range("a", 11, 1, 10)
	v.FloatRange("b", 1.5, 0, 1)
	v.PositiveDuration("c", 0)
	v.NonNegativeDuration("d", -time.Second)
	v.NonNegative("e", -1)
	assert.Len(t, v.Errors(), 5)
}

func TestValidator_OneOfAndNotEmpty(t *testing.T) {
	v := New()
	v.OneOf("backend", "memory", []string{"memory", "redis"})
	v.NotEmpty("name", "x")
	require.True(t, v.IsValid())

	v.OneOf("backend", "disk", []string{"memory", "redis"})
	v.NotEmpty("name", "  ")
	assert.Len(t, v.Errors(), 2)
}

func TestValidationError_Aggregates(t *testing.T) {
	v := New()
	require.NoError(t, v.Err())

	v.AddError("first", "bad", 1)
	v.AddError("second", "worse", 2)
	err := v.Err()
	require.Error(t, err)

	var verr ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"first", "second"}, verr.Fields())
	assert.Equal(t, "validation failed for first: bad; validation failed for second: worse", err.Error())

	// Err returns a copy; later errors do not leak into it.
	v.AddError("third", "late", 3)
	assert.Len(t, verr.Errors(), 2)
}

func TestLogLevel(t *testing.T) {
	for _, l := range LogLevels {
		assert.True(t, LogLevel(l).IsValid())
	}
	assert.False(t, LogLevel("trace").IsValid())
}
