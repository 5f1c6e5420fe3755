package chaterr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"network", Network("GET /x: %v", errors.New("refused")), ErrNetwork},
		{"validation", Validation("room name is empty"), ErrValidation},
		{"not found", NotFound("room %d", 7), ErrNotFound},
		{"invalid operation", InvalidOperation("private room %d cannot be left", 7), ErrInvalidOperation},
		{"invalid state", InvalidState("send while %s", "connecting"), ErrInvalidState},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.err, tc.sentinel)
			for _, other := range cases {
				if other.sentinel != tc.sentinel {
					assert.NotErrorIs(t, tc.err, other.sentinel)
				}
			}
		})
	}
}

func TestWrappingSurvivesFurtherWrapping(t *testing.T) {
	err := fmt.Errorf("open room 7: %w", NotFound("room 7"))
	assert.ErrorIs(t, err, ErrNotFound)
}
