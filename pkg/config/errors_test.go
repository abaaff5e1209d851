package config

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrorMessage(t *testing.T) {
	err := ValidationError{
		Kind:    InvalidEnumValue,
		Path:    "p2p.topics_of_interest.messages",
		Message: `invalid value "urgent"`,
		Hint:    interestHint,
	}
	assert.Equal(t, `p2p.topics_of_interest.messages: invalid value "urgent"; allowed values: low, normal, high`, err.Error())

	assert.Equal(t, "rest.listen: required field is missing", missing("rest.listen").Error())
	assert.Equal(t, "<document>: invalid YAML: boom", malformed("", "invalid YAML: %s", "boom").Error())
}

func TestValidationErrorIs(t *testing.T) {
	sentinels := map[ErrorKind]error{
		MissingRequiredField: ErrMissingRequiredField,
		InvalidAddress:       ErrInvalidAddress,
		InvalidEnumValue:     ErrInvalidEnumValue,
		InvalidValue:         ErrInvalidValue,
		MalformedDocument:    ErrMalformedDocument,
	}

	for kind, sentinel := range sentinels {
		t.Run(kind.String(), func(t *testing.T) {
			wrapped := fmt.Errorf("startup: %w", ValidationError{Kind: kind, Path: "rest.listen"})
			assert.True(t, errors.Is(wrapped, sentinel))
			assert.Equal(t, kind, KindOf(wrapped))

			for other, s := range sentinels {
				if other != kind {
					assert.False(t, errors.Is(wrapped, s), "%v must not match %v", kind, other)
				}
			}
		})
	}

	assert.Equal(t, ErrorKind(0), KindOf(errors.New("plain")))
	assert.Equal(t, "ErrorKind(42)", ErrorKind(42).String())
}

func TestInterestLevel(t *testing.T) {
	for _, s := range []string{"low", "normal", "high"} {
		level, err := ParseInterestLevel(s)
		assert.NoError(t, err)
		assert.True(t, level.Valid())
		assert.Equal(t, s, level.String())

		out, err := level.MarshalYAML()
		assert.NoError(t, err)
		assert.Equal(t, s, out)
	}

	for _, s := range []string{"", "Low", "medium", "1"} {
		_, err := ParseInterestLevel(s)
		assert.Error(t, err, s)
	}

	assert.False(t, InterestLevel(0).Valid())
	_, err := InterestLevel(7).MarshalYAML()
	assert.Error(t, err)
}
