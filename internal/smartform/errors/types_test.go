package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_String(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		want      string
	}{
		{ErrorTypeUnknown, "UNKNOWN"},
		{ErrorTypeInvalidInput, "INVALID_INPUT"},
		{ErrorTypeRequestTooLarge, "REQUEST_TOO_LARGE"},
		{ErrorTypeInvalidFile, "INVALID_FILE"},
		{ErrorTypeSecurityRestriction, "SECURITY_RESTRICTION"},
		{ErrorTypeInternalFault, "INTERNAL_FAULT"},
		{ErrorTypeTimeout, "TIMEOUT"},
		{ErrorType(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.errorType.String())
		})
	}
}

func TestErrorType_Classification(t *testing.T) {
	assert.True(t, ErrorTypeInvalidInput.IsClientError())
	assert.True(t, ErrorTypeSecurityRestriction.IsClientError())
	assert.False(t, ErrorTypeInternalFault.IsClientError())
	assert.False(t, ErrorTypeTimeout.IsClientError())

	assert.Equal(t, SeverityCritical, ErrorTypeInternalFault.GetSeverity())
	assert.Equal(t, SeverityWarning, ErrorTypeInvalidInput.GetSeverity())
	assert.Equal(t, SeverityError, TypeOf(New(ErrorTypeTimeout, "slow")).GetSeverity())
	assert.Equal(t, "critical", SeverityCritical.String())
	assert.Equal(t, "warning", ErrorTypeRequestTooLarge.GetSeverity().String())
	assert.Equal(t, "unknown", ErrorSeverity(42).String())
}

func TestSmartFormError_Error(t *testing.T) {
	err := New(ErrorTypeInvalidInput, "bad rows")
	assert.Equal(t, "[INVALID_INPUT] bad rows", err.Error())

	err = Newf(ErrorTypeInvalidFile, "file %s is empty", "a.json").WithContext("loading export")
	assert.Equal(t, "[INVALID_FILE] file a.json is empty: loading export", err.Error())
	assert.False(t, err.Timestamp.IsZero())
}

func TestWrap(t *testing.T) {
	err := Wrap(ErrorTypeInvalidFile, io.ErrUnexpectedEOF).WithFile("/data/rows.json")
	assert.Equal(t, "/data/rows.json", err.FilePath)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	wrapped := fmt.Errorf("reading: %w", err)
	assert.Equal(t, ErrorTypeInvalidFile, TypeOf(wrapped))
	assert.True(t, IsType(wrapped, ErrorTypeInvalidFile))

	var target *SmartFormError
	require.True(t, stderrors.As(wrapped, &target))
	assert.Same(t, err, target)
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrorTypeUnknown, TypeOf(nil))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(io.EOF))
	assert.False(t, IsType(nil, ErrorTypeUnknown))
	assert.True(t, IsType(Wrap(ErrorTypeTimeout, context.Canceled), ErrorTypeTimeout))
}

func TestNewInternalFault(t *testing.T) {
	err := NewInternalFault("index out of range").WithRow(3, 17)
	assert.Equal(t, ErrorTypeInternalFault, err.Type)
	assert.Equal(t, "smartform parse failed: index out of range", err.Message)
	assert.Equal(t, 3, err.RowIndex)
	assert.Equal(t, 17, err.RowID)
	assert.NotEmpty(t, err.StackTrace)
	assert.Nil(t, err.Unwrap())

	cause := stderrors.New("boom")
	err = NewInternalFault(cause)
	assert.ErrorIs(t, err, cause)
}
