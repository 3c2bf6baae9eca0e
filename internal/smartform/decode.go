package smartform

import (
	"bytes"
	"encoding/json"

	sferrors "github.com/a3tai/mcp-smartform-parser/internal/smartform/errors"
	"github.com/a3tai/mcp-smartform-parser/internal/smartform/parser"
)

// DecodeRows decodes a row export. Both a bare JSON array of rows and an
// object with a "rows" array are accepted.
func DecodeRows(data []byte) ([]parser.Row, error) {
	req, err := DecodeParseRequest(data)
	if err != nil {
		return nil, err
	}
	return req.Rows, nil
}

// DecodeParseRequest decodes a bare JSON array of rows, or an object with
// "rows" and optional "options".
func DecodeParseRequest(data []byte) (ParseRequest, error) {
	var req ParseRequest
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return req, sferrors.New(sferrors.ErrorTypeInvalidInput, "empty row payload")
	}

	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &req); err != nil {
			return req, sferrors.Wrap(sferrors.ErrorTypeInvalidInput, err).WithContext("decoding row object")
		}
	} else if err := json.Unmarshal(trimmed, &req.Rows); err != nil {
		return req, sferrors.Wrap(sferrors.ErrorTypeInvalidInput, err).WithContext("decoding row array")
	}

	if req.Rows == nil {
		req.Rows = []parser.Row{}
	}
	return req, nil
}

// DecodeBatch decodes {"documents": [[rows...], ...]}
func DecodeBatch(data []byte) (ParseBatchRequest, error) {
	var req ParseBatchRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return req, sferrors.Wrap(sferrors.ErrorTypeInvalidInput, err).WithContext("decoding batch request")
	}
	return req, nil
}
