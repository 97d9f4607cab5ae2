package transport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRequest(t *testing.T) {
	body := bytes.NewBufferString(`{"jsonrpc":"2.0","method":"test","params":{"a":1},"id":1}`)
	req, err := ParseRequest(body)
	require.NoError(t, err)
	require.Equal(t, "2.0", req.JSONRPC)
	require.Equal(t, "test", req.Method)
	require.Equal(t, json.RawMessage(`{"a":1}`), req.Params)
}

func TestParseRequest_Invalid(t *testing.T) {
	body := bytes.NewBufferString(`{"jsonrpc":"2.0","id":1}`)
	_, err := ParseRequest(body)
	require.Error(t, err)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, 1, ErrInvalidParams, "bad params", nil)

	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Body.String(), `"error"`)
}

type codedErr struct {
	code, msg, hint string
}

func (e codedErr) Error() string             { return e.code + ": " + e.msg }
func (e codedErr) CodeValue() string         { return e.code }
func (e codedErr) MessageValue() string      { return e.msg }
func (e codedErr) DetailsValue() any         { return nil }
func (e codedErr) RecoveryHintValue() string { return e.hint }

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp
}

func TestWriteHandlerError(t *testing.T) {
	t.Run("domain error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteHandlerError(rec, 1, fmt.Errorf("wrapped: %w", codedErr{"SOURCE_NOT_FOUND", "source not found", "list sources"}))

		resp := decodeResponse(t, rec)
		require.Equal(t, ErrApplication, resp.Error.Code)
		require.Equal(t, "source not found", resp.Error.Message)
		data := resp.Error.Data.(map[string]any)
		require.Equal(t, "SOURCE_NOT_FOUND", data["code"])
		require.Equal(t, "list sources", data["recovery_hint"])
	})

	t.Run("unknown method", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteHandlerError(rec, 1, codedErr{code: "METHOD_NOT_FOUND", msg: "unknown method: x"})
		require.Equal(t, ErrMethodNotFound, decodeResponse(t, rec).Error.Code)
	})

	t.Run("invalid params", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteHandlerError(rec, 1, codedErr{code: "INVALID_PARAMS", msg: "bad"})
		require.Equal(t, ErrInvalidParams, decodeResponse(t, rec).Error.Code)
	})

	t.Run("plain error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteHandlerError(rec, 1, errors.New("boom"))
		resp := decodeResponse(t, rec)
		require.Equal(t, ErrInternal, resp.Error.Code)
		require.Equal(t, "boom", resp.Error.Message)
	})
}
