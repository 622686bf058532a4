package http

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/kai-insight/internal/domain/history"
	"github.com/yanqian/kai-insight/internal/domain/storage"
	apperrors "github.com/yanqian/kai-insight/pkg/errors"
)

func TestFromDomainErrorCodes(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"storage unavailable", apperrors.Wrap(storage.CodeUnavailable, "history is temporarily unavailable", errors.New("i/o timeout")), http.StatusServiceUnavailable, storage.CodeUnavailable, "history is temporarily unavailable"},
		{"history not found", apperrors.Wrap(history.CodeNotFound, "history item not found", nil), http.StatusNotFound, history.CodeNotFound, "history item not found"},
		{"unmapped code", apperrors.Wrap("mystery", "internal detail", nil), http.StatusInternalServerError, "mystery", "something went wrong"},
		{"plain error", errors.New("internal detail"), http.StatusInternalServerError, apperrors.CodeInternal, "something went wrong"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := fromDomainError(tc.err)
			require.Equal(t, tc.status, got.Status)
			require.Equal(t, tc.code, got.Code)
			require.Equal(t, tc.message, got.Message)
		})
	}
}
