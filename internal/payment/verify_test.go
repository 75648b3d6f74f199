package payment

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostbackVerifier(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		if strings.Contains(gotBody, "txn_id=good") {
			_, _ = w.Write([]byte("VERIFIED"))
			return
		}
		_, _ = w.Write([]byte("INVALID"))
	}))
	defer srv.Close()

	v := NewPostbackVerifier(srv.URL)

	require.NoError(t, v.Verify(context.Background(), []byte("txn_id=good&custom=1")))
	assert.Equal(t, "cmd=_notify-validate&txn_id=good&custom=1", gotBody)

	err := v.Verify(context.Background(), []byte("txn_id=forged"))
	assert.ErrorIs(t, err, ErrNotVerified)
}

func TestPostbackVerifier_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	v := NewPostbackVerifier(srv.URL)
	err := v.Verify(context.Background(), []byte("txn_id=x"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotVerified)
}

func TestParseIPN(t *testing.T) {
	n, err := ParseIPN([]byte("txn_id=61E67681CH3238416&payment_status=Completed&custom=12&receiver_email=shop%40example.com"))
	require.NoError(t, err)
	assert.Equal(t, "shop@example.com", n.ReceiverEmail)
	id, ok := n.OrderID()
	assert.True(t, ok)
	assert.Equal(t, int64(12), id)

	n, err = ParseIPN([]byte("custom=abc"))
	require.NoError(t, err)
	_, ok = n.OrderID()
	assert.False(t, ok)

	_, err = ParseIPN([]byte("%zz"))
	assert.Error(t, err)
}
