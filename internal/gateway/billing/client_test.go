package billing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courier-dispatch/internal/apperr"
)

func newMockedClient(t *testing.T) (*HTTPClient, *httpmock.MockTransport) {
	t.Helper()
	mt := httpmock.NewMockTransport()
	return NewHTTPClient("http://billing.local/", 0).WithTransport(mt), mt
}

func TestHTTPClient_Refund(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		responder httpmock.Responder
		want      bool
		wantErr   error
		temporary bool
	}{
		{
			name:      "refunded",
			responder: httpmock.NewStringResponder(http.StatusOK, `{"refunded":true}`),
			want:      true,
		},
		{
			name:      "declined",
			responder: httpmock.NewStringResponder(http.StatusConflict, ``),
		},
		{
			name:      "unknown order",
			responder: httpmock.NewStringResponder(http.StatusNotFound, ``),
			wantErr:   apperr.ErrNotFound,
		},
		{
			name:      "server error",
			responder: httpmock.NewStringResponder(http.StatusServiceUnavailable, ``),
			temporary: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c, mt := newMockedClient(t)
			mt.RegisterResponder(http.MethodPost, "http://billing.local/orders/o-1/refund", tc.responder)

			got, err := c.Refund(context.Background(), "o-1")
			assert.Equal(t, tc.want, got)
			switch {
			case tc.wantErr != nil:
				require.ErrorIs(t, err, tc.wantErr)
			case tc.temporary:
				var se *StatusError
				require.True(t, errors.As(err, &se))
				assert.True(t, se.Temporary())
				assert.Equal(t, http.StatusServiceUnavailable, se.Code)
			default:
				require.NoError(t, err)
			}
			assert.Equal(t, 1, mt.GetTotalCallCount())
		})
	}
}

func TestHTTPClient_MarkDeliveryAssigned(t *testing.T) {
	t.Parallel()

	c, mt := newMockedClient(t)
	var got deliveryRequest
	mt.RegisterResponder(http.MethodPost, "http://billing.local/orders/o-1/delivery",
		func(req *http.Request) (*http.Response, error) {
			if req.Header.Get("Content-Type") != "application/json" {
				return httpmock.NewStringResponse(http.StatusUnsupportedMediaType, ""), nil
			}
			if err := json.NewDecoder(req.Body).Decode(&got); err != nil {
				return httpmock.NewStringResponse(http.StatusBadRequest, ""), nil
			}
			return httpmock.NewStringResponse(http.StatusNoContent, ""), nil
		})

	require.NoError(t, c.MarkDeliveryAssigned(context.Background(), "o-1", "p-7"))
	assert.Equal(t, "p-7", got.PartnerID)
}

func TestHTTPClient_MarkDeliveryAssigned_BadRequestIsPermanent(t *testing.T) {
	t.Parallel()

	c, mt := newMockedClient(t)
	mt.RegisterResponder(http.MethodPost, "http://billing.local/orders/o-1/delivery",
		httpmock.NewStringResponder(http.StatusBadRequest, ""))

	err := c.MarkDeliveryAssigned(context.Background(), "o-1", "p-1")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.False(t, se.Temporary())
	assert.False(t, isRetryable(err))
}

func TestHTTPClient_TransportErrorIsRetryable(t *testing.T) {
	t.Parallel()

	c, mt := newMockedClient(t)
	mt.RegisterResponder(http.MethodPost, "http://billing.local/orders/o-1/refund",
		httpmock.NewErrorResponder(errors.New("connection refused")))

	_, err := c.Refund(context.Background(), "o-1")
	require.Error(t, err)
	assert.True(t, isRetryable(err))
}
