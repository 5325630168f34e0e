package notify

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/fastfood-backend/pkg/config"
	"github.com/angelmondragon/fastfood-backend/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSendClient struct {
	resp     *rest.Response
	err      error
	sent     []*mail.SGMailV3
	deadline bool
}

func (f *fakeSendClient) SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	_, f.deadline = ctx.Deadline()
	f.sent = append(f.sent, email)
	return f.resp, f.err
}

func testConfig() config.SendgridConfig {
	return config.SendgridConfig{
		APIKey:      "SG.test",
		DefaultFrom: "no-reply@fastfood.test",
		FromName:    "FastFood",
		Timeout:     5 * time.Second,
	}
}

func TestValidateAddress(t *testing.T) {
	for _, bad := range []string{"", "   ", "no-at-sign", "Alice <a@x.com>", "a@localhost"} {
		_, err := ValidateAddress(bad)
		assert.ErrorIs(t, err, ErrInvalidAddress, bad)
	}
	got, err := ValidateAddress(" a@x.com ")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got)
}

func TestSendgridNotifierSends(t *testing.T) {
	client := &fakeSendClient{resp: &rest.Response{StatusCode: http.StatusAccepted}}
	n := newSendgridNotifier(client, testConfig(), nil)

	require.NoError(t, n.Send(context.Background(), "alice@example.com", "Mã OTP xác thực", "<p>123456</p>"))
	require.Len(t, client.sent, 1)
	assert.True(t, client.deadline)

	msg := client.sent[0]
	assert.Equal(t, "Mã OTP xác thực", msg.Subject)
	assert.Equal(t, "no-reply@fastfood.test", msg.From.Address)
	require.Len(t, msg.Personalizations, 1)
	assert.Equal(t, "alice@example.com", msg.Personalizations[0].To[0].Address)
	require.Len(t, msg.Content, 1)
	assert.Equal(t, "text/html", msg.Content[0].Type)
}

func TestSendgridNotifierFailures(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.InfoLevel, Output: &buf})

	rejected := newSendgridNotifier(&fakeSendClient{resp: &rest.Response{StatusCode: http.StatusUnauthorized, Body: "bad key"}}, testConfig(), logg)
	err := rejected.Send(context.Background(), "a@example.com", "s", "b")
	assert.ErrorIs(t, err, ErrDeliveryFailure)
	assert.True(t, strings.Contains(buf.String(), "sendgrid.rejected"))

	broken := newSendgridNotifier(&fakeSendClient{err: errors.New("dial tcp: timeout")}, testConfig(), nil)
	assert.ErrorIs(t, broken.Send(context.Background(), "a@example.com", "s", "b"), ErrDeliveryFailure)

	client := &fakeSendClient{resp: &rest.Response{StatusCode: http.StatusAccepted}}
	assert.ErrorIs(t, newSendgridNotifier(client, testConfig(), nil).Send(context.Background(), "nope", "s", "b"), ErrInvalidAddress)
	assert.Empty(t, client.sent)
}

func TestNewSendgridNotifierRequiresConfig(t *testing.T) {
	_, err := NewSendgridNotifier(config.SendgridConfig{}, nil)
	assert.Error(t, err)
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.InfoLevel, Output: &buf})
	n := NewLogNotifier(logg)

	require.NoError(t, n.Send(context.Background(), "bob@example.com", "Hi", "<b>code</b>"))
	assert.Contains(t, buf.String(), "notify.email_logged")
	assert.Contains(t, buf.String(), "bob@example.com")

	assert.ErrorIs(t, n.Send(context.Background(), "bogus", "Hi", "x"), ErrInvalidAddress)
}
