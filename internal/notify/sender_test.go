package notify

import (
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "codereview/pkg/errors"
	"codereview/pkg/models"
)

func testNotification() *models.Notification {
	return &models.Notification{
		From: "review@example.com",
		To:   []string{"team@example.com"},
		CC:   []string{"lead@example.com"},
		SMTP: models.SMTP{Host: "mail.example.com", Port: 587},
	}
}

func TestSend(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotPayload []byte

	sender := NewSender(nil)
	sender.send = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotPayload = addr, from, to, msg
		return nil
	}

	msg := &Message{Subject: "2 commits with concerns", Body: "line one\nline two\n"}
	require.NoError(t, sender.Send(testNotification(), msg))

	assert.Equal(t, "mail.example.com:587", gotAddr)
	assert.Equal(t, "review@example.com", gotFrom)
	assert.Equal(t, []string{"team@example.com", "lead@example.com"}, gotTo)

	payload := string(gotPayload)
	assert.Contains(t, payload, "Subject: 2 commits with concerns\r\n")
	assert.Contains(t, payload, "To: team@example.com\r\n")
	assert.Contains(t, payload, "Cc: lead@example.com\r\n")
	assert.Contains(t, payload, "line one\r\nline two\r\n")
}

func TestSendDefaultsPort(t *testing.T) {
	var gotAddr string
	sender := NewSender(nil)
	sender.send = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		return nil
	}

	cfg := testNotification()
	cfg.SMTP.Port = 0
	require.NoError(t, sender.Send(cfg, &Message{Subject: "s", Body: "b"}))
	assert.Equal(t, "mail.example.com:25", gotAddr)
}

func TestSendConfigErrors(t *testing.T) {
	sender := NewSender(nil)
	sender.send = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		t.Fatal("send must not be reached on config errors")
		return nil
	}

	noHost := testNotification()
	noHost.SMTP.Host = ""
	err := sender.Send(noHost, &Message{})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConfigInvalid, apperrors.GetErrorCode(err))

	noRecipients := testNotification()
	noRecipients.To = nil
	noRecipients.CC = nil
	err = sender.Send(noRecipients, &Message{})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConfigInvalid, apperrors.GetErrorCode(err))
}

func TestSendDeliveryFailure(t *testing.T) {
	sender := NewSender(nil)
	sender.send = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		return assert.AnError
	}

	err := sender.Send(testNotification(), &Message{Subject: "s", Body: "b"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotifyFailed, apperrors.GetErrorCode(err))
}
