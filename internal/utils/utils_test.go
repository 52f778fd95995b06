package utils

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviere_back_end/internal/models"
)

type sentMail struct {
	to, subject, body string
	attachments       []Attachment
}

type fakeSender struct{ sent []sentMail }

func (s *fakeSender) Send(_ context.Context, to, subject, body string, attachments ...Attachment) error {
	s.sent = append(s.sent, sentMail{to, subject, body, attachments})
	return nil
}

type fakeUsers map[int64][2]string

func (u fakeUsers) UserEmail(_ context.Context, id int64) (string, string, error) {
	v, ok := u[id]
	if !ok {
		return "", "", errors.New("unknown user")
	}
	return v[0], v[1], nil
}

var receipt = models.Receipt{
	ID:         12,
	UserID:     5,
	EmittedAt:  time.Date(2026, 7, 15, 18, 30, 0, 0, time.UTC),
	Detail:     "2 Cuaderno, 1 Lápiz",
	TotalPrice: 98.5,
}

func TestReceiptHTML(t *testing.T) {
	qr, err := ReceiptQR(receipt)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(qr, "data:image/png;base64,"))

	html, err := ReceiptHTML(receipt, "Ana <admin>", qr)
	require.NoError(t, err)
	assert.Contains(t, html, "2 Cuaderno, 1 Lápiz")
	assert.Contains(t, html, "$98.50")
	assert.Contains(t, html, "REC-000012-U5")
	assert.Contains(t, html, "15/07/2026 18:30")
	assert.Contains(t, html, "Ana &lt;admin&gt;")
	assert.Contains(t, html, qr)
}

func TestSendReceipt(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, fakeUsers{5: {"ana@mail.com", "Ana"}}, "http://localhost:5173", false)

	require.NoError(t, n.sendReceipt(context.Background(), receipt))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "ana@mail.com", sender.sent[0].to)
	assert.Contains(t, sender.sent[0].subject, "12")
	assert.Empty(t, sender.sent[0].attachments)

	other := receipt
	other.UserID = 99
	assert.Error(t, n.sendReceipt(context.Background(), other))
}

func TestSendWelcome(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, fakeUsers{}, "https://tienda.mx", false)

	require.NoError(t, n.sendWelcome(context.Background(), models.Account{ID: 1, Name: "Eva", Email: "eva@mail.com"}))
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].body, "Eva")
	assert.Contains(t, sender.sent[0].body, "https://tienda.mx")
}
