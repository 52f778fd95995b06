package utils

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"reviere_back_end/internal/models"
)

type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string, attachments ...Attachment) error
}

type EmailDirectory interface {
	UserEmail(ctx context.Context, userID int64) (email, name string, err error)
}

// Notifier envoie les e-mails transactionnels hors du chemin de la requête.
type Notifier struct {
	sender  Sender
	users   EmailDirectory
	shopURL string
	pdf     bool
	timeout time.Duration
}

func NewNotifier(sender Sender, users EmailDirectory, shopURL string, withPDF bool) *Notifier {
	return &Notifier{sender: sender, users: users, shopURL: shopURL, pdf: withPDF, timeout: time.Minute}
}

func (n *Notifier) ReceiptIssued(_ context.Context, r models.Receipt) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()
		if err := n.sendReceipt(ctx, r); err != nil {
			log.WithError(err).WithField("receipt_id", r.ID).Error("❌ Envoi du reçu échoué")
		}
	}()
}

func (n *Notifier) sendReceipt(ctx context.Context, r models.Receipt) error {
	email, name, err := n.users.UserEmail(ctx, r.UserID)
	if err != nil {
		return err
	}

	qr, err := ReceiptQR(r)
	if err != nil {
		log.WithError(err).Warn("⚠️ QR du reçu non généré")
	}
	html, err := ReceiptHTML(r, name, qr)
	if err != nil {
		return err
	}

	var attachments []Attachment
	if n.pdf {
		pdf, err := RenderPDF(ctx, html)
		if err != nil {
			log.WithError(err).WithField("receipt_id", r.ID).Warn("⚠️ PDF du reçu non généré")
		} else {
			attachments = append(attachments, Attachment{Name: fmt.Sprintf("recibo_%d.pdf", r.ID), Data: pdf})
		}
	}

	subject := fmt.Sprintf("🧾 Tu recibo n.º %d", r.ID)
	if err := n.sender.Send(ctx, email, subject, html, attachments...); err != nil {
		return err
	}
	log.WithFields(log.Fields{"receipt_id": r.ID, "user_id": r.UserID}).Info("📧 Reçu envoyé")
	return nil
}

func (n *Notifier) AccountCreated(_ context.Context, a models.Account) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()
		if err := n.sendWelcome(ctx, a); err != nil {
			log.WithError(err).WithField("account_id", a.ID).Warn("⚠️ E-mail de bienvenue non envoyé")
		}
	}()
}

func (n *Notifier) sendWelcome(ctx context.Context, a models.Account) error {
	html, err := WelcomeHTML(a.Name, n.shopURL)
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, a.Email, "🎉 ¡Bienvenido!", html)
}
