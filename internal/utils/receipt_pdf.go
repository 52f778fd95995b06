package utils

import (
	"bytes"
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/skip2/go-qrcode"

	"reviere_back_end/internal/models"
)

//go:embed templates/*.html
var templateFiles embed.FS

var templates = template.Must(template.ParseFS(templateFiles, "templates/*.html"))

// ReceiptReference est la référence imprimée et encodée dans le QR du reçu.
func ReceiptReference(r models.Receipt) string {
	return fmt.Sprintf("REC-%06d-U%d", r.ID, r.UserID)
}

// ReceiptQR génère le QR de la référence en base64, prêt pour <img src="...">.
func ReceiptQR(r models.Receipt) (string, error) {
	payload := fmt.Sprintf("%s|%.2f", ReceiptReference(r), r.TotalPrice)
	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// ReceiptHTML rend le reçu ; qr peut être vide.
func ReceiptHTML(r models.Receipt, userName, qr string) (string, error) {
	data := struct {
		Receipt   models.Receipt
		UserName  string
		Emitted   string
		Total     string
		Reference string
		QR        template.URL
	}{
		Receipt:   r,
		UserName:  userName,
		Emitted:   r.EmittedAt.Format("02/01/2006 15:04"),
		Total:     fmt.Sprintf("$%.2f", r.TotalPrice),
		Reference: ReceiptReference(r),
		QR:        template.URL(qr),
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "receipt.html", data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func WelcomeHTML(userName, shopURL string) (string, error) {
	var buf bytes.Buffer
	err := templates.ExecuteTemplate(&buf, "welcome.html", map[string]string{
		"UserName": userName,
		"ShopURL":  shopURL,
	})
	return buf.String(), err
}

// RenderPDF imprime le HTML avec Chrome headless.
func RenderPDF(ctx context.Context, html string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	// timeout pour éviter de bloquer
	ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var pdfBuf []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("data:text/html;base64,"+base64.StdEncoding.EncodeToString([]byte(html))),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuf, nil
}
