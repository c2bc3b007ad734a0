package handlers

import (
	"bytes"
	"io"
	"net/http"
	"regexp"

	qrcode "github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"
)

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// QRCode renders the link's short URL as a PNG. Query params: shape
// (square|circle), fg (hex color), dl (1 forces download).
func (h *LinkHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	link, ok := h.fetchLink(w, r)
	if !ok {
		return
	}
	link.FillShortURL(h.Cfg.BaseURL)

	opts := []standard.ImageOption{
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
		standard.WithQRWidth(10),
		standard.WithBorderWidth(20),
		standard.WithBgTransparent(),
	}
	if r.URL.Query().Get("shape") == "circle" {
		opts = append(opts, standard.WithCircleShape())
	}
	if fg := r.URL.Query().Get("fg"); hexColorRe.MatchString(fg) {
		opts = append(opts, standard.WithFgColorRGBHex(fg))
	}

	qrc, err := qrcode.New(link.ShortURL)
	if err != nil {
		jsonError(w, CodeInternal, "failed to generate qr code", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	writer := standard.NewWithWriter(nopCloser{&buf}, opts...)
	if err := qrc.Save(writer); err != nil {
		jsonError(w, CodeInternal, "failed to render qr code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if r.URL.Query().Get("dl") == "1" {
		w.Header().Set("Content-Disposition", "attachment; filename=\""+link.ShortCode+"-qr.png\"")
	}
	w.Write(buf.Bytes())
}
