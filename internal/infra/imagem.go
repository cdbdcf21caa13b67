package infra

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"strings"

	"golang.org/x/image/draw"
)

const (
	LogoTamanhoMaximo = 1 << 20 // bytes after base64 decoding
	LogoLadoMaximo    = 200
)

var ErrLogoInvalido = errors.New("logo inválido")

// ProcessarLogo decodes a PNG or JPEG data URL, scales it down to fit a
// 200x200 box keeping the aspect ratio and returns it as a PNG data URL.
// Images already inside the box are only re-encoded.
func ProcessarLogo(dataURL string) (string, error) {
	raw, err := decodificarDataURL(dataURL)
	if err != nil {
		return "", err
	}
	if len(raw) > LogoTamanhoMaximo {
		return "", fmt.Errorf("%w: maior que 1 MB", ErrLogoInvalido)
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("%w: formato não suportado", ErrLogoInvalido)
	}

	b := src.Bounds()
	w, h := ajustarCaixa(b.Dx(), b.Dy(), LogoLadoMaximo)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return "", fmt.Errorf("logo: encode png: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func decodificarDataURL(dataURL string) ([]byte, error) {
	if !strings.HasPrefix(dataURL, "data:image/") {
		return nil, fmt.Errorf("%w: esperado data URL de imagem", ErrLogoInvalido)
	}
	i := strings.Index(dataURL, ";base64,")
	if i < 0 {
		return nil, fmt.Errorf("%w: data URL sem base64", ErrLogoInvalido)
	}
	raw, err := base64.StdEncoding.DecodeString(dataURL[i+len(";base64,"):])
	if err != nil {
		return nil, fmt.Errorf("%w: base64 inválido", ErrLogoInvalido)
	}
	return raw, nil
}

// ajustarCaixa returns the largest size with the same ratio as w x h that
// fits lado x lado, never enlarging.
func ajustarCaixa(w, h, lado int) (int, int) {
	if w <= lado && h <= lado {
		return w, h
	}
	if w >= h {
		nh := h * lado / w
		if nh < 1 {
			nh = 1
		}
		return lado, nh
	}
	nw := w * lado / h
	if nw < 1 {
		nw = 1
	}
	return nw, lado
}
