package scanner

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const barcodeISBN = "9780306406157"

// barcodePNG renders code as an EAN-13 barcode.
func barcodePNG(t *testing.T, code string) []byte {
	t.Helper()
	matrix, err := oned.NewEAN13Writer().Encode(code, gozxing.BarcodeFormat_EAN_13, 400, 120, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, matrix))
	return buf.Bytes()
}

func blankPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 200, 80))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(0, 0, color.Black)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestZXingDecoder(t *testing.T) {
	t.Parallel()

	code, err := DecodeReader(ZXingDecoder{}, bytes.NewReader(barcodePNG(t, barcodeISBN)))
	require.NoError(t, err)
	assert.Equal(t, barcodeISBN, code)
}

func TestZXingDecoder_NoBarcode(t *testing.T) {
	t.Parallel()

	_, err := DecodeReader(ZXingDecoder{}, bytes.NewReader(blankPNG(t)))
	require.ErrorIs(t, err, ErrNoBarcode)
}

func TestDecodeReader_NotAnImage(t *testing.T) {
	t.Parallel()

	_, err := DecodeReader(ZXingDecoder{}, bytes.NewReader([]byte("plain text")))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoBarcode)
}
