package scanner

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
)

var ErrNoBarcode = errors.New("no barcode found")

// Decoder extracts the text of a barcode from an image.
type Decoder interface {
	Decode(img image.Image) (string, error)
}

// ZXingDecoder reads EAN-13 first (every ISBN barcode is one) and falls
// back to the other UPC/EAN symbologies.
type ZXingDecoder struct{}

func (ZXingDecoder) Decode(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("binarize image: %w", err)
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	readers := []gozxing.Reader{
		oned.NewEAN13Reader(),
		oned.NewMultiFormatUPCEANReader(hints),
	}
	for _, r := range readers {
		res, err := r.Decode(bmp, hints)
		if err == nil && res.GetText() != "" {
			return res.GetText(), nil
		}
	}
	return "", ErrNoBarcode
}

// DecodeReader decodes an encoded png, jpeg or gif image.
func DecodeReader(d Decoder, r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	return d.Decode(img)
}
