package image

import (
	"bytes"
	"fmt"
	goimage "image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"
)

// Validator checks downloaded image bytes
type Validator interface {
	Validate(data []byte) error
}

// ValidatorFunc adapts a function to Validator
type ValidatorFunc func(data []byte) error

func (f ValidatorFunc) Validate(data []byte) error {
	return f(data)
}

// Chain runs validators in order and returns the first failure
func Chain(validators ...Validator) Validator {
	return ValidatorFunc(func(data []byte) error {
		for _, v := range validators {
			if v == nil {
				continue
			}
			if err := v.Validate(data); err != nil {
				return err
			}
		}
		return nil
	})
}

var allowedTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

// DetectMIME sniffs the image type and rejects anything but png, jpeg and webp
func DetectMIME(data []byte) (string, error) {
	mime := mimetype.Detect(data).String()
	if !allowedTypes[mime] {
		return "", &ValidationError{Code: "BAD_TYPE", Message: "unsupported content type " + mime}
	}
	return mime, nil
}

// SizeValidator rejects payloads outside [Min, Max] bytes. Zero disables a bound.
type SizeValidator struct {
	Min int64
	Max int64
}

func (v SizeValidator) Validate(data []byte) error {
	n := int64(len(data))
	if v.Min > 0 && n < v.Min {
		return &ValidationError{Code: "TOO_SMALL", Message: fmt.Sprintf("%d bytes is below the minimum of %d", n, v.Min)}
	}
	if v.Max > 0 && n > v.Max {
		return &ValidationError{Code: "TOO_LARGE", Message: fmt.Sprintf("%d bytes exceeds the maximum of %d", n, v.Max)}
	}
	return nil
}

// TypeValidator accepts png, jpeg and webp
type TypeValidator struct{}

func (TypeValidator) Validate(data []byte) error {
	_, err := DetectMIME(data)
	return err
}

// PixelValidator samples the decoded image and rejects blank renders
type PixelValidator struct {
	Step          int     // sample every Step-th pixel
	MaxBlackRatio float64 // reject when more sampled pixels are black
	MaxWhiteRatio float64 // reject when more sampled pixels are white
}

// DefaultPixelValidator rejects images that are >80% black or >90% white
func DefaultPixelValidator() PixelValidator {
	return PixelValidator{Step: 10, MaxBlackRatio: 0.8, MaxWhiteRatio: 0.9}
}

func (v PixelValidator) Validate(data []byte) error {
	img, _, err := goimage.Decode(bytes.NewReader(data))
	if err != nil {
		return &ValidationError{Code: "UNDECODABLE", Message: err.Error()}
	}

	step := v.Step
	if step <= 0 {
		step = 1
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	var sampled, black, white int
	for i := 0; i < w*h; i += step {
		x := b.Min.X + i%w
		y := b.Min.Y + i/w
		r, g, bl, a := img.At(x, y).RGBA()
		if a == 0 {
			continue
		}
		r, g, bl = r>>8, g>>8, bl>>8
		sampled++
		switch {
		case r < 30 && g < 30 && bl < 30:
			black++
		case r > 225 && g > 225 && bl > 225:
			white++
		}
	}

	if sampled == 0 {
		return &ValidationError{Code: "BLANK", Message: "no visible pixels"}
	}
	if ratio := float64(black) / float64(sampled); ratio > v.MaxBlackRatio {
		return &ValidationError{Code: "BLANK", Message: fmt.Sprintf("%.0f%% of pixels are black", ratio*100)}
	}
	if ratio := float64(white) / float64(sampled); ratio > v.MaxWhiteRatio {
		return &ValidationError{Code: "BLANK", Message: fmt.Sprintf("%.0f%% of pixels are white", ratio*100)}
	}
	return nil
}

// DefaultValidator combines the size, type and pixel checks for cfg
func DefaultValidator(cfg *Config) Validator {
	cfg = cfg.withDefaults()
	return Chain(
		SizeValidator{Min: cfg.MinSizeBytes, Max: cfg.MaxSizeBytes},
		TypeValidator{},
		DefaultPixelValidator(),
	)
}
