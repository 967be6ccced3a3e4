package main

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"sort"
	"strings"

	"github.com/EdlinOrg/prominentcolor"
	"github.com/nfnt/resize"
	"github.com/oliamb/cutter"
	_ "golang.org/x/image/webp"
)

// kittyImageID is the fixed image slot used for the cover
const kittyImageID = 42

// kittyChunkSize is the largest payload per Kitty graphics escape
const kittyChunkSize = 4096

// artworkOptions controls how a cover is turned into terminal output
type artworkOptions struct {
	WidthPixels  int
	WidthColumns int
	ExtractColor bool
}

// decodeArtworkData decodes base64-encoded or raw image data into an image.Image
func decodeArtworkData(imgData []byte) (image.Image, error) {
	imageData := imgData
	if decoded, err := base64.StdEncoding.DecodeString(string(imgData)); err == nil {
		imageData = decoded
	}

	if len(imageData) == 0 {
		return nil, fmt.Errorf("empty image data")
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return img, nil
}

// cropSquare cuts the largest centered square out of img so that covers with
// odd aspect ratios still fill the art slot.
func cropSquare(img image.Image) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("nil image")
	}
	b := img.Bounds()
	side := min(b.Dx(), b.Dy())
	if b.Dx() == b.Dy() {
		return img, nil
	}
	return cutter.Crop(img, cutter.Config{
		Width:  side,
		Height: side,
		Mode:   cutter.Centered,
	})
}

// hsl returns the lightness and saturation of an 8-bit RGB color
func hsl(r, g, b uint8) (lightness, saturation float64) {
	rf := float64(r) / 255.0
	gf := float64(g) / 255.0
	bf := float64(b) / 255.0

	hi := max(rf, gf, bf)
	lo := min(rf, gf, bf)
	lightness = (hi + lo) / 2.0

	if hi == lo {
		return lightness, 0
	}
	if lightness > 0.5 {
		return lightness, (hi - lo) / (2.0 - hi - lo)
	}
	return lightness, (hi - lo) / (hi + lo)
}

// extractDominantColor picks a vibrant accent color that stays readable on
// dark backgrounds, as a #rrggbb string.
func extractDominantColor(img image.Image) (string, error) {
	if img == nil {
		return "", fmt.Errorf("nil image")
	}

	bounds := img.Bounds()
	const sampleRate = 5

	counts := make(map[uint32]int)
	for y := bounds.Min.Y; y < bounds.Max.Y; y += sampleRate {
		for x := bounds.Min.X; x < bounds.Max.X; x += sampleRate {
			r, g, b, a := img.At(x, y).RGBA()
			if a < 0x8000 {
				continue
			}
			rgb := (r>>8)<<16 | (g>>8)<<8 | b>>8
			counts[rgb]++
		}
	}

	type candidate struct {
		rgb   uint32
		score float64
	}
	var candidates []candidate

	for rgb, count := range counts {
		lightness, saturation := hsl(uint8(rgb>>16), uint8(rgb>>8), uint8(rgb))

		// Too dark, washed out, or grey
		if lightness < 0.3 || lightness > 0.85 || saturation < 0.25 {
			continue
		}

		lightnessScore := lightness
		if lightness > 0.7 {
			lightnessScore = 0.7 - (lightness - 0.7)
		}
		score := saturation*2.5 + lightnessScore*1.5 + float64(count)/1000.0
		candidates = append(candidates, candidate{rgb: rgb, score: score})
	}

	if len(candidates) == 0 {
		colors, err := prominentcolor.Kmeans(img)
		if err != nil || len(colors) == 0 {
			return "", fmt.Errorf("no suitable colors found")
		}
		c := colors[0].Color
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B), nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].rgb < candidates[j].rgb
	})

	best := candidates[0].rgb
	return fmt.Sprintf("#%06x", best), nil
}

// Check if terminal supports Kitty graphics protocol
func supportsKittyGraphics() bool {
	term := os.Getenv("TERM")
	termProgram := os.Getenv("TERM_PROGRAM")

	if strings.Contains(term, "kitty") || strings.Contains(term, "konsole") {
		return true
	}

	return termProgram == "ghostty" || termProgram == "WezTerm"
}

// encodeArtworkForKitty resizes img and wraps it in Kitty graphics escapes,
// replacing any image previously shown in the cover slot.
func encodeArtworkForKitty(img image.Image, widthPixels, widthColumns int) (string, error) {
	if img == nil {
		return "", fmt.Errorf("nil image")
	}

	// Kitty scales to the column count, so only the pixel width matters here
	resized := resize.Resize(uint(widthPixels), 0, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := png.Encode(&buf, resized); err != nil {
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())

	var out strings.Builder
	fmt.Fprintf(&out, "\033_Ga=d,d=I,i=%d\033\\", kittyImageID)

	if len(encoded) <= kittyChunkSize {
		fmt.Fprintf(&out, "\033_Ga=T,f=100,t=d,i=%d,c=%d,C=1;%s\033\\", kittyImageID, widthColumns, encoded)
		return out.String(), nil
	}

	for i := 0; i < len(encoded); i += kittyChunkSize {
		end := min(i+kittyChunkSize, len(encoded))
		chunk := encoded[i:end]
		more := 1
		if end == len(encoded) {
			more = 0
		}

		if i == 0 {
			fmt.Fprintf(&out, "\033_Ga=T,f=100,t=d,i=%d,c=%d,C=1,m=1;%s\033\\", kittyImageID, widthColumns, chunk)
		} else {
			fmt.Fprintf(&out, "\033_Gm=%d;%s\033\\", more, chunk)
		}
	}

	return out.String(), nil
}

// processArtwork decodes artwork data once and returns both the extracted
// color and the Kitty-encoded string.
func processArtwork(artworkData []byte, opts artworkOptions) (color string, encoded string, err error) {
	img, err := decodeArtworkData(artworkData)
	if err != nil {
		return "", "", err
	}

	if square, cropErr := cropSquare(img); cropErr == nil {
		img = square
	}

	if opts.ExtractColor {
		if c, err := extractDominantColor(img); err == nil {
			color = c
		}
	}

	encoded, err = encodeArtworkForKitty(img, opts.WidthPixels, opts.WidthColumns)
	if err != nil {
		return color, "", err
	}
	return color, encoded, nil
}

// processCover materializes a track cover into terminal output
func processCover(cover Cover, opts artworkOptions) (color string, encoded string, err error) {
	data, err := cover.Bytes()
	if err != nil {
		return "", "", err
	}

	// Decoders can panic on malformed input
	defer func() {
		if r := recover(); r != nil {
			color, encoded = "", ""
			err = fmt.Errorf("artwork processing panicked: %v", r)
		}
	}()
	return processArtwork(data, opts)
}
