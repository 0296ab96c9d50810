package render

import (
	"fmt"

	"github.com/fogleman/gg"
	"github.com/genricoloni/spotled/internal/config"
	"github.com/genricoloni/spotled/internal/domain"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Fonts maps font references to loaded faces
type Fonts struct {
	faces map[domain.FontRef]font.Face
}

// LoadFonts loads the configured TrueType font at each size.
// Without a font path every reference uses the built-in 7x13 bitmap face.
func LoadFonts(cfg config.FontConfig) (*Fonts, error) {
	f := &Fonts{faces: make(map[domain.FontRef]font.Face)}
	if cfg.Path == "" {
		return f, nil
	}

	sizes := map[domain.FontRef]float64{
		domain.FontTitle:  cfg.TitleSize,
		domain.FontArtist: cfg.ArtistSize,
		domain.FontSeek:   cfg.SeekSize,
		domain.FontStatus: cfg.StatusSize,
	}
	for ref, size := range sizes {
		face, err := gg.LoadFontFace(cfg.Path, size)
		if err != nil {
			return nil, fmt.Errorf("loading font %s at %.0fpt: %w", cfg.Path, size, err)
		}
		f.faces[ref] = face
	}
	return f, nil
}

// Face returns the face for ref
func (f *Fonts) Face(ref domain.FontRef) font.Face {
	if face, ok := f.faces[ref]; ok {
		return face
	}
	return basicfont.Face7x13
}

// Width measures text in pixels
func (f *Fonts) Width(text string, ref domain.FontRef) float64 {
	return float64(font.MeasureString(f.Face(ref), text)) / 64
}
