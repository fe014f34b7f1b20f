package usecase

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Advert is a promotional post; Image is optional.
type Advert struct {
	Image string `yaml:"image"`
	Text  string `yaml:"text"`
}

type advertFile struct {
	Adverts []Advert `yaml:"adverts"`
}

func DefaultAdverts() []Advert {
	return []Advert{
		{Image: "ads/ad1.jpg", Text: "📊 Every match of the day, analysed before kickoff."},
		{Image: "ads/ad2.jpg", Text: "⚽ Goal, result and half-time picks from the big leagues."},
		{Image: "ads/ad3.jpg", Text: "🎟 A fresh coupon every afternoon."},
		{Image: "ads/ad4.jpg", Text: "⏱ Half-time goal picks backed by the numbers."},
	}
}

// LoadAdverts reads a YAML file of the form:
//
//	adverts:
//	  - image: ads/ad1.jpg
//	    text: "..."
func LoadAdverts(path string) ([]Advert, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read adverts file: %w", err)
	}
	var file advertFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode adverts file: %w", err)
	}

	out := make([]Advert, 0, len(file.Adverts))
	for i, ad := range file.Adverts {
		ad.Text = strings.TrimSpace(ad.Text)
		ad.Image = strings.TrimSpace(ad.Image)
		if ad.Text == "" {
			return nil, fmt.Errorf("%w: advert %d has no text", ErrInvalidInput, i)
		}
		out = append(out, ad)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: adverts file %s is empty", ErrInvalidInput, path)
	}
	return out, nil
}

// AdRotator hands out adverts round-robin.
type AdRotator struct {
	mu      sync.Mutex
	adverts []Advert
	next    int
}

func NewAdRotator(adverts []Advert) *AdRotator {
	return &AdRotator{adverts: append([]Advert(nil), adverts...)}
}

func (r *AdRotator) Next() (Advert, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.adverts) == 0 {
		return Advert{}, false
	}
	ad := r.adverts[r.next]
	r.next = (r.next + 1) % len(r.adverts)
	return ad, true
}
