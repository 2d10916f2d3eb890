package provider

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
)

// DiceBear is the deterministic fallback generator, last in every chain. It
// only constructs a seeded URL, so it has no external dependency, is always
// available and never fails. This keeps the text-only path total: ordinary
// vendor outages never surface to the user.
type DiceBear struct{}

func NewDiceBear() *DiceBear { return &DiceBear{} }

func (d *DiceBear) Name() string { return "dicebear" }

func (d *DiceBear) Available() bool { return true }

var dicebearStyles = []struct {
	keyword string
	style   string
}{
	{"realistic", "personas"},
	{"anime", "adventurer"},
	{"cartoon", "fun-emoji"},
	{"fantasy", "lorelei"},
	{"cyberpunk", "bottts"},
}

func (d *DiceBear) Generate(ctx context.Context, prompt, negative string, size int) (*Result, error) {
	style := "adventurer"
	for _, s := range dicebearStyles {
		if strings.Contains(prompt, s.keyword) {
			style = s.style
			break
		}
	}

	if size <= 0 || size > 2048 {
		size = 512
	}

	h := fnv.New64a()
	h.Write([]byte(prompt))

	url := fmt.Sprintf("https://api.dicebear.com/7.x/%s/png?seed=%d&size=%d", style, h.Sum64(), size)
	return &Result{ImageURL: url}, nil
}
