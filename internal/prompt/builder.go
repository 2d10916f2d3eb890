package prompt

import (
	"fmt"
	"strings"

	"aura_avatar/internal/domain"
)

// NegativePrompt is a constant deny-list shared by every generation,
// independent of the request.
const NegativePrompt = "blurry, distorted, ugly, multiple faces, multiple people, text, watermark, nsfw, deformed, low quality, bad anatomy, extra limbs, disfigured, poor composition, cropped, out of frame"

const styleSuffix = "Style: professional digital art, ultra detailed, high quality, centered composition, soft studio lighting, sharp focus."

// Build turns an avatar request into a generation prompt plus the negative
// prompt. Pure function, no I/O. A custom prompt is a total override: none of
// the categorical traits leak into the output.
func Build(req domain.AvatarRequest) (string, string) {
	if req.CustomPrompt != "" {
		p := fmt.Sprintf("Create a high-quality %s avatar: %s.", req.ArtStyle, req.CustomPrompt)
		return p, NegativePrompt
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Create a high-quality %s digital portrait of a %s %s with %s skin tone. ",
		req.ArtStyle, req.Age, req.Gender, req.SkinTone)
	fmt.Fprintf(&b, "Hair: %s style, %s color. ", req.HairStyle, req.HairColor)
	fmt.Fprintf(&b, "Outfit: %s. ", req.Outfit)

	if len(req.Accessories) > 0 {
		fmt.Fprintf(&b, "Accessories: %s. ", strings.Join(req.Accessories, ", "))
	}

	fmt.Fprintf(&b, "Pose: %s view. ", req.Pose)

	if req.AuraEffect != "" && req.AuraEffect != "none" {
		fmt.Fprintf(&b, "Add a %s glowing aura effect around the character. ", req.AuraEffect)
	}

	if req.Background != "" && req.Background != "transparent" {
		fmt.Fprintf(&b, "Background: %s. ", req.Background)
	} else {
		b.WriteString("Background: clean white background. ")
	}

	b.WriteString(styleSuffix)

	return b.String(), NegativePrompt
}

// photoStylePrompts describes how each art style reads for the
// image-conditioned (photo transform) path.
var photoStylePrompts = map[string]string{
	"anime":     "anime style, vibrant colors, detailed anime character portrait",
	"cartoon":   "3D cartoon style, pixar style, smooth cartoon rendering",
	"fantasy":   "fantasy art style, magical, ethereal, detailed fantasy portrait",
	"realistic": "photorealistic, high detail, professional portrait",
}

// BuildPhotoTransform builds the prompt for transforming an uploaded photo.
func BuildPhotoTransform(req domain.AvatarRequest) string {
	style, ok := photoStylePrompts[req.ArtStyle]
	if !ok {
		style = photoStylePrompts["realistic"]
	}

	var extras strings.Builder
	switch req.AuraEffect {
	case "", "none":
	case "holographic":
		extras.WriteString(", holographic effect, iridescent, futuristic")
	default:
		extras.WriteString(", glowing aura effect, soft light emanating")
	}

	background := "simple background"
	if req.Background == "gradient" {
		background = "soft gradient background, studio lighting"
	}

	return fmt.Sprintf("transform this person into %s%s, %s, high quality, detailed, portrait",
		style, extras.String(), background)
}

// VariationStyle is one entry of the premium style-variation set.
type VariationStyle struct {
	Name   string
	Prompt string
}

// VariationStyles lists the alternate styles rendered for premium
// photo-based generations, in order.
var VariationStyles = []VariationStyle{
	{Name: "realistic", Prompt: "photorealistic, high detail, professional portrait"},
	{Name: "anime", Prompt: "anime style, vibrant colors, detailed anime character"},
	{Name: "cartoon", Prompt: "3D cartoon style, pixar style, smooth rendering"},
	{Name: "cyberpunk", Prompt: "cyberpunk style, neon lights, futuristic, sci-fi"},
	{Name: "watercolor", Prompt: "watercolor painting style, soft colors, artistic"},
	{Name: "3d-render", Prompt: "3D rendered, CGI, high quality 3D model"},
}

// BuildVariation builds the photo-transform prompt for one variation style.
func BuildVariation(style VariationStyle) string {
	return fmt.Sprintf("transform this person into %s, high quality avatar", style.Prompt)
}
