package prompt

import "strings"

var baseHashtags = []string{"#AIAvatar", "#AuraAvatar", "#DigitalArt", "#AIGeneratedArt"}

var styleHashtags = map[string][]string{
	"realistic": {"#PhotoRealistic", "#RealisticArt", "#DigitalPortrait"},
	"anime":     {"#AnimeArt", "#AnimeStyle", "#AnimeAvatar", "#AnimePortrait"},
	"cartoon":   {"#CartoonArt", "#CartoonStyle", "#CartoonAvatar"},
	"fantasy":   {"#FantasyArt", "#FantasyCharacter", "#MagicalArt"},
	"cyberpunk": {"#CyberpunkArt", "#NeonStyle", "#FuturisticAvatar"},
}

var trendingHashtags = []string{"#AvatarOfTheDay", "#CharacterDesign", "#ProfilePicture", "#SocialMediaAvatar"}

// Hashtags derives up to 12 hashtags from avatar characteristics.
func Hashtags(artStyle, gender, age string) []string {
	tags := make([]string, 0, 12)
	tags = append(tags, baseHashtags...)
	tags = append(tags, styleHashtags[artStyle]...)

	if gender != "" {
		tags = append(tags, "#"+capitalize(gender)+"Character")
	}
	if age != "" {
		parts := strings.Split(age, "-")
		for i, p := range parts {
			parts[i] = capitalize(p)
		}
		tags = append(tags, "#"+strings.Join(parts, ""))
	}

	tags = append(tags, trendingHashtags...)
	if len(tags) > 12 {
		tags = tags[:12]
	}
	return tags
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
