package constants

const (
	APP_NAME   = "Prensa"
	PUBLIC_URL = "https://prensa.example.com"

	MAX_POSTS_TO_SHOW = 2000
	MAX_POST_LENGTH   = 60000

	HERO_POSTS = 5

	// reading speed used for the estimated reading time of an article
	WORDS_PER_MINUTE = 200

	RECENT_LOG_ENTRIES = 20
)

// Categories a post or an auto-content setting can belong to.
var Categories = []string{"smartphones", "ai", "gadgets", "software", "videojuegos", "reviews"}

func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
