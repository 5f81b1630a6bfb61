package site

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	g "github.com/maragudk/gomponents"
	"gorm.io/gorm"

	"prensa/constants"
	"prensa/database"
	"prensa/templates"
)

func render(w http.ResponseWriter, node g.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := node.Render(w); err != nil {
		log.Error("template render failed", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Home is the reader landing page: hero carousel plus the published feed,
// optionally narrowed by ?category= and ?q=.
func Home(w http.ResponseWriter, r *http.Request) {
	db := database.GetDB()

	category := r.URL.Query().Get("category")
	if category != "" && !constants.ValidCategory(category) {
		http.Error(w, "Unknown category", http.StatusNotFound)
		return
	}
	query := r.URL.Query().Get("q")

	posts, err := publishedPosts(db, category, query)
	if err != nil {
		http.Error(w, "Error fetching posts", http.StatusInternalServerError)
		return
	}

	hero, err := heroPosts(db)
	if err != nil {
		http.Error(w, "Error fetching posts", http.StatusInternalServerError)
		return
	}

	render(w, templates.Home(layoutProps(r, constants.APP_NAME), templates.HomeData{
		Hero:           hero,
		Posts:          posts,
		ActiveCategory: category,
		Query:          query,
	}))
}

func publishedPosts(db *gorm.DB, category, query string) ([]database.Post, error) {
	q := db.Where("published = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if query != "" {
		like := "%" + query + "%"
		q = q.Where("title LIKE ? OR excerpt LIKE ?", like, like)
	}

	var posts []database.Post
	result := q.Order("published_at DESC").Limit(constants.MAX_POSTS_TO_SHOW).Find(&posts)
	return posts, result.Error
}

// heroPosts returns the carousel: pinned posts first, padded with the
// newest published posts up to the carousel size.
func heroPosts(db *gorm.DB) ([]database.Post, error) {
	var pinned []database.Post
	result := db.Where("published = ? AND is_hero_pinned = ?", true, true).
		Order("published_at DESC").
		Limit(constants.HERO_POSTS).
		Find(&pinned)
	if result.Error != nil {
		return nil, result.Error
	}
	if len(pinned) >= constants.HERO_POSTS {
		return pinned, nil
	}

	seen := make(map[uint]bool, len(pinned))
	for _, p := range pinned {
		seen[p.ID] = true
	}

	var newest []database.Post
	result = db.Where("published = ? AND is_hero_pinned = ?", true, false).
		Order("published_at DESC").
		Limit(constants.HERO_POSTS).
		Find(&newest)
	if result.Error != nil {
		return nil, result.Error
	}

	for _, p := range newest {
		if len(pinned) >= constants.HERO_POSTS {
			break
		}
		if !seen[p.ID] {
			pinned = append(pinned, p)
		}
	}
	return pinned, nil
}

// PublicViewArticle serves a published article by slug and counts the view.
func PublicViewArticle(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	db := database.GetDB()

	post, err := database.GetPostWithSlug(db, slug)
	if err != nil {
		http.Error(w, "Error fetching article", http.StatusInternalServerError)
		return
	}
	if post == nil || !post.Published {
		http.Error(w, "Article not found", http.StatusNotFound)
		return
	}

	// best effort, last write wins
	if result := db.Model(post).UpdateColumn("views", gorm.Expr("views + 1")); result.Error != nil {
		log.Warn("failed to count view", "slug", slug, "error", result.Error)
	} else {
		post.Views++
	}

	render(w, templates.ArticlePage(layoutProps(r, post.Title+" — "+constants.APP_NAME), *post))
}

// APIListPosts is a small JSON feed of published posts, mainly for
// external consumers and the tests.
func APIListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := publishedPosts(database.GetDB(), r.URL.Query().Get("category"), r.URL.Query().Get("q"))
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}
