package site

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/gosimple/slug"
	"gorm.io/datatypes"

	"prensa/autogen"
	"prensa/constants"
	"prensa/database"
	"prensa/templates"
)

func requireUser(w http.ResponseWriter, r *http.Request) *database.AdminUser {
	user := getSignedInUserOrNil(r)
	if user == nil {
		http.Error(w, "Not signed in", http.StatusUnauthorized)
	}
	return user
}

// renderMarkdown turns dashboard markdown into HTML the same way the rest
// of the pipeline stores it: rendered, then sanitized.
func renderMarkdown(md string) string {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(md))

	htmlFlags := html.CommonFlags | html.HrefTargetBlank
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})

	return autogen.SanitizeContent(string(markdown.Render(doc, renderer)))
}

// DashboardPostList lists the signed-in author's articles with their
// publish state.
func DashboardPostList(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var posts []database.Post
	result := database.GetDB().Where(&database.Post{AuthorID: user.ID}).Order("created_at DESC").Find(&posts)
	if result.Error != nil {
		http.Error(w, "Error fetching posts", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	states := make(map[uint]string, len(posts))
	for _, p := range posts {
		states[p.ID] = string(ResolvePublishState(p, now))
	}

	render(w, templates.PostList(layoutProps(r, "Mis artículos"), dashboardStats(posts), posts, states))
}

func dashboardStats(posts []database.Post) templates.DashboardStats {
	stats := templates.DashboardStats{Total: len(posts)}
	for _, p := range posts {
		if p.Published {
			stats.Published++
		} else {
			stats.Drafts++
		}
		stats.Views += p.Views
	}
	return stats
}

func buildPostFromForm(r *http.Request, user *database.AdminUser) (database.Post, error) {
	title := r.FormValue("title")
	if title == "" {
		return database.Post{}, fmt.Errorf("title is required")
	}

	body := r.FormValue("body")
	if len(body) > constants.MAX_POST_LENGTH {
		return database.Post{}, fmt.Errorf("post body too long: must be under %d characters", constants.MAX_POST_LENGTH)
	}

	category := r.FormValue("category")
	if !constants.ValidCategory(category) {
		return database.Post{}, fmt.Errorf("unknown category: %s", category)
	}

	var tags datatypes.JSON
	if raw := r.FormValue("tags"); raw != "" {
		parts := strings.Split(raw, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		tagsJSON, err := json.Marshal(parts)
		if err != nil {
			return database.Post{}, fmt.Errorf("failed to parse post tags")
		}
		tags = datatypes.JSON(tagsJSON)
	}

	content := renderMarkdown(body)
	post := database.Post{
		AuthorID:        user.ID,
		Title:           title,
		Slug:            r.FormValue("slug"),
		Excerpt:         r.FormValue("excerpt"),
		Content:         content,
		Source:          body,
		Category:        category,
		Lang:            "es",
		Published:       r.FormValue("published") == "on",
		ReadingTime:     autogen.ReadingTime(content),
		ImageURL:        r.FormValue("imageUrl"),
		MetaDescription: r.FormValue("metaDescription"),
		Tags:            tags,
	}
	if post.Published {
		now := time.Now()
		post.PublishedAt = &now
	}
	return post, nil
}

func DashboardCreatePost(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	switch r.Method {
	case "GET":
		render(w, templates.PostForm(layoutProps(r, "Nuevo artículo"), nil))
	case "POST":
		newPost, err := buildPostFromForm(r, user)
		if err != nil {
			http.Error(w, "Error creating post: "+err.Error(), http.StatusBadRequest)
			return
		}

		if newPost.Slug == "" {
			newPost.Slug = slug.Make(newPost.Title)
		}

		existing, err := database.GetPostWithSlug(database.GetDB(), newPost.Slug)
		if err != nil {
			http.Error(w, "Error verifying if post exists: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if existing != nil {
			http.Error(w, "A post with the same slug already exists", http.StatusBadRequest)
			return
		}

		result := database.GetDB().Create(&newPost)
		if result.Error != nil {
			http.Error(w, "Error creating post", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/dashboard/post/"+strconv.Itoa(int(newPost.ID)), http.StatusSeeOther)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ownedPost loads the {postID} route param and checks ownership.
func ownedPost(w http.ResponseWriter, r *http.Request) (*database.Post, *database.AdminUser) {
	user := requireUser(w, r)
	if user == nil {
		return nil, nil
	}

	postID := chi.URLParam(r, "postID")
	var post database.Post
	result := database.GetDB().First(&post, postID)
	if result.Error != nil {
		http.Error(w, "Post not found", http.StatusNotFound)
		return nil, nil
	}
	if post.AuthorID != user.ID {
		http.Error(w, "You don't own this post", http.StatusUnauthorized)
		return nil, nil
	}
	return &post, user
}

func DashboardEditPost(w http.ResponseWriter, r *http.Request) {
	post, user := ownedPost(w, r)
	if post == nil {
		return
	}

	switch r.Method {
	case "GET":
		render(w, templates.PostForm(layoutProps(r, "Editar artículo"), post))
	case "POST":
		updated, err := buildPostFromForm(r, user)
		if err != nil {
			http.Error(w, "Error updating post: "+err.Error(), http.StatusBadRequest)
			return
		}

		post.Title = updated.Title
		post.Content = updated.Content
		post.Source = updated.Source
		post.Excerpt = updated.Excerpt
		post.Category = updated.Category
		post.ImageURL = updated.ImageURL
		post.MetaDescription = updated.MetaDescription
		post.ReadingTime = updated.ReadingTime
		if updated.Tags != nil {
			post.Tags = updated.Tags
		}

		post.Slug = updated.Slug
		if post.Slug == "" {
			post.Slug = slug.Make(post.Title)
		}

		existing, err := database.GetPostWithSlug(database.GetDB(), post.Slug)
		if err != nil {
			http.Error(w, "Error verifying if post exists: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if existing != nil && existing.ID != post.ID {
			http.Error(w, "A post with the same slug already exists", http.StatusBadRequest)
			return
		}

		if updated.Published && !post.Published {
			now := time.Now()
			post.PublishedAt = &now
		}
		if !updated.Published && post.Published {
			// taking a live post down returns it to draft; keeping the old
			// timestamp would make it read as overdue
			post.PublishedAt = nil
		}
		post.Published = updated.Published

		result := database.GetDB().Save(post)
		if result.Error != nil {
			http.Error(w, "Error updating post", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/dashboard/post/"+strconv.Itoa(int(post.ID)), http.StatusSeeOther)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func DashboardDeletePost(w http.ResponseWriter, r *http.Request) {
	post, _ := ownedPost(w, r)
	if post == nil {
		return
	}

	result := database.GetDB().Delete(post)
	if result.Error != nil {
		http.Error(w, "Error deleting post", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// DashboardScheduledPosts shows unpublished posts with a publish time,
// flagging the overdue ones for manual intervention.
func DashboardScheduledPosts(w http.ResponseWriter, r *http.Request) {
	if requireUser(w, r) == nil {
		return
	}

	posts, err := database.ScheduledPosts(database.GetDB())
	if err != nil {
		http.Error(w, "Error fetching scheduled posts", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	items := make([]templates.ScheduledItem, 0, len(posts))
	for _, p := range posts {
		items = append(items, templates.ScheduledItem{
			Post:  p,
			State: string(ResolvePublishState(p, now)),
		})
	}

	render(w, templates.ScheduledList(layoutProps(r, "Artículos programados"), items))
}

func DashboardSchedulePost(w http.ResponseWriter, r *http.Request) {
	post, _ := ownedPost(w, r)
	if post == nil {
		return
	}

	at, err := time.ParseInLocation("2006-01-02T15:04", r.FormValue("publishAt"), time.Local)
	if err != nil {
		http.Error(w, "Invalid publish time: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := SchedulePost(database.GetDB(), post, at, time.Now()); err != nil {
		http.Error(w, "Error scheduling post", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/dashboard/scheduled", http.StatusSeeOther)
}

func DashboardCancelSchedule(w http.ResponseWriter, r *http.Request) {
	post, _ := ownedPost(w, r)
	if post == nil {
		return
	}

	if err := CancelSchedule(database.GetDB(), post); err != nil {
		http.Error(w, "Error canceling schedule", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/dashboard/scheduled", http.StatusSeeOther)
}

func DashboardPublishNow(w http.ResponseWriter, r *http.Request) {
	post, _ := ownedPost(w, r)
	if post == nil {
		return
	}

	if err := PublishNow(database.GetDB(), post, time.Now()); err != nil {
		http.Error(w, "Error publishing post", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/dashboard/scheduled", http.StatusSeeOther)
}

// DashboardHeroManager lists published posts with their hero pin state.
func DashboardHeroManager(w http.ResponseWriter, r *http.Request) {
	if requireUser(w, r) == nil {
		return
	}

	var posts []database.Post
	result := database.GetDB().Where("published = ?", true).
		Order("is_hero_pinned DESC, published_at DESC").
		Limit(constants.MAX_POSTS_TO_SHOW).
		Find(&posts)
	if result.Error != nil {
		http.Error(w, "Error fetching posts", http.StatusInternalServerError)
		return
	}

	render(w, templates.HeroManager(layoutProps(r, "Gestor del hero"), posts))
}

func DashboardToggleHeroPin(w http.ResponseWriter, r *http.Request) {
	post, _ := ownedPost(w, r)
	if post == nil {
		return
	}

	result := database.GetDB().Model(post).Update("is_hero_pinned", !post.IsHeroPinned)
	if result.Error != nil {
		http.Error(w, "Error updating hero pin", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/dashboard/hero", http.StatusSeeOther)
}

// DashboardAutoContent shows the auto-generation settings and the recent
// generation log.
func DashboardAutoContent(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var settings []database.AutoContentSetting
	result := database.GetDB().Where(&database.AutoContentSetting{UserID: user.ID}).
		Order("created_at DESC").
		Find(&settings)
	if result.Error != nil {
		http.Error(w, "Error fetching settings", http.StatusInternalServerError)
		return
	}

	logs, err := database.RecentLogs(database.GetDB(), constants.RECENT_LOG_ENTRIES)
	if err != nil {
		http.Error(w, "Error fetching logs", http.StatusInternalServerError)
		return
	}

	render(w, templates.AutoContent(layoutProps(r, "Automatización de contenido"), templates.AutoContentData{
		Settings: settings,
		Logs:     logs,
	}))
}

func DashboardCreateAutoContentSetting(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	topic := r.FormValue("topic")
	promptTemplate := r.FormValue("promptTemplate")
	category := r.FormValue("category")
	if topic == "" || promptTemplate == "" || !constants.ValidCategory(category) {
		http.Error(w, "Topic, prompt template and a valid category are required", http.StatusBadRequest)
		return
	}

	frequencyHours, err := strconv.Atoi(r.FormValue("frequencyHours"))
	if err != nil || frequencyHours < 1 || frequencyHours > 168 {
		http.Error(w, "Frequency must be between 1 and 168 hours", http.StatusBadRequest)
		return
	}

	setting := database.AutoContentSetting{
		UserID:         user.ID,
		Topic:          topic,
		PromptTemplate: promptTemplate,
		Category:       category,
		FrequencyHours: frequencyHours,
		IsActive:       true,
	}
	result := database.GetDB().Create(&setting)
	if result.Error != nil {
		http.Error(w, "Error creating setting", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/dashboard/autocontent", http.StatusSeeOther)
}

// ownedSetting loads the {settingID} route param and checks ownership.
func ownedSetting(w http.ResponseWriter, r *http.Request) *database.AutoContentSetting {
	user := requireUser(w, r)
	if user == nil {
		return nil
	}

	var setting database.AutoContentSetting
	result := database.GetDB().First(&setting, chi.URLParam(r, "settingID"))
	if result.Error != nil {
		http.Error(w, "Setting not found", http.StatusNotFound)
		return nil
	}
	if setting.UserID != user.ID {
		http.Error(w, "You don't own this setting", http.StatusUnauthorized)
		return nil
	}
	return &setting
}

func DashboardToggleAutoContentSetting(w http.ResponseWriter, r *http.Request) {
	setting := ownedSetting(w, r)
	if setting == nil {
		return
	}

	result := database.GetDB().Model(setting).Update("is_active", !setting.IsActive)
	if result.Error != nil {
		http.Error(w, "Error updating setting", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/dashboard/autocontent", http.StatusSeeOther)
}

func DashboardDeleteAutoContentSetting(w http.ResponseWriter, r *http.Request) {
	setting := ownedSetting(w, r)
	if setting == nil {
		return
	}

	result := database.GetDB().Delete(setting)
	if result.Error != nil {
		http.Error(w, "Error deleting setting", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/dashboard/autocontent", http.StatusSeeOther)
}

// DashboardTestAutoContentSetting runs one generation for a setting right
// now, outside its schedule.
func DashboardTestAutoContentSetting(w http.ResponseWriter, r *http.Request) {
	setting := ownedSetting(w, r)
	if setting == nil {
		return
	}
	if generator == nil {
		http.Error(w, "Article generation is not configured", http.StatusServiceUnavailable)
		return
	}

	_, err := generator.Generate(r.Context(), autogen.GenerateInput{
		Topic:          setting.Topic,
		PromptTemplate: setting.PromptTemplate,
		Category:       setting.Category,
		UserID:         setting.UserID,
		SettingID:      setting.ID,
	})
	if err != nil {
		http.Error(w, "Test generation failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/dashboard/autocontent", http.StatusSeeOther)
}
