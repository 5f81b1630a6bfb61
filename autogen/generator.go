// Package autogen implements the auto-content pipeline: a generator that
// asks a language model for a complete article and stores it, and a
// dispatcher that decides, per saved setting, when a generation is due.
package autogen

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"prensa/constants"
	"prensa/database"
	"prensa/logger"
)

// Completer is the one outbound call the generator makes.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

const systemPrompt = "Eres un experto redactor de contenido tecnológico. " +
	"Generas artículos de alta calidad sobre tecnología, siempre en español. " +
	"Responde únicamente con JSON válido."

const promptInstructions = `
Instrucciones:
- Escribe un artículo completo y detallado sobre tecnología
- Incluye una introducción atractiva
- Desarrolla el contenido en varios párrafos con encabezados H2 y H3
- Añade ejemplos prácticos y datos relevantes
- Concluye con un resumen y perspectivas futuras
- Usa un tono profesional pero accesible
- Longitud aproximada: 800-1200 palabras
- Incluye palabras clave relacionadas con el tema

Formato de respuesta (JSON):
{
  "title": "Título del artículo",
  "excerpt": "Resumen del artículo en 1-2 líneas",
  "content": "Contenido completo del artículo en HTML",
  "keywords": ["palabra1", "palabra2", "palabra3"],
  "meta_description": "Meta descripción SEO del artículo"
}`

// GenerateInput mirrors the generate-article request body.
type GenerateInput struct {
	Topic          string `json:"topic"`
	PromptTemplate string `json:"prompt_template"`
	Category       string `json:"category"`
	UserID         uint   `json:"user_id"`
	SettingID      uint   `json:"setting_id"`
}

type articlePayload struct {
	Title           string   `json:"title"`
	Excerpt         string   `json:"excerpt"`
	Content         string   `json:"content"`
	Keywords        []string `json:"keywords"`
	MetaDescription string   `json:"meta_description"`
}

type Generator struct {
	db  *gorm.DB
	llm Completer
	log *logger.Logger
	now func() time.Time
}

func NewGenerator(db *gorm.DB, llm Completer, log *logger.Logger) *Generator {
	return &Generator{
		db:  db,
		llm: llm,
		log: log.With("component", "generator"),
		now: time.Now,
	}
}

// Generate runs one generation attempt. It always leaves exactly one log
// entry behind, in a terminal status: completed with the new post's id, or
// error with a message. Nothing is retried here.
func (g *Generator) Generate(ctx context.Context, in GenerateInput) (*database.Post, error) {
	entry := database.AutoArticleLog{
		SettingID: in.SettingID,
		Topic:     in.Topic,
		Status:    database.LogStatusGenerating,
	}
	if result := g.db.Create(&entry); result.Error != nil {
		return nil, fmt.Errorf("create log entry: %w", result.Error)
	}

	post, err := g.generate(ctx, in)
	if err != nil {
		g.log.Error("generation failed", "setting_id", in.SettingID, "topic", in.Topic, "error", err)
		entry.Status = database.LogStatusError
		entry.ErrorMessage = err.Error()
		if result := g.db.Save(&entry); result.Error != nil {
			g.log.Error("failed to record error status", "log_id", entry.ID, "error", result.Error)
		}
		return nil, err
	}

	entry.Status = database.LogStatusCompleted
	entry.PostID = &post.ID
	if result := g.db.Save(&entry); result.Error != nil {
		g.log.Error("failed to record completed status", "log_id", entry.ID, "error", result.Error)
	}

	g.log.Info("article generated", "setting_id", in.SettingID, "post_id", post.ID, "slug", post.Slug)
	return post, nil
}

func (g *Generator) generate(ctx context.Context, in GenerateInput) (*database.Post, error) {
	prompt := fmt.Sprintf("%s\n\nTema: %s\n%s", in.PromptTemplate, in.Topic, promptInstructions)

	reply, err := g.llm.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	var payload articlePayload
	if err := json.Unmarshal([]byte(reply), &payload); err != nil {
		return nil, fmt.Errorf("invalid JSON response from OpenAI: %w", err)
	}
	if payload.Title == "" || payload.Content == "" {
		return nil, fmt.Errorf("invalid JSON response from OpenAI: missing title or content")
	}

	now := g.now()
	baseSlug := Slugify(payload.Title)
	content := SanitizeContent(payload.Content)

	keywordsJSON, err := json.Marshal(payload.Keywords)
	if err != nil {
		return nil, fmt.Errorf("encode keywords: %w", err)
	}

	focusKeyword := in.Topic
	if len(payload.Keywords) > 0 {
		focusKeyword = payload.Keywords[0]
	}

	post := database.Post{
		AuthorID:    in.UserID,
		Title:       payload.Title,
		Slug:        SlugWithTimestamp(payload.Title, now),
		Excerpt:     payload.Excerpt,
		Content:     content,
		Category:    in.Category,
		Lang:        "es",
		Published:   true,
		PublishedAt: &now,
		ReadingTime: ReadingTime(content),

		Keywords: datatypes.JSON(keywordsJSON),
		Tags:     datatypes.JSON(keywordsJSON),

		MetaTitle:       payload.Title,
		MetaDescription: payload.MetaDescription,
		FocusKeyword:    focusKeyword,
		CanonicalURL:    fmt.Sprintf("%s/%s/%s", constants.PUBLIC_URL, in.Category, baseSlug),
		RobotsMeta:      "index,follow",

		OGTitle:       payload.Title,
		OGDescription: payload.Excerpt,

		TwitterTitle:       payload.Title,
		TwitterDescription: payload.Excerpt,
		TwitterCardType:    "summary_large_image",
	}

	if result := g.db.Create(&post); result.Error != nil {
		return nil, fmt.Errorf("failed to create article: %w", result.Error)
	}
	return &post, nil
}
