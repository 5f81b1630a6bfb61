package autogen

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"prensa/database"
	"prensa/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := database.Open(dsn)
	require.NoError(t, err)
	return db
}

type fakeCompleter struct {
	reply string
	err   error
	calls int
}

func (f *fakeCompleter) Complete(_ context.Context, _, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

const validReply = `{
	"title": "La Inteligencia Artificial en 2024",
	"excerpt": "Un repaso al estado de la IA.",
	"content": "<h2>Introducción</h2><p>La inteligencia artificial avanza cada día más rápido.</p>",
	"keywords": ["ia", "tecnología"],
	"meta_description": "Estado de la IA en 2024"
}`

func testInput() GenerateInput {
	return GenerateInput{
		Topic:          "Inteligencia Artificial",
		PromptTemplate: "Escribe un artículo detallado sobre tecnología.",
		Category:       "ai",
		UserID:         1,
		SettingID:      7,
	}
}

func TestGenerateSuccess(t *testing.T) {
	db := newTestDB(t)
	gen := NewGenerator(db, &fakeCompleter{reply: validReply}, logger.NewNop())
	fixed := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	gen.now = func() time.Time { return fixed }

	post, err := gen.Generate(context.Background(), testInput())
	require.NoError(t, err)
	require.NotNil(t, post)

	assert.Equal(t, "La Inteligencia Artificial en 2024", post.Title)
	assert.Equal(t, "la-inteligencia-artificial-en-2024-"+fmt.Sprint(fixed.UnixMilli()), post.Slug)
	assert.Equal(t, "ai", post.Category)
	assert.True(t, post.Published)
	require.NotNil(t, post.PublishedAt)
	assert.Equal(t, fixed, post.PublishedAt.UTC())
	assert.Equal(t, 1, post.ReadingTime)
	assert.Equal(t, "ia", post.FocusKeyword)
	assert.Equal(t, "La Inteligencia Artificial en 2024", post.MetaTitle)
	assert.Equal(t, "Un repaso al estado de la IA.", post.OGDescription)
	assert.Equal(t, "index,follow", post.RobotsMeta)

	// exactly one log entry, terminal completed, pointing at the post
	var logs []database.AutoArticleLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, database.LogStatusCompleted, logs[0].Status)
	require.NotNil(t, logs[0].PostID)
	assert.Equal(t, post.ID, *logs[0].PostID)
	assert.Empty(t, logs[0].ErrorMessage)
}

func TestGenerateInvalidJSON(t *testing.T) {
	db := newTestDB(t)
	gen := NewGenerator(db, &fakeCompleter{reply: "Lo siento, aquí tienes el artículo: ..."}, logger.NewNop())

	post, err := gen.Generate(context.Background(), testInput())
	require.Error(t, err)
	assert.Nil(t, post)
	assert.Contains(t, err.Error(), "invalid JSON response from OpenAI")

	// no article row was created
	var count int64
	require.NoError(t, db.Model(&database.Post{}).Count(&count).Error)
	assert.Zero(t, count)

	// exactly one log entry, terminal error, with the message
	var logs []database.AutoArticleLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, database.LogStatusError, logs[0].Status)
	assert.Contains(t, logs[0].ErrorMessage, "invalid JSON response from OpenAI")
	assert.Nil(t, logs[0].PostID)
}

func TestGenerateUpstreamError(t *testing.T) {
	db := newTestDB(t)
	gen := NewGenerator(db, &fakeCompleter{err: fmt.Errorf("OpenAI API error: 500")}, logger.NewNop())

	_, err := gen.Generate(context.Background(), testInput())
	require.Error(t, err)

	var logs []database.AutoArticleLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, database.LogStatusError, logs[0].Status)
	assert.Equal(t, "OpenAI API error: 500", logs[0].ErrorMessage)
}

func TestGenerateSanitizesContent(t *testing.T) {
	db := newTestDB(t)
	reply := `{
		"title": "Título",
		"excerpt": "Extracto",
		"content": "<p>texto</p><script>alert(1)</script>",
		"keywords": [],
		"meta_description": ""
	}`
	gen := NewGenerator(db, &fakeCompleter{reply: reply}, logger.NewNop())

	post, err := gen.Generate(context.Background(), testInput())
	require.NoError(t, err)
	assert.NotContains(t, post.Content, "script")
	// empty keyword list falls back to the topic
	assert.Equal(t, "Inteligencia Artificial", post.FocusKeyword)
}
