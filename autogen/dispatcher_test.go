package autogen

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"prensa/database"
	"prensa/logger"
)

// fakeGen records invocations and can fail selected settings.
type fakeGen struct {
	db      *gorm.DB
	calls   []GenerateInput
	failFor map[uint]error
}

func (f *fakeGen) Generate(_ context.Context, in GenerateInput) (*database.Post, error) {
	f.calls = append(f.calls, in)
	if err, ok := f.failFor[in.SettingID]; ok {
		return nil, err
	}
	post := database.Post{
		Title:     "generado: " + in.Topic,
		Slug:      fmt.Sprintf("generado-%d-%d", in.SettingID, len(f.calls)),
		Category:  in.Category,
		Published: true,
	}
	if result := f.db.Create(&post); result.Error != nil {
		return nil, result.Error
	}
	return &post, nil
}

func newTestDispatcher(db *gorm.DB, gen articleGenerator, now time.Time) *Dispatcher {
	return &Dispatcher{
		db:  db,
		gen: gen,
		log: logger.NewNop(),
		now: func() time.Time { return now },
	}
}

func createSetting(t *testing.T, db *gorm.DB, topic string, frequencyHours int, active bool) database.AutoContentSetting {
	t.Helper()
	setting := database.AutoContentSetting{
		UserID:         1,
		Topic:          topic,
		PromptTemplate: "Escribe un artículo sobre tecnología.",
		Category:       "ai",
		FrequencyHours: frequencyHours,
		IsActive:       active,
	}
	require.NoError(t, db.Create(&setting).Error)
	return setting
}

func completeLogAt(t *testing.T, db *gorm.DB, settingID uint, at time.Time) {
	t.Helper()
	entry := database.AutoArticleLog{
		SettingID: settingID,
		Topic:     "t",
		Status:    database.LogStatusCompleted,
	}
	require.NoError(t, db.Create(&entry).Error)
	require.NoError(t, db.Model(&entry).UpdateColumn("created_at", at).Error)
}

func TestDispatchNoPriorRunIsDueImmediately(t *testing.T) {
	db := newTestDB(t)
	setting := createSetting(t, db, "IA", 24, true)

	gen := &fakeGen{db: db}
	d := newTestDispatcher(db, gen, time.Now())

	summary, err := d.Dispatch(context.Background())
	require.NoError(t, err)

	require.Len(t, gen.calls, 1)
	assert.Equal(t, setting.ID, gen.calls[0].SettingID)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.TotalSettings)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, "success", summary.Results[0].Status)
	require.NotNil(t, summary.Results[0].ArticleID)
	assert.NotEmpty(t, summary.RunID)
}

func TestDispatchSkipsWhenNotDue(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()
	setting := createSetting(t, db, "IA", 24, true)
	completeLogAt(t, db, setting.ID, now.Add(-10*time.Hour))

	gen := &fakeGen{db: db}
	summary, err := newTestDispatcher(db, gen, now).Dispatch(context.Background())
	require.NoError(t, err)

	// 10h elapsed of a 24h cadence: skipped, and not present in results
	assert.Empty(t, gen.calls)
	assert.Zero(t, summary.Processed)
	assert.Equal(t, 1, summary.TotalSettings)
	assert.Empty(t, summary.Results)
}

func TestDispatchRunsWhenFrequencyElapsed(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()
	setting := createSetting(t, db, "IA", 24, true)
	completeLogAt(t, db, setting.ID, now.Add(-24*time.Hour))

	gen := &fakeGen{db: db}
	summary, err := newTestDispatcher(db, gen, now).Dispatch(context.Background())
	require.NoError(t, err)

	require.Len(t, gen.calls, 1)
	assert.Equal(t, setting.ID, gen.calls[0].SettingID)
	assert.Equal(t, 1, summary.Processed)
}

func TestDispatchIgnoresInactiveSettings(t *testing.T) {
	db := newTestDB(t)
	createSetting(t, db, "IA", 24, false)

	gen := &fakeGen{db: db}
	summary, err := newTestDispatcher(db, gen, time.Now()).Dispatch(context.Background())
	require.NoError(t, err)

	assert.Empty(t, gen.calls)
	assert.Zero(t, summary.TotalSettings)
	assert.Equal(t, "No active settings found", summary.Message)
}

func TestDispatchErrorLogsDoNotCount(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()
	setting := createSetting(t, db, "IA", 24, true)

	// an error attempt 1h ago is not a watermark: still due
	entry := database.AutoArticleLog{SettingID: setting.ID, Topic: "t", Status: database.LogStatusError}
	require.NoError(t, db.Create(&entry).Error)

	gen := &fakeGen{db: db}
	_, err := newTestDispatcher(db, gen, now).Dispatch(context.Background())
	require.NoError(t, err)
	assert.Len(t, gen.calls, 1)
}

func TestDispatchIsolatesFailures(t *testing.T) {
	db := newTestDB(t)
	failing := createSetting(t, db, "falla", 24, true)
	healthy := createSetting(t, db, "sana", 24, true)

	gen := &fakeGen{db: db, failFor: map[uint]error{failing.ID: fmt.Errorf("OpenAI API error: 429")}}
	summary, err := newTestDispatcher(db, gen, time.Now()).Dispatch(context.Background())
	require.NoError(t, err)

	// both settings were attempted despite the first failing
	require.Len(t, gen.calls, 2)
	assert.Equal(t, 1, summary.Processed)
	require.Len(t, summary.Results, 2)

	byID := map[uint]DispatchResult{}
	for _, res := range summary.Results {
		byID[res.SettingID] = res
	}
	assert.Equal(t, "error", byID[failing.ID].Status)
	assert.Contains(t, byID[failing.ID].Error, "429")
	assert.Equal(t, "success", byID[healthy.ID].Status)
}
