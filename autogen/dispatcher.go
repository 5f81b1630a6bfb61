package autogen

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"prensa/database"
	"prensa/logger"
)

// articleGenerator lets dispatcher tests substitute the real generator.
type articleGenerator interface {
	Generate(ctx context.Context, in GenerateInput) (*database.Post, error)
}

type DispatchResult struct {
	SettingID uint   `json:"setting_id"`
	Topic     string `json:"topic"`
	Status    string `json:"status"`
	ArticleID *uint  `json:"article_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

type DispatchSummary struct {
	RunID         string           `json:"run_id"`
	Message       string           `json:"message"`
	Processed     int              `json:"processed"`
	TotalSettings int              `json:"total_settings"`
	Results       []DispatchResult `json:"results"`
}

type Dispatcher struct {
	db  *gorm.DB
	gen articleGenerator
	log *logger.Logger
	now func() time.Time
}

func NewDispatcher(db *gorm.DB, gen *Generator, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		db:  db,
		gen: gen,
		log: log.With("component", "dispatcher"),
		now: time.Now,
	}
}

// Dispatch walks every active setting and, for each one that is due, runs
// a generation synchronously. A setting with no completed run yet is due
// immediately; otherwise it is due once frequency_hours have elapsed since
// its newest completed log entry. Settings that are not due are skipped
// silently. One failing setting never stops the rest of the batch.
func (d *Dispatcher) Dispatch(ctx context.Context) (*DispatchSummary, error) {
	runID := uuid.NewString()
	log := d.log.With("run_id", runID)
	log.Info("dispatch run started")

	settings, err := database.ActiveSettings(d.db)
	if err != nil {
		return nil, fmt.Errorf("fetch settings: %w", err)
	}

	summary := &DispatchSummary{
		RunID:         runID,
		TotalSettings: len(settings),
		Results:       []DispatchResult{},
	}
	if len(settings) == 0 {
		summary.Message = "No active settings found"
		log.Info("dispatch run finished", "processed", 0)
		return summary, nil
	}

	for _, setting := range settings {
		due, err := d.isDue(setting)
		if err != nil {
			summary.Results = append(summary.Results, DispatchResult{
				SettingID: setting.ID,
				Topic:     setting.Topic,
				Status:    "error",
				Error:     err.Error(),
			})
			continue
		}
		if !due {
			log.Debug("setting not due yet", "setting_id", setting.ID)
			continue
		}

		post, err := d.gen.Generate(ctx, GenerateInput{
			Topic:          setting.Topic,
			PromptTemplate: setting.PromptTemplate,
			Category:       setting.Category,
			UserID:         setting.UserID,
			SettingID:      setting.ID,
		})
		if err != nil {
			summary.Results = append(summary.Results, DispatchResult{
				SettingID: setting.ID,
				Topic:     setting.Topic,
				Status:    "error",
				Error:     err.Error(),
			})
			continue
		}

		summary.Processed++
		summary.Results = append(summary.Results, DispatchResult{
			SettingID: setting.ID,
			Topic:     setting.Topic,
			Status:    "success",
			ArticleID: &post.ID,
		})
	}

	summary.Message = "Auto-content cron job completed"
	log.Info("dispatch run finished", "processed", summary.Processed, "total_settings", summary.TotalSettings)
	return summary, nil
}

func (d *Dispatcher) isDue(setting database.AutoContentSetting) (bool, error) {
	last, err := database.LastCompletedLog(d.db, setting.ID)
	if err != nil {
		return false, fmt.Errorf("fetch last completed log: %w", err)
	}
	if last == nil {
		return true, nil
	}
	elapsed := d.now().Sub(last.CreatedAt)
	return elapsed >= time.Duration(setting.FrequencyHours)*time.Hour, nil
}
