package logger

import (
	"encoding/json"

	"ai-docassist/internal/model"

	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

// dbCore mirrors warn+ entries into the system_logs table so operators can
// query recent problems without shell access to the log file.
type dbCore struct {
	zapcore.LevelEnabler
	db     *gorm.DB
	fields []zapcore.Field
}

func NewDBCore(db *gorm.DB) zapcore.Core {
	return &dbCore{
		LevelEnabler: zapcore.WarnLevel,
		db:           db,
	}
}

func (c *dbCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = append(clone.fields[:len(clone.fields):len(clone.fields)], fields...)
	return &clone
}

func (c *dbCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *dbCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}

	var module *string
	if m, ok := enc.Fields["module"].(string); ok {
		module = &m
	}

	var details *string
	if d, ok := enc.Fields["details"]; ok {
		if raw, err := json.Marshal(d); err == nil {
			s := string(raw)
			details = &s
		}
	}

	row := &model.SystemLog{
		Level:     ent.Level.CapitalString(),
		Module:    module,
		Message:   ent.Message,
		Details:   details,
		CreatedAt: ent.Time,
	}
	// A failed insert must not take the request down with it.
	_ = c.db.Create(row).Error
	return nil
}

func (c *dbCore) Sync() error {
	return nil
}
