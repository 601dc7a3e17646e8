package ics

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	appLog "monthcal/internal/log"
	"monthcal/internal/model"
)

// Lister is anything that can return the current event collection.
type Lister interface {
	List() []model.Event
}

// Publisher periodically writes the collection to an .ics file so other
// calendar clients can subscribe to it.
type Publisher struct {
	store    Lister
	path     string
	location *time.Location
	name     string
}

func NewPublisher(store Lister, path string, loc *time.Location, name string) *Publisher {
	return &Publisher{store: store, path: path, location: loc, name: name}
}

// Publish writes the file once, atomically.
func (p *Publisher) Publish() error {
	var buf bytes.Buffer
	if err := Write(&buf, p.store.List(), ExportOptions{Name: p.name, Location: p.location}); err != nil {
		return err
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".monthcal-export-*.tmp")
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("publish: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	if err := os.Rename(tmpName, p.path); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Run publishes immediately and then on every tick of the cron schedule
// until ctx is canceled.
func (p *Publisher) Run(ctx context.Context, schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, p.publishLogged); err != nil {
		return fmt.Errorf("invalid export schedule %q: %w", schedule, err)
	}

	p.publishLogged()
	c.Start()
	appLog.Info("ics publisher started", "path", p.path, "schedule", schedule)

	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	appLog.Info("ics publisher stopped")
	return nil
}

func (p *Publisher) publishLogged() {
	if err := p.Publish(); err != nil {
		appLog.Error("ics publish failed", err, "path", p.path)
		return
	}
	appLog.Debug("ics published", "path", p.path)
}
