package service

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// UseCaseEvent describes one finished service call.
type UseCaseEvent struct {
	Name      string
	Campaign  string
	StartedAt time.Time
	Duration  time.Duration
	Success   bool
	Err       error
	Fields    map[string]any
}

// UseCaseObserver receives an event after every service use case.
type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

type NoopUseCaseObserver struct{}

func (NoopUseCaseObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

type logUseCaseObserver struct {
	logger *slog.Logger
}

// NewLogUseCaseObserver writes one text record per use case to w.
func NewLogUseCaseObserver(w io.Writer) UseCaseObserver {
	if w == nil {
		return NoopUseCaseObserver{}
	}
	return NewSlogUseCaseObserver(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})))
}

// NewSlogUseCaseObserver reports use cases through an existing logger.
func NewSlogUseCaseObserver(logger *slog.Logger) UseCaseObserver {
	if logger == nil {
		return NoopUseCaseObserver{}
	}
	return &logUseCaseObserver{logger: logger}
}

func (o *logUseCaseObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	attrs := make([]any, 0, 10+len(event.Fields)*2)
	attrs = append(attrs,
		"use_case", event.Name,
		"duration_ms", event.Duration.Milliseconds(),
		"success", event.Success,
	)
	if event.Campaign != "" {
		attrs = append(attrs, "campaign_id", event.Campaign)
	}
	for k, v := range event.Fields {
		attrs = append(attrs, k, v)
	}
	if event.Err != nil {
		attrs = append(attrs, "error", event.Err.Error())
		o.logger.ErrorContext(ctx, "service_use_case", attrs...)
		return
	}
	o.logger.InfoContext(ctx, "service_use_case", attrs...)
}

func useCaseObserverOrNoop(observers []UseCaseObserver) UseCaseObserver {
	for _, obs := range observers {
		if obs != nil {
			return obs
		}
	}
	return NoopUseCaseObserver{}
}

// tracker times a use case; finish is meant to be deferred with a pointer to
// the named error result.
type tracker struct {
	observer UseCaseObserver
	event    UseCaseEvent
}

func track(obs UseCaseObserver, name, campaignID string) *tracker {
	return &tracker{
		observer: obs,
		event: UseCaseEvent{
			Name:      name,
			Campaign:  campaignID,
			StartedAt: time.Now().UTC(),
			Fields:    map[string]any{},
		},
	}
}

func (t *tracker) set(key string, value any) { t.event.Fields[key] = value }

func (t *tracker) finish(ctx context.Context, err *error) {
	t.event.Duration = time.Since(t.event.StartedAt)
	if err != nil && *err != nil {
		t.event.Err = *err
	}
	t.event.Success = t.event.Err == nil
	t.observer.ObserveUseCase(ctx, t.event)
}
