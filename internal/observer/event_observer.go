package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// SessionEvent represents something that happened in a workspace session
type SessionEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	SessionID      string                 `json:"session_id"`
	ImageName      string                 `json:"image_name,omitempty"`
	RecordID       string                 `json:"record_id,omitempty"`
	Count          int                    `json:"count,omitempty"`
	ProcessingTime time.Duration          `json:"processing_time,omitempty"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of session event
type EventType string

const (
	// SessionOpened when a page load creates a workspace
	SessionOpened EventType = "session_opened"
	// SessionEvicted when an idle workspace is discarded
	SessionEvicted EventType = "session_evicted"
	// BatchStarted when a set of files is submitted
	BatchStarted EventType = "batch_started"
	// RecordAppended when a simulated detection joins the history
	RecordAppended EventType = "record_appended"
	// RecordRejected when a file could not be read or recorded
	RecordRejected EventType = "record_rejected"
	// BatchCompleted when every file of a batch has been processed
	BatchCompleted EventType = "batch_completed"
	// ExportCompleted when a CSV or report was produced
	ExportCompleted EventType = "export_completed"
	// ExportRejected when an export was refused, e.g. on empty history
	ExportRejected EventType = "export_rejected"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event SessionEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event SessionEvent)
}

// LoggingObserver logs session events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles session events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event SessionEvent) {
	fields := logrus.Fields{
		"event_type": event.EventType,
		"session_id": event.SessionID,
	}
	if event.ImageName != "" {
		fields["image_name"] = event.ImageName
	}
	if event.RecordID != "" {
		fields["record_id"] = event.RecordID
	}
	if event.Count != 0 {
		fields["count"] = event.Count
	}
	if event.ProcessingTime != 0 {
		fields["processing_time_ms"] = event.ProcessingTime.Milliseconds()
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case SessionOpened:
		entry.Info("Session opened")
	case SessionEvicted:
		entry.Info("Idle session evicted")
	case BatchStarted:
		entry.Info("Upload batch started")
	case RecordAppended:
		entry.Debug("Record appended to history")
	case RecordRejected:
		entry.Warn("Upload could not be recorded")
	case BatchCompleted:
		entry.Info("Upload batch completed")
	case ExportCompleted:
		entry.Info("Export completed")
	case ExportRejected:
		entry.Warn("Export rejected")
	default:
		entry.Info("Session event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver collects counters from session events
type MetricsObserver struct {
	mu               sync.RWMutex
	sessionsOpened   int64
	sessionsEvicted  int64
	batches          int64
	batchesCompleted int64
	recordsAppended  int64
	recordsRejected  int64
	exportsCompleted int64
	exportsRejected  int64
	totalBatchTime   time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

// OnEvent handles session events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event SessionEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case SessionOpened:
		o.sessionsOpened++
	case SessionEvicted:
		o.sessionsEvicted++
	case BatchStarted:
		o.batches++
	case RecordAppended:
		o.recordsAppended++
	case RecordRejected:
		o.recordsRejected++
	case BatchCompleted:
		o.batchesCompleted++
		o.totalBatchTime += event.ProcessingTime
	case ExportCompleted:
		o.exportsCompleted++
	case ExportRejected:
		o.exportsRejected++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgBatchTime := time.Duration(0)
	if o.batchesCompleted > 0 {
		avgBatchTime = o.totalBatchTime / time.Duration(o.batchesCompleted)
	}

	return map[string]interface{}{
		"sessions_opened":   o.sessionsOpened,
		"sessions_evicted":  o.sessionsEvicted,
		"batches_started":   o.batches,
		"batches_completed": o.batchesCompleted,
		"records_appended":  o.recordsAppended,
		"records_rejected":  o.recordsRejected,
		"exports_completed": o.exportsCompleted,
		"exports_rejected":  o.exportsRejected,
		"avg_batch_time_ms": avgBatchTime.Milliseconds(),
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
	pending   sync.WaitGroup
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers notifies all observers of an event
func (p *EventPublisher) NotifyObservers(ctx context.Context, event SessionEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	// Notify observers concurrently
	p.pending.Add(len(observers))
	for _, observer := range observers {
		go func(obs Observer) {
			defer p.pending.Done()
			defer func() {
				if r := recover(); r != nil {
					// Log panic but don't crash the application
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}

// Wait blocks until every event published so far has been handled
func (p *EventPublisher) Wait() {
	p.pending.Wait()
}
