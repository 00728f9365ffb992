package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"go-microplastic-inspector/internal/analyzer"
	apperrors "go-microplastic-inspector/internal/errors"
	"go-microplastic-inspector/internal/export"
	"go-microplastic-inspector/internal/observer"
	"go-microplastic-inspector/internal/projection"
	"go-microplastic-inspector/internal/render"
	"go-microplastic-inspector/internal/repository"
	"go-microplastic-inspector/pkg/models"
	"go-microplastic-inspector/pkg/validation"
)

// Dependencies are shared by every workspace
type Dependencies struct {
	Detector  analyzer.Detector
	Pool      *analyzer.WorkerPool
	Printer   *export.Printer
	Validator *validation.UploadValidator
	Publisher observer.Subject

	// PreviewURL builds the URL a card loads its preview from; nil means no previews
	PreviewURL func(sessionID, imageID string) string
}

// AnalyzedFile is one appended record with the row and card rendered for it
type AnalyzedFile struct {
	Record models.AnalyzedImage
	Row    render.TableRow
	Card   render.Card
}

// RejectedFile is a file that could not be read or recorded
type RejectedFile struct {
	Name string
	Err  error
}

// BatchResult describes one completed upload batch
type BatchResult struct {
	// Files are in the order they were appended to the history
	Files        []AnalyzedFile
	Rejected     []RejectedFile
	HistoryCount int
	ChartVersion uint64
}

// Workspace is the state behind one page load: its history, previews,
// rendered rows and cards, and chart projection.
type Workspace struct {
	id        string
	createdAt time.Time
	lastSeen  atomic.Int64

	deps     Dependencies
	history  repository.HistoryRepository
	previews repository.PreviewRepository
	board    *render.Board
	charts   *projection.Cache

	// mu orders history appends together with board updates and chart refreshes
	mu sync.Mutex

	now   func() time.Time
	newID func() string
}

// NewWorkspace creates an empty workspace
func NewWorkspace(id string, deps Dependencies) *Workspace {
	if id == "" {
		id = uuid.NewString()
	}
	var previewURL render.PreviewURLFunc
	if deps.PreviewURL != nil {
		previewURL = func(imageID string) string { return deps.PreviewURL(id, imageID) }
	}
	if deps.Detector == nil {
		deps.Detector = analyzer.NewSimulator(analyzer.DefaultOptions())
	}
	if deps.Validator == nil {
		deps.Validator = validation.NewUploadValidator()
	}
	if deps.Printer == nil {
		deps.Printer = export.NewPrinter(export.DefaultPrintDelay)
	}

	w := &Workspace{
		id:        id,
		createdAt: time.Now(),
		deps:      deps,
		history:   repository.NewMemoryHistoryRepository(),
		previews:  repository.NewMemoryPreviewRepository(),
		board:     render.NewBoard(previewURL),
		charts:    projection.NewCache(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	w.touch()
	return w
}

// ID returns the session identifier
func (w *Workspace) ID() string { return w.id }

// CreatedAt returns when the workspace was opened
func (w *Workspace) CreatedAt() time.Time { return w.createdAt }

// LastSeen returns the last time the workspace was used
func (w *Workspace) LastSeen() time.Time {
	return time.Unix(0, w.lastSeen.Load())
}

func (w *Workspace) touch() {
	w.lastSeen.Store(w.now().UnixNano())
}

// batch tracks the outstanding reads of one upload
type batch struct {
	remaining atomic.Int64
	done      chan struct{}
	started   time.Time

	// guarded by Workspace.mu
	files    []AnalyzedFile
	rejected []RejectedFile

	version uint64
}

// AnalyzeBatch reads and simulates every file concurrently on the shared pool.
// Each record is appended as soon as its read completes. The chart projection
// is refreshed exactly once, after the last file of the batch.
func (w *Workspace) AnalyzeBatch(ctx context.Context, files []FileSource) (*BatchResult, error) {
	w.touch()

	uploads := make([]validation.Upload, len(files))
	for i, f := range files {
		uploads[i] = validation.Upload{Name: f.Name(), Size: f.Size()}
	}
	if err := w.deps.Validator.ValidateBatch(uploads); err != nil {
		return nil, err
	}
	if w.deps.Pool == nil {
		return nil, apperrors.NewInternalError("worker pool not configured", nil)
	}

	// Jobs outlive a cancelled request; only the wait below is abandoned
	jobCtx := context.WithoutCancel(ctx)

	b := &batch{done: make(chan struct{}), started: time.Now()}
	b.remaining.Store(int64(len(files)))
	w.publish(jobCtx, observer.SessionEvent{EventType: observer.BatchStarted, Count: len(files)})

	for _, f := range files {
		f := f
		job := func() { w.process(jobCtx, b, f) }
		if !w.deps.Pool.Submit(job) {
			w.reject(jobCtx, b, f.Name(), apperrors.NewProcessingError("worker pool closed", nil))
			w.finish(jobCtx, b)
		}
	}

	select {
	case <-b.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return &BatchResult{
		Files:        b.files,
		Rejected:     b.rejected,
		HistoryCount: w.history.Len(),
		ChartVersion: b.version,
	}, nil
}

// process is one file's job: read, simulate, append, render
func (w *Workspace) process(ctx context.Context, b *batch, f FileSource) {
	defer w.finish(ctx, b)

	data, err := readSource(f)
	if err != nil {
		w.reject(ctx, b, f.Name(), apperrors.NewProcessingError("could not read "+f.Name(), err))
		return
	}

	record := models.NewAnalyzedImage(w.newID(), f.Name(), w.deps.Detector.Detect(f.Name()), w.now())
	record.ContentType = mimetype.Detect(data).String()
	w.previews.Put(record.ID, repository.Preview{ContentType: record.ContentType, Data: data})

	w.mu.Lock()
	if err := w.history.Append(record); err != nil {
		w.mu.Unlock()
		w.reject(ctx, b, f.Name(), apperrors.NewProcessingError("could not record "+f.Name(), err))
		return
	}
	row, card := w.board.Add(record)
	b.files = append(b.files, AnalyzedFile{Record: record, Row: row, Card: card})
	w.mu.Unlock()

	w.publish(ctx, observer.SessionEvent{
		EventType: observer.RecordAppended,
		ImageName: record.Name,
		RecordID:  record.ID,
		Metadata: map[string]interface{}{
			"dominant_type": record.DominantType(),
			"accuracy":      record.Accuracy,
		},
	})
}

func (w *Workspace) reject(ctx context.Context, b *batch, name string, err error) {
	w.mu.Lock()
	b.rejected = append(b.rejected, RejectedFile{Name: name, Err: err})
	w.mu.Unlock()

	w.publish(ctx, observer.SessionEvent{
		EventType:    observer.RecordRejected,
		ImageName:    name,
		ErrorMessage: err.Error(),
	})
}

// finish counts down one job; the last one refreshes the charts.
// Snapshot and refresh share mu so a later version never holds an older history.
func (w *Workspace) finish(ctx context.Context, b *batch) {
	if b.remaining.Add(-1) != 0 {
		return
	}
	w.mu.Lock()
	b.version = w.charts.Refresh(w.history.Snapshot())
	w.mu.Unlock()
	w.publish(ctx, observer.SessionEvent{
		EventType:      observer.BatchCompleted,
		Count:          len(b.files),
		ProcessingTime: time.Since(b.started),
		Metadata:       map[string]interface{}{"chart_version": b.version, "rejected": len(b.rejected)},
	})
	close(b.done)
}

func readSource(f FileSource) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Name(), err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name(), err)
	}
	return data, nil
}

// History returns a snapshot of the records in upload order
func (w *Workspace) History() []models.AnalyzedImage {
	w.touch()
	return w.history.Snapshot()
}

// Rows returns the history table rows, oldest first
func (w *Workspace) Rows() []render.TableRow {
	return w.board.Rows()
}

// Cards returns the image cards, newest first
func (w *Workspace) Cards() []render.Card {
	return w.board.Cards()
}

// Charts returns the current chart projection and its version
func (w *Workspace) Charts() (projection.ChartData, uint64) {
	w.touch()
	return w.charts.Current()
}

// Preview returns the uploaded bytes of a record
func (w *Workspace) Preview(imageID string) (repository.Preview, error) {
	w.touch()
	p, ok := w.previews.Get(imageID)
	if !ok {
		return repository.Preview{}, apperrors.NewNotFoundError("image not found", repository.ErrRecordNotFound)
	}
	return p, nil
}

// ExportCSV encodes the current history as CSV
func (w *Workspace) ExportCSV(ctx context.Context) ([]byte, error) {
	w.touch()
	data, err := export.EncodeCSV(w.history.Snapshot())
	w.publishExport(ctx, "csv", err)
	return data, err
}

// PrintReport renders the printable report into a surface from opener
func (w *Workspace) PrintReport(ctx context.Context, opener export.SurfaceOpener) error {
	w.touch()
	err := w.deps.Printer.Print(w.history.Snapshot(), opener)
	w.publishExport(ctx, "report", err)
	return err
}

func (w *Workspace) publishExport(ctx context.Context, format string, err error) {
	event := observer.SessionEvent{
		EventType: observer.ExportCompleted,
		Count:     w.history.Len(),
		Metadata:  map[string]interface{}{"format": format},
	}
	if err != nil {
		event.EventType = observer.ExportRejected
		event.ErrorMessage = err.Error()
	}
	w.publish(ctx, event)
}

func (w *Workspace) publish(ctx context.Context, event observer.SessionEvent) {
	if w.deps.Publisher == nil {
		return
	}
	event.SessionID = w.id
	w.deps.Publisher.NotifyObservers(ctx, event)
}
