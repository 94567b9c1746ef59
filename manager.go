package layerrenamer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
)

var ErrSessionClosed = errors.New("session closed")

// Renamer answers the requests a host sends for one open document.
type Renamer interface {
	FetchInstances(ctx context.Context) ([]UniqueInstance, error)
	RenameComponents(ctx context.Context, req RenameRequest) (*RenameReport, error)
	Undo(ctx context.Context) (int, error)
	HighlightInstances(ctx context.Context, componentType string) (*HighlightResult, error)
	Cancel(ctx context.Context) error
}

type Options struct {
	Config   *Config
	Notifier Notifier
	Logger   *slog.Logger
}

// Session holds one document and its undo log. Requests are serialized so a
// rename run always completes before the next request sees the document.
type Session struct {
	mu       sync.Mutex
	doc      *Document
	undo     *UndoLog
	config   *Config
	notifier Notifier
	log      *slog.Logger
	closed   bool
}

func NewSession(doc *Document, opts Options) *Session {
	if opts.Config == nil {
		opts.Config = DefaultConfig()
	}
	if opts.Notifier == nil {
		opts.Notifier = NewWriterNotifier(io.Discard)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Session{
		doc:      doc,
		undo:     NewUndoLog(),
		config:   opts.Config,
		notifier: opts.Notifier,
		log:      opts.Logger,
	}
}

func (s *Session) Document() *Document {
	return s.doc
}

func (s *Session) FetchInstances(ctx context.Context) ([]UniqueInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx); err != nil {
		return nil, err
	}

	instances := AggregateInstances(s.doc.CurrentPage)
	s.log.Debug("fetched instances", slog.Int("unique", len(instances)))
	return instances, nil
}

// RenameComponents renames instances under the selection, or the current page
// when nothing is selected, and replaces the pending undo batch with this run.
func (s *Session) RenameComponents(ctx context.Context, req RenameRequest) (*RenameReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx); err != nil {
		return nil, err
	}

	mapping := NewComponentMapping(req.ButtonName, req.ServiceTilesName, req.ListItemName)
	customRenames := completeRenames(req.CustomRenames)
	roots := s.doc.RootsForRun()

	result := RenameTree(roots, mapping, customRenames)
	s.undo.Record(result.Actions)

	total := len(result.Items)
	s.log.Info("renamed components",
		slog.Int("roots", len(roots)),
		slog.Int("custom_rules", len(customRenames)),
		slog.Int("renamed", total))

	s.notifier.Notify(Notification{
		Message: renamedMessage(total),
		Timeout: s.config.NotificationTimeout,
		Button: &NotificationButton{
			Text: "Undo",
			Action: func() {
				if _, err := s.Undo(context.Background()); err != nil {
					s.log.Warn("undo from notification failed", slog.String("error", err.Error()))
				}
			},
		},
	})

	return &RenameReport{
		RenamedItems: result.Items,
		Counts:       countByCategory(result.Items),
		Total:        total,
	}, nil
}

// Undo restores the names changed by the last rename run. The restored count
// is posted even when nothing was pending.
func (s *Session) Undo(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx); err != nil {
		return 0, err
	}

	restored := s.undo.Undo()
	s.log.Info("restored names", slog.Int("restored", restored))
	s.notifier.Notify(Notification{Message: restoredMessage(restored)})
	return restored, nil
}

// completeRenames drops custom rules missing either name. Such rules are
// never applied to a document.
func completeRenames(rules []CustomRename) []CustomRename {
	kept := make([]CustomRename, 0, len(rules))
	for _, rule := range rules {
		if rule.Name == "" || rule.NewName == "" {
			continue
		}
		kept = append(kept, rule)
	}
	return kept
}

// HighlightInstances selects every instance of componentType on the current
// page. The selection is left alone when nothing matches.
func (s *Session) HighlightInstances(ctx context.Context, componentType string) (*HighlightResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx); err != nil {
		return nil, err
	}

	instances := FindInstancesOf(componentType, s.doc.CurrentPage)
	if len(instances) > 0 {
		s.doc.Select(instances)
	}

	message := selectedMessage(len(instances), componentType)
	s.notifier.Notify(Notification{Message: message})

	ids := make([]string, 0, len(instances))
	for _, node := range instances {
		ids = append(ids, node.ID)
	}

	return &HighlightResult{
		ComponentType: componentType,
		NodeIDs:       ids,
		Count:         len(instances),
		Message:       message,
	}, nil
}

// Cancel closes the session. The document and undo log are left as they are.
func (s *Session) Cancel(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	s.closed = true
	s.log.Debug("session closed")
	return nil
}

// PendingUndo returns the number of actions the next Undo would revert.
func (s *Session) PendingUndo() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.undo.Len()
}

func (s *Session) check(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if s.closed {
		return ErrSessionClosed
	}
	return nil
}

// Save writes the document, with its current names, to path.
func (s *Session) Save(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx); err != nil {
		return err
	}
	return SaveDocument(ctx, path, s.doc)
}
