// Package recommender is the command and query surface over a session: it
// updates preferences, runs the validation gate and the generator, and keeps
// the interaction log in step with every milestone.
package recommender

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/benvon/cinemate/internal/catalog"
	"github.com/benvon/cinemate/internal/export"
	"github.com/benvon/cinemate/internal/logger"
	"github.com/benvon/cinemate/internal/metrics"
	"github.com/benvon/cinemate/internal/models"
	"github.com/benvon/cinemate/internal/queue"
	"github.com/benvon/cinemate/internal/recommend"
	"github.com/benvon/cinemate/internal/services/explain"
	"github.com/benvon/cinemate/internal/session"
	"github.com/benvon/cinemate/internal/telemetry"
	"github.com/benvon/cinemate/internal/validation"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const (
	// MessageConfigSaved is logged once a preference set passed the gate
	MessageConfigSaved = "Config saved"
	// MessageRecommendationGenerated is logged after the records were replaced
	MessageRecommendationGenerated = "Recommendation generated"

	publishTimeout = 2 * time.Second
)

var (
	// ErrExportFailed is the only error export callers see; details are logged
	ErrExportFailed = errors.New("export failed")
	// ErrInvalidSessionID rejects caller supplied ids that are empty, too long or not printable ASCII
	ErrInvalidSessionID = errors.New("invalid session id")
)

// Checker is the validation gate
type Checker interface {
	Check(d *catalog.Domain, p models.PreferenceSet) error
}

// Options wires the service. Domains and Sessions are required.
type Options struct {
	Domains   *catalog.Registry
	Sessions  *session.Manager
	Gate      Checker
	Generator recommend.Generator
	Explainer explain.Explainer
	Sink      export.Sink
	Publisher queue.EventPublisher
	Logger    *zap.Logger
}

// Service runs the preference-to-recommendation pipeline
type Service struct {
	domains   *catalog.Registry
	sessions  *session.Manager
	gate      Checker
	generator recommend.Generator
	explainer explain.Explainer
	sink      export.Sink
	publisher queue.EventPublisher
	logger    *zap.Logger
}

// New creates the service, filling unset collaborators with their defaults
func New(opts Options) *Service {
	s := &Service{
		domains:   opts.Domains,
		sessions:  opts.Sessions,
		gate:      opts.Gate,
		generator: opts.Generator,
		explainer: opts.Explainer,
		sink:      opts.Sink,
		publisher: opts.Publisher,
		logger:    opts.Logger,
	}
	if s.gate == nil {
		s.gate = validation.NewGate(validation.DefaultLanguage)
	}
	if s.generator == nil {
		s.generator = recommend.NewRandomGenerator(recommend.GlobalSource())
	}
	if s.explainer == nil {
		s.explainer = explain.NewTemplateExplainer()
	}
	if s.publisher == nil {
		s.publisher = queue.NoopPublisher{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Domain returns the registered domain
func (s *Service) Domain(name string) (*catalog.Domain, error) {
	return s.domains.Get(name)
}

// Domains lists every registered domain
func (s *Service) Domains() []*catalog.Domain {
	return s.domains.List()
}

// StartSession creates a session with a fresh ID for domain
func (s *Service) StartSession(ctx context.Context, domain string) (*session.Session, error) {
	if _, err := s.domains.Get(domain); err != nil {
		return nil, err
	}
	sess, err := s.sessions.Start(ctx, domain)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	s.logger.Info("session_started", logger.Session(sess.ID, domain)...)
	s.publish(ctx, queue.NewSessionEvent(queue.EventTypeSessionStarted, sess.ID, domain, sess.CreatedAt))
	return sess, nil
}

// EnsureSession initializes the session with id on first access and returns
// the existing one untouched on every later call.
func (s *Service) EnsureSession(ctx context.Context, id, domain string) (*session.Session, error) {
	if _, err := s.domains.Get(domain); err != nil {
		return nil, err
	}
	if err := validation.Validate.Var(id, "required,max=64,printascii"); err != nil {
		return nil, ErrInvalidSessionID
	}
	return s.sessions.Ensure(ctx, id, domain)
}

// Session returns the session or session.ErrNotFound
func (s *Service) Session(ctx context.Context, id string) (*session.Session, error) {
	return s.sessions.Get(ctx, id)
}

// EndSession tears the session down
func (s *Service) EndSession(ctx context.Context, id string) error {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.sessions.End(ctx, id); err != nil {
		return err
	}
	s.logger.Info("session_ended", logger.Session(id, sess.Domain)...)
	s.publish(ctx, queue.NewSessionEvent(queue.EventTypeSessionEnded, id, sess.Domain, s.sessions.Now().UTC()))
	return nil
}

// Preferences returns the stored preferences and the effective set the gate sees
func (s *Service) Preferences(ctx context.Context, id string) (stored, effective models.PreferenceSet, err error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return models.PreferenceSet{}, models.PreferenceSet{}, err
	}
	d, err := s.domains.Get(sess.Domain)
	if err != nil {
		return models.PreferenceSet{}, models.PreferenceSet{}, err
	}
	return sess.Preferences, Effective(d, sess.Preferences), nil
}

// Effective overlays the stored preferences on the domain's widget defaults
func Effective(d *catalog.Domain, stored models.PreferenceSet) models.PreferenceSet {
	return d.Defaults().Merge(stored)
}

// UpdatePreferences merges patch into the stored preferences. Setting the
// primary selection to exactly the required number of values logs the
// domain's selection milestone.
func (s *Service) UpdatePreferences(ctx context.Context, id string, patch models.PreferenceSet) (*session.Session, error) {
	var before int
	sess, err := s.sessions.Update(ctx, id, func(sess *session.Session) error {
		d, err := s.domains.Get(sess.Domain)
		if err != nil {
			return err
		}
		if err := d.CheckSchema(patch); err != nil {
			return err
		}
		before = len(sess.Interactions)
		sess.Preferences = sess.Preferences.Merge(patch)

		if selected, ok := patch.Selection(d.Primary.Key); ok && len(selected) == d.Primary.Count {
			sess.Record(s.sessions.Now(), fmt.Sprintf("%s selected: %v", d.Primary.Label, selected), d.SelectionAction())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishNew(ctx, sess, before)
	return sess, nil
}

// Generate gates the effective preferences and, when they pass, replaces the
// session's recommendations. A rejected set leaves the session untouched and
// returns the *validation.ValidationError.
func (s *Service) Generate(ctx context.Context, id string) (*session.Session, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "recommender.generate")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", id))

	start := time.Now()
	var (
		before int
		domain string
	)
	sess, err := s.sessions.Update(ctx, id, func(sess *session.Session) error {
		d, err := s.domains.Get(sess.Domain)
		if err != nil {
			return err
		}
		domain = d.Name
		span.SetAttributes(attribute.String("domain", d.Name))

		prefs := Effective(d, sess.Preferences)
		if err := s.gate.Check(d, prefs); err != nil {
			var verr *validation.ValidationError
			if errors.As(err, &verr) {
				metrics.RecordGateRejection(d.Name, string(verr.Code))
			}
			return err
		}

		before = len(sess.Interactions)
		sess.Record(s.sessions.Now(), MessageConfigSaved, models.ActionConfigSaved)

		records, err := s.generator.Generate(d, prefs)
		if err != nil {
			return fmt.Errorf("failed to generate recommendations: %w", err)
		}
		if d.Explain {
			records = explain.Apply(ctx, s.explainer, d, prefs, records)
		}
		sess.Recommendations = records
		sess.Record(s.sessions.Now(), MessageRecommendationGenerated, models.ActionRecommendationGenerated)
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordGeneration(domain, time.Since(start))
	s.logger.Info("recommendations_generated",
		append(logger.Session(id, domain), zap.Int("count", len(sess.Recommendations)))...,
	)
	s.publishNew(ctx, sess, before)
	return sess, nil
}

// Interactions returns the session's log in insertion order
func (s *Service) Interactions(ctx context.Context, id string) ([]models.InteractionEvent, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.Interactions.Events(), nil
}

// Recommendations returns the current recommendation records
func (s *Service) Recommendations(ctx context.Context, id string) ([]models.RecommendationRecord, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.Recommendations, nil
}

// ExportCSV writes the interaction log as CSV to w
func (s *Service) ExportCSV(ctx context.Context, id string, w io.Writer) error {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return err
	}
	return sess.Interactions.WriteCSV(w)
}

// ExportToSink writes the interaction log to the configured sink and returns
// its location. Failures are logged and reported as ErrExportFailed.
func (s *Service) ExportToSink(ctx context.Context, id string) (string, error) {
	if s.sink == nil {
		return "", export.ErrNoSink
	}
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := sess.Interactions.WriteCSV(&buf); err != nil {
		s.logger.Error("export_failed", zap.String("session_id", id), zap.Error(err))
		metrics.RecordExport(err)
		return "", ErrExportFailed
	}

	location, err := s.sink.Write(ctx, export.FileName(id, s.sessions.Now()), buf.Bytes())
	metrics.RecordExport(err)
	if err != nil {
		s.logger.Error("export_failed", zap.String("session_id", id), zap.Error(err))
		return "", ErrExportFailed
	}
	s.logger.Info("interactions_exported",
		zap.String("session_id", id),
		zap.String("location", location),
		zap.Int("events", len(sess.Interactions)),
	)
	return location, nil
}

// publishNew publishes every interaction recorded after index before
func (s *Service) publishNew(ctx context.Context, sess *session.Session, before int) {
	for _, e := range sess.Interactions[before:] {
		s.publish(ctx, queue.NewInteractionEvent(sess.ID, sess.Domain, e))
	}
}

// publish never fails the caller; the bus is best effort
func (s *Service) publish(ctx context.Context, event *queue.Event) {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(pctx, event); err != nil {
		metrics.EventPublishFailures.Inc()
		s.logger.Warn("event_publish_failed",
			zap.String("session_id", event.SessionID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err),
		)
	}
}
