package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/somos-tech/profile-service/internal/domain"
	"github.com/somos-tech/profile-service/internal/events"
	"github.com/somos-tech/profile-service/internal/moderation"
	"github.com/somos-tech/profile-service/pkg/util"
)

type fakeProfileStore struct {
	profiles map[string]*domain.UserProfile
	byEmail  map[string]*domain.UserProfile
	upserts  int
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{
		profiles: map[string]*domain.UserProfile{},
		byEmail:  map[string]*domain.UserProfile{},
	}
}

func (f *fakeProfileStore) add(p *domain.UserProfile) {
	f.profiles[p.UserID] = p
	f.byEmail[p.Email] = p
}

func (f *fakeProfileStore) Get(_ context.Context, userID string) (*domain.UserProfile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *p
	return &copied, nil
}

func (f *fakeProfileStore) GetByEmail(_ context.Context, email string) (*domain.UserProfile, error) {
	p, ok := f.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *p
	return &copied, nil
}

func (f *fakeProfileStore) Upsert(_ context.Context, profile *domain.UserProfile) error {
	f.upserts++
	f.add(profile)
	return nil
}

type capturingDispatcher struct {
	published []events.Event
}

func (d *capturingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *capturingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func newProfileService(store *fakeProfileStore, pipeline moderation.Pipeline, dispatcher events.Dispatcher) *ProfileService {
	return NewProfileService(store, moderation.NewGate(pipeline, zap.NewNop()), dispatcher, zap.NewNop())
}

type stubPipeline struct {
	verdict *moderation.Verdict
	err     error
	calls   int
}

func (s *stubPipeline) Moderate(_ context.Context, _ moderation.Request) (*moderation.Verdict, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.verdict, nil
}

func actorFor(userID, email string) *domain.Principal {
	return &domain.Principal{UserID: userID, Email: email}
}

func TestUpdate_ValidationFailureWritesNothing(t *testing.T) {
	store := newFakeProfileStore()
	store.add(&domain.UserProfile{UserID: "u-1", Email: "a@somos.tech"})
	svc := newProfileService(store, &stubPipeline{verdict: &moderation.Verdict{Allowed: true}}, &capturingDispatcher{})

	_, err := svc.Update(context.Background(), actorFor("u-1", "a@somos.tech"), "u-1", map[string]any{
		"bio": strings.Repeat("x", 501),
	})

	var domainErr *util.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "VALIDATION_FAILED" {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if !strings.Contains(domainErr.Message, "500") {
		t.Errorf("expected message referencing the bio limit, got %q", domainErr.Message)
	}
	if store.upserts != 0 {
		t.Errorf("expected no writes after validation failure, got %d", store.upserts)
	}
}

func TestUpdate_BlockedWritesNothing(t *testing.T) {
	store := newFakeProfileStore()
	store.add(&domain.UserProfile{UserID: "u-1", Email: "a@somos.tech"})
	pipeline := &stubPipeline{verdict: &moderation.Verdict{
		Allowed: false,
		Tier1:   &moderation.Tier1Result{Matches: []string{"banned"}},
	}}
	svc := newProfileService(store, pipeline, &capturingDispatcher{})

	_, err := svc.Update(context.Background(), actorFor("u-1", "a@somos.tech"), "u-1", map[string]any{
		"displayName": "rude name",
	})

	var domainErr *util.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "MODERATION_BLOCKED" {
		t.Fatalf("expected moderation block, got %v", err)
	}
	if domainErr.Message != moderation.ReasonGuidelines {
		t.Errorf("expected guidelines reason, got %q", domainErr.Message)
	}
	if store.upserts != 0 {
		t.Errorf("expected no writes after block, got %d", store.upserts)
	}
}

func TestUpdate_AllowPersists(t *testing.T) {
	store := newFakeProfileStore()
	store.add(&domain.UserProfile{UserID: "u-1", Email: "a@somos.tech", DisplayName: "Old"})
	svc := newProfileService(store, &stubPipeline{verdict: &moderation.Verdict{Allowed: true}}, &capturingDispatcher{})

	profile, err := svc.Update(context.Background(), actorFor("u-1", "a@somos.tech"), "u-1", map[string]any{
		"displayName": "  New Name  ",
		"bio":         nil,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.DisplayName != "New Name" {
		t.Errorf("expected trimmed display name persisted, got %q", profile.DisplayName)
	}
	if profile.Bio != nil {
		t.Errorf("expected bio cleared, got %v", profile.Bio)
	}
	if store.upserts != 1 {
		t.Errorf("expected one write, got %d", store.upserts)
	}
}

func TestUpdate_PipelineErrorIndistinguishableFromAllow(t *testing.T) {
	store := newFakeProfileStore()
	store.add(&domain.UserProfile{UserID: "u-1", Email: "a@somos.tech"})
	dispatcher := &capturingDispatcher{}
	svc := newProfileService(store, &stubPipeline{err: errors.New("pipeline down")}, dispatcher)

	profile, err := svc.Update(context.Background(), actorFor("u-1", "a@somos.tech"), "u-1", map[string]any{
		"displayName": "New Name",
	})
	if err != nil {
		t.Fatalf("expected fail-open allow, got %v", err)
	}
	if profile.DisplayName != "New Name" {
		t.Errorf("expected update applied, got %q", profile.DisplayName)
	}
	if len(dispatcher.published) != 0 {
		t.Errorf("expected no review flag on fail-open, got %d", len(dispatcher.published))
	}
}

func TestUpdate_ReviewFlagPublished(t *testing.T) {
	store := newFakeProfileStore()
	store.add(&domain.UserProfile{UserID: "u-1", Email: "a@somos.tech"})
	dispatcher := &capturingDispatcher{}
	pipeline := &stubPipeline{verdict: &moderation.Verdict{
		Allowed:     true,
		NeedsReview: true,
		TierFlow:    []moderation.TierStep{{Tier: "tier2", Action: "flag"}},
	}}
	svc := newProfileService(store, pipeline, dispatcher)

	_, err := svc.Update(context.Background(), actorFor("u-1", "a@somos.tech"), "u-1", map[string]any{
		"bio": "borderline text",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.upserts != 1 {
		t.Errorf("expected mutation persisted, got %d writes", store.upserts)
	}
	if len(dispatcher.published) != 1 {
		t.Fatalf("expected one review flag event, got %d", len(dispatcher.published))
	}

	event := dispatcher.published[0]
	if event.Type != events.EventProfileReviewFlagged {
		t.Errorf("unexpected event type %s", event.Type)
	}
	payload, ok := event.Payload.(events.ProfileReviewFlaggedPayload)
	if !ok {
		t.Fatalf("unexpected payload %T", event.Payload)
	}
	if payload.ContentID != "profile-u-1" || payload.Workflow != "profile" {
		t.Errorf("unexpected payload %+v", payload)
	}
	if payload.Subject != "borderline text" {
		t.Errorf("unexpected subject %q", payload.Subject)
	}
}

func TestUpdate_UnknownUserIs404(t *testing.T) {
	store := newFakeProfileStore()
	svc := newProfileService(store, &stubPipeline{verdict: &moderation.Verdict{Allowed: true}}, &capturingDispatcher{})

	_, err := svc.Update(context.Background(), actorFor("ghost", "ghost@somos.tech"), "ghost", map[string]any{
		"displayName": "Ghost",
	})

	var domainErr *util.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "NOT_FOUND" {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdate_EmailFallbackFindsMigratedProfile(t *testing.T) {
	store := newFakeProfileStore()
	store.add(&domain.UserProfile{UserID: "old-provider-id", Email: "a@somos.tech", DisplayName: "Ada"})
	svc := newProfileService(store, &stubPipeline{verdict: &moderation.Verdict{Allowed: true}}, &capturingDispatcher{})

	profile, err := svc.Update(context.Background(), actorFor("new-provider-id", "A@Somos.Tech"), "new-provider-id", map[string]any{
		"location": "Austin, TX",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.Location != "Austin, TX" {
		t.Errorf("expected location applied, got %q", profile.Location)
	}
}

func TestUpdate_NoTextFieldsSkipsModeration(t *testing.T) {
	store := newFakeProfileStore()
	store.add(&domain.UserProfile{UserID: "u-1", Email: "a@somos.tech", ShowLocation: true})
	pipeline := &stubPipeline{verdict: &moderation.Verdict{Allowed: false}}
	svc := newProfileService(store, pipeline, &capturingDispatcher{})

	profile, err := svc.Update(context.Background(), actorFor("u-1", "a@somos.tech"), "u-1", map[string]any{
		"showLocation": false,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pipeline.calls != 0 {
		t.Errorf("expected no moderation call, got %d", pipeline.calls)
	}
	if profile.ShowLocation {
		t.Error("expected showLocation persisted as false")
	}
}

func TestGet_UnknownUserIs404(t *testing.T) {
	svc := newProfileService(newFakeProfileStore(), &stubPipeline{}, &capturingDispatcher{})

	_, err := svc.Get(context.Background(), "ghost", "")

	var domainErr *util.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "NOT_FOUND" {
		t.Fatalf("expected not found, got %v", err)
	}
}
