/*
Package storage provides tests for the storage layer.
*/
package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/khanglvm/orbit/internal/domain"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	storage, err := Open(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { storage.Close() })
	return storage
}

func testVector(x float64) []float64 {
	v := make([]float64, domain.Dimensions)
	for i := range v {
		v[i] = x
	}
	return v
}

// TestInit verifies database initialization and schema creation.
func TestInit(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	storage := NewStorage(dbPath, nil)
	if err := storage.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer storage.Close()

	// Verify database file exists
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file not created")
	}

	version, err := storage.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("Expected schema version %d, got %d", len(migrations), version)
	}

	// Second Init is a no-op
	if err := storage.Init(); err != nil {
		t.Errorf("second Init failed: %v", err)
	}
}

// TestMigrationsAreIdempotent verifies reopening does not reapply migrations.
func TestMigrationsAreIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	first, err := Open(dbPath, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	first.Close()

	second, err := Open(dbPath, nil)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer second.Close()

	version, err := second.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("Expected schema version %d, got %d", len(migrations), version)
	}
}

// TestUninitialized verifies operations fail cleanly before Init.
func TestUninitialized(t *testing.T) {
	storage := NewStorage(filepath.Join(t.TempDir(), "test.db"), nil)

	if _, err := storage.ListQuestions(context.Background()); err == nil {
		t.Error("ListQuestions should fail before Init")
	}
	if err := storage.Close(); err != nil {
		t.Errorf("Close on uninitialized storage should be nil, got %v", err)
	}
}

// TestQuestionCatalog verifies insert-if-absent and catalog order.
func TestQuestionCatalog(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	questions := []domain.Question{
		{ID: "q10", Text: "Ten", Type: domain.QuestionSlider},
		{ID: "q2", Text: "Two", Type: domain.QuestionMultipleChoice, Options: []any{"a", "b"}, Targets: []int{0, 3}, InfoWeight: []float64{0.4, 0.6}},
		{ID: "qx", Text: "Free", Type: domain.QuestionFreeText, Locale: "de", Difficulty: 2.5},
	}
	for _, q := range questions {
		inserted, err := storage.InsertQuestion(ctx, q)
		if err != nil {
			t.Fatalf("InsertQuestion(%s) failed: %v", q.ID, err)
		}
		if !inserted {
			t.Errorf("InsertQuestion(%s) reported no insert", q.ID)
		}
	}

	// Existing ids are skipped, not overwritten
	inserted, err := storage.InsertQuestion(ctx, domain.Question{ID: "q2", Text: "changed", Type: domain.QuestionLikert})
	if err != nil {
		t.Fatalf("InsertQuestion duplicate failed: %v", err)
	}
	if inserted {
		t.Error("duplicate InsertQuestion should not insert")
	}

	got, err := storage.ListQuestions(ctx)
	if err != nil {
		t.Fatalf("ListQuestions failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 questions, got %d", len(got))
	}
	for i, want := range []string{"q10", "q2", "qx"} {
		if got[i].ID != want {
			t.Errorf("question %d: expected %s, got %s", i, want, got[i].ID)
		}
	}

	q2 := got[1]
	if q2.Text != "Two" || len(q2.Options) != 2 || q2.Options[0] != "a" {
		t.Errorf("q2 not stored as inserted: %+v", q2)
	}
	if len(q2.Targets) != 2 || q2.Targets[1] != 3 {
		t.Errorf("q2 targets = %v", q2.Targets)
	}
	if q2.Difficulty != 1.0 || q2.Locale != "en" {
		t.Errorf("q2 defaults = %v/%q", q2.Difficulty, q2.Locale)
	}
	if got[2].Locale != "de" || got[2].Difficulty != 2.5 {
		t.Errorf("qx metadata = %v/%q", got[2].Difficulty, got[2].Locale)
	}
	if got[0].Options != nil {
		t.Errorf("q10 options should be nil, got %v", got[0].Options)
	}

	one, err := storage.GetQuestion(ctx, "qx")
	if err != nil {
		t.Fatalf("GetQuestion failed: %v", err)
	}
	if one.Type != domain.QuestionFreeText {
		t.Errorf("Expected free_text, got %s", one.Type)
	}

	if _, err := storage.GetQuestion(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

// TestArchetypes verifies archetype round trip and validation.
func TestArchetypes(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	a := domain.Archetype{
		ID:                "climber",
		Name:              "Climber",
		Vector:            testVector(0.7),
		MinRequirements:   map[int]float64{1: 0.6},
		Contraindications: map[int]float64{9: 0.2},
		Resources:         map[string]any{"description": "Bouldering and sport climbing"},
	}
	if _, err := storage.InsertArchetype(ctx, a); err != nil {
		t.Fatalf("InsertArchetype failed: %v", err)
	}
	if _, err := storage.InsertArchetype(ctx, domain.Archetype{ID: "bad", Name: "Bad", Vector: []float64{1}}); err == nil {
		t.Error("InsertArchetype should reject short vectors")
	}

	got, err := storage.ListArchetypes(ctx)
	if err != nil {
		t.Fatalf("ListArchetypes failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 archetype, got %d", len(got))
	}
	if got[0].MinRequirements[1] != 0.6 || got[0].Contraindications[9] != 0.2 {
		t.Errorf("constraints not preserved: %+v", got[0])
	}
	if got[0].Resources["description"] != "Bouldering and sport climbing" {
		t.Errorf("resources not preserved: %v", got[0].Resources)
	}
	if len(got[0].Vector) != domain.Dimensions || got[0].Vector[4] != 0.7 {
		t.Errorf("vector not preserved: %v", got[0].Vector)
	}
}

// TestSessionLifecycle verifies session persistence and progress writes.
func TestSessionLifecycle(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	if _, err := storage.InsertQuestion(ctx, domain.Question{ID: "q1", Text: "One", Type: domain.QuestionLikert}); err != nil {
		t.Fatalf("InsertQuestion failed: %v", err)
	}

	userID, err := storage.CreateUser(ctx)
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	created := time.Date(2025, 1, 2, 3, 4, 5, 678, time.UTC)
	session := domain.Session{
		ID:        "s-1",
		UserID:    userID,
		Status:    domain.StatusActive,
		CreatedAt: created,
		UpdatedAt: created,
	}
	if err := storage.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	loaded, err := storage.GetSession(ctx, "s-1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if loaded.UserID != userID || loaded.Status != domain.StatusActive {
		t.Errorf("unexpected session: %+v", loaded)
	}
	if !loaded.CreatedAt.Equal(created) {
		t.Errorf("created_at lost precision: %v vs %v", loaded.CreatedAt, created)
	}
	if loaded.AnsweredIDs == nil || len(loaded.AnsweredIDs) != 0 {
		t.Errorf("Expected empty answered set, got %v", loaded.AnsweredIDs)
	}
	if loaded.CompletedAt != nil {
		t.Errorf("Expected nil completed_at, got %v", loaded.CompletedAt)
	}

	latency := int64(1200)
	answeredAt := created.Add(time.Minute)
	loaded.AnsweredIDs = append(loaded.AnsweredIDs, "q1")
	loaded.Complete(domain.ReasonNoMoreQuestions, answeredAt)
	resp := &domain.Response{
		ID:         "r-1",
		SessionID:  "s-1",
		QuestionID: "q1",
		Answer:     domain.FloatAnswer(4),
		LatencyMS:  &latency,
		Timestamp:  answeredAt,
	}
	if err := storage.SaveProgress(ctx, loaded, resp); err != nil {
		t.Fatalf("SaveProgress failed: %v", err)
	}

	final, err := storage.GetSession(ctx, "s-1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if final.Status != domain.StatusCompleted || final.Reason != domain.ReasonNoMoreQuestions {
		t.Errorf("unexpected final state: %s/%s", final.Status, final.Reason)
	}
	if final.CompletedAt == nil || !final.CompletedAt.Equal(answeredAt) {
		t.Errorf("unexpected completed_at: %v", final.CompletedAt)
	}
	if len(final.AnsweredIDs) != 1 || final.AnsweredIDs[0] != "q1" {
		t.Errorf("unexpected answered ids: %v", final.AnsweredIDs)
	}

	responses, err := storage.ListResponses(ctx, "s-1")
	if err != nil {
		t.Fatalf("ListResponses failed: %v", err)
	}
	if len(responses) != 1 {
		t.Fatalf("Expected 1 response, got %d", len(responses))
	}
	// float kind survives even though 4.0 encodes as a JSON integer
	if responses[0].Answer.Kind() != domain.AnswerFloat {
		t.Errorf("Expected float answer, got %s", responses[0].Answer.Kind())
	}
	if responses[0].LatencyMS == nil || *responses[0].LatencyMS != latency {
		t.Errorf("latency not preserved: %v", responses[0].LatencyMS)
	}

	if _, err := storage.GetSession(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := storage.SaveProgress(ctx, domain.Session{ID: "missing", Status: domain.StatusActive}, nil); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing session, got %v", err)
	}
}

// TestSaveProgressRollsBack verifies a failed response insert leaves the session unchanged.
func TestSaveProgressRollsBack(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	now := time.Now().UTC()
	if err := storage.CreateSession(ctx, domain.Session{ID: "s-1", Status: domain.StatusActive, CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	session := domain.Session{ID: "s-1", AnsweredIDs: []string{"ghost"}, Status: domain.StatusActive, CreatedAt: now, UpdatedAt: now}
	resp := &domain.Response{ID: "r-1", SessionID: "s-1", QuestionID: "ghost", Answer: domain.StringAnswer("x"), Timestamp: now}

	// question "ghost" does not exist, so the foreign key rejects the response
	if err := storage.SaveProgress(ctx, session, resp); err == nil {
		t.Fatal("SaveProgress should fail on unknown question")
	}

	loaded, err := storage.GetSession(ctx, "s-1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if len(loaded.AnsweredIDs) != 0 {
		t.Errorf("session was modified despite rollback: %v", loaded.AnsweredIDs)
	}
}

// TestMatchReportIsCreatedOnce verifies the one-report-per-session rule.
func TestMatchReportIsCreatedOnce(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	now := time.Now().UTC()
	if err := storage.CreateSession(ctx, domain.Session{ID: "s-1", Status: domain.StatusCompleted, CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if _, err := storage.GetMatchReport(ctx, "s-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound before creation, got %v", err)
	}

	first := domain.MatchReport{
		ID:        "m-1",
		SessionID: "s-1",
		Recommendations: []domain.Recommendation{
			{Rank: 1, ArchetypeID: "a", Name: "A", FitScore: 0.9486832980505138, Explanation: "Matches social preference (0.5)"},
		},
		CreatedAt: now,
	}
	stored, err := storage.CreateMatchReport(ctx, first)
	if err != nil {
		t.Fatalf("CreateMatchReport failed: %v", err)
	}
	if stored.ID != "m-1" || stored.Confidence != nil {
		t.Errorf("unexpected stored report: %+v", stored)
	}

	second := first
	second.ID = "m-2"
	second.Recommendations = nil
	again, err := storage.CreateMatchReport(ctx, second)
	if err != nil {
		t.Fatalf("second CreateMatchReport failed: %v", err)
	}
	if again.ID != "m-1" || len(again.Recommendations) != 1 {
		t.Errorf("second create should return the original report, got %+v", again)
	}
	if again.Recommendations[0].FitScore != first.Recommendations[0].FitScore {
		t.Errorf("fit score changed: %v", again.Recommendations[0].FitScore)
	}
}
