package progress

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/dukerupert/pointlog/internal/clock"
	"github.com/dukerupert/pointlog/internal/model"
)

// memTasks is an in-memory TaskRepository.
type memTasks struct {
	nextID  int64
	entries []model.TaskEntry
	err     error

	creates, updates, deletes int
}

func (m *memTasks) Create(_ context.Context, e model.TaskEntry) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.creates++
	m.nextID++
	e.ID = m.nextID
	m.entries = append(m.entries, e)
	return e.ID, nil
}

func (m *memTasks) Update(_ context.Context, e model.TaskEntry) error {
	if m.err != nil {
		return m.err
	}
	m.updates++
	for i := range m.entries {
		if m.entries[i].ID == e.ID {
			m.entries[i] = e
		}
	}
	return nil
}

func (m *memTasks) Delete(_ context.Context, id int64) error {
	if m.err != nil {
		return m.err
	}
	m.deletes++
	for i := range m.entries {
		if m.entries[i].ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memTasks) List(_ context.Context) ([]model.TaskEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]model.TaskEntry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

var testNow = time.Date(2026, 5, 10, 9, 30, 0, 0, time.UTC)

func setupEngine(t *testing.T) (*Engine, *memTasks) {
	t.Helper()
	repo := &memTasks{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEngine(repo, clock.Fixed(testNow), 0, logger), repo
}

func TestAddTaskDatedToday(t *testing.T) {
	e, repo := setupEngine(t)
	ctx := context.Background()

	id, err := e.AddTask(ctx, "Ran 5k", 1.5, "morning")
	if err != nil {
		t.Fatalf("add task: %v", err)
	}
	if id != 1 {
		t.Errorf("id = %d, want 1", id)
	}
	got := repo.entries[0]
	if got.Date != "2026-05-10" {
		t.Errorf("date = %q, want %q", got.Date, "2026-05-10")
	}
	if got.Name != "Ran 5k" || got.Points != 1.5 || got.Note != "morning" {
		t.Errorf("entry = %+v", got)
	}
}

func TestAddTaskAcceptsZeroAndFractional(t *testing.T) {
	e, repo := setupEngine(t)
	ctx := context.Background()

	if _, err := e.AddTask(ctx, "Nothing", 0, ""); err != nil {
		t.Fatalf("add zero: %v", err)
	}
	if _, err := e.AddTask(ctx, "Tiny", 0.01, ""); err != nil {
		t.Fatalf("add fractional: %v", err)
	}
	if len(repo.entries) != 2 {
		t.Errorf("entries = %d, want 2", len(repo.entries))
	}
}

func TestAddTaskStorageError(t *testing.T) {
	e, repo := setupEngine(t)
	repo.err = errors.New("disk full")

	_, err := e.AddTask(context.Background(), "x", 1, "")
	var se *StorageError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StorageError", err)
	}
	if !strings.Contains(se.Error(), "disk full") {
		t.Errorf("error = %q, want underlying cause", se.Error())
	}
}

func TestTotalPointsEqualsSumOfAdds(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()

	points := []float64{0.2, 0.2, 0.1, 5, 2.5, 0.333}
	var want float64
	for _, p := range points {
		want += p
		e.AddTask(ctx, "t", p, "")
	}
	want = round2(want)

	if got := e.TotalPoints(ctx); got != want {
		t.Errorf("total = %v, want %v", got, want)
	}
}

func TestTotalPointsStorageFailureIsZero(t *testing.T) {
	e, repo := setupEngine(t)
	e.AddTask(context.Background(), "t", 3, "")
	repo.err = errors.New("connection reset")

	if got := e.TotalPoints(context.Background()); got != 0 {
		t.Errorf("total = %v, want 0", got)
	}
	if got := e.PointsPerDay(context.Background()); len(got) != 0 {
		t.Errorf("per day = %v, want empty", got)
	}
	if got := e.StreakDays(context.Background()); got != 0 {
		t.Errorf("streak = %d, want 0", got)
	}
}

func TestAddPredefinedEveryCatalogEntry(t *testing.T) {
	e, repo := setupEngine(t)
	ctx := context.Background()

	for _, p := range Catalog() {
		if _, err := e.AddPredefined(ctx, p.Name, ""); err != nil {
			t.Fatalf("add %q: %v", p.Name, err)
		}
		last := repo.entries[len(repo.entries)-1]
		if last.Name != p.Name {
			t.Errorf("name = %q, want %q", last.Name, p.Name)
		}
		if last.Points != p.Points {
			t.Errorf("%q points = %v, want %v", p.Name, last.Points, p.Points)
		}
	}
}

func TestAddPredefinedUnknown(t *testing.T) {
	e, repo := setupEngine(t)

	_, err := e.AddPredefined(context.Background(), "nonexistent", "")
	var ue *UnknownTaskError
	if !errors.As(err, &ue) {
		t.Fatalf("err = %v, want *UnknownTaskError", err)
	}
	if ue.Name != "nonexistent" {
		t.Errorf("name = %q, want %q", ue.Name, "nonexistent")
	}
	if repo.creates != 0 {
		t.Errorf("creates = %d, want 0", repo.creates)
	}
}

func TestAddInvestment(t *testing.T) {
	e, repo := setupEngine(t)

	if _, err := e.AddInvestment(context.Background(), 2500, "ETF"); err != nil {
		t.Fatalf("add investment: %v", err)
	}
	got := repo.entries[0]
	if got.Points != 2.5 {
		t.Errorf("points = %v, want 2.5", got.Points)
	}
	i := strings.Index(got.Name, "2.500")
	if i < 0 {
		t.Fatalf("name = %q, want grouped amount", got.Name)
	}
	if !strings.Contains(got.Name[i:], "€") {
		t.Errorf("name = %q, want € after amount", got.Name)
	}
	if got.Note != "ETF" {
		t.Errorf("note = %q, want %q", got.Note, "ETF")
	}
}

func TestInvestmentLabel(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{2500, "Invested in stocks 2.500 €"},
		{999, "Invested in stocks 999 €"},
		{10000, "Invested in stocks 10.000 €"},
		{1234567, "Invested in stocks 1.234.567 €"},
		{1500.4, "Invested in stocks 1.500 €"},
	}
	for _, tt := range tests {
		if got := InvestmentLabel(tt.amount); got != tt.want {
			t.Errorf("InvestmentLabel(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestAddDaily(t *testing.T) {
	e, repo := setupEngine(t)

	e.AddDaily(context.Background(), "read 10 pages")
	got := repo.entries[0]
	if got.Name != DailyTaskName || got.Points != DailyTaskPoints {
		t.Errorf("entry = %+v, want daily task", got)
	}
}

func TestDeleteTaskMissingIsNoop(t *testing.T) {
	e, _ := setupEngine(t)
	if err := e.DeleteTask(context.Background(), 42); err != nil {
		t.Errorf("delete missing: %v", err)
	}
}

func TestListTasksAscending(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()
	e.AddTask(ctx, "a", 1, "")
	e.AddTask(ctx, "b", 1, "")
	e.AddTask(ctx, "c", 1, "")

	tasks := e.ListTasks(ctx)
	for i := 1; i < len(tasks); i++ {
		if tasks[i-1].ID >= tasks[i].ID {
			t.Errorf("tasks not ascending at %d: %d >= %d", i, tasks[i-1].ID, tasks[i].ID)
		}
	}
}

func TestStatsSummary(t *testing.T) {
	e, repo := setupEngine(t)
	repo.entries = []model.TaskEntry{
		{ID: 1, Date: "2026-05-08", Points: 400},
		{ID: 2, Date: "2026-05-09", Points: 400},
		{ID: 3, Date: "2026-05-10", Points: 400},
	}
	repo.nextID = 3

	s := e.Stats(context.Background())
	if s.Total != 1200 {
		t.Errorf("total = %v, want 1200", s.Total)
	}
	if s.Progress != 1 {
		t.Errorf("progress = %v, want capped at 1", s.Progress)
	}
	if s.Streak != 3 {
		t.Errorf("streak = %d, want 3", s.Streak)
	}
	if s.Calendar[4][9] != 1 {
		t.Errorf("calendar[May][10] = %d, want 1", s.Calendar[4][9])
	}
}
