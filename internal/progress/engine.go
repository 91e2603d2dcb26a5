package progress

import (
	"context"
	"log/slog"

	"github.com/dukerupert/pointlog/internal/clock"
	"github.com/dukerupert/pointlog/internal/model"
)

// TaskRepository is the ledger storage the engine runs against. List must
// return entries in ascending id order.
type TaskRepository interface {
	Create(ctx context.Context, entry model.TaskEntry) (int64, error)
	Update(ctx context.Context, entry model.TaskEntry) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]model.TaskEntry, error)
}

// Engine derives point values and statistics from the task ledger.
type Engine struct {
	tasks  TaskRepository
	clock  *clock.Clock
	goal   float64
	logger *slog.Logger
}

func NewEngine(tasks TaskRepository, clk *clock.Clock, goal float64, logger *slog.Logger) *Engine {
	if goal <= 0 {
		goal = DefaultGoal
	}
	return &Engine{tasks: tasks, clock: clk, goal: goal, logger: logger}
}

// AddTask records an entry dated today.
func (e *Engine) AddTask(ctx context.Context, name string, points float64, note string) (int64, error) {
	id, err := e.tasks.Create(ctx, model.TaskEntry{
		Date:   e.clock.Today(),
		Name:   name,
		Points: points,
		Note:   note,
	})
	if err != nil {
		e.logger.Error("add task", "name", name, "points", points, "error", err)
		return 0, &StorageError{Op: "add task", Err: err}
	}
	return id, nil
}

// AddDaily records a manually logged daily task.
func (e *Engine) AddDaily(ctx context.Context, note string) (int64, error) {
	return e.AddTask(ctx, DailyTaskName, DailyTaskPoints, note)
}

func (e *Engine) AddPredefined(ctx context.Context, name, note string) (int64, error) {
	points, ok := LookupPredefined(name)
	if !ok {
		return 0, &UnknownTaskError{Name: name}
	}
	return e.AddTask(ctx, name, points, note)
}

// AddInvestment awards one point per EURPerPoint invested.
func (e *Engine) AddInvestment(ctx context.Context, amountEUR float64, note string) (int64, error) {
	return e.AddTask(ctx, InvestmentLabel(amountEUR), amountEUR/EURPerPoint, note)
}

// DailyEntry builds the entry awarded for completing a to-do.
func (e *Engine) DailyEntry(note string) model.TaskEntry {
	return model.TaskEntry{
		Date:   e.clock.Today(),
		Name:   DailyTaskName,
		Points: DailyTaskPoints,
		Note:   note,
	}
}

// DeleteTask removes an entry. Unknown ids are not an error.
func (e *Engine) DeleteTask(ctx context.Context, id int64) error {
	if err := e.tasks.Delete(ctx, id); err != nil {
		e.logger.Error("delete task", "id", id, "error", err)
		return &StorageError{Op: "delete task", Err: err}
	}
	return nil
}

// ListTasks returns the ledger in ascending id order, or nothing if the
// store cannot be read.
func (e *Engine) ListTasks(ctx context.Context) []model.TaskEntry {
	entries, err := e.tasks.List(ctx)
	if err != nil {
		e.logger.Error("list tasks", "error", err)
		return nil
	}
	return entries
}

// TotalPoints returns the ledger sum rounded to cents, 0 on store failure.
func (e *Engine) TotalPoints(ctx context.Context) float64 {
	return SumPoints(e.ListTasks(ctx))
}

// PointsPerDay returns per-day sums in ascending date order.
func (e *Engine) PointsPerDay(ctx context.Context) []DayPoints {
	return GroupByDay(e.ListTasks(ctx))
}

// StreakDays returns the length of the run of consecutive active days
// ending at the most recent active day.
func (e *Engine) StreakDays(ctx context.Context) int {
	return Streak(e.PointsPerDay(ctx))
}

// Stats computes every statistic from a single ledger read.
func (e *Engine) Stats(ctx context.Context) Summary {
	return Summarize(e.ListTasks(ctx), e.goal)
}

func (e *Engine) Goal() float64 {
	return e.goal
}

func (e *Engine) Today() string {
	return e.clock.Today()
}
