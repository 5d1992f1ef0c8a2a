package bootstrap

import (
	"github.com/yuqie6/planly/internal/eventbus"
	"github.com/yuqie6/planly/internal/pkg/config"
	"github.com/yuqie6/planly/internal/repository"
	"github.com/yuqie6/planly/internal/scheduler"
	"github.com/yuqie6/planly/internal/service"
)

// Core 持有全部核心依赖
type Core struct {
	Cfg *config.Config
	DB  *repository.Database
	Hub *eventbus.Hub

	Repos struct {
		Habit    *repository.HabitRepository
		Todo     *repository.TodoRepository
		Stats    *repository.StatsRepository
		Category *repository.CategoryRepository
		User     *repository.UserRepository
	}

	Services struct {
		Habits     *service.HabitService
		Todos      *service.TodoService
		Stats      *service.StatsService
		Dashboard  *service.DashboardService
		Categories *service.CategoryService
	}

	MissedDayScanner *scheduler.MissedDayScanner
}

// NewCore 构建核心依赖（不启动 HTTP 和定时任务）
func NewCore(cfgPath string) (*Core, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	config.SetupLogger(cfg.App.LogLevel)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := repository.NewDatabase(cfg.Storage.DBPath)
	if err != nil {
		return nil, err
	}

	c := &Core{Cfg: cfg, DB: db, Hub: eventbus.NewHub()}

	// Repos
	c.Repos.Habit = repository.NewHabitRepository(db.DB)
	c.Repos.Todo = repository.NewTodoRepository(db.DB)
	c.Repos.Stats = repository.NewStatsRepository(db.DB)
	c.Repos.Category = repository.NewCategoryRepository(db.DB)
	c.Repos.User = repository.NewUserRepository(db.DB)

	// Services
	c.Services.Todos = service.NewTodoService(c.Repos.Habit, c.Repos.Todo)
	c.Services.Stats = service.NewStatsService(c.Repos.Stats, c.Repos.Habit, c.Repos.Todo, c.Services.Todos, c.Hub, loc)
	c.Services.Habits = service.NewHabitService(c.Repos.Habit, c.Repos.Category, c.Services.Stats)
	c.Services.Categories = service.NewCategoryService(c.Repos.Category)
	c.Services.Dashboard = service.NewDashboardService(c.Repos.Stats, c.Repos.Habit, c.Repos.Todo, c.Services.Todos, loc)

	c.MissedDayScanner = scheduler.NewMissedDayScanner(c.Repos.User, c.Services.Todos, c.Repos.Todo, c.Services.Stats, loc)

	return c, nil
}

// Close 关闭核心依赖资源
func (c *Core) Close() error {
	if c == nil {
		return nil
	}
	if c.MissedDayScanner != nil {
		_ = c.MissedDayScanner.Stop()
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
