// Package backup serves the database backup api.
package backup

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/shopadmin/shop-admin/internal/auth"
	"github.com/shopadmin/shop-admin/internal/backup"
	"github.com/shopadmin/shop-admin/internal/db/models"
	"github.com/shopadmin/shop-admin/internal/web/handler"
)

// Path is the prefix of the backup routes.
const Path = handler.APIPrefix + "/database-backup"

// Service is the backup handler service.
type Service struct {
	backups   *backup.Service
	scheduler *backup.Scheduler
}

// Handler is the backup handler.
var Handler = Service{}

var codes = map[error]int{ //nolint:gochecknoglobals
	backup.ErrNoIDs:    fiber.StatusBadRequest,
	backup.ErrNotFound: fiber.StatusNotFound,
}

// Init registers the backup routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.Backups == nil || deps.Scheduler == nil {
		return handler.ErrNilDeps
	}

	s.backups = deps.Backups
	s.scheduler = deps.Scheduler

	guard := deps.RequireAuth()
	manage := auth.RequirePermission(auth.PermBackupManage)

	r := app.Group(Path)

	r.Get(handler.RootPath, guard, manage, s.List)
	r.Post(handler.RootPath, guard, manage, s.Create)
	r.Delete("/permanent", guard, manage, s.Delete)
	r.Get("/schedule", guard, manage, s.Schedule)

	return nil
}

// List pages through the recorded backups.
func (s *Service) List(c fiber.Ctx) error {
	p := handler.Paginate(c)

	list, total, totalData, err := s.backups.List(c.Context(), backup.ListOptions{
		Skip:   p.Skip,
		Limit:  p.Limit,
		Search: c.Query("search"),
	})
	if err != nil {
		return err
	}

	return handler.List(c, list, total, p, fiber.Map{"totalData": totalData})
}

// Create runs a backup and waits for it.
func (s *Service) Create(c fiber.Ctx) error {
	b, err := s.backups.Run(c.Context(), models.TriggerManual)
	if err != nil {
		log.Error().Err(err).Msg("manual backup failed")

		return fiber.NewError(fiber.StatusInternalServerError, "Backup failed")
	}

	return handler.Message(c, fiber.StatusCreated, "Backup created", fiber.Map{"data": b})
}

// Delete removes backups and their files.
func (s *Service) Delete(c fiber.Ctx) error {
	var in handler.IDs
	if err := handler.Bind(c, &in); err != nil {
		return err
	}

	n, err := s.backups.Delete(c.Context(), in.IDs)
	if err != nil {
		return handler.Status(err, codes)
	}

	return handler.Message(c, fiber.StatusOK, "Backups deleted successfully", fiber.Map{"count": n})
}

// Schedule shows the active backup job.
func (s *Service) Schedule(c fiber.Ctx) error {
	return handler.Data(c, fiber.StatusOK, s.scheduler.Current())
}
