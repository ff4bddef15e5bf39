package main

import (
	"strings"

	"farmsim-backend/internal/activity"
	"farmsim-backend/internal/animal"
	"farmsim-backend/internal/auth"
	"farmsim-backend/internal/calendar"
	"farmsim-backend/internal/config"
	"farmsim-backend/internal/dashboard"
	"farmsim-backend/internal/equipment"
	"farmsim-backend/internal/farm"
	"farmsim-backend/internal/field"
	"farmsim-backend/internal/finance"
	"farmsim-backend/internal/gameimport"
	"farmsim-backend/internal/httpx"
	"farmsim-backend/internal/seed"
	"farmsim-backend/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type services struct {
	access    *auth.FarmAccess
	accounts  *auth.Accounts
	activity  *activity.Log
	calendar  *calendar.Service
	farms     *farm.Service
	fields    *field.Service
	storage   *storage.Ledger
	finance   *finance.Service
	equipment *equipment.Service
	animals   *animal.Service
	dashboard *dashboard.Service
	imports   *gameimport.Service
	seeder    *seed.Seeder
}

func newServices(db *gorm.DB, log logrus.FieldLogger) *services {
	s := &services{
		access:    auth.NewFarmAccess(db),
		accounts:  auth.NewAccounts(db),
		activity:  activity.NewLog(db, log),
		calendar:  calendar.NewService(db),
		storage:   storage.NewLedger(db, log),
		finance:   finance.NewService(db),
		dashboard: dashboard.NewService(db),
	}
	s.farms = farm.NewService(db, s.calendar, s.activity, log)
	s.fields = field.NewService(db, s.access, s.storage, s.activity, log)
	s.equipment = equipment.NewService(db, s.access, s.activity)
	s.animals = animal.NewService(db, s.activity)
	s.imports = gameimport.NewService(db, s.fields, s.equipment, s.activity, log)
	s.seeder = seed.NewSeeder(db, s.accounts, s.farms, s.fields, s.equipment, s.storage, log)
	return s
}

func newApp(cfg *config.Config, log logrus.FieldLogger, svc *services) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: httpx.ErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.Origins(), ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	api := app.Group("/api")
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Public auth
	api.Post("/auth/register", auth.RegisterHandler(cfg, svc.accounts))
	api.Post("/auth/login", auth.LoginHandler(cfg, svc.accounts))

	protected := api.Group("", auth.JWTMiddleware(cfg))
	protected.Get("/auth/me", auth.MeHandler(svc.accounts))
	protected.Delete("/auth/account", auth.DeleteAccountHandler(svc.accounts))

	// Farm list and joining come before the membership group; joining is
	// how a user becomes a member.
	protected.Get("/farms", farm.ListHandler(svc.farms))
	protected.Post("/farms", farm.CreateHandler(svc.farms))
	protected.Post("/farms/join", farm.JoinByCodeHandler(svc.farms))
	protected.Post("/farms/:farmId/join", farm.JoinFarmHandler(svc.farms))

	// Field and equipment routes keyed by row id resolve the farm in the
	// service.
	protected.Patch("/fields/:id", field.UpdateHandler(svc.fields))
	protected.Patch("/fields/:id/production", field.UpdateProductionHandler(svc.fields))
	protected.Get("/fields/:id/history", field.HistoryHandler(svc.fields))
	protected.Get("/fields/:id/recommendations", field.RecommendationsHandler(svc.fields))
	protected.Patch("/equipment/:id", equipment.UpdateHandler(svc.equipment))
	protected.Post("/equipment/:id/sell", equipment.SellHandler(svc.equipment))

	member := protected.Group("/farms/:farmId", auth.RequireFarmMember(svc.access))
	editor := auth.RequireEditor()
	owner := auth.RequireOwner()

	// Farm
	member.Get("", farm.GetHandler(svc.farms))
	member.Get("/role", farm.RoleHandler())
	member.Patch("", owner, farm.UpdateHandler(svc.farms))
	member.Delete("", owner, farm.DeleteHandler(svc.farms))
	member.Get("/members", farm.MembersHandler(svc.farms))
	member.Patch("/members/:memberId", owner, farm.ChangeRoleHandler(svc.farms))
	member.Delete("/members/:memberId", owner, farm.RemoveMemberHandler(svc.farms))
	member.Get("/codes", owner, farm.ListCodesHandler(svc.farms))
	member.Post("/codes", owner, farm.CreateCodeHandler(svc.farms))

	// Calendar
	member.Post("/date/advance", editor, farm.StepDateHandler(svc.farms, farm.MoveAdvance))
	member.Post("/date/retreat", editor, farm.StepDateHandler(svc.farms, farm.MoveRetreat))
	member.Put("/date", owner, farm.JumpDateHandler(svc.farms))

	// Fields
	member.Get("/fields", field.ListHandler(svc.fields))
	member.Post("/fields", editor, field.CreateHandler(svc.fields))
	member.Patch("/fields/bulk", editor, field.BulkUpdateHandler(svc.fields))

	// Storage
	member.Get("/storage", storage.ListHandler(svc.storage))
	member.Get("/storage/:cropName", storage.GetHandler(svc.storage))
	member.Post("/storage", editor, storage.AddHandler(svc.storage, svc.activity))
	member.Patch("/storage/:cropName", editor, storage.SellHandler(svc.storage, svc.activity))
	member.Delete("/storage/:cropName", editor, storage.DeleteHandler(svc.storage, svc.activity))

	// Finances
	member.Get("/finances", finance.ListHandler(svc.finance))
	member.Post("/finances", editor, finance.CreateHandler(svc.finance))
	member.Get("/finances/summary", finance.SummaryHandler(svc.finance, svc.calendar))
	member.Get("/finances/export", finance.ExportHandler(svc.finance))

	// Equipment
	member.Get("/equipment", equipment.ListHandler(svc.equipment))
	member.Get("/equipment/brands", equipment.BrandsHandler(svc.equipment))
	member.Post("/equipment", editor, equipment.CreateHandler(svc.equipment))

	// Animals
	member.Get("/animals", animal.ListHandler(svc.animals))
	member.Post("/animals", editor, animal.CreateHandler(svc.animals))
	member.Patch("/animals/:id", editor, animal.UpdateHandler(svc.animals))
	member.Delete("/animals/:id", editor, animal.DeleteHandler(svc.animals))

	// Game import
	member.Post("/import", editor, gameimport.ImportHandler(svc.imports))
	member.Get("/import/status", gameimport.StatusHandler(svc.imports))

	// Activity and dashboard
	member.Get("/activity", activity.ListHandler(svc.activity))
	member.Get("/dashboard", dashboard.OverviewHandler(svc.dashboard))
	member.Get("/dashboard/finance-chart", dashboard.FinanceChartHandler(svc.dashboard))

	return app
}
