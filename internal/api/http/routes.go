package httpapi

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/airaware/internal/airquality"
	"github.com/i474232898/airaware/internal/pipeline"
	"github.com/i474232898/airaware/internal/session"
)

var validate = validator.New()

// NewApp builds the Fiber app serving the presentation API for orch. gatherer
// backs /metrics and may be nil.
func NewApp(orch *pipeline.Orchestrator, gatherer prometheus.Gatherer) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "airaware",
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          ErrorHandler,
	})

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "airaware",
		})
	})

	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	RegisterRoutes(app, orch)
	return app
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, orch *pipeline.Orchestrator) {
	v1 := app.Group("/api/v1")

	v1.Get("/air", func(c *fiber.Ctx) error {
		q := searchQuery{City: c.Query("city")}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		report, err := orch.Search(c.UserContext(), q.City)
		if err != nil {
			return requestError(err)
		}
		return c.JSON(report)
	})

	v1.Post("/air/locate", func(c *fiber.Ctx) error {
		var req locateRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
			}
		}
		if err := req.check(); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		report, err := orch.UseGeolocationWith(c.UserContext(), req.geolocator())
		if err != nil {
			return requestError(err)
		}
		return c.JSON(report)
	})

	v1.Get("/air/current", func(c *fiber.Ctx) error {
		report, ok := orch.Current()
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no air quality loaded yet")
		}
		return c.JSON(report)
	})

	v1.Get("/rankings", func(c *fiber.Ctx) error {
		ranked, err := orch.Rankings(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "could not load city rankings")
		}
		return c.JSON(fiber.Map{"cities": ranked})
	})

	v1.Get("/exercises", func(c *fiber.Ctx) error {
		return c.JSON(exercisesResponse{View: orch.Exercises()})
	})

	v1.Post("/exercises/reset", func(c *fiber.Ctx) error {
		view, err := orch.ResetExercises(c.UserContext())
		return exercisesReply(c, view, err)
	})

	v1.Post("/exercises/:id/toggle", func(c *fiber.Ctx) error {
		view, err := orch.ToggleExercise(c.UserContext(), c.Params("id"))
		return exercisesReply(c, view, err)
	})

	v1.Put("/exercises/category", func(c *fiber.Ctx) error {
		var req categoryRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		view, err := orch.SelectCategory(c.UserContext(), req.Category)
		if errors.Is(err, pipeline.ErrUnknownCategory) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return exercisesReply(c, view, err)
	})
}

// searchQuery holds the city search parameter. Blank queries reach the
// resolver, which reports them as not found.
type searchQuery struct {
	City string `validate:"max=120"`
}

// locateRequest carries an optional device position. Both coordinates or
// neither must be given.
type locateRequest struct {
	Lat *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lon *float64 `json:"lon" validate:"omitempty,gte=-180,lte=180"`
}

func (r locateRequest) check() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	if (r.Lat == nil) != (r.Lon == nil) {
		return errors.New("lat and lon must be given together")
	}
	return nil
}

func (r locateRequest) geolocator() pipeline.Geolocator {
	if r.Lat == nil || r.Lon == nil {
		return nil
	}
	return pipeline.StaticGeolocator(airquality.Coordinates{Latitude: *r.Lat, Longitude: *r.Lon})
}

type categoryRequest struct {
	Category string `json:"category" validate:"required"`
}

type exercisesResponse struct {
	session.View
	Warning string `json:"warning,omitempty"`
}

// exercisesReply renders the checklist. A persistence failure is not fatal:
// the in-memory change stands and the client gets a warning.
func exercisesReply(c *fiber.Ctx, view session.View, err error) error {
	resp := exercisesResponse{View: view}
	if err != nil {
		var pe *session.PersistError
		if !errors.As(err, &pe) {
			return err
		}
		resp.Warning = "progress could not be saved"
	}
	return c.JSON(resp)
}

// requestError maps a failed request cycle onto an HTTP status. The message
// is always the generic one.
func requestError(err error) error {
	if errors.Is(err, pipeline.ErrSuperseded) {
		return fiber.NewError(fiber.StatusConflict, pipeline.FailureMessage)
	}

	var nf *airquality.NotFoundError
	if errors.As(err, &nf) {
		return fiber.NewError(fiber.StatusNotFound, pipeline.FailureMessage)
	}
	return fiber.NewError(fiber.StatusBadGateway, pipeline.FailureMessage)
}
