package catalog

import (
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"

	auth "github.com/goliatone/go-loan-auth"
)

// Controller exposes the catalog routes. Responses use a "success" flag.
type Controller struct {
	service *Service
	// Protected guards the write routes when set.
	Protected fiber.Handler
	Logger    auth.Logger
}

// NewController returns a Controller for service.
func NewController(service *Service, protected fiber.Handler) *Controller {
	if service == nil {
		panic("Missing catalog Service in catalog controller...")
	}
	return &Controller{service: service, Protected: protected, Logger: service.logger}
}

// RegisterRoutes mounts /admin and /adminCat routes on r.
func (ctrl *Controller) RegisterRoutes(r fiber.Router) {
	loans := r.Group("/admin")
	loans.Post("/addloan", ctrl.guard(ctrl.AddLoan)...).Name("catalog.loan.add")
	loans.Get("/getloans", ctrl.ListLoans).Name("catalog.loan.list")

	categories := r.Group("/adminCat")
	categories.Post("/addCategory", ctrl.guard(ctrl.AddCategory)...).Name("catalog.category.add")
	categories.Get("/getCategory", ctrl.ListCategories).Name("catalog.category.list")
}

func (ctrl *Controller) guard(h fiber.Handler) []fiber.Handler {
	if ctrl.Protected == nil {
		return []fiber.Handler{h}
	}
	return []fiber.Handler{ctrl.Protected, h}
}

func (ctrl *Controller) AddLoan(c *fiber.Ctx) error {
	payload := AddLoanMessage{}
	if err := c.BodyParser(&payload); err != nil {
		return ctrl.sendError(c, auth.NewValidationError(err))
	}

	loan, err := ctrl.service.AddLoan(c.UserContext(), payload)
	if err != nil {
		return ctrl.sendError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    loan,
	})
}

func (ctrl *Controller) ListLoans(c *fiber.Ctx) error {
	loans, err := ctrl.service.ListLoans(c.UserContext())
	if err != nil {
		return ctrl.sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    loans,
	})
}

func (ctrl *Controller) AddCategory(c *fiber.Ctx) error {
	payload := AddCategoryMessage{}
	if err := c.BodyParser(&payload); err != nil {
		return ctrl.sendError(c, auth.NewValidationError(err))
	}

	category, err := ctrl.service.AddCategory(c.UserContext(), payload)
	if err != nil {
		return ctrl.sendError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    category,
	})
}

func (ctrl *Controller) ListCategories(c *fiber.Ctx) error {
	categories, err := ctrl.service.ListCategories(c.UserContext(), c.Query("loanId"))
	if err != nil {
		return ctrl.sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    categories,
	})
}

func (ctrl *Controller) sendError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		if richErr.Code != 0 {
			code = richErr.Code
		}
		message = richErr.Message
	}
	if code >= fiber.StatusInternalServerError {
		ctrl.Logger.Error("catalog request failed", "path", c.Path(), "error", err)
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
