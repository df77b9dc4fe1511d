package handler

import (
	"errors"
	"log"
	"strconv"

	"go-vendas-api/internal/ledger"
	"go-vendas-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Helpers reading the actor set by middleware.RequireAuth
func getUserID(c *fiber.Ctx) string {
	userID, ok := c.Locals("user_id").(string)
	if !ok {
		return "system"
	}
	return userID
}

func getUserName(c *fiber.Ctx) string {
	userName, ok := c.Locals("user_name").(string)
	if !ok {
		return "Unknown"
	}
	return userName
}

func getUserEmail(c *fiber.Ctx) string {
	userEmail, _ := c.Locals("user_email").(string)
	return userEmail
}

func getActor(c *fiber.Ctx) service.Actor {
	return service.Actor{
		ID:    getUserID(c),
		Name:  getUserName(c),
		Email: getUserEmail(c),
	}
}

func parseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}

func parseSaleID(id string) (uint, error) {
	n, err := strconv.ParseUint(id, 10, 32)
	if err != nil || n == 0 {
		return 0, errors.New("invalid sale ID")
	}
	return uint(n), nil
}

// respondError maps service and ledger errors onto status codes.
func respondError(c *fiber.Ctx, err error) error {
	var ve *ledger.ValidationError
	var pe *ledger.PersistenceError

	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": ve.Error(), "field": ve.Field})

	case errors.Is(err, service.ErrSaleNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrCustomerNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})

	case errors.Is(err, service.ErrEANExists),
		errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrEmailArchived),
		errors.Is(err, service.ErrCategoryInUse),
		errors.Is(err, service.ErrCustomerHasSales):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})

	case errors.Is(err, ledger.ErrAllocationExhausted):
		log.Printf("❌ %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})

	case errors.As(err, &pe):
		if !pe.Retryable() {
			log.Printf("❌ %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error", "retryable": false})
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error":     "Storage temporarily unavailable, please retry",
			"retryable": true,
		})
	}

	log.Printf("❌ unhandled error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
}
