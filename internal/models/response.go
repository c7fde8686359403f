package models

import "github.com/gofiber/fiber/v2"

// DataResponse is the standard success envelope for single entities.
type DataResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// ListResponse is the standard success envelope for collections.
type ListResponse struct {
	Success bool        `json:"success"`
	Count   int         `json:"count"`
	Data    interface{} `json:"data"`
}

// RespondWithData writes the single-entity success envelope.
func RespondWithData(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(DataResponse{Success: true, Data: data})
}

// RespondWithList writes the collection success envelope with a count.
func RespondWithList(c *fiber.Ctx, count int, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(ListResponse{Success: true, Count: count, Data: data})
}
