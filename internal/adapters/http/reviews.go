package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/oliauusc/CSCI201-Group7/internal/core/domain"
)

// HeaderUserName carries the reviewer's display name, set by the gateway.
const HeaderUserName = "X-User-Name"

type postReviewRequest struct {
	Rating int      `json:"rating"`
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Tags   []string `json:"tags"`
}

// splitList splits a comma separated query value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ListReviewsHandler returns one page of a place's reviews.
func ListReviewsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := domain.ReviewQuery{
			Page:     c.QueryInt("page", 1),
			PageSize: c.QueryInt("pageSize", 0),
			SortBy:   domain.ReviewSort(c.Query("sortBy")),
			Tags:     splitList(c.Query("tags")),
		}

		page, err := deps.Reviews.List(c.UserContext(), c.Params("id"), q)
		if err != nil {
			return fromError(c, err)
		}
		return c.JSON(page)
	}
}

// TopReviewsHandler returns a place's highest rated reviews.
func TopReviewsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reviews, err := deps.Reviews.Top(c.UserContext(), c.Params("id"))
		if err != nil {
			return fromError(c, err)
		}
		return c.JSON(reviews)
	}
}

// PostReviewHandler stores a review for a place.
func PostReviewHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req postReviewRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		review := &domain.Review{
			PlaceID: c.Params("id"),
			Author:  c.Get(HeaderUserName),
			Rating:  req.Rating,
			Title:   req.Title,
			Body:    req.Body,
			Tags:    req.Tags,
		}
		if err := deps.Reviews.Post(c.UserContext(), review); err != nil {
			return fromError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(review)
	}
}

// HelpfulReviewHandler records a helpful vote on a review.
func HelpfulReviewHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		count, err := deps.Reviews.MarkHelpful(c.UserContext(), id)
		if err != nil {
			return fromError(c, err)
		}
		return c.JSON(fiber.Map{"id": id, "helpful_count": count})
	}
}
