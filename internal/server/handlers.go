// internal/server/handlers.go
package server

import (
	"github.com/gofiber/fiber/v2"

	stderrors "newme-engine/internal/common/errors"
	"newme-engine/internal/models"
)

type startRequest struct {
	TestType string `json:"testType"`
	Category string `json:"category"`
}

func (s *Server) handleStart(c *fiber.Ctx) error {
	var req startRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	testType := models.TestType(req.TestType)
	if !testType.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "testType must be 'free' or 'paid'")
	}

	resp, err := s.engine.StartTest(c.UserContext(), bearerToken(c), testType, req.Category)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (s *Server) handleSession(c *fiber.Ctx) error {
	sess, err := s.engine.Session(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(sess)
}

type answerRequest struct {
	QuestionID string `json:"questionId"`
	Value      string `json:"value"`
}

func (s *Server) handleAnswer(c *fiber.Ctx) error {
	var req answerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.QuestionID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "questionId is required")
	}

	sess, err := s.engine.Answer(c.UserContext(), c.Params("id"), req.QuestionID, req.Value)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"sessionId":     sess.ID,
		"answeredCount": sess.AnsweredCount(),
		"questionCount": len(sess.Questions),
	})
}

type navigateRequest struct {
	Delta int `json:"delta"`
}

func (s *Server) handleNavigate(c *fiber.Ctx) error {
	var req navigateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	sess, err := s.engine.Navigate(c.UserContext(), c.Params("id"), req.Delta)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"sessionId":    sess.ID,
		"currentIndex": sess.CurrentIndex,
	})
}

func (s *Server) handleRestart(c *fiber.Ctx) error {
	sess, err := s.engine.Restart(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"sessionId":     sess.ID,
		"currentIndex":  sess.CurrentIndex,
		"answeredCount": sess.AnsweredCount(),
	})
}

func (s *Server) handleSubmit(c *fiber.Ctx) error {
	token := bearerToken(c)
	if token == "" {
		return stderrors.NewLoginRequiredError("no token presented")
	}

	resp, err := s.engine.Submit(c.UserContext(), token, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (s *Server) handleHistory(c *fiber.Ctx) error {
	records, err := s.engine.History(c.UserContext(), bearerToken(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"results": records})
}
