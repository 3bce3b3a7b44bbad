package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/weibeld/github-projects-dashboard/internal/models"
	columnservice "github.com/weibeld/github-projects-dashboard/internal/services/column"
	labelservice "github.com/weibeld/github-projects-dashboard/internal/services/label"
)

type createColumnRequest struct {
	Title   string `json:"title"`
	AfterID string `json:"after_id"`
}

type updateColumnRequest struct {
	Title         *string `json:"title"`
	SortField     *string `json:"sort_field"`
	SortDirection *string `json:"sort_direction"`
}

type moveColumnRequest struct {
	Direction string `json:"direction"` // left | right
}

type createLabelRequest struct {
	Title     string `json:"title"`
	Color     string `json:"color"`
	TextColor string `json:"text_color"`
	ProjectID string `json:"project_id"`
}

type updateLabelRequest struct {
	Title     *string `json:"title"`
	Color     *string `json:"color"`
	TextColor *string `json:"text_color"`
}

type moveProjectRequest struct {
	ColumnID string `json:"column_id"`
}

type labelView struct {
	models.Label
	ProjectCount int `json:"project_count"`
}

func parse(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return invalid("malformed request body: " + err.Error())
	}
	return nil
}

func (s *Server) getBoard(c *fiber.Ctx) error {
	board, err := s.app.Board(c.Query("q"))
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, board)
}

func (s *Server) reload(c *fiber.Ctx) error {
	if err := s.app.ReloadGitHub(c.UserContext()); err != nil {
		return err
	}
	return s.getBoard(c)
}

func (s *Server) listColumns(c *fiber.Ctx) error {
	if !s.app.Cache().Loaded() {
		return fiber.NewError(fiber.StatusServiceUnavailable, "board not loaded")
	}
	return ok(c, fiber.StatusOK, s.app.ColumnService.Columns())
}

func (s *Server) createColumn(c *fiber.Ctx) error {
	var req createColumnRequest
	if err := parse(c, &req); err != nil {
		return err
	}
	col, err := s.app.ColumnService.CreateColumn(c.UserContext(), columnservice.CreateColumnRequest{
		Title:   req.Title,
		AfterID: req.AfterID,
	})
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusCreated, col)
}

func (s *Server) updateColumn(c *fiber.Ctx) error {
	id := c.Params("id")
	var req updateColumnRequest
	if err := parse(c, &req); err != nil {
		return err
	}
	if req.Title == nil && req.SortField == nil && req.SortDirection == nil {
		return invalid("nothing to update: set title, sort_field or sort_direction")
	}

	ctx := c.UserContext()
	if req.Title != nil {
		if err := s.app.ColumnService.RenameColumn(ctx, id, *req.Title); err != nil {
			return err
		}
	}
	if req.SortField != nil || req.SortDirection != nil {
		current, found := models.FindColumn(s.app.ColumnService.Columns(), id)
		if !found {
			return columnservice.ErrColumnNotFound
		}
		field, dir := current.SortField, current.SortDirection
		if req.SortField != nil {
			field = models.SortField(*req.SortField)
		}
		if req.SortDirection != nil {
			dir = models.SortDirection(*req.SortDirection)
		}
		if err := s.app.ColumnService.UpdateColumnSort(ctx, id, field, dir); err != nil {
			return err
		}
	}

	col, found := models.FindColumn(s.app.ColumnService.Columns(), id)
	if !found {
		return columnservice.ErrColumnNotFound
	}
	return ok(c, fiber.StatusOK, col)
}

func (s *Server) deleteColumn(c *fiber.Ctx) error {
	if err := s.app.ColumnService.DeleteColumn(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) moveColumn(c *fiber.Ctx) error {
	var req moveColumnRequest
	if err := parse(c, &req); err != nil {
		return err
	}

	id := c.Params("id")
	var err error
	switch req.Direction {
	case "left":
		err = s.app.ColumnService.MoveColumnLeft(c.UserContext(), id)
	case "right":
		err = s.app.ColumnService.MoveColumnRight(c.UserContext(), id)
	default:
		return invalid(`direction must be "left" or "right"`)
	}
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, s.app.ColumnService.Columns())
}

func (s *Server) listLabels(c *fiber.Ctx) error {
	if !s.app.Cache().Loaded() {
		return fiber.NewError(fiber.StatusServiceUnavailable, "board not loaded")
	}
	labels := s.app.LabelService.Labels()
	if projectID := c.Query("project"); projectID != "" {
		labels = s.app.LabelService.AvailableLabels(projectID, c.Query("q"))
	}
	out := make([]labelView, len(labels))
	for i, l := range labels {
		out[i] = labelView{Label: l, ProjectCount: s.app.LabelService.ProjectCount(l.ID)}
	}
	return ok(c, fiber.StatusOK, out)
}

func (s *Server) createLabel(c *fiber.Ctx) error {
	var req createLabelRequest
	if err := parse(c, &req); err != nil {
		return err
	}
	label, err := s.app.LabelService.CreateLabel(c.UserContext(), labelservice.CreateLabelRequest{
		Title:     req.Title,
		Color:     req.Color,
		TextColor: req.TextColor,
		ProjectID: req.ProjectID,
	})
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusCreated, label)
}

func (s *Server) updateLabel(c *fiber.Ctx) error {
	id := c.Params("id")
	var req updateLabelRequest
	if err := parse(c, &req); err != nil {
		return err
	}
	err := s.app.LabelService.UpdateLabel(c.UserContext(), labelservice.UpdateLabelRequest{
		ID:        id,
		Title:     req.Title,
		Color:     req.Color,
		TextColor: req.TextColor,
	})
	if err != nil {
		return err
	}
	for _, l := range s.app.LabelService.Labels() {
		if l.ID == id {
			return ok(c, fiber.StatusOK, l)
		}
	}
	return labelservice.ErrLabelNotFound
}

func (s *Server) deleteLabel(c *fiber.Ctx) error {
	if err := s.app.LabelService.DeleteLabel(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) labelCount(c *fiber.Ctx) error {
	id := c.Params("id")
	for _, l := range s.app.LabelService.Labels() {
		if l.ID == id {
			return ok(c, fiber.StatusOK, fiber.Map{"count": s.app.LabelService.ProjectCount(id)})
		}
	}
	return labelservice.ErrLabelNotFound
}

func (s *Server) moveProject(c *fiber.Ctx) error {
	var req moveProjectRequest
	if err := parse(c, &req); err != nil {
		return err
	}
	if req.ColumnID == "" {
		return invalid("column_id is required")
	}
	if err := s.app.ProjectService.MoveProjectToColumn(c.UserContext(), c.Params("id"), req.ColumnID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) attachLabel(c *fiber.Ctx) error {
	if err := s.app.LabelService.AttachLabel(c.UserContext(), c.Params("id"), c.Params("labelId")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) detachLabel(c *fiber.Ctx) error {
	if err := s.app.LabelService.DetachLabel(c.UserContext(), c.Params("id"), c.Params("labelId")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
