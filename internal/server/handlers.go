package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperr "github.com/piwi3910/PadNest/internal/errors"
	"github.com/piwi3910/PadNest/internal/engine"
	"github.com/piwi3910/PadNest/internal/export"
	"github.com/piwi3910/PadNest/internal/importer"
	"github.com/piwi3910/PadNest/internal/model"
	"github.com/piwi3910/PadNest/internal/project"
)

// layoutRequest is the body shared by the nesting endpoints. Pads may be
// given as structured entries, as "SIZExQTY" lines, or both.
type layoutRequest struct {
	Pads      []model.PadSpec `json:"pads"`
	PadList   string          `json:"pad_list"`
	Material  string          `json:"material"`
	Materials []string        `json:"materials"`
	Width     float64         `json:"width"`
	Height    float64         `json:"height"`
	Unit      model.Unit      `json:"unit"`
	Settings  json.RawMessage `json:"settings"`
}

type diameterRequest struct {
	Size     float64         `json:"size"`
	Material string          `json:"material"`
	Settings json.RawMessage `json:"settings"`
}

type renderRequest struct {
	Layout   model.Layout    `json:"layout"`
	Settings json.RawMessage `json:"settings"`
}

type layoutResponse struct {
	Layout     model.Layout     `json:"layout"`
	Usage      model.Usage      `json:"usage"`
	Advisories []model.Advisory `json:"advisories,omitempty"`
	Warnings   []string         `json:"warnings,omitempty"`
}

type planResponse struct {
	Job        model.Job              `json:"job"`
	Usage      map[string]model.Usage `json:"usage"`
	Advisories []model.Advisory       `json:"advisories,omitempty"`
	Warnings   []string               `json:"warnings,omitempty"`
}

// resolved is a layoutRequest checked and converted to engine inputs.
type resolved struct {
	pads     []model.PadSpec
	warnings []string
	sheet    model.Sheet
	settings model.Settings
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.version})
}

func (s *Server) handleDiameter(c *gin.Context) {
	var req diameterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "malformed request body"))
		return
	}
	settings, err := s.overlay(req.Settings)
	if err != nil {
		s.writeError(c, err)
		return
	}
	m, err := model.ParseMaterial(req.Material)
	if err != nil {
		s.writeError(c, err)
		return
	}
	d, err := model.ComputeDiameter(req.Size, m, settings)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"size":        req.Size,
		"material":    m,
		"diameter":    d,
		"center_hole": model.HasCenterHole(req.Size, m, settings),
	})
}

func (s *Server) handleFeasibility(c *gin.Context) {
	req, r, ok := s.bindLayout(c)
	if !ok {
		return
	}
	m, err := model.ParseMaterial(req.Material)
	if err != nil {
		s.writeError(c, err)
		return
	}
	fits, err := engine.CheckFeasibility(r.pads, m, r.sheet.Width, r.sheet.Height, r.settings)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"material": m, "sheet": r.sheet, "fits": fits})
}

func (s *Server) handleLayout(c *gin.Context) {
	req, r, ok := s.bindLayout(c)
	if !ok {
		return
	}
	resp, err := s.layout(req, r)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleLayoutSVG(c *gin.Context) {
	req, r, ok := s.bindLayout(c)
	if !ok {
		return
	}
	resp, err := s.layout(req, r)
	if err != nil {
		s.writeError(c, err)
		return
	}
	svg, err := export.RenderSVG(resp.Layout, r.settings)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Header("X-Placed", strconv.Itoa(resp.Usage.DiscCount))
	c.Header("X-Unplaced", strconv.Itoa(resp.Usage.UnplacedCount))
	c.Data(http.StatusOK, "image/svg+xml", svg)
}

// handleRenderSVG draws a caller-supplied layout, typically one a preview
// has edited, without nesting it again.
func (s *Server) handleRenderSVG(c *gin.Context) {
	var req renderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "malformed request body"))
		return
	}
	settings, err := s.overlay(req.Settings)
	if err != nil {
		s.writeError(c, err)
		return
	}
	svg, err := export.RenderSVG(req.Layout, settings)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", svg)
}

func (s *Server) handlePlan(c *gin.Context) {
	req, r, ok := s.bindLayout(c)
	if !ok {
		return
	}
	materials, err := model.ParseMaterials(req.Materials)
	if err != nil {
		s.writeError(c, err)
		return
	}
	job, err := engine.Plan(r.pads, materials, r.sheet, r.settings)
	if err != nil {
		s.writeError(c, err)
		return
	}

	resp := planResponse{Job: job, Usage: make(map[string]model.Usage), Warnings: r.warnings}
	for _, l := range job.Layouts {
		resp.Usage[l.Material.String()] = model.CalculateUsage(l)
		adv, err := model.OversizedEngravings(r.pads, l.Material, r.settings)
		if err != nil {
			s.writeError(c, err)
			return
		}
		resp.Advisories = append(resp.Advisories, adv...)
	}
	s.logger.Info("planned", "job", job.ID, "materials", len(job.Layouts), "discs", model.TotalQuantity(r.pads))
	c.JSON(http.StatusOK, resp)
}

func (s *Server) layout(req layoutRequest, r resolved) (layoutResponse, error) {
	m, err := model.ParseMaterial(req.Material)
	if err != nil {
		return layoutResponse{}, err
	}
	l, err := engine.GenerateLayout(r.pads, m, r.sheet.Width, r.sheet.Height, r.settings)
	if err != nil {
		return layoutResponse{}, err
	}
	adv, err := model.OversizedEngravings(r.pads, m, r.settings)
	if err != nil {
		return layoutResponse{}, err
	}
	return layoutResponse{
		Layout:     l,
		Usage:      model.CalculateUsage(l),
		Advisories: adv,
		Warnings:   r.warnings,
	}, nil
}

// bindLayout decodes and resolves a layoutRequest, writing the error
// response itself when it fails.
func (s *Server) bindLayout(c *gin.Context) (layoutRequest, resolved, bool) {
	var req layoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "malformed request body"))
		return req, resolved{}, false
	}
	r, err := s.resolve(req)
	if err != nil {
		s.writeError(c, err)
		return req, resolved{}, false
	}
	return req, r, true
}

func (s *Server) resolve(req layoutRequest) (resolved, error) {
	settings, err := s.overlay(req.Settings)
	if err != nil {
		return resolved{}, err
	}
	if !req.Unit.Valid() {
		return resolved{}, apperr.New(apperr.ErrCodeInvalidInput, "unit must be mm or in, got %q", req.Unit)
	}

	pads := append([]model.PadSpec(nil), req.Pads...)
	var warnings []string
	if req.PadList != "" {
		parsed := importer.ParsePadText(req.PadList)
		if err := parsed.Err(); err != nil {
			return resolved{}, err
		}
		pads = append(pads, parsed.Pads...)
		warnings = parsed.Warnings
	}

	return resolved{
		pads:     pads,
		warnings: warnings,
		sheet:    model.NewSheet(req.Width, req.Height, req.Unit),
		settings: settings,
	}, nil
}

// overlay applies per-request JSON settings on top of the server settings.
func (s *Server) overlay(raw json.RawMessage) (model.Settings, error) {
	settings := s.settings
	settings.WrapCurve = append([]model.WrapPoint(nil), s.settings.WrapCurve...)
	if len(raw) == 0 || string(raw) == "null" {
		return settings, nil
	}
	if err := project.DecodeSettings(raw, true, &settings); err != nil {
		return model.Settings{}, apperr.Wrap(apperr.ErrCodeInvalidConfiguration, err, "bad settings override")
	}
	if err := settings.Validate(); err != nil {
		return model.Settings{}, err
	}
	return settings, nil
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	body := gin.H{"error": apperr.UserMessage(err), "code": apperr.GetCode(err)}

	var ue *apperr.UnfittableError
	if errors.As(err, &ue) {
		body["error"] = ue.Error()
		body["material"] = ue.Material
		body["placed"] = ue.Placed
		body["total"] = ue.Total
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.FullPath(), "err", err)
	} else {
		s.logger.Debug("request rejected", "path", c.FullPath(), "err", err)
	}
	c.AbortWithStatusJSON(status, body)
}

func statusFor(err error) int {
	switch apperr.GetCode(err) {
	case apperr.ErrCodeInvalidInput, apperr.ErrCodeInvalidPadLine,
		apperr.ErrCodeInvalidMaterial, apperr.ErrCodeInvalidConfiguration:
		return http.StatusBadRequest
	case apperr.ErrCodeUnfittableLayout, apperr.ErrCodeOversizedEngraving:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
