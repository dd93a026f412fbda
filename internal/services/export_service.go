package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"

	"planner-service/internal/bundle"
	"planner-service/internal/metrics"
	"planner-service/internal/models"
)

// DefaultExportURLTTL is how long an export link stays valid.
const DefaultExportURLTTL = 24 * time.Hour

// ObjectStore is where exported plans are uploaded.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// ExportResult describes an uploaded plan archive.
type ExportResult struct {
	Key     string          `json:"key"`
	URL     string          `json:"url"`
	Size    int64           `json:"size"`
	Project *models.Project `json:"project"`
}

// ExportService bundles an analysed project into a zip archive, uploads it
// and stores the download link on the project.
type ExportService struct {
	projects ProjectStore
	store    ObjectStore
	urlTTL   time.Duration
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewExportService creates the export service. A nil store disables exports.
func NewExportService(projects ProjectStore, store ObjectStore, urlTTL time.Duration, logger *slog.Logger, m *metrics.Metrics) *ExportService {
	if urlTTL <= 0 {
		urlTTL = DefaultExportURLTTL
	}
	return &ExportService{
		projects: projects,
		store:    store,
		urlTTL:   urlTTL,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *ExportService) ExportPlan(ctx context.Context, id int64) (*ExportResult, error) {
	if s.store == nil {
		return nil, ErrExportUnavailable
	}
	p, err := s.projects.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.HasAnyAnalysis() {
		return nil, ErrNotAnalyzed
	}

	res, err := s.export(ctx, p)
	s.metrics.RecordExport(err == nil)
	if err != nil {
		s.logger.Error("plan export failed", "project_id", id, "error", err)
		return nil, err
	}
	s.logger.Info("plan exported", "project_id", id, "key", res.Key, "size", res.Size)
	return res, nil
}

func (s *ExportService) export(ctx context.Context, p *models.Project) (*ExportResult, error) {
	plan, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode plan")
	}
	archive, err := bundle.Pack(ctx, map[string][]byte{
		"plan.json":     plan,
		"pitch-deck.md": []byte(RenderPitchDeck(p)),
	})
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("exports/%d/plan-%s.zip", p.ID, s.now().UTC().Format("20060102T150405Z"))
	if err := s.store.PutObject(ctx, key, bytes.NewReader(archive), int64(len(archive)), "application/zip"); err != nil {
		return nil, err
	}
	url, err := s.store.PresignGet(ctx, key, s.urlTTL)
	if err != nil {
		return nil, err
	}

	p.PitchDeckURL = url
	if p.PitchDeckData != nil {
		deck := *p.PitchDeckData
		deck.DownloadURL = url
		p.PitchDeckData = &deck
	}
	updated, err := s.projects.UpdateProject(ctx, p)
	if err != nil {
		return nil, errors.Wrap(err, "store export link")
	}
	return &ExportResult{Key: key, URL: url, Size: int64(len(archive)), Project: updated}, nil
}

// RenderPitchDeck renders the project's deck and SWOT analysis as Markdown.
func RenderPitchDeck(p *models.Project) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Title)
	if p.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", p.Description)
	}
	if p.AIScore != nil {
		fmt.Fprintf(&b, "**Score:** %.1f / 10\n\n", *p.AIScore)
	}
	if p.PitchDeckData != nil {
		for i, slide := range p.PitchDeckData.Slides {
			fmt.Fprintf(&b, "## %d. %s\n\n%s\n\n", i+1, slide.Title, slide.Content)
		}
	}
	if swot := p.AIAnalysis; swot != nil {
		b.WriteString("## SWOT\n\n")
		if swot.Summary != "" {
			fmt.Fprintf(&b, "%s\n\n", swot.Summary)
		}
		writeList(&b, "Strengths", swot.Strengths)
		writeList(&b, "Weaknesses", swot.Weaknesses)
		writeList(&b, "Opportunities", swot.Opportunities)
		writeList(&b, "Threats", swot.Threats)
	}
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}
