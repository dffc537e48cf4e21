package v1

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/lifelog/ai"
	"github.com/hrygo/lifelog/internal/profile"
	"github.com/hrygo/lifelog/server/metrics"
	"github.com/hrygo/lifelog/server/service/journal"
	"github.com/hrygo/lifelog/store"
)

type APIV1Service struct {
	// Domain Services
	JournalService *JournalService
	StatsService   *StatsService

	// Shared Infra
	Profile *profile.Profile
	Store   *store.Store
	Journal *journal.Service
}

func NewAPIV1Service(p *profile.Profile, st *store.Store, exporter *metrics.Exporter) *APIV1Service {
	var embeddingService ai.EmbeddingService
	var summarizer ai.Summarizer

	aiConfig := ai.NewConfigFromProfile(p)
	if p.IsEmbeddingEnabled() {
		var err error
		embeddingService, err = ai.NewEmbeddingService(&aiConfig.Embedding)
		if err != nil {
			slog.Warn("failed to initialize embedding service", "error", err)
			embeddingService = nil
		} else {
			slog.Info("embedding service initialized",
				"provider", aiConfig.Embedding.Provider,
				"model", aiConfig.Embedding.Model,
			)
		}
	} else {
		slog.Info("semantic indexing disabled, entries will not be searchable by meaning")
	}

	if p.IsSummaryEnabled() {
		var err error
		summarizer, err = ai.NewSummarizer(&aiConfig.LLM)
		if err != nil {
			slog.Warn("failed to initialize summarizer", "error", err)
			summarizer = nil
		} else {
			slog.Info("summarizer initialized", "model", aiConfig.LLM.Model)
		}
	}

	journalService := journal.NewService(p, st, embeddingService, summarizer, exporter)

	service := &APIV1Service{
		Profile: p,
		Store:   st,
		Journal: journalService,
	}
	service.JournalService = &JournalService{Journal: journalService}
	service.StatsService = &StatsService{Journal: journalService, Profile: p}
	return service
}

// RegisterRoutes registers all v1 API routes with the given Echo instance.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	apiV1 := echoServer.Group("/api/v1", resolveUser)

	apiV1.POST("/entries", s.JournalService.CreateEntry)
	apiV1.GET("/entries", s.JournalService.ListEntries)
	apiV1.GET("/entries/:id", s.JournalService.GetEntry)
	apiV1.PATCH("/entries/:id", s.JournalService.UpdateEntry)
	apiV1.DELETE("/entries/:id", s.JournalService.DeleteEntry)
	apiV1.POST("/entries/backfill", s.JournalService.Backfill)

	apiV1.GET("/streak", s.StatsService.GetStreak)
	apiV1.GET("/analytics", s.StatsService.ListDailyAnalytics)
}
