package v1

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/lifelog/server/service/journal"
	"github.com/hrygo/lifelog/store"
)

// JournalService handles entry CRUD and search over JSON.
type JournalService struct {
	Journal *journal.Service
}

type entryPayload struct {
	ID             int32    `json:"id"`
	UID            string   `json:"uid"`
	Title          string   `json:"title"`
	Content        string   `json:"content"`
	EntryType      string   `json:"entryType,omitempty"`
	Mood           *string  `json:"mood,omitempty"`
	MoodIntensity  *int32   `json:"moodIntensity,omitempty"`
	EmotionTags    []string `json:"emotionTags,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	EntryTimestamp int64    `json:"entryTimestamp"`
	CreatedTs      int64    `json:"createdTs"`
	UpdatedTs      int64    `json:"updatedTs"`
	Score          *float32 `json:"score,omitempty"`
}

func convertEntry(entry *store.JournalEntry) *entryPayload {
	return &entryPayload{
		ID:             entry.ID,
		UID:            entry.UID,
		Title:          entry.Title,
		Content:        entry.Content,
		EntryType:      entry.EntryType,
		Mood:           entry.Mood,
		MoodIntensity:  entry.MoodIntensity,
		EmotionTags:    entry.EmotionTags,
		Tags:           entry.Tags,
		EntryTimestamp: entry.EntryTs,
		CreatedTs:      entry.CreatedTs,
		UpdatedTs:      entry.UpdatedTs,
	}
}

type summaryPayload struct {
	Summary   string   `json:"summary"`
	Insights  []string `json:"insights,omitempty"`
	Sentiment *string  `json:"sentiment,omitempty"`
	Status    string   `json:"status"`
}

type createEntryRequest struct {
	Title          string   `json:"title"`
	Content        string   `json:"content"`
	EntryType      string   `json:"entryType"`
	Mood           *string  `json:"mood"`
	MoodIntensity  *int32   `json:"moodIntensity"`
	EmotionTags    []string `json:"emotionTags"`
	Tags           []string `json:"tags"`
	EntryTimestamp int64    `json:"entryTimestamp"`
	SyncSummary    bool     `json:"syncSummary"`
}

type createEntryResponse struct {
	Entry    *entryPayload   `json:"entry"`
	Summary  *summaryPayload `json:"summary,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
}

// CreateEntry persists a new journal entry. Side effect failures come
// back in warnings, never as request failures.
func (s *JournalService) CreateEntry(c echo.Context) error {
	req := &createEntryRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	result, err := s.Journal.Ingest(c.Request().Context(), &journal.IngestRequest{
		CreatorID:     currentUserID(c),
		Title:         req.Title,
		Content:       req.Content,
		EntryType:     req.EntryType,
		Mood:          req.Mood,
		MoodIntensity: req.MoodIntensity,
		EmotionTags:   req.EmotionTags,
		Tags:          req.Tags,
		EntryTs:       req.EntryTimestamp,
		SyncSummary:   req.SyncSummary,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	resp := &createEntryResponse{
		Entry:    convertEntry(result.Entry),
		Warnings: result.Warnings,
	}
	if result.Summary != nil {
		resp.Summary = &summaryPayload{
			Summary:   result.Summary.Summary,
			Insights:  result.Summary.Insights,
			Sentiment: result.Summary.Sentiment,
			Status:    string(result.Summary.Status),
		}
	}
	return c.JSON(http.StatusOK, resp)
}

type listEntriesResponse struct {
	Entries    []*entryPayload `json:"entries"`
	Pagination paginationMeta  `json:"pagination"`
	Degraded   bool            `json:"degraded,omitempty"`
}

type paginationMeta struct {
	Total   int64 `json:"total"`
	HasMore bool  `json:"hasMore"`
}

// ListEntries answers both filtered listing and semantic search,
// depending on whether a query parameter is present.
func (s *JournalService) ListEntries(c echo.Context) error {
	req := &journal.SearchRequest{
		CreatorID: currentUserID(c),
		Query:     c.QueryParam("query"),
	}
	if v := c.QueryParam("type"); v != "" {
		req.EntryType = &v
	}
	if v := c.QueryParam("mood"); v != "" {
		req.Mood = &v
	}
	loc := s.Journal.Profile.Location()
	if v := c.QueryParam("startDate"); v != "" {
		day, err := journal.ParseDay(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid startDate")
		}
		ts := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc).Unix()
		req.EntryTsAfter = &ts
	}
	if v := c.QueryParam("endDate"); v != "" {
		day, err := journal.ParseDay(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid endDate")
		}
		// Inclusive end day: bound by the start of the following day.
		ts := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1).Unix()
		req.EntryTsBefore = &ts
	}
	if v := c.QueryParam("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		req.Limit = limit
	}
	if v := c.QueryParam("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid offset")
		}
		req.Offset = offset
	}

	result, err := s.Journal.Search(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	entries := make([]*entryPayload, len(result.Entries))
	for i, hit := range result.Entries {
		entries[i] = convertEntry(hit.Entry)
		if req.Query != "" && !result.Degraded {
			score := hit.Score
			entries[i].Score = &score
		}
	}
	return c.JSON(http.StatusOK, &listEntriesResponse{
		Entries:    entries,
		Pagination: paginationMeta{Total: result.Total, HasMore: result.HasMore},
		Degraded:   result.Degraded,
	})
}

type getEntryResponse struct {
	Entry   *entryPayload   `json:"entry"`
	Summary *summaryPayload `json:"summary,omitempty"`
}

func (s *JournalService) GetEntry(c echo.Context) error {
	id, err := entryIDParam(c)
	if err != nil {
		return err
	}
	creatorID := currentUserID(c)
	entry, err := s.Journal.Store.GetJournalEntry(c.Request().Context(), &store.FindJournalEntry{
		ID:        &id,
		CreatorID: &creatorID,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if entry == nil {
		return echo.NewHTTPError(http.StatusNotFound, "entry not found")
	}

	resp := &getEntryResponse{Entry: convertEntry(entry)}
	summary, err := s.Journal.Store.GetJournalSummary(c.Request().Context(), entry.ID)
	if err != nil {
		slog.Warn("failed to load entry summary", "entry", entry.ID, "error", err)
	} else if summary != nil && summary.Status == store.JournalSummaryStatusCompleted {
		resp.Summary = &summaryPayload{
			Summary:   summary.Summary,
			Insights:  summary.Insights,
			Sentiment: summary.Sentiment,
			Status:    string(summary.Status),
		}
	}
	return c.JSON(http.StatusOK, resp)
}

type updateEntryRequest struct {
	Title         *string   `json:"title"`
	Content       *string   `json:"content"`
	EntryType     *string   `json:"entryType"`
	Mood          *string   `json:"mood"`
	MoodIntensity *int32    `json:"moodIntensity"`
	EmotionTags   *[]string `json:"emotionTags"`
	Tags          *[]string `json:"tags"`
}

// UpdateEntry applies a partial edit. Title or content changes trigger
// re-indexing; a re-indexing failure surfaces as a warning.
func (s *JournalService) UpdateEntry(c echo.Context) error {
	id, err := entryIDParam(c)
	if err != nil {
		return err
	}
	creatorID := currentUserID(c)
	existing, err := s.Journal.Store.GetJournalEntry(c.Request().Context(), &store.FindJournalEntry{
		ID:        &id,
		CreatorID: &creatorID,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if existing == nil {
		return echo.NewHTTPError(http.StatusNotFound, "entry not found")
	}

	req := &updateEntryRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	result, err := s.Journal.UpdateEntry(c.Request().Context(), &store.UpdateJournalEntry{
		ID:            id,
		Title:         req.Title,
		Content:       req.Content,
		EntryType:     req.EntryType,
		Mood:          req.Mood,
		MoodIntensity: req.MoodIntensity,
		EmotionTags:   req.EmotionTags,
		Tags:          req.Tags,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, &createEntryResponse{
		Entry:    convertEntry(result.Entry),
		Warnings: result.Warnings,
	})
}

func (s *JournalService) DeleteEntry(c echo.Context) error {
	id, err := entryIDParam(c)
	if err != nil {
		return err
	}
	if err := s.Journal.DeleteEntry(c.Request().Context(), currentUserID(c), id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type backfillResponse struct {
	Indexed int `json:"indexed"`
}

// Backfill retries indexing for entries whose embeddings failed at
// write time.
func (s *JournalService) Backfill(c echo.Context) error {
	batchSize := 0
	if v := c.QueryParam("batchSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid batchSize")
		}
		batchSize = n
	}
	indexed, err := s.Journal.BackfillOnce(c.Request().Context(), batchSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, &backfillResponse{Indexed: indexed})
}

func entryIDParam(c echo.Context) (int32, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid entry id")
	}
	return int32(id), nil
}
