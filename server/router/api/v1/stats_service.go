package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/lifelog/internal/profile"
	"github.com/hrygo/lifelog/server/service/journal"
	"github.com/hrygo/lifelog/store"
)

// StatsService serves the streak and analytics read endpoints.
type StatsService struct {
	Journal *journal.Service
	Profile *profile.Profile
}

type streakResponse struct {
	CurrentStreak   int32  `json:"currentStreak"`
	LongestStreak   int32  `json:"longestStreak"`
	TotalEntries    int32  `json:"totalEntries"`
	LastEntryDate   string `json:"lastEntryDate,omitempty"`
	StreakStartDate string `json:"streakStartDate,omitempty"`
}

func (s *StatsService) GetStreak(c echo.Context) error {
	state, err := s.Journal.GetStreak(c.Request().Context(), currentUserID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, &streakResponse{
		CurrentStreak:   state.CurrentStreak,
		LongestStreak:   state.LongestStreak,
		TotalEntries:    state.TotalEntries,
		LastEntryDate:   state.LastEntryDate,
		StreakStartDate: state.StreakStartDate,
	})
}

type analyticsResponse struct {
	Days []*journal.DailyReport `json:"days"`
}

// ListDailyAnalytics returns per-day rollups for an inclusive date
// range, mood averages materialized and emotion/tag multisets reduced
// to their top entries.
func (s *StatsService) ListDailyAnalytics(c echo.Context) error {
	find := &store.FindDailyAnalytics{CreatorID: currentUserID(c)}
	if v := c.QueryParam("startDate"); v != "" {
		if _, err := journal.ParseDay(v); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid startDate")
		}
		find.DayAfter = &v
	}
	if v := c.QueryParam("endDate"); v != "" {
		if _, err := journal.ParseDay(v); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid endDate")
		}
		find.DayBefore = &v
	}
	if v := c.QueryParam("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		find.Limit = &limit
	}

	reports, err := s.Journal.ListDailyReports(c.Request().Context(), find)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if reports == nil {
		reports = []*journal.DailyReport{}
	}
	return c.JSON(http.StatusOK, &analyticsResponse{Days: reports})
}
