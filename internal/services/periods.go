package services

import (
	"strings"
	"time"

	"roti-erp/internal/apperr"
)

// Period is a resolved reporting window. End is exclusive.
type Period struct {
	Name  string    `json:"period"`
	Start time.Time `json:"startDate"`
	End   time.Time `json:"endDate"`
}

// StartDate and EndDate are the calendar days the window covers, for
// date-string columns. EndDate is exclusive like End.
func (p Period) StartDate() string { return p.Start.Format(dateLayout) }
func (p Period) EndDate() string   { return p.End.Format(dateLayout) }

// PeriodQuery is the query-string form of a period.
type PeriodQuery struct {
	Period    string `form:"period"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

const DefaultPeriod = "this-month"

// ResolvePeriod turns a selector (today, yesterday, this-week, last-week,
// this-month, last-month, this-year, custom) into a window anchored at local
// midnight in loc. Weeks start on Monday. Explicit dates imply custom; the
// end date is included in the window.
func ResolvePeriod(selector, startDate, endDate string, now time.Time, loc *time.Location) (Period, error) {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	key := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(selector)))
	if key == "" {
		if startDate != "" || endDate != "" {
			key = "custom"
		} else {
			key = strings.ReplaceAll(DefaultPeriod, "-", "")
		}
	}

	var p Period
	switch key {
	case "today":
		p = Period{Name: "today", Start: today, End: today.AddDate(0, 0, 1)}
	case "yesterday":
		p = Period{Name: "yesterday", Start: today.AddDate(0, 0, -1), End: today}
	case "thisweek":
		monday := weekStart(today)
		p = Period{Name: "this-week", Start: monday, End: monday.AddDate(0, 0, 7)}
	case "lastweek":
		monday := weekStart(today)
		p = Period{Name: "last-week", Start: monday.AddDate(0, 0, -7), End: monday}
	case "thismonth":
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
		p = Period{Name: "this-month", Start: first, End: first.AddDate(0, 1, 0)}
	case "lastmonth":
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
		p = Period{Name: "last-month", Start: first.AddDate(0, -1, 0), End: first}
	case "thisyear":
		first := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, loc)
		p = Period{Name: "this-year", Start: first, End: first.AddDate(1, 0, 0)}
	case "custom":
		return customPeriod(startDate, endDate, today, loc)
	default:
		return Period{}, apperr.Field("period", "must be one of today, yesterday, this-week, last-week, this-month, last-month, this-year, custom")
	}
	return p, nil
}

func customPeriod(startDate, endDate string, today time.Time, loc *time.Location) (Period, error) {
	if startDate == "" {
		return Period{}, apperr.Field("startDate", "is required for a custom period")
	}
	start, err := time.ParseInLocation(dateLayout, startDate, loc)
	if err != nil {
		return Period{}, apperr.Field("startDate", "must be YYYY-MM-DD")
	}
	last := today
	if endDate != "" {
		if last, err = time.ParseInLocation(dateLayout, endDate, loc); err != nil {
			return Period{}, apperr.Field("endDate", "must be YYYY-MM-DD")
		}
	}
	if last.Before(start) {
		return Period{}, apperr.Field("endDate", "must not be before startDate")
	}
	return Period{Name: "custom", Start: start, End: last.AddDate(0, 0, 1)}, nil
}

// weekStart returns the Monday on or before day.
func weekStart(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
