// Package dashboard turns the Fitbit responses of one poll into display strings.
package dashboard

import (
	"errors"
	"fmt"
	"time"

	"github.com/brizzai/fitdash/internal/fitbit"
	"github.com/brizzai/fitdash/internal/poller"
	"github.com/brizzai/fitdash/internal/requester"
)

// Placeholder is shown for every value the API did not return
const Placeholder = "N/A"

// Notes shown instead of an empty section
const (
	NoActiveZoneData    = "No active zone data available."
	NoHeartRateZoneData = "No heart rate zone data available."
	NoHeartRateTrend    = "No heart rate data available to display trend."
	NoActivities        = "No activities logged for today."
)

// DefaultStepGoal is the step count that fills the progress bar
const DefaultStepGoal = 10000

type Options struct {
	StepGoal int
}

type Metric struct {
	Label    string   `json:"label" yaml:"label"`
	Value    string   `json:"value" yaml:"value"`
	Progress *float64 `json:"progress,omitempty" yaml:"progress,omitempty"`
}

type Zone struct {
	Name    string `json:"name" yaml:"name"`
	Minutes string `json:"minutes" yaml:"minutes"`
}

type TrendPoint struct {
	Time  string `json:"time" yaml:"time"`
	Value int    `json:"value" yaml:"value"`
}

type ActivityEntry struct {
	Name     string `json:"name" yaml:"name"`
	Duration string `json:"duration" yaml:"duration"`
	Calories string `json:"calories" yaml:"calories"`
}

// Dashboard is the rendered view of one poll
type Dashboard struct {
	Date string `json:"date" yaml:"date"`

	Steps            Metric   `json:"steps" yaml:"steps"`
	CaloriesOut      Metric   `json:"calories_out" yaml:"calories_out"`
	ActivityCalories Metric   `json:"activity_calories" yaml:"activity_calories"`
	CaloriesBMR      Metric   `json:"calories_bmr" yaml:"calories_bmr"`
	Distance         Metric   `json:"distance" yaml:"distance"`
	ActiveMinutes    []Metric `json:"active_minutes" yaml:"active_minutes"`

	RestingHeartRate Metric `json:"resting_heart_rate" yaml:"resting_heart_rate"`
	CurrentHeartRate Metric `json:"current_heart_rate" yaml:"current_heart_rate"`

	ActiveZoneMinutes []Metric `json:"active_zone_minutes,omitempty" yaml:"active_zone_minutes,omitempty"`
	ActiveZoneNote    string   `json:"active_zone_note,omitempty" yaml:"active_zone_note,omitempty"`

	HeartRateZones     []Zone `json:"heart_rate_zones,omitempty" yaml:"heart_rate_zones,omitempty"`
	HeartRateZonesNote string `json:"heart_rate_zones_note,omitempty" yaml:"heart_rate_zones_note,omitempty"`

	Trend     []TrendPoint `json:"trend,omitempty" yaml:"trend,omitempty"`
	TrendNote string       `json:"trend_note,omitempty" yaml:"trend_note,omitempty"`

	Activities     []ActivityEntry `json:"activities,omitempty" yaml:"activities,omitempty"`
	ActivitiesNote string          `json:"activities_note,omitempty" yaml:"activities_note,omitempty"`
}

// Build renders a bundle. Missing fields become Placeholder or a note, never an error.
func Build(bundle *fitbit.Bundle, opts Options) *Dashboard {
	if opts.StepGoal <= 0 {
		opts.StepGoal = DefaultStepGoal
	}
	if bundle == nil {
		bundle = &fitbit.Bundle{}
	}

	d := &Dashboard{}
	if !bundle.Date.IsZero() {
		d.Date = bundle.Date.Format(fitbit.DateLayout)
	}

	var summary *fitbit.Summary
	var activities []fitbit.Activity
	if bundle.DailySummary != nil {
		summary = bundle.DailySummary.Summary
		activities = bundle.DailySummary.Activities
	}
	if summary == nil {
		summary = &fitbit.Summary{}
	}

	d.Steps = Metric{Label: "Steps", Value: intOr(summary.Steps, "%d")}
	if summary.Steps != nil {
		progress := min(float64(*summary.Steps)/float64(opts.StepGoal), 1.0)
		d.Steps.Progress = &progress
	}
	d.CaloriesOut = Metric{Label: "Calories Burned", Value: intOr(summary.CaloriesOut, "%d")}
	d.ActivityCalories = Metric{Label: "Activity Calories", Value: intOr(summary.ActivityCalories, "%d")}
	d.CaloriesBMR = Metric{Label: "BMR Calories", Value: intOr(summary.CaloriesBMR, "%d")}

	d.Distance = Metric{Label: "Distance", Value: Placeholder}
	if total, ok := summary.TotalDistance(); ok {
		d.Distance.Value = fmt.Sprintf("%.2f km", total)
	}

	d.ActiveMinutes = []Metric{
		{Label: "Sedentary", Value: intOr(summary.SedentaryMinutes, "%d min")},
		{Label: "Lightly Active", Value: intOr(summary.LightlyActiveMinutes, "%d min")},
		{Label: "Fairly Active", Value: intOr(summary.FairlyActiveMinutes, "%d min")},
		{Label: "Very Active", Value: intOr(summary.VeryActiveMinutes, "%d min")},
	}

	d.RestingHeartRate = Metric{Label: "Resting HR", Value: Placeholder}
	if rhr := summary.RestingHeartRate; rhr != nil && *rhr != 0 {
		d.RestingHeartRate.Value = fmt.Sprintf("%d BPM", *rhr)
	}

	d.CurrentHeartRate = Metric{Label: "Current HR", Value: Placeholder}
	if latest, ok := bundle.HeartRate.Latest(); ok {
		d.CurrentHeartRate.Value = fmt.Sprintf("%d BPM", latest.Value)
	}

	buildActiveZones(d, bundle.ActiveZoneMinutes)
	buildHeartRate(d, bundle.HeartRate)
	buildActivities(d, activities)
	return d
}

func buildActiveZones(d *Dashboard, azm *fitbit.ActiveZoneMinutesResponse) {
	if azm == nil || len(azm.Days) == 0 {
		d.ActiveZoneNote = NoActiveZoneData
		return
	}
	v := azm.Days[0].Value
	d.ActiveZoneMinutes = []Metric{
		{Label: "Total AZM", Value: intOr(v.ActiveZoneMinutes, "%d")},
		{Label: "Fat Burn", Value: intOr(v.FatBurnActiveZoneMinutes, "%d min")},
		{Label: "Cardio", Value: intOr(v.CardioActiveZoneMinutes, "%d min")},
	}
}

func buildHeartRate(d *Dashboard, hr *fitbit.HeartRateResponse) {
	if hr == nil || len(hr.Days) == 0 {
		d.HeartRateZonesNote = NoHeartRateZoneData
	} else {
		for _, z := range hr.Days[0].Value.Zones {
			d.HeartRateZones = append(d.HeartRateZones, Zone{
				Name:    z.Name,
				Minutes: intOr(z.Minutes, "%d minutes"),
			})
		}
	}

	if hr == nil || hr.Intraday == nil || len(hr.Intraday.Dataset) == 0 {
		d.TrendNote = NoHeartRateTrend
		return
	}
	d.Trend = make([]TrendPoint, 0, len(hr.Intraday.Dataset))
	for _, p := range hr.Intraday.Dataset {
		d.Trend = append(d.Trend, TrendPoint{Time: p.Time, Value: p.Value})
	}
}

func buildActivities(d *Dashboard, activities []fitbit.Activity) {
	if len(activities) == 0 {
		d.ActivitiesNote = NoActivities
		return
	}
	for _, a := range activities {
		entry := ActivityEntry{Name: Placeholder, Calories: intOr(a.Calories, "%d")}
		if a.Name != nil {
			entry.Name = *a.Name
		}
		var ms int64
		if a.Duration != nil {
			ms = *a.Duration
		}
		entry.Duration = fmt.Sprintf("%d minutes", ms/60000)
		d.Activities = append(d.Activities, entry)
	}
}

// TrendValues returns the trend as plain values, for sparklines
func (d *Dashboard) TrendValues() []int {
	values := make([]int, len(d.Trend))
	for i, p := range d.Trend {
		values[i] = p.Value
	}
	return values
}

func intOr(v *int, format string) string {
	if v == nil {
		return Placeholder
	}
	return fmt.Sprintf(format, *v)
}

// ErrorMessage is the user visible text for a failed poll
func ErrorMessage(err error) string {
	var httpErr *requester.HTTPError
	if errors.As(err, &httpErr) {
		return fmt.Sprintf("Error fetching data: %v. Please check permissions.", httpErr)
	}
	return fmt.Sprintf("An unexpected error occurred: %v", err)
}

// Snapshot is what a host displays: the latest dashboard or the latest error
type Snapshot struct {
	Dashboard *Dashboard `json:"dashboard,omitempty"`
	Error     string     `json:"error,omitempty"`
	FetchedAt time.Time  `json:"fetched_at"`
}

// NewSnapshot renders a poll result
func NewSnapshot(res poller.Result, opts Options) Snapshot {
	if res.Err != nil {
		return Snapshot{Error: ErrorMessage(res.Err), FetchedAt: res.FetchedAt}
	}
	return Snapshot{Dashboard: Build(res.Bundle, opts), FetchedAt: res.FetchedAt}
}
