package dashboard

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/brizzai/fitdash/internal/fitbit"
	"github.com/brizzai/fitdash/internal/poller"
	"github.com/brizzai/fitdash/internal/requester"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func fullBundle() *fitbit.Bundle {
	return &fitbit.Bundle{
		Date: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
		DailySummary: &fitbit.DailySummaryResponse{
			Summary: &fitbit.Summary{
				Steps:                ptr(5000),
				CaloriesOut:          ptr(2100),
				ActivityCalories:     ptr(600),
				CaloriesBMR:          ptr(1500),
				SedentaryMinutes:     ptr(700),
				LightlyActiveMinutes: ptr(120),
				FairlyActiveMinutes:  ptr(20),
				VeryActiveMinutes:    ptr(15),
				RestingHeartRate:     ptr(58),
				Distances: []fitbit.Distance{
					{Activity: "tracker", Distance: 1},
					{Activity: "total", Distance: 3.456},
				},
			},
			Activities: []fitbit.Activity{
				{Name: ptr("Walk"), Duration: ptr(int64(1800000)), Calories: ptr(150)},
				{Duration: ptr(int64(90000))},
			},
		},
		HeartRate: &fitbit.HeartRateResponse{
			Days: []fitbit.HeartRateDay{{
				Value: fitbit.HeartRateValue{Zones: []fitbit.HeartRateZone{
					{Name: "Fat Burn", Minutes: ptr(45)},
					{Name: "Cardio", Minutes: ptr(10)},
				}},
			}},
			Intraday: &fitbit.HeartRateIntraday{Dataset: []fitbit.HeartRatePoint{
				{Time: "08:00:00", Value: 64},
				{Time: "08:01:00", Value: 71},
			}},
		},
		ActiveZoneMinutes: &fitbit.ActiveZoneMinutesResponse{
			Days: []fitbit.ActiveZoneMinutesDay{{
				Value: fitbit.ActiveZoneMinutesValue{
					ActiveZoneMinutes:        ptr(42),
					FatBurnActiveZoneMinutes: ptr(30),
					CardioActiveZoneMinutes:  ptr(12),
				},
			}},
		},
	}
}

func TestBuild_Full(t *testing.T) {
	d := Build(fullBundle(), Options{})

	want := &Dashboard{
		Date:             "2024-03-09",
		Steps:            Metric{Label: "Steps", Value: "5000", Progress: ptr(0.5)},
		CaloriesOut:      Metric{Label: "Calories Burned", Value: "2100"},
		ActivityCalories: Metric{Label: "Activity Calories", Value: "600"},
		CaloriesBMR:      Metric{Label: "BMR Calories", Value: "1500"},
		Distance:         Metric{Label: "Distance", Value: "3.46 km"},
		ActiveMinutes: []Metric{
			{Label: "Sedentary", Value: "700 min"},
			{Label: "Lightly Active", Value: "120 min"},
			{Label: "Fairly Active", Value: "20 min"},
			{Label: "Very Active", Value: "15 min"},
		},
		RestingHeartRate: Metric{Label: "Resting HR", Value: "58 BPM"},
		CurrentHeartRate: Metric{Label: "Current HR", Value: "71 BPM"},
		ActiveZoneMinutes: []Metric{
			{Label: "Total AZM", Value: "42"},
			{Label: "Fat Burn", Value: "30 min"},
			{Label: "Cardio", Value: "12 min"},
		},
		HeartRateZones: []Zone{
			{Name: "Fat Burn", Minutes: "45 minutes"},
			{Name: "Cardio", Minutes: "10 minutes"},
		},
		Trend: []TrendPoint{{Time: "08:00:00", Value: 64}, {Time: "08:01:00", Value: 71}},
		Activities: []ActivityEntry{
			{Name: "Walk", Duration: "30 minutes", Calories: "150"},
			{Name: "N/A", Duration: "1 minutes", Calories: "N/A"},
		},
	}
	if diff := cmp.Diff(want, d); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []int{64, 71}, d.TrendValues())
}

func TestBuild_StepProgress(t *testing.T) {
	tests := []struct {
		name      string
		steps     *int
		goal      int
		wantValue string
		wantProg  *float64
	}{
		{name: "half", steps: ptr(5000), wantValue: "5000", wantProg: ptr(0.5)},
		{name: "capped", steps: ptr(12000), wantValue: "12000", wantProg: ptr(1.0)},
		{name: "zero", steps: ptr(0), wantValue: "0", wantProg: ptr(0.0)},
		{name: "custom goal", steps: ptr(4000), goal: 8000, wantValue: "4000", wantProg: ptr(0.5)},
		{name: "missing", steps: nil, wantValue: "N/A", wantProg: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fitbit.Bundle{DailySummary: &fitbit.DailySummaryResponse{Summary: &fitbit.Summary{Steps: tt.steps}}}
			d := Build(b, Options{StepGoal: tt.goal})
			assert.Equal(t, tt.wantValue, d.Steps.Value)
			if tt.wantProg == nil {
				assert.Nil(t, d.Steps.Progress)
				return
			}
			require.NotNil(t, d.Steps.Progress)
			assert.InDelta(t, *tt.wantProg, *d.Steps.Progress, 1e-9)
		})
	}
}

func TestBuild_Empty(t *testing.T) {
	tests := []struct {
		name   string
		bundle *fitbit.Bundle
	}{
		{name: "nil bundle", bundle: nil},
		{name: "empty documents", bundle: &fitbit.Bundle{
			DailySummary:      &fitbit.DailySummaryResponse{},
			HeartRate:         &fitbit.HeartRateResponse{Intraday: &fitbit.HeartRateIntraday{}},
			ActiveZoneMinutes: &fitbit.ActiveZoneMinutesResponse{},
		}},
		{name: "summary without distances", bundle: &fitbit.Bundle{
			DailySummary: &fitbit.DailySummaryResponse{Summary: &fitbit.Summary{RestingHeartRate: ptr(0)}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Build(tt.bundle, Options{})
			for _, m := range []Metric{d.Steps, d.CaloriesOut, d.ActivityCalories, d.CaloriesBMR, d.Distance, d.RestingHeartRate, d.CurrentHeartRate} {
				assert.Equal(t, Placeholder, m.Value, m.Label)
			}
			for _, m := range d.ActiveMinutes {
				assert.Equal(t, Placeholder, m.Value, m.Label)
			}
			assert.Equal(t, NoActiveZoneData, d.ActiveZoneNote)
			assert.Equal(t, NoHeartRateZoneData, d.HeartRateZonesNote)
			assert.Equal(t, NoHeartRateTrend, d.TrendNote)
			assert.Equal(t, NoActivities, d.ActivitiesNote)
			assert.Empty(t, d.ActiveZoneMinutes)
			assert.Empty(t, d.HeartRateZones)
			assert.Empty(t, d.Trend)
			assert.Empty(t, d.Activities)
		})
	}
}

func TestBuild_DistanceWithoutTotal(t *testing.T) {
	b := &fitbit.Bundle{DailySummary: &fitbit.DailySummaryResponse{Summary: &fitbit.Summary{
		Distances: []fitbit.Distance{{Activity: "tracker", Distance: 2}},
	}}}
	assert.Equal(t, "N/A", Build(b, Options{}).Distance.Value)
}

func TestErrorMessage(t *testing.T) {
	httpErr := requester.NewHTTPError(401, "https://api.fitbit.com/1/user/-/activities/date/2024-03-09.json", nil)
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "http error",
			err:  httpErr,
			want: "Error fetching data: 401 Unauthorized for url: https://api.fitbit.com/1/user/-/activities/date/2024-03-09.json. Please check permissions.",
		},
		{
			name: "wrapped http error",
			err:  fmt.Errorf("fetching daily_summary: %w", httpErr),
			want: "Error fetching data: 401 Unauthorized for url: https://api.fitbit.com/1/user/-/activities/date/2024-03-09.json. Please check permissions.",
		},
		{
			name: "other",
			err:  errors.New("decoding heart_rate response: unexpected EOF"),
			want: "An unexpected error occurred: decoding heart_rate response: unexpected EOF",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorMessage(tt.err))
		})
	}
}

func TestNewSnapshot(t *testing.T) {
	at := time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC)

	ok := NewSnapshot(poller.Result{Bundle: fullBundle(), FetchedAt: at}, Options{})
	require.NotNil(t, ok.Dashboard)
	assert.Empty(t, ok.Error)
	assert.Equal(t, at, ok.FetchedAt)

	failed := NewSnapshot(poller.Result{Err: errors.New("boom"), FetchedAt: at}, Options{})
	assert.Nil(t, failed.Dashboard)
	assert.Equal(t, "An unexpected error occurred: boom", failed.Error)
}
