package fitbit

import "time"

// DateLayout is the date format Fitbit uses in URLs and payloads
const DateLayout = "2006-01-02"

// Optional fields are pointers (or nil slices) so a missing value is
// distinguishable from a zero value after decoding.

// DailySummaryResponse is the body of GET /1/user/-/activities/date/{date}.json
type DailySummaryResponse struct {
	Summary    *Summary   `json:"summary"`
	Activities []Activity `json:"activities"`
}

type Summary struct {
	Steps                *int       `json:"steps"`
	CaloriesOut          *int       `json:"caloriesOut"`
	ActivityCalories     *int       `json:"activityCalories"`
	CaloriesBMR          *int       `json:"caloriesBMR"`
	SedentaryMinutes     *int       `json:"sedentaryMinutes"`
	LightlyActiveMinutes *int       `json:"lightlyActiveMinutes"`
	FairlyActiveMinutes  *int       `json:"fairlyActiveMinutes"`
	VeryActiveMinutes    *int       `json:"veryActiveMinutes"`
	RestingHeartRate     *int       `json:"restingHeartRate"`
	Distances            []Distance `json:"distances"`
}

type Distance struct {
	Activity string  `json:"activity"`
	Distance float64 `json:"distance"`
}

// TotalDistance returns the distance of the "total" entry
func (s *Summary) TotalDistance() (float64, bool) {
	if s == nil {
		return 0, false
	}
	for _, d := range s.Distances {
		if d.Activity == "total" {
			return d.Distance, true
		}
	}
	return 0, false
}

// Activity is one logged activity of the day
type Activity struct {
	LogID    int64   `json:"logId"`
	Name     *string `json:"name"`
	Duration *int64  `json:"duration"` // milliseconds
	Calories *int    `json:"calories"`
	Steps    *int    `json:"steps"`
}

// HeartRateResponse is the body of GET /1/user/-/activities/heart/date/today/today/1min.json
type HeartRateResponse struct {
	Days     []HeartRateDay     `json:"activities-heart"`
	Intraday *HeartRateIntraday `json:"activities-heart-intraday"`
}

type HeartRateDay struct {
	DateTime string         `json:"dateTime"`
	Value    HeartRateValue `json:"value"`
}

type HeartRateValue struct {
	Zones            []HeartRateZone `json:"heartRateZones"`
	RestingHeartRate *int            `json:"restingHeartRate"`
}

type HeartRateZone struct {
	Name        string   `json:"name"`
	Min         int      `json:"min"`
	Max         int      `json:"max"`
	Minutes     *int     `json:"minutes"`
	CaloriesOut *float64 `json:"caloriesOut"`
}

type HeartRateIntraday struct {
	Dataset         []HeartRatePoint `json:"dataset"`
	DatasetInterval int              `json:"datasetInterval"`
	DatasetType     string           `json:"datasetType"`
}

// HeartRatePoint is one intraday sample, Time is "15:04:05"
type HeartRatePoint struct {
	Time  string `json:"time"`
	Value int    `json:"value"`
}

// Latest returns the most recent intraday sample
func (r *HeartRateResponse) Latest() (HeartRatePoint, bool) {
	if r == nil || r.Intraday == nil || len(r.Intraday.Dataset) == 0 {
		return HeartRatePoint{}, false
	}
	return r.Intraday.Dataset[len(r.Intraday.Dataset)-1], true
}

// ActiveZoneMinutesResponse is the body of GET /1/user/-/activities/active-zone-minutes/date/today/1d.json
type ActiveZoneMinutesResponse struct {
	Days []ActiveZoneMinutesDay `json:"activities-active-zone-minutes"`
}

type ActiveZoneMinutesDay struct {
	DateTime string                 `json:"dateTime"`
	Value    ActiveZoneMinutesValue `json:"value"`
}

type ActiveZoneMinutesValue struct {
	ActiveZoneMinutes        *int `json:"activeZoneMinutes"`
	FatBurnActiveZoneMinutes *int `json:"fatBurnActiveZoneMinutes"`
	CardioActiveZoneMinutes  *int `json:"cardioActiveZoneMinutes"`
	PeakActiveZoneMinutes    *int `json:"peakActiveZoneMinutes"`
}

// Bundle is the result of one poll of the three endpoints
type Bundle struct {
	Date              time.Time
	ActiveZoneMinutes *ActiveZoneMinutesResponse
	HeartRate         *HeartRateResponse
	DailySummary      *DailySummaryResponse
}
