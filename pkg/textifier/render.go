package textifier

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"wikitextifier/pkg/model"
)

// valueText renders a snak value as display text. Entity references use
// the resolved label table, degrading to the raw ID. Monolingual text in
// a language other than the requested one renders empty, as do
// unrecognized value kinds; callers skip empty values.
func valueText(v model.RawValue, r *model.ResolvedItem) string {
	switch v.Kind {
	case model.KindEntity:
		return r.LabelFor(v.Entity)
	case model.KindQuantity:
		return quantityText(v, r)
	case model.KindTime:
		return timeText(v)
	case model.KindCoordinate:
		return coordinateText(v.Lat, v.Lon)
	case model.KindString:
		return v.Text
	case model.KindMonolingual:
		if v.Language == r.Lang || v.Language == "mul" {
			return v.Text
		}
		return ""
	}
	return ""
}

func quantityText(v model.RawValue, r *model.ResolvedItem) string {
	amount := strings.TrimPrefix(v.Amount, "+")
	if v.Unit == "" {
		return amount
	}
	return amount + " " + r.LabelFor(v.Unit)
}

var timePattern = regexp.MustCompile(`^([+-])(\d{1,16})-(\d{2})-(\d{2})T(\d{2}):(\d{2}):(\d{2})Z$`)

var monthNames = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// timeText renders a Wikidata time value at its stated precision.
// Julian-calendar dates with four-digit years are converted to the
// proleptic Gregorian calendar first. Malformed values render as the
// raw time string.
func timeText(v model.RawValue) string {
	m := timePattern.FindStringSubmatch(v.Time)
	if m == nil {
		return v.Time
	}

	year, err := strconv.Atoi(m[2])
	if err != nil {
		return v.Time
	}
	if m[1] == "-" {
		year = -year
	}
	month, _ := strconv.Atoi(m[3])
	day, _ := strconv.Atoi(m[4])
	if month == 0 {
		month = 1
	}
	if day == 0 {
		day = 1
	}

	// Wikidata marks Julian dates with calendar Q1985786. The Julian and
	// Gregorian calendars were 10 days apart when the switch happened.
	if v.Calendar == "Q1985786" && year > 1 && year <= 9999 {
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 10)
		year, month, day = t.Year(), int(t.Month()), t.Day()
	}

	monthName := monthNames[month-1]
	era := "AD"
	if year <= 0 {
		era = "BC"
	}

	switch v.Precision {
	case 14:
		return fmt.Sprintf("%d %s %d %s:%s:%s", year, monthName, day, m[5], m[6], m[7])
	case 13:
		return fmt.Sprintf("%d %s %d %s:%s", year, monthName, day, m[5], m[6])
	case 12:
		return fmt.Sprintf("%d %s %d %s:00", year, monthName, day, m[5])
	case 11:
		return fmt.Sprintf("%d %s %d", day, monthName, year)
	case 10:
		return fmt.Sprintf("%s %d", monthName, year)
	case 9:
		return fmt.Sprintf("%d %s", abs(year), era)
	case 8:
		decade := floorDiv(year, 10) * 10
		return fmt.Sprintf("%ds %s", abs(decade), era)
	case 7:
		century := (abs(year)-1)/100 + 1
		return fmt.Sprintf("%dth century %s", century, era)
	case 6:
		millennium := (abs(year)-1)/1000 + 1
		return fmt.Sprintf("%dth millennium %s", millennium, era)
	case 5:
		return fmt.Sprintf("%d ten thousand years %s", abs(year)/10000, era)
	case 4:
		return fmt.Sprintf("%d hundred thousand years %s", abs(year)/100000, era)
	case 3:
		return fmt.Sprintf("%d million years %s", abs(year)/1000000, era)
	case 2:
		return fmt.Sprintf("%d tens of millions of years %s", abs(year)/10000000, era)
	case 1:
		return fmt.Sprintf("%d hundred million years %s", abs(year)/100000000, era)
	case 0:
		return fmt.Sprintf("%d billion years %s", abs(year)/1000000000, era)
	}
	return v.Time
}

// coordinateText renders a lat/lon pair in degrees-minutes-seconds with
// hemisphere suffixes, seconds rounded to a tenth.
func coordinateText(lat, lon float64) string {
	latHemi := "N"
	if lat < 0 {
		latHemi = "S"
	}
	lonHemi := "E"
	if lon < 0 {
		lonHemi = "W"
	}
	return dms(math.Abs(lat), latHemi) + ", " + dms(math.Abs(lon), lonHemi)
}

func dms(deg float64, hemi string) string {
	d := int(deg)
	minFull := (deg - float64(d)) * 60
	m := int(minFull)
	sec := math.Round((minFull-float64(m))*60*10) / 10
	secStr := strconv.FormatFloat(sec, 'f', -1, 64)
	return fmt.Sprintf("%d°%d'%s\"%s", d, m, secStr, hemi)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// floorDiv divides rounding toward negative infinity, so BC decades
// group the way calendar arithmetic expects.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
