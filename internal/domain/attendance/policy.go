package attendance

import (
	"fmt"
	"slices"
	"time"
)

// DefaultTimezone is the institution's civil zone.
const DefaultTimezone = "Asia/Kolkata"

// ClockTime is a civil time of day with minute precision.
type ClockTime struct {
	Hour   int
	Minute int
}

func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("invalid time of day %q: expected HH:MM", s)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func (c ClockTime) sinceMidnight() time.Duration {
	return time.Duration(c.Hour)*time.Hour + time.Duration(c.Minute)*time.Minute
}

// Window is a civil time range, inclusive at both ends.
type Window struct {
	Start ClockTime
	End   ClockTime
}

// Contains reports whether the time of day of t, read in t's location, lies in w.
func (w Window) Contains(t time.Time) bool {
	tod := time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
	return tod >= w.Start.sinceMidnight() && tod <= w.End.sinceMidnight()
}

func (w Window) String() string {
	return w.Start.String() + "-" + w.End.String()
}

// TimeWindowPolicy decides when check-in and check-out are allowed. All
// decisions are made in Location using the server clock.
type TimeWindowPolicy struct {
	Location       *time.Location
	CheckIn        Window
	CheckOut       Window
	NonWorkingDays []time.Weekday
}

// DefaultPolicy is 09:00-15:00 check-in and 16:00-21:00 check-out in
// Asia/Kolkata, closed on weekends.
func DefaultPolicy() TimeWindowPolicy {
	return TimeWindowPolicy{
		Location:       LoadLocation(DefaultTimezone),
		CheckIn:        Window{Start: ClockTime{9, 0}, End: ClockTime{15, 0}},
		CheckOut:       Window{Start: ClockTime{16, 0}, End: ClockTime{21, 0}},
		NonWorkingDays: []time.Weekday{time.Saturday, time.Sunday},
	}
}

// LoadLocation resolves name, falling back to a fixed +05:30 zone when the
// zone database does not know it.
func LoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("IST", 5*60*60+30*60)
	}
	return loc
}

func (p TimeWindowPolicy) Validate() error {
	if p.Location == nil {
		return fmt.Errorf("time window policy: location is required")
	}
	if p.CheckIn.End.sinceMidnight() < p.CheckIn.Start.sinceMidnight() {
		return fmt.Errorf("time window policy: check-in window %s ends before it starts", p.CheckIn)
	}
	if p.CheckOut.End.sinceMidnight() < p.CheckOut.Start.sinceMidnight() {
		return fmt.Errorf("time window policy: check-out window %s ends before it starts", p.CheckOut)
	}
	return nil
}

// Local converts now into the policy's zone.
func (p TimeWindowPolicy) Local(now time.Time) time.Time {
	return now.In(p.Location)
}

// CivilDate returns the ledger date for now.
func (p TimeWindowPolicy) CivilDate(now time.Time) time.Time {
	return CivilDate(p.Local(now))
}

func (p TimeWindowPolicy) IsWorkingDay(now time.Time) bool {
	return !slices.Contains(p.NonWorkingDays, p.Local(now).Weekday())
}

func (p TimeWindowPolicy) CheckWorkingDay(now time.Time) error {
	local := p.Local(now)
	if !p.IsWorkingDay(now) {
		return &NonWorkingDayError{Date: CivilDate(local), Weekday: local.Weekday()}
	}
	return nil
}

func (p TimeWindowPolicy) WindowFor(action Action) (Window, error) {
	switch action {
	case ActionCheckIn:
		return p.CheckIn, nil
	case ActionCheckOut:
		return p.CheckOut, nil
	}
	return Window{}, ErrInvalidAction
}

func (p TimeWindowPolicy) CheckWindow(now time.Time, action Action) error {
	w, err := p.WindowFor(action)
	if err != nil {
		return err
	}
	local := p.Local(now)
	if !w.Contains(local) {
		return &OutsideTimeWindowError{Action: action, Window: w, At: local, Zone: p.Location.String()}
	}
	return nil
}

// Evaluate applies the working-day rule and then the action's window.
func (p TimeWindowPolicy) Evaluate(now time.Time, action Action) error {
	if err := p.CheckWorkingDay(now); err != nil {
		return err
	}
	return p.CheckWindow(now, action)
}
