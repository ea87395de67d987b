package attendance

import (
	"time"

	"github.com/campusgeo/attendance-backend-go/internal/pkg/geo"
)

type State string

const (
	StateNone       State = "NONE"
	StateCheckedIn  State = "CHECKED_IN"
	StateCheckedOut State = "CHECKED_OUT"
)

type Action string

const (
	ActionCheckIn  Action = "checkin"
	ActionCheckOut Action = "checkout"
)

func (a Action) Valid() bool {
	return a == ActionCheckIn || a == ActionCheckOut
}

func (a Action) Label() string {
	switch a {
	case ActionCheckIn:
		return "check-in"
	case ActionCheckOut:
		return "check-out"
	}
	return string(a)
}

// StateOf derives the day's state from its record. A nil record is StateNone.
func StateOf(r *Record) State {
	switch {
	case r == nil || r.CheckInTime == nil:
		return StateNone
	case r.CheckOutTime == nil:
		return StateCheckedIn
	default:
		return StateCheckedOut
	}
}

// NextAction is the action a toggle performs from s. CHECKED_OUT is terminal
// and has none.
func NextAction(s State) (Action, bool) {
	switch s {
	case StateNone:
		return ActionCheckIn, true
	case StateCheckedIn:
		return ActionCheckOut, true
	}
	return "", false
}

// TransitionInput carries everything a transition records.
type TransitionInput struct {
	Action       Action
	SubjectID    string
	Date         time.Time
	At           time.Time
	Coordinate   geo.Coordinate
	LocationName string
	Course       string
	ClientAt     *time.Time
}

// Transition applies in.Action to current and returns the next record. current
// is never modified.
func Transition(current *Record, in TransitionInput) (Record, error) {
	state := StateOf(current)

	switch in.Action {
	case ActionCheckIn:
		if state != StateNone {
			return Record{}, &InvalidTransitionError{Current: state, Requested: in.Action}
		}
		at := in.At
		lat, lng := in.Coordinate.Latitude, in.Coordinate.Longitude
		next := Record{
			SubjectID:        in.SubjectID,
			Date:             in.Date,
			CheckInTime:      &at,
			CheckInLocation:  in.LocationName,
			CheckInLatitude:  &lat,
			CheckInLongitude: &lng,
			Course:           in.Course,
			ClientCheckInAt:  in.ClientAt,
		}
		if current != nil {
			next.ID = current.ID
			next.CreatedAt = current.CreatedAt
		}
		return next, nil

	case ActionCheckOut:
		if state != StateCheckedIn {
			return Record{}, &InvalidTransitionError{Current: state, Requested: in.Action}
		}
		if !in.At.After(*current.CheckInTime) {
			return Record{}, ErrCheckOutBeforeCheckIn
		}
		next := *current
		at := in.At
		lat, lng := in.Coordinate.Latitude, in.Coordinate.Longitude
		next.CheckOutTime = &at
		next.CheckOutLocation = in.LocationName
		next.CheckOutLatitude = &lat
		next.CheckOutLongitude = &lng
		next.ClientCheckOutAt = in.ClientAt
		return next, nil
	}

	return Record{}, ErrInvalidAction
}
