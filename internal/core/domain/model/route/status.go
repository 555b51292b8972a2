package route

import (
	"fmt"

	"lastmile/internal/pkg/errs"
)

// Status represents the lifecycle state of a delivery route.
//
// State transitions:
//
//	Pending ──> Active ──> Completed
//	   │          │
//	   └──────────┴──> Canceled
//
// Completed is reached either when the last open stop is resolved or when
// staff liquidate the route.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	Unknown Status = iota

	// Pending routes were created but the driver has not started them.
	Pending

	// Active routes are being driven. Stops can only be worked on Active routes.
	Active

	// Completed routes have no open stops left.
	Completed

	// Canceled routes were released by staff.
	Canceled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "Unknown",
		Pending:   "Pending",
		Active:    "Active",
		Completed: "Completed",
		Canceled:  "Canceled",
	}
}

// Validate checks that the status is one of the known values.
func (s Status) Validate() error {
	if s <= Unknown || s > Canceled {
		return errs.NewValueIsInvalidErrorWithCause("route status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsOpen reports whether the route can still change, that is Pending or Active.
func (s Status) IsOpen() bool {
	return s == Pending || s == Active
}

// Start transitions Pending to Active.
func (s Status) Start() (Status, error) {
	if s != Pending {
		return 0, errs.NewInvalidStateError("route", fmt.Sprintf("%s route cannot be started", s))
	}
	return Active, nil
}

// Complete transitions Active to Completed.
func (s Status) Complete() (Status, error) {
	if s != Active {
		return 0, errs.NewInvalidStateError("route", fmt.Sprintf("%s route cannot be completed", s))
	}
	return Completed, nil
}

// Liquidate force-closes a Pending or Active route.
func (s Status) Liquidate() (Status, error) {
	if !s.IsOpen() {
		return 0, errs.NewInvalidStateError("route", fmt.Sprintf("%s route cannot be liquidated", s))
	}
	return Completed, nil
}

// Cancel transitions a Pending or Active route to Canceled.
func (s Status) Cancel() (Status, error) {
	if !s.IsOpen() {
		return 0, errs.NewInvalidStateError("route", fmt.Sprintf("%s route cannot be canceled", s))
	}
	return Canceled, nil
}
