package model

import "time"

// Patient is the dimension record resolved from the external member number.
type Patient struct {
	PatientID string
	MemberID  string
	Name      string
	BirthDate *time.Time
	PCPName   *string
}
