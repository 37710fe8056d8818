package models

import "time"

type Patient struct {
	PatientID   string    `json:"patient_id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	DateOfBirth string    `json:"date_of_birth,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Appointment struct {
	AppointmentID string    `json:"appointment_id"`
	PatientID     string    `json:"patient_id"`
	DoctorName    string    `json:"doctor_name,omitempty"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	Status        string    `json:"status"`
}

const (
	AppointmentScheduled = "scheduled"
	AppointmentCheckedIn = "checked_in"
	AppointmentCompleted = "completed"
)

// AgeOn computes a whole-year age from an ISO date of birth. Returns
// (0, false) when the date is missing or malformed.
func AgeOn(dateOfBirth string, now time.Time) (int, bool) {
	if dateOfBirth == "" {
		return 0, false
	}
	dob, err := time.Parse(DateLayout, dateOfBirth)
	if err != nil {
		return 0, false
	}
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	if age < 0 {
		return 0, false
	}
	return age, true
}
