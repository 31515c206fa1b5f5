package request

import "errors"

// AttendanceRequest is the body of the attendance endpoints. Year and
// semester are 0-based indexes into the portal's dropdowns.
type AttendanceRequest struct {
	RollNo   string `json:"roll_no"`
	Password string `json:"password"`
	Captcha  string `json:"captcha"`
	Year     int    `json:"year"`
	Semester int    `json:"semester"`
}

// Validate reports the first missing or invalid field.
func (r AttendanceRequest) Validate() error {
	switch {
	case r.RollNo == "":
		return errors.New("roll_no is required")
	case r.Password == "":
		return errors.New("password is required")
	case r.Captcha == "":
		return errors.New("captcha is required")
	case r.Year < 0 || r.Semester < 0:
		return errors.New("year and semester must not be negative")
	}
	return nil
}

type CaptchaRequest struct {
	RollNo string `json:"roll_no"`
}
