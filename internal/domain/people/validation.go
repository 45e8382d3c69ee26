package people

import (
	"regexp"
	"strings"
	"time"
)

const (
	MsgMissingFields      = "missing required fields"
	MsgMissingWorkFields  = "missing required work fields"
	MsgInvalidEmail       = "invalid email format"
	MsgInvalidDOB         = "invalid date of birth format"
	MsgFutureDOB          = "date of birth cannot be in the future"
	MsgInvalidHiredOn     = "invalid hired on date format"
	MsgFutureHiredOn      = "hired on date cannot be in the future"
	MsgInvalidRole        = "invalid role"
	MsgInvalidEmployment  = "invalid employment type"
	MsgWorkNotApplicable  = "work details are not applicable to client records"
	MsgPublicInfoNotStaff = "public information is only available for client records"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type PersonalInput struct {
	FullName         string  `json:"fullName"`
	Email            string  `json:"email"`
	PhoneNumber      string  `json:"phoneNumber"`
	Address          string  `json:"address"`
	DOB              string  `json:"dob"`
	EmergencyContact string  `json:"emergencyContact"`
	Language         *string `json:"language,omitempty"`
	Nationality      *string `json:"nationality,omitempty"`
	Religion         *string `json:"religion,omitempty"`
	Gender           *string `json:"gender,omitempty"`
	Unit             *string `json:"unit,omitempty"`
	MaritalStatus    *string `json:"maritalStatus,omitempty"`
}

type WorkInput struct {
	WorksAt        string  `json:"worksAt"`
	HiredOn        string  `json:"hiredOn"`
	Role           string  `json:"role"`
	EmploymentType string  `json:"employmentType"`
	TeamID         *string `json:"teamId,omitempty"`
}

// ParseDate accepts RFC3339 or YYYY-MM-DD.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse("2006-01-02", value)
}

func afterToday(value, now time.Time) bool {
	y, m, d := now.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	vy, vm, vd := value.UTC().Date()
	return time.Date(vy, vm, vd, 0, 0, 0, 0, time.UTC).After(today)
}

func missing(pairs ...string) []string {
	var out []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			out = append(out, pairs[i])
		}
	}
	return out
}

// ValidatePersonal checks the required shape of personal details and returns
// the normalized row.
func ValidatePersonal(in PersonalInput, now time.Time) (PersonalDetails, error) {
	if fields := missing(
		"fullName", in.FullName,
		"email", in.Email,
		"phoneNumber", in.PhoneNumber,
		"address", in.Address,
		"dob", in.DOB,
		"emergencyContact", in.EmergencyContact,
	); len(fields) > 0 {
		return PersonalDetails{}, NewValidationError(MsgMissingFields, fields...)
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !emailPattern.MatchString(email) {
		return PersonalDetails{}, NewValidationError(MsgInvalidEmail, "email")
	}

	dob, err := ParseDate(in.DOB)
	if err != nil {
		return PersonalDetails{}, NewValidationError(MsgInvalidDOB, "dob")
	}
	if afterToday(dob, now) {
		return PersonalDetails{}, NewValidationError(MsgFutureDOB, "dob")
	}

	return PersonalDetails{
		FullName:         strings.TrimSpace(in.FullName),
		Email:            email,
		PhoneNumber:      strings.TrimSpace(in.PhoneNumber),
		Address:          strings.TrimSpace(in.Address),
		DOB:              dob,
		EmergencyContact: strings.TrimSpace(in.EmergencyContact),
		Language:         in.Language,
		Nationality:      in.Nationality,
		Religion:         in.Religion,
		Gender:           in.Gender,
		Unit:             in.Unit,
		MaritalStatus:    in.MaritalStatus,
	}, nil
}

// ValidateWork checks staff work details. Role and employment type are matched
// case-insensitively and stored in their canonical spelling.
func ValidateWork(in WorkInput, now time.Time) (WorkDetails, error) {
	if fields := missing(
		"worksAt", in.WorksAt,
		"hiredOn", in.HiredOn,
		"role", in.Role,
		"employmentType", in.EmploymentType,
	); len(fields) > 0 {
		return WorkDetails{}, NewValidationError(MsgMissingWorkFields, fields...)
	}

	hiredOn, err := ParseDate(in.HiredOn)
	if err != nil {
		return WorkDetails{}, NewValidationError(MsgInvalidHiredOn, "hiredOn")
	}
	if afterToday(hiredOn, now) {
		return WorkDetails{}, NewValidationError(MsgFutureHiredOn, "hiredOn")
	}

	role, ok := canonical(in.Role, StaffRoles)
	if !ok {
		return WorkDetails{}, NewValidationError(MsgInvalidRole, "role")
	}
	employmentType, ok := canonical(in.EmploymentType, EmploymentTypes)
	if !ok {
		return WorkDetails{}, NewValidationError(MsgInvalidEmployment, "employmentType")
	}

	var teamID *string
	if in.TeamID != nil && strings.TrimSpace(*in.TeamID) != "" {
		trimmed := strings.TrimSpace(*in.TeamID)
		teamID = &trimmed
	}

	return WorkDetails{
		WorksAt:        strings.TrimSpace(in.WorksAt),
		HiredOn:        hiredOn,
		Role:           role,
		EmploymentType: employmentType,
		TeamID:         teamID,
	}, nil
}

func canonical(value string, allowed []string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range allowed {
		if normalized == strings.ToLower(candidate) {
			return candidate, true
		}
	}
	return "", false
}
