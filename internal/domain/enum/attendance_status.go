package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// AttendanceStatus represents a staff member's attendance for a day
type AttendanceStatus int

const (
	AttendancePresent AttendanceStatus = 0
	AttendanceAbsent  AttendanceStatus = 1
	AttendanceHalfDay AttendanceStatus = 2
	AttendanceLeave   AttendanceStatus = 3
)

var attendanceStatusNames = [...]string{"present", "absent", "half_day", "leave"}

func (s AttendanceStatus) String() string {
	if s < 0 || int(s) >= len(attendanceStatusNames) {
		return "unknown"
	}
	return attendanceStatusNames[s]
}

// IsValid reports whether s is a known status.
func (s AttendanceStatus) IsValid() bool {
	return s >= 0 && int(s) < len(attendanceStatusNames)
}

// ParseAttendanceStatus converts a status name to its value.
func ParseAttendanceStatus(name string) (AttendanceStatus, error) {
	for i, n := range attendanceStatusNames {
		if n == name {
			return AttendanceStatus(i), nil
		}
	}
	return 0, fmt.Errorf("unknown attendance status %q", name)
}

func (s AttendanceStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *AttendanceStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = AttendanceStatus(i)
		return nil
	}
	parsed, err := ParseAttendanceStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s AttendanceStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *AttendanceStatus) Scan(value interface{}) error {
	if value == nil {
		*s = AttendancePresent
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = AttendanceStatus(v)
	case int32:
		*s = AttendanceStatus(v)
	case int:
		*s = AttendanceStatus(v)
	case []byte:
		var i int
		if _, err := fmt.Sscan(string(v), &i); err != nil {
			return err
		}
		*s = AttendanceStatus(i)
	}
	return nil
}
