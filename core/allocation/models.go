package allocation

import (
	"errors"
	"time"
)

var (
	// errors
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrRunNotFound     = errors.New("allocation run not found")
	ErrNoFaculty       = errors.New("dataset defines no faculty column")
)

// Unallocated marks a student the engine could not place.
const Unallocated = "UNALLOCATED"

type (
	// Student is one row of the preference sheet. Prefs maps each faculty to
	// the preference rank this student gave it; 1 is most preferred and the
	// ranks of a valid row form a permutation of 1..F.
	Student struct {
		Roll  string         `json:"roll"`
		Name  string         `json:"name"`
		Email string         `json:"email"`
		CGPA  float64        `json:"cgpa"`
		Prefs map[string]int `json:"prefs"`
	}

	// Dataset is an immutable preference sheet. Faculty keeps the original
	// column order; it is the tie-break order of the engine and the row order
	// of the statistics table.
	Dataset struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Faculty   []string  `json:"faculty"`
		Students  []Student `json:"students"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}

	// Group is a contiguous merit tier of the sorted student sequence.
	Group []Student

	// Run is the outcome of one allocation over a dataset.
	// Assignments maps student roll to the allocated faculty.
	Run struct {
		ID          string            `json:"id"`
		DatasetID   string            `json:"dataset_id"`
		Assignments map[string]string `json:"assignments"`
		CreatedAt   time.Time         `json:"created_at"` // UTC
	}
)

func (ds Dataset) NumStudents() int { return len(ds.Students) }

func (ds Dataset) NumFaculty() int { return len(ds.Faculty) }

// NumGroups is ceil(S/F); 0 when the dataset has no faculty.
func (ds Dataset) NumGroups() int {
	if len(ds.Faculty) == 0 {
		return 0
	}
	return (len(ds.Students) + len(ds.Faculty) - 1) / len(ds.Faculty)
}
