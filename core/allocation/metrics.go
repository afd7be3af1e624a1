package allocation

import "math"

// Metrics summarizes the quality of an allocation run.
type Metrics struct {
	TotalStudents     int     `json:"total_students"`
	TotalFaculty      int     `json:"total_faculty"`
	NumGroups         int     `json:"num_groups"`
	AllocatedStudents int     `json:"allocated_students"`
	AverageRank       float64 `json:"average_preference_rank"` // lower is better; 1 = first choice
	MinPerFaculty     int     `json:"min_students_per_faculty"`
	MaxPerFaculty     int     `json:"max_students_per_faculty"`
	GotFirstChoice    int     `json:"got_first_choice"`
	GotTopTwo         int     `json:"got_top_two"`
	GotTopThree       int     `json:"got_top_three"`
}

func ComputeMetrics(ds Dataset, assignments map[string]string) Metrics {
	m := Metrics{
		TotalStudents: ds.NumStudents(),
		TotalFaculty:  ds.NumFaculty(),
		NumGroups:     ds.NumGroups(),
	}

	var rankSum, ranked int
	facCounts := make(map[string]int, ds.NumFaculty())

	for _, stu := range ds.Students {
		fac, ok := assignments[stu.Roll]
		if !ok || fac == Unallocated {
			continue
		}
		m.AllocatedStudents++
		facCounts[fac]++

		rank, ok := stu.Prefs[fac]
		if !ok {
			continue
		}
		rankSum += rank
		ranked++
		if rank == 1 {
			m.GotFirstChoice++
		}
		if rank <= 2 {
			m.GotTopTwo++
		}
		if rank <= 3 {
			m.GotTopThree++
		}
	}

	if ranked > 0 {
		m.AverageRank = math.Round(float64(rankSum)/float64(ranked)*100) / 100
	}
	// min/max over faculty that received at least one student
	first := true
	for _, fac := range ds.Faculty {
		n, ok := facCounts[fac]
		if !ok {
			continue
		}
		if first || n < m.MinPerFaculty {
			m.MinPerFaculty = n
		}
		if n > m.MaxPerFaculty {
			m.MaxPerFaculty = n
		}
		first = false
	}
	return m
}
