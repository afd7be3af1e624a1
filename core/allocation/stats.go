package allocation

// CountPreferences tallies, for every faculty, how many students gave it each
// preference rank. The result maps faculty to F counts where index r holds the
// number of students who ranked that faculty r+1. It covers ALL students'
// preferences, independent of any allocation outcome.
func CountPreferences(ds Dataset) map[string][]int {
	numFaculty := len(ds.Faculty)
	stats := make(map[string][]int, numFaculty)
	for _, fac := range ds.Faculty {
		stats[fac] = make([]int, numFaculty)
	}

	for _, stu := range ds.Students {
		for _, fac := range ds.Faculty {
			if rank := stu.Prefs[fac]; 1 <= rank && rank <= numFaculty {
				stats[fac][rank-1]++
			}
		}
	}
	return stats
}

// CountAllocatedPreferences tallies, for every faculty, the preference ranks
// achieved by the students actually assigned to it.
func CountAllocatedPreferences(ds Dataset, assignments map[string]string) map[string][]int {
	numFaculty := len(ds.Faculty)
	stats := make(map[string][]int, numFaculty)
	for _, fac := range ds.Faculty {
		stats[fac] = make([]int, numFaculty)
	}

	for _, stu := range ds.Students {
		fac, ok := assignments[stu.Roll]
		if !ok {
			continue
		}
		if _, known := stats[fac]; !known {
			continue
		}
		if rank := stu.Prefs[fac]; 1 <= rank && rank <= numFaculty {
			stats[fac][rank-1]++
		}
	}
	return stats
}
