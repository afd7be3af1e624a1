package allocation

import "sort"

// SortByMerit returns a new slice of students ordered by CGPA descending,
// roll ascending on equal CGPA. The input is never mutated and the result is
// deterministic for a given input.
func SortByMerit(students []Student) []Student {
	sorted := make([]Student, len(students))
	copy(sorted, students)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CGPA != sorted[j].CGPA {
			return sorted[i].CGPA > sorted[j].CGPA
		}
		return sorted[i].Roll < sorted[j].Roll
	})
	return sorted
}
