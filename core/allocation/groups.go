package allocation

// PartitionGroups splits the merit-sorted students into ceil(S/F) contiguous
// merit tiers. The first G-1 groups have exactly numFaculty members; the last
// holds the remainder. An empty student slice yields zero groups.
func PartitionGroups(sorted []Student, numFaculty int) ([]Group, error) {
	if numFaculty < 1 {
		return nil, ErrNoFaculty
	}

	groups := make([]Group, 0, (len(sorted)+numFaculty-1)/numFaculty)
	for i := 0; i < len(sorted); i += numFaculty {
		end := i + numFaculty
		if end > len(sorted) {
			end = len(sorted)
		}
		groups = append(groups, Group(sorted[i:end]))
	}
	return groups, nil
}
