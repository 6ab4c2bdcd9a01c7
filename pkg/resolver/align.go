package resolver

import "github.com/leapstack-labs/reportcols/pkg/questionnaire"

// Unmapped marks a master column that has no slave counterpart.
const Unmapped = -1

// IndexMap maps each master column index to a slave column index or Unmapped.
type IndexMap []int

// realigns reports whether a master/slave pair needs per-segment index
// realignment when their row counts differ.
func realigns(master, slave *questionnaire.Question) bool {
	if master == nil || slave == nil {
		return false
	}
	return master.IsRating() && slave.IsRating() &&
		(master.HasComments() || master.HasSecondRating())
}

// BuildIndexMap computes the slave column index for every master column.
//
// In master-only mode (slaveMode false) the map is the identity. When the
// master question is unmapped every column is Unmapped. Rating questions with
// comment or second-rating segments whose row count differs from the slave's
// are realigned segment by segment; everything else maps positionally and
// is Unmapped past the end of the slave's fields.
func BuildIndexMap(master, slave *questionnaire.Question, masterCount, slaveCount int, slaveMode bool) (IndexMap, error) {
	idx := make(IndexMap, masterCount)

	switch {
	case !slaveMode:
		for n := range idx {
			idx[n] = n
		}
		return idx, nil
	case slave == nil:
		for n := range idx {
			idx[n] = Unmapped
		}
		return idx, nil
	}

	if realigns(master, slave) {
		if len(slave.Rows) == 0 {
			return nil, &MalformedError{Question: slave.ID, Reason: "rating question has no matrix rows"}
		}
		if len(master.Rows) != len(slave.Rows) {
			realign(idx, master, len(slave.Rows), slaveCount)
			return idx, nil
		}
	}

	for n := range idx {
		if n < slaveCount {
			idx[n] = n
		} else {
			idx[n] = Unmapped
		}
	}
	return idx, nil
}

// realign fills idx for a master rating question whose segments hold
// len(master.Rows) columns each while the slave's hold slaveRows.
// Row i of segment k maps to slave index n-k*diff; rows the slave lacks are
// Unmapped. Columns past the last segment map positionally.
func realign(idx IndexMap, master *questionnaire.Question, slaveRows, slaveCount int) {
	rows := len(master.Rows)
	diff := rows - slaveRows
	segments := master.Segments()

	for n := range idx {
		m := n
		if k, i := n/rows, n%rows; k < segments {
			if i >= slaveRows {
				idx[n] = Unmapped
				continue
			}
			m = n - k*diff
		}
		if m < 0 || m >= slaveCount {
			idx[n] = Unmapped
			continue
		}
		idx[n] = m
	}
}

// Mapped returns how many entries of idx point at a slave column.
func (idx IndexMap) Mapped() int {
	count := 0
	for _, m := range idx {
		if m != Unmapped {
			count++
		}
	}
	return count
}
