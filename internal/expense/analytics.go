package expense

import "math"

// Outliers flags expenses whose amount sits more than two standard
// deviations from the owner's mean spend. Fewer than three records never
// produce a flag.
func Outliers(expenses []*Expense) []*Expense {
	if len(expenses) < 3 {
		return nil
	}

	var sum float64
	for _, e := range expenses {
		sum += e.Amount
	}
	mean := sum / float64(len(expenses))

	var variance float64
	for _, e := range expenses {
		d := e.Amount - mean
		variance += d * d
	}
	stddev := math.Sqrt(variance / float64(len(expenses)))
	if stddev == 0 {
		return nil
	}

	var flagged []*Expense
	for _, e := range expenses {
		if math.Abs(e.Amount-mean) > 2*stddev {
			flagged = append(flagged, e)
		}
	}

	return flagged
}
