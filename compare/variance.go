package compare

// AggregateVariance returns the largest variance across the columns which
// were matched within tolerance. It returns false if no column was compared
// with tolerance.
func AggregateVariance(variances []ColumnVariance) (float64, bool) {
	if len(variances) == 0 {
		return 0, false
	}
	ret := variances[0].MaxPercent
	for _, v := range variances[1:] {
		if v.MaxPercent > ret {
			ret = v.MaxPercent
		}
	}
	return ret, true
}
