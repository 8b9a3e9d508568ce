package correlation

import "math"

// Two-tailed critical values of Student's t at p < 0.05, indexed by
// degrees of freedom. Beyond the table the normal approximation applies.
var tCritical = map[int]float64{
	1:  12.706,
	2:  4.303,
	3:  3.182,
	4:  2.776,
	5:  2.571,
	6:  2.447,
	7:  2.365,
	8:  2.306,
	9:  2.262,
	10: 2.228,
	11: 2.201,
	12: 2.179,
	13: 2.160,
	14: 2.145,
	15: 2.131,
	16: 2.120,
	17: 2.110,
	18: 2.101,
	19: 2.093,
	20: 2.086,
	21: 2.080,
	22: 2.074,
	23: 2.069,
	24: 2.064,
	25: 2.060,
	26: 2.056,
	27: 2.052,
}

// normalCritical is the two-tailed z value at p < 0.05, used for n >= 30.
const normalCritical = 1.96

// Significant reports whether a coefficient r over n samples clears the
// p < 0.05 bar using t = r * sqrt((n-2) / (1 - r^2)) with n-2 degrees of
// freedom. Samples below minSample are never significant regardless of r.
// The gate never alters r itself.
func Significant(r float64, n, minSample int) bool {
	if n < minSample || n < 3 {
		return false
	}

	r2 := r * r
	if r2 >= 1 {
		// Perfect correlation, t is unbounded.
		return true
	}
	t := r * math.Sqrt(float64(n-2)/(1-r2))

	return math.Abs(t) > criticalValue(n - 2)
}

func criticalValue(df int) float64 {
	if df >= 28 {
		return normalCritical
	}
	if v, ok := tCritical[df]; ok {
		return v
	}
	return normalCritical
}
