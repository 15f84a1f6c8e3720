package utils

import (
	"cmp"
	"math"

	"golang.org/x/exp/constraints"
)

type Number interface {
	constraints.Float | constraints.Integer
}

func Argmin[T cmp.Ordered](arr []T) (argmin int) {
	for i := range arr {
		if cmp.Compare(arr[i], arr[argmin]) == -1 {
			argmin = i
		}
	}
	return
}

func SumSlice[T Number](arr []T) (r T) {
	for i := range arr {
		r += arr[i]
	}
	return
}

func Average[T Number](s []T) (mean float64) {
	for i := range s {
		mean += float64(s[i])
	}
	mean /= float64(len(s))
	return
}

func MeanAndVariance[T Number](s []T, unbiased bool) (mean, variance float64) {
	mean = Average(s)
	for i := range s {
		variance += (float64(s[i]) - mean) * (float64(s[i]) - mean)
	}
	if unbiased {
		variance /= float64(len(s) - 1)
	} else {
		variance /= float64(len(s))
	}
	return
}

func Comb(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	r := 1.
	for i := 0; i < k; i++ {
		r *= float64(n-i) / float64(i+1)
	}
	return math.Round(r)
}
