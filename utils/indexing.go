package utils

type Index []int

func NewIndex(N int) (I Index) {
	return make(Index, N)
}

// Free returns the entries of I that are not negative, marking constrained slots
func (I Index) Free() (r Index) {
	for _, v := range I {
		if v >= 0 {
			r = append(r, v)
		}
	}
	return
}
