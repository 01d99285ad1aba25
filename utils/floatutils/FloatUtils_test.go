package floatutils

import (
	"math"
	"testing"
)

func TestArgMin(t *testing.T) {
	if i := ArgMin(3, 1, 2, 1); i != 1 {
		t.Errorf("argMin: want(1) have(%v)", i)
	}
}

func TestArgMinOver(t *testing.T) {
	values := []float64{0, 2, 1, 1}

	for _, test := range []struct {
		indices []int
		want    int
	}{
		{[]int{1, 2, 3}, 2},
		{[]int{3, 2, 1}, 3},
		{[]int{1}, 1},
		{[]int{3, 0}, 0},
	} {
		if i := ArgMinOver(values, test.indices); i != test.want {
			t.Errorf("argMinOver(%v): want(%v) have(%v)", test.indices,
				test.want, i)
		}
	}

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("argMinOver: expected panic on empty indices")
		}
	}()
	ArgMinOver(values, nil)
}

func TestIsFinite(t *testing.T) {
	if !IsFinite(1, -2, 0) {
		t.Errorf("isFinite: expected finite values")
	}
	if IsFinite(1, math.Inf(-1)) || IsFinite(math.NaN()) {
		t.Errorf("isFinite: expected non-finite values")
	}
}
