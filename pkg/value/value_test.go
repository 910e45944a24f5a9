package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMissing(t *testing.T) {
	assert.True(t, Missing(0).IsSysMis())
	assert.Equal(t, "    ", Missing(4).Str())
	assert.True(t, Missing(4).IsBlank())
	assert.Equal(t, 4, Missing(4).Width())
}

func TestStringPadsAndTruncates(t *testing.T) {
	assert.Equal(t, "ab  ", String("ab", 4).Str())
	assert.Equal(t, "abcd", String("abcdef", 4).Str())
	assert.True(t, String("x", 0).IsSysMis())
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want int
	}{
		{"numbers ordered", Number(1), Number(2), -1},
		{"numbers equal", Number(2), Number(2), 0},
		{"negative infinity before sysmis", Number(math.Inf(-1)), SystemMissing(), -1},
		{"sysmis after max", SystemMissing(), Number(math.MaxFloat64), 1},
		{"sysmis equals sysmis", SystemMissing(), SystemMissing(), 0},
		{"strings bytewise", String("abc", 3), String("abd", 3), -1},
		{"padding ignored", String("ab", 2), String("ab", 5), 0},
		{"padding is space", String("ab!", 3), String("ab", 4), 1},
		{"number before string", Number(5), String("a", 1), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.a, tt.b))
		})
	}
}

func TestSysMisNeverEqualsOrdinaryNumber(t *testing.T) {
	assert.False(t, SystemMissing().Equal(Number(-math.MaxFloat64/2)))
	assert.False(t, SystemMissing().Equal(Number(0)))
}

func TestResizeIsLossyAcrossKinds(t *testing.T) {
	s := Resize(Number(42), 8)
	assert.Equal(t, 8, s.Width())
	assert.True(t, s.IsBlank())

	back := Resize(s, 0)
	assert.True(t, back.IsSysMis())

	assert.True(t, Resize(String("12", 2), 0).IsSysMis())
	assert.Equal(t, "ab   ", Resize(String("ab", 2), 5).Str())
	assert.Equal(t, "ab", Resize(String("abc", 3), 2).Str())
	assert.Equal(t, 3.5, Resize(Number(3.5), 0).Float())
}
