package async

import (
	"sort"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	src := []int{1, 2, 3, 4, 5}
	results, err := Map(src, 2, func(i int) (int, error) {
		return i * i, nil
	})
	assert.NoError(t, err)
	sort.Ints(results)
	assert.Equal(t, []int{1, 4, 9, 16, 25}, results)
}

func TestMapEmpty(t *testing.T) {
	results, err := Map([]int{}, 4, func(i int) (int, error) {
		return i, nil
	})
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestMapError(t *testing.T) {
	src := []int{1, 2, 3}
	_, err := Map(src, 0, func(i int) (int, error) {
		if i == 2 {
			return 0, errors.New("boom")
		}
		return i, nil
	})
	assert.Error(t, err)
}

func TestWaitAll(t *testing.T) {
	a := Errable(func() error { return nil })
	b := Errable(func() error { return nil })
	assert.NoError(t, WaitAll(a, b))

	c := Errable(func() error { return errors.New("failed") })
	d := Errable(func() error { return nil })
	assert.Error(t, WaitAll(c, d))
}
