package channel_utils

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type goDispatcher struct{}

func (goDispatcher) Submit(task func()) error {
	go task()
	return nil
}

func TestMergeChannels(t *testing.T) {
	first := make(chan int, 2)
	second := make(chan int, 2)
	first <- 1
	first <- 2
	second <- 3
	close(first)
	close(second)

	merged, err := MergeChannels[int](goDispatcher{}, first, second)
	require.NoError(t, err)

	var values []int
	for value := range merged {
		values = append(values, value)
	}
	sort.Ints(values)
	assert.Equal(t, []int{1, 2, 3}, values)
}

func TestMergeChannelsEmpty(t *testing.T) {
	merged, err := MergeChannels[int](goDispatcher{})
	require.NoError(t, err)

	_, open := <-merged
	assert.False(t, open)
}
