package bucket

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type repo struct{ name string }

func TestBucket_AddGet(t *testing.T) {
	b := New[*repo]()

	_, ok := b.Get("shop")
	assert.False(t, ok)

	shop := &repo{name: "shop"}
	b.Add("shop", shop)
	got, ok := b.Get("shop")
	assert.True(t, ok)
	assert.Same(t, shop, got)

	replacement := &repo{name: "shop v2"}
	b.Add("shop", replacement)
	got, _ = b.Get("shop")
	assert.Same(t, replacement, got)
	assert.Equal(t, 1, b.Len())
}

func TestBucket_Names(t *testing.T) {
	b := New[int]()
	b.Add("zeta", 1)
	b.Add("alpha", 2)
	b.Add("mid", 3)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, b.Names())
}

func TestBucket_Concurrent(t *testing.T) {
	b := New[int]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			b.Add(fmt.Sprintf("r%d", i), i)
		}(i)
		go func(i int) {
			defer wg.Done()
			b.Get(fmt.Sprintf("r%d", i))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, b.Len())
}
