package embedding

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// MockEmbedder returns vectors of uniformly distributed values in [-1, 1].
type MockEmbedder struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (m *MockEmbedder) Name() string   { return "mock" }
func (m *MockEmbedder) Dimension() int { return Dimension }

func (m *MockEmbedder) Embed(_ context.Context, _ string) ([]float64, error) {
	v := make([]float64, Dimension)
	m.mu.Lock()
	for i := range v {
		v[i] = m.rng.Float64()*2 - 1
	}
	m.mu.Unlock()
	return v, nil
}
