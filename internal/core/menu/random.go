package menu

import (
	"math/rand/v2"
	"sync"
)

// RandomSource 產生 [0,1) 的均勻亂數，測試時可注入固定序列
type RandomSource interface {
	Float64() float64
}

// globalSource 使用 math/rand/v2 的全域產生器，本身即可併發使用
type globalSource struct{}

func (globalSource) Float64() float64 {
	return rand.Float64()
}

// DefaultSource 正式環境使用的亂數來源
func DefaultSource() RandomSource {
	return globalSource{}
}

// seededSource 固定種子的亂數來源，以互斥鎖保護
type seededSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededSource 建立可重現的亂數來源
func NewSeededSource(seed uint64) RandomSource {
	return &seededSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seededSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// intn 取 [0,n) 的索引
func intn(r RandomSource, n int) int {
	i := int(r.Float64() * float64(n))
	if i >= n {
		// 不合規的實作可能回傳 1
		i = n - 1
	}
	return i
}

// shuffle Fisher–Yates 原地洗牌
func shuffle[T any](r RandomSource, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := intn(r, i+1)
		items[i], items[j] = items[j], items[i]
	}
}
