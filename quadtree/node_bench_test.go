package quadtree

import (
	"math/rand"
	"testing"
)

func benchmarkPoints(n int) []Point {
	rng := rand.New(rand.NewSource(42))
	points := make([]Point, n)
	for i := range points {
		points[i] = pt(i, rng.Float64()*360-180, rng.Float64()*180-90)
	}
	return points
}

func BenchmarkNodeInsert(b *testing.B) {
	points := benchmarkPoints(b.N)
	root, err := New(NewRect(-180, -90, 360, 180), 8)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		root.Insert(points[i])
	}
}

func BenchmarkNodeQuery(b *testing.B) {
	root, err := New(NewRect(-180, -90, 360, 180), 8)
	if err != nil {
		b.Fatal(err)
	}
	root.InsertAll(benchmarkPoints(100000)...)

	q := NewRect(-10, -10, 20, 20)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		root.Query(q)
	}
}
