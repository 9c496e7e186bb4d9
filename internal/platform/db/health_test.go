package db

import "testing"

func TestWorkerHeadroom(t *testing.T) {
	tests := []struct {
		name     string
		maxConns int32
		acquired int32
		workers  int
		want     int32
	}{
		{"idle pool", 10, 0, 4, 6},
		{"busy pool", 10, 5, 4, 1},
		{"saturated", 10, 8, 4, -2},
		{"workers take whole budget", 10, 0, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := workerHeadroom(tt.maxConns, tt.acquired, tt.workers); got != tt.want {
				t.Errorf("workerHeadroom(%d, %d, %d) = %d, want %d",
					tt.maxConns, tt.acquired, tt.workers, got, tt.want)
			}
		})
	}
}
